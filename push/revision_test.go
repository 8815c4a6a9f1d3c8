// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package push

import (
	"testing"

	"github.com/diffeo/go-spinta/spinta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenNested(t *testing.T) {
	rows := Flatten(map[string]interface{}{
		"name":    "Vilnius",
		"country": map[string]interface{}{"_id": "c1"},
		"missing": nil,
	})
	assert.Equal(t, []map[string]interface{}{{
		"name":        "Vilnius",
		"country._id": "c1",
	}}, rows)
}

func TestFlattenLists(t *testing.T) {
	rows := Flatten(map[string]interface{}{
		"name": "x",
		"tags": []interface{}{"a", "b"},
		"refs": []interface{}{
			map[string]interface{}{"_id": "1"},
		},
		"empty": []interface{}{},
	})
	assert.ElementsMatch(t, []map[string]interface{}{
		{"name": "x", "tags[]": "a", "refs[]._id": "1"},
		{"name": "x", "tags[]": "b", "refs[]._id": "1"},
	}, rows)
}

func TestFlattenEmpty(t *testing.T) {
	assert.Equal(t, []map[string]interface{}{{}}, Flatten(map[string]interface{}{}))
}

func TestRevision(t *testing.T) {
	a, err := Revision(spinta.Object{"_id": "1", "_type": "a/Country", "id": 42, "name": "Lithuania"})
	require.NoError(t, err)
	assert.Len(t, a, 40)

	// Reserved keys and integer types do not matter
	b, err := Revision(spinta.Object{"_id": "2", "_op": "upsert", "name": "Lithuania", "id": uint64(42)})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Revision(spinta.Object{"id": 42, "name": "Lietuva"})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestRevisionNested(t *testing.T) {
	a, err := Revision(spinta.Object{"country": map[string]interface{}{"_id": "x"}})
	require.NoError(t, err)
	b, err := Revision(spinta.Object{"country": map[string]interface{}{"_id": "y"}})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPayload(t *testing.T) {
	payload, err := Payload(spinta.Object{
		"_id":       "5e4ad4b6-1d1a-4a8f-9c39-2b1c3c7f0a11",
		"_type":     "datasets/gov/example/Country",
		"_revision": "old",
		"id":        42,
	})
	require.NoError(t, err)
	assert.Equal(t, spinta.Object{
		"_op":    "upsert",
		"_type":  "datasets/gov/example/Country",
		"_id":    "5e4ad4b6-1d1a-4a8f-9c39-2b1c3c7f0a11",
		"_where": `eq(_id, "5e4ad4b6-1d1a-4a8f-9c39-2b1c3c7f0a11")`,
		"id":     42,
	}, payload)

	payload, err = Payload(spinta.Object{"_type": "a/Country"})
	require.NoError(t, err)
	assert.NotEmpty(t, payload.ID())

	_, err = Payload(spinta.Object{"id": 1})
	assert.Equal(t, ErrNoType, err)
}

func TestParseChunkSize(t *testing.T) {
	size, err := ParseChunkSize("1m")
	if assert.NoError(t, err) {
		assert.EqualValues(t, 1024*1024, size)
	}
	size, err = ParseChunkSize("512k")
	if assert.NoError(t, err) {
		assert.EqualValues(t, 512*1024, size)
	}
	size, err = ParseChunkSize("100b")
	if assert.NoError(t, err) {
		assert.EqualValues(t, 100, size)
	}
	_, err = ParseChunkSize("lots")
	assert.Error(t, err)
	_, err = ParseChunkSize("0")
	assert.Error(t, err)
}
