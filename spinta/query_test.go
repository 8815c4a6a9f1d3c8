// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package spinta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryString(t *testing.T) {
	assert.Equal(t, "", Query{}.String())
	assert.Equal(t, "select(_id,country)&format(ascii)", Query{
		Select: []string{"_id", "country"},
		Format: FormatASCII,
	}.String())
	assert.Equal(t, "select(name)&sort(-name,_id)&limit(5)&format(json)", Query{
		Select: []string{"name"},
		Sort:   []string{"-name", "_id"},
		Limit:  5,
		Format: "json",
	}.String())
}

func TestQueryWithFormat(t *testing.T) {
	q := Query{Select: []string{"_id"}}
	ascii := q.WithFormat(FormatASCII)
	assert.Equal(t, FormatASCII, ascii.Format)
	assert.Equal(t, "", q.Format)
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("select(_id, country)&format(ascii)")
	if assert.NoError(t, err) {
		assert.Equal(t, Query{Select: []string{"_id", "country"}, Format: FormatASCII}, q)
	}

	q, err = ParseQuery("&sort(-name)&&limit(2)&")
	if assert.NoError(t, err) {
		assert.Equal(t, Query{Sort: []string{"-name"}, Limit: 2}, q)
	}

	q, err = ParseQuery("")
	if assert.NoError(t, err) {
		assert.Equal(t, Query{}, q)
	}
}

func TestParseQueryRoundTrip(t *testing.T) {
	for _, q := range []Query{
		{},
		{Select: []string{"_id", "country"}, Format: FormatASCII},
		{Select: []string{"name"}, Sort: []string{"-name", "_id"}, Limit: 5},
		{Format: "json"},
	} {
		parsed, err := ParseQuery(q.String())
		if assert.NoError(t, err, q.String()) {
			assert.Equal(t, q, parsed)
		}
	}
}

func TestParseQueryErrors(t *testing.T) {
	for _, raw := range []string{
		"select(_id",
		"select(a))",
		"select((a)",
		"select",
		"(a)",
		"limit(-1)",
		"limit(x)",
		"limit(1,2)",
		"limit()",
		"format(ascii,json)",
		"count(1)",
		"select(a)&bogus(1)",
	} {
		_, err := ParseQuery(raw)
		if assert.Error(t, err, raw) {
			assert.IsType(t, ErrBadQuery{}, err, raw)
		}
	}
}
