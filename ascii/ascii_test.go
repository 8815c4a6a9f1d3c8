// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package ascii

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTwoColumns(t *testing.T) {
	rows := []map[string]interface{}{
		{"_id": "abc", "country._id": "def"},
	}
	actual := Render([]string{"_id", "country._id"}, rows, Options{})
	assert.Equal(t, ""+
		"_id  country._id  \n"+
		"---  -----------  \n"+
		"abc  def        \n", actual)
}

func TestRenderEmptyValue(t *testing.T) {
	rows := []map[string]interface{}{
		{"_id": "a"},
	}
	actual := Render([]string{"_id", "name"}, rows, Options{})
	assert.Equal(t, ""+
		"_id  name  \n"+
		"---  ----  \n"+
		"a    ∅   \n", actual)
}

func TestRenderNoRows(t *testing.T) {
	actual := Render([]string{"_id"}, nil, Options{})
	assert.Equal(t, "_id  \n---  \n", actual)
}

func TestRenderWraps(t *testing.T) {
	rows := []map[string]interface{}{
		{"name": "abcdefghij"},
	}
	actual := Render([]string{"name"}, rows, Options{MaxColWidth: 4})
	assert.Equal(t, ""+
		"name  \n"+
		"----  \n"+
		"abcd\\\n"+
		"efgh\\\n"+
		"ij  \n", actual)
}

func TestRenderMultiline(t *testing.T) {
	rows := []map[string]interface{}{
		{"a": "x\ny", "b": "z"},
	}
	actual := Render([]string{"a", "b"}, rows, Options{})
	assert.Equal(t, ""+
		"a  b  \n"+
		"-  -  \n"+
		"x  z\\\n"+
		"y   \n", actual)
}

func TestRenderElided(t *testing.T) {
	rows := []map[string]interface{}{
		{"a": "x", "b": "y"},
	}
	actual := Render([]string{"a", "b"}, rows, Options{MaxWidth: 5})
	assert.Equal(t, ""+
		"a  ...\n"+
		"-  ...\n"+
		"x  ...\n", actual)

	table, err := Parse(actual)
	require.NoError(t, err)
	assert.True(t, table.Elided)
	assert.Equal(t, []string{"a"}, table.Columns)
	assert.Equal(t, []map[string]string{{"a": "x"}}, table.Rows)
}

func TestRenderTruncatesLongValues(t *testing.T) {
	rows := []map[string]interface{}{
		{"v": "0123456789"},
	}
	actual := Render([]string{"v"}, rows, Options{MaxValueLength: 4})
	assert.Contains(t, actual, "0123...")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "42", FormatValue(float64(42)))
	assert.Equal(t, "42", FormatValue(uint64(42)))
	assert.Equal(t, "1.5", FormatValue(1.5))
	assert.Equal(t, "True", FormatValue(true))
	assert.Equal(t, "Lithuania", FormatValue("Lithuania"))
}

func TestParseRoundTrip(t *testing.T) {
	rows := []map[string]interface{}{
		{"_id": "0a4b", "name": "Vilnius", "country._id": "c6d1"},
		{"_id": "77f2", "name": "Kaunas city"},
		{"_id": "9e10", "name": "a rather long name that will wrap", "country._id": "c6d1"},
	}
	cols := []string{"_id", "name", "country._id"}
	table, err := Parse(Render(cols, rows, Options{MaxColWidth: 12}))
	require.NoError(t, err)
	assert.False(t, table.Elided)
	assert.Equal(t, cols, table.Columns)
	if assert.Len(t, table.Rows, 3) {
		assert.Equal(t, map[string]string{"_id": "0a4b", "name": "Vilnius", "country._id": "c6d1"}, table.Rows[0])
		assert.Equal(t, map[string]string{"_id": "77f2", "name": "Kaunas city"}, table.Rows[1])
		assert.Equal(t, "c6d1", table.Rows[2]["country._id"])
	}
	assert.Equal(t, []string{"0a4b", "77f2", "9e10"}, table.Column("_id"))
}

func TestParseNoBorder(t *testing.T) {
	_, err := Parse("just one line\n")
	assert.Equal(t, ErrNoBorder, err)

	_, err = Parse("a  b\nxx yy\n")
	assert.Equal(t, ErrNoBorder, err)
}

func TestFlattenAndColumns(t *testing.T) {
	obj := map[string]interface{}{
		"_id":     "x",
		"country": map[string]interface{}{"_id": "y"},
	}
	flat := Flatten(obj)
	assert.Equal(t, map[string]interface{}{"_id": "x", "country._id": "y"}, flat)

	cols := Columns([]string{"_id", "country", "missing"}, []map[string]interface{}{flat})
	assert.Equal(t, []string{"_id", "country._id", "missing"}, cols)
}

func TestColumnsNullReference(t *testing.T) {
	rows := []map[string]interface{}{
		Flatten(map[string]interface{}{"_id": "a1", "country": nil}),
		Flatten(map[string]interface{}{"_id": "b2", "country": map[string]interface{}{"_id": "c3"}}),
	}
	cols := Columns([]string{"_id", "country"}, rows)
	assert.Equal(t, []string{"_id", "country._id"}, cols)

	table, err := Parse(Render(cols, rows, Options{}))
	require.NoError(t, err)
	assert.Equal(t, cols, table.Columns)
	assert.Equal(t, []string{"", "c3"}, table.Column("country._id"))
}

func TestRenderFalsyValues(t *testing.T) {
	rows := []map[string]interface{}{
		{"n": 0, "b": false},
	}
	actual := Render([]string{"n", "b"}, rows, Options{})
	assert.Contains(t, actual, "\n0  False\n")
}

func TestParseWrapDropsBoundarySpace(t *testing.T) {
	rows := []map[string]interface{}{
		{"name": "Lithuania Republic"},
	}
	table, err := Parse(Render([]string{"name"}, rows, Options{MaxColWidth: 10}))
	require.NoError(t, err)
	if assert.Len(t, table.Rows, 1) {
		assert.Equal(t, "LithuaniaRepublic", table.Rows[0]["name"])
	}
}
