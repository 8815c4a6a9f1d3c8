// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package spinta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModelName(t *testing.T) {
	m, err := ParseModelName("datasets/gov/example/City")
	if assert.NoError(t, err) {
		assert.Equal(t, ModelName{Dataset: "datasets/gov/example", Model: "City"}, m)
		assert.Equal(t, "datasets/gov/example/City", m.String())
	}

	m, err = ParseModelName("/Country/")
	if assert.NoError(t, err) {
		assert.Equal(t, ModelName{Model: "Country"}, m)
		assert.Equal(t, "Country", m.String())
	}

	m, err = ParseModelName("datasets/gov_2/example/City_Explicit9")
	if assert.NoError(t, err) {
		assert.Equal(t, "City_Explicit9", m.Model)
	}
}

func TestParseModelNameErrors(t *testing.T) {
	for _, path := range []string{
		"",
		"/",
		"datasets/gov/example/city",
		"datasets/gov/example/9City",
		"datasets//example/City",
		"datasets/gov-lt/example/City",
		"datasets/gov/example/Ci ty",
		"datasets/gov/example/Miestas€",
	} {
		_, err := ParseModelName(path)
		if assert.Error(t, err, path) {
			assert.IsType(t, ErrBadModelName{}, err, path)
		}
	}
}

func TestMustParseModelName(t *testing.T) {
	assert.Equal(t, "City", MustParseModelName("datasets/gov/example/City").Model)
	assert.Panics(t, func() { MustParseModelName("datasets/gov/example/city") })
}

func TestSibling(t *testing.T) {
	city := MustParseModelName("datasets/gov/example/City")
	assert.Equal(t, "datasets/gov/example/Country", city.Sibling("Country").String())
}
