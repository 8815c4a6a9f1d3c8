// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package spinta

import (
	"strings"
	"unicode"
)

// ModelName is the full path of a model, split into the dataset that
// contains it and the model's own name.  For "datasets/gov/example/City"
// the dataset is "datasets/gov/example" and the model "City".
type ModelName struct {
	Dataset string
	Model   string
}

// ParseModelName validates and splits a model path.  Leading and
// trailing slashes are ignored.  Every segment must be non-empty and
// made of letters, digits and underscores; the final segment must start
// with an uppercase letter.
func ParseModelName(path string) (ModelName, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return ModelName{}, ErrBadModelName{Name: path}
	}
	segments := strings.Split(path, "/")
	for _, seg := range segments {
		if !validSegment(seg) {
			return ModelName{}, ErrBadModelName{Name: path}
		}
	}
	last := segments[len(segments)-1]
	if !unicode.IsUpper([]rune(last)[0]) {
		return ModelName{}, ErrBadModelName{Name: path}
	}
	return ModelName{
		Dataset: strings.Join(segments[:len(segments)-1], "/"),
		Model:   last,
	}, nil
}

// MustParseModelName is ParseModelName for fixed names; it panics on
// error.
func MustParseModelName(path string) ModelName {
	name, err := ParseModelName(path)
	if err != nil {
		panic(err)
	}
	return name
}

func validSegment(seg string) bool {
	if seg == "" {
		return false
	}
	for _, c := range seg {
		switch {
		case c == '_',
			(c >= 'a' && c <= 'z'),
			(c >= 'A' && c <= 'Z'),
			(c >= '0' && c <= '9'):
			continue
		default:
			return false
		}
	}
	return true
}

// String returns the full model path, without a leading slash.
func (m ModelName) String() string {
	if m.Dataset == "" {
		return m.Model
	}
	return m.Dataset + "/" + m.Model
}

// Sibling returns another model in the same dataset.
func (m ModelName) Sibling(model string) ModelName {
	return ModelName{Dataset: m.Dataset, Model: model}
}
