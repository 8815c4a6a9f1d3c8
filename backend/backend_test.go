// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package backend

import (
	"testing"

	"github.com/diffeo/go-spinta/memory"
	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	var b Backend
	if assert.NoError(t, b.Set("postgres://user@localhost/db")) {
		assert.Equal(t, "postgres", b.Implementation)
		assert.Equal(t, "//user@localhost/db", b.Address)
		assert.Equal(t, "postgres://user@localhost/db", b.String())
	}

	if assert.NoError(t, b.Set("memory")) {
		assert.Equal(t, "memory", b.Implementation)
		assert.Equal(t, "", b.Address)
		assert.Equal(t, "memory", b.String())
	}

	assert.Error(t, b.Set(""))
	assert.Equal(t, ErrUnknownBackend{Implementation: "sqlite"}, b.Set("sqlite:/tmp/push.db"))
	assert.Equal(t, "memory", b.Implementation)
}

func TestState(t *testing.T) {
	b := Backend{Implementation: "memory"}
	state, err := b.State()
	if assert.NoError(t, err) {
		assert.IsType(t, &memory.State{}, state)
	}

	b = Backend{}
	state, err = b.State()
	assert.NoError(t, err)
	assert.Nil(t, state)

	b = Backend{Implementation: "bogus"}
	_, err = b.State()
	assert.Error(t, err)
}
