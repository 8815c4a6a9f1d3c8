// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct a push state
// store based on command-line flags or configuration.
package backend

import (
	"errors"
	"strings"

	"github.com/diffeo/go-spinta/memory"
	"github.com/diffeo/go-spinta/postgres"
	"github.com/diffeo/go-spinta/push"
)

// Backend describes user-visible parameters to store push state.  This
// implements the flag.Value interface, and so a typical use is
//
//     func main() {
//         backend := backend.Backend{Implementation: "memory"}
//         flag.Var(&backend, "state", "impl:address of push state storage")
//         flag.Parse()
//         state, err := backend.State()
//     }
type Backend struct {
	// Implementation holds the name of the implementation; for
	// instance, "memory".
	Implementation string

	// Address holds some backend-specific address, such as a
	// database connect string.
	Address string
}

// ErrUnknownBackend is returned for implementation names that are not
// compiled in.
type ErrUnknownBackend struct {
	Implementation string
}

func (e ErrUnknownBackend) Error() string {
	return "unknown push state backend " + e.Implementation
}

// State creates a new push state store.  This generally should be only
// called once.  If b.Implementation is "memory", multiple calls to
// this will create multiple independent stores.  If b.Implementation
// is empty, returns nil, meaning every row is pushed.
func (b *Backend) State() (push.State, error) {
	switch b.Implementation {
	case "", "none":
		return nil, nil
	case "memory":
		return memory.New(), nil
	case "postgres":
		state, err := postgres.New(b.Address)
		if err != nil {
			return nil, err
		}
		return state, nil
	default:
		return nil, ErrUnknownBackend{Implementation: b.Implementation}
	}
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string.  Set checks to see if the provided
// implementation is any of the known implementations, and returns an
// appropriate error if not.
//
// This is part of the flag.Value interface.  Note that this does not
// validate the b.Address part of the string or attempt to actually
// make a connection.
func (b *Backend) Set(param string) error {
	if param == "" {
		return errors.New("must specify a backend type")
	}
	parts := strings.SplitN(param, ":", 2)
	switch parts[0] {
	case "none", "memory", "postgres":
	default:
		return ErrUnknownBackend{Implementation: parts[0]}
	}
	b.Implementation = parts[0]
	b.Address = ""
	if len(parts) == 2 {
		b.Address = parts[1]
	}
	return nil
}
