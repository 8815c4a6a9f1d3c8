// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package memory provides an in-process, in-memory implementation of
// push.State.  There is no persistence, so every push through a fresh
// store sends every row; it is useful for one-shot pushes and for
// testing.  The entire store is behind a single mutex.
package memory

import (
	"context"
	"sync"

	"github.com/diffeo/go-spinta/push"
)

// New creates a new push.State that operates purely in memory.
func New() *State {
	return &State{models: make(map[string]map[string]push.Entry)}
}

// State is an in-memory push.State.
type State struct {
	sem    sync.Mutex
	models map[string]map[string]push.Entry
}

// Revisions implements push.State.
func (s *State) Revisions(ctx context.Context, model string) (map[string]string, error) {
	s.sem.Lock()
	defer s.sem.Unlock()

	result := make(map[string]string, len(s.models[model]))
	for id, entry := range s.models[model] {
		result[id] = entry.Revision
	}
	return result, nil
}

// Save implements push.State.
func (s *State) Save(ctx context.Context, model string, entries []push.Entry) error {
	s.sem.Lock()
	defer s.sem.Unlock()

	table := s.models[model]
	if table == nil {
		table = make(map[string]push.Entry)
		s.models[model] = table
	}
	for _, entry := range entries {
		table[entry.ID] = entry
	}
	return nil
}

// Entry returns the saved state of one object.
func (s *State) Entry(model, id string) (push.Entry, bool) {
	s.sem.Lock()
	defer s.sem.Unlock()
	entry, ok := s.models[model][id]
	return entry, ok
}
