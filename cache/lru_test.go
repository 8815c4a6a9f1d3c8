// Copyright 2016-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache

import (
	"testing"

	"github.com/diffeo/go-spinta/spinta"
	"github.com/stretchr/testify/assert"
)

func Make(key string) (spinta.Object, error) {
	return spinta.Object{"_id": key}, nil
}

func DoNotMake(key string) (spinta.Object, error) {
	return nil, assert.AnError
}

type LRUAssertions struct {
	*assert.Assertions
	LRU *lru
}

func NewLRUAssertions(t assert.TestingT, size int) *LRUAssertions {
	return &LRUAssertions{
		assert.New(t),
		newLRU(size),
	}
}

// PutName adds an item with key to the cache.
func (a *LRUAssertions) PutName(key string) {
	a.LRU.Put(key, spinta.Object{"_id": key})
}

// GetName fetches an item with key from the cache; if not present, it
// is added.
func (a *LRUAssertions) GetName(key string) {
	obj, err := a.LRU.Get(key, Make)
	if a.NoError(err) {
		a.Equal(key, obj.ID())
	}
}

// GetPresent fetches an item with key from the cache; if not present,
// it should produce an assertion error.
func (a *LRUAssertions) GetPresent(key string) {
	obj, err := a.LRU.Get(key, DoNotMake)
	if a.NoError(err) {
		a.Equal(key, obj.ID())
	}
}

// GetError tries to fetch an item from the cache, but it should not
// exist, and the resulting error will be caught.
func (a *LRUAssertions) GetError(key string) {
	_, err := a.LRU.Get(key, DoNotMake)
	a.Error(err)
}

// LRUHas asserts that an item with key is in the cache.
func (a *LRUAssertions) LRUHas(key string) {
	obj := a.LRU.Peek(key)
	if a.NotNil(obj) {
		a.Equal(key, obj.ID())
	}
}

// LRUDoesNotHave asserts that no item with key is in the cache.
func (a *LRUAssertions) LRUDoesNotHave(key string) {
	obj := a.LRU.Peek(key)
	a.Nil(obj)
}

// TestLRUSimple tests minimal object presence.
func TestLRUSimple(t *testing.T) {
	a := NewLRUAssertions(t, 2)
	a.PutName("Sam")

	a.LRUHas("Sam")
	a.LRUDoesNotHave("Horton")
	a.Equal(1, a.LRU.Len())
}

// TestLRUAutoInsert tests lru.Get() adding absent items.
func TestLRUAutoInsert(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	// Get (and insert) two keys
	a.GetName("Marvin")
	a.GetName("Horton")

	// At this point "Marvin" and "Horton" should both be present
	a.LRUHas("Marvin")
	a.LRUHas("Horton")

	// Now add one more key; since it is a third one, the oldest
	// (Marvin) should be evicted
	a.GetName("Sam")
	a.LRUDoesNotHave("Marvin")
	a.LRUHas("Horton")
	a.LRUHas("Sam")
}

func TestLRUInsertError(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	// As before
	a.GetName("Marvin")
	a.GetName("Horton")
	a.LRUHas("Marvin")
	a.LRUHas("Horton")

	// Now try to add "Sam", but the add function will return an error
	a.GetError("Sam")
	// Since no item was added, nothing will be evicted
	a.LRUHas("Marvin")
	a.LRUHas("Horton")
	a.LRUDoesNotHave("Sam")

	// We can call the erroring version of Get() but since the item
	// is present it will not fail
	a.GetPresent("Marvin")
	a.GetPresent("Horton")
}

// TestLRUOrder tests that getting an item causes it to not get evicted.
func TestLRUOrder(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.GetName("Marvin")
	a.GetName("Horton")
	a.LRUHas("Marvin")
	a.LRUHas("Horton")

	// Do an *additional* get for Marvin, so he is more-recently-used
	a.GetName("Marvin")

	// Now when we add Sam, Horton gets pushed out
	a.GetName("Sam")
	a.LRUHas("Marvin")
	a.LRUDoesNotHave("Horton")
	a.LRUHas("Sam")
}

// TestLRUReplace tests that Put on a present key replaces the object.
func TestLRUReplace(t *testing.T) {
	a := NewLRUAssertions(t, 2)
	a.PutName("Marvin")
	a.LRU.Put("Marvin", spinta.Object{"_id": "Marvin", "_revision": "2"})
	a.Equal("2", a.LRU.Peek("Marvin").Revision())
	a.Equal(1, a.LRU.Len())
}

// TestLRURemoval does simple tests on the Remove call.
func TestLRURemoval(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	// Obvious thing #1:
	a.GetName("Marvin")
	a.LRUHas("Marvin")
	a.LRU.Remove("Marvin")
	a.LRUDoesNotHave("Marvin")

	// Obvious thing #2:
	a.LRU.Remove("Sam")
	a.LRUDoesNotHave("Sam")

	// Also if we remove a more-recent thing, the
	// older-but-present thing shouldn't get evicted
	a.GetName("Marvin")
	a.GetName("Horton")
	a.LRU.Remove("Horton")
	a.GetName("Sam")
	a.LRUHas("Marvin")
	a.LRUDoesNotHave("Horton")
	a.LRUHas("Sam")
}
