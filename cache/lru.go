// Copyright 2016-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache

// This file provides a simple LRU cache of objects keyed by their
// model and _id.

import (
	"container/list"
	"sync"

	"github.com/diffeo/go-spinta/spinta"
)

// entry is one cached object with its key.
type entry struct {
	key string
	obj spinta.Object
}

// lru is a least-recently-used cache with a fixed capacity.  The cache
// can be safely accessed from multiple goroutines.
type lru struct {
	size      int
	lock      sync.RWMutex
	evictList *list.List
	index     map[string]*list.Element
}

func newLRU(size int) *lru {
	return &lru{
		size:      size,
		evictList: list.New(),
		index:     make(map[string]*list.Element),
	}
}

// Get retrieves an item from the cache.  If it is not present, calls
// the fetch function, and if that succeeds, saves the item and returns
// it.  This should return an error only if the item is not present and
// the fetch function returns an error.
func (lru *lru) Get(key string, fetch func(string) (spinta.Object, error)) (spinta.Object, error) {
	// This sadly happens under a writer lock, since we need to move
	// the item to the front of the list if it is present
	lru.lock.Lock()
	defer lru.lock.Unlock()

	// Is it there?
	if element, present := lru.index[key]; present {
		lru.evictList.MoveToBack(element)
		return element.Value.(*entry).obj, nil
	}

	// Otherwise call the fetch function
	obj, err := fetch(key)
	if err != nil {
		return obj, err
	}
	lru.add(key, obj)
	return obj, nil
}

// Peek looks for an item in the cache and returns it if present, or
// returns nil if absent.  This runs under a reader lock, and so can
// run concurrently with itself but not calls to Put or Get.  This
// does not affect the recency of the item.
func (lru *lru) Peek(key string) spinta.Object {
	lru.lock.RLock()
	defer lru.lock.RUnlock()

	if element, present := lru.index[key]; present {
		return element.Value.(*entry).obj
	}
	return nil
}

// Put adds an item to the LRU cache, possibly evicting something.
func (lru *lru) Put(key string, obj spinta.Object) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	// Are we just updating an existing item?
	if element, present := lru.index[key]; present {
		element.Value.(*entry).obj = obj
		lru.evictList.MoveToBack(element)
		return
	}

	// Otherwise add it
	lru.add(key, obj)
}

// Remove takes an item out of the cache.  It does nothing if that
// key does not exist.
func (lru *lru) Remove(key string) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[key]; present {
		delete(lru.index, key)
		lru.evictList.Remove(element)
	}
}

// Len returns the number of cached items.
func (lru *lru) Len() int {
	lru.lock.RLock()
	defer lru.lock.RUnlock()
	return len(lru.index)
}

// add is an internal helper, running under the write lock, that adds a
// new item to the cache.  The item is known to not already exist.
func (lru *lru) add(key string, obj spinta.Object) {
	element := lru.evictList.PushBack(&entry{key: key, obj: obj})
	lru.index[key] = element

	// If this caused the cache to go over size, start evicting items
	for len(lru.index) > lru.size {
		head := lru.evictList.Front()
		delete(lru.index, head.Value.(*entry).key)
		lru.evictList.Remove(head)
	}
}
