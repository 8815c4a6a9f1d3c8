// Copyright 2016-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package cache provides read-through caching of spinta objects.  The
// cache wraps some other spinta.Client.  Objects fetched by _id, and
// objects returned from Insert and unfiltered GetAll calls, are kept in
// a fixed-size LRU keyed by model and _id, and later Get calls for the
// same object are answered from memory.
//
// Caveats
//
// The cache only sees changes made through it.  An object changed by
// another client keeps its cached revision until it is evicted.  Push
// drops the cached copy of every object it sends rather than trying to
// reconstruct the stored object from the upsert.
//
// Table always goes to the server.
package cache

import (
	"context"

	"github.com/diffeo/go-spinta/spinta"
)

// DefaultSize is the capacity used by New when size is not positive.
const DefaultSize = 1024

// Client is a caching spinta.Client.
type Client struct {
	upstream spinta.Client
	objects  *lru
}

// New creates a cache in front of upstream holding up to size objects.
func New(upstream spinta.Client, size int) *Client {
	if size <= 0 {
		size = DefaultSize
	}
	return &Client{
		upstream: upstream,
		objects:  newLRU(size),
	}
}

func key(model spinta.ModelName, id string) string {
	return model.String() + "/" + id
}

// clone returns a deep copy, so callers can't modify cached objects,
// including nested references.
func clone(obj spinta.Object) spinta.Object {
	if obj == nil {
		return nil
	}
	result := make(spinta.Object, len(obj))
	for k, v := range obj {
		result[k] = copyValue(v)
	}
	return result
}

func copyValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, x := range vv {
			m[k] = copyValue(x)
		}
		return m
	case spinta.Object:
		return clone(vv)
	case []interface{}:
		l := make([]interface{}, len(vv))
		for i, x := range vv {
			l[i] = copyValue(x)
		}
		return l
	default:
		return v
	}
}

// Insert implements spinta.Client.
func (c *Client) Insert(ctx context.Context, model spinta.ModelName, obj spinta.Object) (spinta.Object, error) {
	created, err := c.upstream.Insert(ctx, model, obj)
	if err != nil {
		return nil, err
	}
	if id := created.ID(); id != "" {
		c.objects.Put(key(model, id), clone(created))
	}
	return created, nil
}

// Get implements spinta.Client.  Failed fetches are not cached.
func (c *Client) Get(ctx context.Context, model spinta.ModelName, id string) (spinta.Object, error) {
	if id == "" {
		return nil, spinta.ErrNoID
	}
	obj, err := c.objects.Get(key(model, id), func(string) (spinta.Object, error) {
		return c.upstream.Get(ctx, model, id)
	})
	if err != nil {
		return nil, err
	}
	return clone(obj), nil
}

// GetAll implements spinta.Client.  Without a selection, every
// returned object refreshes the cache.
func (c *Client) GetAll(ctx context.Context, model spinta.ModelName, query spinta.Query) ([]spinta.Object, error) {
	objs, err := c.upstream.GetAll(ctx, model, query)
	if err != nil {
		return nil, err
	}
	if len(query.Select) == 0 {
		for _, obj := range objs {
			if id := obj.ID(); id != "" {
				c.objects.Put(key(model, id), clone(obj))
			}
		}
	}
	return objs, nil
}

// Table implements spinta.Client.
func (c *Client) Table(ctx context.Context, model spinta.ModelName, query spinta.Query) (string, error) {
	return c.upstream.Table(ctx, model, query)
}

// Push implements spinta.Client.
func (c *Client) Push(ctx context.Context, batch []spinta.Object) ([]spinta.Object, error) {
	for _, obj := range batch {
		c.forget(obj)
	}
	return c.upstream.Push(ctx, batch)
}

func (c *Client) forget(obj spinta.Object) {
	model, err := spinta.ParseModelName(obj.Type())
	if err != nil || obj.ID() == "" {
		return
	}
	c.objects.Remove(key(model, obj.ID()))
}
