// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package spinta defines an abstract API to a spinta data-publishing
// server.
//
// A spinta server exposes datasets, each of which holds a set of
// models.  A model is addressed by its full path, such as
// "datasets/gov/example/City", and every object stored under it gets a
// server-assigned opaque identifier (_id) and a revision token
// (_revision) that changes every time the object is modified.
//
// In most cases applications will get an implementation of Client from
// the restclient package, and possibly decorate it with the cache
// package.
package spinta

import (
	"context"
	"sort"
	"strings"
)

// Reserved property names.  These are managed by the server (or, for
// _op and _where, only meaningful in batch requests) and are never
// declared on a model.
const (
	KeyID       = "_id"
	KeyRevision = "_revision"
	KeyType     = "_type"
	KeyOp       = "_op"
	KeyWhere    = "_where"
	KeyTxn      = "_txn"
)

// IsReserved returns true if name is one of the reserved property
// names.
func IsReserved(name string) bool {
	return strings.HasPrefix(name, "_")
}

// Client is the principal interface to a spinta server.
// Implementations of this interface are safe for concurrent use.
type Client interface {
	// Insert creates a new object under model.  The object may
	// carry an explicit _id if the model permits client-supplied
	// identifiers.  On success returns the server representation,
	// which includes _id, _revision, and _type.
	Insert(ctx context.Context, model ModelName, obj Object) (Object, error)

	// Get retrieves a single object by its opaque identifier.
	Get(ctx context.Context, model ModelName, id string) (Object, error)

	// GetAll retrieves every object under model matching query.
	// Any Format in the query is ignored.
	GetAll(ctx context.Context, model ModelName, query Query) ([]Object, error)

	// Table retrieves objects under model rendered as a fixed-width
	// ascii table.
	Table(ctx context.Context, model ModelName, query Query) (string, error)

	// Push submits a batch of operations in a single request.  Each
	// object must carry _op and _type.  The result has exactly one
	// entry per submitted object, in order.
	Push(ctx context.Context, batch []Object) ([]Object, error)
}

// Object is a single resource representation as it travels over the
// wire: declared properties plus the reserved _id, _revision and _type
// keys.
type Object map[string]interface{}

func (o Object) str(key string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return ""
}

// ID returns the opaque identifier, or an empty string if the object
// has none yet.
func (o Object) ID() string {
	return o.str(KeyID)
}

// Revision returns the revision token.
func (o Object) Revision() string {
	return o.str(KeyRevision)
}

// Type returns the model name the server reported for this object.
func (o Object) Type() string {
	return o.str(KeyType)
}

// Properties returns the names of the non-reserved keys, sorted.
func (o Object) Properties() []string {
	var names []string
	for k := range o {
		if !IsReserved(k) {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Without returns a shallow copy of o with the named keys removed.
func (o Object) Without(keys ...string) Object {
	result := make(Object, len(o))
	for k, v := range o {
		result[k] = v
	}
	for _, k := range keys {
		delete(result, k)
	}
	return result
}
