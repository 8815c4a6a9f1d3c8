// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package spintatest

import (
	"github.com/diffeo/go-spinta/spinta"
	"github.com/satori/go.uuid"
)

// table holds the objects of one model in insertion order.
type table struct {
	order []string
	byID  map[string]spinta.Object
}

func newTable() *table {
	return &table{byID: make(map[string]spinta.Object)}
}

func (t *table) get(id string) (spinta.Object, bool) {
	obj, ok := t.byID[id]
	return obj, ok
}

// put stores obj under its _id with a fresh revision.
func (t *table) put(obj spinta.Object) {
	id := obj.ID()
	if _, exists := t.byID[id]; !exists {
		t.order = append(t.order, id)
	}
	obj[spinta.KeyRevision] = uuid.NewV4().String()
	t.byID[id] = obj
}

func (t *table) all() []spinta.Object {
	result := make([]spinta.Object, len(t.order))
	for i, id := range t.order {
		result[i] = t.byID[id]
	}
	return result
}

// findByKey returns the first object whose properties equal key.
func (t *table) findByKey(key map[string]interface{}) (spinta.Object, bool) {
	for _, id := range t.order {
		obj := t.byID[id]
		match := true
		for k, v := range key {
			if !sameValue(obj[k], v) {
				match = false
				break
			}
		}
		if match {
			return obj, true
		}
	}
	return nil, false
}

// copyObject returns a deep copy of obj, so stored objects never alias
// request or response maps.
func copyObject(obj spinta.Object) spinta.Object {
	result := make(spinta.Object, len(obj))
	for k, v := range obj {
		if m, ok := v.(map[string]interface{}); ok {
			mm := make(map[string]interface{}, len(m))
			for kk, vv := range m {
				mm[kk] = vv
			}
			v = mm
		}
		result[k] = v
	}
	return result
}
