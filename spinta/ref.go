// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package spinta

import "fmt"

// RefShape describes how a reference property identifies its target.
type RefShape int

const (
	// RefInvalid is returned for values that are not references
	// at all.
	RefInvalid RefShape = iota

	// RefByID references the target by its opaque _id.
	RefByID

	// RefByKey references the target by one or more business-key
	// properties, such as {"id": 42}.
	RefByKey
)

func (s RefShape) String() string {
	switch s {
	case RefByID:
		return "_id"
	case RefByKey:
		return "key"
	default:
		return "invalid"
	}
}

// RefID builds a reference to the object with opaque identifier id.
func RefID(id string) map[string]interface{} {
	return map[string]interface{}{KeyID: id}
}

// RefKey builds a business-key reference, e.g. RefKey("id", 42).
func RefKey(property string, value interface{}) map[string]interface{} {
	return map[string]interface{}{property: value}
}

// RefOf inspects a property value and, if it is a reference, returns
// it as a string-keyed map along with its shape.  A reference with
// _id is RefByID; any other non-empty map is RefByKey.
func RefOf(value interface{}) (map[string]interface{}, RefShape) {
	var ref map[string]interface{}
	switch v := value.(type) {
	case map[string]interface{}:
		ref = v
	case Object:
		ref = map[string]interface{}(v)
	case map[interface{}]interface{}:
		ref = make(map[string]interface{}, len(v))
		for k, vv := range v {
			ref[fmt.Sprint(k)] = vv
		}
	default:
		return nil, RefInvalid
	}
	if len(ref) == 0 {
		return nil, RefInvalid
	}
	if _, ok := ref[KeyID]; ok {
		return ref, RefByID
	}
	return ref, RefByKey
}
