// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package push

import (
	"crypto/sha1"
	"encoding/hex"
	"math"
	"sort"
	"strings"

	"github.com/diffeo/go-spinta/spinta"
	"github.com/ugorji/go/codec"
)

// Flatten turns a nested object into one or more flat rows.  Nested
// maps join their keys with ".".  A non-empty list becomes a key
// ending in "[]", and the object expands into one row per element; two
// lists expand into every combination.  Nil values and empty lists are
// dropped.
func Flatten(obj map[string]interface{}) []map[string]interface{} {
	data, lists := flattenValue(obj, nil)
	if len(lists) == 0 {
		if data == nil {
			data = map[string]interface{}{}
		}
		return []map[string]interface{}{data}
	}

	var result []map[string]interface{}
	combo := make([]interface{}, len(lists))
	var expand func(int)
	expand = func(i int) {
		if i == len(lists) {
			row := make(map[string]interface{}, len(data)+len(lists))
			for j, l := range lists {
				if combo[j] != nil {
					row[l.key] = combo[j]
				}
			}
			for k, v := range data {
				row[k] = v
			}
			result = append(result, Flatten(row)...)
			return
		}
		for _, v := range lists[i].values {
			combo[i] = v
			expand(i + 1)
		}
	}
	expand(0)
	return result
}

type listField struct {
	key    string
	values []interface{}
}

func flattenValue(value interface{}, key []string) (map[string]interface{}, []listField) {
	switch v := value.(type) {
	case map[string]interface{}:
		return flattenMap(v, key)
	case spinta.Object:
		return flattenMap(v, key)
	case []interface{}:
		if len(v) == 0 {
			return nil, nil
		}
		name := strings.Join(key, ".") + "[]"
		return nil, []listField{{key: name, values: v}}
	case nil:
		return nil, nil
	default:
		return map[string]interface{}{strings.Join(key, "."): v}, nil
	}
}

func flattenMap(m map[string]interface{}, key []string) (map[string]interface{}, []listField) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)

	data := map[string]interface{}{}
	var lists []listField
	for _, k := range names {
		if m[k] == nil {
			continue
		}
		sub := append(append([]string(nil), key...), k)
		d, more := flattenValue(m[k], sub)
		for dk, dv := range d {
			data[dk] = dv
		}
		lists = append(lists, more...)
	}
	return data, lists
}

// msgpackHandle encodes revision input.  Strings use the str8 family
// and integers their smallest encoding.
func msgpackHandle() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	return h
}

// Revision computes the local revision of an object: the SHA-1 of the
// msgpack encoding of its flattened properties as a list of sorted
// [key, value] pairs.  Reserved keys are ignored, so the revision
// only changes when data does.
func Revision(obj spinta.Object) (string, error) {
	props := make(map[string]interface{}, len(obj))
	for _, k := range obj.Properties() {
		props[k] = obj[k]
	}

	var pairs [][]interface{}
	for _, row := range Flatten(props) {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pairs = append(pairs, []interface{}{k, normalizeNumber(row[k])})
		}
	}
	if pairs == nil {
		pairs = [][]interface{}{}
	}

	var encoded []byte
	if err := codec.NewEncoderBytes(&encoded, msgpackHandle()).Encode(pairs); err != nil {
		return "", err
	}
	sum := sha1.Sum(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// normalizeNumber maps every integer type to int64 (or uint64 past
// its range), so the same value hashes the same whether it came from
// JSON or YAML.
func normalizeNumber(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return normalizeNumber(uint64(n))
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
		return n
	case float32:
		return float64(n)
	default:
		return v
	}
}
