// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package spintatest

import (
	"fmt"
	"math"
)

// toFloat converts any Go number type to float64.  JSON decoding
// produces int64, uint64 or float64 depending on the literal.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func isInteger(v interface{}) bool {
	f, ok := toFloat(v)
	return ok && f == math.Trunc(f)
}

// sameValue compares two decoded JSON values, treating numbers of
// different Go types as equal when their values are.
func sameValue(a, b interface{}) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
