// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package spinta

import (
	"strconv"
	"strings"
)

// Query describes the URL query spinta accepts on collection GETs.
// Spinta does not use key=value pairs; each part is a call such as
// select(_id,country) and parts are joined with &.
type Query struct {
	// Select lists the properties to return.  Empty means all.
	Select []string

	// Sort lists properties to sort by; a leading "-" sorts
	// descending.
	Sort []string

	// Limit caps the number of returned objects.  Zero means no
	// limit.
	Limit int

	// Format names the output format, such as "ascii" or "json".
	// Empty means the server default (JSON).
	Format string
}

// FormatASCII is the Format value for fixed-width tables.
const FormatASCII = "ascii"

// String renders the query in spinta's call syntax, suitable for
// url.URL.RawQuery.
func (q Query) String() string {
	var parts []string
	if len(q.Select) > 0 {
		parts = append(parts, "select("+strings.Join(q.Select, ",")+")")
	}
	if len(q.Sort) > 0 {
		parts = append(parts, "sort("+strings.Join(q.Sort, ",")+")")
	}
	if q.Limit > 0 {
		parts = append(parts, "limit("+strconv.Itoa(q.Limit)+")")
	}
	if q.Format != "" {
		parts = append(parts, "format("+q.Format+")")
	}
	return strings.Join(parts, "&")
}

// WithFormat returns a copy of q with a different output format.
func (q Query) WithFormat(format string) Query {
	q.Format = format
	return q
}

// ParseQuery parses a raw URL query in spinta's call syntax.  Unknown
// calls, unbalanced parentheses and bad limits return ErrBadQuery.
func ParseQuery(raw string) (Query, error) {
	var q Query
	if raw == "" {
		return q, nil
	}
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		open := strings.IndexByte(part, '(')
		if open <= 0 || !strings.HasSuffix(part, ")") {
			return Query{}, ErrBadQuery{Query: raw, Part: part}
		}
		name := part[:open]
		inner := part[open+1 : len(part)-1]
		if strings.ContainsAny(inner, "()") {
			return Query{}, ErrBadQuery{Query: raw, Part: part}
		}
		args := splitArgs(inner)
		switch name {
		case "select":
			q.Select = args
		case "sort":
			q.Sort = args
		case "limit":
			if len(args) != 1 {
				return Query{}, ErrBadQuery{Query: raw, Part: part}
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return Query{}, ErrBadQuery{Query: raw, Part: part}
			}
			q.Limit = n
		case "format":
			if len(args) != 1 {
				return Query{}, ErrBadQuery{Query: raw, Part: part}
			}
			q.Format = args[0]
		default:
			return Query{}, ErrBadQuery{Query: raw, Part: part}
		}
	}
	return q, nil
}

func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	args := strings.Split(s, ",")
	for i, a := range args {
		args[i] = strings.TrimSpace(a)
	}
	return args
}
