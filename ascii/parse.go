// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package ascii

import (
	"errors"
	"strings"
)

// ErrNoBorder is returned from Parse when the second line of the input
// is not a border of dashes.
var ErrNoBorder = errors.New("ascii table has no border line")

// Table is a parsed ascii table.
type Table struct {
	// Columns lists the column names in display order, without
	// any trailing "..." marker.
	Columns []string

	// Rows holds one map per object.  Empty (∅) cells are left
	// out of the map.
	Rows []map[string]string

	// Elided is true if the server dropped columns that did not
	// fit.
	Elided bool
}

// Column returns the values of one column, in row order.  Missing
// values are empty strings.
func (t *Table) Column(name string) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[name]
	}
	return values
}

type span struct {
	start, end int
}

// Parse reads a table produced by Write or by a spinta server.
// Column positions come from the dash runs of the border line, so
// values containing spaces are read correctly.  Continuation lines
// ending in a backslash are joined back into one row.
//
// Wrapping is lossy: cells are trimmed of padding, so whitespace at the
// point where a value was wrapped is dropped and "Lithuania Republic"
// wrapped after "Lithuania " reads back as "LithuaniaRepublic".
func Parse(text string) (*Table, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) < 2 {
		return nil, ErrNoBorder
	}
	header := []rune(lines[0])
	border := []rune(lines[1])

	var spans []span
	table := &Table{}
	for i := 0; i < len(border); {
		switch border[i] {
		case '-':
			j := i
			for j < len(border) && border[j] == '-' {
				j++
			}
			spans = append(spans, span{i, j})
			i = j
		case ' ':
			i++
		case '.':
			table.Elided = true
			i = len(border)
		default:
			return nil, ErrNoBorder
		}
	}
	if len(spans) == 0 {
		return nil, ErrNoBorder
	}
	for _, sp := range spans {
		table.Columns = append(table.Columns, cell(header, sp))
	}

	var pending map[string]string
	for _, line := range lines[2:] {
		if line == "" {
			continue
		}
		continued := strings.HasSuffix(line, "\\")
		line = strings.TrimSuffix(line, "\\")
		runes := []rune(line)
		if pending == nil {
			pending = map[string]string{}
		}
		for i, sp := range spans {
			value := cell(runes, sp)
			if value == "" || value == Empty {
				continue
			}
			col := table.Columns[i]
			pending[col] += value
		}
		if !continued {
			table.Rows = append(table.Rows, pending)
			pending = nil
		}
	}
	if pending != nil {
		table.Rows = append(table.Rows, pending)
	}
	return table, nil
}

func cell(line []rune, sp span) string {
	if sp.start >= len(line) {
		return ""
	}
	end := sp.end
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(string(line[sp.start:end]))
}
