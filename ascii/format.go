// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package ascii renders and parses the fixed-width tables a spinta
// server returns for format(ascii) queries.
//
// A table is a header row, a border of dashes, and one or more lines
// per object:
//
//     _id                                   country._id
//     ------------------------------------  ------------------------------------
//     0a4b…                                 c6d1…
//
// Values are left-aligned and padded to the column width.  Empty values
// print as ∅.  A value wider than its column wraps onto continuation
// lines, and every line of an object except the last ends in a
// backslash.  Columns that do not fit in the maximum table width are
// replaced by "...".
package ascii

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Empty is printed in place of a missing value.
const Empty = "∅"

// Elided marks columns that were left out, and truncated values.
const Elided = "..."

// Options control table layout.  The zero value of any field selects
// its default.
type Options struct {
	// MaxValueLength truncates longer values, appending "...".
	// Defaults to 100.
	MaxValueLength int

	// MaxColWidth caps every column width.  Zero means no cap.
	MaxColWidth int

	// RowsToCheck is how many rows are measured to pick column
	// widths.  Defaults to 200.
	RowsToCheck int

	// MaxWidth is the widest a table line may be; columns past it
	// are elided.  Zero means no limit.
	MaxWidth int

	// Separator goes between columns.  Defaults to two spaces.
	Separator string
}

func (o Options) withDefaults() Options {
	if o.MaxValueLength == 0 {
		o.MaxValueLength = 100
	}
	if o.RowsToCheck == 0 {
		o.RowsToCheck = 200
	}
	if o.Separator == "" {
		o.Separator = "  "
	}
	return o
}

// Render returns the table for rows as a string.
func Render(cols []string, rows []map[string]interface{}, opts Options) string {
	var sb strings.Builder
	_ = Write(&sb, cols, rows, opts)
	return sb.String()
}

// Write writes the table for rows to w.  Each row is looked up by the
// names in cols; nested values should already be flattened (see
// Flatten).
func Write(w io.Writer, cols []string, rows []map[string]interface{}, opts Options) error {
	opts = opts.withDefaults()
	widths := measure(rows, cols, opts)
	displayed := displayedCols(cols, widths, opts)

	bw := bufio.NewWriter(w)
	bw.WriteString(drawHeader(cols, widths, displayed, opts.Separator))
	bw.WriteString(drawBorder(cols, widths, displayed, opts.Separator))
	for _, row := range rows {
		bw.WriteString(drawRow(row, cols, widths, displayed, opts))
	}
	return bw.Flush()
}

// FormatValue converts a single value to its table text.  Missing and
// empty values become the empty string; Write prints those as ∅.
func FormatValue(v interface{}) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case bool:
		if vv {
			return "True"
		}
		return "False"
	case float64:
		return fmt.Sprintf("%v", vv)
	default:
		return fmt.Sprint(vv)
	}
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) > max {
		return string(runes[:max]) + Elided
	}
	return value
}

// measure picks a width for every column.  Each measured value pulls
// the width towards the average of the widest value and the widest
// first word, so one very long value does not blow up the column.
func measure(rows []map[string]interface{}, cols []string, opts Options) map[string]int {
	widths := make(map[string]int, len(cols))
	maxWidths := make(map[string]int, len(cols))
	maxSplit := make(map[string]int, len(cols))
	for _, col := range cols {
		widths[col] = runewidth.StringWidth(col)
	}

	for i, row := range rows {
		if i >= opts.RowsToCheck {
			break
		}
		for _, col := range cols {
			colWidth := runewidth.StringWidth(col)
			width, splitWidth := colWidth, colWidth
			if value := FormatValue(row[col]); value != "" {
				value = truncate(value, opts.MaxValueLength)
				valueWidth := 0
				for _, part := range strings.Split(value, "\n") {
					if pw := runewidth.StringWidth(part); pw > valueWidth {
						valueWidth = pw
					}
				}
				width = maxInt(valueWidth, colWidth)
				splitWidth = maxInt(runewidth.StringWidth(strings.SplitN(value, " ", 2)[0]), colWidth)
			}
			if width > maxWidths[col] {
				maxWidths[col] = width
			}
			if splitWidth > maxSplit[col] {
				maxSplit[col] = splitWidth
			}
			if i == 0 {
				widths[col] = (maxWidths[col] + maxSplit[col]) / 2
			} else {
				widths[col] = (widths[col] + maxWidths[col] + maxSplit[col]) / 3
			}
			if opts.MaxColWidth > 0 && widths[col] > opts.MaxColWidth {
				widths[col] = opts.MaxColWidth
			}
		}
	}
	return widths
}

func displayedCols(cols []string, widths map[string]int, opts Options) map[string]bool {
	displayed := make(map[string]bool, len(cols))
	total := 0
	for _, col := range cols {
		total += widths[col] + len(opts.Separator)
		if opts.MaxWidth > 0 && total > opts.MaxWidth {
			break
		}
		displayed[col] = true
	}
	return displayed
}

func pad(value string, width int) string {
	if w := runewidth.StringWidth(value); w < width {
		return value + strings.Repeat(" ", width-w)
	}
	return value
}

func drawHeader(cols []string, widths map[string]int, displayed map[string]bool, sep string) string {
	var sb strings.Builder
	for _, col := range cols {
		if !displayed[col] {
			sb.WriteString(Elided)
			break
		}
		sb.WriteString(pad(col, widths[col]))
		sb.WriteString(sep)
	}
	sb.WriteString("\n")
	return sb.String()
}

func drawBorder(cols []string, widths map[string]int, displayed map[string]bool, sep string) string {
	var sb strings.Builder
	for _, col := range cols {
		if !displayed[col] {
			sb.WriteString(Elided)
			break
		}
		sb.WriteString(strings.Repeat("-", widths[col]))
		sb.WriteString(sep)
	}
	sb.WriteString("\n")
	return sb.String()
}

// chunk splits value into pieces no wider than width.
func chunk(value string, width int) []string {
	if width <= 0 {
		return []string{value}
	}
	var parts []string
	var cur strings.Builder
	curWidth := 0
	for _, r := range value {
		rw := runewidth.RuneWidth(r)
		if curWidth+rw > width && curWidth > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curWidth = 0
		}
		cur.WriteRune(r)
		curWidth += rw
	}
	if cur.Len() > 0 || len(parts) == 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// rowLines accumulates the physical lines of one object.
type rowLines struct {
	cols   []string
	widths map[string]int
	lines  []map[string]string
}

func (rl *rowLines) line(n int) map[string]string {
	for len(rl.lines) <= n {
		blank := make(map[string]string, len(rl.cols))
		for _, col := range rl.cols {
			blank[col] = strings.Repeat(" ", rl.widths[col])
		}
		rl.lines = append(rl.lines, blank)
	}
	return rl.lines[n]
}

// place puts value into col starting at line n, wrapping as needed,
// and returns the last line used.
func (rl *rowLines) place(col, value string, n int) int {
	width := rl.widths[col]
	if runewidth.StringWidth(value) <= width {
		rl.line(n)[col] = pad(value, width)
		return n
	}
	parts := chunk(value, width)
	for i, part := range parts {
		rl.line(n)[col] = pad(strings.TrimSpace(part), width)
		if i < len(parts)-1 {
			n++
		}
	}
	return n
}

func drawRow(row map[string]interface{}, cols []string, widths map[string]int, displayed map[string]bool, opts Options) string {
	var shown []string
	shortened := false
	for _, col := range cols {
		if !displayed[col] {
			shortened = true
			break
		}
		shown = append(shown, col)
	}
	rl := &rowLines{cols: shown, widths: widths}
	rl.line(0)

	for _, col := range shown {
		value := FormatValue(row[col])
		// Only nil and "" are empty; 0 and False print as themselves.
		if value == "" {
			value = Empty
		}
		value = truncate(value, opts.MaxValueLength)
		n := 0
		if strings.Contains(value, "\n") {
			parts := strings.Split(value, "\n")
			for i, part := range parts {
				n = rl.place(col, strings.TrimSpace(part), n)
				if i < len(parts)-1 {
					n++
					rl.line(n)
				}
			}
		} else {
			rl.place(col, value, n)
		}
	}

	var sb strings.Builder
	for i, line := range rl.lines {
		values := make([]string, len(shown))
		for j, col := range shown {
			values[j] = line[col]
		}
		sb.WriteString(strings.Join(values, opts.Separator))
		if shortened {
			sb.WriteString(opts.Separator + Elided)
		}
		if i < len(rl.lines)-1 {
			sb.WriteString("\\")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Flatten turns nested maps into dotted keys, so that
// {"country": {"_id": "x"}} becomes {"country._id": "x"}.  Lists are
// kept as single values.
func Flatten(obj map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(obj))
	flattenInto(result, "", obj)
	return result
}

func flattenInto(result map[string]interface{}, prefix string, obj map[string]interface{}) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok && len(nested) > 0 {
			flattenInto(result, key, nested)
			continue
		}
		result[key] = v
	}
}

// Columns expands selected names against flattened rows: a name that
// is a prefix of nested keys in any row (such as "country" for
// "country._id") is replaced by those keys, sorted.  Rows where that
// value is null then show ∅ under the nested columns.  Names are kept
// in selection order otherwise.
func Columns(selected []string, rows []map[string]interface{}) []string {
	var cols []string
	for _, name := range selected {
		nested := map[string]bool{}
		for _, row := range rows {
			for k := range row {
				if strings.HasPrefix(k, name+".") {
					nested[k] = true
				}
			}
		}
		if len(nested) == 0 {
			cols = append(cols, name)
			continue
		}
		var keys []string
		for k := range nested {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cols = append(cols, keys...)
	}
	return cols
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
