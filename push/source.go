// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package push

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/diffeo/go-spinta/restdata"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/ugorji/go/codec"
	"gopkg.in/yaml.v2"
)

// Source produces the rows to push.  Next returns io.EOF after the
// last row.  Every row must carry _type; _id is optional.
type Source interface {
	Next() (spinta.Object, error)
}

// Rows is a Source over a fixed slice.
type Rows []spinta.Object

type rowsSource struct {
	rows []spinta.Object
}

// Source returns a Source reading the rows in order.
func (r Rows) Source() Source {
	return &rowsSource{rows: r}
}

func (s *rowsSource) Next() (spinta.Object, error) {
	if len(s.rows) == 0 {
		return nil, io.EOF
	}
	row := s.rows[0]
	s.rows = s.rows[1:]
	return row, nil
}

type ndjsonSource struct {
	scanner *bufio.Scanner
	line    int
}

// NDJSON reads one JSON object per line.  Blank lines are skipped.
func NDJSON(r io.Reader) Source {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 16*1024*1024)
	return &ndjsonSource{scanner: scanner}
}

func (s *ndjsonSource) Next() (spinta.Object, error) {
	for s.scanner.Scan() {
		s.line++
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var obj spinta.Object
		if err := codec.NewDecoderBytes(line, restdata.JSONHandle()).Decode(&obj); err != nil {
			return nil, fmt.Errorf("line %d: %v", s.line, err)
		}
		return obj, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

type yamlSource struct {
	decoder *yaml.Decoder
	pending []spinta.Object
}

// YAML reads a stream of YAML documents.  Each document is either one
// object or a list of objects.
func YAML(r io.Reader) Source {
	return &yamlSource{decoder: yaml.NewDecoder(r)}
}

func (s *yamlSource) Next() (spinta.Object, error) {
	for len(s.pending) == 0 {
		var doc interface{}
		if err := s.decoder.Decode(&doc); err != nil {
			return nil, err
		}
		switch d := stringKeys(doc).(type) {
		case nil:
			continue
		case map[string]interface{}:
			s.pending = append(s.pending, spinta.Object(d))
		case []interface{}:
			for i, item := range d {
				obj, isMap := item.(map[string]interface{})
				if !isMap {
					return nil, fmt.Errorf("yaml list item %d is %T, not an object", i, item)
				}
				s.pending = append(s.pending, spinta.Object(obj))
			}
		default:
			return nil, fmt.Errorf("yaml document is %T, not an object", d)
		}
	}
	obj := s.pending[0]
	s.pending = s.pending[1:]
	return obj, nil
}

// stringKeys converts the map[interface{}]interface{} values yaml.v2
// produces into map[string]interface{}, recursively.
func stringKeys(v interface{}) interface{} {
	switch value := v.(type) {
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(value))
		for k, vv := range value {
			result[fmt.Sprint(k)] = stringKeys(vv)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(value))
		for i, vv := range value {
			result[i] = stringKeys(vv)
		}
		return result
	default:
		return v
	}
}
