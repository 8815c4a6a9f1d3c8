// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bufio"
	"bytes"
	"io"
	"mime"
	"reflect"

	"github.com/diffeo/go-spinta/spinta"
	"github.com/ugorji/go/codec"
)

var mapStringType = reflect.TypeOf(map[string]interface{}(nil))

// JSONHandle returns the codec handle used for every JSON body.
// Untyped objects decode as map[string]interface{} and maps encode
// with sorted keys.
func JSONHandle() *codec.JsonHandle {
	h := &codec.JsonHandle{}
	h.MapType = mapStringType
	h.Canonical = true
	return h
}

// Decode tries to decode a restdata object from a reader, such as an
// HTTP request or response.  out must be a pointer type.
func Decode(contentType string, r io.Reader, out interface{}) error {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		contentType = "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return err
	}

	switch mediaType {
	case "text/json", JSONMediaType:
		decoder := codec.NewDecoder(r, JSONHandle())
		return decoder.Decode(out)
	case NDJSONMediaType:
		batch, isBatch := out.(*Batch)
		if !isBatch {
			return ErrUnsupportedMediaType{Type: mediaType}
		}
		return decodeLines(r, batch)
	default:
		return ErrUnsupportedMediaType{Type: mediaType}
	}
}

// decodeLines reads one JSON object per non-blank line into batch.
func decodeLines(r io.Reader, batch *Batch) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var obj spinta.Object
		if err := codec.NewDecoderBytes(line, JSONHandle()).Decode(&obj); err != nil {
			return err
		}
		batch.Data = append(batch.Data, obj)
	}
	return scanner.Err()
}

// Encode writes v as JSON.
func Encode(w io.Writer, v interface{}) error {
	return codec.NewEncoder(w, JSONHandle()).Encode(v)
}

// EncodeBytes returns the JSON encoding of v.
func EncodeBytes(v interface{}) (out []byte, err error) {
	err = codec.NewEncoderBytes(&out, JSONHandle()).Encode(v)
	return
}
