// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines the wire representations shared between the
// restclient package and the spintatest emulator.
//
// API Usage
//
// A spinta server addresses every model by its path.  Creating an
// object is a POST of a JSON object to the model path:
//
//     POST /datasets/gov/example/Country
//     {"_id": "…", "id": 42, "name": "Lithuania"}
//
// and returns 201 Created with the stored representation, which always
// includes "_id", "_revision" and "_type".  Reference properties come
// back normalized, e.g. "country": {"_id": "…"}.
//
// Collections are read with GET on the same path.  The URL query is not
// made of key=value pairs; instead it is a list of calls joined by &:
//
//     GET /datasets/gov/example/City?select(_id,country)&format(ascii)
//
// A JSON response wraps the objects in a DataList.  An ascii response is
// a plain-text table; see the ascii package.
//
// Batches of operations are POSTed to the server root as a Batch, and
// come back as a BatchResult with one entry per submitted operation.
//
// Errors
//
// Failures are returned with a 4xx or 5xx status and a JSON body that is
// an ErrorResponse:
//
//     {"errors": [{"code": "FieldNotInResource", "type": "property",
//                  "template": "Unknown property {property!r}.",
//                  "message": "Unknown property 'name'.",
//                  "context": {"model": "…", "property": "name", …}}]}
package restdata

import (
	"github.com/diffeo/go-spinta/spinta"
)

// JSONMediaType is the media type of every JSON request and response.
const JSONMediaType = "application/json"

// NDJSONMediaType is accepted for batch requests with one operation per
// line.
const NDJSONMediaType = "application/x-ndjson"

// TextMediaType is the media type of ascii table responses.
const TextMediaType = "text/plain"

// DataList is the JSON response to a collection GET.
type DataList struct {
	Data []spinta.Object `json:"_data"`
}

// Batch is the request body for a batch POST to the server root.
type Batch struct {
	Data []spinta.Object `json:"_data"`
}

// BatchResult is the response to a Batch.
type BatchResult struct {
	// Transaction identifies the server-side transaction that
	// applied the batch.
	Transaction string `json:"_transaction,omitempty"`

	// Status is "ok" if every operation was applied.
	Status string `json:"_status,omitempty"`

	// Data has one entry per operation in the request, in order.
	Data []spinta.Object `json:"_data"`
}

// ErrorResponse is the body of every failing response.
type ErrorResponse struct {
	Errors spinta.Errors `json:"errors"`
}
