// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package spinta

import (
	"errors"
	"fmt"
	"strings"
)

// Well-known error codes returned by spinta servers.
const (
	CodeFieldNotInResource     = "FieldNotInResource"
	CodeJSONError              = "JSONError"
	CodeInvalidValue           = "InvalidValue"
	CodeManagedProperty        = "ManagedProperty"
	CodeUniqueConstraint       = "UniqueConstraint"
	CodeInsufficientScopeError = "InsufficientScopeError"
	CodeNodeNotFound           = "NodeNotFound"
	CodeItemDoesNotExist       = "ItemDoesNotExist"
)

// Error is a single entry of a server error envelope.
type Error struct {
	// Code is the machine-readable error class, such as
	// "FieldNotInResource".
	Code string `json:"code"`

	// Type names the kind of node the error is about, such as
	// "property" or "model".
	Type string `json:"type,omitempty"`

	// Template is the unformatted message, with {placeholders}
	// filled from Context.
	Template string `json:"template,omitempty"`

	// Message is the human-readable text.
	Message string `json:"message"`

	// Context carries structured details: dataset, model,
	// property, manifest, schema, and so on.
	Context map[string]string `json:"context,omitempty"`
}

func (e Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Property returns the property the error refers to, if any.
func (e Error) Property() string {
	return e.Context["property"]
}

// Model returns the model the error refers to, if any.
func (e Error) Model() string {
	return e.Context["model"]
}

// Errors is the full list of errors from one failed request.
type Errors []Error

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Codes returns the code of every entry, in order.
func (es Errors) Codes() []string {
	codes := make([]string, len(es))
	for i, e := range es {
		codes[i] = e.Code
	}
	return codes
}

// FindError looks through err, and anything it wraps, for a server
// error with the given code.
func FindError(err error, code string) (Error, bool) {
	var es Errors
	if errors.As(err, &es) {
		for _, e := range es {
			if e.Code == code {
				return e, true
			}
		}
	}
	var e Error
	if errors.As(err, &e) && e.Code == code {
		return e, true
	}
	return Error{}, false
}

// HasCode returns true if err carries a server error with code.
func HasCode(err error, code string) bool {
	_, ok := FindError(err, code)
	return ok
}

// NewFieldNotInResource builds the error a server returns when a
// request names a property the model does not declare.
func NewFieldNotInResource(model ModelName, property string) Error {
	return Error{
		Code:     CodeFieldNotInResource,
		Type:     "property",
		Template: "Unknown property {property!r}.",
		Message:  fmt.Sprintf("Unknown property '%s'.", property),
		Context: map[string]string{
			"component": "spinta.types.datatype.Ref",
			"dataset":   model.Dataset,
			"entity":    "",
			"manifest":  "default",
			"model":     model.String(),
			"property":  property,
			"attribute": "",
			"schema":    "",
		},
	}
}

// ErrBadModelName is returned when a model path cannot be parsed.
type ErrBadModelName struct {
	Name string
}

func (err ErrBadModelName) Error() string {
	return fmt.Sprintf("Invalid model name %q", err.Name)
}

// ErrBadQuery is returned when a spinta URL query cannot be parsed.
type ErrBadQuery struct {
	Query string
	Part  string
}

func (err ErrBadQuery) Error() string {
	return fmt.Sprintf("Invalid query part %q in %q", err.Part, err.Query)
}

// ErrNoID is returned when an operation needs an object's _id and the
// object does not have one.
var ErrNoID = errors.New("Object has no _id")

// ErrCountMismatch is returned from Push when the server returns a
// different number of objects than were sent.
type ErrCountMismatch struct {
	Sent, Received int
}

func (err ErrCountMismatch) Error() string {
	return fmt.Sprintf("Sent %d objects but received %d", err.Sent, err.Received)
}

// ErrIDMismatch is returned from Push when a returned object does not
// have the _id of the object sent in the same position.
type ErrIDMismatch struct {
	Sent, Received string
}

func (err ErrIDMismatch) Error() string {
	return fmt.Sprintf("Sent _id %q but received %q", err.Sent, err.Received)
}
