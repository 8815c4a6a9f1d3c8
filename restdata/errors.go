// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/diffeo/go-spinta/spinta"
)

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.  This translates directly into the
// equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrNotFound is a wrapper error that indicates that, due to the
// embedded error, a REST service should return a 404 Not Found error.
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return e.Err.Error()
}

func (e ErrNotFound) Unwrap() error {
	return e.Err
}

// HTTPStatus returns a fixed 404 Not Found error code.
func (e ErrNotFound) HTTPStatus() int {
	return http.StatusNotFound
}

// ErrBadRequest is returned as an error when there is an error decoding
// HTTP headers or the request body.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

func (e ErrBadRequest) Unwrap() error {
	return e.Err
}

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// StatusForCode returns the HTTP status a spinta server uses for an
// error code.
func StatusForCode(code string) int {
	switch code {
	case spinta.CodeInsufficientScopeError:
		return http.StatusForbidden
	case spinta.CodeNodeNotFound, spinta.CodeItemDoesNotExist:
		return http.StatusNotFound
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// FromError populates an ErrorResponse from an error value.  Server
// errors (spinta.Error and spinta.Errors, possibly wrapped) are copied
// as is; anything else becomes a single entry with code "error" or,
// for media type and decoding failures, the matching spinta code.
func (e *ErrorResponse) FromError(err error) {
	var es spinta.Errors
	var one spinta.Error
	var media ErrUnsupportedMediaType
	var bad ErrBadRequest
	switch {
	case errors.As(err, &es):
		e.Errors = es
	case errors.As(err, &one):
		e.Errors = spinta.Errors{one}
	case errors.As(err, &media):
		e.Errors = spinta.Errors{{
			Code:    "UnknownContentType",
			Message: media.Error(),
		}}
	case errors.As(err, &bad):
		e.Errors = spinta.Errors{{
			Code:    spinta.CodeJSONError,
			Message: bad.Error(),
		}}
	default:
		e.Errors = spinta.Errors{{Code: "error", Message: err.Error()}}
	}
}

// ToError converts e back to an error.  An empty response becomes a
// generic error.
func (e *ErrorResponse) ToError() error {
	if len(e.Errors) == 0 {
		return errors.New("Empty error response")
	}
	return e.Errors
}

// HTTPStatus picks the status for the first error in the response.
func (e *ErrorResponse) HTTPStatus() int {
	if len(e.Errors) == 0 {
		return http.StatusInternalServerError
	}
	return StatusForCode(e.Errors[0].Code)
}

// FromPanic populates an error response based on a panic.  Typical use
// is:
//
//     defer func() {
//         if obj := recover(); obj != nil {
//             resp := restdata.ErrorResponse{}
//             resp.FromPanic(obj)
//             // write resp out as makes sense
//         }
//     }()
func (e *ErrorResponse) FromPanic(obj interface{}) {
	var message string
	if recoveredError, isError := obj.(error); isError {
		message = recoveredError.Error()
	} else {
		message = fmt.Sprintf("%+v", obj)
	}
	var stack [4096]byte
	n := runtime.Stack(stack[:], false)
	e.Errors = spinta.Errors{{
		Code:    "panic",
		Message: message,
		Context: map[string]string{"stack": string(stack[:n])},
	}}
}
