// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package spintatest

// This file contains a REST skeleton framework.
//
// Spinta picks output formats from the format() call in the URL query
// rather than the Accept: header, so unlike most REST frameworks there
// is no content negotiation here: handlers return either a value that
// is written as JSON or a textResponse that is written as is.  Errors
// are always JSON.

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/diffeo/go-spinta/restdata"
)

// errMethodNotAllowed is used within the resourceHandler implementation
// to flag an error if a particular HTTP method is not allowed.  This
// corresponds exactly to the 405 Method Not Allowed HTTP status code.
type errMethodNotAllowed struct {
	Method string
}

func (e errMethodNotAllowed) Error() string {
	return fmt.Sprintf("Method %v not allowed", e.Method)
}

func (e errMethodNotAllowed) HTTPStatus() int {
	return http.StatusMethodNotAllowed
}

// responseCreated is returned as a value response from handler
// functions that want to indicate that a new resource was created.
type responseCreated struct {
	// Location holds the canonical URL to the newly created resource.
	Location string

	// Body contains the object sent in the body of the response.
	Body interface{}
}

// textResponse is returned from handler functions whose output is
// already rendered, such as ascii tables.
type textResponse string

type resourceHandler struct {
	// Representation is an object representing the request body.
	// A decoded copy of this type will be passed to Post.
	Representation interface{}

	// Context reads an HTTP request and produces a context object.
	Context func(req *http.Request) (*context, error)

	// Get, if non-nil, returns a representation of the object.
	Get func(*context) (interface{}, error)

	// Post, if non-nil, takes some arbitrary action.  The
	// interface parameter is guaranteed to be the same type as
	// Representation.  The return can be any useful return value,
	// including responseCreated.
	Post func(*context, interface{}) (interface{}, error)
}

func writeJSON(resp http.ResponseWriter, status int, out interface{}) {
	resp.Header().Set("Content-Type", restdata.JSONMediaType)
	resp.WriteHeader(status)
	// If encoding fails halfway the status line is already out;
	// there is nothing better to do than stop.
	_ = restdata.Encode(resp, out)
}

func (h *resourceHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var (
		ctx    *context
		in     interface{}
		out    interface{}
		err    error
		status int
	)

	// Recover from panics by sending an HTTP error.
	defer func() {
		if recovered := recover(); recovered != nil {
			response := restdata.ErrorResponse{}
			response.FromPanic(recovered)
			writeJSON(resp, http.StatusInternalServerError, response)
		}
	}()

	ctx, err = h.Context(req)

	// Read the JSON body, if it's there
	if err == nil && req.Method == http.MethodPost && h.Representation != nil {
		ptr := reflect.New(reflect.TypeOf(h.Representation))
		contentType := req.Header.Get("Content-Type")
		err = restdata.Decode(contentType, req.Body, ptr.Interface())
		var media restdata.ErrUnsupportedMediaType
		if err != nil && !errors.As(err, &media) {
			err = restdata.ErrBadRequest{Err: err}
		}
		if err == nil {
			in = ptr.Elem().Interface()
		}
	}

	// Actually call the handler method
	if err == nil {
		err = errMethodNotAllowed{Method: req.Method}
		switch req.Method {
		case http.MethodGet, http.MethodHead:
			if h.Get != nil {
				out, err = h.Get(ctx)
			}
		case http.MethodPost:
			if h.Post != nil {
				out, err = h.Post(ctx, in)
			}
		}
	}

	// Fix up the final result based on what we know.
	if err != nil {
		response := restdata.ErrorResponse{}
		response.FromError(err)
		status = response.HTTPStatus()
		if errS, hasStatus := err.(restdata.ErrorStatus); hasStatus {
			status = errS.HTTPStatus()
		}
		writeJSON(resp, status, response)
		return
	}

	switch result := out.(type) {
	case nil:
		resp.WriteHeader(http.StatusNoContent)
	case textResponse:
		resp.Header().Set("Content-Type", restdata.TextMediaType+"; charset=utf-8")
		resp.WriteHeader(http.StatusOK)
		if req.Method != http.MethodHead {
			_, _ = resp.Write([]byte(result))
		}
	case responseCreated:
		if result.Location != "" {
			resp.Header().Set("Location", result.Location)
		}
		writeJSON(resp, http.StatusCreated, result.Body)
	default:
		if req.Method == http.MethodHead {
			resp.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(resp, http.StatusOK, out)
	}
}
