// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file provides generic REST client code.

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/diffeo/go-spinta/restdata"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/jtacoma/uritemplates"
	"github.com/sirupsen/logrus"
)

// resource is any object that has a URL and a way to reach it.
type resource struct {
	URL    *url.URL
	HTTP   *http.Client
	Logger logrus.FieldLogger
}

// Template expands a URI template with vars and resolves the result
// relative to the resource's URL.
func (r *resource) Template(template string, vars map[string]interface{}) (*url.URL, error) {
	tmpl, err := uritemplates.Parse(template)
	if err != nil {
		return nil, err
	}
	expanded, err := tmpl.Expand(vars)
	if err != nil {
		return nil, err
	}
	return r.URL.Parse(expanded)
}

// roundTrip sends a request and returns the successful response body.
// If in is non-nil it is serialized as the JSON request body.  Any
// non-2xx response becomes an ErrorHTTP.
func (r *resource) roundTrip(ctx context.Context, method string, u *url.URL, accept string, in interface{}) (resp *http.Response, body []byte, err error) {
	var reqBody io.Reader
	if in != nil {
		encoded, err := restdata.EncodeBytes(in)
		if err != nil {
			return nil, nil, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, u.String(), reqBody)
	if err != nil {
		return nil, nil, err
	}
	req = req.WithContext(ctx)
	if in != nil {
		req.Header.Set("Content-Type", restdata.JSONMediaType)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err = r.HTTP.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		err = firstError(err, resp.Body.Close())
	}()

	// Always collect the entire body; error decoding needs it as a
	// fallback and can only parse it once.
	body, err = ioutil.ReadAll(resp.Body)
	r.Logger.WithFields(logrus.Fields{
		"method": method,
		"url":    u.String(),
		"status": resp.StatusCode,
	}).Debug("spinta request")
	if err != nil {
		return resp, nil, err
	}

	if err = checkHTTPStatus(resp, body); err != nil {
		return resp, body, err
	}
	return resp, body, nil
}

// Do performs some HTTP action.  If in is non-nil, the request data is
// serialized and sent as the body of, for instance, a POST request.
// If out is non-nil, the response data (if any) is deserialized into
// this object, which must be of pointer type.
func (r *resource) Do(ctx context.Context, method string, u *url.URL, in, out interface{}) error {
	accept := ""
	if out != nil {
		accept = restdata.JSONMediaType
	}
	resp, body, err := r.roundTrip(ctx, method, u, accept, in)
	if err != nil {
		return err
	}
	if out != nil && len(body) > 0 {
		contentType := resp.Header.Get("Content-Type")
		err = restdata.Decode(contentType, bytes.NewReader(body), out)
	}
	return err
}

// Text performs a GET and returns the response body as a string,
// without decoding it.
func (r *resource) Text(ctx context.Context, u *url.URL) (string, error) {
	_, body, err := r.roundTrip(ctx, http.MethodGet, u, restdata.TextMediaType, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ErrorHTTP is returned for every non-success response from the REST
// endpoint.  If the body was a spinta error envelope, Errors holds its
// entries, and errors.As() can reach them through Unwrap.
type ErrorHTTP struct {
	// Response holds a pointer to the failing HTTP response.
	Response *http.Response

	// Body holds the contents of the message body, presumed to
	// be text.
	Body string

	// Errors holds the decoded error envelope, if there was one.
	Errors spinta.Errors
}

func (e ErrorHTTP) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%s: %s", e.Response.Status, e.Errors.Error())
	}
	return e.Response.Status
}

// Unwrap returns the server-provided errors, if any.
func (e ErrorHTTP) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors
}

// StatusCode returns the HTTP status code of the failing response.
func (e ErrorHTTP) StatusCode() int {
	return e.Response.StatusCode
}

// checkHTTPStatus examines an HTTP response and returns an error if
// it is not successful.
func checkHTTPStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	result := ErrorHTTP{Response: resp, Body: string(body)}

	// Take a shot at decoding it as a better error
	var errResp restdata.ErrorResponse
	contentType := resp.Header.Get("Content-Type")
	if restdata.Decode(contentType, bytes.NewReader(body), &errResp) == nil {
		result.Errors = errResp.Errors
	}
	return result
}

func firstError(e1, e2 error) error {
	if e1 != nil {
		return e1
	}
	return e2
}
