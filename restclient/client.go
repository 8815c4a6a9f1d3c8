// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient provides a spinta.Client that talks to a spinta
// server over HTTP.  Call New() with the base URL of that service; for
// instance,
//
//     c, err := restclient.New("http://localhost:8000/")
//
// Servers that require authorization take OAuth2 client credentials:
//
//     c, err := restclient.New("https://get.data.gov.lt/",
//             restclient.WithCredentials(restclient.Credentials{
//                     ClientID: "...",
//                     Secret:   "...",
//                     Scopes:   []string{"spinta_getall"},
//             }))
package restclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/diffeo/go-spinta/restdata"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/sirupsen/logrus"
)

// URI templates relative to the server root.  {+model} keeps the
// slashes of the dataset path.
const (
	modelTemplate  = "{+model}"
	objectTemplate = "{+model}/{id}"
	batchTemplate  = "."
)

// Client is a spinta.Client backed by a remote server.
type Client struct {
	resource
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.HTTP = hc
		return nil
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) error {
		c.Logger = logger
		return nil
	}
}

// New creates a new client for the server rooted at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("spinta server URL must be absolute: " + baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	c := &Client{
		resource: resource{
			URL:    u,
			HTTP:   http.DefaultClient,
			Logger: logrus.StandardLogger(),
		},
	}
	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// modelURL builds the URL of a model collection with an optional query.
func (c *Client) modelURL(model spinta.ModelName, query spinta.Query) (*url.URL, error) {
	u, err := c.Template(modelTemplate, map[string]interface{}{"model": model.String()})
	if err == nil {
		u.RawQuery = query.String()
	}
	return u, err
}

// Insert implements spinta.Client.
func (c *Client) Insert(ctx context.Context, model spinta.ModelName, obj spinta.Object) (spinta.Object, error) {
	u, err := c.modelURL(model, spinta.Query{})
	if err != nil {
		return nil, err
	}
	var out spinta.Object
	err = c.Do(ctx, http.MethodPost, u, obj, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get implements spinta.Client.
func (c *Client) Get(ctx context.Context, model spinta.ModelName, id string) (spinta.Object, error) {
	if id == "" {
		return nil, spinta.ErrNoID
	}
	u, err := c.Template(objectTemplate, map[string]interface{}{
		"model": model.String(),
		"id":    id,
	})
	if err != nil {
		return nil, err
	}
	var out spinta.Object
	err = c.Do(ctx, http.MethodGet, u, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetAll implements spinta.Client.
func (c *Client) GetAll(ctx context.Context, model spinta.ModelName, query spinta.Query) ([]spinta.Object, error) {
	u, err := c.modelURL(model, query.WithFormat(""))
	if err != nil {
		return nil, err
	}
	var out restdata.DataList
	err = c.Do(ctx, http.MethodGet, u, nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Table implements spinta.Client.
func (c *Client) Table(ctx context.Context, model spinta.ModelName, query spinta.Query) (string, error) {
	u, err := c.modelURL(model, query.WithFormat(spinta.FormatASCII))
	if err != nil {
		return "", err
	}
	return c.Text(ctx, u)
}

// Push implements spinta.Client.  The server must return one object per
// submitted object; an object sent with an _id must come back with the
// same _id.
func (c *Client) Push(ctx context.Context, batch []spinta.Object) ([]spinta.Object, error) {
	u, err := c.Template(batchTemplate, map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	var out restdata.BatchResult
	err = c.Do(ctx, http.MethodPost, u, restdata.Batch{Data: batch}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Data) != len(batch) {
		return nil, spinta.ErrCountMismatch{Sent: len(batch), Received: len(out.Data)}
	}
	for i, sent := range batch {
		if id := sent.ID(); id != "" && id != out.Data[i].ID() {
			return nil, spinta.ErrIDMismatch{Sent: id, Received: out.Data[i].ID()}
		}
	}
	return out.Data, nil
}
