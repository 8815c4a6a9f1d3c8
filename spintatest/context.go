// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package spintatest

import (
	"errors"
	"net/http"

	"github.com/diffeo/go-spinta/restdata"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/gorilla/mux"
)

// errUnmarshal is returned if the post contract is violated and a
// handler function is passed the wrong type.
var errUnmarshal = restdata.ErrBadRequest{
	Err: errors.New("Invalid input format"),
}

// context holds all of the information that can be extracted from
// the URL.
type context struct {
	Model *Model
	ID    string
	Query spinta.Query
}

func (s *Server) Context(req *http.Request) (ctx *context, err error) {
	ctx = &context{}
	vars := mux.Vars(req)

	if path, present := vars["model"]; present {
		name, perr := spinta.ParseModelName(path)
		if perr == nil {
			ctx.Model = s.models[name.String()]
		}
		if ctx.Model == nil {
			err = spinta.Error{
				Code:    spinta.CodeNodeNotFound,
				Type:    "model",
				Message: "Model " + path + " not found.",
				Context: map[string]string{"model": path},
			}
		}
	}

	if id, present := vars["id"]; present && err == nil {
		ctx.ID = id
	}

	if err == nil {
		ctx.Query, err = spinta.ParseQuery(req.URL.RawQuery)
		if err != nil {
			err = spinta.Error{
				Code:    "UnknownRequestParameter",
				Message: err.Error(),
			}
		}
	}

	return
}
