// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package spintatest emulates the HTTP surface of a spinta server as
// observed in exploratory sessions, for testing clients in-process.
//
// It serves a fixed set of models from memory and reproduces only what
// those sessions exercised: creating objects, reading them back as JSON
// or ascii tables, batch pushes, and the error envelope for undeclared
// properties.  It is not a spinta server.
//
// Typical use in a test:
//
//     srv := spintatest.New(spintatest.ExampleModels("datasets/gov/example"), spintatest.Observed)
//     ts := httptest.NewServer(srv.Handler())
//     defer ts.Close()
//     client, err := restclient.New(ts.URL)
package spintatest

import (
	"net/http"
	"strings"
	"sync"

	"github.com/diffeo/go-spinta/restdata"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/gorilla/mux"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// Server is an in-memory emulator.  It is safe for concurrent use.
type Server struct {
	// Logger receives one entry per request.
	Logger logrus.FieldLogger

	models  map[string]*Model
	defects Defects
	router  *mux.Router

	lock   sync.Mutex
	tables map[string]*table

	clientID, secret string
	tokens           map[string]bool
}

// New creates an emulator serving models with the given defects.
func New(models []Model, defects Defects) *Server {
	s := &Server{
		Logger:  logrus.StandardLogger(),
		models:  make(map[string]*Model),
		defects: defects,
		tables:  make(map[string]*table),
		tokens:  make(map[string]bool),
	}
	for i := range models {
		m := models[i]
		s.models[m.Name.String()] = &m
		s.tables[m.Name.String()] = newTable()
	}
	s.router = mux.NewRouter()
	s.populateRouter(s.router)
	return s
}

// RequireClient makes every API request require a bearer token issued
// by the auth/token endpoint to this client.
func (s *Server) RequireClient(clientID, secret string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.clientID = clientID
	s.secret = secret
}

// Handler returns the HTTP handler, wrapped with panic recovery and
// request logging.
func (s *Server) Handler() http.Handler {
	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.Use(negroni.HandlerFunc(s.logRequest))
	n.Use(negroni.HandlerFunc(s.authorize))
	n.UseHandler(s.router)
	return n
}

func (s *Server) populateRouter(r *mux.Router) {
	r.Path("/auth/token").Methods(http.MethodPost).Name("token").HandlerFunc(s.issueToken)
	r.Path("/").Name("batch").Handler(&resourceHandler{
		Representation: restdata.Batch{},
		Context:        s.Context,
		Post:           s.Batch,
	})
	r.Path("/{model:.+}/{id:[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}}").Name("object").Handler(&resourceHandler{
		Context: s.Context,
		Get:     s.GetOne,
	})
	r.Path("/{model:.+}").Name("model").Handler(&resourceHandler{
		Representation: spinta.Object{},
		Context:        s.Context,
		Get:            s.GetAll,
		Post:           s.Insert,
	})
}

func (s *Server) logRequest(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	next(rw, req)
	status := 0
	if nrw, ok := rw.(negroni.ResponseWriter); ok {
		status = nrw.Status()
	}
	s.Logger.WithFields(logrus.Fields{
		"method": req.Method,
		"path":   req.URL.Path,
		"query":  req.URL.RawQuery,
		"status": status,
	}).Debug("emulated request")
}

func (s *Server) authorize(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	s.lock.Lock()
	required := s.clientID != ""
	token := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
	valid := s.tokens[token]
	s.lock.Unlock()

	if !required || req.URL.Path == "/auth/token" || valid {
		next(rw, req)
		return
	}
	writeJSON(rw, http.StatusUnauthorized, restdata.ErrorResponse{
		Errors: spinta.Errors{{
			Code:    "InvalidToken",
			Message: "Invalid or missing bearer token.",
		}},
	})
}

// issueToken implements the OAuth2 client-credentials grant.
func (s *Server) issueToken(rw http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	clientID, secret, ok := req.BasicAuth()
	if !ok {
		clientID = req.PostForm.Get("client_id")
		secret = req.PostForm.Get("client_secret")
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if req.PostForm.Get("grant_type") != "client_credentials" || clientID != s.clientID || secret != s.secret {
		writeJSON(rw, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		return
	}
	token := uuid.NewV4().String()
	s.tokens[token] = true
	writeJSON(rw, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   3600,
		"scope":        req.PostForm.Get("scope"),
	})
}

// location builds the canonical URL of a stored object.
func (s *Server) location(model *Model, id string) string {
	u, err := s.router.Get("object").URL("model", model.Name.String(), "id", id)
	if err != nil {
		return ""
	}
	return u.String()
}

func (s *Server) target(model *Model, prop Property) *Model {
	return s.models[model.Name.Sibling(prop.Ref).String()]
}
