// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"net/http/httptest"
	"testing"

	"github.com/diffeo/go-spinta/contract/contracttest"
	"github.com/diffeo/go-spinta/restclient"
	"github.com/diffeo/go-spinta/spintatest"
	"github.com/stretchr/testify/suite"
)

// Suite runs the generic client tests against the emulator over HTTP.
type Suite struct {
	contracttest.Suite
	server *httptest.Server
}

// SetupSuite sets up an object stack where the REST client code talks
// to the emulator, which keeps its objects in memory.
func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()
	srv := spintatest.New(spintatest.ExampleModels(s.Dataset), spintatest.Observed)
	s.server = httptest.NewServer(srv.Handler())
	client, err := restclient.New(s.server.URL)
	s.Require().NoError(err)
	s.Client = client
}

// TearDownSuite shuts down the emulator.
func (s *Suite) TearDownSuite() {
	s.server.Close()
}

// TestContract runs the generic client tests.
func TestContract(t *testing.T) {
	suite.Run(t, &Suite{})
}
