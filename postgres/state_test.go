// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/diffeo/go-spinta/postgres"
	"github.com/diffeo/go-spinta/push"
	"github.com/diffeo/go-spinta/push/pushtest"
	"github.com/stretchr/testify/suite"
)

// Suite runs the generic push.State tests against PostgreSQL.
//
// This creates a PostgreSQL push.State using an empty string as the
// connection string.  This means that, when you run "go test", you
// must set environment variables as described in
// http://www.postgresql.org/docs/current/static/libpq-envars.html
type Suite struct {
	pushtest.Suite
	pg *postgres.State
}

// SetupSuite connects to the database.
func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()
	pg, err := postgres.NewWithClock("", s.Clock)
	s.Require().NoError(err)
	s.pg = pg
	s.State = pg
}

// SetupTest empties the database before every test.
func (s *Suite) SetupTest() {
	s.Require().NoError(s.pg.Reset(context.Background()))
}

// TearDownSuite closes the connection pool.
func (s *Suite) TearDownSuite() {
	s.NoError(s.pg.Close())
}

// TestEntry checks that a saved push time comes back.
func (s *Suite) TestEntry() {
	ctx := context.Background()
	pushed := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.pg.Save(ctx, "a/Country", []push.Entry{
		{ID: "x", Revision: "r", Pushed: pushed},
	}))

	entry, found, err := s.pg.Entry(ctx, "a/Country", "x")
	if s.NoError(err) && s.True(found) {
		s.Equal("r", entry.Revision)
		s.True(pushed.Equal(entry.Pushed))
	}

	_, found, err = s.pg.Entry(ctx, "a/Country", "y")
	s.NoError(err)
	s.False(found)
}

// TestState runs the push.State generic tests, if a database is
// configured.
func TestState(t *testing.T) {
	if os.Getenv("PGHOST") == "" {
		t.Skip("PGHOST not set")
	}
	suite.Run(t, &Suite{})
}
