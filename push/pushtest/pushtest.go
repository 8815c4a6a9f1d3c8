// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package pushtest provides generic functional tests for the push.State
// interface.  A typical backend test module needs to wrap Suite to
// create its state store:
//
//     // Suite is the per-backend generic test suite.
//     type Suite struct{
//             pushtest.Suite
//     }
//
//     // SetupTest gives every test a fresh store.
//     func (s *Suite) SetupTest() {
//             s.State = New()
//     }
//
//     // TestState runs the push.State generic tests.
//     func TestState(t *testing.T) {
//             suite.Run(t, &Suite{})
//     }
package pushtest

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-spinta/push"
	"github.com/stretchr/testify/suite"
)

// Suite is the generic push.State test suite.
type Suite struct {
	suite.Suite

	// Clock contains the alternate time source to be used in tests.  It
	// is pre-initialized to a mock clock.
	Clock *clock.Mock

	// State contains the store under test.  It is set by importing
	// packages, and must be empty at the start of every test.
	State push.State
}

// SetupSuite does one-time initialization for the test suite.
func (s *Suite) SetupSuite() {
	s.Clock = clock.NewMock()
}

// TestEmpty checks that an unknown model has no revisions.
func (s *Suite) TestEmpty() {
	revs, err := s.State.Revisions(context.Background(), "datasets/gov/example/Country")
	if s.NoError(err) {
		s.Empty(revs)
	}
}

// TestSaveLoad checks that saved revisions come back.
func (s *Suite) TestSaveLoad() {
	ctx := context.Background()
	model := "datasets/gov/example/Country"
	err := s.State.Save(ctx, model, []push.Entry{
		{ID: "a", Revision: "1", Pushed: s.Clock.Now()},
		{ID: "b", Revision: "2", Pushed: s.Clock.Now()},
	})
	s.Require().NoError(err)

	revs, err := s.State.Revisions(ctx, model)
	if s.NoError(err) {
		s.Equal(map[string]string{"a": "1", "b": "2"}, revs)
	}
}

// TestReplace checks that saving an existing _id replaces its revision.
func (s *Suite) TestReplace() {
	ctx := context.Background()
	model := "datasets/gov/example/City"
	s.Require().NoError(s.State.Save(ctx, model, []push.Entry{
		{ID: "a", Revision: "1", Pushed: s.Clock.Now()},
	}))
	s.Clock.Add(time.Minute)
	s.Require().NoError(s.State.Save(ctx, model, []push.Entry{
		{ID: "a", Revision: "3", Pushed: s.Clock.Now()},
	}))

	revs, err := s.State.Revisions(ctx, model)
	if s.NoError(err) {
		s.Equal(map[string]string{"a": "3"}, revs)
	}
}

// TestModelsSeparate checks that models do not share _ids.
func (s *Suite) TestModelsSeparate() {
	ctx := context.Background()
	s.Require().NoError(s.State.Save(ctx, "a/Country", []push.Entry{
		{ID: "x", Revision: "country", Pushed: s.Clock.Now()},
	}))
	s.Require().NoError(s.State.Save(ctx, "a/City", []push.Entry{
		{ID: "x", Revision: "city", Pushed: s.Clock.Now()},
	}))

	revs, err := s.State.Revisions(ctx, "a/Country")
	if s.NoError(err) {
		s.Equal(map[string]string{"x": "country"}, revs)
	}
	revs, err = s.State.Revisions(ctx, "a/City")
	if s.NoError(err) {
		s.Equal(map[string]string{"x": "city"}, revs)
	}
}

// TestSaveEmpty checks that saving nothing is not an error.
func (s *Suite) TestSaveEmpty() {
	s.NoError(s.State.Save(context.Background(), "a/Country", nil))
}
