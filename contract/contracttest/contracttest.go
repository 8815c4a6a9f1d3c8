// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package contracttest provides generic functional tests for the
// spinta.Client interface, built from the documented scenarios.  A
// typical client test module needs to wrap Suite to create its client:
//
//     package myclient
//
//     import (
//             "testing"
//             "github.com/diffeo/go-spinta/contract/contracttest"
//             "github.com/stretchr/testify/suite"
//     )
//
//     // Suite is the per-client generic test suite.
//     type Suite struct{
//             contracttest.Suite
//     }
//
//     // SetupSuite does global setup for the test suite.
//     func (s *Suite) SetupSuite() {
//             s.Suite.SetupSuite()
//             s.Client = NewClient(...)
//     }
//
//     // TestClient runs the spinta.Client generic tests.
//     func TestClient(t *testing.T) {
//             suite.Run(t, &Suite{})
//     }
//
// The tests only assert behavior every server agrees on.  Behavior that
// differs between servers with and without the recorded defects is
// left to the contract.Runner probes.
package contracttest

import (
	"context"

	"github.com/diffeo/go-spinta/ascii"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/stretchr/testify/suite"
)

// Suite is the generic spinta.Client test suite.
type Suite struct {
	suite.Suite

	// Client contains the client under test.  It is set by
	// importing packages.
	Client spinta.Client

	// Dataset holds the Country, City and CityExplicit models.
	// SetupSuite defaults it to "datasets/gov/example".
	Dataset string
}

// SetupSuite does one-time initialization for the test suite.
func (s *Suite) SetupSuite() {
	if s.Dataset == "" {
		s.Dataset = "datasets/gov/example"
	}
}

func (s *Suite) model(name string) spinta.ModelName {
	return spinta.ModelName{Dataset: s.Dataset, Model: name}
}

// createCountry inserts a Country without a client _id.
func (s *Suite) createCountry(key int, name string) spinta.Object {
	obj, err := s.Client.Insert(context.Background(), s.model("Country"), spinta.Object{
		"id":   key,
		"name": name,
	})
	s.Require().NoError(err)
	return obj
}

// TestCreateCountry checks the server-managed fields of a new object.
func (s *Suite) TestCreateCountry() {
	obj := s.createCountry(42, "Lithuania")
	s.NotEmpty(obj.ID())
	s.NotEmpty(obj.Revision())
	s.Equal("Lithuania", obj["name"])
	s.EqualValues(42, obj["id"])

	again, err := s.Client.Get(context.Background(), s.model("Country"), obj.ID())
	if s.NoError(err) {
		s.Equal(obj.ID(), again.ID())
		s.Equal(obj.Revision(), again.Revision())
	}
}

// TestRevisionsDiffer checks that two creations never share a
// revision.
func (s *Suite) TestRevisionsDiffer() {
	a := s.createCountry(1, "Latvia")
	b := s.createCountry(2, "Estonia")
	s.NotEqual(a.ID(), b.ID())
	s.NotEqual(a.Revision(), b.Revision())
}

// TestPushChangesRevision checks that upserting an existing object
// gives it a new revision.
func (s *Suite) TestPushChangesRevision() {
	obj := s.createCountry(3, "Finland")
	out, err := s.Client.Push(context.Background(), []spinta.Object{{
		spinta.KeyOp:    "upsert",
		spinta.KeyType:  s.model("Country").String(),
		spinta.KeyID:    obj.ID(),
		spinta.KeyWhere: `eq(_id, "` + obj.ID() + `")`,
		"id":            3,
		"name":          "Suomi",
	}})
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal(obj.ID(), out[0].ID())
	s.NotEmpty(out[0].Revision())
	s.NotEqual(obj.Revision(), out[0].Revision())

	again, err := s.Client.Get(context.Background(), s.model("Country"), obj.ID())
	if s.NoError(err) {
		s.Equal(out[0].Revision(), again.Revision())
		s.Equal("Suomi", again["name"])
	}
}

// TestRefByID checks that a reference by _id is normalized to
// {"_id": …}.
func (s *Suite) TestRefByID() {
	country := s.createCountry(42, "Lithuania")
	city, err := s.Client.Insert(context.Background(), s.model("City"), spinta.Object{
		"name":    "Vilnius",
		"country": spinta.RefID(country.ID()),
	})
	if s.NoError(err) {
		s.Equal(map[string]interface{}{spinta.KeyID: country.ID()}, city["country"])
	}
}

// TestRefByName checks that a reference by an undeclared key is
// rejected with FieldNotInResource on that key.
func (s *Suite) TestRefByName() {
	s.createCountry(42, "Lithuania")
	_, err := s.Client.Insert(context.Background(), s.model("City"), spinta.Object{
		"name":    "Kaunas",
		"country": spinta.RefKey("name", "Lithuania"),
	})
	e, found := spinta.FindError(err, spinta.CodeFieldNotInResource)
	if s.True(found, "error %v", err) {
		s.Equal("name", e.Property())
		s.Equal("property", e.Type)
		s.Equal("Unknown property 'name'.", e.Message)
	}
}

// TestUnknownProperty checks that undeclared properties are rejected.
func (s *Suite) TestUnknownProperty() {
	_, err := s.Client.Insert(context.Background(), s.model("Country"), spinta.Object{
		"id":      7,
		"capital": "Tallinn",
	})
	e, found := spinta.FindError(err, spinta.CodeFieldNotInResource)
	if s.True(found, "error %v", err) {
		s.Equal("capital", e.Property())
	}
}

// TestTable checks the ascii rendering of a selected reference.
func (s *Suite) TestTable() {
	ctx := context.Background()
	country := s.createCountry(42, "Lithuania")
	city, err := s.Client.Insert(ctx, s.model("City"), spinta.Object{
		"name":    "Klaipėda",
		"country": spinta.RefID(country.ID()),
	})
	s.Require().NoError(err)

	text, err := s.Client.Table(ctx, s.model("City"), spinta.Query{
		Select: []string{spinta.KeyID, "country"},
	})
	s.Require().NoError(err)
	table, err := ascii.Parse(text)
	s.Require().NoError(err)
	s.Equal([]string{spinta.KeyID, "country._id"}, table.Columns)

	found := false
	for _, row := range table.Rows {
		if row[spinta.KeyID] == city.ID() {
			found = true
			s.Equal(country.ID(), row["country._id"])
		}
	}
	s.True(found, "city %s missing from\n%s", city.ID(), text)
}

// TestGetAll checks that every created object is listed.
func (s *Suite) TestGetAll() {
	ctx := context.Background()
	created := s.createCountry(370, "Lietuva")

	all, err := s.Client.GetAll(ctx, s.model("Country"), spinta.Query{})
	s.Require().NoError(err)
	var ids []string
	for _, obj := range all {
		ids = append(ids, obj.ID())
	}
	s.Contains(ids, created.ID())
}

// TestGetMissing checks that a missing object is an error.
func (s *Suite) TestGetMissing() {
	_, err := s.Client.Get(context.Background(), s.model("Country"), "00000000-0000-4000-8000-000000000000")
	s.Error(err)
}
