// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package contract

import (
	"context"
	"fmt"

	"github.com/diffeo/go-spinta/ascii"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/satori/go.uuid"
)

func failed(format string, args ...interface{}) (Outcome, string) {
	return Fail, fmt.Sprintf(format, args...)
}

// sameNumber compares a decoded JSON number with an int.
func sameNumber(v interface{}, n int) bool {
	return fmt.Sprint(v) == fmt.Sprint(n)
}

// checkCreated verifies the fields every created object must carry.
func checkCreated(obj spinta.Object, model spinta.ModelName) error {
	if obj.ID() == "" {
		return fmt.Errorf("%s has no _id", model)
	}
	if obj.Revision() == "" {
		return fmt.Errorf("%s %s has no _revision", model, obj.ID())
	}
	if t := obj.Type(); t != "" && t != model.String() {
		return fmt.Errorf("%s %s has _type %q", model, obj.ID(), t)
	}
	return nil
}

func (r *Runner) checkCountry(obj spinta.Object) error {
	if err := checkCreated(obj, r.Country); err != nil {
		return err
	}
	if !sameNumber(obj["id"], r.CountryKey) {
		return fmt.Errorf("id is %v, want %d", obj["id"], r.CountryKey)
	}
	if obj["name"] != r.CountryName {
		return fmt.Errorf("name is %v, want %q", obj["name"], r.CountryName)
	}
	return nil
}

// createCountry POSTs a Country with its own _id.  If the server
// refuses client identifiers it retries without one, so that the
// dependent steps can still run.
func (r *Runner) createCountry(ctx context.Context, st *state) (Outcome, string) {
	id := uuid.NewV4().String()
	obj, err := r.Client.Insert(ctx, r.Country, spinta.Object{
		spinta.KeyID: id,
		"id":         r.CountryKey,
		"name":       r.CountryName,
	})
	if e, found := spinta.FindError(err, spinta.CodeManagedProperty); found && e.Property() == spinta.KeyID {
		st.clientID = clientIDRejected
		obj, err = r.Client.Insert(ctx, r.Country, spinta.Object{
			"id":   r.CountryKey,
			"name": r.CountryName,
		})
		if err != nil {
			return failed("insert without _id: %v", err)
		}
		if err = r.checkCountry(obj); err != nil {
			return failed("%v", err)
		}
		st.countryID = obj.ID()
		return Pass, "client _id refused; created " + obj.ID()
	}
	if err != nil {
		return failed("insert: %v", err)
	}
	if obj.ID() != id {
		return failed("_id is %q, want %q", obj.ID(), id)
	}
	if err = r.checkCountry(obj); err != nil {
		return failed("%v", err)
	}
	st.clientID = clientIDAccepted
	st.countryID = id
	return Pass, "created " + id
}

// cityByID references the Country by _id, the only shape City declares.
func (r *Runner) cityByID(ctx context.Context, st *state) (Outcome, string) {
	obj, err := r.Client.Insert(ctx, r.City, spinta.Object{
		"name":    "Vilnius",
		"country": spinta.RefID(st.countryID),
	})
	if err != nil {
		return failed("insert: %v", err)
	}
	if err = checkCreated(obj, r.City); err != nil {
		return failed("%v", err)
	}
	ref, shape := spinta.RefOf(obj["country"])
	if shape != spinta.RefByID || ref[spinta.KeyID] != st.countryID || len(ref) != 1 {
		return failed("country is %v, want {\"_id\": %q}", obj["country"], st.countryID)
	}
	st.cityID = obj.ID()
	return Pass, "created " + obj.ID()
}

// cityByName references the Country by a property City does not
// declare as a key.
func (r *Runner) cityByName(ctx context.Context, st *state) (Outcome, string) {
	obj, err := r.Client.Insert(ctx, r.City, spinta.Object{
		"name":    "Kaunas",
		"country": spinta.RefKey("name", r.CountryName),
	})
	if err == nil {
		return failed("accepted reference by name as %s", obj.ID())
	}
	e, found := spinta.FindError(err, spinta.CodeFieldNotInResource)
	if !found {
		return failed("want %s, got %v", spinta.CodeFieldNotInResource, err)
	}
	if e.Property() != "name" {
		return failed("%s on %q, want \"name\"", e.Code, e.Property())
	}
	return Pass, e.Message
}

// cityTable reads the City collection as an ascii table.
func (r *Runner) cityTable(ctx context.Context, st *state) (Outcome, string) {
	text, err := r.Client.Table(ctx, r.City, spinta.Query{
		Select: []string{spinta.KeyID, "country"},
	})
	if err != nil {
		return failed("table: %v", err)
	}
	table, err := ascii.Parse(text)
	if err != nil {
		return failed("parse table: %v", err)
	}
	refCol := "country." + spinta.KeyID
	if len(table.Columns) != 2 || table.Columns[0] != spinta.KeyID || table.Columns[1] != refCol {
		return failed("columns are %v, want [%s %s]", table.Columns, spinta.KeyID, refCol)
	}
	for _, row := range table.Rows {
		if row[spinta.KeyID] == st.cityID {
			if row[refCol] != st.countryID {
				return failed("%s is %q, want %q", refCol, row[refCol], st.countryID)
			}
			return Pass, fmt.Sprintf("%d rows", len(table.Rows))
		}
	}
	return failed("city %s not in table", st.cityID)
}

// cityByKey references the Country by the business key CityExplicit
// declares.  Servers have been seen rejecting this as an unknown
// property.
func (r *Runner) cityByKey(ctx context.Context, st *state) (Outcome, string) {
	obj, err := r.Client.Insert(ctx, r.CityExplicit, spinta.Object{
		"name":    "Vilnius",
		"country": spinta.RefKey("id", r.CountryKey),
	})
	if err != nil {
		e, found := spinta.FindError(err, spinta.CodeFieldNotInResource)
		if found && e.Property() == "id" {
			return ObservedDefect, e.Message
		}
		return failed("insert: %v", err)
	}
	if err = checkCreated(obj, r.CityExplicit); err != nil {
		return failed("%v", err)
	}
	ref, shape := spinta.RefOf(obj["country"])
	switch {
	case shape == spinta.RefByKey && sameNumber(ref["id"], r.CountryKey):
	case shape == spinta.RefByID && ref[spinta.KeyID] == st.countryID:
	default:
		return failed("country is %v", obj["country"])
	}
	return Resolved, "reference by id accepted"
}

// clientIDPolicy reports how the Country insert treated its _id.
// Country does not ask for client identifiers, so accepting one is the
// recorded defect.
func (r *Runner) clientIDPolicy(ctx context.Context, st *state) (Outcome, string) {
	if st.clientID == clientIDAccepted {
		return ObservedDefect, "client-supplied _id accepted"
	}
	return Resolved, "client-supplied _id refused"
}
