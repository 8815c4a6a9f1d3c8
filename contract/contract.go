// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package contract replays the documented spinta scenarios against a
// live server and classifies the result of each.
//
// The scenarios build on each other: a Country is created, two Cities
// reference it, and the City table is read back.  Two behaviors are
// known to differ from what the models declare; those steps are probes,
// and report whether the server still shows the recorded defect or has
// since been fixed.  Probes never fail a run.
//
//     runner := contract.NewRunner(client, "datasets/gov/example")
//     report := runner.Run(ctx)
//     report.Write(os.Stdout)
//     if report.Failed() {
//             os.Exit(1)
//     }
package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/diffeo/go-spinta/spinta"
	"github.com/sirupsen/logrus"
)

// Outcome classifies one step of a run.
type Outcome int

const (
	// Pass means the server behaved as documented.
	Pass Outcome = iota

	// Fail means the server deviated from documented behavior.
	Fail

	// ObservedDefect means a probe found the server still showing
	// a recorded defect.
	ObservedDefect

	// Resolved means a probe found the server now behaving as the
	// model declares.
	Resolved

	// Skipped means an earlier step this one depends on did not
	// succeed.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	case ObservedDefect:
		return "observed-defect"
	case Resolved:
		return "resolved"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the outcome of one step.
type Result struct {
	Step    string
	Outcome Outcome
	Detail  string
	Elapsed time.Duration
}

// Report collects the results of a run in step order.
type Report struct {
	Results []Result
}

// Failed returns true if any step failed.  Probes and skipped steps do
// not count.
func (r Report) Failed() bool {
	for _, result := range r.Results {
		if result.Outcome == Fail {
			return true
		}
	}
	return false
}

// Result returns the result for a named step.
func (r Report) Result(step string) (Result, bool) {
	for _, result := range r.Results {
		if result.Step == step {
			return result, true
		}
	}
	return Result{}, false
}

// Names of the steps, in run order.
const (
	StepCreateCountry = "create-country"
	StepCityByID      = "city-by-id"
	StepCityByName    = "city-by-name"
	StepCityTable     = "city-table"
	StepCityByKey     = "city-explicit-by-key"
	StepClientID      = "client-id-policy"
)

// Runner executes the scenarios against one server.
type Runner struct {
	Client  spinta.Client
	Logger  logrus.FieldLogger
	Country spinta.ModelName
	City    spinta.ModelName

	// CityExplicit is the City variant whose country reference is
	// declared to resolve by Country.id.
	CityExplicit spinta.ModelName

	// CountryKey is the business key given to the created Country.
	CountryKey int

	// CountryName is the name given to the created Country.
	CountryName string
}

// NewRunner creates a runner for the example models in dataset.
func NewRunner(client spinta.Client, dataset string) *Runner {
	name := func(model string) spinta.ModelName {
		return spinta.ModelName{Dataset: dataset, Model: model}
	}
	return &Runner{
		Client:       client,
		Logger:       logrus.StandardLogger(),
		Country:      name("Country"),
		City:         name("City"),
		CityExplicit: name("CityExplicit"),
		CountryKey:   42,
		CountryName:  "Lithuania",
	}
}

// state carries identifiers between steps.
type state struct {
	countryID string
	cityID    string

	// clientID records how the server treated the client-supplied
	// _id of the created Country.
	clientID clientIDPolicy
}

type clientIDPolicy int

const (
	clientIDUnknown clientIDPolicy = iota
	clientIDAccepted
	clientIDRejected
)

type step struct {
	name    string
	needs   func(*state) bool
	execute func(context.Context, *state) (Outcome, string)
}

func (r *Runner) steps() []step {
	haveCountry := func(st *state) bool { return st.countryID != "" }
	haveCity := func(st *state) bool { return st.countryID != "" && st.cityID != "" }
	return []step{
		{StepCreateCountry, nil, r.createCountry},
		{StepCityByID, haveCountry, r.cityByID},
		{StepCityByName, haveCountry, r.cityByName},
		{StepCityTable, haveCity, r.cityTable},
		{StepCityByKey, haveCountry, r.cityByKey},
		{StepClientID, func(st *state) bool { return st.clientID != clientIDUnknown }, r.clientIDPolicy},
	}
}

// Run executes every step in order and returns the report.  Run stops
// early only if ctx is canceled; the remaining steps are skipped.
func (r *Runner) Run(ctx context.Context) Report {
	var report Report
	st := &state{}
	for _, s := range r.steps() {
		result := Result{Step: s.name}
		start := time.Now()
		switch {
		case ctx.Err() != nil:
			result.Outcome = Skipped
			result.Detail = ctx.Err().Error()
		case s.needs != nil && !s.needs(st):
			result.Outcome = Skipped
			result.Detail = "depends on an earlier step"
		default:
			result.Outcome, result.Detail = s.execute(ctx, st)
		}
		result.Elapsed = time.Since(start)
		r.Logger.WithFields(logrus.Fields{
			"step":    result.Step,
			"outcome": result.Outcome.String(),
			"detail":  result.Detail,
		}).Info("contract step")
		report.Results = append(report.Results, result)
	}
	return report
}
