// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package contract_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diffeo/go-spinta/contract"
	"github.com/diffeo/go-spinta/restclient"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/diffeo/go-spinta/spintatest"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataset = "datasets/gov/example"

func run(t *testing.T, handler http.Handler) contract.Report {
	ts := httptest.NewServer(handler)
	defer ts.Close()
	client, err := restclient.New(ts.URL)
	require.NoError(t, err)

	runner := contract.NewRunner(client, dataset)
	logger := logrus.New()
	logger.Out = &bytes.Buffer{}
	runner.Logger = logger
	return runner.Run(context.Background())
}

func outcomes(report contract.Report) map[string]contract.Outcome {
	result := make(map[string]contract.Outcome)
	for _, r := range report.Results {
		result[r.Step] = r.Outcome
	}
	return result
}

func TestObservedServer(t *testing.T) {
	srv := spintatest.New(spintatest.ExampleModels(dataset), spintatest.Observed)
	report := run(t, srv.Handler())
	assert.False(t, report.Failed())
	assert.Equal(t, map[string]contract.Outcome{
		contract.StepCreateCountry: contract.Pass,
		contract.StepCityByID:      contract.Pass,
		contract.StepCityByName:    contract.Pass,
		contract.StepCityTable:     contract.Pass,
		contract.StepCityByKey:     contract.ObservedDefect,
		contract.StepClientID:      contract.ObservedDefect,
	}, outcomes(report))
}

func TestTableWithNullReference(t *testing.T) {
	srv := spintatest.New(spintatest.ExampleModels(dataset), spintatest.Observed)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	client, err := restclient.New(ts.URL)
	require.NoError(t, err)
	_, err = client.Insert(context.Background(), spinta.MustParseModelName(dataset+"/City"), spinta.Object{
		"name":    "Nowhere",
		"country": nil,
	})
	require.NoError(t, err)

	report := run(t, srv.Handler())
	result, found := report.Result(contract.StepCityTable)
	if assert.True(t, found) {
		assert.Equal(t, contract.Pass, result.Outcome, result.Detail)
	}
}

func TestDeclaredServer(t *testing.T) {
	srv := spintatest.New(spintatest.ExampleModels(dataset), spintatest.Declared)
	report := run(t, srv.Handler())
	assert.False(t, report.Failed())
	assert.Equal(t, map[string]contract.Outcome{
		contract.StepCreateCountry: contract.Pass,
		contract.StepCityByID:      contract.Pass,
		contract.StepCityByName:    contract.Pass,
		contract.StepCityTable:     contract.Pass,
		contract.StepCityByKey:     contract.Resolved,
		contract.StepClientID:      contract.Resolved,
	}, outcomes(report))
}

func TestBrokenServer(t *testing.T) {
	report := run(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	assert.True(t, report.Failed())
	got := outcomes(report)
	assert.Equal(t, contract.Fail, got[contract.StepCreateCountry])
	assert.Equal(t, contract.Skipped, got[contract.StepCityByID])
	assert.Equal(t, contract.Skipped, got[contract.StepCityTable])
	assert.Equal(t, contract.Skipped, got[contract.StepClientID])
}

func TestCanceled(t *testing.T) {
	srv := spintatest.New(spintatest.ExampleModels(dataset), spintatest.Observed)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	client, err := restclient.New(ts.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := contract.NewRunner(client, dataset)
	runner.Logger = logrus.New()
	runner.Logger.(*logrus.Logger).Out = &bytes.Buffer{}
	report := runner.Run(ctx)
	for _, r := range report.Results {
		assert.Equal(t, contract.Skipped, r.Outcome, r.Step)
	}
}

func TestWriteReport(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()

	report := contract.Report{Results: []contract.Result{
		{Step: contract.StepCreateCountry, Outcome: contract.Pass, Detail: "created x"},
		{Step: contract.StepCityByKey, Outcome: contract.ObservedDefect, Detail: "Unknown property 'id'."},
	}}
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "pass             create-country        created x", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "observed-defect  city-explicit-by-key"))
	assert.Equal(t, "1 passed, 0 failed, 1 observed defects, 0 resolved, 0 skipped", lines[3])

	r, found := report.Result(contract.StepCityByKey)
	assert.True(t, found)
	assert.Equal(t, "observed-defect", r.Outcome.String())
}
