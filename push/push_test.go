// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package push_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-spinta/memory"
	"github.com/diffeo/go-spinta/push"
	"github.com/diffeo/go-spinta/restclient"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/diffeo/go-spinta/spintatest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a spinta.Client that only accepts pushes, echoing them
// back.
type recorder struct {
	batches [][]spinta.Object
	fail    map[int]bool
}

var errRefused = errors.New("refused")

func (r *recorder) Insert(context.Context, spinta.ModelName, spinta.Object) (spinta.Object, error) {
	return nil, errRefused
}

func (r *recorder) Get(context.Context, spinta.ModelName, string) (spinta.Object, error) {
	return nil, errRefused
}

func (r *recorder) GetAll(context.Context, spinta.ModelName, spinta.Query) ([]spinta.Object, error) {
	return nil, errRefused
}

func (r *recorder) Table(context.Context, spinta.ModelName, spinta.Query) (string, error) {
	return "", errRefused
}

func (r *recorder) Push(ctx context.Context, batch []spinta.Object) ([]spinta.Object, error) {
	n := len(r.batches)
	r.batches = append(r.batches, batch)
	if r.fail[n] {
		return nil, errRefused
	}
	return batch, nil
}

func (r *recorder) ids() []string {
	var ids []string
	for _, batch := range r.batches {
		for _, obj := range batch {
			ids = append(ids, obj.ID())
		}
	}
	return ids
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.Out = &bytes.Buffer{}
	return logger
}

func newPusher(client spinta.Client, state push.State) *push.Pusher {
	p := push.New(client, state)
	p.Logger = quietLogger()
	return p
}

func countries(n int) push.Rows {
	rows := make(push.Rows, n)
	for i := range rows {
		rows[i] = spinta.Object{
			"_type": "a/Country",
			"_id":   fmt.Sprintf("00000000-0000-4000-8000-%012d", i),
			"id":    i,
			"name":  fmt.Sprintf("Country %d", i),
		}
	}
	return rows
}

func TestPushAll(t *testing.T) {
	client := &recorder{}
	stats, err := newPusher(client, nil).Push(context.Background(), countries(3).Source())
	require.NoError(t, err)
	assert.Equal(t, push.Stats{Read: 3, Pushed: 3, Chunks: 1}, stats)
	if assert.Len(t, client.batches, 1) {
		assert.Equal(t, "upsert", client.batches[0][0][spinta.KeyOp])
	}
}

func TestChunking(t *testing.T) {
	client := &recorder{}
	p := newPusher(client, nil)
	p.ChunkSize = 250
	stats, err := p.Push(context.Background(), countries(5).Source())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Pushed)
	assert.True(t, len(client.batches) > 1, "expected several chunks, got %d", len(client.batches))
	assert.Equal(t, stats.Chunks, len(client.batches))
	assert.Len(t, client.ids(), 5)
}

func TestOversizedRow(t *testing.T) {
	client := &recorder{}
	p := newPusher(client, nil)
	p.ChunkSize = 10
	stats, err := p.Push(context.Background(), countries(2).Source())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Pushed)
	assert.Len(t, client.batches, 2)
}

func TestSkipUnchanged(t *testing.T) {
	ctx := context.Background()
	state := memory.New()
	client := &recorder{}
	rows := countries(3)

	stats, err := newPusher(client, state).Push(ctx, rows.Source())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Pushed)

	stats, err = newPusher(client, state).Push(ctx, rows.Source())
	require.NoError(t, err)
	assert.Equal(t, push.Stats{Read: 3, Skipped: 3}, stats)

	rows[1]["name"] = "Renamed"
	stats, err = newPusher(client, state).Push(ctx, rows.Source())
	require.NoError(t, err)
	assert.Equal(t, push.Stats{Read: 3, Pushed: 1, Skipped: 2, Chunks: 1}, stats)
	assert.Equal(t, rows[1].ID(), client.batches[len(client.batches)-1][0].ID())
}

func TestSendFailure(t *testing.T) {
	ctx := context.Background()
	state := memory.New()
	client := &recorder{fail: map[int]bool{0: true}}
	p := newPusher(client, state)
	p.ChunkSize = 250

	stats, err := p.Push(ctx, countries(4).Source())
	require.NoError(t, err)
	assert.True(t, stats.Failed > 0)
	assert.Equal(t, 4, stats.Failed+stats.Pushed)

	// The dropped rows have no saved state, so they go again
	client.fail = nil
	stats2, err := newPusher(client, state).Push(ctx, countries(4).Source())
	require.NoError(t, err)
	assert.Equal(t, stats.Failed, stats2.Pushed)
	assert.Equal(t, stats.Pushed, stats2.Skipped)
}

func TestInvalidRow(t *testing.T) {
	client := &recorder{}
	rows := append(countries(1), spinta.Object{"id": 7})
	stats, err := newPusher(client, nil).Push(context.Background(), rows.Source())
	require.NoError(t, err)
	assert.Equal(t, push.Stats{Read: 2, Pushed: 1, Invalid: 1, Chunks: 1}, stats)
}

func TestStopRow(t *testing.T) {
	ctx := context.Background()
	state := memory.New()
	client := &recorder{}
	_, err := newPusher(client, state).Push(ctx, countries(2).Source())
	require.NoError(t, err)

	p := newPusher(client, state)
	p.StopRow = 2
	stats, err := p.Push(ctx, countries(6).Source())
	require.NoError(t, err)
	// The two already pushed rows are skipped and do not count
	assert.Equal(t, push.Stats{Read: 4, Pushed: 2, Skipped: 2, Chunks: 1}, stats)
}

// tickingSource advances a mock clock every time a row is read.
type tickingSource struct {
	push.Source
	clock *clock.Mock
	step  time.Duration
}

func (s *tickingSource) Next() (spinta.Object, error) {
	s.clock.Add(s.step)
	return s.Source.Next()
}

func TestStopTime(t *testing.T) {
	clk := clock.NewMock()
	client := &recorder{}
	p := newPusher(client, nil)
	p.Clock = clk
	p.StopTime = 25 * time.Second

	src := &tickingSource{Source: countries(10).Source(), clock: clk, step: 10 * time.Second}
	stats, err := p.Push(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Read)
	assert.Equal(t, 3, stats.Pushed)
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &recorder{}
	stats, err := newPusher(client, nil).Push(ctx, countries(3).Source())
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 0, stats.Read)
	assert.Empty(t, client.batches)
}

func TestPushToEmulator(t *testing.T) {
	srv := spintatest.New(spintatest.ExampleModels("a"), spintatest.Declared)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	client, err := restclient.New(ts.URL)
	require.NoError(t, err)

	ctx := context.Background()
	rows := countries(3)
	state := memory.New()
	stats, err := newPusher(client, state).Push(ctx, rows.Source())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Pushed)

	for _, row := range rows {
		obj, err := client.Get(ctx, spinta.MustParseModelName("a/Country"), row.ID())
		if assert.NoError(t, err) {
			assert.Equal(t, row["name"], obj["name"])
		}
		_, found := state.Entry("a/Country", row.ID())
		assert.True(t, found)
	}
}
