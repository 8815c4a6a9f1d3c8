// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package push uploads rows to a spinta server in chunked batches of
// upserts, skipping rows that have not changed since they were last
// pushed.
//
// Every row becomes an upsert keyed on its _id:
//
//     {"_op": "upsert", "_type": "datasets/gov/example/Country",
//      "_id": "…", "_where": "eq(_id, \"…\")", "id": 42, …}
//
// Payloads are packed into {"_data": […]} bodies no larger than
// ChunkSize bytes.  A row larger than ChunkSize is sent alone.  A chunk
// that fails to send is logged and dropped; the push goes on with the
// next one.
//
// With a State, each row's revision (see Revision) is compared with
// the revision saved when it was last pushed, and unchanged rows are
// not sent.  Revisions are saved only for rows the server accepted.
package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-spinta/restdata"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/docker/go-units"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// DefaultChunkSize is used when Pusher.ChunkSize is zero.
const DefaultChunkSize = 1024 * 1024

// ErrNoType is returned for rows without a _type.
var ErrNoType = errors.New("row has no _type")

// Entry is the saved push state of one object.
type Entry struct {
	ID       string
	Revision string
	Pushed   time.Time
}

// State remembers which revision of each object was last pushed.
type State interface {
	// Revisions returns the saved revision of every pushed object
	// of a model, keyed by _id.
	Revisions(ctx context.Context, model string) (map[string]string, error)

	// Save records pushed objects of a model, replacing any
	// earlier entries with the same _id.
	Save(ctx context.Context, model string, entries []Entry) error
}

// Stats counts what a push did.
type Stats struct {
	// Read is the number of rows read from the source.
	Read int

	// Pushed is the number of rows the server accepted.
	Pushed int

	// Skipped is the number of rows unchanged since the last push.
	Skipped int

	// Failed is the number of rows in chunks that could not be
	// sent.
	Failed int

	// Invalid is the number of rows dropped before sending, such
	// as rows without _type.
	Invalid int

	// Chunks is the number of chunks sent successfully.
	Chunks int
}

// Pusher pushes rows to one server.
type Pusher struct {
	Client spinta.Client

	// State, if not nil, filters unchanged rows and records
	// pushed ones.
	State State

	// ChunkSize bounds the encoded size of each request body.
	ChunkSize int64

	// StopRow, if positive, stops after this many rows have been
	// queued for sending.  Skipped rows do not count.
	StopRow int

	// StopTime, if positive, stops reading rows once this much
	// time has passed.
	StopTime time.Duration

	Clock  clock.Clock
	Logger logrus.FieldLogger
}

// New creates a pusher with default settings.
func New(client spinta.Client, state State) *Pusher {
	return &Pusher{
		Client:    client,
		State:     state,
		ChunkSize: DefaultChunkSize,
		Clock:     clock.New(),
		Logger:    logrus.StandardLogger(),
	}
}

// ParseChunkSize parses sizes such as "1m", "512k" or "100b".  Units
// are binary.
func ParseChunkSize(s string) (int64, error) {
	size, err := units.RAMInBytes(s)
	if err != nil {
		return 0, err
	}
	if size <= 0 {
		return 0, fmt.Errorf("chunk size must be positive: %q", s)
	}
	return size, nil
}

// Payload builds the upsert operation for a row.  A row without _id
// gets a fresh one.  Reserved keys other than _type and _id are
// dropped.
func Payload(row spinta.Object) (spinta.Object, error) {
	model := row.Type()
	if model == "" {
		return nil, ErrNoType
	}
	id := row.ID()
	if id == "" {
		id = uuid.NewV4().String()
	}
	payload := spinta.Object{
		spinta.KeyOp:    "upsert",
		spinta.KeyType:  model,
		spinta.KeyID:    id,
		spinta.KeyWhere: fmt.Sprintf("eq(_id, %q)", id),
	}
	for _, k := range row.Properties() {
		payload[k] = row[k]
	}
	return payload, nil
}

// pending is a row queued for sending.
type pending struct {
	payload spinta.Object
	rev     string
}

// run holds the state of one Push call.
type run struct {
	*Pusher
	ctx       context.Context
	stats     Stats
	revisions map[string]map[string]string
	chunk     []pending
	size      int64
}

const (
	chunkPrefix = `{"_data":[`
	chunkSuffix = `]}`
)

// Push reads src to the end, or until a stop limit is reached, and
// pushes every changed row.  Errors reading the source or the state
// stop the push and are returned along with the stats so far; send
// failures do not.
func (p *Pusher) Push(ctx context.Context, src Source) (Stats, error) {
	settings := *p
	r := &run{
		Pusher:    &settings,
		ctx:       ctx,
		revisions: make(map[string]map[string]string),
	}
	if r.ChunkSize <= 0 {
		r.ChunkSize = DefaultChunkSize
	}
	if r.Clock == nil {
		r.Clock = clock.New()
	}
	if r.Logger == nil {
		r.Logger = logrus.StandardLogger()
	}
	r.size = int64(len(chunkPrefix))

	err := r.readAll(src)
	if err == nil {
		err = r.flush()
	}
	r.Logger.WithFields(logrus.Fields{
		"read":    r.stats.Read,
		"pushed":  r.stats.Pushed,
		"skipped": r.stats.Skipped,
		"failed":  r.stats.Failed,
		"invalid": r.stats.Invalid,
		"chunks":  r.stats.Chunks,
	}).Info("push finished")
	return r.stats, err
}

func (r *run) readAll(src Source) error {
	start := r.Clock.Now()
	queued := 0
	for {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		row, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		r.stats.Read++

		payload, err := Payload(row)
		if err != nil {
			r.stats.Invalid++
			countRows("", resultInvalid, 1)
			r.Logger.WithError(err).WithField("row", r.stats.Read).Warn("dropping row")
		} else {
			send, rev, err := r.changed(payload)
			if err != nil {
				return err
			}
			if send {
				if err = r.add(payload, rev); err != nil {
					return err
				}
				queued++
			}
		}

		if r.StopRow > 0 && queued >= r.StopRow {
			return nil
		}
		if r.StopTime > 0 && r.Clock.Now().Sub(start) > r.StopTime {
			r.Logger.WithField("stop_time", r.StopTime).Info("push time limit reached")
			return nil
		}
	}
}

// changed computes the revision of payload and reports whether it
// differs from the saved state.
func (r *run) changed(payload spinta.Object) (bool, string, error) {
	if r.State == nil {
		return true, "", nil
	}
	rev, err := Revision(payload)
	if err != nil {
		return false, "", err
	}
	model := payload.Type()
	saved, loaded := r.revisions[model]
	if !loaded {
		saved, err = r.State.Revisions(r.ctx, model)
		if err != nil {
			return false, "", err
		}
		r.revisions[model] = saved
	}
	if saved[payload.ID()] == rev {
		r.stats.Skipped++
		countRows(model, resultSkipped, 1)
		return false, rev, nil
	}
	return true, rev, nil
}

// add queues a payload, sending the current chunk first if the payload
// would not fit.
func (r *run) add(payload spinta.Object, rev string) error {
	encoded, err := restdata.EncodeBytes(payload)
	if err != nil {
		return err
	}
	n := int64(len(encoded))
	if len(r.chunk) > 0 && r.size+1+n+int64(len(chunkSuffix)) > r.ChunkSize {
		if err = r.flush(); err != nil {
			return err
		}
	}
	if len(r.chunk) > 0 {
		r.size++
	}
	r.size += n
	r.chunk = append(r.chunk, pending{payload: payload, rev: rev})
	return nil
}

// flush sends the queued chunk.  Only state errors are returned.
func (r *run) flush() error {
	if len(r.chunk) == 0 {
		return nil
	}
	chunk := r.chunk
	size := r.size + int64(len(chunkSuffix))
	r.chunk = nil
	r.size = int64(len(chunkPrefix))

	batch := make([]spinta.Object, len(chunk))
	for i, row := range chunk {
		batch[i] = row.payload
	}
	chunkBytes.Observe(float64(size))

	_, err := r.Client.Push(r.ctx, batch)
	if err != nil {
		r.stats.Failed += len(chunk)
		chunksTotal.WithLabelValues(resultFailed).Inc()
		for _, row := range chunk {
			countRows(row.payload.Type(), resultFailed, 1)
		}
		r.Logger.WithError(err).WithFields(logrus.Fields{
			"rows":  len(chunk),
			"bytes": size,
		}).Error("Error when sending and receiving data")
		return nil
	}
	r.stats.Chunks++
	r.stats.Pushed += len(chunk)
	chunksTotal.WithLabelValues(resultPushed).Inc()
	r.Logger.WithFields(logrus.Fields{
		"rows":  len(chunk),
		"bytes": size,
	}).Debug("pushed chunk")

	return r.save(chunk)
}

// save records the revisions of a sent chunk, grouped by model.
func (r *run) save(chunk []pending) error {
	now := r.Clock.Now()
	var order []string
	byModel := make(map[string][]Entry)
	for _, row := range chunk {
		model := row.payload.Type()
		countRows(model, resultPushed, 1)
		if r.State == nil {
			continue
		}
		if _, seen := byModel[model]; !seen {
			order = append(order, model)
		}
		byModel[model] = append(byModel[model], Entry{
			ID:       row.payload.ID(),
			Revision: row.rev,
			Pushed:   now,
		})
	}
	for _, model := range order {
		if err := r.State.Save(r.ctx, model, byModel[model]); err != nil {
			return err
		}
		saved := r.revisions[model]
		if saved == nil {
			saved = make(map[string]string)
			r.revisions[model] = saved
		}
		for _, e := range byModel[model] {
			saved[e.ID] = e.Revision
		}
	}
	return nil
}
