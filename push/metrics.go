// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package push

import (
	"github.com/prometheus/client_golang/prometheus"
)

var rowsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "spinta",
		Subsystem: "push",
		Name:      "rows_total",
		Help:      "Rows handled by push, by model and result",
	},
	[]string{
		"model",
		"result",
	},
)

var chunksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "spinta",
		Subsystem: "push",
		Name:      "chunks_total",
		Help:      "Chunks sent by push, by result",
	},
	[]string{
		"result",
	},
)

var chunkBytes = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "spinta",
		Subsystem: "push",
		Name:      "chunk_bytes",
		Help:      "Encoded size of each chunk sent",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
	},
)

func init() {
	prometheus.MustRegister(rowsTotal, chunksTotal, chunkBytes)
}

// Row results for rowsTotal.
const (
	resultPushed  = "pushed"
	resultSkipped = "skipped"
	resultFailed  = "failed"
	resultInvalid = "invalid"
)

func countRows(model, result string, n int) {
	rowsTotal.With(prometheus.Labels{
		"model":  model,
		"result": result,
	}).Add(float64(n))
}
