// Package store persists pipeline outputs to time-series databases for
// dashboards and later inspection. The tables written by package report
// remain the primary outputs; stores are optional sinks configured per run.
package store

import (
	"context"

	"github.com/mlfelice/spruce-tools/aggregate"
)

// Store is implemented by each database backend.
type Store interface {
	// SaveRows persists the per-reading interval averages.
	SaveRows(ctx context.Context, rows []aggregate.Row) error

	// SaveSummaries persists the per-date summary statistics.
	SaveSummaries(ctx context.Context, summaries []aggregate.Summary) error

	// Close releases the backend connection.
	Close(ctx context.Context) error
}
