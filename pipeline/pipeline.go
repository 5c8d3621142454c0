// Package pipeline runs the batch computation end to end: parse the merged
// data file, filter the readings, average the depth intervals, summarize
// per sampling date, and hand the three tables to the writers and any
// configured stores.
package pipeline

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/mlfelice/spruce-tools/aggregate"
	"github.com/mlfelice/spruce-tools/config"
	"github.com/mlfelice/spruce-tools/filter"
	"github.com/mlfelice/spruce-tools/ingest"
	"github.com/mlfelice/spruce-tools/reading"
	"github.com/mlfelice/spruce-tools/report"
	"github.com/mlfelice/spruce-tools/store"
)

// Outputs receives the three report tables.
type Outputs struct {
	Filtered  io.Writer
	Rows      io.Writer
	Summaries io.Writer
}

// Result describes one completed run.
type Result struct {
	RunID        uuid.UUID
	ReadingsRead int
	ReadingsKept int
	Rows         int
	Summaries    int
	NoData       int
}

// Run executes one batch run over the merged data in r. It stops at the
// first parse or write error; the caller decides what to do with partially
// written outputs.
func Run(ctx context.Context, cfg *config.Config, r io.Reader, out Outputs, stores ...store.Store) (*Result, error) {
	res := &Result{RunID: uuid.New()}

	header, readings, err := ingest.Read(r, cfg.Layout())
	if err != nil {
		return nil, err
	}
	res.ReadingsRead = len(readings)

	temporal, err := cfg.Temporal()
	if err != nil {
		return nil, err
	}
	intervals, err := cfg.Intervals()
	if err != nil {
		return nil, err
	}

	f := filter.Filter{Temporal: temporal, Plots: cfg.Filter.Plots}
	var kept []reading.Reading
	for _, rd := range readings {
		if f.Match(rd) {
			kept = append(kept, rd)
		}
	}
	res.ReadingsKept = len(kept)

	agg := aggregate.Aggregator{
		Depths:    cfg.Deployment.Depths,
		Intervals: intervals,
		Temporal:  temporal,
		Plots:     cfg.Filter.Plots,
	}
	rows, err := agg.Rows(kept)
	if err != nil {
		return nil, err
	}
	res.Rows = len(rows)

	summaries := agg.Summarize(rows)
	res.Summaries = len(summaries)
	for _, s := range summaries {
		if s.Stats == nil {
			res.NoData++
		}
	}

	if err := report.WriteFiltered(out.Filtered, header, kept); err != nil {
		return nil, err
	}
	if err := report.WriteRows(out.Rows, rows); err != nil {
		return nil, err
	}
	if err := report.WriteSummaries(out.Summaries, summaries); err != nil {
		return nil, err
	}

	for _, st := range stores {
		if err := st.SaveRows(ctx, rows); err != nil {
			return nil, err
		}
		if err := st.SaveSummaries(ctx, summaries); err != nil {
			return nil, err
		}
	}

	return res, nil
}
