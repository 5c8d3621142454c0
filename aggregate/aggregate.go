// Package aggregate turns filtered readings into the two reported views:
// per-reading interval averages, and per-date summaries of those averages by
// plot and depth interval.
package aggregate

import (
	"time"

	"github.com/mlfelice/spruce-tools/filter"
	"github.com/mlfelice/spruce-tools/profile"
	"github.com/mlfelice/spruce-tools/reading"
)

// Row is one reading's average temperature over one depth interval. Mean is
// nil when the average could not be computed for this reading, either
// because a sensor value it needed was missing or because the interval
// leaves the sensor range.
type Row struct {
	Timestamp time.Time
	Plot      int
	Interval  profile.Interval
	Mean      *float64
}

// Key identifies one summary group: rows matching one target sampling
// instant, from one plot, over one depth interval.
type Key struct {
	Target   time.Time
	Plot     int
	Interval profile.Interval
}

// Summary reports the statistics of one group. Stats is nil when no row in
// the group carried an interval average, a "no data" outcome distinct from
// a group whose statistics happen to be zero.
type Summary struct {
	Key   Key
	Stats *Stats
}

// Aggregator computes both views for one deployment configuration.
type Aggregator struct {
	Depths    []int
	Intervals []profile.Interval
	Temporal  filter.Temporal
	Plots     []int
}

// Rows computes the per-reading view: one Row per reading per configured
// interval, readings in input order and intervals in configured order.
func (a Aggregator) Rows(readings []reading.Reading) ([]Row, error) {
	rows := make([]Row, 0, len(readings)*len(a.Intervals))
	for _, r := range readings {
		p, err := profile.New(a.Depths, r.Temps)
		if err != nil {
			return nil, err
		}
		for _, iv := range a.Intervals {
			rows = append(rows, Row{
				Timestamp: r.Timestamp,
				Plot:      r.Plot,
				Interval:  iv,
				Mean:      p.IntervalMean(iv),
			})
		}
	}
	return rows, nil
}

// Summarize groups rows by target instant, plot, and interval, and computes
// each group's statistics. A row belongs to a target's group when its
// timestamp matches that target under the temporal predicate; rows without
// an interval average are left out of the statistics rather than counted as
// zero. One Summary is emitted per possible key, ordered by plot, then
// target, then interval, so empty groups surface as explicit "no data"
// entries instead of disappearing.
func (a Aggregator) Summarize(rows []Row) []Summary {
	accs := make(map[Key]*accumulator)
	for _, row := range rows {
		for _, target := range a.Temporal.Targets {
			if !a.Temporal.MatchAt(row.Timestamp, target) {
				continue
			}
			k := Key{Target: target, Plot: row.Plot, Interval: row.Interval}
			acc, ok := accs[k]
			if !ok {
				acc = &accumulator{}
				accs[k] = acc
			}
			if row.Mean != nil {
				acc.add(*row.Mean)
			}
		}
	}

	summaries := make([]Summary, 0, len(a.Plots)*len(a.Temporal.Targets)*len(a.Intervals))
	for _, plot := range a.Plots {
		for _, target := range a.Temporal.Targets {
			for _, iv := range a.Intervals {
				k := Key{Target: target, Plot: plot, Interval: iv}
				var st *Stats
				if acc, ok := accs[k]; ok {
					st = acc.stats()
				}
				summaries = append(summaries, Summary{Key: k, Stats: st})
			}
		}
	}
	return summaries
}
