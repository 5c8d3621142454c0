// Package report writes the pipeline's three output tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mlfelice/spruce-tools/aggregate"
	"github.com/mlfelice/spruce-tools/reading"
)

// NA marks a value that could not be computed.
const NA = "NA"

// WriteFiltered writes the filtered-records table: the extracted header
// followed by every retained reading's raw fields, unchanged, as
// comma-separated rows.
func WriteFiltered(w io.Writer, header []string, readings []reading.Reading) error {
	if _, err := fmt.Fprintln(w, strings.Join(header, ",")); err != nil {
		return err
	}
	for _, r := range readings {
		if _, err := fmt.Fprintln(w, strings.Join(r.Raw, ",")); err != nil {
			return err
		}
	}
	return nil
}

// WriteRows writes the per-reading interval table: one tab-separated row
// per reading per interval, with NA where the interval average is absent.
func WriteRows(w io.Writer, rows []aggregate.Row) error {
	if _, err := fmt.Fprintln(w, "timestamp\tplot\tupper_depth\tlower_depth\tavg_temp"); err != nil {
		return err
	}
	for _, row := range rows {
		mean := NA
		if row.Mean != nil {
			mean = formatTemp(*row.Mean)
		}
		_, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
			row.Timestamp.Format(reading.TimeLayout), row.Plot,
			row.Interval.Top, row.Interval.Bottom, mean)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteSummaries writes the per-date summary table. A group with no data
// keeps its line, with a count of 0 and NA statistics, so "no data" stays
// distinguishable from statistics that are zero.
func WriteSummaries(w io.Writer, summaries []aggregate.Summary) error {
	if _, err := fmt.Fprintln(w, "date\tplot\tupper_depth\tlower_depth\tcount\tmin\tmax\tmean\tstdev"); err != nil {
		return err
	}
	for _, s := range summaries {
		prefix := fmt.Sprintf("%s\t%d\t%d\t%d",
			s.Key.Target.Format(reading.TimeLayout), s.Key.Plot,
			s.Key.Interval.Top, s.Key.Interval.Bottom)

		if s.Stats == nil {
			if _, err := fmt.Fprintf(w, "%s\t0\t%s\t%s\t%s\t%s\n", prefix, NA, NA, NA, NA); err != nil {
				return err
			}
			continue
		}

		st := s.Stats
		_, err := fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n", prefix, st.Count,
			formatTemp(st.Min), formatTemp(st.Max), formatTemp(st.Mean), formatTemp(st.StdDev))
		if err != nil {
			return err
		}
	}
	return nil
}

// formatTemp renders a temperature with the shortest representation that
// round-trips, so reruns over the same data stay byte-identical.
func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
