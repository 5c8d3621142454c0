// Package reading defines the soil temperature record type passed between
// the ingest, filter, and aggregation stages.
package reading

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used in WEW data files and in every
// generated table.
const TimeLayout = "2006/01/02 15:04"

// Reading is one timestamped set of soil temperature measurements for one
// experimental plot. Temps holds one entry per configured sensor depth, in
// ascending depth order; a nil entry is a missing measurement. Raw preserves
// the extracted source fields verbatim so the filtered-records table can
// pass them through unchanged.
type Reading struct {
	Timestamp time.Time
	Plot      int
	Temps     []*float64
	Raw       []string
}

func (r Reading) String() string {
	temps := make([]string, len(r.Temps))
	for i, t := range r.Temps {
		if t == nil {
			temps[i] = "-"
			continue
		}
		temps[i] = fmt.Sprintf("%.2f", *t)
	}

	return fmt.Sprintf("%s plot %d [%s]", r.Timestamp.Format(TimeLayout), r.Plot, strings.Join(temps, " "))
}
