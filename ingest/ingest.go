// Package ingest reads WEW environmental data files into typed soil
// temperature readings.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mlfelice/spruce-tools/reading"
)

// Layout locates the reading fields inside a raw WEW record. Columns are
// zero-based; TempCols lists the column of each sensor temperature in
// ascending depth order.
type Layout struct {
	TimestampCol int
	PlotCol      int
	TempCols     []int
}

// timeLayouts are the timestamp forms seen in WEW files. The published
// files mix date separators; merge normalizes to the slash form, but ingest
// accepts both so unmerged files parse too.
var timeLayouts = []string{reading.TimeLayout, "2006-01-02 15:04"}

// Read parses one WEW data stream. The first record is the header; its
// extracted fields are returned so the filtered-records table can repeat
// them. A record that cannot be parsed into a reading stops the read with
// an error naming the offending line. Empty and non-numeric temperature
// fields (the loggers write "NAN") become missing values, not errors.
func Read(r io.Reader, layout Layout) ([]string, []reading.Reading, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var header []string
	var readings []reading.Reading
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("ingest: line %d: %w", line+1, err)
		}
		line++

		if line == 1 {
			header, err = extract(rec, layout)
			if err != nil {
				return nil, nil, fmt.Errorf("ingest: header: %w", err)
			}
			continue
		}

		rd, err := parseReading(rec, layout)
		if err != nil {
			return nil, nil, fmt.Errorf("ingest: line %d: %w", line, err)
		}
		readings = append(readings, rd)
	}

	if header == nil {
		return nil, nil, fmt.Errorf("ingest: empty input")
	}
	return header, readings, nil
}

// ReadFile is Read over the named file.
func ReadFile(path string, layout Layout) ([]string, []reading.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Read(f, layout)
}

// extract pulls the layout's columns out of a raw record, in reading field
// order: timestamp, plot, then one field per sensor depth.
func extract(rec []string, layout Layout) ([]string, error) {
	cols := make([]int, 0, 2+len(layout.TempCols))
	cols = append(cols, layout.TimestampCol, layout.PlotCol)
	cols = append(cols, layout.TempCols...)

	fields := make([]string, len(cols))
	for i, c := range cols {
		if c < 0 || c >= len(rec) {
			return nil, fmt.Errorf("column %d not in record of %d fields", c, len(rec))
		}
		fields[i] = rec[c]
	}
	return fields, nil
}

func parseReading(rec []string, layout Layout) (reading.Reading, error) {
	raw, err := extract(rec, layout)
	if err != nil {
		return reading.Reading{}, err
	}

	ts, err := parseTime(raw[0])
	if err != nil {
		return reading.Reading{}, fmt.Errorf("timestamp %q: %w", raw[0], err)
	}

	plot, err := strconv.Atoi(strings.TrimSpace(raw[1]))
	if err != nil {
		return reading.Reading{}, fmt.Errorf("plot %q: %w", raw[1], err)
	}

	temps := make([]*float64, len(layout.TempCols))
	for i, field := range raw[2:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		temps[i] = &v
	}

	return reading.Reading{Timestamp: ts, Plot: plot, Temps: temps, Raw: raw}, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
