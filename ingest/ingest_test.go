package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mlfelice/spruce-tools/reading"
)

// compactLayout matches the test fixtures below: timestamp, plot, then
// three temperature columns.
var compactLayout = Layout{
	TimestampCol: 0,
	PlotCol:      1,
	TempCols:     []int{2, 3, 4},
}

func floatPtr(f float64) *float64 {
	return &f
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(reading.TimeLayout, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func TestRead(t *testing.T) {
	in := strings.Join([]string{
		"TIMESTAMP,Plot,T0,T5,T10",
		"2016/06/13 16:00,4,10,12,16",
		"2016-06-13 16:30,6,10.25,NAN,15.5",
		"2016/06/13 17:00,7,,12.5,",
	}, "\n") + "\n"

	header, readings, err := Read(strings.NewReader(in), compactLayout)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	wantHeader := []string{"TIMESTAMP", "Plot", "T0", "T5", "T10"}
	if diff := cmp.Diff(wantHeader, header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	want := []reading.Reading{
		{
			Timestamp: mustTime(t, "2016/06/13 16:00"),
			Plot:      4,
			Temps:     []*float64{floatPtr(10), floatPtr(12), floatPtr(16)},
			Raw:       []string{"2016/06/13 16:00", "4", "10", "12", "16"},
		},
		{
			Timestamp: mustTime(t, "2016/06/13 16:30"),
			Plot:      6,
			Temps:     []*float64{floatPtr(10.25), nil, floatPtr(15.5)},
			Raw:       []string{"2016-06-13 16:30", "6", "10.25", "NAN", "15.5"},
		},
		{
			Timestamp: mustTime(t, "2016/06/13 17:00"),
			Plot:      7,
			Temps:     []*float64{nil, floatPtr(12.5), nil},
			Raw:       []string{"2016/06/13 17:00", "7", "", "12.5", ""},
		},
	}
	if diff := cmp.Diff(want, readings); diff != "" {
		t.Errorf("readings mismatch (-want +got):\n%s", diff)
	}
}

// The production layout skips over the columns the analysis does not use.
func TestReadSparseColumns(t *testing.T) {
	layout := Layout{TimestampCol: 1, PlotCol: 3, TempCols: []int{5, 7}}
	in := strings.Join([]string{
		"Year,TIMESTAMP,RECORD,Plot,X,T0,Y,T5",
		"2016,2016/06/13 16:00,861,4,skip,10,skip,12",
	}, "\n") + "\n"

	_, readings, err := Read(strings.NewReader(in), layout)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	want := []reading.Reading{
		{
			Timestamp: mustTime(t, "2016/06/13 16:00"),
			Plot:      4,
			Temps:     []*float64{floatPtr(10), floatPtr(12)},
			Raw:       []string{"2016/06/13 16:00", "4", "10", "12"},
		},
	}
	if diff := cmp.Diff(want, readings); diff != "" {
		t.Errorf("readings mismatch (-want +got):\n%s", diff)
	}
}

func TestReadErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty input", "", "empty input"},
		{
			"header too short",
			"TIMESTAMP,Plot\n",
			"header",
		},
		{
			"record too short",
			"TIMESTAMP,Plot,T0,T5,T10\n2016/06/13 16:00,4,10\n",
			"line 2",
		},
		{
			"bad timestamp",
			"TIMESTAMP,Plot,T0,T5,T10\n13/06/2016 16:00,4,10,12,16\n",
			"line 2",
		},
		{
			"bad plot",
			"TIMESTAMP,Plot,T0,T5,T10\n2016/06/13 16:00,plot four,10,12,16\n",
			"line 2",
		},
		{
			"bad plot on later line",
			"TIMESTAMP,Plot,T0,T5,T10\n2016/06/13 16:00,4,10,12,16\n2016/06/13 16:30,?,10,12,16\n",
			"line 3",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := Read(strings.NewReader(c.in), compactLayout)
			if err == nil {
				t.Fatal("Read should have returned an error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Errorf("error %q does not mention %q", err, c.want)
			}
		})
	}
}

// "NAN" must become a missing value, not a NaN that poisons every average
// downstream.
func TestReadNANIsMissing(t *testing.T) {
	in := "TIMESTAMP,Plot,T0,T5,T10\n2016/06/13 16:00,4,NAN,nan,NaN\n"

	_, readings, err := Read(strings.NewReader(in), compactLayout)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i, v := range readings[0].Temps {
		if v != nil {
			t.Errorf("Temps[%d] = %v, want missing", i, *v)
		}
	}
}
