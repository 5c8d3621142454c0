package filter

import (
	"testing"
	"time"

	"github.com/mlfelice/spruce-tools/reading"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(reading.TimeLayout, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func TestModeValid(t *testing.T) {
	cases := []struct {
		m    Mode
		want bool
	}{
		{ModeYear, true},
		{ModeYearOnward, true},
		{ModeWindow, true},
		{Mode(""), false},
		{Mode("decade"), false},
	}

	for _, c := range cases {
		if got := c.m.Valid(); got != c.want {
			t.Errorf("Mode(%q).Valid() = %v, want %v", c.m, got, c.want)
		}
	}
}

func TestTemporalMatchAt(t *testing.T) {
	target := mustTime(t, "2016/10/15 16:00")

	cases := []struct {
		name string
		mode Mode
		ts   string
		want bool
	}{
		{"same year", ModeYear, "2016/01/01 00:00", true},
		{"same year late", ModeYear, "2016/12/31 23:59", true},
		{"year before", ModeYear, "2015/12/31 23:59", false},
		{"year after", ModeYear, "2017/01/01 00:00", false},

		{"onward same year", ModeYearOnward, "2016/03/04 08:00", true},
		{"onward later year", ModeYearOnward, "2019/03/04 08:00", true},
		{"onward earlier year", ModeYearOnward, "2015/03/04 08:00", false},

		{"window inside", ModeWindow, "2016/10/14 12:00", true},
		{"window start boundary", ModeWindow, "2016/10/13 16:00", true},
		{"window end boundary", ModeWindow, "2016/10/15 16:00", true},
		{"window before start", ModeWindow, "2016/10/13 15:59", false},
		{"window after end", ModeWindow, "2016/10/15 16:01", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tp := Temporal{Mode: c.mode, Lookback: 48 * time.Hour}
			if got := tp.MatchAt(mustTime(t, c.ts), target); got != c.want {
				t.Errorf("MatchAt(%s, %s) under %s = %v, want %v", c.ts, target, c.mode, got, c.want)
			}
		})
	}
}

func TestTemporalMatchAnyTarget(t *testing.T) {
	tp := Temporal{
		Mode: ModeWindow,
		Targets: []time.Time{
			mustTime(t, "2016/06/13 16:00"),
			mustTime(t, "2016/10/15 16:00"),
		},
		Lookback: 48 * time.Hour,
	}

	cases := []struct {
		name string
		ts   string
		want bool
	}{
		{"in first window", "2016/06/12 08:00", true},
		{"in second window", "2016/10/15 00:00", true},
		{"between windows", "2016/08/01 12:00", false},
		{"before both", "2016/06/11 15:59", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := tp.Match(mustTime(t, c.ts)); got != c.want {
				t.Errorf("Match(%s) = %v, want %v", c.ts, got, c.want)
			}
		})
	}
}

func TestFilterMatch(t *testing.T) {
	f := Filter{
		Temporal: Temporal{
			Mode:    ModeYear,
			Targets: []time.Time{mustTime(t, "2016/10/15 16:00")},
		},
		Plots: []int{4, 6, 7},
	}

	cases := []struct {
		name string
		ts   string
		plot int
		want bool
	}{
		{"both match", "2016/05/01 00:00", 4, true},
		{"wrong plot", "2016/05/01 00:00", 5, false},
		{"wrong year", "2015/05/01 00:00", 4, false},
		{"both wrong", "2015/05/01 00:00", 5, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := reading.Reading{Timestamp: mustTime(t, c.ts), Plot: c.plot}
			if got := f.Match(r); got != c.want {
				t.Errorf("Match(%s plot %d) = %v, want %v", c.ts, c.plot, got, c.want)
			}
		})
	}
}

func TestFilterEmptyAllowList(t *testing.T) {
	f := Filter{
		Temporal: Temporal{
			Mode:    ModeYearOnward,
			Targets: []time.Time{mustTime(t, "2016/10/15 16:00")},
		},
	}

	r := reading.Reading{Timestamp: mustTime(t, "2017/05/01 00:00"), Plot: 4}
	if f.Match(r) {
		t.Error("Match with empty plot allow-list should reject everything")
	}
}
