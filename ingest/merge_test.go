package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "plot04.csv", strings.Join([]string{
		"Year,TIMESTAMP,Plot,T0",
		"2016,2016/06/13 16:00,4,10.5",
		"2016,2016-06-13 16:30,4,10.25",
		"",
	}, "\n"))
	p2 := writeFile(t, dir, "plot06.csv", strings.Join([]string{
		"Year,TIMESTAMP,Plot,T0",
		"2016,2016/06/13 16:00,6,11",
		"Year,TIMESTAMP,Plot,T0",
		"2016,2016/06/13 16:30,6,11.5",
		"",
	}, "\n"))

	var out strings.Builder
	rows, err := Merge(&out, []string{p1, p2}, 1)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if rows != 4 {
		t.Errorf("Merge wrote %d rows, want 4", rows)
	}

	want := strings.Join([]string{
		"Year,TIMESTAMP,Plot,T0",
		"2016,2016/06/13 16:00,4,10.5",
		"2016,2016/06/13 16:30,4,10.25",
		"2016,2016/06/13 16:00,6,11",
		"2016,2016/06/13 16:30,6,11.5",
		"",
	}, "\n")
	if out.String() != want {
		t.Errorf("merged output:\n%q\nwant:\n%q", out.String(), want)
	}
}

// A file whose header differs from the reference header still merges; the
// mismatch is only reported.
func TestMergeMismatchedHeader(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "plot04.csv", "Year,TIMESTAMP,Plot,T0\n2016,2016/06/13 16:00,4,10.5\n")
	p2 := writeFile(t, dir, "plot08.csv", "Year,TIMESTAMP,Plot,T0_typo\n2016,2016/06/13 16:00,8,12\n")

	var out strings.Builder
	rows, err := Merge(&out, []string{p1, p2}, 1)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if rows != 2 {
		t.Errorf("Merge wrote %d rows, want 2", rows)
	}
	if strings.Contains(out.String(), "T0_typo") {
		t.Error("the mismatched header must not be written to the output")
	}
}

func TestMergeNoInputs(t *testing.T) {
	var out strings.Builder
	if _, err := Merge(&out, nil, 1); err == nil {
		t.Error("Merge with no inputs should return an error")
	}
}

func TestMergeMissingLeadingHeader(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "plot04.csv", "2016,2016/06/13 16:00,4,10.5\n")

	var out strings.Builder
	if _, err := Merge(&out, []string{p}, 1); err == nil {
		t.Error("Merge should reject input that does not start with a header")
	}
}

func TestMergeDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_plot06.csv", "Year,TIMESTAMP,Plot,T0\n2016,2016/06/13 16:00,6,11\n")
	writeFile(t, dir, "a_plot04.csv", "Year,TIMESTAMP,Plot,T0\n2016,2016/06/13 16:00,4,10.5\n")
	writeFile(t, dir, "notes.txt", "not a data file\n")
	// A dataset merged by an earlier run must not be folded back in.
	merged := writeFile(t, dir, "all_data.csv", "Year,TIMESTAMP,Plot,T0\n2016,2016/06/13 16:00,4,10.5\n")

	var out strings.Builder
	rows, paths, err := MergeDir(&out, dir, 1, merged)
	if err != nil {
		t.Fatalf("MergeDir: %v", err)
	}
	if rows != 2 {
		t.Errorf("MergeDir wrote %d rows, want 2", rows)
	}

	wantPaths := []string{
		filepath.Join(dir, "a_plot04.csv"),
		filepath.Join(dir, "b_plot06.csv"),
	}
	if len(paths) != len(wantPaths) {
		t.Fatalf("MergeDir merged %v, want %v", paths, wantPaths)
	}
	for i := range paths {
		if paths[i] != wantPaths[i] {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], wantPaths[i])
		}
	}

	// Plot 4 sorts first, so its rows must precede plot 6's.
	if !strings.Contains(out.String(), "4,10.5\n2016,2016/06/13 16:00,6,11") {
		t.Errorf("unexpected merge order:\n%s", out.String())
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2016-06-13 16:00", "2016/06/13 16:00"},
		{"2016/06/13 16:00", "2016/06/13 16:00"},
		{"2016-06-13", "2016/06/13"},
		{"2016-06-13 16:00 -0500", "2016/06/13 16:00 -0500"},
		{"", ""},
	}

	for _, c := range cases {
		if got := normalizeTimestamp(c.in); got != c.want {
			t.Errorf("normalizeTimestamp(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
