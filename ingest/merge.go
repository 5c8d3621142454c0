package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Merge joins per-plot WEW data files into one stream with a single header.
// The first file's header becomes the reference header; later files whose
// header differs are merged anyway but logged, since a couple of the
// published plot files carry benign header typos. Repeated header lines are
// dropped, and the timestamp column's date separators are normalized to
// slashes. Merge returns the number of data rows written.
func Merge(w io.Writer, paths []string, tsCol int) (int, error) {
	if len(paths) == 0 {
		return 0, fmt.Errorf("merge: no input files")
	}

	cw := csv.NewWriter(w)
	var refHeader []string
	rows := 0
	for _, path := range paths {
		n, err := mergeFile(cw, path, tsCol, &refHeader)
		rows += n
		if err != nil {
			return rows, err
		}
	}

	cw.Flush()
	return rows, cw.Error()
}

// MergeDir merges every .csv file directly inside dir, in name order, and
// returns the row count along with the merged paths. Files named in skip
// are left out, so a previously merged dataset sitting in the same
// directory is not folded back in.
func MergeDir(w io.Writer, dir string, tsCol int, skip ...string) (int, []string, error) {
	all, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return 0, nil, err
	}
	sort.Strings(all)

	paths := all[:0]
	for _, p := range all {
		if !skipPath(p, skip) {
			paths = append(paths, p)
		}
	}

	n, err := Merge(w, paths, tsCol)
	return n, paths, err
}

func skipPath(p string, skip []string) bool {
	for _, s := range skip {
		if filepath.Base(p) == filepath.Base(s) {
			return true
		}
	}
	return false
}

func mergeFile(cw *csv.Writer, path string, tsCol int, refHeader *[]string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	rows := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, fmt.Errorf("merge: %s: %w", path, err)
		}

		if isHeader(rec) {
			if *refHeader == nil {
				*refHeader = append([]string(nil), rec...)
				if err := cw.Write(rec); err != nil {
					return rows, err
				}
			} else if !equalFields(rec, *refHeader) {
				log.Printf("Header of %s does not match the reference header, merging anyway", filepath.Base(path))
			}
			continue
		}
		if *refHeader == nil {
			return rows, fmt.Errorf("merge: %s does not start with a header line", path)
		}

		if tsCol >= 0 && tsCol < len(rec) {
			rec[tsCol] = normalizeTimestamp(rec[tsCol])
		}
		if err := cw.Write(rec); err != nil {
			return rows, err
		}
		rows++
	}
}

// isHeader reports whether a record is a WEW header line. They all start
// with the "Year" column.
func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.TrimSpace(rec[0]) == "Year"
}

func equalFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// normalizeTimestamp rewrites the date part of a timestamp to slash
// separators, "2016-06-13 16:00" to "2016/06/13 16:00". Some published
// files mix the two forms. Only the part before the first space is touched,
// so a dash elsewhere in the field survives.
func normalizeTimestamp(s string) string {
	date, rest, found := strings.Cut(s, " ")
	date = strings.ReplaceAll(date, "-", "/")
	if !found {
		return date
	}
	return date + " " + rest
}
