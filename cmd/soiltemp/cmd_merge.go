package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mlfelice/spruce-tools/config"
	"github.com/mlfelice/spruce-tools/ingest"
)

var (
	mergeSrc string
	mergeOut string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge the per-plot data files into one dataset",
	Long: `Merge every downloaded per-plot CSV file into a single data file with one
header, dropping repeated header lines and normalizing timestamp separators
along the way.`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeSrc, "dir", "", "directory holding the per-plot files (default ~/.soiltemp/data)")
	mergeCmd.Flags().StringVar(&mergeOut, "out", "", "merged output file (default <dir>/<input.merged_file>)")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	src := mergeSrc
	if src == "" {
		if src, err = dataDir(); err != nil {
			return err
		}
	}
	out := mergeOut
	if out == "" {
		out = filepath.Join(src, cfg.Input.MergedFile)
	}

	// Write to a temp file first so a failed merge cannot leave a truncated
	// dataset behind.
	tmp, err := os.CreateTemp(filepath.Dir(out), "."+filepath.Base(out)+".tmp-*")
	if err != nil {
		return err
	}

	rows, paths, err := ingest.MergeDir(tmp, src, cfg.Input.TimestampCol, out)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	log.Printf("Merged %d rows from %d files into %s", rows, len(paths), out)
	return nil
}
