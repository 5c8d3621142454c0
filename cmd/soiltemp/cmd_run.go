package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mlfelice/spruce-tools/config"
	"github.com/mlfelice/spruce-tools/pipeline"
	"github.com/mlfelice/spruce-tools/store"
)

var (
	runInput  string
	runOutDir string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Filter, interpolate, and summarize soil temperatures",
	Long: `Run the analysis over the merged dataset: keep the readings matching the
configured sampling dates and plots, average the temperature over each depth
interval by interpolating between the sensors, and summarize the averages
per sampling date, plot, and interval.

Three tables are written: the retained records, the per-reading interval
averages, and the per-date summaries. Each is written to a temp file and
renamed into place, so a failed run leaves no partial tables. Configured
database sinks receive the same rows and summaries.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "merged data file (default <data dir>/<input.merged_file>)")
	runCmd.Flags().StringVar(&runOutDir, "outdir", "", "directory for the output tables (default from config)")
	rootCmd.AddCommand(runCmd)
}

// tableWriter accumulates one output table in a temp file and renames it
// into place only on success.
type tableWriter struct {
	tmp   *os.File
	final string
}

func newTableWriter(dir, name string) (*tableWriter, error) {
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return nil, err
	}
	return &tableWriter{tmp: tmp, final: filepath.Join(dir, name)}, nil
}

func (t *tableWriter) commit() error {
	if err := t.tmp.Close(); err != nil {
		os.Remove(t.tmp.Name())
		return err
	}
	return os.Rename(t.tmp.Name(), t.final)
}

func (t *tableWriter) discard() {
	t.tmp.Close()
	os.Remove(t.tmp.Name())
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	input := runInput
	if input == "" {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		input = filepath.Join(dir, cfg.Input.MergedFile)
	}
	outDir := runOutDir
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	var stores []store.Store
	if cfg.Timescale.Enabled {
		log.Printf("Connecting to TimescaleDB at %s:%d", cfg.Timescale.Host, cfg.Timescale.Port)
		ts, err := store.NewTimescale(ctx, cfg.Timescale.ConnString(), cfg.Timescale.TablePrefix)
		if err != nil {
			return err
		}
		defer ts.Close(ctx)
		stores = append(stores, ts)
	}
	if cfg.Influx.Enabled {
		stores = append(stores, store.NewInflux(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket))
	}

	var writers []*tableWriter
	discardAll := func() {
		for _, w := range writers {
			w.discard()
		}
	}
	for _, name := range []string{cfg.Output.FilteredFile, cfg.Output.AveragesFile, cfg.Output.SummaryFile} {
		w, err := newTableWriter(outDir, name)
		if err != nil {
			discardAll()
			return err
		}
		writers = append(writers, w)
	}

	outs := pipeline.Outputs{
		Filtered:  writers[0].tmp,
		Rows:      writers[1].tmp,
		Summaries: writers[2].tmp,
	}
	res, err := pipeline.Run(ctx, cfg, in, outs, stores...)
	if err != nil {
		discardAll()
		return err
	}
	for _, w := range writers {
		if err := w.commit(); err != nil {
			return err
		}
	}

	log.Printf("Run %s: kept %d of %d readings, wrote %d interval rows and %d summary groups (%d with no data)",
		res.RunID, res.ReadingsKept, res.ReadingsRead, res.Rows, res.Summaries, res.NoData)
	return nil
}
