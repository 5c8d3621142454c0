package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	cron "github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/mlfelice/spruce-tools/config"
	"github.com/mlfelice/spruce-tools/fetch"
)

var (
	fetchDest     string
	fetchCronSpec string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download WEW data files from the SPRUCE FTP archive",
	Long: `Download every per-plot CSV file in the configured deployment directory.

With --cronspec the download repeats on the given schedule until the program
is interrupted, so a long-lived fetcher can keep a local mirror current.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDest, "dest", "", "directory for downloaded files (default ~/.soiltemp/data)")
	fetchCmd.Flags().StringVar(&fetchCronSpec, "cronspec", "", "cron spec for recurring fetches")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	dest := fetchDest
	if dest == "" {
		if dest, err = dataDir(); err != nil {
			return err
		}
	}

	client := fetch.Client{
		Addr:    cfg.FTP.Addr,
		Dir:     cfg.FTP.Dir,
		Timeout: cfg.FTP.Timeout,
	}

	if fetchCronSpec == "" {
		paths, err := client.Pull(cmd.Context(), dest)
		if err != nil {
			return err
		}
		log.Printf("Fetched %d files into %s", len(paths), dest)
		return nil
	}

	cr := cron.New()
	log.Printf("Starting cron scheduler with spec %q", fetchCronSpec)
	if _, err := cr.AddFunc(fetchCronSpec, func() {
		paths, err := client.Pull(cmd.Context(), dest)
		if err != nil {
			log.Printf("Fetch failed: %v", err)
			return
		}
		log.Printf("Fetched %d files into %s", len(paths), dest)
	}); err != nil {
		return fmt.Errorf("bad cronspec %q: %w", fetchCronSpec, err)
	}
	cr.Start()

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Println("Stopping scheduler")
	cr.Stop()
	return nil
}
