// Program soiltemp works with soil temperature data from the SPRUCE WEW
// experiment: it fetches the published per-plot files, merges them into one
// dataset, and computes depth-interval temperature averages and summaries.
package main

import (
	"fmt"
	"os"
	"path"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

// dotDir is where downloaded data lives unless a flag says otherwise. It is
// joined with the user's home directory in dataDir.
const dotDir = ".soiltemp"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "soiltemp",
	Short: "SPRUCE WEW soil temperature processing",
	Long: `soiltemp processes soil temperature data from the SPRUCE WEW experiment.

It downloads the published per-plot CSV files from the SPRUCE FTP archive,
merges them into a single dataset, and computes interpolated depth-interval
temperature averages plus per-date summaries for the configured sampling
dates and plots.`,
}

func dataDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return path.Join(home, dotDir, "data"), nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"path to a config file (default soiltemp.yaml in the working directory or ~/.soiltemp)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
