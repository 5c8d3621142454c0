// Package config holds the run configuration: the deployment's sensor
// depths and reporting intervals, the record filter, file locations, and
// the optional database sinks. Values come from defaults, an optional YAML
// file, and SOILTEMP_-prefixed environment variables, in rising precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mlfelice/spruce-tools/filter"
	"github.com/mlfelice/spruce-tools/ingest"
	"github.com/mlfelice/spruce-tools/profile"
	"github.com/mlfelice/spruce-tools/reading"
)

// Config holds all configuration for a run.
type Config struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Filter     FilterConfig     `mapstructure:"filter"`
	Input      InputConfig      `mapstructure:"input"`
	Output     OutputConfig     `mapstructure:"output"`
	FTP        FTPConfig        `mapstructure:"ftp"`
	Timescale  TimescaleConfig  `mapstructure:"timescale"`
	Influx     InfluxConfig     `mapstructure:"influx"`
}

// DeploymentConfig describes the sensor installation and the depth
// intervals to report on.
type DeploymentConfig struct {
	Depths    []int   `mapstructure:"depths"`
	Intervals [][]int `mapstructure:"intervals"`
}

// FilterConfig describes which readings enter the analysis.
type FilterConfig struct {
	Mode     string        `mapstructure:"mode"`
	Targets  []string      `mapstructure:"targets"`
	Lookback time.Duration `mapstructure:"lookback"`
	Plots    []int         `mapstructure:"plots"`
}

// InputConfig locates the reading fields in the merged data file.
type InputConfig struct {
	TimestampCol int    `mapstructure:"timestamp_col"`
	PlotCol      int    `mapstructure:"plot_col"`
	TempCols     []int  `mapstructure:"temp_cols"`
	MergedFile   string `mapstructure:"merged_file"`
}

// OutputConfig names the generated tables.
type OutputConfig struct {
	Dir          string `mapstructure:"dir"`
	FilteredFile string `mapstructure:"filtered_file"`
	AveragesFile string `mapstructure:"averages_file"`
	SummaryFile  string `mapstructure:"summary_file"`
}

// FTPConfig locates the published data files on the SPRUCE archive.
type FTPConfig struct {
	Addr    string        `mapstructure:"addr"`
	Dir     string        `mapstructure:"dir"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TimescaleConfig holds the TimescaleDB sink configuration.
type TimescaleConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	TablePrefix string `mapstructure:"table_prefix"`
}

// InfluxConfig holds the InfluxDB sink configuration.
type InfluxConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
}

// Default returns the configuration of the 2019-04-02 WEW deployment, the
// dataset this tool was written for.
func Default() *Config {
	return &Config{
		Deployment: DeploymentConfig{
			Depths: []int{0, 5, 10, 20, 30, 40, 50, 100, 200},
			Intervals: [][]int{
				{1, 10}, {10, 20}, {20, 30}, {30, 40}, {40, 50},
				{50, 75}, {75, 100}, {100, 125}, {125, 150}, {150, 175}, {175, 200},
			},
		},
		Filter: FilterConfig{
			Mode:     string(filter.ModeWindow),
			Targets:  []string{"2016/10/15 16:00"},
			Lookback: 48 * time.Hour,
			Plots:    []int{4, 6, 7, 8, 10, 11, 13, 16, 17, 19, 20},
		},
		Input: InputConfig{
			TimestampCol: 3,
			PlotCol:      7,
			TempCols:     []int{37, 38, 39, 40, 41, 42, 43, 44, 45},
			MergedFile:   "DPH_all_data.csv",
		},
		Output: OutputConfig{
			Dir:          ".",
			FilteredFile: "DPH_Btemps.csv",
			AveragesFile: "DPH_Averages.txt",
			SummaryFile:  "DPH_plot_depth_date.txt",
		},
		FTP: FTPConfig{
			Addr:    "mnspruce.ornl.gov:21",
			Dir:     "/WEW_Environmental_Data/WEW_Complete_Environ_20190402/",
			Timeout: 30 * time.Second,
		},
		Timescale: TimescaleConfig{
			Enabled:  false,
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			DBName:   "spruce",
			SSLMode:  "disable",
		},
		Influx: InfluxConfig{
			Enabled: false,
			URL:     "http://localhost:8086",
			Org:     "spruce",
			Bucket:  "soiltemp",
		},
	}
}

// Load reads configuration from the given file, or, when path is empty,
// from an optional soiltemp.yaml in the working directory or ~/.soiltemp.
// Environment variables override the file: filter.lookback becomes
// SOILTEMP_FILTER_LOOKBACK, and so on.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("soiltemp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.soiltemp")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: %w", err)
			}
			// No config file; defaults and the environment cover everything.
		}
	}

	v.SetEnvPrefix("soiltemp")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets usually arrive through the environment; bind them explicitly.
	v.BindEnv("timescale.password", "SOILTEMP_TIMESCALE_PASSWORD")
	v.BindEnv("influx.token", "SOILTEMP_INFLUX_TOKEN")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("deployment.depths", d.Deployment.Depths)
	v.SetDefault("deployment.intervals", d.Deployment.Intervals)

	v.SetDefault("filter.mode", d.Filter.Mode)
	v.SetDefault("filter.targets", d.Filter.Targets)
	v.SetDefault("filter.lookback", d.Filter.Lookback)
	v.SetDefault("filter.plots", d.Filter.Plots)

	v.SetDefault("input.timestamp_col", d.Input.TimestampCol)
	v.SetDefault("input.plot_col", d.Input.PlotCol)
	v.SetDefault("input.temp_cols", d.Input.TempCols)
	v.SetDefault("input.merged_file", d.Input.MergedFile)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.filtered_file", d.Output.FilteredFile)
	v.SetDefault("output.averages_file", d.Output.AveragesFile)
	v.SetDefault("output.summary_file", d.Output.SummaryFile)

	v.SetDefault("ftp.addr", d.FTP.Addr)
	v.SetDefault("ftp.dir", d.FTP.Dir)
	v.SetDefault("ftp.timeout", d.FTP.Timeout)

	v.SetDefault("timescale.enabled", d.Timescale.Enabled)
	v.SetDefault("timescale.host", d.Timescale.Host)
	v.SetDefault("timescale.port", d.Timescale.Port)
	v.SetDefault("timescale.user", d.Timescale.User)
	v.SetDefault("timescale.password", d.Timescale.Password)
	v.SetDefault("timescale.dbname", d.Timescale.DBName)
	v.SetDefault("timescale.sslmode", d.Timescale.SSLMode)
	v.SetDefault("timescale.table_prefix", d.Timescale.TablePrefix)

	v.SetDefault("influx.enabled", d.Influx.Enabled)
	v.SetDefault("influx.url", d.Influx.URL)
	v.SetDefault("influx.token", d.Influx.Token)
	v.SetDefault("influx.org", d.Influx.Org)
	v.SetDefault("influx.bucket", d.Influx.Bucket)
}

// targetLayouts are the accepted forms for filter target instants.
var targetLayouts = []string{reading.TimeLayout, "2006-01-02 15:04"}

// Validate checks the configuration for problems no run could recover
// from. Intervals reaching outside the sensor range are allowed; they
// produce absent averages rather than errors.
func (c *Config) Validate() error {
	d := c.Deployment
	if len(d.Depths) == 0 {
		return fmt.Errorf("config: no sensor depths")
	}
	for i, depth := range d.Depths {
		if depth < 0 {
			return fmt.Errorf("config: negative sensor depth %d", depth)
		}
		if i > 0 && d.Depths[i-1] >= depth {
			return fmt.Errorf("config: sensor depths not ascending at %d", depth)
		}
	}

	if len(d.Intervals) == 0 {
		return fmt.Errorf("config: no depth intervals")
	}
	for _, iv := range d.Intervals {
		if len(iv) != 2 {
			return fmt.Errorf("config: interval %v is not an upper, lower pair", iv)
		}
		if iv[0] < 0 || iv[0] > iv[1] {
			return fmt.Errorf("config: bad interval %d-%d", iv[0], iv[1])
		}
	}

	mode := filter.Mode(c.Filter.Mode)
	if !mode.Valid() {
		return fmt.Errorf("config: unknown filter mode %q", c.Filter.Mode)
	}
	if mode == filter.ModeWindow && c.Filter.Lookback <= 0 {
		return fmt.Errorf("config: filter mode %q needs a positive lookback", c.Filter.Mode)
	}
	if len(c.Filter.Targets) == 0 {
		return fmt.Errorf("config: no filter targets")
	}
	if _, err := c.Targets(); err != nil {
		return err
	}
	if len(c.Filter.Plots) == 0 {
		return fmt.Errorf("config: no plots")
	}

	if c.Input.TimestampCol < 0 || c.Input.PlotCol < 0 {
		return fmt.Errorf("config: negative input column")
	}
	if len(c.Input.TempCols) != len(d.Depths) {
		return fmt.Errorf("config: %d temperature columns for %d sensor depths",
			len(c.Input.TempCols), len(d.Depths))
	}
	for _, col := range c.Input.TempCols {
		if col < 0 {
			return fmt.Errorf("config: negative input column")
		}
	}
	if c.Input.MergedFile == "" {
		return fmt.Errorf("config: no merged file name")
	}

	for _, name := range []string{c.Output.FilteredFile, c.Output.AveragesFile, c.Output.SummaryFile} {
		if name == "" {
			return fmt.Errorf("config: missing output file name")
		}
	}

	return nil
}

// Layout returns the input column layout.
func (c *Config) Layout() ingest.Layout {
	return ingest.Layout{
		TimestampCol: c.Input.TimestampCol,
		PlotCol:      c.Input.PlotCol,
		TempCols:     c.Input.TempCols,
	}
}

// Intervals returns the reporting intervals as typed pairs.
func (c *Config) Intervals() ([]profile.Interval, error) {
	ivs := make([]profile.Interval, len(c.Deployment.Intervals))
	for i, iv := range c.Deployment.Intervals {
		if len(iv) != 2 {
			return nil, fmt.Errorf("config: interval %v is not an upper, lower pair", iv)
		}
		ivs[i] = profile.Interval{Top: iv[0], Bottom: iv[1]}
	}
	return ivs, nil
}

// Targets returns the parsed target sampling instants.
func (c *Config) Targets() ([]time.Time, error) {
	targets := make([]time.Time, len(c.Filter.Targets))
	for i, s := range c.Filter.Targets {
		t, err := parseTarget(s)
		if err != nil {
			return nil, fmt.Errorf("config: target %q: %w", s, err)
		}
		targets[i] = t
	}
	return targets, nil
}

func parseTarget(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range targetLayouts {
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

// Temporal returns the configured temporal predicate.
func (c *Config) Temporal() (filter.Temporal, error) {
	targets, err := c.Targets()
	if err != nil {
		return filter.Temporal{}, err
	}
	return filter.Temporal{
		Mode:     filter.Mode(c.Filter.Mode),
		Targets:  targets,
		Lookback: c.Filter.Lookback,
	}, nil
}

// ConnString returns the TimescaleDB connection string.
func (t TimescaleConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		t.Host, t.Port, t.User, t.Password, t.DBName, t.SSLMode)
}
