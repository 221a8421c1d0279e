package app

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/flightlog-fusion/internal/export"
	"github.com/roman-kulish/flightlog-fusion/internal/merge"
	"github.com/roman-kulish/flightlog-fusion/internal/telemetry"
)

const defaultOutputDir = "logs"

// Config represents the fuse command configuration
type Config struct {
	Settings  Settings        `yaml:"settings"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Output    OutputConfig    `yaml:"output"`
	Storage   StorageConfig   `yaml:"storage"`

	TelemetryFile string `yaml:"-"`
	OverlayFile   string `yaml:"-"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel slog.Level `yaml:"logLevel"`
}

// TelemetryConfig maps the radio log columns onto the output layout
type TelemetryConfig struct {
	Columns     telemetry.Columns   `yaml:"columns"`
	Passthrough []merge.Passthrough `yaml:"passthrough"`
}

// OutputConfig represents export settings
type OutputConfig struct {
	Directory string        `yaml:"directory"`
	Format    export.Format `yaml:"format"`
}

// StorageConfig represents session store settings. An empty DBPath disables
// storing.
type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

func NewConfig() *Config {
	return &Config{
		Settings: Settings{LogLevel: slog.LevelInfo},
		Telemetry: TelemetryConfig{
			Columns:     telemetry.DefaultColumns,
			Passthrough: merge.DefaultSchema().Passthrough,
		},
		Output: OutputConfig{
			Directory: defaultOutputDir,
			Format:    export.FormatCSV,
		},
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
// Sections absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	c := NewConfig()
	if err := c.load(path); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) load(path string) error {
	p, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err = yaml.Unmarshal(p, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// Schema returns the output layout described by the configuration.
func (c *Config) Schema() merge.Schema {
	return merge.Schema{Passthrough: c.Telemetry.Passthrough}
}

// NewConfigFromCLI parses command line arguments (without the program name).
// A YAML file given with -c is loaded first; explicit flags override it.
func NewConfigFromCLI(args []string) (*Config, error) {
	fs := flag.NewFlagSet("fuse", flag.ContinueOnError)

	var configPath, outputDir, format, dbPath string
	var verbose bool
	var tele, ovl string
	fs.StringVar(&configPath, "c", "", "Path to an optional YAML configuration file")
	fs.StringVar(&tele, "csv", "", "Path to the EdgeTX/OpenTX telemetry log (CSV)")
	fs.StringVar(&ovl, "srt", "", "Path to the goggles overlay log (SRT)")
	fs.StringVar(&outputDir, "o", defaultOutputDir, "Output directory")
	fs.StringVar(&format, "f", string(export.FormatCSV), "Output format. [csv, xlsx]")
	fs.StringVar(&dbPath, "db", "", "Store the fused session into this Sqlite database")
	fs.BoolVar(&verbose, "verbose", false, "Enable more verbose output")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	c := NewConfig()
	if configPath != "" {
		if err := c.load(configPath); err != nil {
			return nil, err
		}
	}

	c.TelemetryFile = tele
	c.OverlayFile = ovl

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			c.Output.Directory = outputDir
		case "f":
			c.Output.Format = export.Format(format)
		case "db":
			c.Storage.DBPath = dbPath
		case "verbose":
			if verbose {
				c.Settings.LogLevel = slog.LevelDebug
			}
		}
	})

	if err := c.Validate(); err != nil {
		fs.Usage()
		return nil, err
	}
	return c, nil
}

// Validate checks that the configuration can be run.
func (c *Config) Validate() error {
	switch {
	case c.TelemetryFile == "":
		return errors.New("telemetry log path is required")
	case c.OverlayFile == "":
		return errors.New("overlay log path is required")
	case c.Telemetry.Columns.Time == "" || c.Telemetry.Columns.GPS == "" || c.Telemetry.Columns.Altitude == "":
		return errors.New("time, gps and altitude column names are required")
	case c.Output.Directory == "":
		return errors.New("output directory is required")
	}

	for i, p := range c.Telemetry.Passthrough {
		if p.Name == "" || p.Source == "" {
			return fmt.Errorf("passthrough column %d: name and source are required", i)
		}
	}

	format, err := export.ParseFormat(string(c.Output.Format))
	if err != nil {
		return err
	}
	c.Output.Format = format
	return nil
}
