package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/roman-kulish/flightlog-fusion/internal/export"
	"github.com/roman-kulish/flightlog-fusion/internal/merge"
	"github.com/roman-kulish/flightlog-fusion/internal/telemetry"
)

const testConfigYAML = `
settings:
  logLevel: debug
telemetry:
  columns:
    altitude: "Alt(ft)"
  passthrough:
    - name: Sats
      source: Sats
output:
  directory: out
  format: xlsx
storage:
  dbPath: flights.db
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fuse.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestNewConfigFromCLI_Defaults(t *testing.T) {
	c, err := NewConfigFromCLI([]string{"-csv", "flight.csv", "-srt", "flight.srt"})
	if err != nil {
		t.Fatalf("NewConfigFromCLI() error: %v", err)
	}

	if c.TelemetryFile != "flight.csv" || c.OverlayFile != "flight.srt" {
		t.Errorf("unexpected inputs %q %q", c.TelemetryFile, c.OverlayFile)
	}
	if c.Output.Directory != defaultOutputDir || c.Output.Format != export.FormatCSV {
		t.Errorf("unexpected output %+v", c.Output)
	}
	if c.Telemetry.Columns != telemetry.DefaultColumns {
		t.Errorf("unexpected columns %+v", c.Telemetry.Columns)
	}
	if len(c.Telemetry.Passthrough) != len(merge.DefaultPassthrough) {
		t.Errorf("unexpected passthrough %v", c.Telemetry.Passthrough)
	}
	if c.Storage.DBPath != "" || c.Settings.LogLevel != slog.LevelInfo {
		t.Errorf("unexpected config %+v", c)
	}
}

func TestNewConfigFromCLI_YAML(t *testing.T) {
	path := writeConfig(t, testConfigYAML)

	c, err := NewConfigFromCLI([]string{"-c", path, "-csv", "a.csv", "-srt", "a.srt", "-f", "CSV"})
	if err != nil {
		t.Fatalf("NewConfigFromCLI() error: %v", err)
	}

	expected := telemetry.Columns{Time: "Time", GPS: "GPS", Altitude: "Alt(ft)"}
	if c.Telemetry.Columns != expected {
		t.Errorf("columns = %+v, want %+v", c.Telemetry.Columns, expected)
	}
	if len(c.Telemetry.Passthrough) != 1 || c.Telemetry.Passthrough[0].Name != "Sats" {
		t.Errorf("unexpected passthrough %v", c.Telemetry.Passthrough)
	}
	if c.Settings.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", c.Settings.LogLevel)
	}
	if c.Output.Directory != "out" || c.Storage.DBPath != "flights.db" {
		t.Errorf("unexpected config %+v", c)
	}

	// flag wins over the file
	if c.Output.Format != export.FormatCSV {
		t.Errorf("format = %q, want csv", c.Output.Format)
	}
}

func TestNewConfigFromCLI_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no telemetry", args: []string{"-srt", "a.srt"}},
		{name: "no overlay", args: []string{"-csv", "a.csv"}},
		{name: "bad format", args: []string{"-csv", "a.csv", "-srt", "a.srt", "-f", "json"}},
		{name: "empty output dir", args: []string{"-csv", "a.csv", "-srt", "a.srt", "-o", ""}},
		{name: "missing config file", args: []string{"-c", "/nonexistent/fuse.yaml", "-csv", "a.csv", "-srt", "a.srt"}},
		{name: "unknown flag", args: []string{"-x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewConfigFromCLI(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewConfigFromCLI_UppercaseFormatInFile(t *testing.T) {
	path := writeConfig(t, "output:\n  format: XLSX\n")

	c, err := NewConfigFromCLI([]string{"-c", path, "-csv", "a.csv", "-srt", "a.srt"})
	if err != nil {
		t.Fatalf("NewConfigFromCLI() error: %v", err)
	}
	if c.Output.Format != export.FormatXLSX {
		t.Errorf("format = %q, want xlsx", c.Output.Format)
	}
}

func TestLoadConfig_BadPassthrough(t *testing.T) {
	path := writeConfig(t, "telemetry:\n  passthrough:\n    - name: Sats\n")

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	c.TelemetryFile, c.OverlayFile = "a.csv", "a.srt"
	if err = c.Validate(); err == nil {
		t.Error("expected error for passthrough without source")
	}
}
