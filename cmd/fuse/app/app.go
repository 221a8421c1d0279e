package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/flightlog-fusion/internal/export"
	"github.com/roman-kulish/flightlog-fusion/internal/merge"
	"github.com/roman-kulish/flightlog-fusion/internal/overlay"
	"github.com/roman-kulish/flightlog-fusion/internal/storage"
	"github.com/roman-kulish/flightlog-fusion/internal/telemetry"
)

// Run fuses the configured telemetry and overlay logs and writes the export.
// It returns the path of the written file.
func Run(ctx context.Context, config *Config, logger *slog.Logger) (string, error) {
	samples, ovlSource, err := readOverlay(config.OverlayFile, logger)
	if err != nil {
		return "", fmt.Errorf("reading overlay log: %w", err)
	}

	table, teleSource, err := readTelemetry(ctx, config.TelemetryFile, logger)
	if err != nil {
		return "", fmt.Errorf("reading telemetry log: %w", err)
	}

	res := merge.Merge(table, samples,
		merge.WithSchema(config.Schema()),
		merge.WithColumns(config.Telemetry.Columns),
		merge.WithLogger(logger))

	logStats(&res.Stats, logger)

	if err = os.MkdirAll(config.Output.Directory, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := export.FileName(config.Output.Directory, config.Output.Format, time.Now())
	if err = export.Save(path, config.Output.Format, res); err != nil {
		return "", fmt.Errorf("saving export: %w", err)
	}

	logger.Info("export written",
		slog.String("destination", path),
		slog.String("format", string(config.Output.Format)),
		slog.String("rows", humanize.Comma(int64(len(res.Records)))))

	if config.Storage.DBPath != "" {
		if err = storeSession(ctx, config, teleSource, ovlSource, res, logger); err != nil {
			return path, fmt.Errorf("storing session: %w", err)
		}
	}

	return path, nil
}

func readOverlay(path string, logger *slog.Logger) (samples []overlay.Sample, src storage.Source, err error) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	r := storage.NewDigestReader(f)
	if samples, err = overlay.Read(r); err != nil {
		return
	}
	src = storage.Source{Path: path, Digest: r.Digest()}

	stats := overlay.Summarize(samples)
	logger.Info("overlay log parsed",
		slog.String("path", path),
		slog.String("cues", humanize.Comma(int64(stats.Cues))))

	if stats.MissingBitrate > 0 || stats.MissingDelay > 0 {
		logger.Warn("overlay cues without link readings, zero substituted",
			slog.Int("missingBitrate", stats.MissingBitrate),
			slog.Int("missingDelay", stats.MissingDelay))
	}
	return
}

func readTelemetry(ctx context.Context, path string, logger *slog.Logger) (table *telemetry.Table, src storage.Source, err error) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	r := storage.NewDigestReader(f)
	if table, err = telemetry.ReadAll(ctx, r); err != nil {
		return
	}
	src = storage.Source{Path: path, Digest: r.Digest()}

	logger.Info("telemetry log parsed",
		slog.String("path", path),
		slog.String("rows", humanize.Comma(int64(table.Len()))),
		slog.Int("columns", len(table.Header.Names())))
	return
}

func logStats(stats *merge.Stats, logger *slog.Logger) {
	logger.Info("logs merged",
		slog.Group("stats",
			slog.String("rows", humanize.Comma(int64(stats.Rows))),
			slog.String("overlaySamples", humanize.Comma(int64(stats.OverlaySamples))),
			slog.String("maxDistance", humanize.SIWithDigits(float64(stats.MaxDistance), 1, "m")),
		))

	if stats.MissingGPS > 0 || stats.MissingAltitude > 0 || stats.GeodesicFailures > 0 {
		logger.Warn("telemetry rows with missing or invalid readings, defaults substituted",
			slog.Int("missingGPS", stats.MissingGPS),
			slog.Int("missingAltitude", stats.MissingAltitude),
			slog.Int("distanceFallbacks", stats.GeodesicFailures))
	}
}

func storeSession(ctx context.Context, config *Config, tele, ovl storage.Source, res *merge.Result, logger *slog.Logger) (err error) {
	store := storage.NewSqliteStore(config.Storage.DBPath)
	defer func() {
		if cErr := store.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	id, err := store.CreateSession(ctx, tele, ovl, res.Schema, config)
	if err != nil {
		return err
	}
	if err = store.StoreRecords(ctx, id, res.Records); err != nil {
		return err
	}

	logger.Info("session stored",
		slog.String("db", config.Storage.DBPath),
		slog.Int64("session", id))
	return nil
}
