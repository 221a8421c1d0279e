package app

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/flightlog-fusion/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	p, err := readProfile(ctx, store, config.SessionID, logger)
	if err != nil {
		return err
	}

	bounds := p.Bounds()
	if config.MinBitrate != nil {
		bounds.Min = *config.MinBitrate
	}
	if config.MaxBitrate != nil {
		bounds.Max = *config.MaxBitrate
	}

	renderer, err := NewProfileRenderer(RenderConfig{
		Width:         config.Width,
		Height:        config.Height,
		ColorTheme:    config.Theme,
		Bounds:        &bounds,
		NoAnnotations: config.NoAnnotations,
	})
	if err != nil {
		return fmt.Errorf("creating profile renderer: %w", err)
	}

	logger.Info("rendering profile",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", min(config.Width, p.Rows)),
			slog.Int("height", config.Height),
		))

	img, err := renderer.Render(p)
	if err != nil {
		return fmt.Errorf("rendering profile: %w", err)
	}

	return writeImage(config.OutputFile, config.Format, img)
}

func readProfile(ctx context.Context, store storage.Store, sessionID int64, logger *slog.Logger) (*ProfileData, error) {
	iter, err := store.ReadRecords(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("reading session %d: %w", sessionID, err)
	}
	defer iter.Close()

	sess := iter.Session()
	logger.Info("reading records",
		slog.Int64("session", sess.ID),
		slog.String("telemetry", sess.Telemetry.Path),
		slog.String("overlay", sess.Overlay.Path),
		slog.String("records", humanize.Comma(int64(sess.Records))))

	p := NewProfileData(sess.ID)
	for iter.Next(ctx) {
		p.Update(iter.Current())
	}
	if err = iter.Error(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	bounds := p.Bounds()
	logger.Debug("finished reading records",
		slog.Group("stats",
			slog.String("rows", humanize.Comma(int64(p.Rows))),
			slog.String("maxDistance", humanize.SIWithDigits(float64(p.MaxDistance), 1, "m")),
			slog.String("minBitrate", fmt.Sprintf("%0.2fMbps", bounds.Min)),
			slog.String("maxBitrate", fmt.Sprintf("%0.2fMbps", bounds.Max)),
		))

	return p, nil
}

func writeImage(path string, format ImageFormat, img image.Image) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	switch format {
	case ImagePNG:
		err = png.Encode(out, img)
	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	default:
		err = fmt.Errorf("unsupported image format '%s'", format)
	}
	return err
}
