package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"

	defaultWidth  = 1200
	defaultHeight = 400
)

type ImageFormat string

type Config struct {
	DBPath        string
	SessionID     int64
	OutputFile    string
	Format        ImageFormat
	Theme         ColorTheme
	Width         int // Maximum plot width; records are downsampled to fit
	Height        int
	MinBitrate    *float64
	MaxBitrate    *float64
	Verbose       bool
	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format: ImagePNG,
		Theme:  LinkTheme,
		Width:  defaultWidth,
		Height: defaultHeight,
	}
}

// NewConfigFromCLI parses command line arguments (without the program name).
func NewConfigFromCLI(args []string) (*Config, error) {
	c := NewConfig()
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)

	var imageFormat, theme string
	var minBitrate, maxBitrate float64
	fs.StringVar(&c.DBPath, "db", "", "Path to the database file")
	fs.Int64Var(&c.SessionID, "s", 1, "Session ID")
	fs.StringVar(&c.OutputFile, "o", "", "Path to the output file, without extension")
	fs.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	fs.StringVar(&theme, "theme", string(LinkTheme), "Color theme. [link, classic, grayscale, jungle, thermal, marine]")
	fs.IntVar(&c.Width, "width", defaultWidth, "Maximum plot width in pixels")
	fs.IntVar(&c.Height, "height", defaultHeight, "Plot height in pixels")
	fs.Float64Var(&minBitrate, "min-bitrate", 0, "Define a manual minimum bitrate (Mbps)")
	fs.Float64Var(&maxBitrate, "max-bitrate", 0, "Define a manual maximum bitrate (Mbps)")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	fs.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as distance and row scales")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	imageFormat = strings.ToLower(imageFormat)

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "min-bitrate" {
			c.MinBitrate = &minBitrate
		}
		if f.Name == "max-bitrate" {
			c.MaxBitrate = &maxBitrate
		}
	})

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.SessionID <= 0 {
		err = errors.New("session id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if _, ok := validThemes[ColorTheme(theme)]; !ok {
		err = fmt.Errorf("invalid color theme: %s", theme)
	} else if c.Width <= 0 || c.Height <= 0 {
		err = fmt.Errorf("invalid plot size %dx%d", c.Width, c.Height)
	} else if c.MinBitrate != nil && c.MaxBitrate != nil && *c.MinBitrate >= *c.MaxBitrate {
		err = fmt.Errorf("min bitrate %.2f must be below max bitrate %.2f", *c.MinBitrate, *c.MaxBitrate)
	}

	if err != nil {
		fs.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.Theme = ColorTheme(theme)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
