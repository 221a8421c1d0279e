package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi            = 120.0
	fontSize       = 8.0
	tickMarkHeight = 5
	pixelsPerLabel = 150.0
	pixelsPerTick  = 60.0

	defaultTopBorder    = 40
	defaultLeftBorder   = 90
	defaultBottomBorder = 40
	defaultRightBorder  = 40
)

var distanceColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// BorderConfig defines the sizes of white space around the plot
type BorderConfig struct {
	Top    int // Space for the row scale
	Left   int // Space for the distance scale
	Bottom int // Space for the information bar
	Right  int
}

// RenderConfig holds all configuration options for profile visualization
type RenderConfig struct {
	Width         int // Maximum plot width in pixels
	Height        int // Plot height in pixels
	FontSize      float64
	ColorTheme    ColorTheme
	ColorMapSize  int
	Bounds        *BitrateBounds // Fixed bitrate range; nil uses the percentile bounds
	NoAnnotations bool
	BorderConfig  BorderConfig
}

// ProfileRenderer draws a link profile: one column per group of records,
// filled with the bitrate color, with the distance from start drawn on top
type ProfileRenderer struct {
	colorMap *ColorMapper
	config   RenderConfig
}

func NewProfileRenderer(config RenderConfig) (*ProfileRenderer, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("invalid plot size %dx%d", config.Width, config.Height)
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.NoAnnotations {
		config.BorderConfig = BorderConfig{}
	} else {
		if config.BorderConfig.Top == 0 {
			config.BorderConfig.Top = defaultTopBorder
		}
		if config.BorderConfig.Left == 0 {
			config.BorderConfig.Left = defaultLeftBorder
		}
		if config.BorderConfig.Bottom == 0 {
			config.BorderConfig.Bottom = defaultBottomBorder
		}
		if config.BorderConfig.Right == 0 {
			config.BorderConfig.Right = defaultRightBorder
		}
	}

	return &ProfileRenderer{config: config}, nil
}

// Render creates an image of the profile with annotations.
func (r *ProfileRenderer) Render(p *ProfileData) (*image.RGBA, error) {
	columns := p.Columns(r.config.Width)
	if len(columns) == 0 {
		return nil, fmt.Errorf("session %d has no records", p.SessionID)
	}

	b := r.config.BorderConfig
	width := len(columns)
	fullWidth := width + b.Left + b.Right
	fullHeight := r.config.Height + b.Top + b.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(b.Left, b.Top, b.Left+width, b.Top+r.config.Height)

	bounds := p.Bounds()
	if r.config.Bounds != nil {
		bounds = *r.config.Bounds
	}
	if r.colorMap == nil {
		r.colorMap = NewColorMapperWithSize(r.config.ColorTheme, bounds, r.config.ColorMapSize)
	} else {
		r.colorMap.UpdateBounds(bounds)
	}

	r.renderBitrate(img, area, columns)
	r.renderDistance(img, area, columns, p.MaxDistance)

	if r.config.NoAnnotations {
		return img, nil
	}

	ann, err := newAnnotator(annotatorConfig{
		FontSize: r.config.FontSize,
		Borders:  b,
	})
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	if err = ann.annotate(img, area, p, columns, bounds); err != nil {
		return nil, fmt.Errorf("drawing annotations: %w", err)
	}

	return img, nil
}

func (r *ProfileRenderer) renderBitrate(img *image.RGBA, area image.Rectangle, columns []Column) {
	for x, col := range columns {
		c := r.colorMap.GetColor(col.Bitrate)
		draw.Draw(img, image.Rect(area.Min.X+x, area.Min.Y, area.Min.X+x+1, area.Max.Y),
			image.NewUniform(c), image.Point{}, draw.Src)
	}
}

func (r *ProfileRenderer) renderDistance(img *image.RGBA, area image.Rectangle, columns []Column, maxDistance int64) {
	if maxDistance <= 0 {
		return
	}

	y := func(d int64) int {
		ratio := float64(d) / float64(maxDistance)
		return area.Max.Y - 1 - int(ratio*float64(area.Dy()-1))
	}

	prevX, prevY := area.Min.X, y(columns[0].Distance)
	for x, col := range columns {
		curX, curY := area.Min.X+x, y(col.Distance)
		drawLine(img, prevX, prevY, curX, curY, distanceColor)
		prevX, prevY = curX, curY
	}
}

// drawLine draws a one pixel wide line using Bresenham's algorithm.
func drawLine(img draw.Image, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	e := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type annotatorConfig struct {
	FontSize float64
	Borders  BorderConfig
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, area image.Rectangle, p *ProfileData, columns []Column, bounds BitrateBounds) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawRowScale(img, area, p, columns); err != nil {
		return fmt.Errorf("drawing row scale: %w", err)
	}
	if err := a.drawDistanceScale(img, area, p.MaxDistance); err != nil {
		return fmt.Errorf("drawing distance scale: %w", err)
	}
	if err := a.drawInfoBar(img, p, bounds); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}
	return nil
}

func (a *annotator) drawRowScale(img *image.RGBA, area image.Rectangle, p *ProfileData, columns []Column) error {
	step := niceStep(float64(p.Rows), float64(area.Dx())/pixelsPerLabel)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := a.config.Borders.Top - fontHeight/2

	next := 0.0
	for x, col := range columns {
		if float64(col.FirstRow) < next {
			continue
		}
		next += step

		imgX := area.Min.X + x
		for y := area.Min.Y - tickMarkHeight; y < area.Min.Y; y++ {
			img.Set(imgX, y, color.Black)
		}

		label := humanize.Comma(int64(col.FirstRow))
		width := font.MeasureString(a.fontFace, label)
		if _, err := a.context.DrawString(label, freetype.Pt(imgX-width.Round()/2, textY)); err != nil {
			return fmt.Errorf("drawing row label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawDistanceScale(img *image.RGBA, area image.Rectangle, maxDistance int64) error {
	if maxDistance <= 0 {
		return nil
	}

	step := niceStep(float64(maxDistance), float64(area.Dy())/pixelsPerTick)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for d := 0.0; d <= float64(maxDistance); d += step {
		ratio := d / float64(maxDistance)
		imgY := area.Max.Y - 1 - int(ratio*float64(area.Dy()-1))

		for x := area.Min.X - tickMarkHeight; x < area.Min.X; x++ {
			img.Set(x, imgY, color.Black)
		}

		label := humanize.SIWithDigits(d, 1, "m")
		width := font.MeasureString(a.fontFace, label)
		textX := area.Min.X - tickMarkHeight - 4 - width.Round()
		textY := imgY + fontHeight/2 - metrics.Descent.Round()
		if _, err := a.context.DrawString(label, freetype.Pt(textX, textY)); err != nil {
			return fmt.Errorf("drawing distance label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, p *ProfileData, bounds BitrateBounds) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Session %d; %s rows", p.SessionID, humanize.Comma(int64(p.Rows)))
	if p.TimeStart != "" {
		fmt.Fprintf(&sb, " (%s - %s)", p.TimeStart, p.TimeEnd)
	}
	fmt.Fprintf(&sb, "; Max distance: %s", humanize.SIWithDigits(float64(p.MaxDistance), 2, "m"))
	fmt.Fprintf(&sb, "; Bitrate: %.1f - %.1f Mbps (scale %.1f - %.1f)",
		p.BitrateMin, p.BitrateMax, bounds.Min, bounds.Max)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - (a.config.Borders.Bottom-fontHeight)/2 - metrics.Descent.Round()

	if _, err := a.context.DrawString(sb.String(), freetype.Pt(a.config.Borders.Left, textY)); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}

// niceStep returns a 1, 2 or 5 times power of ten step that splits span into
// at most about ticks parts.
func niceStep(span, ticks float64) float64 {
	if span <= 0 || ticks < 1 {
		return math.Max(span, 1)
	}

	rough := span / ticks
	magnitude := math.Pow(10, math.Floor(math.Log10(rough)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * magnitude; step >= rough {
			return math.Max(step, 1)
		}
	}
	return math.Max(10*magnitude, 1)
}
