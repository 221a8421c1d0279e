package app

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme represents a predefined color scheme for bitrate visualization.
type ColorTheme string

const (
	LinkTheme      ColorTheme = "link"      // Red to green, low bitrate is red
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	JungleTheme    ColorTheme = "jungle"    // Dark green to yellow transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white

	DefaultColorMapSize = 256
)

var validThemes = map[ColorTheme]struct{}{
	LinkTheme:      {},
	ClassicTheme:   {},
	GrayscaleTheme: {},
	JungleTheme:    {},
	ThermalTheme:   {},
	MarineTheme:    {},
}

var thermalStops = []colorful.Color{
	{R: 0, G: 0, B: 0},
	{R: 1, G: 0, B: 0},
	{R: 1, G: 1, B: 0},
	{R: 1, G: 1, B: 1},
}

// ColorMapper maps bitrate values onto a pre-computed theme gradient
type ColorMapper struct {
	colorMap        []color.Color
	theme           func(float64) colorful.Color
	themeName       ColorTheme
	size            int
	bitratePerIndex float64
	boundsMin       float64
}

// NewColorMapper creates a color mapper with the default size.
func NewColorMapper(theme ColorTheme, bounds BitrateBounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

// NewColorMapperWithSize creates a color mapper with size pre-computed colors.
func NewColorMapperWithSize(theme ColorTheme, bounds BitrateBounds, size int) *ColorMapper {
	if size <= 1 {
		size = DefaultColorMapSize
	}

	cm := &ColorMapper{
		colorMap:  make([]color.Color, size),
		theme:     getColorTheme(theme),
		themeName: theme,
		size:      size,
	}
	for i := 0; i < size; i++ {
		normalized := float64(i) / float64(size-1)
		cm.colorMap[i] = cm.theme(normalized).Clamped()
	}
	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds changes the bitrate range covered by the gradient
func (cm *ColorMapper) UpdateBounds(bounds BitrateBounds) {
	cm.boundsMin = bounds.Min
	cm.bitratePerIndex = (bounds.Max - bounds.Min) / float64(cm.size-1)
}

// GetColor returns the color for the given bitrate.
func (cm *ColorMapper) GetColor(bitrate float64) color.Color {
	if cm.bitratePerIndex <= 0 || math.IsNaN(bitrate) {
		return cm.colorMap[0]
	}

	index := int((bitrate - cm.boundsMin) / cm.bitratePerIndex)
	switch {
	case index < 0:
		return cm.colorMap[0]
	case index >= cm.size:
		return cm.colorMap[cm.size-1]
	}
	return cm.colorMap[index]
}

func (cm *ColorMapper) ThemeName() ColorTheme {
	return cm.themeName
}

func getColorTheme(theme ColorTheme) func(float64) colorful.Color {
	switch theme {
	case ClassicTheme:
		return func(v float64) colorful.Color {
			return colorful.Hsv(240-(v*240), 0.9+(v*0.1), math.Pow(v, 0.7))
		}

	case GrayscaleTheme:
		return func(v float64) colorful.Color {
			g := math.Pow(v, 0.7)
			return colorful.Color{R: g, G: g, B: g}
		}

	case JungleTheme:
		return func(v float64) colorful.Color {
			return colorful.Hsv(120-(v*60), 1.0, 0.3+(math.Pow(v, 0.6)*0.7))
		}

	case ThermalTheme:
		return func(v float64) colorful.Color {
			pos := v * float64(len(thermalStops)-1)
			i := min(int(pos), len(thermalStops)-2)
			return thermalStops[i].BlendLab(thermalStops[i+1], pos-float64(i))
		}

	case MarineTheme:
		return func(v float64) colorful.Color {
			return colorful.Hsv(240-(v*60), 1.0-(v*0.8), 0.3+(math.Pow(v, 0.6)*0.7))
		}

	default:
		return func(v float64) colorful.Color {
			return colorful.Hsv(v*120, 0.85, 0.9)
		}
	}
}
