package telemetry

import (
	"math"
	"strconv"
	"strings"

	"github.com/roman-kulish/flightlog-fusion/internal/geodesic"
)

// Columns names the source columns read by the fusion, as written by the
// radio's SD card logger
type Columns struct {
	Time     string `yaml:"time"`     // Log timestamp
	GPS      string `yaml:"gps"`      // "lat lon" pair, space separated
	Altitude string `yaml:"altitude"` // GPS altitude in meters
}

// DefaultColumns are the EdgeTX/OpenTX log column names
var DefaultColumns = Columns{
	Time:     "Time",
	GPS:      "GPS",
	Altitude: "Alt(m)",
}

// Header is the ordered list of column names shared by all samples of a table
type Header struct {
	names []string
	index map[string]int
}

// NewHeader builds a header from column names. Surrounding whitespace and a
// UTF-8 byte order mark on the first column are dropped. When a name repeats,
// the first occurrence wins.
func NewHeader(names []string) *Header {
	h := &Header{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.TrimSpace(name)

		h.names[i] = name
		if _, ok := h.index[name]; !ok {
			h.index[name] = i
		}
	}
	return h
}

// Names returns the column names in source order.
func (h *Header) Names() []string {
	return h.names
}

// Has reports whether the header contains the column.
func (h *Header) Has(name string) bool {
	_, ok := h.index[name]
	return ok
}

// Sample is one row of the telemetry log: an ordered, field-keyed record.
// Samples are immutable once read.
type Sample struct {
	header *Header
	values []string
}

// NewSample binds row values to a header. Values beyond the header are
// dropped; missing trailing values read as absent.
func NewSample(h *Header, values []string) Sample {
	if len(values) > len(h.names) {
		values = values[:len(h.names)]
	}
	v := make([]string, len(values))
	copy(v, values)
	return Sample{header: h, values: v}
}

// Get returns the raw value of a column, false when the column does not exist
// or the row is too short to carry it.
func (s Sample) Get(name string) (string, bool) {
	if s.header == nil {
		return "", false
	}
	i, ok := s.header.index[name]
	if !ok || i >= len(s.values) {
		return "", false
	}
	return s.values[i], true
}

// Value returns the raw value of a column or an empty string.
func (s Sample) Value(name string) string {
	v, _ := s.Get(name)
	return v
}

// Float parses a column as a number. It returns nil when the column is
// missing, empty or not a finite number, so a measured zero can be told
// apart from an unavailable reading.
func (s Sample) Float(name string) *float64 {
	raw, ok := s.Get(name)
	if !ok {
		return nil
	}
	return parseFloat(raw)
}

// Position is the geographic point of a sample along with which parts of it
// were substituted by defaults
type Position struct {
	geodesic.Point

	HasGPS      bool // false when GPS was missing or unparsable and (0, 0) is used
	HasAltitude bool // false when altitude was missing or unparsable and 0 is used
}

// Position derives the sample's geographic point. A missing or unparsable
// GPS value becomes (0, 0) and each unparsable coordinate becomes 0; a
// missing or unparsable altitude becomes 0.
func (s Sample) Position(cols Columns) Position {
	var pos Position

	if raw, ok := s.Get(cols.GPS); ok && strings.TrimSpace(raw) != "" {
		lat, lon := parseGPS(raw)
		pos.HasGPS = lat != nil && lon != nil
		pos.Latitude = valueOrZero(lat)
		pos.Longitude = valueOrZero(lon)
	}

	alt := s.Float(cols.Altitude)
	pos.HasAltitude = alt != nil
	pos.Altitude = valueOrZero(alt)

	return pos
}

func parseGPS(raw string) (lat, lon *float64) {
	parts := strings.Fields(raw)
	if len(parts) > 0 {
		lat = parseFloat(parts[0])
	}
	if len(parts) > 1 {
		lon = parseFloat(parts[1])
	}
	return
}

func parseFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
