package merge

import (
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/roman-kulish/flightlog-fusion/internal/align"
	"github.com/roman-kulish/flightlog-fusion/internal/geodesic"
	"github.com/roman-kulish/flightlog-fusion/internal/overlay"
	"github.com/roman-kulish/flightlog-fusion/internal/telemetry"
)

// Record is one fused output row: a telemetry sample annotated with its
// distance from the launch point and the link quality aligned to it
type Record struct {
	Time      string
	Latitude  float64
	Longitude float64
	Distance  int64  // Meters from the first sample, rounded
	Elevation string // Raw altitude value as logged
	Channels  []string
	Link      align.LinkStats
}

// Row formats the record in Schema.Header order.
func (r Record) Row() []string {
	row := make([]string, 0, len(r.Channels)+7)
	row = append(row,
		r.Time,
		strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		strconv.FormatFloat(r.Longitude, 'f', -1, 64),
		strconv.FormatInt(r.Distance, 10),
		r.Elevation,
	)
	row = append(row, r.Channels...)
	return append(row, r.Link.BitrateString(), r.Link.DelayString())
}

// Stats reports what the merge had to substitute or skip, so sensor dropout
// is visible without leaking into the records themselves
type Stats struct {
	Rows             int
	OverlaySamples   int
	MissingGPS       int      // Rows whose position fell back to (0, 0)
	MissingAltitude  int      // Rows whose altitude fell back to 0
	GeodesicFailures int      // Rows whose distance fell back to 0
	MaxDistance      int64    // Largest distance from start, meters
	MissingColumns   []string // Configured telemetry columns absent from the log
}

// Result is the output of a merge
type Result struct {
	Schema  Schema
	Records []Record
	Stats   Stats
}

// Header returns the output column names.
func (r *Result) Header() []string {
	return r.Schema.Header()
}

// Rows returns all records formatted in header order.
func (r *Result) Rows() [][]string {
	rows := make([][]string, len(r.Records))
	for i, rec := range r.Records {
		rows[i] = rec.Row()
	}
	return rows
}

// WithSchema overrides the output column layout.
func WithSchema(s Schema) func(*Merger) {
	return func(m *Merger) {
		m.schema = s
	}
}

// WithColumns overrides the telemetry column names for time, GPS and altitude.
func WithColumns(c telemetry.Columns) func(*Merger) {
	return func(m *Merger) {
		m.columns = c
	}
}

// WithLogger sets the logger used to report missing columns and fallbacks.
func WithLogger(logger *slog.Logger) func(*Merger) {
	return func(m *Merger) {
		m.logger = logger
	}
}

// Merger fuses a telemetry table with overlay link samples
type Merger struct {
	schema  Schema
	columns telemetry.Columns
	logger  *slog.Logger
}

// NewMerger creates a Merger with the default schema and column names.
func NewMerger(options ...func(*Merger)) *Merger {
	m := Merger{
		schema:  DefaultSchema(),
		columns: telemetry.DefaultColumns,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&m)
	}

	return &m
}

// Merge produces one record per telemetry sample, in telemetry order. Both
// inputs must be complete: the alignment depends on their total lengths.
func (m *Merger) Merge(table *telemetry.Table, samples []overlay.Sample) *Result {
	res := &Result{
		Schema:  m.schema,
		Records: make([]Record, table.Len()),
		Stats: Stats{
			Rows:           table.Len(),
			OverlaySamples: len(samples),
		},
	}

	res.Stats.MissingColumns = m.checkColumns(table)
	if table.Len() == 0 {
		return res
	}

	start := table.Samples[0].Position(m.columns)

	for i, sample := range table.Samples {
		pos := sample.Position(m.columns)
		if !pos.HasGPS {
			res.Stats.MissingGPS++
		}
		if !pos.HasAltitude {
			res.Stats.MissingAltitude++
		}

		d, err := geodesic.Measure(start.Point, pos.Point)
		if err != nil {
			res.Stats.GeodesicFailures++
			m.logger.Debug("distance fallback", slog.Int("row", i), slog.String("reason", err.Error()))
		}
		distance := int64(math.Round(d))
		res.Stats.MaxDistance = max(res.Stats.MaxDistance, distance)

		channels := make([]string, len(m.schema.Passthrough))
		for ci, p := range m.schema.Passthrough {
			channels[ci] = sample.Value(p.Source)
		}

		res.Records[i] = Record{
			Time:      sample.Value(m.columns.Time),
			Latitude:  pos.Latitude,
			Longitude: pos.Longitude,
			Distance:  distance,
			Elevation: sample.Value(m.columns.Altitude),
			Channels:  channels,
			Link:      align.At(i, table.Len(), samples),
		}
	}

	return res
}

func (m *Merger) checkColumns(table *telemetry.Table) []string {
	required := []string{m.columns.Time, m.columns.GPS, m.columns.Altitude}
	for _, p := range m.schema.Passthrough {
		required = append(required, p.Source)
	}

	var missing []string
	for _, name := range required {
		if table.Header.Has(name) {
			continue
		}
		missing = append(missing, name)

		attrs := []any{slog.String("column", name)}
		if suggestion := table.Suggest(name); suggestion != "" {
			attrs = append(attrs, slog.String("suggestion", suggestion))
		}
		m.logger.Warn("telemetry column not found, values will be empty", attrs...)
	}
	return missing
}

// Merge is a convenience wrapper around NewMerger(options...).Merge.
func Merge(table *telemetry.Table, samples []overlay.Sample, options ...func(*Merger)) *Result {
	return NewMerger(options...).Merge(table, samples)
}
