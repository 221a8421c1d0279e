package app

import (
	"math"

	"github.com/roman-kulish/flightlog-fusion/internal/merge"
)

// ProfileData accumulates the records of a session for rendering
type ProfileData struct {
	Rows        int
	MaxDistance int64
	BitrateMin  float64
	BitrateMax  float64
	TimeStart   string
	TimeEnd     string
	Histogram   *BitrateHistogram
	Bitrates    []float64
	Distances   []int64
	SessionID   int64
}

func NewProfileData(sessionID int64) *ProfileData {
	return &ProfileData{
		SessionID:  sessionID,
		BitrateMin: math.MaxFloat64,
		Histogram:  NewBitrateHistogram(),
	}
}

// Bounds returns the percentile bitrate bounds of all rows added so far.
func (p *ProfileData) Bounds() BitrateBounds {
	return p.Histogram.GetPercentileBounds()
}

// Update adds one record to the profile.
func (p *ProfileData) Update(r *merge.Record) {
	if p.Rows == 0 {
		p.TimeStart = r.Time
	}
	p.TimeEnd = r.Time
	p.Rows++

	p.MaxDistance = max(p.MaxDistance, r.Distance)
	p.BitrateMin = min(p.BitrateMin, r.Link.Bitrate)
	p.BitrateMax = max(p.BitrateMax, r.Link.Bitrate)

	p.Bitrates = append(p.Bitrates, r.Link.Bitrate)
	p.Distances = append(p.Distances, r.Distance)
	p.Histogram.Update(r.Link.Bitrate)
}

// Column is one pixel column of the plot
type Column struct {
	FirstRow int
	Bitrate  float64 // Mean bitrate of the rows in the column
	Distance int64   // Largest distance of the rows in the column
}

// Columns splits the rows into at most width columns. Each column covers a
// contiguous run of rows; runs differ in length by at most one.
func (p *ProfileData) Columns(width int) []Column {
	if p.Rows == 0 || width <= 0 {
		return nil
	}
	n := min(width, p.Rows)

	columns := make([]Column, n)
	for c := range columns {
		start := c * p.Rows / n
		end := (c + 1) * p.Rows / n

		var sum float64
		var dist int64
		for i := start; i < end; i++ {
			sum += p.Bitrates[i]
			dist = max(dist, p.Distances[i])
		}

		columns[c] = Column{
			FirstRow: start,
			Bitrate:  sum / float64(end-start),
			Distance: dist,
		}
	}
	return columns
}
