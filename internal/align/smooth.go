package align

import (
	"math"
	"strconv"

	"github.com/roman-kulish/flightlog-fusion/internal/overlay"
)

// LinkStats is the smoothed link quality attached to one telemetry sample
type LinkStats struct {
	Bitrate float64 `json:"bitrate"` // Mbps, 2 decimals
	Delay   float64 `json:"delay"`   // ms, 2 decimals
}

// BitrateString formats Bitrate with exactly two decimals.
func (s LinkStats) BitrateString() string {
	return strconv.FormatFloat(s.Bitrate, 'f', 2, 64)
}

// DelayString formats Delay with exactly two decimals.
func (s LinkStats) DelayString() string {
	return strconv.FormatFloat(s.Delay, 'f', 2, 64)
}

// Smooth averages the overlay samples in a 3-point window centred on j.
// The window replicates the edge sample at both boundaries, so index 0 uses
// (s[0], s[0], s[1]) and the last index uses (s[n-2], s[n-1], s[n-1]).
// An index outside the sequence, including any index into an empty
// sequence, yields the zero LinkStats.
func Smooth(j int, samples []overlay.Sample) LinkStats {
	if j < 0 || j >= len(samples) {
		return LinkStats{}
	}

	prev := samples[max(j-1, 0)]
	curr := samples[j]
	next := samples[min(j+1, len(samples)-1)]

	return LinkStats{
		Bitrate: round2((prev.Bitrate + curr.Bitrate + next.Bitrate) / 3),
		Delay:   round2((prev.Delay + curr.Delay + next.Delay) / 3),
	}
}

// At is MapIndex followed by Smooth.
func At(i, teleLen int, samples []overlay.Sample) LinkStats {
	return Smooth(MapIndex(i, teleLen, len(samples)), samples)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
