package app

import "math"

const (
	defaultMinBitrate = 0.0  // Mbps
	defaultMaxBitrate = 50.0 // Mbps

	binsPerMbps = 2

	// Minimum spread between the bounds, so a steady link does not turn
	// into noise across the whole palette.
	minimumBitrateRange = 10.0

	// For 20 samples:
	// - 5% percentile  = 1 sample
	// - 95% percentile = 19th sample
	minimumSampleCount = 20
)

// BitrateBounds represents the calculated bitrate boundaries
type BitrateBounds struct {
	Min  float64 // 5th percentile bitrate in Mbps
	Max  float64 // 95th percentile bitrate in Mbps
	Mean float64
}

func defaultBitrateBounds() BitrateBounds {
	return BitrateBounds{
		Min:  defaultMinBitrate,
		Max:  defaultMaxBitrate,
		Mean: (defaultMinBitrate + defaultMaxBitrate) / 2,
	}
}

// BitrateHistogram maintains a histogram of bitrate values with 0.5 Mbps bins
type BitrateHistogram struct {
	bins       map[int]uint32 // Map of bin index to count
	totalCount uint64
	sum        float64
	minBin     int
	maxBin     int
}

func NewBitrateHistogram() *BitrateHistogram {
	return &BitrateHistogram{
		bins:   make(map[int]uint32),
		minBin: math.MaxInt32,
		maxBin: math.MinInt32,
	}
}

func getBinIndex(bitrate float64) int {
	return int(math.Floor(bitrate * binsPerMbps))
}

func binValue(bin int) float64 {
	return float64(bin) / binsPerMbps
}

// Update adds a bitrate reading to the histogram
func (h *BitrateHistogram) Update(bitrate float64) {
	if math.IsNaN(bitrate) || math.IsInf(bitrate, 0) {
		return
	}

	bin := getBinIndex(bitrate)
	h.bins[bin]++
	h.totalCount++
	h.sum += bitrate

	h.minBin = min(h.minBin, bin)
	h.maxBin = max(h.maxBin, bin)
}

// Count returns the number of readings added
func (h *BitrateHistogram) Count() uint64 {
	return h.totalCount
}

// GetPercentileBounds returns bitrate bounds based on percentiles
func (h *BitrateHistogram) GetPercentileBounds() BitrateBounds {
	if h.totalCount < minimumSampleCount {
		return defaultBitrateBounds()
	}

	target5th := h.totalCount * 5 / 100

	var count uint64
	var min5th, max95th int

	for bin := h.minBin; bin <= h.maxBin; bin++ {
		count += uint64(h.bins[bin])
		if count >= target5th {
			min5th = bin
			break
		}
	}

	count = 0
	for bin := h.maxBin; bin >= h.minBin; bin-- {
		count += uint64(h.bins[bin])
		if count >= target5th {
			max95th = bin
			break
		}
	}

	lo, hi := binValue(min5th), binValue(max95th+1)
	if hi-lo < minimumBitrateRange {
		center := (hi + lo) / 2
		lo = center - minimumBitrateRange/2
		hi = center + minimumBitrateRange/2
	}

	// 10% margin, never below zero
	margin := (hi - lo) / 10
	return BitrateBounds{
		Min:  max(lo-margin, 0),
		Max:  hi + margin,
		Mean: h.sum / float64(h.totalCount),
	}
}
