package align

import (
	"math"
)

// MapIndex maps telemetry index i onto the overlay sequence by proportional
// position: floor(srtLen / teleLen * i). The mapping depends only on the two
// lengths, is non-decreasing in i and stays within [0, srtLen).
//
// It returns -1 when there is nothing to map onto (srtLen == 0) or the
// telemetry length is not positive; Smooth treats -1 as "no sample".
func MapIndex(i, teleLen, srtLen int) int {
	if srtLen <= 0 || teleLen <= 0 {
		return -1
	}

	j := int(math.Floor(float64(srtLen) / float64(teleLen) * float64(i)))

	// guard against floating error at the upper boundary and i out of range
	if j >= srtLen {
		j = srtLen - 1
	}
	if j < 0 {
		j = 0
	}
	return j
}
