package geodesic

import (
	"errors"
	"math"
)

// WGS84 ellipsoid parameters
const (
	SemiMajorAxis = 6378137.0                        // a, meters
	Flattening    = 1 / 298.257223563                // f
	SemiMinorAxis = SemiMajorAxis * (1 - Flattening) // b, meters

	convergenceThreshold = 1e-12 // radians
	maxIterations        = 100
)

var (
	// ErrNonFinite is returned when a latitude or longitude is NaN or infinite.
	ErrNonFinite = errors.New("non-finite coordinate")

	// ErrDivergence is returned when the iterative solution does not converge,
	// which happens for nearly antipodal points.
	ErrDivergence = errors.New("vincenty solution did not converge")
)

// Point is a geographic position on the WGS84 ellipsoid
type Point struct {
	Latitude  float64 // degrees
	Longitude float64 // degrees
	Altitude  float64 // meters
}

// IsFinite reports whether both horizontal coordinates are usable numbers.
func (p Point) IsFinite() bool {
	return isFinite(p.Latitude) && isFinite(p.Longitude)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Inverse solves the inverse geodesic problem with Vincenty's formula and
// returns the ellipsoidal surface distance in meters between p1 and p2.
// Altitude is ignored. Coincident points yield zero distance.
func Inverse(p1, p2 Point) (float64, error) {
	d, _, err := vincenty(p1, p2)
	return d, err
}

// vincenty reports coincident=true when the angular separation collapses to
// zero, in which case the distance is 0 regardless of altitude.
func vincenty(p1, p2 Point) (distance float64, coincident bool, err error) {
	if !p1.IsFinite() || !p2.IsFinite() {
		return 0, false, ErrNonFinite
	}

	const (
		a = SemiMajorAxis
		b = SemiMinorAxis
		f = Flattening
	)

	phi1 := p1.Latitude * math.Pi / 180
	phi2 := p2.Latitude * math.Pi / 180
	lambda1 := p1.Longitude * math.Pi / 180
	lambda2 := p2.Longitude * math.Pi / 180

	// reduced latitudes
	u1 := math.Atan((1 - f) * math.Tan(phi1))
	u2 := math.Atan((1 - f) * math.Tan(phi2))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	l := lambda2 - lambda1
	lambda := l

	var (
		sinSigma, cosSigma, sigma float64
		cos2Alpha, cos2SigmaM     float64
		converged                 bool
	)

	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)

		sinSigma = math.Sqrt(
			math.Pow(cosU2*sinLambda, 2) +
				math.Pow(cosU1*sinU2-sinU1*cosU2*cosLambda, 2))
		if sinSigma == 0 {
			return 0, true, nil
		}

		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cos2Alpha = 1 - sinAlpha*sinAlpha

		// equatorial line: cos2Alpha == 0 makes this NaN
		cos2SigmaM = cosSigma - 2*sinU1*sinU2/cos2Alpha
		if math.IsNaN(cos2SigmaM) {
			cos2SigmaM = 0
		}

		c := f / 16 * cos2Alpha * (4 + f*(4-3*cos2Alpha))

		next := l + (1-c)*f*sinAlpha*(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(next-lambda) < convergenceThreshold {
			converged = true
			break
		}
		lambda = next
	}

	if !converged {
		return 0, false, ErrDivergence
	}

	uSq := cos2Alpha * (a*a - b*b) / (b * b)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	return b * bigA * (sigma - deltaSigma), false, nil
}

// Distance3D returns the distance in meters between p1 and p2, combining the
// ellipsoidal surface distance with the altitude difference. The vertical
// component is a flat-Earth approximation, fine for the short ranges flown
// by a single aircraft.
//
// Non-finite coordinates, horizontally coincident points and non-convergent
// geometry all yield 0. Use Measure to tell those cases apart.
func Distance3D(p1, p2 Point) float64 {
	d, _ := Measure(p1, p2)
	return d
}

// Measure is the strict form of Distance3D: it returns ErrNonFinite or
// ErrDivergence instead of silently collapsing them to 0. Horizontally
// coincident points are not an error and measure 0.
func Measure(p1, p2 Point) (float64, error) {
	d2D, coincident, err := vincenty(p1, p2)
	if err != nil {
		return 0, err
	}
	if coincident {
		return 0, nil
	}

	altDiff := p2.Altitude - p1.Altitude
	return math.Sqrt(d2D*d2D + altDiff*altDiff), nil
}
