package geodesic

import (
	"errors"
	"math"
	"testing"
)

func dms(deg, min, sec float64) float64 {
	sign := 1.0
	if deg < 0 {
		sign = -1
		deg = -deg
	}
	return sign * (deg + min/60 + sec/3600)
}

func TestDistance3D_ReferenceValues(t *testing.T) {
	testCases := []struct {
		name      string
		p1, p2    Point
		want      float64
		tolerance float64
	}{
		{
			name:      "one degree along the equator",
			p1:        Point{Latitude: 0, Longitude: 0},
			p2:        Point{Latitude: 0, Longitude: 1},
			want:      111319.9,
			tolerance: 1,
		},
		{
			name:      "Flinders Peak to Buninyong",
			p1:        Point{Latitude: dms(-37, 57, 3.72030), Longitude: dms(144, 25, 29.52440)},
			p2:        Point{Latitude: dms(-37, 39, 10.15610), Longitude: dms(143, 55, 35.38390)},
			want:      54972.271,
			tolerance: 0.5,
		},
		{
			name:      "altitude adds vertical leg",
			p1:        Point{Latitude: 0, Longitude: 0, Altitude: 0},
			p2:        Point{Latitude: 0, Longitude: 1, Altitude: 100},
			want:      math.Sqrt(111319.49*111319.49 + 100*100),
			tolerance: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Distance3D(tc.p1, tc.p2)
			if math.Abs(got-tc.want) > tc.tolerance {
				t.Errorf("Distance3D() = %.3f, want %.3f ± %.3f", got, tc.want, tc.tolerance)
			}
		})
	}
}

func TestDistance3D_SamePointIsZero(t *testing.T) {
	points := []Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 51.4778, Longitude: -0.0014, Altitude: 45},
		{Latitude: -33.8688, Longitude: 151.2093, Altitude: 120.5},
		{Latitude: 89.9, Longitude: 179.9},
	}
	for _, p := range points {
		if d := Distance3D(p, p); d != 0 {
			t.Errorf("Distance3D(%v, %v) = %f, want 0", p, p, d)
		}
	}
}

func TestDistance3D_Symmetry(t *testing.T) {
	pairs := [][2]Point{
		{{Latitude: 50.0611, Longitude: 19.9383, Altitude: 220}, {Latitude: 50.0647, Longitude: 19.9450, Altitude: 310}},
		{{Latitude: -12.5, Longitude: 130.8}, {Latitude: -12.4, Longitude: 131.0}},
		{{Latitude: 10, Longitude: -170}, {Latitude: 11, Longitude: 170}},
	}
	for _, pair := range pairs {
		ab := Distance3D(pair[0], pair[1])
		ba := Distance3D(pair[1], pair[0])
		if math.Abs(ab-ba) > 1e-3 {
			t.Errorf("asymmetric distance: %f vs %f", ab, ba)
		}
		if ab <= 0 {
			t.Errorf("expected positive distance, got %f", ab)
		}
	}
}

func TestDistance3D_Degenerate(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)

	testCases := []struct {
		name   string
		p1, p2 Point
	}{
		{"NaN latitude", Point{Latitude: nan}, Point{Latitude: 1, Longitude: 1}},
		{"NaN longitude", Point{Latitude: 1, Longitude: 1}, Point{Longitude: nan}},
		{"infinite latitude", Point{Latitude: inf}, Point{}},
		{"infinite longitude", Point{}, Point{Longitude: -inf}},
		{"vertical only", Point{Latitude: 45, Longitude: 7, Altitude: 0}, Point{Latitude: 45, Longitude: 7, Altitude: 500}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if d := Distance3D(tc.p1, tc.p2); d != 0 {
				t.Errorf("Distance3D() = %f, want 0", d)
			}
		})
	}
}

func TestDistance3D_NearAntipodalNeverPanics(t *testing.T) {
	for lat := -1.0; lat <= 1.0; lat += 0.25 {
		for lon := 179.0; lon <= 180.0; lon += 0.1 {
			d := Distance3D(Point{}, Point{Latitude: lat, Longitude: lon})
			if math.IsNaN(d) || d < 0 {
				t.Fatalf("Distance3D to (%f, %f) = %f", lat, lon, d)
			}
		}
	}
}

func TestMeasure_Antipodal(t *testing.T) {
	testCases := []struct {
		name   string
		p1, p2 Point
	}{
		{"near antipodal", Point{}, Point{Latitude: 0.5, Longitude: 179.5}},
		{"near antipodal closer", Point{}, Point{Latitude: 0.5, Longitude: 179.7}},
		{"equatorial antipodal", Point{}, Point{Longitude: 180}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Measure(tc.p1, tc.p2)
			if !errors.Is(err, ErrDivergence) {
				t.Errorf("Measure() error = %v, want ErrDivergence", err)
			}
			if d != 0 {
				t.Errorf("Measure() = %f, want 0", d)
			}

			if _, err = Inverse(tc.p1, tc.p2); !errors.Is(err, ErrDivergence) {
				t.Errorf("Inverse() error = %v, want ErrDivergence", err)
			}

			if d = Distance3D(tc.p1, tc.p2); d != 0 {
				t.Errorf("Distance3D() = %f, want 0", d)
			}
		})
	}
}

func TestMeasure_Errors(t *testing.T) {
	if _, err := Measure(Point{Latitude: math.NaN()}, Point{}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}

	d, err := Measure(Point{Latitude: 10, Longitude: 10}, Point{Latitude: 10, Longitude: 10, Altitude: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 0 {
		t.Errorf("coincident points measured %f, want 0", d)
	}
}

func TestInverse_IgnoresAltitude(t *testing.T) {
	flat, err := Inverse(Point{Latitude: 0, Longitude: 0}, Point{Latitude: 0, Longitude: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	high, err := Inverse(Point{Latitude: 0, Longitude: 0, Altitude: 1000}, Point{Latitude: 0, Longitude: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flat != high {
		t.Errorf("altitude changed surface distance: %f vs %f", flat, high)
	}
}
