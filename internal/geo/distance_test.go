package geo

import (
	"math"
	"testing"
)

func TestHaversineKm_ZeroDistance(t *testing.T) {
	d := HaversineKm(10, 20, 10, 20)
	if d < 0 || d > 1e-9 {
		t.Fatalf("zero distance expected ~0, got %v", d)
	}
}

func TestHaversineKm_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude is ~111.2 km everywhere on the sphere.
	d := HaversineKm(0, 0, 1, 0)
	if math.Abs(d-111.19) > 0.5 {
		t.Fatalf("one degree latitude expected ~111.19 km, got %v", d)
	}
}

func TestSegmentDistanceKm_PointNearEquatorRoute(t *testing.T) {
	// Route along the equator from (0,0) to (0,1); a pickup at lat 0.01 is
	// ~1.1 km off the path and must fall inside a 10 km deviation.
	d := SegmentDistanceKm(0, 0, 0, 1, 0.01, 0.5)
	if d > 10 {
		t.Fatalf("expected point within 10km of route, got %v km", d)
	}
	if !IsWithinDeviation(0, 0, 0, 1, 0.01, 0.5, 10) {
		t.Fatal("expected (0.01, 0.5) within 10km deviation of (0,0)->(0,1)")
	}
}

func TestSegmentDistanceKm_PointFarFromRoute(t *testing.T) {
	// A point at lat 5 is ~555 km away from the equator segment.
	d := SegmentDistanceKm(0, 0, 0, 1, 5, 0.5)
	if d < 500 {
		t.Fatalf("expected point far from route, got %v km", d)
	}
	if IsWithinDeviation(0, 0, 0, 1, 5, 0.5, 10) {
		t.Fatal("expected (5, 0.5) outside 10km deviation of (0,0)->(0,1)")
	}
}

func TestSegmentDistanceKm_ClampsToEndpoints(t *testing.T) {
	// Point projects past B: distance must equal the distance to B itself.
	dSeg := SegmentDistanceKm(0, 0, 0, 1, 0, 2)
	dB := HaversineKm(0, 1, 0, 2)
	if math.Abs(dSeg-dB) > 1e-6 {
		t.Fatalf("expected clamp to endpoint B: segment=%v point=%v", dSeg, dB)
	}

	// Point projects before A: distance must equal the distance to A.
	dSeg = SegmentDistanceKm(0, 0, 0, 1, 0, -2)
	dA := HaversineKm(0, 0, 0, -2)
	if math.Abs(dSeg-dA) > 1e-6 {
		t.Fatalf("expected clamp to endpoint A: segment=%v point=%v", dSeg, dA)
	}
}

func TestSegmentDistanceKm_DegenerateRoute(t *testing.T) {
	// start == end behaves as a point-radius filter.
	d := SegmentDistanceKm(10, 20, 10, 20, 10.5, 20)
	want := HaversineKm(10, 20, 10.5, 20)
	if math.Abs(d-want) > 1e-9 {
		t.Fatalf("degenerate route: got %v, want %v", d, want)
	}
}

func TestValidateCoordinates(t *testing.T) {
	cases := []struct {
		lat, lng float64
		ok       bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{91, 0, false},
		{0, 181, false},
		{-91, 0, false},
	}
	for _, c := range cases {
		if got := ValidateCoordinates(c.lat, c.lng); got != c.ok {
			t.Errorf("ValidateCoordinates(%v, %v) = %v, want %v", c.lat, c.lng, got, c.ok)
		}
	}
}
