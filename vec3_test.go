package opticsphere

import (
	"math"
	"math/rand"
	"testing"
)

const floatTol = 1e-9

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// randomUnitVec draws a unit vector uniformly over the sphere (uniform
// longitude, uniform z).
func randomUnitVec(rng *rand.Rand) Vec3 {
	lon := 360 * rng.Float64()
	lat := 180 / math.Pi * math.Asin(2*rng.Float64()-1)
	return LonLatToVec3(lon, lat)
}

func TestLonLatToVec3_KnownPoints(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		want     Vec3
	}{
		{"greenwich equator", 0, 0, Vec3{X: 1, Y: 0, Z: 0}},
		{"90E equator", 90, 0, Vec3{X: 0, Y: 1, Z: 0}},
		{"antimeridian", 180, 0, Vec3{X: -1, Y: 0, Z: 0}},
		{"90W equator", 270, 0, Vec3{X: 0, Y: -1, Z: 0}},
		{"north pole", 45, 90, Vec3{X: 0, Y: 0, Z: 1}},
		{"south pole", 45, -90, Vec3{X: 0, Y: 0, Z: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LonLatToVec3(tt.lon, tt.lat)
			if !almostEqual(got.X, tt.want.X, floatTol) ||
				!almostEqual(got.Y, tt.want.Y, floatTol) ||
				!almostEqual(got.Z, tt.want.Z, floatTol) {
				t.Errorf("LonLatToVec3(%v, %v) = %+v, want %+v", tt.lon, tt.lat, got, tt.want)
			}
		})
	}
}

func TestLonLatToVec3_ProducesUnitVectors(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		v := randomUnitVec(rng)
		norm := v.X*v.X + v.Y*v.Y + v.Z*v.Z
		if !almostEqual(norm, 1, floatTol) {
			t.Fatalf("|v|^2 = %v, want 1 (v = %+v)", norm, v)
		}
	}
}

func TestLonLatRoundTrip(t *testing.T) {
	// Poles are excluded: longitude is degenerate there.
	for lon := 0.0; lon < 360; lon += 15 {
		for lat := -85.0; lat <= 85; lat += 17 {
			gotLon, gotLat := Vec3ToLonLat(LonLatToVec3(lon, lat))
			if !almostEqual(gotLon, lon, 1e-9) || !almostEqual(gotLat, lat, 1e-9) {
				t.Errorf("round trip of (%v, %v) = (%v, %v)", lon, lat, gotLon, gotLat)
			}
		}
	}
}

func TestVec3ToLonLat_Poles(t *testing.T) {
	for _, lat := range []float64{90, -90} {
		_, gotLat := Vec3ToLonLat(LonLatToVec3(123, lat))
		if !almostEqual(gotLat, lat, 1e-9) {
			t.Errorf("latitude of pole = %v, want %v", gotLat, lat)
		}
	}
}

func TestSquaredEuclideanAngle_MatchesVectors(t *testing.T) {
	for _, theta := range []float64{0, 0.001, 0.1, 1, 10, 45, 90, 135, 179, 180} {
		a := LonLatToVec3(0, 0)
		b := LonLatToVec3(theta, 0)
		want := SquaredEuclidean(a, b)
		got := SquaredEuclideanAngle(theta)
		if !almostEqual(got, want, 1e-9) {
			t.Errorf("SquaredEuclideanAngle(%v) = %v, want %v", theta, got, want)
		}
	}
}

func TestSquaredEuclideanAngle_Antipodal(t *testing.T) {
	// 180 degrees apart means diametrically opposite unit vectors.
	if got := SquaredEuclideanAngle(180); !almostEqual(got, 4, floatTol) {
		t.Errorf("SquaredEuclideanAngle(180) = %v, want 4", got)
	}
}

func TestMinSquaredEuclidean_IsTight(t *testing.T) {
	// The minimum is attained by the two unit vectors on the same
	// meridian, so the formula must match the actual distance between
	// them exactly.
	tests := []struct{ s, u float64 }{
		{0, 0}, {0.5, 0.5}, {-0.3, 0.7}, {0.9, -0.9}, {1, 0.2}, {-1, 1}, {0.25, 0.75},
	}
	for _, tt := range tests {
		a := Vec3{X: math.Sqrt(1 - tt.s*tt.s), Z: tt.s}
		b := Vec3{X: math.Sqrt(1 - tt.u*tt.u), Z: tt.u}
		want := SquaredEuclidean(a, b)
		got := MinSquaredEuclidean(tt.s, tt.u)
		if !almostEqual(got, want, 1e-9) {
			t.Errorf("MinSquaredEuclidean(%v, %v) = %v, want %v", tt.s, tt.u, got, want)
		}
	}
}

func TestMinSquaredEuclidean_IsLowerBound(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for i := 0; i < 1000; i++ {
		a := randomUnitVec(rng)
		b := randomUnitVec(rng)
		d := SquaredEuclidean(a, b)
		for dim := 0; dim < 3; dim++ {
			lb := MinSquaredEuclidean(coord(a, dim), coord(b, dim))
			if lb > d+floatTol {
				t.Fatalf("MinSquaredEuclidean along dim %d = %v exceeds actual distance %v (a=%+v b=%+v)",
					dim, lb, d, a, b)
			}
		}
	}
}
