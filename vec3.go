package opticsphere

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a point in R^3. Every Vec3 that reaches the tree or the driver
// is expected to be a unit vector (see [LonLatToVec3]); arithmetic is
// otherwise unconstrained.
type Vec3 = r3.Vec

// coord returns the dim-th coordinate of v (0=X, 1=Y, 2=Z). The spatial
// index indexes dimensions this way so split planes can be expressed as
// a plain int rather than a field selector.
func coord(v Vec3, dim int) float64 {
	switch dim {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// LonLatToVec3 converts longitude/latitude in degrees to a unit vector.
// Longitude is not range-checked here; coordinate validation belongs at
// the boundary (see internal/ingest), not in the core.
func LonLatToVec3(lonDeg, latDeg float64) Vec3 {
	lon := lonDeg * math.Pi / 180
	lat := latDeg * math.Pi / 180
	cosLat := math.Cos(lat)
	return Vec3{
		X: math.Cos(lon) * cosLat,
		Y: math.Sin(lon) * cosLat,
		Z: math.Sin(lat),
	}
}

// Vec3ToLonLat is the inverse of [LonLatToVec3]. Longitude is normalized
// to [0, 360); latitude is clamped to [-90, 90] to absorb rounding at the
// poles.
func Vec3ToLonLat(v Vec3) (lonDeg, latDeg float64) {
	z := v.Z
	if z < -1 {
		z = -1
	} else if z > 1 {
		z = 1
	}
	lon := math.Atan2(v.Y, v.X) * 180 / math.Pi
	if lon < 0 {
		lon += 360
	}
	lat := math.Asin(z) * 180 / math.Pi
	return lon, lat
}

// SquaredEuclidean returns |a-b|^2.
func SquaredEuclidean(a, b Vec3) float64 {
	d := r3.Sub(a, b)
	return r3.Dot(d, d)
}

// SquaredEuclideanAngle returns the squared Euclidean distance between
// two unit vectors separated by the given angle, in degrees:
// 4*sin^2(theta/2). This lets callers express epsilon in degrees while
// the tree compares in squared-Euclidean space, with no transcendentals
// per comparison.
func SquaredEuclideanAngle(thetaDeg float64) float64 {
	s := math.Sin(thetaDeg * math.Pi / 360) // theta/2, in radians
	return 4 * s * s
}

// MinSquaredEuclidean returns the minimum squared Euclidean distance
// achievable between two unit vectors whose k-th coordinate is fixed at
// s and t respectively. The spatial index uses this to prune: a query
// point with k-th coordinate v_k cannot be within squared distance d of
// any point on the far side of split plane x_k=s unless
// MinSquaredEuclidean(v_k, s) <= d.
func MinSquaredEuclidean(s, t float64) float64 {
	rs := 1 - s*s
	rt := 1 - t*t
	if rs < 0 {
		rs = 0
	}
	if rt < 0 {
		rt = 0
	}
	return 2 * (1 - s*t - math.Sqrt(rs*rt))
}
