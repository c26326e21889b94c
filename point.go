package opticsphere

import "math"

// Sentinels multiplexed into Point.state and Point.next. All three are
// negative, so no valid point or heap index can ever alias one and the
// in-heap test is a single sign check.
const (
	notFound    = -1
	unprocessed = -2
	processed   = -3
)

// Record is an opaque handle to the data a Point was derived from (e.g.
// a CSV line, or a byte range into a memory-mapped file). The core never
// interprets it; it only carries it from Driver.Run to a
// ClusterPublisher.
type Record = any

// Point is the shared, mutable record that the spatial index, the seed
// heap, and the OPTICS driver all operate on in place. V and Record never
// change after construction; Dist, Reach, next and state are scratch
// fields mutated throughout a single Driver.Run call.
//
// state role-multiplexes three things into one int: unprocessed,
// processed, or "currently in the seed heap at index state" (see
// [SeedHeap]). Invariant: once a point becomes processed it never
// changes state again.
type Point struct {
	// V is the unit vector derived from the point's (lon, lat).
	V Vec3

	// Record is the opaque handle carried through to the publisher.
	Record Record

	// Dist is valid only immediately after a range query that returned
	// this point; it holds the squared distance to that query's vector.
	Dist float64

	// Reach is the OPTICS reachability-distance, initialized to +Inf.
	Reach float64

	// next is the index of the next point in the current range-query
	// result list, or notFound.
	next int

	// state is unprocessed, processed, or a non-negative seed-heap index.
	state int
}

// NewPoint constructs a Point in its default state: Dist is NaN (no
// range query has touched it yet), Reach is +Inf, and state is
// unprocessed.
func NewPoint(v Vec3, record Record) Point {
	return Point{
		V:      v,
		Record: record,
		Dist:   math.NaN(),
		Reach:  math.Inf(1),
		next:   notFound,
		state:  unprocessed,
	}
}

func (p *Point) inHeap() bool      { return p.state >= 0 }
func (p *Point) isProcessed() bool { return p.state == processed }
