package opticsphere

import (
	"container/heap"
	"fmt"

	"go.uber.org/zap"
)

// Config controls OPTICS clustering behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// MinNeighbors is the number of other points (the point itself is
	// excluded) that must lie within Epsilon of a point for it to be a
	// core object. Must be >= 1. Default: 5.
	MinNeighbors int

	// Epsilon is the neighborhood radius, in degrees of great-circle
	// angle on the unit sphere. Must be in (0, 180]. Default: 1.0.
	Epsilon float64

	// PointsPerLeaf is the target number of points per spatial-index
	// leaf. Must be >= 1. Default: 32.
	PointsPerLeaf int

	// LeafExtentThreshold stops subdividing a tree node once its
	// bounding box is no larger than this along every axis, in
	// unit-vector coordinate units. Must be >= 0. Default: 0 (only
	// nodes whose points all coincide are left undivided).
	LeafExtentThreshold float64

	// Logger receives informational progress messages ("building tree",
	// "clustering N points", "finished clustering"). Nil disables
	// logging. Default: nil.
	Logger *zap.Logger
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		MinNeighbors:  5,
		Epsilon:       1.0,
		PointsPerLeaf: 32,
	}
}

// validateConfig checks that cfg fields are valid and returns a
// descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.MinNeighbors < 1 {
		return fmt.Errorf("opticsphere: MinNeighbors must be >= 1, got %d", cfg.MinNeighbors)
	}
	if cfg.Epsilon <= 0 || cfg.Epsilon > 180 {
		return fmt.Errorf("opticsphere: Epsilon must be in (0, 180], got %f", cfg.Epsilon)
	}
	if cfg.PointsPerLeaf < 1 {
		return fmt.Errorf("opticsphere: PointsPerLeaf must be >= 1, got %d", cfg.PointsPerLeaf)
	}
	if cfg.LeafExtentThreshold < 0 {
		return fmt.Errorf("opticsphere: LeafExtentThreshold must be >= 0, got %f", cfg.LeafExtentThreshold)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.MinNeighbors == 0 {
		cfg.MinNeighbors = 5
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = 1.0
	}
	if cfg.PointsPerLeaf == 0 {
		cfg.PointsPerLeaf = 32
	}
}

// Driver sequences range queries, core-distance computation and seed-heap
// expansion to produce a reachability ordering over a point array (see
// the OPTICS algorithm of Ankerst, Breunig, Kriegel and Sander, 1999).
//
// A Driver is single-shot: [Driver.Run] relinquishes the point array on
// return (success or failure), so a second call returns [ErrAlreadyRun].
// This is what guarantees the scratch fields of [Point] are never
// observed in a partially-consumed state.
type Driver struct {
	points []Point
	tree   *Tree
	seeds  *SeedHeap

	minNeighbors int
	epsSquared   float64
	logger       *zap.Logger

	// scratch is a preallocated max-heap of the minNeighbors nearest
	// distances seen so far while expanding one point; scratch[0] is
	// always the current k-th smallest (core-distance candidate).
	scratch distHeap

	// scanFrom advances monotonically across Run, so finding the next
	// unprocessed point is O(N) amortized across the whole run rather
	// than O(N) per scan.
	scanFrom int

	done bool
}

// NewDriver builds the spatial index and seed heap over points (which
// must all be in the default state [NewPoint] gives them: Reach=+Inf,
// state unprocessed) and returns a Driver ready to [Driver.Run]. points is
// permuted in place by the spatial index.
func NewDriver(points []Point, cfg Config) (*Driver, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("opticsphere: no input points provided")
	}

	tree, err := NewTree(points, cfg.PointsPerLeaf, cfg.LeafExtentThreshold, cfg.Logger)
	if err != nil {
		return nil, err
	}
	seeds := NewSeedHeap(points)

	return &Driver{
		points:       points,
		tree:         tree,
		seeds:        seeds,
		minNeighbors: cfg.MinNeighbors,
		epsSquared:   SquaredEuclideanAngle(cfg.Epsilon),
		logger:       cfg.Logger,
		scratch:      make(distHeap, 0, cfg.MinNeighbors),
	}, nil
}

// Run drives the OPTICS main loop to completion, calling pub.Publish once
// per cluster boundary and once more (possibly with an empty slice) at
// termination. Run is single-shot: a second call returns [ErrAlreadyRun].
func (d *Driver) Run(pub ClusterPublisher) error {
	if d.done {
		return ErrAlreadyRun
	}
	d.done = true
	defer func() {
		d.points = nil
		d.tree = nil
		d.seeds = nil
	}()

	if d.logger != nil {
		d.logger.Info("clustering points", zap.Int("points", len(d.points)))
	}

	cluster := make([]Record, 0, d.minNeighbors)

	for {
		if d.seeds.Empty() {
			i := d.scanForUnprocessed()
			if i == notFound {
				if err := pub.Publish(cluster); err != nil {
					return err
				}
				break
			}
			d.points[i].state = processed
			d.expand(i)
			if len(cluster) > 0 {
				if err := pub.Publish(cluster); err != nil {
					return err
				}
				cluster = make([]Record, 0, d.minNeighbors)
			}
			cluster = append(cluster, d.points[i].Record)
		} else {
			i := d.seeds.Pop()
			d.expand(i)
			cluster = append(cluster, d.points[i].Record)
		}
	}

	if d.logger != nil {
		d.logger.Info("finished clustering")
	}
	return nil
}

// scanForUnprocessed finds the next unprocessed point at or after
// scanFrom, advancing scanFrom as it goes so the whole Run amortizes to
// O(N) across all scans.
func (d *Driver) scanForUnprocessed() int {
	for ; d.scanFrom < len(d.points); d.scanFrom++ {
		if d.points[d.scanFrom].state == unprocessed {
			return d.scanFrom
		}
	}
	return notFound
}

// expand performs one range query around points[i].V with radius
// epsSquared, computes i's core-distance (if it has one), and pushes
// every unprocessed-or-in-heap neighbor into the seed heap keyed by its
// reachability-distance from i.
func (d *Driver) expand(i int) {
	v := d.points[i].V
	head := d.tree.InRange(v, d.epsSquared)

	d.scratch = d.scratch[:0]
	for j := head; j != notFound; j = d.points[j].next {
		if j == i {
			continue
		}
		dist := d.points[j].Dist
		if d.scratch.Len() < d.minNeighbors {
			heap.Push(&d.scratch, dist)
		} else if dist < d.scratch[0] {
			d.scratch[0] = dist
			heap.Fix(&d.scratch, 0)
		}
	}

	if d.scratch.Len() < d.minNeighbors {
		return // not a core object
	}
	coreDist := d.scratch[0]

	for j := head; j != notFound; j = d.points[j].next {
		if d.points[j].isProcessed() {
			continue
		}
		r := coreDist
		if d.points[j].Dist > r {
			r = d.points[j].Dist
		}
		d.seeds.Update(j, r)
	}
}

// distHeap is a max-heap of squared distances (largest on top) used as
// a bounded priority queue while computing one point's core-distance:
// capped at minNeighbors entries, its root is the k-th smallest
// distance seen so far.
type distHeap []float64

func (h distHeap) Len() int            { return len(h) }
func (h distHeap) Less(i, j int) bool  { return h[i] > h[j] } // max-heap
func (h distHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *distHeap) Push(x interface{}) { *h = append(*h, x.(float64)) }
func (h *distHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
