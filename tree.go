package opticsphere

import (
	"fmt"
	"math"
	"math/bits"

	"go.uber.org/zap"
)

// maxHeight bounds a tree's height: one word's worth of bits minus the
// two low bits a node's metadata reserves for its split dimension.
const maxHeight = bits.UintSize - 2

// node is a pointerless node in the 3-d tree. Its children, if any, live
// at indices 2*i+1 and 2*i+2 of the same backing array, so siblings are
// always contiguous, which is what lets a leaf recover its own
// left bound from its left sibling's right bound instead of storing one
// itself. 16 bytes: an 8-byte split value and an 8-byte packed metadata
// word (2 bits of split dimension, the rest the node's exclusive upper
// point-array index).
type node struct {
	split    float64
	metadata int64
}

func packMetadata(dim, right int) int64 { return int64(right)<<2 | int64(dim&0x3) }
func (n node) dim() int                 { return int(n.metadata & 0x3) }
func (n node) right() int               { return int(n.metadata >> 2) }
func (n node) isLeaf() bool             { return n.dim() == 3 }

// Tree is a pointerless 3-d spatial index built in place over a Point
// array. A range query threads its result through points[i].next rather
// than allocating (see [Tree.InRange]), so a Tree and the array it was
// built over are single-writer, single-reader: only one query may be in
// flight at a time, and results are invalidated by the next query.
//
// The tree does not own the point array; it permutes it during
// construction and the caller (normally a [Driver]) is responsible for
// the array's lifetime.
type Tree struct {
	nodes  []node
	points []Point
	height int
}

// NewTree builds a 3-d tree over points, permuting points in place.
// pointsPerLeaf is the target number of points per leaf (> 0);
// leafExtentThreshold (>= 0) stops subdivision once a node's bounding
// box is no larger than this along every axis, in unit-vector coordinate
// units.
func NewTree(points []Point, pointsPerLeaf int, leafExtentThreshold float64, logger *zap.Logger) (*Tree, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("opticsphere: no input points provided")
	}
	if pointsPerLeaf < 1 {
		return nil, fmt.Errorf("opticsphere: pointsPerLeaf must be > 0, got %d", pointsPerLeaf)
	}
	if leafExtentThreshold < 0 {
		return nil, fmt.Errorf("opticsphere: leafExtentThreshold must be >= 0, got %f", leafExtentThreshold)
	}

	height := computeHeight(len(points), pointsPerLeaf)
	size := (1 << (height + 1)) - 1
	t := &Tree{nodes: make([]node, size), points: points, height: height}

	if logger != nil {
		logger.Info("building 3d tree", zap.Int("height", height), zap.Int("points", len(points)))
	}
	t.build(leafExtentThreshold)
	if logger != nil {
		logger.Info("built 3d tree")
	}
	return t, nil
}

// Height returns the tree's height (0 for a single-leaf tree).
func (t *Tree) Height() int { return t.height }

// computeHeight finds the smallest h (capped at maxHeight) such that
// n / 2^h <= pointsPerLeaf.
func computeHeight(n, pointsPerLeaf int) int {
	h := 0
	for h < maxHeight && (n>>h) > pointsPerLeaf {
		h++
	}
	return h
}

type buildFrame struct {
	node, left, right, depth int
}

// build constructs the tree over t.points[0:len(t.points)) using an
// explicit stack rather than call-stack recursion, partially sorting
// (quickselecting) points by the dimension of maximum extent at each
// internal node. Construction permutes t.points in place and does not
// allocate per node beyond the explicit stack.
func (t *Tree) build(tau float64) {
	stack := make([]buildFrame, 0, t.height+1)
	stack = append(stack, buildFrame{node: 0, left: 0, right: len(t.points), depth: 0})

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth == t.height {
			t.nodes[f.node] = node{metadata: packMetadata(3, f.right)}
			continue
		}

		dim, extent := maxExtentDim(t.points, f.left, f.right)
		if extent <= tau {
			t.markSubtreeEmpty(f.node, f.depth, f.right)
			continue
		}

		mid := f.left + (f.right-f.left)/2
		partialSortByDim(t.points, f.left, f.right, mid, dim)
		split := coord(t.points[mid].V, dim)
		t.nodes[f.node] = node{split: split, metadata: packMetadata(dim, f.right)}

		stack = append(stack, buildFrame{2*f.node + 2, mid, f.right, f.depth + 1})
		stack = append(stack, buildFrame{2*f.node + 1, f.left, mid, f.depth + 1})
	}
}

// markSubtreeEmpty marks node and every descendant down to t.height as a
// leaf sharing the same right bound. Because a right child's left bound
// is its left sibling's right bound, every right child below the node
// ends up with an empty [right, right) range, and the node itself, now a
// leaf, keeps its whole range; queries stop at the node and never descend
// into the marked subtree.
func (t *Tree) markSubtreeEmpty(nodeIdx, depth, right int) {
	type ent struct{ idx, depth int }
	stack := []ent{{nodeIdx, depth}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.nodes[e.idx] = node{metadata: packMetadata(3, right)}
		if e.depth < t.height {
			stack = append(stack, ent{2*e.idx + 2, e.depth + 1}, ent{2*e.idx + 1, e.depth + 1})
		}
	}
}

// maxExtentDim returns the dimension of maximum extent over
// points[left:right] and that extent. Assumes right > left.
func maxExtentDim(points []Point, left, right int) (dim int, extent float64) {
	var lo, hi [3]float64
	for d := 0; d < 3; d++ {
		lo[d] = math.Inf(1)
		hi[d] = math.Inf(-1)
	}
	for i := left; i < right; i++ {
		v := points[i].V
		c := [3]float64{v.X, v.Y, v.Z}
		for d := 0; d < 3; d++ {
			if c[d] < lo[d] {
				lo[d] = c[d]
			}
			if c[d] > hi[d] {
				hi[d] = c[d]
			}
		}
	}
	dim, extent = 0, hi[0]-lo[0]
	for d := 1; d < 3; d++ {
		if e := hi[d] - lo[d]; e > extent {
			extent, dim = e, d
		}
	}
	return dim, extent
}

// partialSortByDim reorders points[left:right] in place (Hoare-style
// quickselect) so that the element ending up at index k is exactly the
// one a full sort by dim would place there; elements left of k compare
// <= it and elements right of k compare >= it. Ties may fall on either
// side (invariant T1 tolerates this).
func partialSortByDim(points []Point, left, right, k, dim int) {
	for right-left > 1 {
		p := medianOfThreePivot(points, left, right, dim)
		p = partition(points, left, right, p, dim)
		switch {
		case k == p:
			return
		case k < p:
			right = p
		default:
			left = p + 1
		}
	}
}

func partition(points []Point, left, right, pivotIdx, dim int) int {
	pivotVal := coord(points[pivotIdx].V, dim)
	points[pivotIdx], points[right-1] = points[right-1], points[pivotIdx]
	store := left
	for i := left; i < right-1; i++ {
		if coord(points[i].V, dim) < pivotVal {
			points[i], points[store] = points[store], points[i]
			store++
		}
	}
	points[store], points[right-1] = points[right-1], points[store]
	return store
}

func medianOfThreePivot(points []Point, left, right, dim int) int {
	mid := left + (right-left)/2
	last := right - 1
	a := coord(points[left].V, dim)
	b := coord(points[mid].V, dim)
	c := coord(points[last].V, dim)
	switch {
	case (a <= b && b <= c) || (c <= b && b <= a):
		return mid
	case (b <= a && a <= c) || (c <= a && a <= b):
		return left
	default:
		return last
	}
}

type queryFrame struct {
	node, left int
}

// InRange returns the head index of a singly linked list (threaded
// through points[i].next, where points is the array the tree was built
// over) of every point within squared Euclidean distance d of v, or
// notFound if none. The result, and the points[i].Dist values it writes,
// are valid only until the next call to InRange on this tree.
func (t *Tree) InRange(v Vec3, d float64) int {
	head, tail := notFound, notFound
	stack := []queryFrame{{0, 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes[f.node]

		if n.isLeaf() {
			right := n.right()
			for i := f.left; i < right; i++ {
				sd := SquaredEuclidean(v, t.points[i].V)
				if sd > d {
					continue
				}
				t.points[i].Dist = sd
				if head == notFound {
					head = i
				} else {
					t.points[tail].next = i
				}
				tail = i
			}
			continue
		}

		leftChild, rightChild := 2*f.node+1, 2*f.node+2
		mid := t.nodes[leftChild].right() // also the right child's left bound
		vd := coord(v, n.dim())

		switch {
		case MinSquaredEuclidean(vd, n.split) <= d:
			stack = append(stack, queryFrame{rightChild, mid}, queryFrame{leftChild, f.left})
		case vd < n.split:
			stack = append(stack, queryFrame{leftChild, f.left})
		default:
			stack = append(stack, queryFrame{rightChild, mid})
		}
	}

	if tail != notFound {
		t.points[tail].next = notFound
	}
	return head
}
