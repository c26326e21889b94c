package opticsphere

import "fmt"

// SeedHeap is an indexed min-heap over point indices, keyed by
// points[i].Reach. The back-pointer that makes decrease-key O(log n) is
// embedded in the point itself (Point.state), so locating an element
// given its point index is O(1) rather than requiring a separate
// position map.
//
// A SeedHeap does not own the point array; it shares it with whichever
// [Tree] and [Driver] are using the same array, under the same
// single-writer discipline (see [Tree.InRange]).
type SeedHeap struct {
	heap     []int
	points   []Point
	size     int
	capacity int
}

// NewSeedHeap creates a seed heap with capacity len(points), sized to
// hold every point if necessary (it rarely does).
func NewSeedHeap(points []Point) *SeedHeap {
	return &SeedHeap{heap: make([]int, len(points)), points: points, capacity: len(points)}
}

func (h *SeedHeap) Empty() bool   { return h.size == 0 }
func (h *SeedHeap) Size() int     { return h.size }
func (h *SeedHeap) Capacity() int { return h.capacity }

// Pop removes and returns the point index with the smallest Reach,
// transitioning that point to processed, or returns notFound if the
// heap is empty.
func (h *SeedHeap) Pop() int {
	if h.size == 0 {
		return notFound
	}
	top := h.heap[0]
	h.points[top].state = processed
	h.size--
	if h.size > 0 {
		h.heap[0] = h.heap[h.size]
		h.points[h.heap[0]].state = 0
		h.siftDown(0)
	}
	return top
}

// Add places point i at the tail of the heap and sifts it up.
// Precondition: size < capacity and points[i] is not already in the
// heap.
func (h *SeedHeap) Add(i int) {
	pos := h.size
	h.heap[pos] = i
	h.points[i].state = pos
	h.size++
	h.siftUp(pos)
}

// Update is the decrease-key-or-insert operation: if point i is already
// in the heap and r is smaller than its current Reach, Reach is lowered
// and the heap is re-sifted; if i is not in the heap, it is added with
// Reach set to r; if i is already processed, Update does nothing.
func (h *SeedHeap) Update(i int, r float64) {
	p := &h.points[i]
	if p.isProcessed() {
		return
	}
	if p.inHeap() {
		if r < p.Reach {
			p.Reach = r
			h.siftUp(p.state)
		}
		return
	}
	p.Reach = r
	h.Add(i)
}

func (h *SeedHeap) siftUp(pos int) {
	for pos > 0 {
		parent := (pos - 1) / 2
		if h.points[h.heap[parent]].Reach <= h.points[h.heap[pos]].Reach {
			break
		}
		h.swap(parent, pos)
		pos = parent
	}
}

func (h *SeedHeap) siftDown(pos int) {
	for {
		left, right := 2*pos+1, 2*pos+2
		smallest := pos
		if left < h.size && h.points[h.heap[left]].Reach < h.points[h.heap[smallest]].Reach {
			smallest = left
		}
		if right < h.size && h.points[h.heap[right]].Reach < h.points[h.heap[smallest]].Reach {
			smallest = right
		}
		if smallest == pos {
			return
		}
		h.swap(pos, smallest)
		pos = smallest
	}
}

func (h *SeedHeap) swap(a, b int) {
	h.heap[a], h.heap[b] = h.heap[b], h.heap[a]
	h.points[h.heap[a]].state = a
	h.points[h.heap[b]].state = b
}

// CheckInvariants verifies in O(N + size) that heap positions and point
// back-pointers agree in both directions and that every parent's key is
// at most its children's. It is exposed for tests, not called from the
// production Pop/Add/Update path.
func (h *SeedHeap) CheckInvariants() error {
	for pos := 0; pos < h.size; pos++ {
		idx := h.heap[pos]
		if h.points[idx].state != pos {
			return fmt.Errorf("opticsphere: point %d at heap pos %d has state %d", idx, pos, h.points[idx].state)
		}
		if pos > 0 {
			parent := (pos - 1) / 2
			if h.points[h.heap[parent]].Reach > h.points[idx].Reach {
				return fmt.Errorf("opticsphere: heap order violated at pos %d", pos)
			}
		}
	}
	for i := range h.points {
		if !h.points[i].inHeap() {
			continue
		}
		s := h.points[i].state
		if s >= h.size || h.heap[s] != i {
			return fmt.Errorf("opticsphere: point %d has dangling heap position %d (size %d)", i, s, h.size)
		}
	}
	return nil
}
