package opticsphere

import (
	"math/rand"
	"sort"
	"testing"
)

func heapTestPoints(n int) []Point {
	points := make([]Point, n)
	for i := range points {
		points[i] = NewPoint(Vec3{X: 1}, i)
	}
	return points
}

func TestSeedHeap_Empty(t *testing.T) {
	points := heapTestPoints(3)
	h := NewSeedHeap(points)

	if !h.Empty() {
		t.Error("new heap is not empty")
	}
	if h.Size() != 0 {
		t.Errorf("Size() = %d, want 0", h.Size())
	}
	if h.Capacity() != 3 {
		t.Errorf("Capacity() = %d, want 3", h.Capacity())
	}
	if got := h.Pop(); got != notFound {
		t.Errorf("Pop() on empty heap = %d, want notFound", got)
	}
}

func TestSeedHeap_AscendingPop(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	points := heapTestPoints(100)
	h := NewSeedHeap(points)

	want := make([]float64, len(points))
	for i := range points {
		r := rng.Float64()
		want[i] = r
		h.Update(i, r)
		if err := h.CheckInvariants(); err != nil {
			t.Fatalf("after Update(%d): %v", i, err)
		}
	}
	sort.Float64s(want)

	for i := range want {
		j := h.Pop()
		if j == notFound {
			t.Fatalf("heap empty after %d pops, want %d", i, len(want))
		}
		if points[j].Reach != want[i] {
			t.Fatalf("pop %d has Reach %v, want %v", i, points[j].Reach, want[i])
		}
		if !points[j].isProcessed() {
			t.Fatalf("popped point %d not marked processed", j)
		}
		if err := h.CheckInvariants(); err != nil {
			t.Fatalf("after pop %d: %v", i, err)
		}
	}
	if h.Pop() != notFound {
		t.Error("heap not empty after popping every point")
	}
}

func TestSeedHeap_DecreaseKey(t *testing.T) {
	// With Reach[i] = i, lowering every key to -i must exactly reverse
	// the pop order.
	const n = 50
	points := heapTestPoints(n)
	h := NewSeedHeap(points)

	for i := 0; i < n; i++ {
		h.Update(i, float64(i))
	}
	for i := 0; i < n; i++ {
		h.Update(i, -float64(i))
	}
	if err := h.CheckInvariants(); err != nil {
		t.Fatal(err)
	}

	for i := n - 1; i >= 0; i-- {
		if j := h.Pop(); j != i {
			t.Fatalf("Pop() = %d, want %d", j, i)
		}
	}
}

func TestSeedHeap_UpdateLargerKeyIgnored(t *testing.T) {
	points := heapTestPoints(2)
	h := NewSeedHeap(points)

	h.Update(0, 1.0)
	h.Update(0, 5.0)
	if points[0].Reach != 1.0 {
		t.Errorf("Reach = %v after larger-key update, want 1.0", points[0].Reach)
	}
	if h.Size() != 1 {
		t.Errorf("Size() = %d, want 1", h.Size())
	}
}

func TestSeedHeap_UpdateProcessedIgnored(t *testing.T) {
	points := heapTestPoints(2)
	h := NewSeedHeap(points)

	h.Update(0, 1.0)
	if j := h.Pop(); j != 0 {
		t.Fatalf("Pop() = %d, want 0", j)
	}
	h.Update(0, 0.5)
	if !points[0].isProcessed() {
		t.Error("processed point left the processed state")
	}
	if h.Size() != 0 {
		t.Errorf("Size() = %d after updating a processed point, want 0", h.Size())
	}
	if points[0].Reach != 1.0 {
		t.Errorf("Reach = %v after updating a processed point, want 1.0", points[0].Reach)
	}
}

func TestSeedHeap_RandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	points := heapTestPoints(200)
	h := NewSeedHeap(points)

	for op := 0; op < 5000; op++ {
		if rng.Intn(3) == 0 {
			h.Pop()
		} else {
			h.Update(rng.Intn(len(points)), rng.Float64())
		}
		if err := h.CheckInvariants(); err != nil {
			t.Fatalf("after op %d: %v", op, err)
		}
	}
}
