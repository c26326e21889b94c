package ingest

import (
	"sync"

	"github.com/TrevorS/opticsphere"
)

// Convert turns parsed rows into clustering points, in input order.
// Each point's record handle is the row's raw line.
func Convert(rows []Row) []opticsphere.Point {
	points := make([]opticsphere.Point, len(rows))
	convertRange(points, rows, 0, len(rows))
	return points
}

// ConvertParallel converts rows across numWorkers goroutines. Each
// worker owns a disjoint range of the output slice, so no
// synchronization is needed for writes; the result is identical to
// Convert. Falls back to single-threaded Convert if numWorkers <= 1.
//
// This runs strictly before a Driver exists, so it does not violate the
// single-writer discipline the tree, seed heap and driver share.
func ConvertParallel(rows []Row, numWorkers int) []opticsphere.Point {
	n := len(rows)
	if numWorkers <= 1 || n <= 1 {
		return Convert(rows)
	}

	points := make([]opticsphere.Point, n)

	var wg sync.WaitGroup
	rowsPerWorker := (n + numWorkers - 1) / numWorkers
	for w := 0; w < numWorkers; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > n {
			end = n
		}
		if start >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			convertRange(points, rows, start, end)
		}(start, end)
	}
	wg.Wait()
	return points
}

func convertRange(points []opticsphere.Point, rows []Row, start, end int) {
	for i := start; i < end; i++ {
		v := opticsphere.LonLatToVec3(rows[i].Lon, rows[i].Lat)
		points[i] = opticsphere.NewPoint(v, rows[i].Line)
	}
}
