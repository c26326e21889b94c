// Package opticsphere implements OPTICS (Ordering Points To Identify the
// Clustering Structure) for points distributed on the celestial sphere.
//
// Ankerst, Breunig, Kriegel, Sander (1999). "OPTICS: Ordering Points To
// Identify the Clustering Structure". ACM SIGMOD international conference
// on Management of data. ACM Press. pp. 49-60.
//
// Unlike DBSCAN, OPTICS does not require a single density threshold: it
// produces a reachability ordering of the input points from which
// clusters at any density can be read off. The three collaborating
// structures (a pointerless 3-d spatial index, an indexed seed heap, and
// the driver itself) all share and mutate a single point array; see
// [NewTree], [NewSeedHeap] and [Driver] for how that sharing is kept safe.
//
// Basic usage:
//
//	points := []opticsphere.Point{
//		opticsphere.NewPoint(opticsphere.LonLatToVec3(10, 20), recordA),
//		opticsphere.NewPoint(opticsphere.LonLatToVec3(10.01, 20.01), recordB),
//	}
//	d, err := opticsphere.NewDriver(points, opticsphere.DefaultConfig())
//	if err != nil {
//		// ...
//	}
//	pub := &opticsphere.SliceClusterPublisher{}
//	err = d.Run(pub)
//	// pub.Clusters[i] is the i-th reachability-ordered cluster; a
//	// singleton cluster is a noise point.
//
// A [Driver] is single-shot: calling Run a second time returns
// [ErrAlreadyRun].
package opticsphere
