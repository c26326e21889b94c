package opticsphere

// ExtractClusters assigns a flat cluster label to each position of a
// reachability plot, the way DBSCAN would at density threshold
// epsilonPrime. reach[i] is the reachability of the i-th point in the
// OPTICS ordering (+Inf where undefined, i.e. at the start of each
// scan-initiated expansion); epsilonPrime is in the same units as the
// reach values. Returns one label per position, with -1 for noise.
//
// A point whose reachability exceeds epsilonPrime starts a new cluster
// if the point after it is reachable at that threshold, and is noise
// otherwise.
func ExtractClusters(reach []float64, epsilonPrime float64) []int {
	labels := make([]int, len(reach))
	cluster := -1
	for i, r := range reach {
		if r > epsilonPrime {
			if i+1 < len(reach) && reach[i+1] <= epsilonPrime {
				cluster++
				labels[i] = cluster
			} else {
				labels[i] = -1
			}
			continue
		}
		if cluster < 0 {
			cluster = 0
		}
		labels[i] = cluster
	}
	return labels
}
