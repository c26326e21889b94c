package opticsphere

// ClusterPublisher receives finished clusters from [Driver.Run]. A
// cluster is one reachability-ordered run of records between seed-heap
// exhaustion events; a singleton cluster is a noise point. The driver
// calls Publish once per cluster; the last call comes at termination
// (and may receive an empty slice). The driver does not touch a slice
// again after passing it to Publish.
type ClusterPublisher interface {
	Publish(cluster []Record) error
}

// SliceClusterPublisher collects every published cluster in memory.
// Useful for tests and for callers that post-process the full ordering,
// e.g. with [ExtractClusters].
type SliceClusterPublisher struct {
	Clusters [][]Record
}

func (p *SliceClusterPublisher) Publish(cluster []Record) error {
	c := make([]Record, len(cluster))
	copy(c, cluster)
	p.Clusters = append(p.Clusters, c)
	return nil
}
