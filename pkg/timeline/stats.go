package timeline

// DefaultStableWindow is the number of consecutive equal cluster ids that
// make up a stable period
const DefaultStableWindow = 6

// NodeStats summarises how often a node changed community
type NodeStats struct {
	Vertex string
	// DifferentClusters is the number of distinct plain ids the node held
	DifferentClusters int
	// ChangesOfCluster counts adjacent dates with different ids
	ChangesOfCluster int
	// StableChangesOfCluster counts maximal runs in which at least window
	// consecutive entries are equal; a run is counted once
	StableChangesOfCluster int
}

// ComputeNodeStats summarises one timeline. Only dates on which the node
// belongs to a community are considered, so a node that disappears and
// comes back in the same community has not changed.
func ComputeNodeStats(tl NodeTimeline, window int) NodeStats {
	if window <= 0 {
		window = DefaultStableWindow
	}

	present := make([]int, 0, len(tl.PlainIDs))
	for _, id := range tl.PlainIDs {
		if id != Absent {
			present = append(present, id)
		}
	}

	stats := NodeStats{Vertex: tl.Vertex}

	distinct := make(map[int]struct{}, len(present))
	for _, id := range present {
		distinct[id] = struct{}{}
	}
	stats.DifferentClusters = len(distinct)

	for i := 1; i < len(present); i++ {
		if present[i] != present[i-1] {
			stats.ChangesOfCluster++
		}
	}

	stable := false
	for start := 0; start+window <= len(present); start++ {
		if allEqual(present[start : start+window]) {
			if !stable {
				stats.StableChangesOfCluster++
				stable = true
			}
		} else {
			stable = false
		}
	}

	return stats
}

// ComputeAllNodeStats applies ComputeNodeStats to every timeline
func ComputeAllNodeStats(timelines []NodeTimeline, window int) []NodeStats {
	out := make([]NodeStats, len(timelines))
	for i, tl := range timelines {
		out[i] = ComputeNodeStats(tl, window)
	}
	return out
}

func allEqual(ids []int) bool {
	for _, id := range ids[1:] {
		if id != ids[0] {
			return false
		}
	}
	return true
}
