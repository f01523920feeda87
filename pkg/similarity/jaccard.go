// Package similarity compares the communities of two consecutive snapshots.
package similarity

import (
	"errors"

	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// ErrEmptySetComparison is returned when the Jaccard distance of two empty
// sets is requested. Communities are non-empty by construction, so seeing
// this means a caller broke that invariant.
var ErrEmptySetComparison = errors.New("jaccard distance of two empty sets is undefined")

// JaccardDistance returns 1 - |a∩b| / |a∪b|, in [0, 1].
// 0 means identical membership, 1 means disjoint.
func JaccardDistance(a, b snapshot.VertexSet) (float64, error) {
	if len(a) == 0 && len(b) == 0 {
		return 0, ErrEmptySetComparison
	}

	// Iterate over the smaller set
	small, big := a, b
	if len(a) > len(b) {
		small, big = b, a
	}
	intersection := 0
	for v := range small {
		if big.Contains(v) {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return 1.0 - float64(intersection)/float64(union), nil
}
