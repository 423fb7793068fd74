// Package rank implements the scoring primitives of the recommendation
// pipeline: reciprocal rank fusion across provider lists and popularity
// rescaling onto a common 0-100 axis.
package rank

import "mediascout/pkg/models"

// DefaultRRFK is the standard smoothing constant from Cormack et al. 2009.
// At 60, a candidate near the top of several lists outranks one that is
// rank 1 in a single list, while a lone rank-1 hit still beats deep-ranked
// appearances scattered across many lists.
const DefaultRRFK = 60

// FuseRRF combines independently ranked lists into one fused score per
// candidate id: each list contributes 1/(k + rank) at 1-based rank for the
// ids it contains, and nothing for the ids it lacks. Only rank position is
// consumed, never the raw scores, so lists from providers with incomparable
// scales fuse cleanly.
//
// Lists are walked in the given order and entries in list order, so the
// summation order is fixed and identical input always produces identical
// output.
func FuseRRF(lists []models.RankedList, k int) map[string]float64 {
	if k <= 0 {
		k = DefaultRRFK
	}
	fused := make(map[string]float64)
	for _, list := range lists {
		for i, entry := range list.Entries {
			if entry.ID == "" {
				continue
			}
			fused[entry.ID] += 1.0 / float64(k+i+1)
		}
	}
	return fused
}
