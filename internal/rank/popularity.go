package rank

import "mediascout/pkg/models"

// synopsisProxyCap is the synopsis length (in bytes) at which the proxy
// signal saturates. Around two paragraphs of text.
const synopsisProxyCap = 1200

// NormalizePopularity maps a batch of candidates onto a common 0-100
// popularity scale. Items with a provider-native raw popularity (assumed
// 0-10) are scaled proportionally and clamped. Items without one get a
// monotonic function of their synopsis length instead, so they are not
// automatically scored zero.
//
// The synopsis fallback is a weak proxy, not a quality signal; callers
// tuning final score weights should treat it as such.
func NormalizePopularity(items []models.CatalogItem) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		if it.PopularityRaw != nil {
			out[i] = clamp(*it.PopularityRaw*10, 0, 100)
			continue
		}
		n := len(it.Synopsis)
		if n > synopsisProxyCap {
			n = synopsisProxyCap
		}
		// saturates at 60 so a long synopsis never outscores real
		// provider popularity in the upper range
		out[i] = 60 * float64(n) / float64(synopsisProxyCap)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
