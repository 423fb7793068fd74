package recommend

import (
	"sort"

	"mediascout/pkg/models"
	"mediascout/pkg/textnorm"
)

// filterPolicy is the tunable part of the FILTER stage. The strict policy
// is what every request starts from; the relaxation ladder only ever
// loosens one knob at a time.
type filterPolicy struct {
	wantType     models.MediaType
	franchiseCap int  // survivors allowed per non-empty franchise key
	script       bool // enforce script admissibility
}

func strictPolicy(t models.MediaType) filterPolicy {
	return filterPolicy{wantType: t, franchiseCap: 1, script: true}
}

// relaxLadder is the fixed, ordered list of filter-loosening steps applied
// when strict filtering starves the result set. Order matters: franchise
// near-duplicates are the least surprising additions, out-of-type items
// less so, and non-Latin titles are a last resort before accepting the
// deficit.
var relaxLadder = []struct {
	name  string
	apply func(filterPolicy) filterPolicy
}{
	{
		name: "readmit-franchise",
		apply: func(p filterPolicy) filterPolicy {
			p.franchiseCap = 2
			return p
		},
	},
	{
		name: "widen-type",
		apply: func(p filterPolicy) filterPolicy {
			p.wantType = models.TypeAny
			return p
		},
	},
	{
		name: "drop-script-filter",
		apply: func(p filterPolicy) filterPolicy {
			p.script = false
			return p
		},
	},
}

// applyFilter runs the FILTER stage under a policy and returns surviving
// identity keys ordered by fused score descending (ties by key). Walking
// candidates in that order is what guarantees franchise dedup keeps the
// highest-scoring member of each group.
func applyFilter(c collected, fused map[string]float64, policy filterPolicy) []string {
	keys := make([]string, 0, len(c.candidates))
	for key := range c.candidates {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if fused[keys[i]] != fused[keys[j]] {
			return fused[keys[i]] > fused[keys[j]]
		}
		return keys[i] < keys[j]
	})

	perFranchise := make(map[string]int)
	survivors := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == c.seedKey {
			continue
		}
		it := c.candidates[key]
		if policy.script && !textnorm.ScriptAdmissible(it.Title) {
			continue
		}
		if !it.Type.Matches(policy.wantType) {
			continue
		}
		if fk := textnorm.FranchiseKey(it.Title); fk != "" {
			if perFranchise[fk] >= policy.franchiseCap {
				continue
			}
			perFranchise[fk]++
		}
		survivors = append(survivors, key)
	}
	return survivors
}
