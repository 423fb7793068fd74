// Package recommend implements the recommendation pipeline: candidate
// collection across providers, reciprocal rank fusion, admissibility
// filtering with a relaxation ladder, and final localized assembly.
package recommend

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"mediascout/internal/locale"
	"mediascout/internal/provider"
	"mediascout/internal/rank"
	"mediascout/pkg/models"
	"mediascout/pkg/textnorm"
)

const (
	// DefaultLimit is the result size when the request does not specify one.
	DefaultLimit = 10
	// MaxLimit caps any requested result size.
	MaxLimit = 50

	// perProviderFetch is how deep each provider list goes during
	// collection; wider than the final limit so filtering has slack.
	perProviderFetch = 25

	// Final score blend: fused rank carries most of the weight, the
	// popularity axis breaks up ties between items the providers agree
	// on. Popularity is partly a synopsis-length proxy, so it stays a
	// minority input.
	fusedWeight      = 0.8
	popularityWeight = 0.2
)

// Request describes one recommendation query.
type Request struct {
	Query  string
	Locale string
	Limit  int
	Type   models.MediaType // zero value treated as TypeAny
}

// Searcher is the slice of the provider registry the pipeline consumes.
type Searcher interface {
	Search(ctx context.Context, query string, opts provider.SearchOptions) []provider.ProviderResult
}

// IDResolver is the optional registry capability for direct item lookup by
// provider-qualified id. Detected by type assertion on Searcher.
type IDResolver interface {
	FetchByID(ctx context.Context, id string) (*models.CatalogItem, error)
}

// LocalizationStore fetches stored localized text in bulk.
type LocalizationStore interface {
	BulkGet(ctx context.Context, itemIDs, locales []string) (map[string]map[string]models.LocalizedText, error)
}

// Pipeline turns a query into an ordered, deduplicated, filtered result
// set. Every Build call is an independent run with no cross-call state.
type Pipeline struct {
	Providers     Searcher
	Localizations LocalizationStore // nil disables localized text lookup
	RRFK          int               // 0 means rank.DefaultRRFK
}

func NewPipeline(providers Searcher, localizations LocalizationStore) *Pipeline {
	return &Pipeline{Providers: providers, Localizations: localizations}
}

// Build runs COLLECT -> FUSE -> FILTER -> RELAX -> ASSEMBLE for one request.
// Zero collected signals is a normal outcome: an empty result with zero
// debug counters, not an error.
func (p *Pipeline) Build(ctx context.Context, req Request) (models.Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return emptyResult(), nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	wantType := req.Type
	if wantType == "" {
		wantType = models.TypeAny
	}

	// A provider-qualified id ("tmdb:movie/603") pins the seed through the
	// owning provider's direct lookup; its title then drives the fan-out.
	// Lookup failures fall through to treating the query as free text.
	var seed *models.CatalogItem
	if res, ok := p.Providers.(IDResolver); ok && strings.ContainsRune(query, ':') {
		if it, err := res.FetchByID(ctx, query); err == nil && it != nil {
			seed = it
			query = it.Title
		}
	}

	// COLLECT
	c := p.collect(ctx, query, wantType, seed)
	if len(c.lists) == 0 || len(c.candidates) == 0 {
		return emptyResult(), nil
	}

	// FUSE
	fused := rank.FuseRRF(c.lists, p.RRFK)

	// FILTER + RELAX
	policy := strictPolicy(wantType)
	survivors := applyFilter(c, fused, policy)
	relaxations := 0
	for _, step := range relaxLadder {
		if len(survivors) >= limit {
			break
		}
		policy = step.apply(policy)
		survivors = applyFilter(c, fused, policy)
		relaxations++
		log.Printf("[pipeline] relaxed filters (%s), %d candidates", step.name, len(survivors))
	}

	// ASSEMBLE
	items := p.assemble(ctx, c, fused, survivors, req.Locale)
	debug := models.ResultDebug{TotalCandidates: len(items), Relaxations: relaxations}
	if len(items) > limit {
		items = items[:limit]
	}
	return models.Result{Items: items, Debug: debug}, nil
}

func emptyResult() models.Result {
	return models.Result{Items: []models.RecommendationItem{}}
}

// collected is everything COLLECT hands downstream: the identity-resolved
// candidate map, the signal lists over identity keys, and the resolved seed.
type collected struct {
	candidates map[string]models.CatalogItem // identity key -> merged item
	lists      []models.RankedList
	seedKey    string
}

// identityKey resolves cross-provider identity without shared foreign ids:
// two entries with the same normalized title, year and type are the same
// catalog entry.
func identityKey(it models.CatalogItem) string {
	return fmt.Sprintf("%s|%d|%s", textnorm.Normalize(it.Title), it.Year, it.Type)
}

func (p *Pipeline) collect(ctx context.Context, query string, t models.MediaType, seed *models.CatalogItem) collected {
	results := p.Providers.Search(ctx, query, provider.SearchOptions{Type: t, Limit: perProviderFetch})

	c := collected{candidates: make(map[string]models.CatalogItem)}
	if seed != nil {
		c.seedKey = identityKey(*seed)
		c.candidates[c.seedKey] = *seed
	}
	for _, pr := range results {
		if len(pr.Items) == 0 {
			continue
		}
		entries := make([]models.RankedEntry, 0, len(pr.Items))
		for i, it := range pr.Items {
			key := identityKey(it)
			if existing, ok := c.candidates[key]; ok {
				c.candidates[key] = mergeCandidate(existing, it)
			} else {
				c.candidates[key] = it
			}
			entries = append(entries, models.RankedEntry{ID: key, Score: float64(len(pr.Items) - i)})
		}
		c.lists = append(c.lists, models.RankedList{Signal: pr.Provider, Entries: entries})
	}

	if c.seedKey == "" {
		c.seedKey = resolveSeed(c.candidates, query)
	}
	if list, ok := genreSimilarityList(c.candidates, c.seedKey); ok {
		c.lists = append(c.lists, list)
	}
	return c
}

// mergeCandidate fills gaps when two providers describe the same entry:
// keep the first title, take the longer synopsis, union genres, prefer any
// present popularity/year/thumb.
func mergeCandidate(base, incoming models.CatalogItem) models.CatalogItem {
	if base.Year == 0 && incoming.Year > 0 {
		base.Year = incoming.Year
	}
	if base.PopularityRaw == nil && incoming.PopularityRaw != nil {
		base.PopularityRaw = incoming.PopularityRaw
	}
	if len(incoming.Synopsis) > len(base.Synopsis) {
		base.Synopsis = incoming.Synopsis
	}
	if base.ThumbKey == "" {
		base.ThumbKey = incoming.ThumbKey
	}
	for _, g := range incoming.Genres {
		if !containsFold(base.Genres, g) {
			base.Genres = append(base.Genres, g)
		}
	}
	if len(base.Creators) == 0 {
		base.Creators = incoming.Creators
	}
	if len(base.Cast) == 0 {
		base.Cast = incoming.Cast
	}
	return base
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// resolveSeed identifies which candidate the user actually typed, so it can
// seed the similarity signal and be excluded from its own recommendations.
// Exact normalized-title match wins; among several, highest popularity.
func resolveSeed(candidates map[string]models.CatalogItem, query string) string {
	nq := textnorm.Normalize(query)
	if nq == "" {
		return ""
	}
	bestKey := ""
	bestPop := -1.0
	for key, it := range candidates {
		if textnorm.Normalize(it.Title) != nq {
			continue
		}
		pop := 0.0
		if it.PopularityRaw != nil {
			pop = *it.PopularityRaw
		}
		if bestKey == "" || pop > bestPop || (pop == bestPop && key < bestKey) {
			bestKey, bestPop = key, pop
		}
	}
	return bestKey
}

// genreSimilarityList builds the supplemental signal: candidates ordered by
// genre overlap with the seed item. Needs a seed with at least one genre.
func genreSimilarityList(candidates map[string]models.CatalogItem, seedKey string) (models.RankedList, bool) {
	seed, ok := candidates[seedKey]
	if !ok || len(seed.Genres) == 0 {
		return models.RankedList{}, false
	}

	seedGenres := make(map[string]struct{}, len(seed.Genres))
	for _, g := range seed.Genres {
		seedGenres[strings.ToLower(g)] = struct{}{}
	}

	type scored struct {
		key     string
		overlap int
		pop     float64
	}
	var ranked []scored
	for key, it := range candidates {
		if key == seedKey {
			continue
		}
		overlap := 0
		for _, g := range it.Genres {
			if _, ok := seedGenres[strings.ToLower(g)]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		pop := 0.0
		if it.PopularityRaw != nil {
			pop = *it.PopularityRaw
		}
		ranked = append(ranked, scored{key: key, overlap: overlap, pop: pop})
	}
	if len(ranked) == 0 {
		return models.RankedList{}, false
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].overlap != ranked[j].overlap {
			return ranked[i].overlap > ranked[j].overlap
		}
		if ranked[i].pop != ranked[j].pop {
			return ranked[i].pop > ranked[j].pop
		}
		return ranked[i].key < ranked[j].key
	})

	entries := make([]models.RankedEntry, len(ranked))
	for i, s := range ranked {
		entries[i] = models.RankedEntry{ID: s.key, Score: float64(s.overlap)}
	}
	return models.RankedList{Signal: "genre-similarity", Entries: entries}, true
}

// assemble blends fused rank with normalized popularity, resolves localized
// text through the fallback chain, sorts with the deterministic tie-break
// and returns the full (pre-truncation) ordered set.
func (p *Pipeline) assemble(ctx context.Context, c collected, fused map[string]float64, survivors []string, reqLocale string) []models.RecommendationItem {
	if len(survivors) == 0 {
		return []models.RecommendationItem{}
	}

	items := make([]models.CatalogItem, len(survivors))
	for i, key := range survivors {
		items[i] = c.candidates[key]
	}
	pops := rank.NormalizePopularity(items)

	maxFused := 0.0
	for _, key := range survivors {
		if fused[key] > maxFused {
			maxFused = fused[key]
		}
	}
	if maxFused == 0 {
		maxFused = 1
	}

	chain := locale.Chain(reqLocale)
	localized := p.lookupLocalizations(ctx, items, chain)

	out := make([]models.RecommendationItem, len(survivors))
	for i, key := range survivors {
		it := items[i]
		usedLocale := locale.Default
		if recs, ok := localized[it.ID]; ok {
			for _, loc := range chain {
				rec, ok := recs[loc]
				if !ok {
					continue
				}
				if rec.Title != "" {
					it.Title = rec.Title
				}
				if rec.Synopsis != "" {
					it.Synopsis = rec.Synopsis
				}
				usedLocale = loc
				break
			}
		}
		score := fusedWeight*(fused[key]/maxFused) + popularityWeight*(pops[i]/100)
		out[i] = models.RecommendationItem{CatalogItem: it, Score: score, Locale: usedLocale}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		pi, pj := 0.0, 0.0
		if out[i].PopularityRaw != nil {
			pi = *out[i].PopularityRaw
		}
		if out[j].PopularityRaw != nil {
			pj = *out[j].PopularityRaw
		}
		if pi != pj {
			return pi > pj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (p *Pipeline) lookupLocalizations(ctx context.Context, items []models.CatalogItem, chain []string) map[string]map[string]models.LocalizedText {
	if p.Localizations == nil {
		return nil
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	localized, err := p.Localizations.BulkGet(ctx, ids, chain)
	if err != nil {
		// missing localized text degrades to provider defaults
		log.Printf("[pipeline] localization lookup: %v", err)
		return nil
	}
	return localized
}
