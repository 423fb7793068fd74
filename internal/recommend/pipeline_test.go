package recommend

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediascout/internal/provider"
	"mediascout/pkg/models"
	"mediascout/pkg/textnorm"
)

// fakeSearcher replays canned fan-out results.
type fakeSearcher struct {
	results   []provider.ProviderResult
	lastQuery string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, opts provider.SearchOptions) []provider.ProviderResult {
	f.lastQuery = query
	return f.results
}

// fakeResolvingSearcher additionally serves direct id lookups.
type fakeResolvingSearcher struct {
	fakeSearcher
	byID map[string]models.CatalogItem
}

func (f *fakeResolvingSearcher) FetchByID(ctx context.Context, id string) (*models.CatalogItem, error) {
	it, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("no item %q", id)
	}
	return &it, nil
}

// fakeStore serves canned localization records.
type fakeStore struct {
	records map[string]map[string]models.LocalizedText
}

func (f *fakeStore) BulkGet(ctx context.Context, itemIDs, locales []string) (map[string]map[string]models.LocalizedText, error) {
	return f.records, nil
}

func pop(v float64) *float64 { return &v }

func movie(source, id, title string, popularity float64) models.CatalogItem {
	return models.CatalogItem{
		ID:            fmt.Sprintf("%s:%s", source, id),
		Title:         title,
		Type:          models.TypeMovie,
		Year:          2000,
		Genres:        []string{"Action", "Sci-Fi"},
		PopularityRaw: pop(popularity),
		Synopsis:      "a synopsis",
		Source:        source,
	}
}

var sagaWords = []string{
	"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel",
	"India", "Juliet", "Kilo", "Lima", "Mike", "November", "Oscar", "Papa",
}

func distinctMovies(source string, n int) []models.CatalogItem {
	// titles chosen so no two share a franchise key
	items := make([]models.CatalogItem, n)
	for i := range items {
		items[i] = movie(source, fmt.Sprintf("%d", i),
			fmt.Sprintf("Saga %s", sagaWords[i%len(sagaWords)]), 5+float64(i)*0.1)
	}
	return items
}

func TestBuildEmptyQuery(t *testing.T) {
	p := NewPipeline(&fakeSearcher{}, nil)
	res, err := p.Build(context.Background(), Request{Query: "   "})

	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.Debug.TotalCandidates)
	assert.Zero(t, res.Debug.Relaxations)
}

func TestBuildNoCandidatesIsNormalOutcome(t *testing.T) {
	p := NewPipeline(&fakeSearcher{results: []provider.ProviderResult{
		{Provider: "a"},
		{Provider: "b"},
	}}, nil)

	res, err := p.Build(context.Background(), Request{Query: "obscure"})

	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.Debug.TotalCandidates)
}

func TestBuildSingleSurvivingProvider(t *testing.T) {
	p := NewPipeline(&fakeSearcher{results: []provider.ProviderResult{
		{Provider: "alive", Items: distinctMovies("alive", 5)},
		{Provider: "dead"}, // failed/timed out upstream
	}}, nil)

	res, err := p.Build(context.Background(), Request{Query: "something", Limit: 10})

	require.NoError(t, err)
	require.NotEmpty(t, res.Items)
	assert.Equal(t, 5, res.Debug.TotalCandidates)
	for _, it := range res.Items {
		assert.Equal(t, "alive", it.Source)
	}
}

func TestBuildExactLimitSortedNoFranchiseDuplicates(t *testing.T) {
	items := distinctMovies("p1", 14)
	// two franchise siblings; only the stronger may survive
	items = append(items,
		movie("p1", "d1", "Dune", 9.0),
		movie("p1", "d2", "Dune Part 2", 8.0),
	)

	p := NewPipeline(&fakeSearcher{results: []provider.ProviderResult{
		{Provider: "p1", Items: items},
	}}, nil)

	res, err := p.Build(context.Background(), Request{Query: "unrelated query", Limit: 10})

	require.NoError(t, err)
	require.Len(t, res.Items, 10)
	assert.Zero(t, res.Debug.Relaxations)

	seen := make(map[string]bool)
	for i, it := range res.Items {
		if i > 0 {
			assert.GreaterOrEqual(t, res.Items[i-1].Score, it.Score, "scores must be non-increasing")
		}
		assert.GreaterOrEqual(t, it.Score, 0.0)
		if fk := textnorm.FranchiseKey(it.Title); fk != "" {
			assert.False(t, seen[fk], "duplicate franchise key %q", fk)
			seen[fk] = true
		}
	}
}

func TestBuildFranchiseDedupKeepsStrongest(t *testing.T) {
	p := NewPipeline(&fakeSearcher{results: []provider.ProviderResult{
		{Provider: "p1", Items: []models.CatalogItem{
			movie("p1", "1", "Rocky", 9.0),
			movie("p1", "2", "Rocky II", 7.0),
			movie("p1", "3", "Creed", 6.0),
		}},
	}}, nil)

	res, err := p.Build(context.Background(), Request{Query: "boxing", Limit: 2})

	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	// Rocky ranks above Rocky II on every axis, so dedup must keep Rocky
	assert.Equal(t, "Rocky", res.Items[0].Title)
	assert.Equal(t, "Creed", res.Items[1].Title)
}

func TestBuildRelaxationBackfills(t *testing.T) {
	p := NewPipeline(&fakeSearcher{results: []provider.ProviderResult{
		{Provider: "p1", Items: []models.CatalogItem{
			movie("p1", "1", "Rocky", 9.0),
			movie("p1", "2", "Rocky II", 7.0),
			movie("p1", "3", "Creed", 6.0),
		}},
	}}, nil)

	res, err := p.Build(context.Background(), Request{Query: "boxing", Limit: 5})

	require.NoError(t, err)
	assert.Greater(t, res.Debug.Relaxations, 0, "starved result set must trigger relaxation")
	assert.Len(t, res.Items, 3, "relaxation readmits the franchise sibling")

	titles := make([]string, len(res.Items))
	for i, it := range res.Items {
		titles[i] = it.Title
	}
	assert.Contains(t, titles, "Rocky II")
}

func TestBuildScriptFilterRejects(t *testing.T) {
	items := distinctMovies("p1", 4)
	items = append(items, movie("p1", "jp", "進撃の巨人", 9.9))

	p := NewPipeline(&fakeSearcher{results: []provider.ProviderResult{
		{Provider: "p1", Items: items},
	}}, nil)

	res, err := p.Build(context.Background(), Request{Query: "whatever", Limit: 4})

	require.NoError(t, err)
	require.Len(t, res.Items, 4)
	for _, it := range res.Items {
		assert.True(t, textnorm.ScriptAdmissible(it.Title))
	}
}

func TestBuildExcludesSeed(t *testing.T) {
	p := NewPipeline(&fakeSearcher{results: []provider.ProviderResult{
		{Provider: "p1", Items: []models.CatalogItem{
			movie("p1", "1", "The Matrix", 9.0),
			movie("p1", "2", "Inception", 8.0),
			movie("p1", "3", "Equilibrium", 6.0),
		}},
	}}, nil)

	res, err := p.Build(context.Background(), Request{Query: "The Matrix", Limit: 10})

	require.NoError(t, err)
	require.NotEmpty(t, res.Items)
	for _, it := range res.Items {
		assert.NotEqual(t, "The Matrix", it.Title, "seed item must not recommend itself")
	}
}

func TestBuildQualifiedIDResolvesSeed(t *testing.T) {
	seed := movie("p1", "603", "The Matrix", 9.0)
	searcher := &fakeResolvingSearcher{
		fakeSearcher: fakeSearcher{results: []provider.ProviderResult{
			{Provider: "p1", Items: []models.CatalogItem{
				seed,
				movie("p1", "2", "Inception", 8.0),
				movie("p1", "3", "Equilibrium", 6.0),
			}},
		}},
		byID: map[string]models.CatalogItem{"p1:603": seed},
	}
	p := NewPipeline(searcher, nil)

	res, err := p.Build(context.Background(), Request{Query: "p1:603", Limit: 10})

	require.NoError(t, err)
	require.NotEmpty(t, res.Items)
	assert.Equal(t, "The Matrix", searcher.lastQuery, "resolved title drives the fan-out")
	for _, it := range res.Items {
		assert.NotEqual(t, "The Matrix", it.Title, "resolved seed must not recommend itself")
	}
}

func TestBuildUnresolvableIDFallsBackToFreeText(t *testing.T) {
	searcher := &fakeResolvingSearcher{
		fakeSearcher: fakeSearcher{results: []provider.ProviderResult{
			{Provider: "p1", Items: distinctMovies("p1", 3)},
		}},
	}
	p := NewPipeline(searcher, nil)

	res, err := p.Build(context.Background(), Request{Query: "Mission: Impossible", Limit: 10})

	require.NoError(t, err)
	require.NotEmpty(t, res.Items)
	assert.Equal(t, "Mission: Impossible", searcher.lastQuery)
}

func TestBuildTypeFilter(t *testing.T) {
	book := models.CatalogItem{
		ID: "ol:1", Title: "Dune Novel Companion", Type: models.TypeBook,
		PopularityRaw: pop(7), Source: "ol",
	}
	p := NewPipeline(&fakeSearcher{results: []provider.ProviderResult{
		{Provider: "p1", Items: append(distinctMovies("p1", 12), book)},
	}}, nil)

	res, err := p.Build(context.Background(), Request{Query: "dune", Limit: 10, Type: models.TypeMovie})

	require.NoError(t, err)
	require.NotEmpty(t, res.Items)
	for _, it := range res.Items {
		assert.Equal(t, models.TypeMovie, it.Type)
	}
}

func TestBuildCrossProviderIdentityFuses(t *testing.T) {
	// the same entry from two providers must fuse into one candidate
	// that outranks a single-provider entry at the same ranks
	a := movie("a", "1", "Shared Hit", 8.0)
	b := movie("b", "9", "Shared Hit", 8.0)
	other := movie("a", "2", "Lone Entry", 8.0)

	p := NewPipeline(&fakeSearcher{results: []provider.ProviderResult{
		{Provider: "a", Items: []models.CatalogItem{other, a}},
		{Provider: "b", Items: []models.CatalogItem{b}},
	}}, nil)

	res, err := p.Build(context.Background(), Request{Query: "hits", Limit: 10})

	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Shared Hit", res.Items[0].Title)
}

func TestBuildLocalizedTextFallback(t *testing.T) {
	localized := movie("p1", "1", "The Matrix", 9.0)
	plain := movie("p1", "2", "Inception", 8.0)

	store := &fakeStore{records: map[string]map[string]models.LocalizedText{
		localized.ID: {
			"de": {ItemID: localized.ID, Locale: "de", Synopsis: "Ein Hacker entdeckt die Wahrheit."},
		},
	}}

	p := NewPipeline(&fakeSearcher{results: []provider.ProviderResult{
		{Provider: "p1", Items: []models.CatalogItem{localized, plain}},
	}}, store)

	res, err := p.Build(context.Background(), Request{Query: "mind benders", Locale: "de", Limit: 10})

	require.NoError(t, err)
	require.Len(t, res.Items, 2)

	byTitle := map[string]models.RecommendationItem{}
	for _, it := range res.Items {
		byTitle[it.Title] = it
	}
	require.Contains(t, byTitle, "The Matrix")
	require.Contains(t, byTitle, "Inception")
	assert.Equal(t, "de", byTitle["The Matrix"].Locale)
	assert.Equal(t, "Ein Hacker entdeckt die Wahrheit.", byTitle["The Matrix"].Synopsis)
	assert.Equal(t, "en", byTitle["Inception"].Locale)
	assert.Equal(t, "a synopsis", byTitle["Inception"].Synopsis)
}

func TestBuildDeterministic(t *testing.T) {
	searcher := &fakeSearcher{results: []provider.ProviderResult{
		{Provider: "p1", Items: distinctMovies("p1", 8)},
		{Provider: "p2", Items: distinctMovies("p2", 8)},
	}}
	p := NewPipeline(searcher, nil)
	req := Request{Query: "saga", Limit: 10}

	first, err := p.Build(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := p.Build(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
