package provider

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"mediascout/pkg/models"
	"mediascout/pkg/textnorm"
)

const (
	// MaxSuggestions bounds the autocomplete response size regardless of
	// the requested limit.
	MaxSuggestions = 12

	defaultSuggestLimit = 8
	minQueryRunes       = 2
	suggestCacheSize    = 512
)

// ProviderResult is one provider's contribution to a fan-out: its items in
// the provider's own relevance order. A failed or timed-out provider
// contributes an empty Items slice, never an error to the caller.
type ProviderResult struct {
	Provider string
	Items    []models.CatalogItem
}

// Registry fans a query out to every enabled provider concurrently. The
// enabled set is fixed at construction time; there is no ambient mutable
// provider state, so concurrent use needs no locking.
type Registry struct {
	providers []Provider

	// JoinTimeout is the shared deadline for one whole fan-out.
	JoinTimeout time.Duration

	// SuggestTimeout races the entire suggestion fan-out from outside,
	// strictly larger than any per-provider timeout, in case an upstream
	// ignores its own deadline.
	SuggestTimeout time.Duration

	cache *lru.Cache[string, []models.Suggestion]
}

func NewRegistry(providers ...Provider) *Registry {
	cache, _ := lru.New[string, []models.Suggestion](suggestCacheSize)
	return &Registry{
		providers:      providers,
		JoinTimeout:    DefaultTimeout + time.Second,
		SuggestTimeout: DefaultTimeout + 2*time.Second,
		cache:          cache,
	}
}

// Providers returns the names of the enabled providers, in fan-out order.
func (r *Registry) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Search runs the fan-out: every enabled provider that supports the
// requested type is queried concurrently under the shared deadline.
// Providers that error or overrun contribute zero items; partial-result
// tolerance is the contract, not a fallback. Results come back in
// registration order so downstream fusion is deterministic.
func (r *Registry) Search(ctx context.Context, query string, opts SearchOptions) []ProviderResult {
	ctx, cancel := context.WithTimeout(ctx, r.JoinTimeout)
	defer cancel()

	active := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Supports(opts.Type) {
			active = append(active, p)
		}
	}

	results := make([]ProviderResult, len(active))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range active {
		i, p := i, p
		g.Go(func() error {
			items, err := p.Search(gctx, query, opts)
			if err != nil {
				// one broken catalog must not starve the rest
				log.Printf("[registry] provider %s: %v", p.Name(), err)
				results[i] = ProviderResult{Provider: p.Name()}
				return nil
			}
			results[i] = ProviderResult{Provider: p.Name(), Items: items}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// FetchByID routes a provider-qualified id ("tmdb:movie/603") to the owning
// provider's direct lookup, when it has one.
func (r *Registry) FetchByID(ctx context.Context, id string) (*models.CatalogItem, error) {
	source, nativeID, ok := splitID(id)
	if !ok {
		return nil, fmt.Errorf("registry: malformed id %q", id)
	}
	for _, p := range r.providers {
		if p.Name() != source {
			continue
		}
		f, ok := p.(ByIDFetcher)
		if !ok {
			return nil, fmt.Errorf("registry: provider %s has no direct lookup", source)
		}
		return f.FetchByID(ctx, nativeID)
	}
	return nil, fmt.Errorf("registry: no enabled provider %q", source)
}

// Suggest is the autocomplete path. It must never surface an error to the
// caller: short queries, overall timeout, and internal failures all come
// back as an empty suggestion set.
func (r *Registry) Suggest(ctx context.Context, query string, opts SearchOptions) []models.Suggestion {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryRunes {
		return []models.Suggestion{}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	if limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	cacheKey := fmt.Sprintf("%s|%s|%d", textnorm.Normalize(query), opts.Type, limit)
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached
	}

	type outcome struct{ suggestions []models.Suggestion }
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[registry] suggest panic: %v", rec)
				done <- outcome{suggestions: []models.Suggestion{}}
			}
		}()
		results := r.Search(ctx, query, SearchOptions{Type: opts.Type, Limit: limit})
		done <- outcome{suggestions: projectSuggestions(results, limit)}
	}()

	select {
	case o := <-done:
		r.cache.Add(cacheKey, o.suggestions)
		return o.suggestions
	case <-time.After(r.SuggestTimeout):
		// in-flight provider calls are abandoned; their late results
		// are discarded with the goroutine
		log.Printf("[registry] suggest timed out for %q", query)
		return []models.Suggestion{}
	case <-ctx.Done():
		return []models.Suggestion{}
	}
}

// projectSuggestions flattens fan-out results into the lightweight
// autocomplete form, deduplicated by normalized title+type, capped at limit.
func projectSuggestions(results []ProviderResult, limit int) []models.Suggestion {
	out := make([]models.Suggestion, 0, limit)
	seen := make(map[string]struct{})
	for _, pr := range results {
		for _, it := range pr.Items {
			key := textnorm.Normalize(it.Title) + "|" + string(it.Type)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, models.SuggestionFrom(it))
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}

func splitID(id string) (source, nativeID string, ok bool) {
	for i := 0; i < len(id); i++ {
		if id[i] == ':' {
			return id[:i], id[i+1:], i > 0 && i < len(id)-1
		}
	}
	return "", "", false
}
