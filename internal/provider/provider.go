// Package provider defines the uniform capability contract every catalog
// integration satisfies, the concrete upstream clients, and the registry
// that fans a query out across all enabled providers.
package provider

import (
	"context"
	"time"

	"mediascout/pkg/models"
)

// DefaultTimeout bounds a single upstream call. Providers apply it
// themselves so a hung catalog can never stall the fan-out join beyond it.
const DefaultTimeout = 4 * time.Second

// SearchOptions narrows a provider search.
type SearchOptions struct {
	Type  models.MediaType // TypeAny means no filter
	Limit int
}

// Provider is implemented by each external catalog integration. Each one is
// responsible for talking to its own upstream, enforcing its own per-call
// timeout, and mapping payloads into CatalogItem. A provider fails by
// returning an error; it never returns partial silent garbage.
type Provider interface {
	Name() string

	// Supports declares which content types this catalog is
	// authoritative for. The registry skips providers that do not
	// support the requested type.
	Supports(t models.MediaType) bool

	Search(ctx context.Context, query string, opts SearchOptions) ([]models.CatalogItem, error)
}

// ByIDFetcher is the optional direct-lookup capability. nativeID is the
// provider's own id, without the "source:" prefix.
type ByIDFetcher interface {
	FetchByID(ctx context.Context, nativeID string) (*models.CatalogItem, error)
}

// matchesType applies the request filter to an item, with the series/tv
// aliasing handled by models.MediaType.Matches.
func matchesType(it models.CatalogItem, want models.MediaType) bool {
	return it.Type.Matches(want)
}
