package domain

import (
	"context"
	"time"
)

// Connector is the pluggable integration for one marketplace. Implementations
// must never let an internal failure escape as an error that would abort the
// caller: on any failure (timeout, network error, parse error, missing
// credentials) they return an empty list. Records without a usable price are
// dropped before they leave the connector.
type Connector interface {
	SearchProducts(ctx context.Context, query string) []NormalizedProduct
}

// SavedSearch is one historical search request with the filters it ran under.
type SavedSearch struct {
	ID           string        `json:"id"`
	Query        string        `json:"query"`
	Marketplaces []Marketplace `json:"marketplaces,omitempty"`
	Filters      SearchFilters `json:"filters"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// SearchHistoryRepository persists search requests and their scored results.
// Persistence is best-effort: callers log failures and carry on.
type SearchHistoryRepository interface {
	SaveSearch(ctx context.Context, query string, marketplaces []Marketplace, filters SearchFilters, results []ScoredProduct) error
	RecentSearches(ctx context.Context, limit int) ([]SavedSearch, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
