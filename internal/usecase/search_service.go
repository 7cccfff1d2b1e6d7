package usecase

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/productscout/backend/internal/domain"
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	ConnectorTimeout time.Duration
	MaxResults       int
}

// SearchService fans a search query out to the selected marketplace
// connectors in parallel and runs the merged results through the scoring
// pipeline: dedupe -> filter -> score -> sort -> top N.
//
// The service holds no per-request state; every search is an isolated
// computation, so a single instance is safe for concurrent use.
type SearchService struct {
	connectors       map[domain.Marketplace]domain.Connector
	scorer           *Scorer
	connectorTimeout time.Duration
	maxResults       int
}

// NewSearchService creates a search service over the given connector
// registry. Connectors are registered per marketplace identifier, so
// sources can be added or removed without touching the orchestration.
func NewSearchService(
	connectors map[domain.Marketplace]domain.Connector,
	scorer *Scorer,
	config SearchServiceConfig,
) *SearchService {
	timeout := config.ConnectorTimeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}

	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	return &SearchService{
		connectors:       connectors,
		scorer:           scorer,
		connectorTimeout: timeout,
		maxResults:       maxResults,
	}
}

// RunSearch executes one search across the selected marketplaces and returns
// at most MaxResults products ranked by opportunity score, highest first.
//
// Inputs are assumed pre-validated (non-empty query, non-empty marketplace
// selection drawn from the supported set). A marketplace with no registered
// connector contributes nothing, as does any connector that fails or times
// out: partial and even total source failure yields a valid, possibly empty
// result list, never an error.
func (s *SearchService) RunSearch(
	ctx context.Context,
	query string,
	marketplaces []domain.Marketplace,
	filters domain.SearchFilters,
) []domain.ScoredProduct {
	merged := s.fanOut(ctx, query, marketplaces)

	deduped := DedupeProducts(merged)
	filtered := ApplyFilters(deduped, filters)
	scored := s.scorer.ScoreProducts(filtered, filters.COGS)

	rankProducts(scored)

	if len(scored) > s.maxResults {
		scored = scored[:s.maxResults]
	}

	log.Printf("[SEARCH] query=%q marketplaces=%d fetched=%d deduped=%d filtered=%d returned=%d",
		query, len(marketplaces), len(merged), len(deduped), len(filtered), len(scored))

	return scored
}

// fanOut invokes one connector per selected marketplace concurrently and
// concatenates whatever arrives within the per-connector timeout. Total
// wall-clock time is bounded by the timeout, not by the sum of connector
// latencies.
func (s *SearchService) fanOut(ctx context.Context, query string, marketplaces []domain.Marketplace) []domain.NormalizedProduct {
	perSource := make([][]domain.NormalizedProduct, len(marketplaces))

	var wg sync.WaitGroup
	for i, marketplace := range marketplaces {
		connector, ok := s.connectors[marketplace]
		if !ok {
			log.Printf("[SEARCH] no connector registered for %q, skipping", marketplace)
			continue
		}

		wg.Add(1)
		go func(slot int, marketplace domain.Marketplace, connector domain.Connector) {
			defer wg.Done()
			perSource[slot] = s.boundedSearch(ctx, marketplace, connector, query)
		}(i, marketplace, connector)
	}
	wg.Wait()

	var merged []domain.NormalizedProduct
	for _, products := range perSource {
		merged = append(merged, products...)
	}
	return merged
}

// boundedSearch runs one connector call with an independent deadline.
// A connector that misses the deadline is abandoned, not awaited: its
// eventual result lands in the buffered channel and is discarded. One slow
// or broken source therefore never blocks the overall search.
func (s *SearchService) boundedSearch(
	ctx context.Context,
	marketplace domain.Marketplace,
	connector domain.Connector,
	query string,
) []domain.NormalizedProduct {
	callCtx, cancel := context.WithTimeout(ctx, s.connectorTimeout)
	defer cancel()

	done := make(chan []domain.NormalizedProduct, 1)
	go func() {
		done <- connector.SearchProducts(callCtx, query)
	}()

	select {
	case products := <-done:
		return products
	case <-callCtx.Done():
		log.Printf("[SEARCH] %s connector exceeded %s, continuing without it", marketplace, s.connectorTimeout)
		return nil
	}
}

// rankProducts sorts in place: opportunity score descending, then price
// ascending, then id ascending. The secondary keys make the ordering fully
// deterministic for equal scores.
func rankProducts(products []domain.ScoredProduct) {
	sort.Slice(products, func(i, j int) bool {
		if products[i].OpportunityScore != products[j].OpportunityScore {
			return products[i].OpportunityScore > products[j].OpportunityScore
		}
		if products[i].Price != products[j].Price {
			return products[i].Price < products[j].Price
		}
		return products[i].ID < products[j].ID
	})
}
