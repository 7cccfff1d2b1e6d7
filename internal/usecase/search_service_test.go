package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/productscout/backend/internal/domain"
)

// connectorFunc adapts a function to domain.Connector for tests.
type connectorFunc func(ctx context.Context, query string) []domain.NormalizedProduct

func (f connectorFunc) SearchProducts(ctx context.Context, query string) []domain.NormalizedProduct {
	return f(ctx, query)
}

func staticConnector(products ...domain.NormalizedProduct) domain.Connector {
	return connectorFunc(func(ctx context.Context, query string) []domain.NormalizedProduct {
		return products
	})
}

// hungConnector never returns; the orchestrator must abandon it at the
// per-connector deadline.
func hungConnector() domain.Connector {
	return connectorFunc(func(ctx context.Context, query string) []domain.NormalizedProduct {
		select {} // block forever, ignoring the context
	})
}

func newTestService(t *testing.T, connectors map[domain.Marketplace]domain.Connector, config SearchServiceConfig) *SearchService {
	t.Helper()
	return NewSearchService(connectors, NewScorer(testFeeSchedule(t)), config)
}

func TestRunSearch_MergesAllConnectors(t *testing.T) {
	service := newTestService(t, map[domain.Marketplace]domain.Connector{
		domain.MarketplaceAmazon:   staticConnector(sample("a1", domain.MarketplaceAmazon, "Earbuds", 899)),
		domain.MarketplaceFlipkart: staticConnector(sample("f1", domain.MarketplaceFlipkart, "Earbuds", 899)),
	}, SearchServiceConfig{})

	results := service.RunSearch(context.Background(), "earbuds", domain.AllMarketplaces[:2], domain.SearchFilters{})

	require.Len(t, results, 2)
	seen := map[domain.Marketplace]bool{}
	for _, result := range results {
		seen[result.Marketplace] = true
	}
	assert.True(t, seen[domain.MarketplaceAmazon])
	assert.True(t, seen[domain.MarketplaceFlipkart])
}

func TestRunSearch_TimeoutIsolation(t *testing.T) {
	service := newTestService(t, map[domain.Marketplace]domain.Connector{
		domain.MarketplaceAmazon:   staticConnector(sample("a1", domain.MarketplaceAmazon, "Earbuds", 899)),
		domain.MarketplaceFlipkart: staticConnector(sample("f1", domain.MarketplaceFlipkart, "Earbuds", 899)),
		domain.MarketplaceMeesho:   hungConnector(),
	}, SearchServiceConfig{ConnectorTimeout: 150 * time.Millisecond})

	start := time.Now()
	results := service.RunSearch(context.Background(), "earbuds", domain.AllMarketplaces, domain.SearchFilters{})
	elapsed := time.Since(start)

	// The hung source is dropped, the healthy ones still contribute, and
	// total wall-clock time is bounded by the per-connector timeout rather
	// than the hung connector's latency.
	require.Len(t, results, 2)
	assert.Less(t, elapsed, time.Second)
}

func TestRunSearch_AllSourcesEmpty(t *testing.T) {
	service := newTestService(t, map[domain.Marketplace]domain.Connector{
		domain.MarketplaceAmazon:   staticConnector(),
		domain.MarketplaceFlipkart: staticConnector(),
	}, SearchServiceConfig{})

	results := service.RunSearch(context.Background(), "earbuds", domain.AllMarketplaces, domain.SearchFilters{})

	// Total source failure is an expected operating condition: a valid
	// empty list, never an error.
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRunSearch_UnregisteredMarketplaceSkipped(t *testing.T) {
	service := newTestService(t, map[domain.Marketplace]domain.Connector{
		domain.MarketplaceAmazon: staticConnector(sample("a1", domain.MarketplaceAmazon, "Earbuds", 899)),
	}, SearchServiceConfig{})

	results := service.RunSearch(context.Background(), "earbuds", domain.AllMarketplaces, domain.SearchFilters{})

	require.Len(t, results, 1)
	assert.Equal(t, "a1", results[0].ID)
}

func TestRunSearch_RanksByOpportunityDescending(t *testing.T) {
	strong := sample("strong", domain.MarketplaceAmazon, "Strong Seller", 899)
	strong.Reviews = intPtr(500)
	strong.Rating = floatPtr(5)

	weak := sample("weak", domain.MarketplaceAmazon, "Weak Seller", 899)

	service := newTestService(t, map[domain.Marketplace]domain.Connector{
		domain.MarketplaceAmazon: staticConnector(weak, strong),
	}, SearchServiceConfig{})

	results := service.RunSearch(context.Background(), "seller", []domain.Marketplace{domain.MarketplaceAmazon}, domain.SearchFilters{})

	require.Len(t, results, 2)
	assert.Equal(t, "strong", results[0].ID)
	assert.Equal(t, "weak", results[1].ID)
	assert.Greater(t, results[0].OpportunityScore, results[1].OpportunityScore)
}

func TestRunSearch_DeterministicTieBreak(t *testing.T) {
	// Identical signals and price but distinct titles: equal scores,
	// ordered by id ascending.
	first := sample("aaa", domain.MarketplaceAmazon, "Bottle Green", 500)
	second := sample("zzz", domain.MarketplaceAmazon, "Bottle Blue", 500)

	service := newTestService(t, map[domain.Marketplace]domain.Connector{
		domain.MarketplaceAmazon: staticConnector(second, first),
	}, SearchServiceConfig{})

	results := service.RunSearch(context.Background(), "bottle", []domain.Marketplace{domain.MarketplaceAmazon}, domain.SearchFilters{})

	require.Len(t, results, 2)
	assert.Equal(t, results[0].OpportunityScore, results[1].OpportunityScore)
	assert.Equal(t, "aaa", results[0].ID)
	assert.Equal(t, "zzz", results[1].ID)
}

func TestRunSearch_TruncatesToMaxResults(t *testing.T) {
	var products []domain.NormalizedProduct
	for i := 0; i < 20; i++ {
		products = append(products, sample(
			string(rune('a'+i)),
			domain.MarketplaceAmazon,
			"Distinct Product "+string(rune('a'+i)),
			float64(400+i),
		))
	}

	service := newTestService(t, map[domain.Marketplace]domain.Connector{
		domain.MarketplaceAmazon: staticConnector(products...),
	}, SearchServiceConfig{MaxResults: 5})

	results := service.RunSearch(context.Background(), "product", []domain.Marketplace{domain.MarketplaceAmazon}, domain.SearchFilters{})

	assert.Len(t, results, 5)
}

func TestRunSearch_PipelineDedupesAndFilters(t *testing.T) {
	service := newTestService(t, map[domain.Marketplace]domain.Connector{
		domain.MarketplaceAmazon: staticConnector(
			sample("keep", domain.MarketplaceAmazon, "Steel Bottle", 500),
			sample("dupe", domain.MarketplaceAmazon, "steel-bottle", 500.3),
			sample("too-cheap", domain.MarketplaceAmazon, "Plastic Bottle", 50),
		),
	}, SearchServiceConfig{})

	results := service.RunSearch(
		context.Background(),
		"bottle",
		[]domain.Marketplace{domain.MarketplaceAmazon},
		domain.SearchFilters{MinPrice: floatPtr(100)},
	)

	require.Len(t, results, 1)
	assert.Equal(t, "keep", results[0].ID)
}

func TestRunSearch_LateResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	slow := connectorFunc(func(ctx context.Context, query string) []domain.NormalizedProduct {
		<-release
		return []domain.NormalizedProduct{sample("late", domain.MarketplaceMeesho, "Late Item", 300)}
	})

	service := newTestService(t, map[domain.Marketplace]domain.Connector{
		domain.MarketplaceAmazon: staticConnector(sample("a1", domain.MarketplaceAmazon, "Earbuds", 899)),
		domain.MarketplaceMeesho: slow,
	}, SearchServiceConfig{ConnectorTimeout: 100 * time.Millisecond})

	results := service.RunSearch(context.Background(), "earbuds",
		[]domain.Marketplace{domain.MarketplaceAmazon, domain.MarketplaceMeesho}, domain.SearchFilters{})

	// Unblock the slow connector after the search already returned; its
	// result has nowhere to go and must not corrupt anything.
	close(release)

	require.Len(t, results, 1)
	assert.Equal(t, "a1", results[0].ID)
}
