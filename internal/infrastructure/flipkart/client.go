package flipkart

import (
	"context"
	"fmt"
	"log"

	"github.com/productscout/backend/internal/domain"
)

// Client is the Flipkart marketplace connector.
//
// TODO: integrate the Flipkart Marketplace APIs once partner credentials are
// provisioned (https://seller.flipkart.com/sell-online/api-docs). Until then
// the connector serves a static placeholder catalog so the rest of the
// pipeline can be exercised end to end.
type Client struct {
	catalog []domain.NormalizedProduct
}

// NewClient creates a new Flipkart connector.
func NewClient() *Client {
	return &Client{catalog: placeholderCatalog()}
}

// SearchProducts implements domain.Connector.
func (c *Client) SearchProducts(ctx context.Context, query string) []domain.NormalizedProduct {
	select {
	case <-ctx.Done():
		return nil
	default:
	}

	log.Printf("[FLIPKART] query=%q serving %d placeholder items", query, len(c.catalog))

	// Copy so downstream stages can never mutate the shared catalog.
	products := make([]domain.NormalizedProduct, len(c.catalog))
	copy(products, c.catalog)
	return products
}

// placeholderCatalog builds ten representative listings with full optional
// fields so scoring paths are covered.
func placeholderCatalog() []domain.NormalizedProduct {
	products := make([]domain.NormalizedProduct, 0, 10)
	for i := 0; i < 10; i++ {
		rating := 4.1
		reviews := 120 + i*10
		rank := 100 + i
		sellers := 5

		products = append(products, domain.NormalizedProduct{
			ID:             fmt.Sprintf("flipkart-mock-%d", i+1),
			Marketplace:    domain.MarketplaceFlipkart,
			Title:          fmt.Sprintf("Flipkart Mock Product %d", i+1),
			ImageURL:       "https://rukminim1.flixcart.com/image/placeholder.jpg",
			Price:          float64(499 + i*25),
			Rating:         &rating,
			Reviews:        &reviews,
			CategoryPath:   []string{"Home", "Mock Category"},
			BestSellerRank: &rank,
			SellersCount:   &sellers,
		})
	}
	return products
}
