package usecase

import (
	"github.com/productscout/backend/internal/domain"
)

// ApplyFilters keeps the products that pass every present constraint.
// It is a pure predicate filter: the input slice is not mutated and an
// absent constraint passes everything.
//
// A product with unknown rating is treated as rating 0 whenever a minimum
// rating is requested, so it fails any positive MinRating. Unknown quality
// data does not get a free pass on quality filters.
func ApplyFilters(products []domain.NormalizedProduct, filters domain.SearchFilters) []domain.NormalizedProduct {
	filtered := make([]domain.NormalizedProduct, 0, len(products))

	for _, product := range products {
		if filters.MinPrice != nil && product.Price < *filters.MinPrice {
			continue
		}
		if filters.MaxPrice != nil && product.Price > *filters.MaxPrice {
			continue
		}
		if filters.MinRating != nil {
			rating := 0.0
			if product.Rating != nil {
				rating = *product.Rating
			}
			if rating < *filters.MinRating {
				continue
			}
		}
		filtered = append(filtered, product)
	}

	return filtered
}
