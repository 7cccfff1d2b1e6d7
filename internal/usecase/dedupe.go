package usecase

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/productscout/backend/internal/domain"
)

// Package-level compiled regex pattern for performance
var nonAlphanumericRunRegex = regexp.MustCompile(`[^a-z0-9]+`)

// DedupeProducts collapses near-duplicate listings in a single pass.
// Two products are the same listing when they share marketplace,
// case/punctuation-insensitive title, and price rounded to the nearest whole
// currency unit (sub-unit price differences are scrape noise, not distinct
// listings). The first-seen record wins, so the result is stable with
// respect to input order.
func DedupeProducts(products []domain.NormalizedProduct) []domain.NormalizedProduct {
	seen := make(map[string]bool, len(products))
	deduped := make([]domain.NormalizedProduct, 0, len(products))

	for _, product := range products {
		key := identityKey(product)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, product)
	}

	return deduped
}

// identityKey builds the dedupe key: "marketplace:normalized title:rounded price".
func identityKey(product domain.NormalizedProduct) string {
	return fmt.Sprintf("%s:%s:%d",
		product.Marketplace,
		normalizeTitleKey(product.Title),
		int(math.Round(product.Price)),
	)
}

// normalizeTitleKey lowercases a title, collapses every run of
// non-alphanumeric characters to a single space, and trims the ends.
func normalizeTitleKey(title string) string {
	normalized := strings.ToLower(title)
	normalized = nonAlphanumericRunRegex.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}
