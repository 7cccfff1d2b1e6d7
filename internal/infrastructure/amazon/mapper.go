package amazon

import (
	"github.com/productscout/backend/internal/domain"
)

// searchItemsRequest is the PA-API v5 SearchItems request payload.
type searchItemsRequest struct {
	Keywords    string   `json:"Keywords"`
	SearchIndex string   `json:"SearchIndex"`
	ItemCount   int      `json:"ItemCount"`
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Resources   []string `json:"Resources"`
}

// searchItemsResponse mirrors the slice of the PA-API v5 response this
// connector consumes.
type searchItemsResponse struct {
	SearchResult struct {
		Items []paapiItem `json:"Items"`
	} `json:"SearchResult"`
}

type paapiItem struct {
	ASIN          string `json:"ASIN"`
	DetailPageURL string `json:"DetailPageURL"`
	ItemInfo      struct {
		Title struct {
			DisplayValue string `json:"DisplayValue"`
		} `json:"Title"`
		CustomerReviews struct {
			StarRating       *float64 `json:"StarRating"`
			TotalReviewCount *int     `json:"TotalReviewCount"`
		} `json:"CustomerReviews"`
	} `json:"ItemInfo"`
	Images struct {
		Primary struct {
			Large struct {
				URL string `json:"URL"`
			} `json:"Large"`
		} `json:"Primary"`
	} `json:"Images"`
	Offers struct {
		Listings []paapiListing `json:"Listings"`
	} `json:"Offers"`
	BrowseNodeInfo struct {
		BrowseNodes []paapiBrowseNode `json:"BrowseNodes"`
	} `json:"BrowseNodeInfo"`
}

type paapiListing struct {
	Price struct {
		Amount float64 `json:"Amount"`
	} `json:"Price"`
	MerchantInfo struct {
		Name string `json:"Name"`
	} `json:"MerchantInfo"`
}

type paapiBrowseNode struct {
	DisplayName string `json:"DisplayName"`
	SalesRank   *int   `json:"SalesRank"`
}

// normalizeItems converts PA-API items into the common product schema.
// Items without a discoverable price are dropped here and never reach the
// pipeline.
func normalizeItems(items []paapiItem) []domain.NormalizedProduct {
	products := make([]domain.NormalizedProduct, 0, len(items))

	for _, item := range items {
		price, ok := itemPrice(item)
		if !ok {
			continue
		}

		id := item.ASIN
		if id == "" {
			id = item.DetailPageURL
		}
		if id == "" {
			continue
		}

		title := item.ItemInfo.Title.DisplayValue
		if title == "" {
			title = item.DetailPageURL
		}
		if title == "" {
			continue
		}

		product := domain.NormalizedProduct{
			ID:           id,
			Marketplace:  domain.MarketplaceAmazon,
			Title:        title,
			ImageURL:     item.Images.Primary.Large.URL,
			Price:        price,
			Rating:       item.ItemInfo.CustomerReviews.StarRating,
			Reviews:      item.ItemInfo.CustomerReviews.TotalReviewCount,
			CategoryPath: categoryPath(item.BrowseNodeInfo.BrowseNodes),
		}

		if len(item.BrowseNodeInfo.BrowseNodes) > 0 {
			product.BestSellerRank = item.BrowseNodeInfo.BrowseNodes[0].SalesRank
		}

		// PA-API only exposes the buy-box merchant, so at most one seller is
		// observable per item.
		if len(item.Offers.Listings) > 0 && item.Offers.Listings[0].MerchantInfo.Name != "" {
			one := 1
			product.SellersCount = &one
		}

		products = append(products, product)
	}

	return products
}

// itemPrice extracts the buy-box price; items without one are unusable.
func itemPrice(item paapiItem) (float64, bool) {
	if len(item.Offers.Listings) == 0 {
		return 0, false
	}
	price := item.Offers.Listings[0].Price.Amount
	if price <= 0 {
		return 0, false
	}
	return price, true
}

// categoryPath flattens browse nodes into the ordered category names.
func categoryPath(nodes []paapiBrowseNode) []string {
	var path []string
	for _, node := range nodes {
		if node.DisplayName != "" {
			path = append(path, node.DisplayName)
		}
	}
	return path
}
