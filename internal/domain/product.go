package domain

// Marketplace identifies one of the supported e-commerce sources.
// The set is closed per deployment: adding a marketplace means adding a
// connector, a fee profile, and a new constant here.
type Marketplace string

const (
	MarketplaceAmazon   Marketplace = "amazon"
	MarketplaceFlipkart Marketplace = "flipkart"
	MarketplaceMeesho   Marketplace = "meesho"
)

// AllMarketplaces lists every marketplace supported by this deployment,
// in the order they are searched by default.
var AllMarketplaces = []Marketplace{
	MarketplaceAmazon,
	MarketplaceFlipkart,
	MarketplaceMeesho,
}

// ParseMarketplace returns the Marketplace for a lowercase identifier,
// or false if the identifier is not supported.
func ParseMarketplace(s string) (Marketplace, bool) {
	switch Marketplace(s) {
	case MarketplaceAmazon, MarketplaceFlipkart, MarketplaceMeesho:
		return Marketplace(s), true
	}
	return "", false
}

// NormalizedProduct is the canonical listing record every connector emits.
// ID, Marketplace, Title and Price are always present; everything else is
// optional. Optional numerics are pointers so that "unknown" stays distinct
// from a genuine zero (0 reviews is real data, nil reviews is no data).
type NormalizedProduct struct {
	ID             string      `json:"id"`
	Marketplace    Marketplace `json:"marketplace"`
	Title          string      `json:"title"`
	ImageURL       string      `json:"imageUrl,omitempty"`
	Price          float64     `json:"price"`
	Rating         *float64    `json:"rating,omitempty"`
	Reviews        *int        `json:"reviews,omitempty"`
	CategoryPath   []string    `json:"categoryPath,omitempty"`
	BestSellerRank *int        `json:"bestSellerRank,omitempty"`
	SellersCount   *int        `json:"sellersCount,omitempty"`
}

// ScoredProduct is a NormalizedProduct plus the derived opportunity signals.
// Scores are recomputed on every search and never persisted as authoritative
// state.
type ScoredProduct struct {
	NormalizedProduct
	DemandScore      float64 `json:"demandScore"`
	CompetitionScore float64 `json:"competitionScore"`
	ProfitEstimate   float64 `json:"profitEstimate"`
	ProfitMarginPct  float64 `json:"profitMarginPct"`
	OpportunityScore float64 `json:"opportunityScore"`
}

// SearchFilters carries the user-supplied numeric constraints for a search.
// Nil means the constraint is absent.
type SearchFilters struct {
	MinPrice  *float64 `json:"minPrice,omitempty"`
	MaxPrice  *float64 `json:"maxPrice,omitempty"`
	MinRating *float64 `json:"minRating,omitempty"`
	COGS      *float64 `json:"cogs,omitempty"`
}
