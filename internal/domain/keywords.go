package domain

// KeywordRequest asks the AI copy service for listing content for one product.
type KeywordRequest struct {
	ProductTitle string      `json:"productTitle" binding:"required"`
	Marketplace  Marketplace `json:"marketplace" binding:"required"`
	Language     string      `json:"language,omitempty"` // "en" or "hi", defaults to "en"
	Price        *float64    `json:"price,omitempty"`
	Rating       *float64    `json:"rating,omitempty"`
}

// KeywordSuggestion is the generated listing copy for one product.
type KeywordSuggestion struct {
	SEOTitle string   `json:"seoTitle"`
	Keywords []string `json:"keywords"`
	Bullets  []string `json:"bullets"`
}
