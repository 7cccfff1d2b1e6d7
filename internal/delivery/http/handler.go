package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/productscout/backend/internal/domain"
	"github.com/productscout/backend/internal/usecase"
)

const recentSearchLimit = 20

// Handler holds dependencies for HTTP handlers. history and keywords may be
// nil when the corresponding integration is not configured; the endpoints
// degrade instead of the server refusing to start.
type Handler struct {
	search   *usecase.SearchService
	keywords *usecase.KeywordService
	history  domain.SearchHistoryRepository
}

// NewHandler creates a new HTTP handler
func NewHandler(search *usecase.SearchService, keywords *usecase.KeywordService, history domain.SearchHistoryRepository) *Handler {
	return &Handler{
		search:   search,
		keywords: keywords,
		history:  history,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "productscout-backend",
		"version": "1.0.0",
	})
}

// Search handles product opportunity searches. Validation lives here, at
// the boundary: the pipeline itself assumes pre-validated non-empty inputs.
func (h *Handler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' must be at least 2 characters"})
		return
	}

	marketplaces, err := parseMarketplaces(c.Query("marketplaces"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := h.search.RunSearch(c.Request.Context(), query, marketplaces, filters)

	// Persistence is best-effort: a history failure is logged, never
	// surfaced to the caller.
	if h.history != nil {
		if err := h.history.SaveSearch(c.Request.Context(), query, marketplaces, filters, results); err != nil {
			log.Printf("[HTTP] failed to persist search results: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
	})
}

// SavedSearches returns the most recent searches, newest first.
func (h *Handler) SavedSearches(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"searches": []domain.SavedSearch{}})
		return
	}

	searches, err := h.history.RecentSearches(c.Request.Context(), recentSearchLimit)
	if err != nil {
		log.Printf("[HTTP] failed to load recent searches: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load saved searches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"searches": searches})
}

// GenerateKeywords handles AI listing-copy generation requests.
func (h *Handler) GenerateKeywords(c *gin.Context) {
	if h.keywords == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "keyword generation is not configured"})
		return
	}

	var request domain.KeywordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	suggestion, err := h.keywords.GenerateKeywords(c.Request.Context(), request)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrUnknownMarketplace) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		log.Printf("[HTTP] keyword generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "keyword generation failed"})
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

// parseMarketplaces parses the comma-separated marketplace selection.
// Unknown names are dropped; an empty parameter selects every marketplace.
func parseMarketplaces(raw string) ([]domain.Marketplace, error) {
	if strings.TrimSpace(raw) == "" {
		selected := make([]domain.Marketplace, len(domain.AllMarketplaces))
		copy(selected, domain.AllMarketplaces)
		return selected, nil
	}

	var selected []domain.Marketplace
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if marketplace, ok := domain.ParseMarketplace(name); ok {
			selected = append(selected, marketplace)
		}
	}

	if len(selected) == 0 {
		return nil, errors.New("no supported marketplace selected")
	}
	return selected, nil
}

// parseFilters parses the optional numeric filter parameters.
func parseFilters(c *gin.Context) (domain.SearchFilters, error) {
	var filters domain.SearchFilters

	assign := []struct {
		param  string
		target **float64
	}{
		{"minPrice", &filters.MinPrice},
		{"maxPrice", &filters.MaxPrice},
		{"minRating", &filters.MinRating},
		{"cogs", &filters.COGS},
	}

	for _, entry := range assign {
		raw := c.Query(entry.param)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.SearchFilters{}, errors.New("parameter '" + entry.param + "' must be a number")
		}
		*entry.target = &value
	}

	return filters, nil
}
