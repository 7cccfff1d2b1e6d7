package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/productscout/backend/internal/domain"
)

// chatCompleter is the slice of the OpenAI client the keyword service uses.
// *openai.Client satisfies it; tests substitute a stub.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// KeywordServiceConfig holds configuration for the keyword service
type KeywordServiceConfig struct {
	Model       string
	Temperature float32
	CacheTTL    time.Duration
}

// KeywordService generates keyword-rich listing copy (SEO title, keywords,
// bullet points) for a product via the OpenAI chat API. Responses are cached
// per product/marketplace/language to keep token spend down.
type KeywordService struct {
	client      chatCompleter
	cache       domain.CacheRepository
	model       string
	temperature float32
	cacheTTL    time.Duration
}

// NewKeywordService creates a keyword service with dependencies.
func NewKeywordService(client chatCompleter, cache domain.CacheRepository, config KeywordServiceConfig) *KeywordService {
	model := config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = 0.6
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &KeywordService{
		client:      client,
		cache:       cache,
		model:       model,
		temperature: temperature,
		cacheTTL:    cacheTTL,
	}
}

const keywordSystemPrompt = "You are an e-commerce SEO assistant generating keyword-rich content " +
	"for Indian marketplaces. Respond in valid JSON with fields seoTitle (string), " +
	"keywords (array of strings) and bullets (array of strings)."

// GenerateKeywords produces listing copy for the given product.
// Flow: check cache -> call OpenAI -> parse JSON content -> cache -> return.
func (s *KeywordService) GenerateKeywords(ctx context.Context, request domain.KeywordRequest) (*domain.KeywordSuggestion, error) {
	if request.ProductTitle == "" {
		return nil, domain.ErrInvalidRequest
	}
	if _, ok := domain.ParseMarketplace(string(request.Marketplace)); !ok {
		return nil, domain.ErrUnknownMarketplace
	}

	language := request.Language
	if language == "" {
		language = "en"
	}

	cacheKey := fmt.Sprintf("keywords:%s:%s:%s", normalizeTitleKey(request.ProductTitle), request.Marketplace, language)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil && cached != nil {
		return cached, nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"productTitle": request.ProductTitle,
		"marketplace":  request.Marketplace,
		"language":     language,
		"price":        request.Price,
		"rating":       request.Rating,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeywordGenerationFailed, err)
	}

	completion, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: keywordSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeywordGenerationFailed, err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: empty completion", domain.ErrKeywordGenerationFailed)
	}

	var suggestion domain.KeywordSuggestion
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &suggestion); err != nil {
		return nil, fmt.Errorf("%w: unparsable completion: %v", domain.ErrKeywordGenerationFailed, err)
	}

	if err := s.cache.Set(ctx, cacheKey, &suggestion, s.cacheTTL); err != nil {
		// Caching is best-effort; the suggestion is still good.
		log.Printf("[KEYWORDS] failed to cache suggestion: %v", err)
	}

	return &suggestion, nil
}

// getFromCache retrieves a cached suggestion, tolerating the JSON round-trip
// the cache applies to stored values.
func (s *KeywordService) getFromCache(ctx context.Context, key string) (*domain.KeywordSuggestion, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if suggestion, ok := value.(*domain.KeywordSuggestion); ok {
		return suggestion, nil
	}
	if dataMap, ok := value.(map[string]interface{}); ok {
		return mapToKeywordSuggestion(dataMap), nil
	}
	return nil, domain.ErrCacheMiss
}

// mapToKeywordSuggestion converts a map (from JSON cache) to KeywordSuggestion
func mapToKeywordSuggestion(data map[string]interface{}) *domain.KeywordSuggestion {
	result := &domain.KeywordSuggestion{}

	if v, ok := data["seoTitle"].(string); ok {
		result.SEOTitle = v
	}
	if items, ok := data["keywords"].([]interface{}); ok {
		for _, item := range items {
			if v, ok := item.(string); ok {
				result.Keywords = append(result.Keywords, v)
			}
		}
	}
	if items, ok := data["bullets"].([]interface{}); ok {
		for _, item := range items {
			if v, ok := item.(string); ok {
				result.Bullets = append(result.Bullets, v)
			}
		}
	}

	return result
}
