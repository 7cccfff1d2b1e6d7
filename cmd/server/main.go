package main

import (
	"context"
	"fmt"
	"log"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/productscout/backend/config"
	httpDelivery "github.com/productscout/backend/internal/delivery/http"
	"github.com/productscout/backend/internal/domain"
	"github.com/productscout/backend/internal/infrastructure/amazon"
	"github.com/productscout/backend/internal/infrastructure/cache"
	"github.com/productscout/backend/internal/infrastructure/flipkart"
	"github.com/productscout/backend/internal/infrastructure/history"
	"github.com/productscout/backend/internal/infrastructure/meesho"
	"github.com/productscout/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ProductScout Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Fee schedule is validated eagerly: a marketplace without a fee
	// profile must kill the process here, not a request later.
	feeSchedule, err := usecase.NewFeeSchedule(feeProfiles(cfg), domain.AllMarketplaces)
	if err != nil {
		log.Fatalf("Invalid fee schedule: %v", err)
	}

	// Marketplace connector registry. Adding a source means adding an
	// entry here; the orchestration never changes.
	amazonClient := amazon.NewClient(amazon.Config{
		AccessKey:  cfg.Amazon.AccessKey,
		SecretKey:  cfg.Amazon.SecretKey,
		PartnerTag: cfg.Amazon.PartnerTag,
		Host:       cfg.Amazon.Host,
		Region:     cfg.Amazon.Region,
	})
	if cfg.Server.Environment == "development" {
		amazonClient.SetDebug(true)
		log.Printf("Amazon client debug mode enabled")
	}
	if cfg.Amazon.AccessKey != "" {
		log.Printf("Amazon PA-API configured: %s (%s)", cfg.Amazon.Host, cfg.Amazon.Region)
	} else {
		log.Printf("WARNING: Amazon PA-API credentials not configured - amazon searches will return no results")
	}

	connectors := map[domain.Marketplace]domain.Connector{
		domain.MarketplaceAmazon:   amazonClient,
		domain.MarketplaceFlipkart: flipkart.NewClient(),
		domain.MarketplaceMeesho: meesho.NewClient(meesho.Config{
			TrendingURL: cfg.Meesho.TrendingURL,
			UserAgent:   cfg.Meesho.UserAgent,
		}),
	}

	searchService := usecase.NewSearchService(
		connectors,
		usecase.NewScorer(feeSchedule),
		usecase.SearchServiceConfig{
			ConnectorTimeout: cfg.Search.ConnectorTimeout,
			MaxResults:       cfg.Search.MaxResults,
		},
	)
	log.Printf("Search: timeout=%s, max_results=%d, connectors=%d",
		cfg.Search.ConnectorTimeout, cfg.Search.MaxResults, len(connectors))

	// Search history is optional: no database URL means searches simply
	// are not persisted.
	var historyRepo domain.SearchHistoryRepository
	if cfg.Database.URL != "" {
		pool, err := history.Connect(context.Background(), cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()

		repo := history.NewRepository(pool)
		if err := repo.InitSchema(context.Background()); err != nil {
			log.Fatalf("Failed to initialize history schema: %v", err)
		}
		historyRepo = repo
		log.Printf("Search history persistence enabled")
	} else {
		log.Printf("WARNING: database URL not configured - search history disabled")
	}

	// Keyword generation is optional as well.
	var keywordService *usecase.KeywordService
	if cfg.OpenAI.APIKey != "" {
		keywordService = usecase.NewKeywordService(
			openai.NewClient(cfg.OpenAI.APIKey),
			cache.NewMemoryCache(),
			usecase.KeywordServiceConfig{
				Model:       cfg.OpenAI.Model,
				Temperature: cfg.OpenAI.Temperature,
				CacheTTL:    cfg.OpenAI.CacheTTL,
			},
		)
		log.Printf("Keyword generation enabled: model=%s", cfg.OpenAI.Model)
	} else {
		log.Printf("WARNING: OpenAI API key not configured - keyword generation disabled")
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService, keywordService, historyRepo)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// feeProfiles converts the configured fee table into the usecase schedule input.
func feeProfiles(cfg *config.Config) map[domain.Marketplace]usecase.FeeProfile {
	profiles := make(map[domain.Marketplace]usecase.FeeProfile, len(cfg.Fees))
	for name, profile := range cfg.Fees {
		marketplace, ok := domain.ParseMarketplace(name)
		if !ok {
			log.Printf("WARNING: fee profile for unsupported marketplace %q ignored", name)
			continue
		}
		profiles[marketplace] = usecase.FeeProfile{
			ReferralFeePct:   profile.ReferralFeePct,
			ClosingFee:       profile.ClosingFee,
			ShippingEstimate: profile.ShippingEstimate,
		}
	}
	return profiles
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
