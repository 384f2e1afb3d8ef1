package main

import (
	"fmt"
	"log"
	"os"

	"github.com/petscout/backend/config"
	httpDelivery "github.com/petscout/backend/internal/delivery/http"
	"github.com/petscout/backend/internal/infrastructure/ai"
	"github.com/petscout/backend/internal/infrastructure/cache"
	"github.com/petscout/backend/internal/infrastructure/fetch"
	"github.com/petscout/backend/internal/infrastructure/groomers"
	"github.com/petscout/backend/internal/infrastructure/storefront"
	"github.com/petscout/backend/internal/infrastructure/websearch"
	"github.com/petscout/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debug := cfg.Server.Environment == "development"

	log.Printf("Starting PetScout Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()

	storeFetcher := fetch.NewClient(fetch.Options{
		MaxRetries:  cfg.Storefront.MaxRetries,
		Timeout:     cfg.Storefront.Timeout,
		RequestsSec: cfg.Storefront.RequestsSec,
		Debug:       debug,
	})
	storefrontClient := storefront.NewClient(storeFetcher, cfg.Storefront.BaseURL)
	log.Printf("Storefront configured: %s", cfg.Storefront.BaseURL)

	groomerFetcher := fetch.NewClient(fetch.Options{
		MaxRetries:  cfg.Storefront.MaxRetries,
		Timeout:     cfg.Storefront.Timeout,
		RequestsSec: cfg.Storefront.RequestsSec,
		Debug:       debug,
	})
	groomerClient := groomers.NewClient(groomerFetcher, cfg.Groomers.BaseURL, cfg.Groomers.DefaultLocation)
	log.Printf("Groomer marketplace configured: %s (location: %s)", cfg.Groomers.BaseURL, cfg.Groomers.DefaultLocation)

	searchFetcher := fetch.NewClient(fetch.Options{Timeout: cfg.Storefront.Timeout, Debug: debug})
	reviewSearcher := websearch.NewClient(searchFetcher, cfg.Search.BaseURL, cfg.Search.APIKey)
	if cfg.Search.APIKey == "" {
		log.Printf("WARNING: no web-search API key configured, review retrieval will use mock data")
	}

	completer := ai.NewCompleter(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)
	if cfg.AI.APIKey == "" {
		log.Printf("WARNING: no AI API key configured, scoring will use the rule-based strategy")
	} else {
		log.Printf("AI model configured: %s", cfg.AI.Model)
	}

	if debug {
		storefrontClient.SetDebug(true)
		groomerClient.SetDebug(true)
		reviewSearcher.SetDebug(true)
		completer.SetDebug(true)
	}

	// Initialize usecase layer
	catalog := usecase.NewCatalogService(storefrontClient, memoryCache, usecase.CatalogServiceConfig{
		CacheTTL: cfg.Cache.TTL,
		Debug:    debug,
	})

	scorer := usecase.NewScoringService(completer)
	recommender := usecase.NewRecommendService(
		catalog,
		reviewSearcher,
		groomerClient,
		scorer,
		completer,
		usecase.RecommendServiceConfig{
			Concurrency:     cfg.Recommend.Concurrency,
			MaxReviews:      cfg.Recommend.MaxReviews,
			GroomerResults:  cfg.Groomers.MaxResults,
			GroomerBaseURL:  cfg.Groomers.BaseURL,
			GroomerLocation: cfg.Groomers.DefaultLocation,
		},
	)
	if debug {
		scorer.SetDebug(true)
		recommender.SetDebug(true)
	}

	log.Printf("Recommendation pipeline: max=%d, concurrency=%d, reviews=%d",
		cfg.Recommend.MaxRecommendations,
		cfg.Recommend.Concurrency,
		cfg.Recommend.MaxReviews)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(catalog, recommender)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
