package main

import (
	"fmt"
	"log"
	"os"

	"github.com/opticount/backend/config"
	httpDelivery "github.com/opticount/backend/internal/delivery/http"
	"github.com/opticount/backend/internal/domain"
	"github.com/opticount/backend/internal/infrastructure/airtable"
	"github.com/opticount/backend/internal/infrastructure/cache"
	"github.com/opticount/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting OptiCount Backend v2.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	debug := cfg.Server.Environment == "development" || cfg.Matcher.DebugLogging

	// One long-lived store client per configured product category. The map
	// is owned here and handed to the HTTP layer; nothing holds it globally.
	gateways := make(map[domain.Category]domain.CatalogGateway)
	for category, baseID := range cfg.Airtable.ConfiguredBases() {
		client := airtable.NewClient(cfg.Airtable.Token, cfg.Airtable.BaseURL, baseID)
		client.SetDebug(debug)
		gateways[domain.Category(category)] = client
		log.Printf("Catalog %s: base %s", category, baseID)
	}

	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	// Usecase layer
	matcher := usecase.NewMatcher(usecase.MatcherConfig{
		FuzzyThreshold:     cfg.Matcher.FuzzyThreshold,
		FuzzyPrefixLength:  cfg.Matcher.FuzzyPrefixLength,
		MaxExactCandidates: cfg.Matcher.MaxExactCandidates,
		EnableDebugLogging: debug,
	})
	countService := usecase.NewCountService()
	catalogService := usecase.NewCatalogService(memoryCache, usecase.CatalogServiceConfig{
		CacheTTL: cfg.Cache.TTL,
	})

	log.Printf("Matcher: threshold=%d, prefix=%d, debug=%v",
		cfg.Matcher.FuzzyThreshold, cfg.Matcher.FuzzyPrefixLength, debug)

	// HTTP layer
	handler := httpDelivery.NewHandler(gateways, matcher, countService, catalogService)
	router := httpDelivery.SetupRouter(cfg, handler)

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
