package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/opticount/backend/internal/domain"
)

// CatalogServiceConfig holds configuration for the catalog read service.
type CatalogServiceConfig struct {
	CacheTTL time.Duration
}

// CatalogService serves catalog reads that sit next to the matcher: the
// brand list for the context pickers and the manual term search. Brands are
// reference data that changes rarely, so they are cached per category.
type CatalogService struct {
	cache    domain.CacheRepository
	cacheTTL time.Duration
}

// NewCatalogService creates a catalog service with dependencies.
func NewCatalogService(cache domain.CacheRepository, config CatalogServiceConfig) *CatalogService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}

	return &CatalogService{
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Brands lists the brands of one category's base, cache-aside.
func (s *CatalogService) Brands(ctx context.Context, gateway domain.CatalogGateway, category domain.Category) ([]domain.Brand, error) {
	cacheKey := "brands:" + string(category)

	if brands, err := s.brandsFromCache(ctx, cacheKey); err == nil {
		return brands, nil
	}

	brands, err := gateway.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}

	if err := s.cache.Set(ctx, cacheKey, brands, s.cacheTTL); err != nil {
		log.Printf("[CATALOG] failed to cache brands for %s: %v", category, err)
	}

	return brands, nil
}

// brandsFromCache re-marshals the cached value into the typed slice; the
// cache stores JSON-round-tripped data.
func (s *CatalogService) brandsFromCache(ctx context.Context, key string) ([]domain.Brand, error) {
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(cached)
	if err != nil {
		return nil, err
	}

	var brands []domain.Brand
	if err := json.Unmarshal(jsonData, &brands); err != nil {
		return nil, err
	}

	return brands, nil
}

// SearchByTerm runs the manual product search (model code, model name,
// color code, SKU) and formats the hits for the client.
func (s *CatalogService) SearchByTerm(
	ctx context.Context,
	gateway domain.CatalogGateway,
	term, contextBrand string,
	contextCategory domain.Category,
) ([]domain.ProductView, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil, fmt.Errorf("%w: search term needs at least 2 characters", domain.ErrInvalidRequest)
	}

	entries, err := gateway.SearchByTerm(ctx, term, contextBrand, contextCategory)
	if err != nil {
		return nil, fmt.Errorf("term search for %q: %w", term, err)
	}

	views := make([]domain.ProductView, len(entries))
	for i, entry := range entries {
		views[i] = FormatProduct(entry)
	}
	return views, nil
}
