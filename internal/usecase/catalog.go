package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/petscout/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	CacheTTL time.Duration
	Debug    bool
}

// CatalogService fronts the storefront source with a read-through cache.
// It implements domain.StorefrontSource so callers cannot tell the
// difference.
type CatalogService struct {
	source   domain.StorefrontSource
	cache    domain.CacheRepository
	cacheTTL time.Duration
	debug    bool
}

// NewCatalogService creates a new catalog service with dependencies
func NewCatalogService(source domain.StorefrontSource, cache domain.CacheRepository, config CatalogServiceConfig) *CatalogService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}
	return &CatalogService{
		source:   source,
		cache:    cache,
		cacheTTL: cacheTTL,
		debug:    config.Debug,
	}
}

// Search returns products for a query.
// Flow: check cache -> query storefront -> cache -> return
func (s *CatalogService) Search(ctx context.Context, query string, page, limit int) ([]domain.Product, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidRequest
	}

	key := fmt.Sprintf("search:%s:%d:%d", normalizeForCacheKey(query), page, limit)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		if products, ok := cached.([]domain.Product); ok {
			if s.debug {
				log.Printf("[STORE] cache hit for %q", key)
			}
			return products, nil
		}
	}

	products, err := s.source.Search(ctx, query, page, limit)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, products, s.cacheTTL); err != nil && s.debug {
		log.Printf("[STORE] cache write failed for %q: %v", key, err)
	}
	return products, nil
}

// Products returns a category listing, cached like Search
func (s *CatalogService) Products(ctx context.Context, category string, page, limit int) ([]domain.Product, error) {
	key := fmt.Sprintf("products:%s:%d:%d", normalizeForCacheKey(category), page, limit)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		if products, ok := cached.([]domain.Product); ok {
			return products, nil
		}
	}

	products, err := s.source.Products(ctx, category, page, limit)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, products, s.cacheTTL); err != nil && s.debug {
		log.Printf("[STORE] cache write failed for %q: %v", key, err)
	}
	return products, nil
}

// Detail returns a product page, cached per product ID
func (s *CatalogService) Detail(ctx context.Context, productID string) (*domain.ProductDetail, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, domain.ErrInvalidRequest
	}

	key := "product:" + normalizeForCacheKey(productID)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		if detail, ok := cached.(*domain.ProductDetail); ok {
			return detail, nil
		}
	}

	detail, err := s.source.Detail(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, detail, s.cacheTTL); err != nil && s.debug {
		log.Printf("[STORE] cache write failed for %q: %v", key, err)
	}
	return detail, nil
}

// Categories returns the navigation tree. Categories change rarely, so
// they are cached for four times the standard TTL.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	const key = "categories"
	if cached, err := s.cache.Get(ctx, key); err == nil {
		if categories, ok := cached.([]domain.Category); ok {
			return categories, nil
		}
	}

	categories, err := s.source.Categories(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, categories, 4*s.cacheTTL); err != nil && s.debug {
		log.Printf("[STORE] cache write failed for %q: %v", key, err)
	}
	return categories, nil
}

// normalizeForCacheKey normalizes a string for use as a cache key
// component: lowercase, punctuation stripped, spaces collapsed to
// underscores.
func normalizeForCacheKey(s string) string {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = nonAlphanumericRegex.ReplaceAllString(normalized, "")
	normalized = multipleSpacesRegex.ReplaceAllString(normalized, "_")
	return normalized
}
