package domain

import (
	"context"
	"time"
)

// StorefrontSource retrieves products from the e-commerce storefront
type StorefrontSource interface {
	Search(ctx context.Context, query string, page, limit int) ([]Product, error)
	Products(ctx context.Context, category string, page, limit int) ([]Product, error)
	Detail(ctx context.Context, productID string) (*ProductDetail, error)
	Categories(ctx context.Context) ([]Category, error)
}

// GroomerSource retrieves groomer listings and profiles from the
// services marketplace
type GroomerSource interface {
	Search(ctx context.Context, location, breed string, max int) ([]GroomerListing, error)
	Profile(ctx context.Context, groomerURL, breed string) (*GroomerProfile, error)
}

// ReviewSearcher finds product reviews on the web. Implementations must
// return usable data even without a search credential (mock fallback).
type ReviewSearcher interface {
	SearchReviews(ctx context.Context, productTitle, breed, age string, max int) ([]Review, error)
}

// Completer is the black-box language-model call. Either method may fail;
// every call site must have a deterministic fallback.
type Completer interface {
	CompleteJSON(ctx context.Context, prompt string, out any) error
	CompleteText(ctx context.Context, prompt string) (string, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
