package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrProductNotFound is returned when a product page does not exist (404)
	ErrProductNotFound = errors.New("product not found")

	// ErrFetchExhausted is returned when a fetch fails after all retries
	ErrFetchExhausted = errors.New("fetch retries exhausted")

	// ErrSourceUnavailable is returned when an upstream data tier produced
	// no usable result and the orchestrator should fall back
	ErrSourceUnavailable = errors.New("data source unavailable")

	// ErrAIUnavailable is returned when no AI credential is configured or
	// the completion call failed; callers fall back to rule-based output
	ErrAIUnavailable = errors.New("ai completion unavailable")

	// ErrSearchUnavailable is returned when no web-search credential is
	// configured; callers fall back to mock review data
	ErrSearchUnavailable = errors.New("web search unavailable")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
