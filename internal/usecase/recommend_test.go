package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/petscout/backend/internal/domain"
)

// MockStorefront is a mock implementation of domain.StorefrontSource
type MockStorefront struct {
	SearchFunc   func(query string, page, limit int) ([]domain.Product, error)
	ProductsFunc func(category string, page, limit int) ([]domain.Product, error)
	DetailFunc   func(productID string) (*domain.ProductDetail, error)
	CallCount    int
}

func (m *MockStorefront) Search(ctx context.Context, query string, page, limit int) ([]domain.Product, error) {
	m.CallCount++
	if m.SearchFunc != nil {
		return m.SearchFunc(query, page, limit)
	}
	return nil, nil
}

func (m *MockStorefront) Products(ctx context.Context, category string, page, limit int) ([]domain.Product, error) {
	m.CallCount++
	if m.ProductsFunc != nil {
		return m.ProductsFunc(category, page, limit)
	}
	return nil, nil
}

func (m *MockStorefront) Detail(ctx context.Context, productID string) (*domain.ProductDetail, error) {
	m.CallCount++
	if m.DetailFunc != nil {
		return m.DetailFunc(productID)
	}
	return nil, domain.ErrProductNotFound
}

func (m *MockStorefront) Categories(ctx context.Context) ([]domain.Category, error) {
	m.CallCount++
	return []domain.Category{{Name: "Dog Food", URL: "/dog-food"}}, nil
}

// MockReviewSearcher is a mock implementation of domain.ReviewSearcher
type MockReviewSearcher struct {
	SearchFunc func(productTitle, breed, age string, max int) ([]domain.Review, error)
}

func (m *MockReviewSearcher) SearchReviews(ctx context.Context, productTitle, breed, age string, max int) ([]domain.Review, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(productTitle, breed, age, max)
	}
	return nil, nil
}

// MockGroomerSource is a mock implementation of domain.GroomerSource
type MockGroomerSource struct {
	SearchFunc  func(location, breed string, max int) ([]domain.GroomerListing, error)
	ProfileFunc func(groomerURL, breed string) (*domain.GroomerProfile, error)
}

func (m *MockGroomerSource) Search(ctx context.Context, location, breed string, max int) ([]domain.GroomerListing, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(location, breed, max)
	}
	return nil, nil
}

func (m *MockGroomerSource) Profile(ctx context.Context, groomerURL, breed string) (*domain.GroomerProfile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(groomerURL, breed)
	}
	return nil, domain.ErrSourceUnavailable
}

// MockCompleter is a mock implementation of domain.Completer. The zero
// value behaves like a completer without a credential.
type MockCompleter struct {
	JSONFunc func(prompt string, out any) error
	TextFunc func(prompt string) (string, error)
}

func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

func (m *MockCompleter) CompleteJSON(ctx context.Context, prompt string, out any) error {
	if m.JSONFunc != nil {
		return m.JSONFunc(prompt, out)
	}
	return domain.ErrAIUnavailable
}

func (m *MockCompleter) CompleteText(ctx context.Context, prompt string) (string, error) {
	if m.TextFunc != nil {
		return m.TextFunc(prompt)
	}
	return "", domain.ErrAIUnavailable
}

const testGroomerBase = "https://www.petbacker.ph"
const testGroomerLocation = "manila--metro-manila--philippines"

func newTestRecommendService(store *MockStorefront, reviews *MockReviewSearcher, groomers *MockGroomerSource, completer *MockCompleter) *RecommendService {
	return NewRecommendService(store, reviews, groomers, NewScoringService(completer), completer, RecommendServiceConfig{
		Concurrency:     2,
		GroomerBaseURL:  testGroomerBase,
		GroomerLocation: testGroomerLocation,
	})
}

func TestRecommend_NoCredentials(t *testing.T) {
	// End-to-end rule-based path: no AI, no review search results.
	store := &MockStorefront{
		SearchFunc: func(query string, page, limit int) ([]domain.Product, error) {
			return []domain.Product{
				{ID: "p1", Title: "Labrador Adult Formula", Price: "₱1,200.00"},
				{ID: "p2", Title: "Generic Dog Biscuits", Price: "₱300.00"},
			}, nil
		},
	}
	groomers := &MockGroomerSource{
		SearchFunc: func(location, breed string, max int) ([]domain.GroomerListing, error) {
			return []domain.GroomerListing{
				{ID: "g1", Name: "Happy Paws", URL: testGroomerBase + "/profile/g1", Rating: 4.5, BreedCompatibility: 7.0},
			}, nil
		},
	}
	svc := newTestRecommendService(store, &MockReviewSearcher{}, groomers, NewMockCompleter())

	resp, err := svc.Recommend(context.Background(), RecommendRequest{
		Query: "dog food", Breed: "labrador", Age: "adult",
		Page: 1, Limit: 20, MaxRecommendations: 5, IncludeGroomers: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Recommendations) < 1 {
		t.Fatal("want at least one recommendation")
	}
	for _, rec := range resp.Recommendations {
		if rec.SuitabilityScore < 2.0 || rec.SuitabilityScore > 10.0 {
			t.Errorf("score %v out of [2,10] for %q", rec.SuitabilityScore, rec.Title)
		}
	}
	if resp.Summary == "" {
		t.Error("summary must not be empty")
	}
	if !strings.Contains(resp.Summary, "Labrador Adult Formula") {
		t.Errorf("template summary should name the top product: %q", resp.Summary)
	}
	if len(resp.GroomerRecommendations) != 1 || resp.GroomerSummary == "" {
		t.Errorf("groomer branch incomplete: %d recs, summary %q", len(resp.GroomerRecommendations), resp.GroomerSummary)
	}
}

func TestRecommend_SortedDescending(t *testing.T) {
	store := &MockStorefront{
		SearchFunc: func(query string, page, limit int) ([]domain.Product, error) {
			return []domain.Product{
				{ID: "low", Title: "Plain Biscuits"},
				{ID: "high", Title: "Bulldog Puppy Formula"},
				{ID: "mid", Title: "Bulldog Mix"},
			}, nil
		},
	}
	svc := newTestRecommendService(store, &MockReviewSearcher{}, &MockGroomerSource{}, NewMockCompleter())

	resp, err := svc.Recommend(context.Background(), RecommendRequest{
		Query: "food", Breed: "bulldog", Age: "puppy", Limit: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(resp.Recommendations); i++ {
		if resp.Recommendations[i].SuitabilityScore > resp.Recommendations[i-1].SuitabilityScore {
			t.Errorf("recommendations not sorted descending at %d: %v > %v",
				i, resp.Recommendations[i].SuitabilityScore, resp.Recommendations[i-1].SuitabilityScore)
		}
	}
	if resp.Recommendations[0].ProductID != "high" {
		t.Errorf("top recommendation = %q, want high", resp.Recommendations[0].ProductID)
	}
}

func TestRecommend_StableOnTies(t *testing.T) {
	store := &MockStorefront{
		SearchFunc: func(query string, page, limit int) ([]domain.Product, error) {
			return []domain.Product{
				{ID: "first", Title: "Plain Kibble A"},
				{ID: "second", Title: "Plain Kibble B"},
				{ID: "third", Title: "Plain Kibble C"},
			}, nil
		},
	}
	svc := newTestRecommendService(store, &MockReviewSearcher{}, &MockGroomerSource{}, NewMockCompleter())

	resp, err := svc.Recommend(context.Background(), RecommendRequest{
		Query: "kibble", Breed: "bulldog", Age: "adult", Limit: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// All three floor at 2.0; input order must be preserved.
	want := []string{"first", "second", "third"}
	for i, id := range want {
		if resp.Recommendations[i].ProductID != id {
			t.Errorf("position %d = %q, want %q", i, resp.Recommendations[i].ProductID, id)
		}
	}
}

func TestRecommend_ReviewFailureIsLocal(t *testing.T) {
	store := &MockStorefront{
		SearchFunc: func(query string, page, limit int) ([]domain.Product, error) {
			return []domain.Product{
				{ID: "p1", Title: "Bulldog Chow"},
				{ID: "p2", Title: "Bulldog Bites"},
			}, nil
		},
	}
	reviews := &MockReviewSearcher{
		SearchFunc: func(productTitle, breed, age string, max int) ([]domain.Review, error) {
			if productTitle == "Bulldog Chow" {
				return nil, errors.New("search backend down")
			}
			return []domain.Review{{Content: "my bulldog loves these", Rating: ratingPtr(4.0)}}, nil
		},
	}
	svc := newTestRecommendService(store, reviews, &MockGroomerSource{}, NewMockCompleter())

	resp, err := svc.Recommend(context.Background(), RecommendRequest{
		Query: "bulldog", Breed: "bulldog", Age: "adult", Limit: 20,
	})
	if err != nil {
		t.Fatalf("item-level review failure must not abort the batch: %v", err)
	}
	if len(resp.Recommendations) != 2 {
		t.Fatalf("recommendations = %d, want 2", len(resp.Recommendations))
	}
	for _, rec := range resp.Recommendations {
		if rec.SuitabilityScore < 2.0 {
			t.Errorf("score %v below floor for %q", rec.SuitabilityScore, rec.Title)
		}
	}
}

func TestRecommend_SearchFailureReturnsError(t *testing.T) {
	store := &MockStorefront{
		SearchFunc: func(query string, page, limit int) ([]domain.Product, error) {
			return nil, domain.ErrFetchExhausted
		},
	}
	svc := newTestRecommendService(store, &MockReviewSearcher{}, &MockGroomerSource{}, NewMockCompleter())

	_, err := svc.Recommend(context.Background(), RecommendRequest{Query: "food", Breed: "bulldog", Age: "adult"})
	if !errors.Is(err, domain.ErrFetchExhausted) {
		t.Errorf("error = %v, want wrapped ErrFetchExhausted", err)
	}
}

func TestRecommend_CapsProducts(t *testing.T) {
	store := &MockStorefront{
		SearchFunc: func(query string, page, limit int) ([]domain.Product, error) {
			products := make([]domain.Product, 10)
			for i := range products {
				products[i] = domain.Product{ID: string(rune('a' + i)), Title: "Dog Food"}
			}
			return products, nil
		},
	}
	svc := newTestRecommendService(store, &MockReviewSearcher{}, &MockGroomerSource{}, NewMockCompleter())

	resp, err := svc.Recommend(context.Background(), RecommendRequest{
		Query: "food", Breed: "bulldog", Age: "adult", MaxRecommendations: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Recommendations) != 3 {
		t.Errorf("recommendations = %d, want 3", len(resp.Recommendations))
	}
}

func TestRecommend_EmptyProducts(t *testing.T) {
	store := &MockStorefront{
		SearchFunc: func(query string, page, limit int) ([]domain.Product, error) {
			return []domain.Product{}, nil
		},
	}
	svc := newTestRecommendService(store, &MockReviewSearcher{}, &MockGroomerSource{}, NewMockCompleter())

	resp, err := svc.Recommend(context.Background(), RecommendRequest{Query: "unicorn chow", Breed: "bulldog", Age: "adult"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Recommendations) != 0 {
		t.Errorf("recommendations = %d, want 0", len(resp.Recommendations))
	}
	if !strings.Contains(resp.Summary, "No suitable products found") {
		t.Errorf("summary = %q, want no-products message", resp.Summary)
	}
}

func TestRecommendGroomers_FallbackPaths(t *testing.T) {
	store := &MockStorefront{
		SearchFunc: func(query string, page, limit int) ([]domain.Product, error) {
			return []domain.Product{{ID: "p1", Title: "Shih Tzu Shampoo"}}, nil
		},
	}

	t.Run("search error yields low-score service placeholder", func(t *testing.T) {
		groomers := &MockGroomerSource{
			SearchFunc: func(location, breed string, max int) ([]domain.GroomerListing, error) {
				return nil, domain.ErrFetchExhausted
			},
		}
		svc := newTestRecommendService(store, &MockReviewSearcher{}, groomers, NewMockCompleter())
		resp, err := svc.Recommend(context.Background(), RecommendRequest{
			Query: "shampoo", Breed: "Shih Tzu", Age: "adult", IncludeGroomers: true,
		})
		if err != nil {
			t.Fatalf("groomer failure must not fail the request: %v", err)
		}
		if len(resp.GroomerRecommendations) != 1 {
			t.Fatalf("groomer recs = %d, want 1 fallback", len(resp.GroomerRecommendations))
		}
		rec := resp.GroomerRecommendations[0]
		if rec.GroomerID != "fallback-error-groomer" || rec.SuitabilityScore != 5.0 {
			t.Errorf("fallback = %+v, want error variant score 5.0", rec)
		}
		wantURL := testGroomerBase + "/pet-sitter/shih-tzu-specialist/" + testGroomerLocation
		if rec.URL != wantURL {
			t.Errorf("URL = %q, want %q", rec.URL, wantURL)
		}
		if resp.GroomerSummary == "" {
			t.Error("groomer summary must not be empty")
		}
	})

	t.Run("empty results yield specialist placeholder", func(t *testing.T) {
		groomers := &MockGroomerSource{
			SearchFunc: func(location, breed string, max int) ([]domain.GroomerListing, error) {
				return []domain.GroomerListing{}, nil
			},
		}
		svc := newTestRecommendService(store, &MockReviewSearcher{}, groomers, NewMockCompleter())
		resp, err := svc.Recommend(context.Background(), RecommendRequest{
			Query: "shampoo", Breed: "Shih Tzu", Age: "adult", IncludeGroomers: true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec := resp.GroomerRecommendations[0]
		if rec.GroomerID != "fallback-groomer" || rec.SuitabilityScore != 6.5 {
			t.Errorf("fallback = %+v, want empty-result variant score 6.5", rec)
		}
		if rec.Rating == nil || *rec.Rating != 4.5 {
			t.Errorf("rating = %v, want 4.5", rec.Rating)
		}
		if len(rec.Services) != 3 {
			t.Errorf("services = %v, want 3 defaults", rec.Services)
		}
	})

	t.Run("profile failure does not drop the groomer", func(t *testing.T) {
		groomers := &MockGroomerSource{
			SearchFunc: func(location, breed string, max int) ([]domain.GroomerListing, error) {
				return []domain.GroomerListing{
					{ID: "g1", Name: "Happy Paws", URL: testGroomerBase + "/profile/g1", BreedCompatibility: 8.0},
				}, nil
			},
			ProfileFunc: func(groomerURL, breed string) (*domain.GroomerProfile, error) {
				return nil, domain.ErrSourceUnavailable
			},
		}
		svc := newTestRecommendService(store, &MockReviewSearcher{}, groomers, NewMockCompleter())
		resp, err := svc.Recommend(context.Background(), RecommendRequest{
			Query: "shampoo", Breed: "Shih Tzu", Age: "adult", IncludeGroomers: true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(resp.GroomerRecommendations) != 1 || resp.GroomerRecommendations[0].GroomerID != "g1" {
			t.Errorf("groomer recs = %+v, want the listing kept", resp.GroomerRecommendations)
		}
		if resp.GroomerRecommendations[0].SuitabilityScore != 8.0 {
			t.Errorf("score = %v, want seed 8.0", resp.GroomerRecommendations[0].SuitabilityScore)
		}
	})

	t.Run("groomers sorted descending", func(t *testing.T) {
		groomers := &MockGroomerSource{
			SearchFunc: func(location, breed string, max int) ([]domain.GroomerListing, error) {
				return []domain.GroomerListing{
					{ID: "low", Name: "Low", URL: testGroomerBase + "/profile/low", BreedCompatibility: 7.0},
					{ID: "high", Name: "High", URL: testGroomerBase + "/profile/high", BreedCompatibility: 9.0},
				}, nil
			},
		}
		svc := newTestRecommendService(store, &MockReviewSearcher{}, groomers, NewMockCompleter())
		resp, err := svc.Recommend(context.Background(), RecommendRequest{
			Query: "shampoo", Breed: "Shih Tzu", Age: "adult", IncludeGroomers: true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.GroomerRecommendations[0].GroomerID != "high" {
			t.Errorf("top groomer = %q, want high", resp.GroomerRecommendations[0].GroomerID)
		}
	})
}

func TestRecommend_AISummary(t *testing.T) {
	store := &MockStorefront{
		SearchFunc: func(query string, page, limit int) ([]domain.Product, error) {
			return []domain.Product{{ID: "p1", Title: "Bulldog Chow"}}, nil
		},
	}
	completer := NewMockCompleter()
	completer.TextFunc = func(prompt string) (string, error) {
		if !strings.Contains(prompt, "Bulldog Chow") {
			t.Errorf("summary prompt missing product data")
		}
		return "Personalized AI summary.", nil
	}
	svc := newTestRecommendService(store, &MockReviewSearcher{}, &MockGroomerSource{}, completer)

	resp, err := svc.Recommend(context.Background(), RecommendRequest{Query: "food", Breed: "bulldog", Age: "adult"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Summary != "Personalized AI summary." {
		t.Errorf("summary = %q, want AI output", resp.Summary)
	}
}
