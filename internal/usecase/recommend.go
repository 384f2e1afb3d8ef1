package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/petscout/backend/internal/domain"
)

const (
	defaultMaxRecommendations = 5
	defaultMaxReviews         = 5
	defaultGroomerResults     = 3
)

// Package-level compiled regex pattern for performance
var breedSlugPattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// RecommendRequest carries the validated parameters of a recommendation
// request
type RecommendRequest struct {
	Query              string
	Breed              string
	Age                string
	Page               int
	Limit              int
	MaxRecommendations int
	IncludeGroomers    bool
}

// RecommendService composes the full recommendation pipeline: product
// search, per-product review retrieval and scoring, groomer search and
// scoring, and summary generation. Individual item failures degrade
// locally and never abort the batch.
type RecommendService struct {
	catalog   domain.StorefrontSource
	reviews   domain.ReviewSearcher
	groomers  domain.GroomerSource
	scorer    *ScoringService
	completer domain.Completer

	concurrency     int
	maxReviews      int
	groomerResults  int
	groomerBaseURL  string
	groomerLocation string
	debug           bool
}

// RecommendServiceConfig holds configuration for the recommendation
// pipeline. GroomerBaseURL and GroomerLocation are used to build
// placeholder profile URLs when the groomer source fails entirely.
type RecommendServiceConfig struct {
	Concurrency     int
	MaxReviews      int
	GroomerResults  int
	GroomerBaseURL  string
	GroomerLocation string
}

// NewRecommendService creates a recommendation service with dependencies
func NewRecommendService(
	catalog domain.StorefrontSource,
	reviews domain.ReviewSearcher,
	groomers domain.GroomerSource,
	scorer *ScoringService,
	completer domain.Completer,
	config RecommendServiceConfig,
) *RecommendService {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.MaxReviews < 1 {
		config.MaxReviews = defaultMaxReviews
	}
	if config.GroomerResults < 1 {
		config.GroomerResults = defaultGroomerResults
	}
	return &RecommendService{
		catalog:         catalog,
		reviews:         reviews,
		groomers:        groomers,
		scorer:          scorer,
		completer:       completer,
		concurrency:     config.Concurrency,
		maxReviews:      config.MaxReviews,
		groomerResults:  config.GroomerResults,
		groomerBaseURL:  strings.TrimSuffix(config.GroomerBaseURL, "/"),
		groomerLocation: config.GroomerLocation,
	}
}

// SetDebug toggles pipeline progress logging
func (s *RecommendService) SetDebug(debug bool) {
	s.debug = debug
}

// Recommend runs the complete pipeline. It returns an error only when
// the initial product search fails; everything downstream degrades to
// fallback data instead.
func (s *RecommendService) Recommend(ctx context.Context, req RecommendRequest) (*domain.RecommendationResponse, error) {
	if req.MaxRecommendations < 1 {
		req.MaxRecommendations = defaultMaxRecommendations
	}

	products, err := s.catalog.Search(ctx, req.Query, req.Page, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}

	if len(products) > req.MaxRecommendations {
		products = products[:req.MaxRecommendations]
	}

	recommendations := s.scoreProducts(ctx, products, req.Breed, req.Age)

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].SuitabilityScore > recommendations[j].SuitabilityScore
	})

	response := &domain.RecommendationResponse{
		Query:           req.Query,
		DogBreed:        req.Breed,
		Age:             req.Age,
		Recommendations: recommendations,
		Summary:         s.productSummary(ctx, req.Query, req.Breed, req.Age, recommendations),
	}

	if req.IncludeGroomers {
		response.GroomerRecommendations, response.GroomerSummary = s.recommendGroomers(ctx, req.Breed)
	}

	return response, nil
}

// scoreProducts fans out review retrieval and scoring across products.
// A failed review lookup leaves that product with empty reviews; scoring
// itself never fails.
func (s *RecommendService) scoreProducts(ctx context.Context, products []domain.Product, breed, age string) []domain.ProductRecommendation {
	recommendations := make([]domain.ProductRecommendation, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, product := range products {
		i, product := i, product
		g.Go(func() error {
			reviews, err := s.reviews.SearchReviews(gctx, product.Title, breed, age, s.maxReviews)
			if err != nil {
				log.Printf("[RECO] review search failed for %q: %v", product.Title, err)
				reviews = nil
			} else if s.debug {
				log.Printf("[RECO] found %d web reviews for %q", len(reviews), product.Title)
			}
			recommendations[i] = s.scorer.ScoreProduct(gctx, product, reviews, breed, age)
			return nil
		})
	}

	// Workers only return nil; Wait is a join barrier.
	_ = g.Wait()

	return recommendations
}

// productSummary generates the overall summary, preferring an AI
// completion and falling back to a template. It never fails.
func (s *RecommendService) productSummary(ctx context.Context, query, breed, age string, recommendations []domain.ProductRecommendation) string {
	if len(recommendations) == 0 {
		return fmt.Sprintf("No suitable products found for %s %ss based on your search for '%s'.", breed, age, query)
	}

	if summary, err := s.aiProductSummary(ctx, query, breed, age, recommendations); err == nil {
		return summary
	} else if s.debug {
		log.Printf("[RECO] AI product summary failed, using template: %v", err)
	}

	top := recommendations[0]
	summary := fmt.Sprintf("Based on your search for '%s' for your %s %s, we highly recommend %s (Suitability Score: %.1f/10). \n\n%s",
		query, breed, age, top.Title, top.SuitabilityScore, top.RecommendationReason)
	if len(recommendations) > 1 {
		summary += fmt.Sprintf("\n\nWe've also found %d other products that might be suitable for your %s %s.",
			len(recommendations)-1, breed, age)
	}
	return summary
}

func (s *RecommendService) aiProductSummary(ctx context.Context, query, breed, age string, recommendations []domain.ProductRecommendation) (string, error) {
	type summaryItem struct {
		Title            string  `json:"title"`
		Price            string  `json:"price"`
		SuitabilityScore float64 `json:"suitability_score"`
		Reason           string  `json:"recommendation_reason"`
		Reviews          string  `json:"reviews"`
	}

	items := make([]summaryItem, 0, len(recommendations))
	for _, rec := range recommendations {
		reviews := "No reviews available"
		if len(rec.Reviews) > 0 {
			reviews = "- " + strings.Join(capStrings(rec.Reviews, 3), "\n- ")
			if len(reviews) > 500 {
				reviews = reviews[:500]
			}
		}
		items = append(items, summaryItem{
			Title:            rec.Title,
			Price:            rec.Price,
			SuitabilityScore: rec.SuitabilityScore,
			Reason:           rec.RecommendationReason,
			Reviews:          reviews,
		})
	}

	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`As a pet nutrition expert, provide a detailed recommendation summary for a pet owner with a %s dog in the %s life stage who searched for '%s'.

Here are the top %d recommended products with their analysis:

%s

Create a warm, informative, and personalized recommendation summary that includes:
1. A detailed introduction explaining why the top product is particularly suited for this breed and age
2. Specific nutritional benefits that would benefit this dog breed based on its characteristics
3. Practical advice about feeding a %s %s
4. Brief mentions of alternative products if available
5. A conclusion with next steps

Make the recommendation conversational but professional.`,
		breed, age, query, len(items), payload, breed, age)

	return s.completer.CompleteText(ctx, prompt)
}

// recommendGroomers runs the groomer branch of the pipeline. It always
// returns at least one recommendation; total source failure yields a
// placeholder with a profile-shaped URL.
func (s *RecommendService) recommendGroomers(ctx context.Context, breed string) ([]domain.GroomerRecommendation, string) {
	listings, err := s.groomers.Search(ctx, "", breed, s.groomerResults)
	if err != nil {
		log.Printf("[RECO] groomer search failed: %v", err)
		rec := s.fallbackGroomer(breed, true)
		return []domain.GroomerRecommendation{rec},
			fmt.Sprintf("We found a general grooming service that should be able to accommodate your %s.", breed)
	}
	if len(listings) == 0 {
		rec := s.fallbackGroomer(breed, false)
		return []domain.GroomerRecommendation{rec},
			fmt.Sprintf("We found a groomer that may be suitable for your %s. Please contact them directly for more specific information about their experience with your dog breed.", breed)
	}

	recommendations := make([]domain.GroomerRecommendation, 0, len(listings))
	for _, listing := range listings {
		profile, perr := s.groomers.Profile(ctx, listing.URL, breed)
		if perr != nil {
			log.Printf("[RECO] groomer profile fetch failed for %q: %v", listing.Name, perr)
			profile = nil
		}
		recommendations = append(recommendations, s.scorer.ScoreGroomer(ctx, listing, profile, breed))
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].SuitabilityScore > recommendations[j].SuitabilityScore
	})

	return recommendations, s.groomerSummary(ctx, breed, recommendations)
}

// fallbackGroomer builds a placeholder recommendation. The errorPath
// variant signals total source failure and scores lower than the
// empty-result variant.
func (s *RecommendService) fallbackGroomer(breed string, errorPath bool) domain.GroomerRecommendation {
	slug := strings.Trim(breedSlugPattern.ReplaceAllString(strings.ToLower(breed), "-"), "-")
	if slug == "" {
		slug = "pet"
	}
	url := fmt.Sprintf("%s/pet-sitter/%s-specialist/%s", s.groomerBaseURL, slug, s.groomerLocation)

	if errorPath {
		rating := 4.0
		return domain.GroomerRecommendation{
			GroomerID:            "fallback-error-groomer",
			Name:                 fmt.Sprintf("%s Grooming Service", breed),
			URL:                  url,
			Location:             "Philippines",
			Services:             []string{"Full Grooming", "Bathing", "Nail Trimming"},
			Rating:               &rating,
			Reviews:              []string{"General grooming service that accepts all dog breeds."},
			RecommendationReason: fmt.Sprintf("General pet groomer that accepts all dog breeds including %s.", breed),
			SuitabilityScore:     5.0,
			ContactInfo:          "Contact via petbacker.ph",
		}
	}

	rating := 4.5
	return domain.GroomerRecommendation{
		GroomerID:            "fallback-groomer",
		Name:                 fmt.Sprintf("%s Grooming Specialist", breed),
		URL:                  url,
		Location:             "Philippines",
		Services:             []string{"Full Grooming", "Bathing", "Nail Trimming"},
		Rating:               &rating,
		Reviews:              []string{fmt.Sprintf("Specializes in %s grooming and care.", breed)},
		RecommendationReason: fmt.Sprintf("General pet groomer that may be able to handle %s dogs.", breed),
		SuitabilityScore:     6.5,
		ContactInfo:          "Contact via petbacker.ph",
	}
}

// groomerSummary generates the groomer summary, preferring an AI
// completion and falling back to a template. Never fails.
func (s *RecommendService) groomerSummary(ctx context.Context, breed string, groomers []domain.GroomerRecommendation) string {
	if len(groomers) == 0 {
		return fmt.Sprintf("We couldn't find any specialized groomers for your %s.", breed)
	}

	if summary, err := s.aiGroomerSummary(ctx, breed, groomers); err == nil {
		return summary
	} else if s.debug {
		log.Printf("[RECO] AI groomer summary failed, using template: %v", err)
	}

	top := groomers[0]
	return fmt.Sprintf("Based on our search for groomers specializing in %s dogs, we highly recommend %s (Suitability Score: %.1f/10). \n\n%s\n\nWe've also found %d other groomers that might be suitable for your %s.",
		breed, top.Name, top.SuitabilityScore, top.RecommendationReason, len(groomers)-1, breed)
}

func (s *RecommendService) aiGroomerSummary(ctx context.Context, breed string, groomers []domain.GroomerRecommendation) (string, error) {
	type summaryItem struct {
		Name             string   `json:"name"`
		Rating           *float64 `json:"rating"`
		Location         string   `json:"location"`
		Services         string   `json:"services"`
		Contact          string   `json:"contact"`
		URL              string   `json:"url"`
		SuitabilityScore float64  `json:"suitability_score"`
		Reviews          string   `json:"reviews"`
	}

	items := make([]summaryItem, 0, len(groomers))
	for _, groomer := range groomers {
		services := "General grooming services"
		if len(groomer.Services) > 0 {
			services = strings.Join(groomer.Services, ", ")
		}
		reviews := "No reviews available"
		if len(groomer.Reviews) > 0 {
			reviews = "- " + strings.Join(groomer.Reviews, "\n- ")
		}
		items = append(items, summaryItem{
			Name:             groomer.Name,
			Rating:           groomer.Rating,
			Location:         groomer.Location,
			Services:         services,
			Contact:          groomer.ContactInfo,
			URL:              groomer.URL,
			SuitabilityScore: groomer.SuitabilityScore,
			Reviews:          reviews,
		})
	}

	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`As a pet care specialist, provide a detailed and personalized recommendation summary for a pet owner with a %s dog.

Here is information about %d groomers that might be suitable:

%s

Create a warm, informative, and personalized recommendation that includes:
1. A detailed introduction highlighting why the top groomer is particularly suited for this breed
2. Specific services that would benefit this dog breed based on its characteristics
3. Practical advice for the pet owner about grooming this particular breed
4. Brief mentions of alternative groomers if available
5. A conclusion with next steps

Make the recommendation conversational but professional.`,
		breed, len(items), payload)

	return s.completer.CompleteText(ctx, prompt)
}
