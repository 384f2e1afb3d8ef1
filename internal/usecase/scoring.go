package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/petscout/backend/internal/domain"
)

// Rule-based product scoring weights
const (
	breedInTitlePoints  = 3.0 // Breed (or synonym) named in the product title
	breedMentionCap     = 3.0 // Max contribution from review mentions
	ageInTitlePoints    = 2.0 // Age term in the product title
	ageMentionCap       = 2.0 // Max contribution from age mentions
	nutritionPointsEach = 0.5 // Per matched breed nutrition keyword
	nutritionCap        = 2.0 // Max nutrition contribution
	minimumRuleScore    = 2.0 // Floor: low scores mean "insufficient evidence"
)

// Rule-based groomer scoring weights
const (
	groomerBreedPoints      = 5.0 // Breed named in groomer name or description
	groomerExperiencePoints = 1.0 // Per matched experience keyword
)

// breedSynonyms maps a breed to alternate names and related terms that
// count as a breed mention
var breedSynonyms = map[string][]string{
	"bulldog":         {"english bulldog", "british bulldog", "brachycephalic", "flat-faced", "short-snout"},
	"german shepherd": {"gsd", "alsatian", "shepherd", "police dog"},
	"labrador":        {"lab", "retriever", "labrador retriever"},
	"poodle":          {"toy poodle", "miniature poodle", "standard poodle"},
	"shih tzu":        {"shitzu", "chrysanthemum dog", "small breeds"},
}

// ageTerms maps an age category to terms that count as an age mention
var ageTerms = map[string][]string{
	domain.AgePuppy: {"young", "growing", "junior", "youth"},
	domain.AgeAdult: {"mature", "grown", "senior"},
}

// nutritionKeywords holds breed-specific nutrition and health keywords;
// unknown breeds get no nutrition bonus
var nutritionKeywords = map[string][]string{
	"bulldog":          {"joint", "hip", "breath", "skin", "allergies", "cooling", "grain-free"},
	"german shepherd":  {"joint", "hip", "digestive", "gut", "protein", "calcium"},
	"labrador":         {"weight", "joint", "omega", "protein", "portion"},
	"poodle":           {"coat", "skin", "protein", "omega", "energy"},
	"shih tzu":         {"coat", "skin", "kibble", "digestible", "eye"},
	"golden retriever": {"coat", "joint", "hip", "omega", "glucosamine"},
	"chihuahua":        {"kibble", "calorie", "dental", "small bite"},
	"beagle":           {"weight", "portion", "calorie", "fiber"},
}

// experienceKeywords are positive indicators in groomer descriptions
var experienceKeywords = []string{"experience", "professional", "certified", "trained", "specialist"}

// ScoringService computes suitability scores and justification text for
// products and groomers. The AI strategy is tried first when a completer
// is available; any failure falls back to the deterministic rule-based
// strategy for that single item.
type ScoringService struct {
	completer domain.Completer
	debug     bool
}

// NewScoringService creates a scoring service
func NewScoringService(completer domain.Completer) *ScoringService {
	return &ScoringService{completer: completer}
}

// SetDebug toggles per-item logging
func (s *ScoringService) SetDebug(debug bool) {
	s.debug = debug
}

// productAnalysis is the structured result requested from the model.
// Pointer fields distinguish "missing" from zero values.
type productAnalysis struct {
	SuitabilityScore     *float64 `json:"suitability_score"`
	RecommendationReason string   `json:"recommendation_reason"`
	KeyBenefits          []string `json:"key_benefits"`
	Cautions             []string `json:"cautions"`
}

// groomerAnalysis is the structured result for groomer scoring
type groomerAnalysis struct {
	SuitabilityScore     *float64 `json:"suitability_score"`
	RecommendationReason string   `json:"recommendation_reason"`
	KeyFactors           []string `json:"key_factors"`
}

// ScoreProduct evaluates one product against a breed and age profile.
// It never fails: AI errors degrade to the rule-based strategy.
func (s *ScoringService) ScoreProduct(ctx context.Context, product domain.Product, reviews []domain.Review, breed, age string) domain.ProductRecommendation {
	if rec, err := s.aiScoreProduct(ctx, product, reviews, breed, age); err == nil {
		return rec
	} else if s.debug {
		log.Printf("[SCORE] AI scoring failed for %q, using rules: %v", product.Title, err)
	}
	return s.ruleScoreProduct(product, reviews, breed, age)
}

// aiScoreProduct runs the AI strategy for a single product
func (s *ScoringService) aiScoreProduct(ctx context.Context, product domain.Product, reviews []domain.Review, breed, age string) (domain.ProductRecommendation, error) {
	breedContent, generalContent, avgRating := splitReviewContent(reviews, breed)

	prompt := buildProductPrompt(product, breed, age, breedContent, generalContent, avgRating)

	var analysis productAnalysis
	if err := s.completer.CompleteJSON(ctx, prompt, &analysis); err != nil {
		return domain.ProductRecommendation{}, err
	}
	if analysis.SuitabilityScore == nil || analysis.RecommendationReason == "" {
		return domain.ProductRecommendation{}, fmt.Errorf("incomplete analysis for %q", product.Title)
	}

	reason := analysis.RecommendationReason
	if len(analysis.KeyBenefits) > 0 {
		reason += "\n\nKey Benefits:\n" + bulletList(analysis.KeyBenefits)
	}
	if len(analysis.Cautions) > 0 {
		reason += "\n\nConsiderations:\n" + bulletList(analysis.Cautions)
	}

	if s.debug {
		log.Printf("[SCORE] AI analysis for %q: %.1f/10", product.Title, *analysis.SuitabilityScore)
	}

	return domain.ProductRecommendation{
		ProductID:            product.ID,
		Title:                product.Title,
		URL:                  product.URL,
		Price:                product.Price,
		ImageURL:             product.ImageURL,
		Rating:               avgRating,
		Reviews:              formatReviews(reviews),
		RecommendationReason: reason,
		SuitabilityScore:     domain.ClampScore(*analysis.SuitabilityScore),
	}, nil
}

// ruleScoreProduct runs the deterministic keyword strategy
func (s *ScoringService) ruleScoreProduct(product domain.Product, reviews []domain.Review, breed, age string) domain.ProductRecommendation {
	titleLower := strings.ToLower(product.Title)
	reviewText := combinedReviewText(reviews)

	breedTerms := append([]string{strings.ToLower(breed)}, breedSynonyms[strings.ToLower(breed)]...)
	ageTermList := append([]string{strings.ToLower(age)}, ageTerms[strings.ToLower(age)]...)

	score := 0.0

	if anyTermIn(titleLower, breedTerms) {
		score += breedInTitlePoints
	}
	if mentions := countMentions(reviewText, breedTerms); mentions > 0 {
		score += minFloat(breedMentionCap, float64(mentions))
	}
	if anyTermIn(titleLower, ageTermList) {
		score += ageInTitlePoints
	}
	if mentions := countMentions(reviewText, ageTermList); mentions > 0 {
		score += minFloat(ageMentionCap, float64(mentions))
	}

	nutritionScore := 0.0
	for _, keyword := range nutritionKeywords[strings.ToLower(breed)] {
		if strings.Contains(reviewText, keyword) {
			nutritionScore += nutritionPointsEach
		}
	}
	score += minFloat(nutritionCap, nutritionScore)

	if score < minimumRuleScore {
		score = minimumRuleScore
	}
	score = domain.ClampScore(score)

	reviewTexts := make([]string, 0, len(reviews))
	for _, r := range reviews {
		reviewTexts = append(reviewTexts, r.Content)
	}
	if len(reviewTexts) == 0 {
		reviewTexts = []string{"No specific reviews found for this product."}
	}

	_, _, avgRating := splitReviewContent(reviews, breed)

	return domain.ProductRecommendation{
		ProductID:            product.ID,
		Title:                product.Title,
		URL:                  product.URL,
		Price:                product.Price,
		ImageURL:             product.ImageURL,
		Rating:               avgRating,
		Reviews:              reviewTexts,
		RecommendationReason: productReason(score, breed, age),
		SuitabilityScore:     score,
	}
}

// productReason templates the justification by score band
func productReason(score float64, breed, age string) string {
	switch {
	case score >= 8:
		return fmt.Sprintf("Highly recommended for %s %ss. Reviews specifically mention this product working well for your breed.", breed, age)
	case score >= 6:
		return fmt.Sprintf("Good match for %s %ss based on multiple positive reviews and product details.", breed, age)
	case score >= 4:
		return fmt.Sprintf("May be suitable for %s %ss. Some reviews indicate compatibility but limited specific information available.", breed, age)
	default:
		return fmt.Sprintf("Limited evidence this product is ideal for %s %ss. Contains some nutritional elements that could benefit your dog, but consider alternatives specifically formulated for %ss.", breed, age, breed)
	}
}

// ScoreGroomer evaluates one groomer listing, optionally enriched with
// profile data. Never fails; AI errors degrade to the seed score or the
// rule-based text scan.
func (s *ScoringService) ScoreGroomer(ctx context.Context, listing domain.GroomerListing, profile *domain.GroomerProfile, breed string) domain.GroomerRecommendation {
	about := ""
	services := []string{}
	reviews := []string{}
	contactInfo := ""
	if profile != nil {
		about = profile.About
		services = profile.Services
		reviews = profile.Reviews
		contactInfo = profile.ContactInfo
	}

	score, reason, ok := s.aiScoreGroomer(ctx, listing, about, services, breed)
	if !ok {
		score = listing.BreedCompatibility
		if profile != nil && profile.BreedCompatibility > score {
			score = profile.BreedCompatibility
		}
		if score == 0 {
			score = ruleScoreGroomerText(listing.Name, about, breed)
		}
		score = domain.ClampScore(score)
		reason = groomerReason(score, breed)
	}

	var rating *float64
	if listing.Rating > 0 {
		r := listing.Rating
		rating = &r
	}

	return domain.GroomerRecommendation{
		GroomerID:            listing.ID,
		Name:                 listing.Name,
		URL:                  listing.URL,
		Location:             listing.Location,
		Services:             services,
		Rating:               rating,
		Reviews:              reviews,
		RecommendationReason: reason,
		SuitabilityScore:     score,
		ImageURL:             listing.ImageURL,
		ContactInfo:          contactInfo,
	}
}

// aiScoreGroomer runs the AI strategy for a single groomer
func (s *ScoringService) aiScoreGroomer(ctx context.Context, listing domain.GroomerListing, about string, services []string, breed string) (float64, string, bool) {
	servicesText := "Unknown"
	if len(services) > 0 {
		servicesText = strings.Join(services, ", ")
	}

	prompt := fmt.Sprintf(`As a professional dog grooming expert, analyze the compatibility of this groomer with a %s dog.

Groomer information:
Name: %s
Description: %s
Services: %s

Provide an analysis with:
1. A suitability score from 0-10, with 10 being perfectly suited for this breed
2. A detailed recommendation reason explaining why this groomer is or isn't suitable
3. Key factors about this groomer relevant to the %s breed

Format your response as a JSON object with these fields:
- suitability_score: float
- recommendation_reason: string
- key_factors: list of strings`,
		breed, listing.Name, about, servicesText, breed)

	var analysis groomerAnalysis
	if err := s.completer.CompleteJSON(ctx, prompt, &analysis); err != nil {
		if s.debug {
			log.Printf("[SCORE] AI groomer scoring failed for %q: %v", listing.Name, err)
		}
		return 0, "", false
	}
	if analysis.SuitabilityScore == nil || analysis.RecommendationReason == "" {
		return 0, "", false
	}

	return domain.ClampScore(*analysis.SuitabilityScore), analysis.RecommendationReason, true
}

// ruleScoreGroomerText scores a groomer from its name and description
func ruleScoreGroomerText(name, description, breed string) float64 {
	breedLower := strings.ToLower(breed)
	descLower := strings.ToLower(description)

	score := 0.0
	if breedLower != "" && (strings.Contains(descLower, breedLower) || strings.Contains(strings.ToLower(name), breedLower)) {
		score += groomerBreedPoints
	}
	for _, keyword := range experienceKeywords {
		if strings.Contains(descLower, keyword) {
			score += groomerExperiencePoints
		}
	}
	return domain.ClampScore(score)
}

// groomerReason templates the justification by score band
func groomerReason(score float64, breed string) string {
	switch {
	case score >= 7:
		return fmt.Sprintf("Highly recommended groomer for %s dogs with specialized experience.", breed)
	case score >= 5:
		return fmt.Sprintf("Good groomer with some experience handling %s dogs.", breed)
	default:
		return fmt.Sprintf("General pet groomer that may be able to handle %s dogs.", breed)
	}
}

// buildProductPrompt assembles the product analysis prompt from the
// structured review data
func buildProductPrompt(product domain.Product, breed, age string, breedContent, generalContent []string, avgRating *float64) string {
	ratingText := "Not available"
	if avgRating != nil {
		ratingText = fmt.Sprintf("%.1f/5", *avgRating)
	}

	breedSection := "No breed-specific reviews found"
	if len(breedContent) > 0 {
		breedSection = strings.Join(capStrings(breedContent, 3), "\n")
	}
	generalSection := "No general reviews available"
	if len(generalContent) > 0 {
		generalSection = strings.Join(capStrings(generalContent, 3), "\n")
	}

	return fmt.Sprintf(`As a professional pet nutritionist, analyze the suitability of this dog food product for a %s in the %s life stage.

Product information:
Title: %s
Price: %s
Average Rating: %s

Breed-Specific Review Excerpts:
%s

General Review Content:
%s

Known nutritional needs for %s:
Consider common health issues, dietary restrictions, and nutritional needs for this specific breed in your analysis.

Life stage considerations for %s dogs:
Consider the nutritional requirements specific to %s dogs.

Provide an analysis with:
1. A suitability score from 0-10, with 10 being perfectly suited for this breed and age
2. A detailed recommendation reason explaining why this product is or isn't suitable
3. Key nutritional benefits for this specific breed
4. Any cautions or warnings if applicable

Format your response as a JSON object with these fields:
- suitability_score: float
- recommendation_reason: string
- key_benefits: list of strings
- cautions: list of strings (optional)`,
		breed, age, product.Title, product.Price, ratingText,
		breedSection, generalSection, breed, age, age)
}

// splitReviewContent sorts review content into breed-specific and general
// buckets (general content truncated) and averages available ratings
func splitReviewContent(reviews []domain.Review, breed string) (breedContent, generalContent []string, avgRating *float64) {
	breedLower := strings.ToLower(breed)
	sum := 0.0
	count := 0

	for _, review := range reviews {
		if review.Rating != nil {
			sum += *review.Rating
			count++
		}
		if breedLower != "" && strings.Contains(strings.ToLower(review.Content), breedLower) {
			breedContent = append(breedContent, review.Content)
		} else {
			content := review.Content
			if len(content) > 500 {
				content = content[:500]
			}
			generalContent = append(generalContent, content)
		}
	}

	if count > 0 {
		avg := sum / float64(count)
		avgRating = &avg
	}
	return breedContent, generalContent, avgRating
}

// formatReviews renders reviews as structured summaries, capped at 3
func formatReviews(reviews []domain.Review) []string {
	formatted := make([]string, 0, 3)
	for _, review := range reviews {
		if len(formatted) == 3 {
			break
		}
		source := review.Source
		if source == "" {
			source = review.Title
		}
		entry := fmt.Sprintf("Source: %s\n", source)
		if review.Rating != nil {
			entry += fmt.Sprintf("Rating: %.1f/5\n", *review.Rating)
		}
		content := review.Content
		if len(content) > 300 {
			content = content[:300]
		}
		entry += fmt.Sprintf("Content: %s...", content)
		formatted = append(formatted, entry)
	}
	if len(formatted) == 0 {
		formatted = append(formatted, "No specific reviews found for this product.")
	}
	return formatted
}

// combinedReviewText joins all review content, lowercased, for scanning
func combinedReviewText(reviews []domain.Review) string {
	var b strings.Builder
	for _, r := range reviews {
		b.WriteString(r.Content)
		b.WriteString(" ")
	}
	return strings.ToLower(b.String())
}

// countMentions counts total occurrences of any term in text
func countMentions(text string, terms []string) int {
	total := 0
	for _, term := range terms {
		if term == "" {
			continue
		}
		total += strings.Count(text, term)
	}
	return total
}

// anyTermIn reports whether any term occurs in text
func anyTermIn(text string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "• "+item)
	}
	return strings.Join(lines, "\n")
}

func capStrings(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
