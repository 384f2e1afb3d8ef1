package domain

// Dog age categories accepted by the recommendation API
const (
	AgePuppy = "puppy"
	AgeAdult = "adult"
)

// ValidAge reports whether age is one of the accepted categories
func ValidAge(age string) bool {
	return age == AgePuppy || age == AgeAdult
}

// ProductRecommendation is a scored product with its justification
type ProductRecommendation struct {
	ProductID            string   `json:"product_id"`
	Title                string   `json:"title"`
	URL                  string   `json:"url"`
	Price                string   `json:"price"`
	ImageURL             string   `json:"image_url,omitempty"`
	Rating               *float64 `json:"rating,omitempty"`
	Reviews              []string `json:"reviews"`
	RecommendationReason string   `json:"recommendation_reason"`
	SuitabilityScore     float64  `json:"suitability_score"` // clamped to [0,10]
}

// GroomerRecommendation is a scored groomer with its justification
type GroomerRecommendation struct {
	GroomerID            string   `json:"groomer_id"`
	Name                 string   `json:"name"`
	URL                  string   `json:"url"`
	Location             string   `json:"location"`
	Services             []string `json:"services"`
	Rating               *float64 `json:"rating,omitempty"`
	Reviews              []string `json:"reviews"`
	RecommendationReason string   `json:"recommendation_reason"`
	SuitabilityScore     float64  `json:"suitability_score"` // clamped to [0,10]
	ImageURL             string   `json:"image_url,omitempty"`
	ContactInfo          string   `json:"contact_info,omitempty"`
}

// RecommendationResponse is the complete output of a recommendation
// request. Recommendations and GroomerRecommendations are sorted by
// suitability score descending, stable on ties.
type RecommendationResponse struct {
	Query                  string                  `json:"query"`
	DogBreed               string                  `json:"dog_breed"`
	Age                    string                  `json:"age"`
	Recommendations        []ProductRecommendation `json:"recommendations"`
	GroomerRecommendations []GroomerRecommendation `json:"groomer_recommendations,omitempty"`
	Summary                string                  `json:"summary"`
	GroomerSummary         string                  `json:"groomer_summary,omitempty"`
}

// ClampScore limits a suitability score to the [0,10] range
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
