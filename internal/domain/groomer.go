package domain

// GroomerListing represents a groomer extracted from a marketplace
// search page or search API
type GroomerListing struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	URL          string  `json:"url"`
	Location     string  `json:"location"`
	Rating       float64 `json:"rating"`
	ReviewsCount int     `json:"reviews_count"`
	PriceInfo    string  `json:"price_info"`
	ImageURL     string  `json:"image_url,omitempty"`
	// BreedCompatibility is a preliminary 0-10 fit estimate seeded during
	// listing retrieval, before profile-level scoring.
	BreedCompatibility float64 `json:"breed_compatibility"`
	Source             string  `json:"source"` // "api", "html" or "fallback"
}

// GroomerProfile holds the detail fields from a groomer's profile page
type GroomerProfile struct {
	Services           []string `json:"services"`
	Reviews            []string `json:"reviews"`
	About              string   `json:"about"`
	BreedCompatibility float64  `json:"breed_compatibility"`
	ContactInfo        string   `json:"contact_info"`
}
