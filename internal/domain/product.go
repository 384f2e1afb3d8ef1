package domain

// Provenance values recorded on extracted records so consumers can tell
// real scrape/API results from synthetic fallback data.
const (
	SourceAPI      = "api"
	SourceHTML     = "html"
	SourceFallback = "fallback"
)

// Product represents a single product extracted from a storefront
// search or listing page
type Product struct {
	ID             string `json:"product_id"`
	Title          string `json:"title"`
	URL            string `json:"url"`
	Price          string `json:"price"` // raw display string, e.g. "₱1,250.00"
	ComparePrice   string `json:"compare_price,omitempty"`
	OnSale         bool   `json:"on_sale"`
	ImageURL       string `json:"image_url,omitempty"`
	InStock        bool   `json:"in_stock"`
	RelevanceScore int    `json:"relevance_score,omitempty"`
	Source         string `json:"source"` // "api", "html" or "fallback"
}

// ProductDetail represents the full information from a product page
type ProductDetail struct {
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Price          string            `json:"price"`
	ComparePrice   string            `json:"compare_price,omitempty"`
	OnSale         bool              `json:"on_sale"`
	InStock        bool              `json:"in_stock"`
	Images         []string          `json:"images"`
	Variants       []string          `json:"variants"`
	Specifications map[string]string `json:"specifications"`
}

// Subcategory is a single entry under a top-level category
type Subcategory struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Category represents a top-level navigation category with its children
type Category struct {
	Name          string        `json:"name"`
	URL           string        `json:"url"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Review is a review snippet retrieved from the web for a product.
// Rating is normalized to a 0-5 scale.
type Review struct {
	ProductID string   `json:"product_id"`
	Title     string   `json:"title"`
	Source    string   `json:"source"` // URL or domain of the review
	Content   string   `json:"content"`
	Rating    *float64 `json:"rating,omitempty"`
}
