package storefront

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/petscout/backend/internal/domain"
	"github.com/petscout/backend/internal/infrastructure/fetch"
)

// Client retrieves products from the storefront. Each operation walks the
// source tiers in order: structured JSON API, HTML scrape, synthetic
// fallback. The JSON API is preferred because its shape is more stable
// than the site markup.
type Client struct {
	fetcher *fetch.Client
	baseURL string
	debug   bool
}

// NewClient creates a storefront client
func NewClient(fetcher *fetch.Client, baseURL string) *Client {
	return &Client{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SetDebug toggles tier-decision logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// suggestResponse is the storefront's predictive search API shape
type suggestResponse struct {
	Resources struct {
		Results struct {
			Products []apiProduct `json:"products"`
		} `json:"results"`
	} `json:"resources"`
}

// productsResponse is the storefront's collection listing API shape
type productsResponse struct {
	Products []listedProduct `json:"products"`
}

type apiProduct struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Price     string `json:"price"`
	Image     string `json:"image"`
	Available bool   `json:"available"`
}

type listedProduct struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Handle   string `json:"handle"`
	Images   []struct {
		Src string `json:"src"`
	} `json:"images"`
	Variants []struct {
		Price          string  `json:"price"`
		CompareAtPrice *string `json:"compare_at_price"`
		Available      bool    `json:"available"`
	} `json:"variants"`
}

// Search finds products matching a query, ranked by title relevance
func (c *Client) Search(ctx context.Context, query string, page, limit int) ([]domain.Product, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query cannot be empty", domain.ErrInvalidRequest)
	}

	products, err := c.searchAPI(ctx, query)
	if err != nil || len(products) == 0 {
		if err != nil && c.debug {
			log.Printf("[STORE] search API tier failed: %v", err)
		}
		products = c.searchHTML(ctx, query)
	}

	if len(products) == 0 {
		log.Printf("[STORE] all search tiers empty for %q, using synthetic fallback", query)
		products = c.syntheticProducts(query)
	}

	scoreRelevance(products, query)
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].RelevanceScore > products[j].RelevanceScore
	})

	return paginate(dedupeByURL(products), page, limit), nil
}

// searchAPI queries the predictive search endpoint
func (c *Client) searchAPI(ctx context.Context, query string) ([]domain.Product, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("resources[type]", "product")
	params.Add("resources[limit]", "20")

	var resp suggestResponse
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/search/suggest.json", params, &resp); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(resp.Resources.Results.Products))
	for _, p := range resp.Resources.Results.Products {
		productURL := resolveURL(c.baseURL, p.URL)
		products = append(products, domain.Product{
			ID:       productIDFromURL(productURL),
			Title:    strings.TrimSpace(p.Title),
			URL:      productURL,
			Price:    strings.TrimSpace(p.Price),
			ImageURL: normalizeImageURL(p.Image),
			InStock:  p.Available,
			Source:   domain.SourceAPI,
		})
	}

	if c.debug {
		log.Printf("[STORE] search API returned %d products for %q", len(products), query)
	}
	return products, nil
}

// searchHTML scrapes the storefront search page
func (c *Client) searchHTML(ctx context.Context, query string) []domain.Product {
	params := url.Values{}
	params.Add("q", query)
	params.Add("type", "product")

	resp, err := c.fetcher.Get(ctx, c.baseURL+"/search", params)
	if err != nil {
		log.Printf("[STORE] search HTML tier failed for %q: %v", query, err)
		return nil
	}
	if !resp.OK() {
		log.Printf("[STORE] search HTML tier returned status %d for %q", resp.StatusCode, query)
		return nil
	}

	products := ExtractProducts(string(resp.Body), c.baseURL)
	if c.debug {
		log.Printf("[STORE] search HTML extracted %d products for %q", len(products), query)
	}
	return products
}

// Products lists products, optionally filtered by category
func (c *Client) Products(ctx context.Context, category string, page, limit int) ([]domain.Product, error) {
	products, err := c.productsAPI(ctx, category, page)
	if err != nil || len(products) == 0 {
		if err != nil && c.debug {
			log.Printf("[STORE] listing API tier failed: %v", err)
		}
		products = c.productsHTML(ctx, category, page)
	}

	if len(products) == 0 {
		log.Printf("[STORE] all listing tiers empty (category %q), using synthetic fallback", category)
		products = c.syntheticProducts(category)
	}

	return paginate(dedupeByURL(products), 1, limit), nil
}

// productsAPI queries the collection listing endpoint
func (c *Client) productsAPI(ctx context.Context, category string, page int) ([]domain.Product, error) {
	endpoint := c.baseURL + "/products.json"
	if category != "" {
		endpoint = fmt.Sprintf("%s/collections/%s/products.json", c.baseURL, url.PathEscape(category))
	}

	params := url.Values{}
	params.Add("page", fmt.Sprintf("%d", page))

	var resp productsResponse
	if err := c.fetcher.GetJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		if p.Handle == "" {
			continue
		}

		product := domain.Product{
			ID:     p.Handle,
			Title:  strings.TrimSpace(p.Title),
			URL:    fmt.Sprintf("%s/products/%s", c.baseURL, p.Handle),
			Price:  "Price not available",
			Source: domain.SourceAPI,
		}
		if len(p.Images) > 0 {
			product.ImageURL = normalizeImageURL(p.Images[0].Src)
		}
		if len(p.Variants) > 0 {
			v := p.Variants[0]
			product.Price = v.Price
			product.InStock = v.Available
			if v.CompareAtPrice != nil && *v.CompareAtPrice != "" {
				product.ComparePrice = *v.CompareAtPrice
				product.OnSale = true
			}
		}
		products = append(products, product)
	}

	return products, nil
}

// productsHTML scrapes a collection page
func (c *Client) productsHTML(ctx context.Context, category string, page int) []domain.Product {
	collection := "all"
	if category != "" {
		collection = category
	}

	params := url.Values{}
	params.Add("page", fmt.Sprintf("%d", page))

	resp, err := c.fetcher.Get(ctx, fmt.Sprintf("%s/collections/%s", c.baseURL, url.PathEscape(collection)), params)
	if err != nil {
		log.Printf("[STORE] listing HTML tier failed (category %q): %v", category, err)
		return nil
	}
	if !resp.OK() {
		log.Printf("[STORE] listing HTML tier returned status %d (category %q)", resp.StatusCode, category)
		return nil
	}

	return ExtractProducts(string(resp.Body), c.baseURL)
}

// Detail fetches and parses a product page by id (handle)
func (c *Client) Detail(ctx context.Context, productID string) (*domain.ProductDetail, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, fmt.Errorf("%w: product id cannot be empty", domain.ErrInvalidRequest)
	}

	resp, err := c.fetcher.Get(ctx, fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(productID)), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrProductNotFound
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: product page returned status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	detail := ExtractProductDetail(string(resp.Body))
	if detail == nil {
		return nil, fmt.Errorf("%w: product page could not be parsed", domain.ErrSourceUnavailable)
	}
	return detail, nil
}

// Categories scrapes the category trees from the home page navigation
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	resp, err := c.fetcher.Get(ctx, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: home page returned status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	return ExtractCategories(string(resp.Body), c.baseURL), nil
}

// syntheticProducts manufactures a placeholder result set so downstream
// stages always receive at least one candidate. Records are tagged with
// the fallback source so consumers can tell them apart from real data.
func (c *Client) syntheticProducts(query string) []domain.Product {
	title := "Pet Essentials Sampler"
	if q := strings.TrimSpace(query); q != "" {
		title = fmt.Sprintf("%s Essentials", titleCase(q))
	}
	slug := slugify(title)

	return []domain.Product{
		{
			ID:      slug,
			Title:   title,
			URL:     fmt.Sprintf("%s/products/%s", c.baseURL, slug),
			Price:   "Price not available",
			InStock: true,
			Source:  domain.SourceFallback,
		},
	}
}

// scoreRelevance assigns a title-match relevance score to each product:
// +10 when the full query appears in the title, +5 per matched query word
func scoreRelevance(products []domain.Product, query string) {
	queryLower := strings.ToLower(query)
	queryWords := strings.Fields(queryLower)

	for i := range products {
		titleLower := strings.ToLower(products[i].Title)
		score := 0

		if strings.Contains(titleLower, queryLower) {
			score += 10
		}

		titleWords := strings.Fields(titleLower)
		for _, qw := range queryWords {
			for _, tw := range titleWords {
				if strings.Contains(tw, qw) {
					score += 5
					break
				}
			}
		}

		products[i].RelevanceScore = score
	}
}

// dedupeByURL drops duplicate products, first-seen wins
func dedupeByURL(products []domain.Product) []domain.Product {
	seen := make(map[string]bool, len(products))
	result := products[:0:0]
	for _, p := range products {
		if seen[p.URL] {
			continue
		}
		seen[p.URL] = true
		result = append(result, p)
	}
	return result
}

// paginate slices a result set into the requested page window
func paginate(products []domain.Product, page, limit int) []domain.Product {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	start := (page - 1) * limit
	if start >= len(products) {
		return []domain.Product{}
	}
	end := start + limit
	if end > len(products) {
		end = len(products)
	}
	return products[start:end]
}

// slugify converts a name to a URL slug
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(collapseDashes(b.String()), "-")
}

func collapseDashes(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

// titleCase uppercases the first letter of each word
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
