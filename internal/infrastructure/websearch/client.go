package websearch

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/petscout/backend/internal/domain"
	"github.com/petscout/backend/internal/infrastructure/fetch"
)

const (
	searchDepth       = "advanced"
	minResultsPerTerm = 2
	contentBudget     = 1000
	excerptRadius     = 100
	maxBreedExcerpts  = 2
)

var (
	parentheticalPattern = regexp.MustCompile(`\(.*?\)`)
	punctuationPattern   = regexp.MustCompile(`[^\w\s]`)
	spacesPattern        = regexp.MustCompile(`\s+`)

	// Rating phrasings seen in review snippets, e.g. "4.5/5",
	// "4.5 out of 5", "rated 4.5"
	ratingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d\.?\d?)/5`),
		regexp.MustCompile(`(?i)(\d\.?\d?) out of 5`),
		regexp.MustCompile(`(?i)(\d\.?\d?) stars`),
		regexp.MustCompile(`(?i)rating[^\d]+(\d\.?\d?)`),
		regexp.MustCompile(`(?i)rated[^\d]+(\d\.?\d?)`),
		regexp.MustCompile(`(?i)score[^\d]+(\d\.?\d?)`),
	}
)

// Client finds product reviews through a web-search API. Without a
// credential it serves deterministic mock reviews instead, so review
// retrieval never blocks the recommendation pipeline.
type Client struct {
	fetcher *fetch.Client
	baseURL string
	apiKey  string
	debug   bool
}

// NewClient creates a review search client. An empty apiKey selects the
// mock review library.
func NewClient(fetcher *fetch.Client, baseURL, apiKey string) *Client {
	return &Client{
		fetcher: fetcher,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// SetDebug toggles per-query logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchReviews runs several query strategies against the search API and
// folds the results into review records. Individual query failures are
// logged and skipped.
func (c *Client) SearchReviews(ctx context.Context, productTitle, breed, age string, max int) ([]domain.Review, error) {
	if max < 1 {
		max = 5
	}
	cleanTitle := cleanProductTitle(productTitle)

	if c.apiKey == "" {
		log.Printf("[REVIEW] no search credential, using mock reviews for %q", cleanTitle)
		return mockReviews(cleanTitle, breed, age, max), nil
	}

	queries := buildQueries(cleanTitle, breed, age)
	perQuery := max / len(queries)
	if perQuery < minResultsPerTerm {
		perQuery = minResultsPerTerm
	}

	var results []searchResult
	for _, query := range queries {
		var resp searchResponse
		err := c.fetcher.PostJSON(ctx, c.baseURL+"/search", searchRequest{
			APIKey:      c.apiKey,
			Query:       query,
			SearchDepth: searchDepth,
			MaxResults:  perQuery,
		}, &resp)
		if err != nil {
			log.Printf("[REVIEW] search query %q failed: %v", query, err)
			continue
		}
		results = append(results, resp.Results...)
	}

	results = dedupeResults(results)
	if len(results) > max {
		results = results[:max]
	}

	reviews := make([]domain.Review, 0, len(results))
	for _, r := range results {
		reviews = append(reviews, domain.Review{
			ProductID: cleanTitle,
			Title:     r.Title,
			Source:    r.URL,
			Content:   relevantContent(r.Content, breed),
			Rating:    extractRating(r.Content + " " + r.Title),
		})
	}

	if c.debug {
		log.Printf("[REVIEW] found %d reviews for %q", len(reviews), cleanTitle)
	}
	return reviews, nil
}

// cleanProductTitle strips parentheticals and punctuation that throw off
// web search
func cleanProductTitle(title string) string {
	title = parentheticalPattern.ReplaceAllString(title, "")
	title = punctuationPattern.ReplaceAllString(title, " ")
	return strings.TrimSpace(spacesPattern.ReplaceAllString(title, " "))
}

// buildQueries assembles the query strategies: a product review query, a
// breed nutrition query, an ingredient analysis query and, when a breed
// is given, a breed health query
func buildQueries(cleanTitle, breed, age string) []string {
	breedOrDog := breed
	if breedOrDog == "" {
		breedOrDog = "dog"
	}

	queries := []string{
		squash(fmt.Sprintf("%s dog food review %s %s", cleanTitle, breed, age)),
		squash(fmt.Sprintf("%s %s food nutrition review", cleanTitle, breedOrDog)),
		squash(fmt.Sprintf("%s dog food ingredients analysis quality %s", cleanTitle, age)),
	}
	if breed != "" {
		queries = append(queries, squash(fmt.Sprintf("best dog food for %s %s breed health issues", breed, age)))
	}
	return queries
}

func squash(s string) string {
	return strings.TrimSpace(spacesPattern.ReplaceAllString(s, " "))
}

// dedupeResults drops duplicate URLs, first-seen wins
func dedupeResults(results []searchResult) []searchResult {
	seen := make(map[string]bool, len(results))
	deduped := results[:0:0]
	for _, r := range results {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		deduped = append(deduped, r)
	}
	return deduped
}

// extractRating pulls a star rating out of free text; scores above 5 are
// assumed to be on a 10-point scale and halved
func extractRating(text string) *float64 {
	for _, pattern := range ratingPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		rating, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if rating > 5.0 {
			rating = rating / 2.0
		}
		return &rating
	}
	return nil
}

// relevantContent bounds review content to the leading segment plus up to
// two excerpts around breed mentions found deeper in the text
func relevantContent(content, breed string) string {
	relevant := content
	if len(relevant) > contentBudget {
		relevant = relevant[:contentBudget]
	}

	if breed == "" {
		return relevant
	}

	pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(breed))
	if err != nil {
		return relevant
	}

	var excerpts []string
	for _, loc := range pattern.FindAllStringIndex(content, maxBreedExcerpts) {
		start := loc[0] - excerptRadius
		if start < 0 {
			start = 0
		}
		end := loc[1] + excerptRadius
		if end > len(content) {
			end = len(content)
		}
		excerpts = append(excerpts, content[start:end])
	}

	if len(excerpts) > 0 {
		relevant += "\n\nBreed-specific mentions:\n" + strings.Join(excerpts, "\n..\n")
	}
	return relevant
}
