package groomers

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"

	"github.com/petscout/backend/internal/domain"
	"github.com/petscout/backend/internal/infrastructure/fetch"
)

// Client retrieves groomer listings and profiles from the services
// marketplace. Search and Profile each try a JSON API first, then the
// public HTML pages; Search additionally synthesizes a placeholder when
// both tiers come back empty.
type Client struct {
	fetcher         *fetch.Client
	baseURL         string
	defaultLocation string
	debug           bool
}

// NewClient creates a marketplace client
func NewClient(fetcher *fetch.Client, baseURL, defaultLocation string) *Client {
	return &Client{
		fetcher:         fetcher,
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		defaultLocation: defaultLocation,
	}
}

// SetDebug toggles per-tier logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

type searchResponse struct {
	Groomers []apiGroomer `json:"groomers"`
}

type apiGroomer struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Location     apiLocation `json:"location"`
	Rating       float64     `json:"rating"`
	ReviewsCount int         `json:"reviews_count"`
	PriceInfo    string      `json:"price_info"`
	ProfileImage string      `json:"profile_image"`
	Bio          string      `json:"bio"`
	Services     []string    `json:"services"`
	Specialties  []string    `json:"specialties"`
}

type apiLocation struct {
	FormattedAddress string `json:"formatted_address"`
}

type profileResponse struct {
	Profile apiProfile `json:"profile"`
}

type apiProfile struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Bio          string      `json:"bio"`
	Location     apiLocation `json:"location"`
	Rating       float64     `json:"rating"`
	ReviewsCount int         `json:"reviews_count"`
	Services     []struct {
		Name string `json:"name"`
	} `json:"services"`
	Reviews []struct {
		Content string `json:"content"`
	} `json:"reviews"`
	Specialties []string `json:"specialties"`
}

// Search finds groomers near a location, seeded with a breed
// compatibility estimate and ranked by (compatibility, rating)
func (c *Client) Search(ctx context.Context, location, breed string, max int) ([]domain.GroomerListing, error) {
	slug := normalizeLocation(location, c.defaultLocation)

	listings, err := c.searchAPI(ctx, slug, breed)
	if err != nil || len(listings) == 0 {
		if err != nil && c.debug {
			log.Printf("[GROOM] search API tier failed: %v", err)
		}
		listings = c.searchHTML(ctx, slug, breed)
	}

	if len(listings) == 0 {
		log.Printf("[GROOM] all search tiers empty for %q, using synthetic fallback", slug)
		listings = c.syntheticListings(breed)
	}

	for i := range listings {
		listings[i].URL = canonicalProfileURL(
			c.baseURL, listings[i].URL, listings[i].ID, listings[i].Name, breed, c.defaultLocation)
	}

	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].BreedCompatibility != listings[j].BreedCompatibility {
			return listings[i].BreedCompatibility > listings[j].BreedCompatibility
		}
		return listings[i].Rating > listings[j].Rating
	})

	if max > 0 && len(listings) > max {
		listings = listings[:max]
	}
	return listings, nil
}

// searchAPI queries the marketplace search endpoint
func (c *Client) searchAPI(ctx context.Context, locationSlug, breed string) ([]domain.GroomerListing, error) {
	city, state, country := locationParts(locationSlug)

	params := url.Values{}
	params.Add("city", city)
	params.Add("state", state)
	params.Add("country", country)
	params.Add("service", "grooming")
	params.Add("page", "1")
	params.Add("limit", "10")

	var resp searchResponse
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/api/v1/search/groomers", params, &resp); err != nil {
		return nil, err
	}

	groomers := resp.Groomers
	if len(groomers) > maxListingCards {
		groomers = groomers[:maxListingCards]
	}

	listings := make([]domain.GroomerListing, 0, len(groomers))
	for _, g := range groomers {
		groomerURL := ""
		if g.ID != "" {
			groomerURL = fmt.Sprintf("%s/profile/%s", c.baseURL, g.ID)
		}

		name := g.Name
		if name == "" {
			name = "Unknown Groomer"
		}
		location := g.Location.FormattedAddress
		if location == "" {
			location = "Manila, Philippines"
		}
		priceInfo := g.PriceInfo
		if priceInfo == "" {
			priceInfo = "Price not available"
		}

		listings = append(listings, domain.GroomerListing{
			ID:                 g.ID,
			Name:               name,
			URL:                groomerURL,
			Location:           location,
			Rating:             g.Rating,
			ReviewsCount:       g.ReviewsCount,
			PriceInfo:          priceInfo,
			ImageURL:           g.ProfileImage,
			BreedCompatibility: seedCompatibility(breed, g.Bio, g.Specialties),
			Source:             domain.SourceAPI,
		})
	}

	if c.debug {
		log.Printf("[GROOM] search API returned %d groomers for %q", len(listings), locationSlug)
	}
	return listings, nil
}

// searchHTML scrapes the public listing page
func (c *Client) searchHTML(ctx context.Context, locationSlug, breed string) []domain.GroomerListing {
	pageURL := fmt.Sprintf("%s/s/dog-grooming/%s", c.baseURL, locationSlug)

	resp, err := c.fetcher.Get(ctx, pageURL, nil)
	if err != nil {
		log.Printf("[GROOM] search HTML tier failed for %q: %v", locationSlug, err)
		return nil
	}
	if !resp.OK() {
		log.Printf("[GROOM] search HTML tier returned status %d for %q", resp.StatusCode, locationSlug)
		return nil
	}

	listings := ExtractGroomerListings(string(resp.Body), c.baseURL, breed)
	if c.debug {
		log.Printf("[GROOM] search HTML extracted %d groomers for %q", len(listings), locationSlug)
	}
	return listings
}

// syntheticListings manufactures a placeholder groomer so the
// recommendation pipeline always has a candidate
func (c *Client) syntheticListings(breed string) []domain.GroomerListing {
	name := "Professional Pet Groomer"
	compatibility := 7.0
	if b := strings.TrimSpace(breed); b != "" {
		name = fmt.Sprintf("Professional %s Groomer", b)
		compatibility = 8.0
	}

	return []domain.GroomerListing{
		{
			ID:                 "fallback-groomer",
			Name:               name,
			Location:           "Manila, Philippines",
			Rating:             4.5,
			PriceInfo:          "Price not available",
			BreedCompatibility: compatibility,
			Source:             domain.SourceFallback,
		},
	}
}

// Profile fetches a groomer's profile, trying the profile API when an id
// can be derived from the URL and scraping the page otherwise
func (c *Client) Profile(ctx context.Context, groomerURL, breed string) (*domain.GroomerProfile, error) {
	if strings.TrimSpace(groomerURL) == "" {
		return nil, fmt.Errorf("%w: groomer url cannot be empty", domain.ErrInvalidRequest)
	}

	if profileID := profileIDFromURL(groomerURL); profileID != "" {
		if profile, err := c.profileAPI(ctx, profileID, breed); err == nil {
			return profile, nil
		} else if c.debug {
			log.Printf("[GROOM] profile API tier failed for %q: %v", profileID, err)
		}
	}

	resp, err := c.fetcher.Get(ctx, groomerURL, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: profile page returned status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	profile := ExtractGroomerProfile(string(resp.Body), breed)
	if profile == nil {
		return nil, fmt.Errorf("%w: profile page could not be parsed", domain.ErrSourceUnavailable)
	}
	return profile, nil
}

// profileAPI queries the profile endpoint
func (c *Client) profileAPI(ctx context.Context, profileID, breed string) (*domain.GroomerProfile, error) {
	var resp profileResponse
	endpoint := fmt.Sprintf("%s/api/v1/profile/%s", c.baseURL, url.PathEscape(profileID))
	if err := c.fetcher.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	p := resp.Profile

	services := make([]string, 0, len(p.Services))
	for _, s := range p.Services {
		if s.Name != "" {
			services = append(services, s.Name)
		}
	}

	reviews := make([]string, 0, maxProfileReview)
	for _, r := range p.Reviews {
		if len(reviews) == maxProfileReview {
			break
		}
		if r.Content != "" {
			reviews = append(reviews, r.Content)
		}
	}

	compatibility := seedCompatibility(breed, p.Bio, p.Specialties)
	if breed == "" {
		compatibility = 7.0
	}

	return &domain.GroomerProfile{
		Services:           services,
		Reviews:            reviews,
		About:              p.Bio,
		BreedCompatibility: compatibility,
		ContactInfo:        defaultContactInfo,
	}, nil
}

// seedCompatibility estimates breed fit from structured groomer data:
// a specialty naming the breed beats a bio mention, which beats a size
// category match; anything else gets a neutral default when a breed is
// requested at all.
func seedCompatibility(breed, bio string, specialties []string) float64 {
	if breed == "" {
		return 0
	}

	breedLower := strings.ToLower(breed)
	for _, specialty := range specialties {
		if strings.Contains(strings.ToLower(specialty), breedLower) {
			return 10.0
		}
	}
	if strings.Contains(strings.ToLower(bio), breedLower) {
		return 9.0
	}
	if matchesBreedCategory(breed, bio) {
		return 8.0
	}
	for _, specialty := range specialties {
		if matchesBreedCategory(breed, specialty) {
			return 8.0
		}
	}
	return 7.0
}
