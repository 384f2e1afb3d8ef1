package groomers

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/petscout/backend/internal/domain"
)

const (
	maxListingCards  = 5
	maxProfileReview = 3

	defaultContactInfo = "Contact via petbacker.ph"
)

var (
	reviewCountPattern = regexp.MustCompile(`(\d+)`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// ExtractGroomerListings parses groomer cards from a marketplace search
// page. Extraction is total: a card that cannot be parsed is skipped.
// The marketplace has shipped two layouts; both selectors are tried.
func ExtractGroomerListings(html, baseURL, breed string) []domain.GroomerListing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[GROOM] unparseable listing page: %v", err)
		return nil
	}

	cards := doc.Find(".sitter-card")
	if cards.Length() == 0 {
		cards = doc.Find("a.listing-item")
	}

	var listings []domain.GroomerListing

	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= maxListingCards {
			return false
		}

		groomerURL := ""
		if card.Is("a") {
			if href, ok := card.Attr("href"); ok {
				groomerURL = baseURL + strings.TrimSpace(href)
			}
		} else if link := card.Find("a.profileimage-bg").First(); link.Length() > 0 {
			if href, ok := link.Attr("href"); ok {
				groomerURL = baseURL + strings.TrimSpace(href)
			}
		}

		name := strings.TrimSpace(card.Find(".sitter-name").First().Text())
		if name == "" {
			name = "Unknown Groomer"
		}

		location := squashSpaces(card.Find(".list-group-item:has(.fa-map-marker)").First().Text())
		if location == "" {
			location = "Manila, Philippines"
		}

		rating := 0.0
		if text := strings.TrimSpace(card.Find(".rate-number").First().Text()); text != "" {
			if parsed, err := strconv.ParseFloat(text, 64); err == nil {
				rating = parsed
			}
		}

		reviewsCount := 0
		if m := reviewCountPattern.FindStringSubmatch(card.Find(".rate-reviews").First().Text()); m != nil {
			reviewsCount, _ = strconv.Atoi(m[1])
		}

		priceInfo := strings.TrimSpace(card.Find(".price-label").First().Text())
		if priceInfo == "" {
			priceInfo = "Price not available"
		}

		imageURL, _ := card.Find("img.sitter-img").First().Attr("src")

		compatibility := 0.0
		if breed != "" {
			// Seed score for HTML cards; refined at profile level
			compatibility = 7.0
		}

		listings = append(listings, domain.GroomerListing{
			ID:                 listingIDFromURL(groomerURL, len(listings)),
			Name:               name,
			URL:                groomerURL,
			Location:           location,
			Rating:             rating,
			ReviewsCount:       reviewsCount,
			PriceInfo:          priceInfo,
			ImageURL:           imageURL,
			BreedCompatibility: compatibility,
			Source:             domain.SourceHTML,
		})
		return true
	})

	return listings
}

// ExtractGroomerProfile parses a groomer's profile page and recomputes the
// breed compatibility from the profile text
func ExtractGroomerProfile(html, breed string) *domain.GroomerProfile {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[GROOM] unparseable profile page: %v", err)
		return nil
	}

	services := []string{}
	doc.Find(".service-card").Each(func(_ int, card *goquery.Selection) {
		if name := strings.TrimSpace(card.Find(".service-name").First().Text()); name != "" {
			services = append(services, name)
		}
	})

	reviews := []string{}
	doc.Find(".review-item").EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= maxProfileReview {
			return false
		}
		if text := strings.TrimSpace(item.Find(".review-text").First().Text()); text != "" {
			reviews = append(reviews, text)
		}
		return true
	})

	about := strings.TrimSpace(doc.Find(".about-me").First().Text())

	contactInfo := strings.TrimSpace(doc.Find(".contact-info").First().Text())
	if contactInfo == "" {
		contactInfo = defaultContactInfo
	}

	return &domain.GroomerProfile{
		Services:           services,
		Reviews:            reviews,
		About:              about,
		BreedCompatibility: profileCompatibility(breed, about, reviews),
		ContactInfo:        contactInfo,
	}
}

// profileCompatibility scores breed fit from profile text: a direct breed
// mention in the about section beats a mention in reviews, which beats an
// "all breeds" claim; anything else keeps the default seed.
func profileCompatibility(breed, about string, reviews []string) float64 {
	score := 7.0
	if breed == "" {
		return score
	}

	breedLower := strings.ToLower(breed)
	aboutLower := strings.ToLower(about)

	if about != "" && strings.Contains(aboutLower, breedLower) {
		score = 9.0
	} else {
		for _, review := range reviews {
			if strings.Contains(strings.ToLower(review), breedLower) {
				score = 8.5
				break
			}
		}
	}

	allBreedsTerms := []string{"all breeds", "any breed", "all dogs", "any dog"}
	for _, term := range allBreedsTerms {
		if strings.Contains(aboutLower, term) {
			if score < 8.0 {
				score = 8.0
			}
			break
		}
	}

	return score
}

// listingIDFromURL derives a stable id from a groomer URL, falling back
// to a positional placeholder
func listingIDFromURL(groomerURL string, position int) string {
	path := strings.TrimSuffix(groomerURL, "/")
	if strings.Contains(path, "/profile/") ||
		strings.Contains(path, "/grooming/") ||
		strings.Contains(path, "/pet-sitter/") {
		segments := strings.Split(path, "/")
		return segments[len(segments)-1]
	}
	return "groomer-" + strconv.Itoa(position)
}

func squashSpaces(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
