package groomers

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Profile-shaped path patterns. Anything else is a listing page and must
// be rewritten before it is handed to callers.
var profilePathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^/profile/[^/]+`),
	regexp.MustCompile(`^/[^/]+/grooming/.+`),
	regexp.MustCompile(`^/pet-sitter/.+`),
	regexp.MustCompile(`^/groomer/.+`),
}

// listingLocationPattern captures the location slug from a search listing
// URL such as /s/dog-grooming/manila--metro-manila--philippines
var listingLocationPattern = regexp.MustCompile(`/s/[^/]+/([^/]+)$`)

// isProfileShaped reports whether rawURL points at an individual groomer
// rather than a search listing
func isProfileShaped(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	for _, p := range profilePathPatterns {
		if p.MatchString(u.Path) {
			return true
		}
	}
	return false
}

// canonicalProfileURL rewrites a listing-shaped URL into a profile-shaped
// one. Three tiers: a real id gives /profile/<id>; a groomer name plus a
// location detected in the listing URL gives /<region>/grooming/<location>/
// <name-slug>; otherwise a generic breed-specialist URL under the default
// location. Profile-shaped URLs pass through unchanged.
func canonicalProfileURL(baseURL, rawURL, id, name, breed, defaultLocation string) string {
	if rawURL != "" && isProfileShaped(rawURL) {
		return rawURL
	}

	if id != "" && !strings.HasPrefix(id, "groomer-") {
		return fmt.Sprintf("%s/profile/%s", baseURL, id)
	}

	nameSlug := slugify(name)
	if nameSlug != "" && nameSlug != "unknown-groomer" {
		if m := listingLocationPattern.FindStringSubmatch(rawURL); m != nil {
			location := m[1]
			region := "philippines"
			if parts := strings.Split(location, "--"); len(parts) >= 3 {
				region = parts[len(parts)-1]
			}
			return fmt.Sprintf("%s/%s/grooming/%s/%s", baseURL, region, location, nameSlug)
		}
	}

	breedSlug := slugify(breed)
	if breedSlug == "" {
		breedSlug = "pet"
	}
	return fmt.Sprintf("%s/pet-sitter/%s-specialist/%s", baseURL, breedSlug, defaultLocation)
}

// normalizeLocation converts a human-entered location into the marketplace
// slug form, e.g. "Quezon City" -> "quezon-city--philippines"
func normalizeLocation(location, defaultLocation string) string {
	location = strings.TrimSpace(strings.ToLower(location))
	if location == "" || location == "philippines" {
		return defaultLocation
	}
	location = strings.ReplaceAll(location, " ", "-")
	if !strings.Contains(location, "philippines") {
		location = location + "--philippines"
	}
	return location
}

// locationParts splits a location slug into the city, state and country
// query parameters the search API expects
func locationParts(location string) (city, state, country string) {
	city, state, country = "manila", "metro-manila", "philippines"
	parts := strings.Split(location, "--")
	if len(parts) > 0 && parts[0] != "" {
		city = parts[0]
	}
	if len(parts) > 1 && parts[1] != "" {
		state = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		country = parts[2]
	}
	return city, state, country
}

// profileIDFromURL derives the marketplace profile id used by the profile
// API from a groomer URL; empty when no id can be derived
func profileIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := strings.TrimSuffix(u.Path, "/")

	if idx := strings.Index(path, "/profile/"); idx >= 0 {
		return path[idx+len("/profile/"):]
	}
	if strings.Contains(path, "/grooming/") {
		segments := strings.Split(strings.Trim(path, "/"), "/")
		if len(segments) >= 3 {
			return segments[len(segments)-1]
		}
	}
	return ""
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
	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "-")
}
