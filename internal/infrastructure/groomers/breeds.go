package groomers

import "strings"

// Breed size categories. Used when a groomer never names the breed but
// advertises for a size class the breed belongs to.
var (
	largeBreeds = []string{
		"german shepherd", "rottweiler", "great dane", "doberman",
		"mastiff", "saint bernard",
	}
	mediumBreeds = []string{
		"golden retriever", "labrador", "boxer", "collie", "husky",
		"bulldog",
	}
	smallBreeds = []string{
		"chihuahua", "pomeranian", "shih tzu", "yorkshire terrier",
		"maltese", "poodle",
	}

	categoryTerms = map[string][]string{
		"large":  {"large breed", "large dog", "big dog"},
		"medium": {"medium breed", "medium dog", "medium-sized"},
		"small":  {"small breed", "small dog", "toy breed", "miniature"},
	}
)

// breedCategory classifies a breed as large, medium or small; empty when
// the breed is not in any table
func breedCategory(breed string) string {
	breedLower := strings.ToLower(breed)
	for _, b := range largeBreeds {
		if strings.Contains(breedLower, b) {
			return "large"
		}
	}
	for _, b := range mediumBreeds {
		if strings.Contains(breedLower, b) {
			return "medium"
		}
	}
	for _, b := range smallBreeds {
		if strings.Contains(breedLower, b) {
			return "small"
		}
	}
	return ""
}

// matchesBreedCategory reports whether text mentions the size class the
// breed belongs to (e.g. "large dog" for a German Shepherd)
func matchesBreedCategory(breed, text string) bool {
	category := breedCategory(breed)
	if category == "" {
		return false
	}
	textLower := strings.ToLower(text)
	for _, term := range categoryTerms[category] {
		if strings.Contains(textLower, term) {
			return true
		}
	}
	return false
}
