package websearch

import (
	"fmt"
	"strings"

	"github.com/petscout/backend/internal/domain"
)

// breedNutritionalNeeds feeds the breed-owner mock review with plausible
// breed-specific advice
var breedNutritionalNeeds = map[string]string{
	"german shepherd":  "higher protein for muscle maintenance and joint support ingredients.",
	"labrador":         "balanced nutrition with weight management formulas as they tend to gain weight easily.",
	"bulldog":          "foods that support joint health and are easy to digest due to their sensitive stomachs.",
	"poodle":           "high-quality proteins and ingredients for coat health and energy needs.",
	"shih tzu":         "easily digestible ingredients and smaller kibble size appropriate for their mouth size.",
	"golden retriever": "formulas that support coat health and joint function as they age.",
	"beagle":           "portion-controlled nutrition as they can be prone to obesity.",
	"chihuahua":        "calorie-dense nutrition in small kibble sizes appropriate for their tiny mouths.",
	"boxer":            "high-protein diets that support their muscular build and active lifestyle.",
	"dachshund":        "weight management formulas to prevent excess weight that can strain their backs.",
}

var (
	largeBreedSet = map[string]bool{
		"german shepherd": true, "labrador": true, "golden retriever": true, "bulldog": true,
	}
	smallBreedSet = map[string]bool{
		"shih tzu": true, "chihuahua": true, "dachshund": true,
	}
)

// mockReviews generates a deterministic review set seeded by breed and
// age, used whenever no search credential is configured
func mockReviews(cleanTitle, breed, age string, max int) []domain.Review {
	productID := strings.ReplaceAll(strings.ToLower(cleanTitle), " ", "-")

	general := fmt.Sprintf("This dog food product contains high-quality ingredients suitable for most dogs. "+
		"It has a good balance of proteins, fats, and carbohydrates needed for daily nutrition. %s%s"+
		"Overall, it's a quality product with good nutrition value.",
		breedSentence(breed), ageSentence(age))

	ingredients := fmt.Sprintf("The main ingredients in this food appear to be high-quality protein sources "+
		"followed by whole grains or vegetables. It contains essential vitamins and minerals for complete nutrition. "+
		"The protein content is appropriate for maintaining muscle mass. %s%s",
		breedSafetySentence(breed), ageCalorieSentence(age))

	reviews := []domain.Review{
		{
			ProductID: productID,
			Title:     fmt.Sprintf("Review: %s", cleanTitle),
			Source:    "petnutritionreview.com",
			Content:   general,
			Rating:    ratingOf(4.2),
		},
		{
			ProductID: productID,
			Title:     fmt.Sprintf("Ingredients Analysis: %s", cleanTitle),
			Source:    "dogfoodanalyst.com",
			Content:   ingredients,
			Rating:    ratingOf(3.9),
		},
	}

	if breed != "" {
		content := fmt.Sprintf("As a %s owner, I found this food worked well for my dog's specific needs. "+
			"%ss often need %s This food seems to address these needs reasonably well. %s"+
			"I would recommend trying this for your %s, but always monitor for individual reactions.",
			breed, breed, breedNeeds(breed), ageExperienceSentence(breed, age), breed)

		reviews = append(reviews, domain.Review{
			ProductID: productID,
			Title:     fmt.Sprintf("%s Owner Experience with %s", breed, cleanTitle),
			Source:    "breedspecificpetfoods.com",
			Content:   content,
			Rating:    ratingOf(4.0),
		})
	}

	if age != "" {
		content := fmt.Sprintf("This food contains appropriate nutrition levels for %s dogs. %s"+
			"The protein and fat ratios seem well-balanced for %s dogs' needs. "+
			"I've seen good results with %s dogs on this food, with healthy coats and appropriate energy levels.",
			age, ageAdviceSentence(breed, age), age, age)

		reviews = append(reviews, domain.Review{
			ProductID: productID,
			Title:     fmt.Sprintf("Is %s Good for %s Dogs?", cleanTitle, capitalize(age)),
			Source:    "dogagenutrition.net",
			Content:   content,
			Rating:    ratingOf(4.1),
		})
	}

	if len(reviews) > max {
		reviews = reviews[:max]
	}
	return reviews
}

// breedNeeds returns the breed's nutritional profile or a generic one
func breedNeeds(breed string) string {
	if needs, ok := breedNutritionalNeeds[strings.ToLower(breed)]; ok {
		return needs
	}
	return "a balanced diet with quality proteins and appropriate vitamins and minerals."
}

// ageAdvice returns age advice, size-class aware for known breeds
func ageAdvice(breed, age string) string {
	if strings.ToLower(age) == domain.AgePuppy {
		return "puppies need higher protein and calcium levels for growth, and this food provides appropriate levels for healthy development."
	}
	breedLower := strings.ToLower(breed)
	switch {
	case largeBreedSet[breedLower]:
		return "adult large breeds need joint support, which this food appears to provide through glucosamine and chondroitin content."
	case smallBreedSet[breedLower]:
		return "adult small breeds need calorie-dense nutrition to support their higher metabolism, which this food offers."
	default:
		return "adult dogs need balanced nutrition to maintain health and prevent obesity, which this food seems to provide."
	}
}

func breedSentence(breed string) string {
	if breed == "" {
		return ""
	}
	return fmt.Sprintf("Many %s owners have reported positive results with this food. ", breed)
}

func ageSentence(age string) string {
	if age == "" {
		return ""
	}
	return fmt.Sprintf("The kibble size and texture is appropriate for %s dogs. ", age)
}

func breedSafetySentence(breed string) string {
	if breed == "" {
		return ""
	}
	return fmt.Sprintf("There are no obvious ingredients that would be problematic for most %ss. ", breed)
}

func ageCalorieSentence(age string) string {
	if age == "" {
		return ""
	}
	return fmt.Sprintf("The calorie content is appropriate for %s dogs. ", age)
}

func ageExperienceSentence(breed, age string) string {
	if age == "" {
		return ""
	}
	return fmt.Sprintf("My %s %s had good energy levels and digestion while on this food. ", age, breed)
}

func ageAdviceSentence(breed, age string) string {
	if breed != "" {
		return fmt.Sprintf("For %s %ss, it's important to note that %s ", age, breed, ageAdvice(breed, age))
	}
	return fmt.Sprintf("For %s dogs in general, this food provides good nutrition. ", age)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func ratingOf(v float64) *float64 {
	return &v
}
