package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/petscout/backend/internal/domain"
	"github.com/petscout/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog     domain.StorefrontSource
	recommender *usecase.RecommendService
}

// NewHandler creates a new HTTP handler
func NewHandler(catalog domain.StorefrontSource, recommender *usecase.RecommendService) *Handler {
	return &Handler{catalog: catalog, recommender: recommender}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "petscout-backend",
		"version": "1.0.0",
	})
}

// Search handles product search requests
func (h *Handler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		badRequest(c, "query parameter is required")
		return
	}
	page, ok := intQuery(c, "page", 1, 1, 0)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", 20, 1, 100)
	if !ok {
		return
	}

	products, err := h.catalog.Search(c.Request.Context(), query, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"query":   query,
		"count":   len(products),
		"page":    page,
		"limit":   limit,
		"data":    products,
	})
}

// Recommend handles personalized recommendation requests
func (h *Handler) Recommend(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		badRequest(c, "query parameter is required")
		return
	}
	breed := strings.TrimSpace(c.Query("dog_breed"))
	if breed == "" {
		badRequest(c, "dog_breed parameter is required")
		return
	}
	age := strings.ToLower(strings.TrimSpace(c.Query("age")))
	if !domain.ValidAge(age) {
		badRequest(c, "age must be 'puppy' or 'adult'")
		return
	}
	page, ok := intQuery(c, "page", 1, 1, 0)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", 10, 1, 20)
	if !ok {
		return
	}
	maxRecommendations, ok := intQuery(c, "max_recommendations", 5, 1, 10)
	if !ok {
		return
	}
	includeGroomers, ok := boolQuery(c, "include_groomers", true)
	if !ok {
		return
	}

	result, err := h.recommender.Recommend(c.Request.Context(), usecase.RecommendRequest{
		Query:              query,
		Breed:              breed,
		Age:                age,
		Page:               page,
		Limit:              limit,
		MaxRecommendations: maxRecommendations,
		IncludeGroomers:    includeGroomers,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response := gin.H{
		"success":         true,
		"query":           result.Query,
		"dog_breed":       result.DogBreed,
		"age":             result.Age,
		"count":           len(result.Recommendations),
		"recommendations": result.Recommendations,
		"summary":         result.Summary,
	}
	if includeGroomers && len(result.GroomerRecommendations) > 0 {
		response["groomer_count"] = len(result.GroomerRecommendations)
		response["groomer_recommendations"] = result.GroomerRecommendations
		response["groomer_summary"] = result.GroomerSummary
	}

	c.JSON(http.StatusOK, response)
}

// Products handles category listing requests
func (h *Handler) Products(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	page, ok := intQuery(c, "page", 1, 1, 0)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", 20, 1, 100)
	if !ok {
		return
	}

	products, err := h.catalog.Products(c.Request.Context(), category, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(products),
		"page":    page,
		"limit":   limit,
		"data":    products,
	})
}

// Product handles single product detail requests
func (h *Handler) Product(c *gin.Context) {
	productID := c.Param("id")

	detail, err := h.catalog.Detail(c.Request.Context(), productID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    detail,
	})
}

// Categories handles category tree requests
func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(categories),
		"data":    categories,
	})
}

// intQuery parses an integer query parameter with a default and an
// inclusive range. A max of 0 means unbounded. On invalid input it
// writes a 400 response and returns ok=false.
func intQuery(c *gin.Context, name string, def, min, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name+" must be an integer")
		return 0, false
	}
	if value < min || (max > 0 && value > max) {
		badRequest(c, name+" is out of range")
		return 0, false
	}
	return value, true
}

// boolQuery parses a boolean query parameter with a default
func boolQuery(c *gin.Context, name string, def bool) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, name+" must be a boolean")
		return false, false
	}
	return value, true
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
	})
}

// writeError maps domain errors to HTTP status codes
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		badRequest(c, err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Product not found",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	}
}
