package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petscout/backend/internal/infrastructure/fetch"
)

func newTestClient(serverURL, apiKey string) *Client {
	fetcher := fetch.NewClient(fetch.Options{MaxRetries: 1})
	return NewClient(fetcher, serverURL, apiKey)
}

func TestSearchReviews_QueriesAndDedup(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		atomic.AddInt32(&calls, 1)

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-key", req.APIKey)
		assert.Equal(t, searchDepth, req.SearchDepth)
		assert.NotEmpty(t, req.Query)

		// Same URL from every query; must be deduplicated
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"title":"Acana review 4.5/5","url":"https://reviews.example.com/acana","content":"Rated 4.5/5 overall. Good for labrador dogs."}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	reviews, err := client.SearchReviews(context.Background(), "Acana Puppy (Small Breed)", "labrador", "puppy", 5)
	require.NoError(t, err)

	// 3 base queries + 1 breed query
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls))
	require.Len(t, reviews, 1, "duplicate URLs collapse to one review")

	review := reviews[0]
	assert.Equal(t, "Acana Puppy Small Breed", review.ProductID, "title is cleaned before use")
	assert.Equal(t, "https://reviews.example.com/acana", review.Source)
	require.NotNil(t, review.Rating)
	assert.Equal(t, 4.5, *review.Rating)
	assert.Contains(t, review.Content, "Breed-specific mentions:")
}

func TestSearchReviews_QueryFailuresAreLocal(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"title":"ok","url":"https://x/` + strings.Repeat("a", int(n)) + `","content":"fine"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	reviews, err := client.SearchReviews(context.Background(), "Kibble", "", "", 5)
	require.NoError(t, err, "a failed query must not fail the batch")
	assert.Len(t, reviews, 2, "remaining queries still contribute")
}

func TestSearchReviews_MockWithoutCredential(t *testing.T) {
	client := newTestClient("http://localhost:0", "")

	reviews, err := client.SearchReviews(context.Background(), "Acana Puppy", "labrador", "puppy", 5)
	require.NoError(t, err)
	require.Len(t, reviews, 4, "general, ingredients, breed and age reviews")

	for _, r := range reviews {
		assert.NotEmpty(t, r.Content)
		require.NotNil(t, r.Rating)
		assert.GreaterOrEqual(t, *r.Rating, 0.0)
		assert.LessOrEqual(t, *r.Rating, 5.0)
	}
	assert.Contains(t, reviews[2].Content, "weight management",
		"labrador review draws on the breed needs table")

	// Deterministic across calls
	again, err := client.SearchReviews(context.Background(), "Acana Puppy", "labrador", "puppy", 5)
	require.NoError(t, err)
	assert.Equal(t, reviews, again)
}

func TestSearchReviews_MockWithoutBreedOrAge(t *testing.T) {
	client := newTestClient("http://localhost:0", "")

	reviews, err := client.SearchReviews(context.Background(), "Kibble", "", "", 5)
	require.NoError(t, err)
	assert.Len(t, reviews, 2, "only the general and ingredients reviews apply")

	capped, err := client.SearchReviews(context.Background(), "Kibble", "labrador", "adult", 1)
	require.NoError(t, err)
	assert.Len(t, capped, 1)
}

func TestCleanProductTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acana Puppy (Small Breed)", "Acana Puppy"},
		{"Royal Canin: Labrador!", "Royal Canin Labrador"},
		{"  plain title  ", "plain title"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanProductTitle(tt.in))
	}
}

func TestExtractRating(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"we give it 4.5/5", 4.5},
		{"scored 4 out of 5 in our test", 4.0},
		{"3.5 stars from owners", 3.5},
		{"Rating: 4.2", 4.2},
		{"rated at 9.0 by the lab", 4.5}, // 10-point scale halved
	}

	for _, tt := range tests {
		got := extractRating(tt.text)
		require.NotNil(t, got, "text %q", tt.text)
		assert.Equal(t, tt.want, *got, "text %q", tt.text)
	}

	assert.Nil(t, extractRating("no numbers here"))
}

func TestRelevantContent(t *testing.T) {
	long := strings.Repeat("x", 2000) + " labrador owners love it " + strings.Repeat("y", 200)

	got := relevantContent(long, "labrador")
	assert.Contains(t, got, "Breed-specific mentions:")
	assert.Contains(t, got, "labrador owners love it")

	plain := relevantContent(strings.Repeat("z", 2000), "labrador")
	assert.Len(t, plain, contentBudget)

	noBreed := relevantContent("short text", "")
	assert.Equal(t, "short text", noBreed)
}
