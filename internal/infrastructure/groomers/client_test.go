package groomers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petscout/backend/internal/domain"
	"github.com/petscout/backend/internal/infrastructure/fetch"
)

const defaultLocation = "manila--metro-manila--philippines"

func newTestClient(serverURL string) *Client {
	fetcher := fetch.NewClient(fetch.Options{MaxRetries: 1})
	return NewClient(fetcher, serverURL, defaultLocation)
}

func TestGroomerSearch_APITier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search/groomers" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		assert.Equal(t, "cebu", q.Get("city"))
		assert.Equal(t, "central-visayas", q.Get("state"))
		assert.Equal(t, "philippines", q.Get("country"))
		assert.Equal(t, "grooming", q.Get("service"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"groomers":[
			{"id":"111","name":"Plain Groomer","rating":4.9,"reviews_count":50,"bio":"general grooming"},
			{"id":"222","name":"Poodle Pros","rating":4.2,"reviews_count":12,
			 "specialties":["Poodle styling"],
			 "location":{"formatted_address":"Cebu City, Philippines"}}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	listings, err := client.Search(context.Background(), "cebu--central-visayas--philippines", "poodle", 5)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	// Specialty match (seed 10) outranks higher rating with default seed (7)
	assert.Equal(t, "222", listings[0].ID)
	assert.Equal(t, 10.0, listings[0].BreedCompatibility)
	assert.Equal(t, server.URL+"/profile/222", listings[0].URL)
	assert.Equal(t, "Cebu City, Philippines", listings[0].Location)
	assert.Equal(t, domain.SourceAPI, listings[0].Source)

	assert.Equal(t, "111", listings[1].ID)
	assert.Equal(t, 7.0, listings[1].BreedCompatibility)
}

func TestGroomerSearch_FallsBackToHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/search/groomers":
			http.NotFound(w, r)
		case "/s/dog-grooming/" + defaultLocation:
			w.Write([]byte(`<div class="sitter-card">
				<a class="profileimage-bg" href="/profile/333"></a>
				<span class="sitter-name">Scraped Groomer</span>
				<span class="rate-number">4.0</span>
			</div>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	listings, err := client.Search(context.Background(), "", "poodle", 5)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Scraped Groomer", listings[0].Name)
	assert.Equal(t, domain.SourceHTML, listings[0].Source)
}

func TestGroomerSearch_SyntheticFallback(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := newTestClient(server.URL)
	listings, err := client.Search(context.Background(), "", "poodle", 5)
	require.NoError(t, err)
	require.Len(t, listings, 1)

	assert.Equal(t, domain.SourceFallback, listings[0].Source)
	assert.Contains(t, listings[0].Name, "poodle")
	assert.True(t, isProfileShaped(listings[0].URL),
		"synthetic listing URL must be profile-shaped, got %q", listings[0].URL)
}

func TestGroomerSearch_CanonicalizesListingURLs(t *testing.T) {
	listingPath := "/s/dog-grooming/" + defaultLocation
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/search/groomers":
			http.NotFound(w, r)
		case listingPath:
			// Card whose only link points back at the listing page
			w.Write([]byte(`<div class="sitter-card">
				<a class="profileimage-bg" href="` + listingPath + `"></a>
				<span class="sitter-name">Happy Paws</span>
			</div>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	listings, err := client.Search(context.Background(), "", "poodle", 5)
	require.NoError(t, err)
	require.Len(t, listings, 1)

	assert.True(t, isProfileShaped(listings[0].URL),
		"listing-shaped URL must be rewritten, got %q", listings[0].URL)
	assert.NotContains(t, listings[0].URL, "/s/dog-grooming/")
}

func TestGroomerSearch_CapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search/groomers" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"groomers":[
			{"id":"1","name":"A"},{"id":"2","name":"B"},{"id":"3","name":"C"},{"id":"4","name":"D"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	listings, err := client.Search(context.Background(), "", "", 2)
	require.NoError(t, err)
	assert.Len(t, listings, 2)
}

func TestGroomerProfile_APITier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/profile/444" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"profile":{
			"id":"444","name":"Pro Groomer","bio":"poodle grooming expert",
			"services":[{"name":"Full Grooming"},{"name":""}],
			"reviews":[{"content":"r1"},{"content":"r2"},{"content":"r3"},{"content":"r4"}]
		}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	profile, err := client.Profile(context.Background(), server.URL+"/profile/444", "poodle")
	require.NoError(t, err)

	assert.Equal(t, []string{"Full Grooming"}, profile.Services)
	assert.Len(t, profile.Reviews, 3)
	assert.Equal(t, 9.0, profile.BreedCompatibility, "breed in bio scores 9")
	assert.Equal(t, defaultContactInfo, profile.ContactInfo)
}

func TestGroomerProfile_FallsBackToHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/profile/555":
			http.NotFound(w, r)
		case "/profile/555":
			w.Write([]byte(`<div class="about-me">All breeds welcome here.</div>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	profile, err := client.Profile(context.Background(), server.URL+"/profile/555", "poodle")
	require.NoError(t, err)
	assert.Equal(t, 8.0, profile.BreedCompatibility)
	assert.Equal(t, "All breeds welcome here.", profile.About)
}

func TestGroomerProfile_Errors(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Profile(context.Background(), " ", "poodle")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = client.Profile(context.Background(), server.URL+"/profile/666", "poodle")
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}
