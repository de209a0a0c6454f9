package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/alert_me/internal/search"
)

func TestClient_Search(t *testing.T) {
	var got SearchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"results":[{"title":"T","url":"https://t.example","content":"body"},{"title":"","url":"https://u.example","content":"x"}]}`))
	}))
	defer srv.Close()

	c := NewClient("secret").WithBaseURL(srv.URL)
	resp, err := c.Search(context.Background(), &search.Request{
		Query:         "ai US",
		MaxResults:    2,
		ExcludedSites: []string{"spam.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ai US", got.Query)
	assert.Equal(t, 2, got.MaxResults)
	assert.Equal(t, "basic", got.SearchDepth)
	assert.Equal(t, []string{"spam.com"}, got.ExcludeDomains)

	assert.EqualValues(t, 2, resp.TotalResults)
	assert.Equal(t, search.Hit{"title": "T", "link": "https://t.example", "snippet": "body"}, resp.Hits[0])
	_, hasTitle := resp.Hits[1][search.FieldTitle]
	assert.False(t, hasTitle)
}

func TestClient_Search_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient("k").WithBaseURL(srv.URL).Search(context.Background(), &search.Request{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
