package searxng

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/alert_me/internal/search"
)

func TestClient_Search(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"number_of_results":0,"results":[
			{"title":"A","url":"https://a","content":"ca"},
			{"title":"B","url":"https://b","content":"cb"},
			{"title":"C","url":"https://c","content":"cc"}
		]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, 5).Search(context.Background(), &search.Request{
		Query:         "ai US",
		MaxResults:    2,
		Offset:        4,
		ExcludedSites: []string{"spam.com", " "},
	})
	require.NoError(t, err)

	assert.Equal(t, "ai US -site:spam.com", got.Get("q"))
	assert.Equal(t, "json", got.Get("format"))
	assert.Equal(t, "3", got.Get("pageno"))

	assert.EqualValues(t, 2, resp.TotalResults)
	require.Len(t, resp.Hits, 2)
	assert.Equal(t, "https://b", resp.Hits[1][search.FieldLink])
}

func TestClient_Search_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Search(context.Background(), &search.Request{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestPageNumber(t *testing.T) {
	assert.Equal(t, 1, pageNumber(0, 2))
	assert.Equal(t, 2, pageNumber(2, 2))
	assert.Equal(t, 1, pageNumber(7, 0))
}
