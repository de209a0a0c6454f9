package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/alert_me/internal/model"
)

type recordingSearcher struct {
	requests []*Request
	failOn   string
	resp     *Response
}

func (s *recordingSearcher) Search(_ context.Context, req *Request) (*Response, error) {
	s.requests = append(s.requests, req)
	if req.Query == s.failOn {
		return nil, errors.New("status 500")
	}
	return s.resp, nil
}

func TestExecutor_TermMajorOrder(t *testing.T) {
	s := &recordingSearcher{resp: &Response{TotalResults: 1}}
	exec := NewExecutor(s, 2)

	pairs, err := exec.Run(context.Background(), []string{"solar power", "wind"}, []string{"Nigeria", "Ghana"}, 4, []string{"a.com", "b.com"})
	require.NoError(t, err)
	require.Len(t, pairs, 4)

	var queries []string
	for _, r := range s.requests {
		queries = append(queries, r.Query)
		assert.Equal(t, 2, r.MaxResults)
		assert.Equal(t, 4, r.Offset)
		assert.Equal(t, []string{"a.com", "b.com"}, r.ExcludedSites)
	}
	assert.Equal(t, []string{"solar power Nigeria", "solar power Ghana", "wind Nigeria", "wind Ghana"}, queries)
	assert.Equal(t, "countryNG", s.requests[0].CountryCode)
	assert.Equal(t, "solar power", s.requests[0].Term)
	assert.Equal(t, "Ghana", pairs[1].Country)
}

func TestExecutor_AbortsOnFirstFailure(t *testing.T) {
	s := &recordingSearcher{resp: &Response{}, failOn: "ai UK"}
	exec := NewExecutor(s, 2)

	pairs, err := exec.Run(context.Background(), []string{"ai", "ml"}, []string{"US", "UK", "FR"}, 0, nil)
	assert.Nil(t, pairs)

	var qErr *model.QueryError
	require.True(t, errors.As(err, &qErr))
	assert.Equal(t, "ai", qErr.Term)
	assert.Equal(t, "UK", qErr.Country)
	assert.Len(t, s.requests, 2, "remaining fan-out must not run")
}

func TestExecutor_NilResponseBecomesEmpty(t *testing.T) {
	exec := NewExecutor(&recordingSearcher{}, 2)

	pairs, err := exec.Run(context.Background(), []string{"ai"}, []string{"US"}, 0, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.NotNil(t, pairs[0].Response)
	assert.Zero(t, pairs[0].Response.TotalResults)
}

func TestExecutor_NoCountries(t *testing.T) {
	s := &recordingSearcher{}
	pairs, err := NewExecutor(s, 2).Run(context.Background(), []string{"ai"}, nil, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
	assert.Empty(t, s.requests)
}

func TestWithLimiter(t *testing.T) {
	s := &recordingSearcher{resp: &Response{}}
	limited := WithLimiter(s, rate.NewLimiter(rate.Inf, 1))

	_, err := limited.Search(context.Background(), &Request{Query: "q"})
	require.NoError(t, err)
	assert.Len(t, s.requests, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = WithLimiter(s, rate.NewLimiter(1, 0)).Search(ctx, &Request{Query: "q"})
	assert.Error(t, err)
	assert.Same(t, s, WithLimiter(s, nil))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "ai", JoinQuery("ai", ""))
	assert.Equal(t, "solar", FirstWord("  solar power"))
	assert.Equal(t, "", FirstWord(" "))
	assert.Equal(t, Hit{FieldTitle: "t"}, NewHit(map[string]string{FieldTitle: "t", FieldLink: ""}))
}
