package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwulan/newsdigest/internal/news"
	"github.com/jwulan/newsdigest/internal/pipeline"
)

type stubProvider struct {
	items []news.Item
}

func (s *stubProvider) Aggregate(context.Context) ([]news.Item, pipeline.Stats) {
	return s.items, pipeline.Stats{Total: len(s.items)}
}

type stubSubscriber struct {
	emails []string
	err    error
}

func (s *stubSubscriber) Subscribe(_ context.Context, email string) error {
	if s.err != nil {
		return s.err
	}
	s.emails = append(s.emails, email)
	return nil
}

func newsItems(n int) []news.Item {
	items := make([]news.Item, n)
	for i := range items {
		items[i] = news.Item{
			Title:    "Item " + string(rune('A'+i)),
			Link:     "https://example.com/" + string(rune('a'+i)),
			Source:   "Feed",
			Category: news.CategoryQuick,
			Keywords: []string{},
		}
	}
	return items
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeNews(t *testing.T, rec *httptest.ResponseRecorder) (resp struct {
	News    []news.Item `json:"news"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	HasMore bool        `json:"hasMore"`
}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestNewsEndpointDefaults(t *testing.T) {
	srv := New(&stubProvider{items: newsItems(5)}, nil, 20, 15)

	rec := get(t, srv, "/api/news")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeNews(t, rec)
	assert.Len(t, resp.News, 5)
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.False(t, resp.HasMore)
}

func TestNewsEndpointPagination(t *testing.T) {
	srv := New(&stubProvider{items: newsItems(5)}, nil, 20, 15)

	rec := get(t, srv, "/api/news?page=2&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeNews(t, rec)
	assert.Len(t, resp.News, 2)
	assert.Equal(t, 2, resp.Page)
	assert.True(t, resp.HasMore)
}

func TestNewsEndpointOutOfRangePageIsEmptyList(t *testing.T) {
	srv := New(&stubProvider{items: newsItems(3)}, nil, 20, 15)

	rec := get(t, srv, "/api/news?page=9")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeNews(t, rec)
	assert.NotNil(t, resp.News)
	assert.Empty(t, resp.News)
	assert.Equal(t, 3, resp.Total)
}

func TestNewsEndpointCategoryFilter(t *testing.T) {
	items := newsItems(2)
	items[1].Category = news.CategoryDeep
	srv := New(&stubProvider{items: items}, nil, 20, 15)

	resp := decodeNews(t, get(t, srv, "/api/news?category=deep"))
	require.Len(t, resp.News, 1)
	assert.Equal(t, news.CategoryDeep, resp.News[0].Category)
}

func TestNewsEndpointRejectsBadParams(t *testing.T) {
	srv := New(&stubProvider{}, nil, 20, 15)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/news?category=bogus").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/news?page=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/news?limit=abc").Code)
}

func TestSubscribeEndpoint(t *testing.T) {
	subs := &stubSubscriber{}
	srv := New(&stubProvider{}, subs, 20, 15)

	req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(`{"email":"a@b.com"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a@b.com"}, subs.emails)
}

func TestSubscribeEndpointRejectsBadEmail(t *testing.T) {
	srv := New(&stubProvider{}, &stubSubscriber{}, 20, 15)

	req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(`{"email":"nope"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubscribeEndpointUpstreamFailure(t *testing.T) {
	srv := New(&stubProvider{}, &stubSubscriber{err: errors.New("api down")}, 20, 15)

	req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(`{"email":"a@b.com"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSubscribeEndpointUnconfigured(t *testing.T) {
	srv := New(&stubProvider{}, nil, 20, 15)

	req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(`{"email":"a@b.com"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDigestPreview(t *testing.T) {
	srv := New(&stubProvider{items: newsItems(2)}, nil, 20, 15)

	rec := get(t, srv, "/digest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Daily News Digest")
	assert.Contains(t, rec.Body.String(), "Item A")
}

func TestHealthz(t *testing.T) {
	srv := New(&stubProvider{}, nil, 20, 15)
	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
}
