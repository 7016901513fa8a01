package contract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiclens/civiclens/schema"
)

// memoryCache is a ResponseCache that never expires.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Lookup(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[key]
	return data, ok
}

func (m *memoryCache) Store(key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = body
}

// newBackend starts a fake dashboard backend.
func newBackend(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	hits := new(atomic.Int32)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.PathValue("id") != "7" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Event not found"}`)
			return
		}
		_, _ = io.WriteString(w, `{
			"id": 7, "name": "Road works", "topic_id": 2,
			"engagementTimeline": [
				{"timestamp": "2024-03-01T10:00:00", "likes": 3, "comments": 1, "engagement": 4},
				{"timestamp": "2024-03-01T11:00:00", "likes": 5}
			]
		}`)
	})
	mux.HandleFunc("GET /api/auth/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Invalid token"}`)
			return
		}
		_, _ = io.WriteString(w, `{"user_name":"ana","permissions":"admin"}`)
	})
	mux.HandleFunc("POST /api/search", func(w http.ResponseWriter, r *http.Request) {
		var req schema.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"detail":[{"msg":"field required"}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"topic_id":2,"name":"Infrastructure","events":[],"keywords_found":["road"],"query_words":["road"]}`)
	})
	mux.HandleFunc("GET /api/reports/weekly/pdf", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF-1.4")
	})
	mux.HandleFunc("GET /api/topics", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, hits
}

func TestHTTPAPIClientGetEvent(t *testing.T) {
	srv, _ := newBackend(t)
	client := NewHTTPAPIClient(srv.URL+"/", 5*time.Second)

	event, err := client.GetEvent(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Road works", event.Name)
	require.Len(t, event.EngagementTimeline, 2)
	assert.Equal(t, 4.0, event.EngagementTimeline[0].MetricValue(schema.EngagementMetric))
	assert.Equal(t, 5.0, event.EngagementTimeline[1].MetricValue(schema.EngagementMetric))
}

func TestHTTPAPIClientErrors(t *testing.T) {
	srv, _ := newBackend(t)
	client := NewHTTPAPIClient(srv.URL, 5*time.Second)
	ctx := context.Background()

	t.Run("not found carries detail", func(t *testing.T) {
		_, err := client.GetEvent(ctx, 99)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Event not found", apiErr.Detail)
	})

	t.Run("plain text body", func(t *testing.T) {
		_, err := client.ListTopics(ctx)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, "boom", apiErr.Detail)
		assert.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("structured detail", func(t *testing.T) {
		_, err := client.Search(ctx, "")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
		assert.Contains(t, apiErr.Detail, "field required")
	})

	t.Run("current user without session", func(t *testing.T) {
		_, err := client.CurrentUser(ctx)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unreachable backend", func(t *testing.T) {
		dead := NewHTTPAPIClient("http://127.0.0.1:1", time.Second)
		_, err := dead.ListEvents(ctx)
		require.Error(t, err)
		var apiErr *APIError
		assert.False(t, errors.As(err, &apiErr))
	})
}

func TestHTTPAPIClientSession(t *testing.T) {
	srv, _ := newBackend(t)
	ctx := context.Background()

	client := NewHTTPAPIClient(srv.URL, 5*time.Second, WithSession(Session{Token: "tok-123", TokenType: "bearer", UserName: "ana"}))
	user, err := client.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, schema.User{UserName: "ana", Permissions: "admin"}, user)

	bad := NewHTTPAPIClient(srv.URL, 5*time.Second, WithSession(Session{Token: "stale"}))
	_, err = bad.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestHTTPAPIClientSearch(t *testing.T) {
	srv, _ := newBackend(t)
	client := NewHTTPAPIClient(srv.URL, 5*time.Second)

	result, err := client.Search(context.Background(), "road")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TopicID)
	assert.Equal(t, []string{"road"}, result.KeywordsFound)
}

func TestHTTPAPIClientResponseCache(t *testing.T) {
	srv, hits := newBackend(t)
	cache := newMemoryCache()
	client := NewHTTPAPIClient(srv.URL, 5*time.Second, WithResponseCache(cache))
	ctx := context.Background()

	first, err := client.GetEvent(ctx, 7)
	require.NoError(t, err)
	second, err := client.GetEvent(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load(), "second call should be served from cache")
	assert.Len(t, cache.entries, 1)

	// Failures are not cached
	_, err = client.GetEvent(ctx, 99)
	require.Error(t, err)
	_, err = client.GetEvent(ctx, 99)
	require.Error(t, err)
	assert.Equal(t, int32(3), hits.Load())
	assert.Len(t, cache.entries, 1)
}

// newForumBackend serves a single topic forum that grows on every POST.
func newForumBackend(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	posts := []schema.ForumPost{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/topics/1/forum", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewEncoder(w).Encode(schema.ForumPostList{Posts: posts})
	})
	mux.HandleFunc("POST /api/topics/1/forum", func(w http.ResponseWriter, r *http.Request) {
		var req schema.ForumPostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		post := schema.ForumPost{ID: len(posts) + 1, Content: req.Content, UserName: req.UserName}
		posts = append(posts, post)
		_ = json.NewEncoder(w).Encode(post)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPAPIClientForumSkipsCache(t *testing.T) {
	tests := []struct {
		name  string
		cache ResponseCache
	}{
		{"without cache", nil},
		{"with cache", newMemoryCache()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newForumBackend(t)
			opts := []ClientOption{WithHTTPClient(srv.Client())}
			if tt.cache != nil {
				opts = append(opts, WithResponseCache(tt.cache))
			}
			client := NewHTTPAPIClient(srv.URL, 5*time.Second, opts...)
			ctx := context.Background()

			before, err := client.ListForumPosts(ctx, 1)
			require.NoError(t, err)
			assert.Empty(t, before.Posts)

			created, err := client.CreateForumPost(ctx, 1, "When do the road works end?", "ana")
			require.NoError(t, err)
			assert.Equal(t, 1, created.ID)

			after, err := client.ListForumPosts(ctx, 1)
			require.NoError(t, err)
			require.Len(t, after.Posts, 1)
			assert.Equal(t, "When do the road works end?", after.Posts[0].Content)
			assert.Equal(t, "ana", after.Posts[0].UserName)
		})
	}
}

func TestHTTPAPIClientDownloadReport(t *testing.T) {
	srv, _ := newBackend(t)
	client := NewHTTPAPIClient(srv.URL, 5*time.Second)

	data, err := client.DownloadReport(context.Background(), schema.WeeklyReport, 0)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	_, err = client.DownloadReport(context.Background(), schema.TopicReport, 0)
	assert.Error(t, err)
}

func TestReportPath(t *testing.T) {
	tests := []struct {
		kind      schema.ReportKind
		id        int
		expected  string
		expectErr bool
	}{
		{schema.TopicReport, 3, "/api/reports/topic/3/pdf", false},
		{schema.EventReport, 12, "/api/reports/event/12/pdf", false},
		{schema.WeeklyReport, 0, "/api/reports/weekly/pdf", false},
		{schema.MonthlyReport, 9, "/api/reports/monthly/pdf", false},
		{schema.EventReport, 0, "", true},
		{schema.ReportKind("yearly"), 0, "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, err := ReportPath(tt.kind, tt.id)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResponseCacheKey(t *testing.T) {
	a := ResponseCacheKey("GET", "http://x/api/events", "")
	b := ResponseCacheKey("GET", "http://x/api/events", "ana")
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, ResponseCacheKey("GET", "http://x/api/events", ""))
}

func TestAPIErrorMessage(t *testing.T) {
	assert.Equal(t, "backend returned 502 Bad Gateway", (&APIError{StatusCode: 502}).Error())
	assert.Equal(t, "backend returned 403: nope", (&APIError{StatusCode: 403, Detail: "nope"}).Error())
	assert.ErrorIs(t, &APIError{StatusCode: 403}, ErrUnauthorized)
}

// TestMockAPIClient ensures the mock records and returns programmed values.
func TestMockAPIClient(t *testing.T) {
	mockClient := new(MockAPIClient)
	ctx := context.Background()
	expected := schema.EngagementTimeline{EventID: 4}

	mockClient.On("GetEngagement", ctx, 4).Return(expected, nil).Once()
	mockClient.On("GetEngagement", ctx, 5).Return(schema.EngagementTimeline{}, ErrNotFound).Once()

	got, err := mockClient.GetEngagement(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, expected, got)

	_, err = mockClient.GetEngagement(ctx, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	mockClient.AssertExpectations(t)
}
