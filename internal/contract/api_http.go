package contract

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civiclens/civiclens/schema"
)

// maxErrorBody bounds how much of a failed response is read for its detail.
const maxErrorBody = 64 << 10

// ResponseCache stores raw GET response bodies by key.
// Implementations decide freshness; a miss is reported as false.
type ResponseCache interface {
	Lookup(key string) ([]byte, bool)
	Store(key string, body []byte)
}

// ResponseCacheKey identifies a GET response for one user.
func ResponseCacheKey(method, url, user string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(method+" "+url+" "+user)))
}

// HTTPAPIClient implements the APIClient interface against the dashboard backend.
type HTTPAPIClient struct {
	baseURL string
	client  *http.Client
	session Session
	cache   ResponseCache
	logger  *zap.Logger
}

var _ APIClient = &HTTPAPIClient{} // Compile-time check

// ClientOption customizes an HTTPAPIClient.
type ClientOption func(*HTTPAPIClient)

// WithSession sends the session's bearer token with every request.
func WithSession(s Session) ClientOption {
	return func(c *HTTPAPIClient) { c.session = s }
}

// WithResponseCache routes GET requests through cache.
func WithResponseCache(cache ResponseCache) ClientOption {
	return func(c *HTTPAPIClient) { c.cache = cache }
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *HTTPAPIClient) { c.logger = logger }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPAPIClient) { c.client = hc }
}

// NewHTTPAPIClient creates a client for the backend rooted at baseURL.
func NewHTTPAPIClient(baseURL string, timeout time.Duration, opts ...ClientOption) *HTTPAPIClient {
	c := &HTTPAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTopics implements the APIClient interface.
func (c *HTTPAPIClient) ListTopics(ctx context.Context) (schema.TopicList, error) {
	var out schema.TopicList
	err := c.getJSON(ctx, "/api/topics", &out)
	return out, err
}

// GetTopic implements the APIClient interface.
func (c *HTTPAPIClient) GetTopic(ctx context.Context, topicID int) (schema.Topic, error) {
	var out schema.Topic
	err := c.getJSON(ctx, "/api/topics/"+strconv.Itoa(topicID), &out)
	return out, err
}

// ListEvents implements the APIClient interface.
func (c *HTTPAPIClient) ListEvents(ctx context.Context) (schema.EventList, error) {
	var out schema.EventList
	err := c.getJSON(ctx, "/api/events", &out)
	return out, err
}

// GetEvent implements the APIClient interface.
func (c *HTTPAPIClient) GetEvent(ctx context.Context, eventID int) (schema.Event, error) {
	var out schema.Event
	err := c.getJSON(ctx, "/api/events/"+strconv.Itoa(eventID), &out)
	return out, err
}

// GetEngagement implements the APIClient interface.
func (c *HTTPAPIClient) GetEngagement(ctx context.Context, eventID int) (schema.EngagementTimeline, error) {
	var out schema.EngagementTimeline
	err := c.getJSON(ctx, "/api/events/"+strconv.Itoa(eventID)+"/engagement", &out)
	return out, err
}

// ListEventPosts implements the APIClient interface.
func (c *HTTPAPIClient) ListEventPosts(ctx context.Context, eventID int) (schema.PostList, error) {
	var out schema.PostList
	err := c.getJSON(ctx, "/api/posts/by-event/"+strconv.Itoa(eventID), &out)
	return out, err
}

// Search implements the APIClient interface.
func (c *HTTPAPIClient) Search(ctx context.Context, query string) (schema.SearchResult, error) {
	var out schema.SearchResult
	err := c.postJSON(ctx, "/api/search", schema.SearchRequest{Query: query}, &out)
	return out, err
}

// ListForumPosts implements the APIClient interface.
// Threads change with every CreateForumPost, so they skip the response cache.
func (c *HTTPAPIClient) ListForumPosts(ctx context.Context, topicID int) (schema.ForumPostList, error) {
	var out schema.ForumPostList
	err := c.getFreshJSON(ctx, "/api/topics/"+strconv.Itoa(topicID)+"/forum", &out)
	return out, err
}

// CreateForumPost implements the APIClient interface.
func (c *HTTPAPIClient) CreateForumPost(ctx context.Context, topicID int, content, userName string) (schema.ForumPost, error) {
	var out schema.ForumPost
	body := schema.ForumPostRequest{Content: content, UserName: userName}
	err := c.postJSON(ctx, "/api/topics/"+strconv.Itoa(topicID)+"/forum", body, &out)
	return out, err
}

// Login implements the APIClient interface.
func (c *HTTPAPIClient) Login(ctx context.Context, creds schema.Credentials) (schema.Token, error) {
	var out schema.Token
	err := c.postJSON(ctx, "/api/auth/login", creds, &out)
	return out, err
}

// Signup implements the APIClient interface.
func (c *HTTPAPIClient) Signup(ctx context.Context, creds schema.Credentials) (schema.Token, error) {
	var out schema.Token
	err := c.postJSON(ctx, "/api/auth/signup", creds, &out)
	return out, err
}

// CurrentUser implements the APIClient interface.
// The response is never cached since it reflects the current token.
func (c *HTTPAPIClient) CurrentUser(ctx context.Context) (schema.User, error) {
	var out schema.User
	if !c.session.LoggedIn() {
		return out, fmt.Errorf("not logged in: %w", ErrUnauthorized)
	}
	err := c.getFreshJSON(ctx, "/api/auth/user", &out)
	return out, err
}

// DownloadReport implements the APIClient interface.
func (c *HTTPAPIClient) DownloadReport(ctx context.Context, kind schema.ReportKind, id int) ([]byte, error) {
	path, err := ReportPath(kind, id)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, path)
}

// ReportPath returns the backend path of a PDF report.
func ReportPath(kind schema.ReportKind, id int) (string, error) {
	if _, ok := schema.ValidReportKinds[kind]; !ok {
		return "", fmt.Errorf("invalid report kind '%s'. must be topic, event, weekly, monthly", kind)
	}
	if kind.NeedsID() {
		if id <= 0 {
			return "", fmt.Errorf("%s report needs a positive id", kind)
		}
		return fmt.Sprintf("/api/reports/%s/%d/pdf", kind, id), nil
	}
	return fmt.Sprintf("/api/reports/%s/pdf", kind), nil
}

// getJSON fetches path and decodes the body into out.
func (c *HTTPAPIClient) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.get(ctx, path)
	return decodeBody(path, data, err, out)
}

// getFreshJSON is getJSON without the response cache.
func (c *HTTPAPIClient) getFreshJSON(ctx context.Context, path string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	return decodeBody(path, data, err, out)
}

func decodeBody(path string, data []byte, err error, out any) error {
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// get fetches path through the response cache when one is configured.
func (c *HTTPAPIClient) get(ctx context.Context, path string) ([]byte, error) {
	if c.cache == nil {
		return c.do(ctx, http.MethodGet, path, nil)
	}

	key := ResponseCacheKey(http.MethodGet, c.baseURL+path, c.session.UserName)
	if data, ok := c.cache.Lookup(key); ok {
		c.logger.Debug("backend request", zap.String("method", http.MethodGet), zap.String("path", path), zap.Bool("cached", true))
		return data, nil
	}

	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	c.cache.Store(key, data)
	return data, nil
}

// postJSON sends in as a JSON body and decodes the response into out.
func (c *HTTPAPIClient) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	data, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// do performs one request and returns the body of a 2xx response.
func (c *HTTPAPIClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session.LoggedIn() {
		tokenType := c.session.TokenType
		if tokenType == "" || strings.EqualFold(tokenType, "bearer") {
			tokenType = "Bearer"
		}
		req.Header.Set("Authorization", tokenType+" "+c.session.Token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// decodeAPIError builds an APIError from a failed response.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(data, &body) == nil && len(body.Detail) > 0 {
		var detail string
		if json.Unmarshal(body.Detail, &detail) == nil {
			apiErr.Detail = detail
		} else {
			apiErr.Detail = string(body.Detail)
		}
		return apiErr
	}
	apiErr.Detail = strings.TrimSpace(string(data))
	return apiErr
}
