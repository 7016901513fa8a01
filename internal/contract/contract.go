// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/civiclens/civiclens/schema"
)

// APIClient defines the operations civiclens needs from the dashboard backend.
// This allows the core logic to be tested without a running backend.
type APIClient interface {
	// --- Topics ---

	// ListTopics returns every topic with its events and actionable counts.
	ListTopics(ctx context.Context) (schema.TopicList, error)

	// GetTopic returns one topic including its sentiment data points.
	GetTopic(ctx context.Context, topicID int) (schema.Topic, error)

	// --- Events ---

	// ListEvents returns every event known to the backend.
	ListEvents(ctx context.Context) (schema.EventList, error)

	// GetEvent returns one event with its engagement timeline and posts.
	GetEvent(ctx context.Context, eventID int) (schema.Event, error)

	// GetEngagement returns only the engagement timeline of an event.
	GetEngagement(ctx context.Context, eventID int) (schema.EngagementTimeline, error)

	// ListEventPosts returns the posts attached to an event.
	ListEventPosts(ctx context.Context, eventID int) (schema.PostList, error)

	// --- Search and forum ---

	// Search runs a free text search over topics and events.
	Search(ctx context.Context, query string) (schema.SearchResult, error)

	// ListForumPosts returns the forum thread of a topic.
	ListForumPosts(ctx context.Context, topicID int) (schema.ForumPostList, error)

	// CreateForumPost appends a post to the forum thread of a topic.
	CreateForumPost(ctx context.Context, topicID int, content, userName string) (schema.ForumPost, error)

	// --- Auth ---

	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, creds schema.Credentials) (schema.Token, error)

	// Signup registers a user and returns a bearer token.
	Signup(ctx context.Context, creds schema.Credentials) (schema.Token, error)

	// CurrentUser returns the user that owns the session token.
	CurrentUser(ctx context.Context) (schema.User, error)

	// --- Reports ---

	// DownloadReport fetches a generated PDF report. id is ignored for weekly and monthly reports.
	DownloadReport(ctx context.Context, kind schema.ReportKind, id int) ([]byte, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResponseStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking merge and trend runs.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(kind schema.RunKind, startTime time.Time, params map[string]any) (int64, error)

	// RecordMergedRows stores aligned rows in long format, one record per row and series
	RecordMergedRows(runID int64, rows []schema.MergedRow, names []string) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, seriesCount, rowCount int) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllRowValues returns every recorded value, ordered by run and row
	GetAllRowValues() ([]schema.RunValueRecord, error)

	// Close closes the underlying connection
	Close() error
}
