package schema

import (
	"encoding/json"
	"time"
)

// Actionables counts the posts that need a response from the municipality.
type Actionables struct {
	Misinformation int `json:"misinformation"`
	Questions      int `json:"questions"`
}

// TopicEvent is the short form of an event listed under a topic.
type TopicEvent struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	ShortSummary string       `json:"short_summary,omitempty"`
	DataPoints   []float64    `json:"data_points,omitempty"`
	Actionables  *Actionables `json:"actionables,omitempty"`
}

// Topic is a monitored subject area.
type Topic struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Icon        string          `json:"icon"`
	Events      []TopicEvent    `json:"events"`
	Actionables *Actionables    `json:"actionables,omitempty"`
	DataPoints  json.RawMessage `json:"data_points,omitempty"`
}

// TopicList is the body of GET /api/topics.
type TopicList struct {
	Topics []Topic `json:"topics"`
}

// TopicRef is the embedded topic reference on an event.
type TopicRef struct {
	ID   *int   `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// EventPost is a post as embedded in an event.
type EventPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Link       string  `json:"link"`
	Source     string  `json:"source"`
	Date       *string `json:"date"`
	Engagement float64 `json:"engagement"`
	Content    string  `json:"content"`
}

// Event is a discrete occurrence within a topic.
type Event struct {
	ID                 int               `json:"id"`
	Name               string            `json:"name"`
	SmallSummary       string            `json:"small_summary"`
	BigSummary         string            `json:"big_summary"`
	Engagement         float64           `json:"engagement"`
	Color              string            `json:"color"`
	DataPoints         []float64         `json:"data_points"`
	Date               *string           `json:"date"`
	TotalPosts         int               `json:"totalPosts"`
	TotalEngagement    float64           `json:"totalEngagement"`
	Trend              string            `json:"trend"`
	TopicID            *int              `json:"topic_id"`
	TopicName          *string           `json:"topic_name"`
	TopicIcon          string            `json:"topic_icon"`
	EngagementTimeline []EngagementPoint `json:"engagementTimeline"`
	Posts              []EventPost       `json:"posts"`
	Topic              *TopicRef         `json:"topic,omitempty"`
}

// EventList is the body of GET /api/events.
type EventList struct {
	Events []Event `json:"events"`
}

// EngagementPoint is one bucket of an event's engagement timeline.
// Every numeric field is optional on the wire.
type EngagementPoint struct {
	Timestamp        *string  `json:"timestamp"`
	Likes            *float64 `json:"likes"`
	Comments         *float64 `json:"comments"`
	Engagement       *float64 `json:"engagement"`
	LikeReturn       *float64 `json:"likeReturn"`
	CommentReturn    *float64 `json:"commentReturn"`
	EngagementReturn *float64 `json:"engagementReturn"`
	Prediction       bool     `json:"prediction"`
}

// MetricValue returns the requested count, treating absent fields as zero.
// A missing engagement total falls back to likes plus comments.
func (p EngagementPoint) MetricValue(m Metric) float64 {
	switch m {
	case LikesMetric:
		return deref(p.Likes)
	case CommentsMetric:
		return deref(p.Comments)
	default:
		if p.Engagement != nil {
			return *p.Engagement
		}
		return deref(p.Likes) + deref(p.Comments)
	}
}

// Time parses the point's timestamp. The boolean is false when it is absent or malformed.
func (p EngagementPoint) Time() (time.Time, bool) {
	if p.Timestamp == nil || *p.Timestamp == "" {
		return time.Time{}, false
	}
	return ParseBackendTime(*p.Timestamp)
}

// EngagementTimeline is the body of GET /api/events/{id}/engagement.
type EngagementTimeline struct {
	EventID  int               `json:"event_id"`
	Timeline []EngagementPoint `json:"timeline"`
}

// Post is a raw social media post as listed by the posts endpoints.
type Post struct {
	Link               string   `json:"link"`
	Content            string   `json:"content"`
	Date               *string  `json:"date"`
	Source             string   `json:"source"`
	SatisfactionRating *float64 `json:"satisfaction_rating"`
	Topic              *string  `json:"topic"`
	ActionablesCount   int      `json:"actionables_count"`
}

// PostList is the body of the posts endpoints.
type PostList struct {
	Posts []Post `json:"posts"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchEvent is one event matched by a search.
type SearchEvent struct {
	EventID      *int     `json:"event_id"`
	Name         *string  `json:"name"`
	SmallSummary *string  `json:"small_summary"`
	BigSummary   *string  `json:"big_summary"`
	Date         *string  `json:"date"`
	Keywords     []string `json:"keywords"`
}

// SearchResult is the body returned by POST /api/search.
type SearchResult struct {
	TopicID       int           `json:"topic_id"`
	Name          string        `json:"name"`
	Events        []SearchEvent `json:"events"`
	KeywordsFound []string      `json:"keywords_found"`
	QueryWords    []string      `json:"query_words"`
}

// ForumPostRequest is the body of POST /api/topics/{id}/forum.
type ForumPostRequest struct {
	Content  string `json:"content"`
	UserName string `json:"user_name"`
}

// ForumPost is a single message in a topic forum.
type ForumPost struct {
	ID        int    `json:"id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	UserName  string `json:"user_name"`
}

// ForumPostList is the body of GET /api/topics/{id}/forum.
type ForumPostList struct {
	Posts []ForumPost `json:"posts"`
}

// Credentials is the body of the login and signup endpoints.
type Credentials struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

// Token is returned by login and signup.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is returned by GET /api/auth/user.
type User struct {
	UserName    string `json:"user_name"`
	Permissions string `json:"permissions"`
}

// backendTimeLayouts are the timestamp forms the backend emits.
// Python isoformat omits the zone for naive datetimes.
var backendTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseBackendTime parses an ISO8601 timestamp. Naive values are read as UTC.
func ParseBackendTime(s string) (time.Time, bool) {
	for _, layout := range backendTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
