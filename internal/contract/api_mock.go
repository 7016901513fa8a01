package contract

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/civiclens/civiclens/schema"
)

// MockAPIClient is a mock type for the APIClient type.
type MockAPIClient struct {
	mock.Mock
}

var _ APIClient = &MockAPIClient{} // Compile-time check

// ListTopics implements the APIClient interface.
func (m *MockAPIClient) ListTopics(ctx context.Context) (schema.TopicList, error) {
	ret := m.Called(ctx)
	out, _ := ret.Get(0).(schema.TopicList)
	return out, ret.Error(1)
}

// GetTopic implements the APIClient interface.
func (m *MockAPIClient) GetTopic(ctx context.Context, topicID int) (schema.Topic, error) {
	ret := m.Called(ctx, topicID)
	out, _ := ret.Get(0).(schema.Topic)
	return out, ret.Error(1)
}

// ListEvents implements the APIClient interface.
func (m *MockAPIClient) ListEvents(ctx context.Context) (schema.EventList, error) {
	ret := m.Called(ctx)
	out, _ := ret.Get(0).(schema.EventList)
	return out, ret.Error(1)
}

// GetEvent implements the APIClient interface.
func (m *MockAPIClient) GetEvent(ctx context.Context, eventID int) (schema.Event, error) {
	ret := m.Called(ctx, eventID)
	out, _ := ret.Get(0).(schema.Event)
	return out, ret.Error(1)
}

// GetEngagement implements the APIClient interface.
func (m *MockAPIClient) GetEngagement(ctx context.Context, eventID int) (schema.EngagementTimeline, error) {
	ret := m.Called(ctx, eventID)
	out, _ := ret.Get(0).(schema.EngagementTimeline)
	return out, ret.Error(1)
}

// ListEventPosts implements the APIClient interface.
func (m *MockAPIClient) ListEventPosts(ctx context.Context, eventID int) (schema.PostList, error) {
	ret := m.Called(ctx, eventID)
	out, _ := ret.Get(0).(schema.PostList)
	return out, ret.Error(1)
}

// Search implements the APIClient interface.
func (m *MockAPIClient) Search(ctx context.Context, query string) (schema.SearchResult, error) {
	ret := m.Called(ctx, query)
	out, _ := ret.Get(0).(schema.SearchResult)
	return out, ret.Error(1)
}

// ListForumPosts implements the APIClient interface.
func (m *MockAPIClient) ListForumPosts(ctx context.Context, topicID int) (schema.ForumPostList, error) {
	ret := m.Called(ctx, topicID)
	out, _ := ret.Get(0).(schema.ForumPostList)
	return out, ret.Error(1)
}

// CreateForumPost implements the APIClient interface.
func (m *MockAPIClient) CreateForumPost(ctx context.Context, topicID int, content, userName string) (schema.ForumPost, error) {
	ret := m.Called(ctx, topicID, content, userName)
	out, _ := ret.Get(0).(schema.ForumPost)
	return out, ret.Error(1)
}

// Login implements the APIClient interface.
func (m *MockAPIClient) Login(ctx context.Context, creds schema.Credentials) (schema.Token, error) {
	ret := m.Called(ctx, creds)
	out, _ := ret.Get(0).(schema.Token)
	return out, ret.Error(1)
}

// Signup implements the APIClient interface.
func (m *MockAPIClient) Signup(ctx context.Context, creds schema.Credentials) (schema.Token, error) {
	ret := m.Called(ctx, creds)
	out, _ := ret.Get(0).(schema.Token)
	return out, ret.Error(1)
}

// CurrentUser implements the APIClient interface.
func (m *MockAPIClient) CurrentUser(ctx context.Context) (schema.User, error) {
	ret := m.Called(ctx)
	out, _ := ret.Get(0).(schema.User)
	return out, ret.Error(1)
}

// DownloadReport implements the APIClient interface.
func (m *MockAPIClient) DownloadReport(ctx context.Context, kind schema.ReportKind, id int) ([]byte, error) {
	ret := m.Called(ctx, kind, id)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}
