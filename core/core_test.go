package core

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/internal/outwriter"
	"github.com/civiclens/civiclens/schema"
)

func bufferWriter() (*outwriter.OutWriter, *bytes.Buffer) {
	var buf bytes.Buffer
	return outwriter.NewOutWriterTo(&buf), &buf
}

func TestExecuteMerge(t *testing.T) {
	client := &contract.MockAPIClient{}
	client.On("GetEvent", mock.Anything, 7).Return(roadWorks(), nil)
	client.On("GetEvent", mock.Anything, 9).Return(parkReopening(), nil)

	cfg := testConfig()
	cfg.EventIDs = []int{7, 9}
	cfg.Output = schema.CSVOut
	cfg.Precision = 0

	ow, buf := bufferWriter()
	require.NoError(t, ExecuteMerge(quiet, cfg, client, noRuns(), ow))
	assert.Equal(t,
		"date,timestamp,event_0,event_1\n"+
			"11-01 10:00,1761991200,10,0\n"+
			"11-01 11:00,1761994800,10,3\n"+
			"11-01 12:00,1761998400,20,4\n",
		buf.String())
}

func TestExecuteTrendJSON(t *testing.T) {
	client := &contract.MockAPIClient{}
	client.On("GetEvent", mock.Anything, 7).Return(roadWorks(), nil)

	cfg := testConfig()
	cfg.EventIDs = []int{7}
	cfg.Output = schema.JSONOut

	ow, buf := bufferWriter()
	require.NoError(t, ExecuteTrend(quiet, cfg, client, nil, ow))
	assert.Contains(t, buf.String(), `"path": "M 80,650 C `)
}

func TestExecuteTimelineErrorsSkipOutput(t *testing.T) {
	ow, buf := bufferWriter()
	assert.Error(t, ExecuteMerge(quiet, testConfig(), &contract.MockAPIClient{}, nil, ow))
	assert.Error(t, ExecuteTrend(quiet, testConfig(), &contract.MockAPIClient{}, nil, ow))
	assert.Empty(t, buf.String())
}

func TestExecuteListings(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Output = schema.JSONOut

	client := &contract.MockAPIClient{}
	client.On("ListTopics", mock.Anything).Return(schema.TopicList{Topics: []schema.Topic{{ID: 1, Name: "Infrastructure"}}}, nil)
	client.On("GetTopic", mock.Anything, 1).Return(schema.Topic{ID: 1, Name: "Infrastructure"}, nil)
	client.On("ListEvents", mock.Anything).Return(schema.EventList{Events: []schema.Event{roadWorks()}}, nil)
	client.On("GetEvent", mock.Anything, 7).Return(roadWorks(), nil)
	client.On("ListEventPosts", mock.Anything, 7).Return(schema.PostList{Posts: []schema.Post{{Source: "reddit", Content: "detour again"}}}, nil)
	client.On("Search", mock.Anything, "road").Return(schema.SearchResult{TopicID: 1, Name: "Infrastructure"}, nil)
	client.On("ListForumPosts", mock.Anything, 1).Return(schema.ForumPostList{Posts: []schema.ForumPost{{ID: 3, UserName: "ana"}}}, nil)

	tests := []struct {
		name string
		run  func(ow *outwriter.OutWriter) error
		want string
	}{
		{"topics", func(ow *outwriter.OutWriter) error { return ExecuteTopics(ctx, cfg, client, ow) }, `"Infrastructure"`},
		{"topic", func(ow *outwriter.OutWriter) error { return ExecuteTopic(ctx, cfg, client, ow, 1) }, `"id": 1`},
		{"events", func(ow *outwriter.OutWriter) error { return ExecuteEvents(ctx, cfg, client, ow) }, `"Road works"`},
		{"event", func(ow *outwriter.OutWriter) error { return ExecuteEvent(ctx, cfg, client, ow, 7) }, `"engagementTimeline"`},
		{"posts", func(ow *outwriter.OutWriter) error { return ExecuteEventPosts(ctx, cfg, client, ow, 7) }, `"detour again"`},
		{"search", func(ow *outwriter.OutWriter) error { return ExecuteSearch(ctx, cfg, client, ow, "  road ") }, `"topic_id": 1`},
		{"forum", func(ow *outwriter.OutWriter) error { return ExecuteForumList(ctx, cfg, client, ow, 1) }, `"ana"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ow, buf := bufferWriter()
			require.NoError(t, tt.run(ow))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestExecuteNotFound(t *testing.T) {
	client := &contract.MockAPIClient{}
	client.On("GetTopic", mock.Anything, 5).Return(schema.Topic{}, &contract.APIError{StatusCode: 404})

	ow, _ := bufferWriter()
	err := ExecuteTopic(context.Background(), testConfig(), client, ow, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrNotFound)
	assert.Contains(t, err.Error(), "topic 5 not found")
}

func TestExecuteSearchEmpty(t *testing.T) {
	ow, _ := bufferWriter()
	assert.EqualError(t, ExecuteSearch(context.Background(), testConfig(), &contract.MockAPIClient{}, ow, "   "), "search query cannot be empty")
}

func TestExecuteForumPost(t *testing.T) {
	ctx := context.Background()
	ow, buf := bufferWriter()

	cfg := testConfig()
	err := ExecuteForumPost(ctx, cfg, &contract.MockAPIClient{}, ow, 1, "hello")
	assert.ErrorIs(t, err, contract.ErrUnauthorized)

	cfg.Session = contract.Session{Token: "tok", UserName: "ana"}
	client := &contract.MockAPIClient{}
	client.On("CreateForumPost", mock.Anything, 1, "hello", "ana").
		Return(schema.ForumPost{ID: 4, UserName: "ana", Timestamp: "now", Content: "hello"}, nil)

	require.NoError(t, ExecuteForumPost(ctx, cfg, client, ow, 1, " hello "))
	assert.Equal(t, "Posted #4 as ana at now\n", buf.String())

	assert.EqualError(t, ExecuteForumPost(ctx, cfg, client, ow, 1, " "), "post content cannot be empty")
}

func TestExecuteLoginAndLogout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	creds := schema.Credentials{UserName: "ana", Password: "secret"}

	client := &contract.MockAPIClient{}
	client.On("Signup", mock.Anything, creds).Return(schema.Token{AccessToken: "tok", TokenType: "bearer"}, nil)

	cfg := testConfig()
	ow, buf := bufferWriter()
	require.NoError(t, ExecuteLogin(ctx, cfg, client, ow, creds, true, path))
	assert.Contains(t, buf.String(), "Logged in as ana")
	assert.Equal(t, "ana", cfg.Session.UserName)

	saved, err := contract.LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, contract.Session{Token: "tok", TokenType: "bearer", UserName: "ana"}, saved)

	require.NoError(t, ExecuteLogout(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, ExecuteLogin(ctx, cfg, client, ow, schema.Credentials{UserName: "ana"}, false, path))
}

func TestExecuteWhoAmI(t *testing.T) {
	client := &contract.MockAPIClient{}
	client.On("CurrentUser", mock.Anything).Return(schema.User{UserName: "ana", Permissions: "viewer"}, nil)

	ow, buf := bufferWriter()
	require.NoError(t, ExecuteWhoAmI(context.Background(), testConfig(), client, ow))
	assert.Equal(t, "Logged in as ana (permissions: viewer)\n", buf.String())
}

func TestExecuteReport(t *testing.T) {
	ctx := context.Background()
	ow, _ := bufferWriter()
	cfg := testConfig()

	err := ExecuteReport(ctx, cfg, &contract.MockAPIClient{}, ow, schema.WeeklyReport, 0)
	assert.EqualError(t, err, "--output-file is required for report downloads")

	cfg.OutputFile = filepath.Join(t.TempDir(), "weekly.pdf")
	client := &contract.MockAPIClient{}
	client.On("DownloadReport", mock.Anything, schema.WeeklyReport, 0).Return([]byte("%PDF-1.4"), nil)
	require.NoError(t, ExecuteReport(ctx, cfg, client, ow, schema.WeeklyReport, 0))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}
