// Package core has core logic for fetching, aligning and smoothing engagement timelines.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/internal/outwriter"
	"github.com/civiclens/civiclens/schema"
)

// ExecutorFunc defines the function signature for executing the timeline commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, client contract.APIClient, mgr contract.CacheManager, ow *outwriter.OutWriter) error

var (
	_ ExecutorFunc = ExecuteMerge
	_ ExecutorFunc = ExecuteTrend
)

// ExecuteMerge aligns the timelines of the configured events and prints the rows.
// It serves as the main entry point for the 'merge' command.
func ExecuteMerge(ctx context.Context, cfg *contract.Config, client contract.APIClient, mgr contract.CacheManager, ow *outwriter.OutWriter) error {
	start := time.Now()
	result, err := BuildMerge(ctx, cfg, client, mgr)
	if err != nil {
		return err
	}
	return ow.WriteMerge(result, cfg, time.Since(start))
}

// ExecuteTrend smooths the timeline of a single event and prints or renders it.
// It serves as the main entry point for the 'trend' command.
func ExecuteTrend(ctx context.Context, cfg *contract.Config, client contract.APIClient, mgr contract.CacheManager, ow *outwriter.OutWriter) error {
	start := time.Now()
	result, err := BuildTrend(ctx, cfg, client, mgr)
	if err != nil {
		return err
	}
	return ow.WriteTrend(result, cfg, time.Since(start))
}

// ExecuteTopics lists every topic.
func ExecuteTopics(ctx context.Context, cfg *contract.Config, client contract.APIClient, ow *outwriter.OutWriter) error {
	list, err := client.ListTopics(ctx)
	if err != nil {
		return err
	}
	return ow.WriteTopics(list, cfg)
}

// ExecuteTopic shows one topic and its events.
func ExecuteTopic(ctx context.Context, cfg *contract.Config, client contract.APIClient, ow *outwriter.OutWriter, topicID int) error {
	topic, err := client.GetTopic(ctx, topicID)
	if err != nil {
		return notFound("topic", topicID, err)
	}
	return ow.WriteTopic(topic, cfg)
}

// ExecuteEvents lists every event.
func ExecuteEvents(ctx context.Context, cfg *contract.Config, client contract.APIClient, ow *outwriter.OutWriter) error {
	list, err := client.ListEvents(ctx)
	if err != nil {
		return err
	}
	return ow.WriteEvents(list, cfg)
}

// ExecuteEvent shows the details of one event.
func ExecuteEvent(ctx context.Context, cfg *contract.Config, client contract.APIClient, ow *outwriter.OutWriter, eventID int) error {
	event, err := client.GetEvent(ctx, eventID)
	if err != nil {
		return notFound("event", eventID, err)
	}
	return ow.WriteEvent(event, cfg)
}

// ExecuteEventPosts lists the posts attached to one event.
func ExecuteEventPosts(ctx context.Context, cfg *contract.Config, client contract.APIClient, ow *outwriter.OutWriter, eventID int) error {
	posts, err := client.ListEventPosts(ctx, eventID)
	if err != nil {
		return notFound("event", eventID, err)
	}
	return ow.WritePosts(posts, cfg)
}

// ExecuteSearch runs a free text search.
func ExecuteSearch(ctx context.Context, cfg *contract.Config, client contract.APIClient, ow *outwriter.OutWriter, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("search query cannot be empty")
	}
	result, err := client.Search(ctx, query)
	if err != nil {
		return err
	}
	return ow.WriteSearch(result, cfg)
}

// ExecuteForumList shows the forum thread of a topic.
func ExecuteForumList(ctx context.Context, cfg *contract.Config, client contract.APIClient, ow *outwriter.OutWriter, topicID int) error {
	posts, err := client.ListForumPosts(ctx, topicID)
	if err != nil {
		return notFound("topic", topicID, err)
	}
	return ow.WriteForumPosts(posts, cfg)
}

// ExecuteForumPost posts to the forum thread of a topic as the logged in user.
func ExecuteForumPost(ctx context.Context, cfg *contract.Config, client contract.APIClient, ow *outwriter.OutWriter, topicID int, content string) error {
	if !cfg.Session.LoggedIn() || cfg.Session.UserName == "" {
		return fmt.Errorf("posting requires a session, run 'civiclens login' first: %w", contract.ErrUnauthorized)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.New("post content cannot be empty")
	}
	post, err := client.CreateForumPost(ctx, topicID, content, cfg.Session.UserName)
	if err != nil {
		return notFound("topic", topicID, err)
	}
	return ow.WriteForumPost(post, cfg)
}

// ExecuteLogin exchanges credentials for a token and saves the session at sessionPath.
// With signup set, the user is registered first.
func ExecuteLogin(ctx context.Context, cfg *contract.Config, client contract.APIClient, ow *outwriter.OutWriter, creds schema.Credentials, signup bool, sessionPath string) error {
	if creds.UserName == "" || creds.Password == "" {
		return errors.New("user name and password are required")
	}

	var token schema.Token
	var err error
	if signup {
		token, err = client.Signup(ctx, creds)
	} else {
		token, err = client.Login(ctx, creds)
	}
	if err != nil {
		return err
	}

	session := contract.Session{Token: token.AccessToken, TokenType: token.TokenType, UserName: creds.UserName}
	if err := contract.SaveSession(sessionPath, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	cfg.Session = session
	return ow.WriteUser(schema.User{UserName: creds.UserName}, cfg)
}

// ExecuteLogout forgets the saved session.
func ExecuteLogout(sessionPath string) error {
	return contract.ClearSession(sessionPath)
}

// ExecuteWhoAmI shows the user that owns the saved session.
func ExecuteWhoAmI(ctx context.Context, cfg *contract.Config, client contract.APIClient, ow *outwriter.OutWriter) error {
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return err
	}
	return ow.WriteUser(user, cfg)
}

// ExecuteReport downloads a PDF report into cfg.OutputFile.
func ExecuteReport(ctx context.Context, cfg *contract.Config, client contract.APIClient, ow *outwriter.OutWriter, kind schema.ReportKind, id int) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for report downloads")
	}
	data, err := client.DownloadReport(ctx, kind, id)
	if err != nil {
		return err
	}
	return ow.WriteReport(data, cfg)
}

// notFound names the missing resource when the backend answers 404.
func notFound(what string, id int, err error) error {
	if errors.Is(err, contract.ErrNotFound) {
		return fmt.Errorf("%s %d not found: %w", what, id, err)
	}
	return err
}
