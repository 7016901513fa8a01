// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/schema"
)

// OutWriter provides a unified interface for all output operations.
// Tables and stdout-bound formats go to its writer; everything else goes to the configured output file.
type OutWriter struct {
	stdout io.Writer
}

// NewOutWriter creates a new instance of the output writer bound to os.Stdout.
func NewOutWriter() *OutWriter {
	return &OutWriter{stdout: os.Stdout}
}

// NewOutWriterTo creates an output writer that prints tables to w.
func NewOutWriterTo(w io.Writer) *OutWriter {
	return &OutWriter{stdout: w}
}

// WriteMerge prints an aligned timeline using the configured output format.
func (ow *OutWriter) WriteMerge(result schema.MergeResult, cfg *contract.Config, duration time.Duration) error {
	return PrintMergeResults(ow.stdout, result, cfg, duration)
}

// WriteTrend prints a smoothed trend using the configured output format.
func (ow *OutWriter) WriteTrend(result schema.TrendResult, cfg *contract.Config, duration time.Duration) error {
	return PrintTrendResults(ow.stdout, result, cfg, duration)
}

// WriteTopics prints the topic overview.
func (ow *OutWriter) WriteTopics(list schema.TopicList, cfg *contract.Config) error {
	return PrintTopics(ow.stdout, list, cfg)
}

// WriteTopic prints one topic and its events.
func (ow *OutWriter) WriteTopic(topic schema.Topic, cfg *contract.Config) error {
	return PrintTopic(ow.stdout, topic, cfg)
}

// WriteEvents prints the event overview.
func (ow *OutWriter) WriteEvents(list schema.EventList, cfg *contract.Config) error {
	return PrintEvents(ow.stdout, list, cfg)
}

// WriteEvent prints the details of one event.
func (ow *OutWriter) WriteEvent(event schema.Event, cfg *contract.Config) error {
	return PrintEvent(ow.stdout, event, cfg)
}

// WritePosts prints the posts attached to an event.
func (ow *OutWriter) WritePosts(list schema.PostList, cfg *contract.Config) error {
	return PrintPosts(ow.stdout, list, cfg)
}

// WriteSearch prints a search result.
func (ow *OutWriter) WriteSearch(result schema.SearchResult, cfg *contract.Config) error {
	return PrintSearch(ow.stdout, result, cfg)
}

// WriteForumPosts prints a topic forum thread.
func (ow *OutWriter) WriteForumPosts(list schema.ForumPostList, cfg *contract.Config) error {
	return PrintForumPosts(ow.stdout, list, cfg)
}

// WriteForumPost prints a newly created forum post.
func (ow *OutWriter) WriteForumPost(post schema.ForumPost, cfg *contract.Config) error {
	return PrintForumPost(ow.stdout, post, cfg)
}

// WriteUser prints the user that owns the current session.
func (ow *OutWriter) WriteUser(user schema.User, cfg *contract.Config) error {
	return PrintUser(ow.stdout, user, cfg)
}

// WriteReport stores a downloaded PDF report in the configured output file.
func (ow *OutWriter) WriteReport(data []byte, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for report downloads")
	}
	return writeWithFile(ow.stdout, cfg.OutputFile, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}, fmt.Sprintf("Wrote %d byte PDF report", len(data)))
}
