package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/schema"
)

// listing is a tabular view of backend data that can be printed as text, CSV or JSON.
type listing struct {
	what     string
	data     any // encoded as-is for JSON output
	headers  []string
	rows     func(trunc func(string) string) [][]string
	left     []int // left aligned columns
	reserved int   // width taken by the columns that are never truncated
	textCols int   // number of columns sharing the remaining width
}

// printListing dispatches a listing based on the output format configured.
func printListing(stdout io.Writer, cfg *contract.Config, l listing) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(stdout, cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, l.data)
		}, "Wrote JSON "+l.what); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(stdout, cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, csvHeader(l.headers), func(cw *csv.Writer) error {
				return cw.WriteAll(l.rows(keepText))
			})
		}, "Wrote CSV "+l.what); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.TextOut, "":
		width := GetMaxColumnWidth(cfg, l.reserved, l.textCols)
		trunc := func(s string) string { return contract.TruncateText(oneLine(s), width) }
		if err := renderTable(stdout, l.headers, l.rows(trunc), l.left...); err != nil {
			return fmt.Errorf("error writing %s table: %w", l.what, err)
		}
	default:
		return fmt.Errorf("%s output is not supported for %s", cfg.Output, l.what)
	}
	return nil
}

// PrintTopics prints every topic with its event and actionable counts.
func PrintTopics(w io.Writer, list schema.TopicList, cfg *contract.Config) error {
	return printListing(w, cfg, listing{
		what:     "topics",
		data:     list,
		headers:  []string{"ID", "Topic", "Events", "Misinformation", "Questions"},
		left:     []int{1},
		reserved: 50,
		textCols: 1,
		rows: func(trunc func(string) string) [][]string {
			data := make([][]string, 0, len(list.Topics))
			for _, t := range list.Topics {
				var act schema.Actionables
				if t.Actionables != nil {
					act = *t.Actionables
				}
				data = append(data, []string{
					strconv.Itoa(t.ID),
					trunc(strings.TrimSpace(t.Icon + " " + t.Name)),
					strconv.Itoa(len(t.Events)),
					strconv.Itoa(act.Misinformation),
					strconv.Itoa(act.Questions),
				})
			}
			return data
		},
	})
}

// PrintTopic prints one topic and the events filed under it.
func PrintTopic(w io.Writer, topic schema.Topic, cfg *contract.Config) error {
	if cfg.Output == schema.TextOut {
		_, _ = fmt.Fprintf(w, "Topic %d: %s\n", topic.ID, strings.TrimSpace(topic.Icon+" "+topic.Name))
	}
	return printListing(w, cfg, listing{
		what:     "topic",
		data:     topic,
		headers:  []string{"Event ID", "Event", "Summary", "Data Points"},
		left:     []int{1, 2},
		reserved: 30,
		textCols: 2,
		rows: func(trunc func(string) string) [][]string {
			data := make([][]string, 0, len(topic.Events))
			for _, e := range topic.Events {
				data = append(data, []string{
					strconv.Itoa(e.ID),
					trunc(e.Name),
					trunc(e.ShortSummary),
					strconv.Itoa(len(e.DataPoints)),
				})
			}
			return data
		},
	})
}

// PrintEvents prints every event with its topic and engagement totals.
func PrintEvents(w io.Writer, list schema.EventList, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return printListing(w, cfg, listing{
		what:     "events",
		data:     list,
		headers:  []string{"ID", "Event", "Topic", "Date", "Posts", "Engagement", "Trend"},
		left:     []int{1, 2},
		reserved: 60,
		textCols: 2,
		rows: func(trunc func(string) string) [][]string {
			data := make([][]string, 0, len(list.Events))
			for _, e := range list.Events {
				data = append(data, []string{
					strconv.Itoa(e.ID),
					trunc(e.Name),
					trunc(eventTopicName(e)),
					deref(e.Date),
					strconv.Itoa(e.TotalPosts),
					fmtFloat(eventEngagement(e)),
					e.Trend,
				})
			}
			return data
		},
	})
}

// PrintEvent prints the details of one event as field and value pairs.
func PrintEvent(w io.Writer, event schema.Event, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	predictions := 0
	for _, p := range event.EngagementTimeline {
		if p.Prediction {
			predictions++
		}
	}
	fields := [][2]string{
		{"ID", strconv.Itoa(event.ID)},
		{"Name", event.Name},
		{"Topic", eventTopicName(event)},
		{"Date", deref(event.Date)},
		{"Summary", event.SmallSummary},
		{"Posts", strconv.Itoa(max(event.TotalPosts, len(event.Posts)))},
		{"Engagement", fmtFloat(eventEngagement(event))},
		{"Trend", event.Trend},
		{"Timeline Points", strconv.Itoa(len(event.EngagementTimeline))},
		{"Predicted Points", strconv.Itoa(predictions)},
	}
	return printListing(w, cfg, listing{
		what:     "event",
		data:     event,
		headers:  []string{"Field", "Value"},
		left:     []int{0, 1},
		reserved: 20,
		textCols: 1,
		rows: func(trunc func(string) string) [][]string {
			data := make([][]string, 0, len(fields))
			for _, f := range fields {
				data = append(data, []string{f[0], trunc(f[1])})
			}
			return data
		},
	})
}

// PrintPosts prints social media posts.
func PrintPosts(w io.Writer, list schema.PostList, cfg *contract.Config) error {
	return printListing(w, cfg, listing{
		what:     "posts",
		data:     list,
		headers:  []string{"Date", "Source", "Content", "Actionables"},
		left:     []int{1, 2},
		reserved: 45,
		textCols: 1,
		rows: func(trunc func(string) string) [][]string {
			data := make([][]string, 0, len(list.Posts))
			for _, p := range list.Posts {
				data = append(data, []string{
					deref(p.Date),
					p.Source,
					trunc(p.Content),
					strconv.Itoa(p.ActionablesCount),
				})
			}
			return data
		},
	})
}

// PrintSearch prints the best matching topic and its matching events.
func PrintSearch(w io.Writer, result schema.SearchResult, cfg *contract.Config) error {
	if cfg.Output == schema.TextOut {
		_, _ = fmt.Fprintf(w, "Best match: %s (topic %d)\n", result.Name, result.TopicID)
		if len(result.KeywordsFound) > 0 {
			_, _ = fmt.Fprintf(w, "Keywords: %s\n", strings.Join(result.KeywordsFound, ", "))
		}
	}
	return printListing(w, cfg, listing{
		what:     "search results",
		data:     result,
		headers:  []string{"Event ID", "Event", "Date", "Keywords"},
		left:     []int{1, 3},
		reserved: 30,
		textCols: 2,
		rows: func(trunc func(string) string) [][]string {
			data := make([][]string, 0, len(result.Events))
			for _, e := range result.Events {
				id := ""
				if e.EventID != nil {
					id = strconv.Itoa(*e.EventID)
				}
				data = append(data, []string{
					id,
					trunc(deref(e.Name)),
					deref(e.Date),
					trunc(strings.Join(e.Keywords, ", ")),
				})
			}
			return data
		},
	})
}

// PrintForumPosts prints a topic forum thread.
func PrintForumPosts(w io.Writer, list schema.ForumPostList, cfg *contract.Config) error {
	return printListing(w, cfg, listing{
		what:     "forum posts",
		data:     list,
		headers:  []string{"ID", "User", "Time", "Content"},
		left:     []int{1, 3},
		reserved: 50,
		textCols: 1,
		rows: func(trunc func(string) string) [][]string {
			data := make([][]string, 0, len(list.Posts))
			for _, p := range list.Posts {
				data = append(data, []string{strconv.Itoa(p.ID), p.UserName, p.Timestamp, trunc(p.Content)})
			}
			return data
		},
	})
}

// PrintForumPost confirms a newly created forum post.
func PrintForumPost(w io.Writer, post schema.ForumPost, cfg *contract.Config) error {
	if cfg.Output == schema.TextOut {
		_, err := fmt.Fprintf(w, "Posted #%d as %s at %s\n", post.ID, post.UserName, post.Timestamp)
		return err
	}
	return PrintForumPosts(w, schema.ForumPostList{Posts: []schema.ForumPost{post}}, cfg)
}

// PrintUser prints the user that owns the session token.
func PrintUser(w io.Writer, user schema.User, cfg *contract.Config) error {
	if cfg.Output == schema.TextOut {
		_, err := fmt.Fprintf(w, "Logged in as %s (permissions: %s)\n", user.UserName, user.Permissions)
		return err
	}
	return printListing(w, cfg, listing{
		what:    "user",
		data:    user,
		headers: []string{"User Name", "Permissions"},
		rows: func(func(string) string) [][]string {
			return [][]string{{user.UserName, user.Permissions}}
		},
	})
}

// eventTopicName prefers the embedded topic over the flat topic fields.
func eventTopicName(e schema.Event) string {
	if e.Topic != nil && e.Topic.Name != "" {
		return e.Topic.Name
	}
	return deref(e.TopicName)
}

// eventEngagement prefers the detailed total when the backend supplies it.
func eventEngagement(e schema.Event) float64 {
	if e.TotalEngagement != 0 {
		return e.TotalEngagement
	}
	return e.Engagement
}

// csvHeader turns table headers into snake_case column names.
func csvHeader(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.ReplaceAll(strings.ToLower(h), " ", "_")
	}
	return out
}

// oneLine collapses whitespace so multi-line content fits one table row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func keepText(s string) string { return s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
