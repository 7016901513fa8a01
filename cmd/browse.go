package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/civiclens/civiclens/core"
	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/internal/outwriter"
)

// parseIDArg parses a positional id or exits.
func parseIDArg(arg string) int {
	id, err := contract.ParseID(arg)
	if err != nil {
		contract.LogFatal("Invalid id", err)
	}
	return id
}

// topicsCmd lists topics.
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List topics with their events and actionable counts.",
	Long: `List every topic known to the backend.

Examples:
  # Table of topics
  civiclens topics

  # Machine readable
  civiclens topics --output json`,
	Args:    cobra.NoArgs,
	PreRunE: apiSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTopics(rootCtx, cfg, newClient(), outwriter.NewOutWriter()); err != nil {
			contract.LogFatal("Cannot list topics", err)
		}
	},
}

// topicsShowCmd shows one topic.
var topicsShowCmd = &cobra.Command{
	Use:     "show <topic-id>",
	Short:   "Show one topic and its events.",
	Args:    cobra.ExactArgs(1),
	PreRunE: apiSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteTopic(rootCtx, cfg, newClient(), outwriter.NewOutWriter(), parseIDArg(args[0])); err != nil {
			contract.LogFatal("Cannot show topic", err)
		}
	},
}

// eventsCmd lists events.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List events with their engagement and trend.",
	Long: `List every event known to the backend. Use the ids with merge and trend.

Examples:
  # Table of events
  civiclens events

  # Details and posts of one event
  civiclens events show 7
  civiclens events posts 7`,
	Args:    cobra.NoArgs,
	PreRunE: apiSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEvents(rootCtx, cfg, newClient(), outwriter.NewOutWriter()); err != nil {
			contract.LogFatal("Cannot list events", err)
		}
	},
}

// eventsShowCmd shows one event.
var eventsShowCmd = &cobra.Command{
	Use:     "show <event-id>",
	Short:   "Show the details of one event.",
	Args:    cobra.ExactArgs(1),
	PreRunE: apiSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteEvent(rootCtx, cfg, newClient(), outwriter.NewOutWriter(), parseIDArg(args[0])); err != nil {
			contract.LogFatal("Cannot show event", err)
		}
	},
}

// eventsPostsCmd lists the posts of one event.
var eventsPostsCmd = &cobra.Command{
	Use:     "posts <event-id>",
	Short:   "List the social media posts attached to an event.",
	Args:    cobra.ExactArgs(1),
	PreRunE: apiSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteEventPosts(rootCtx, cfg, newClient(), outwriter.NewOutWriter(), parseIDArg(args[0])); err != nil {
			contract.LogFatal("Cannot list event posts", err)
		}
	},
}

// searchCmd runs a free text search.
var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search topics and events by keyword.",
	Long: `Run a free text search. The backend returns the best matching topic and
the events inside it with their matched keywords.

Examples:
  civiclens search road closure
  civiclens search "park reopening" --output json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: apiSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteSearch(rootCtx, cfg, newClient(), outwriter.NewOutWriter(), strings.Join(args, " ")); err != nil {
			contract.LogFatal("Cannot search", err)
		}
	},
}
