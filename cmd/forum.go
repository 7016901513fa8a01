package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/civiclens/civiclens/core"
	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/internal/outwriter"
)

// forumCmd groups the topic forum commands.
var forumCmd = &cobra.Command{
	Use:   "forum",
	Short: "Read and write topic forum threads",
	Long: `Every topic has a forum thread. Reading is open, posting needs a session.

Subcommands:
  list - Show the thread of a topic
  post - Add a post as the logged in user

Examples:
  civiclens forum list 1
  civiclens forum post 1 "When does the detour end?"`,
}

// forumListCmd shows a forum thread.
var forumListCmd = &cobra.Command{
	Use:     "list <topic-id>",
	Short:   "Show the forum thread of a topic.",
	Args:    cobra.ExactArgs(1),
	PreRunE: apiSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteForumList(rootCtx, cfg, newClient(), outwriter.NewOutWriter(), parseIDArg(args[0])); err != nil {
			contract.LogFatal("Cannot list forum posts", err)
		}
	},
}

// forumPostCmd adds a post.
var forumPostCmd = &cobra.Command{
	Use:     "post <topic-id> <content...>",
	Short:   "Post to the forum thread of a topic.",
	Args:    cobra.MinimumNArgs(2),
	PreRunE: apiSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		content := strings.Join(args[1:], " ")
		if err := core.ExecuteForumPost(rootCtx, cfg, newClient(), outwriter.NewOutWriter(), parseIDArg(args[0]), content); err != nil {
			contract.LogFatal("Cannot post to forum", err)
		}
	},
}
