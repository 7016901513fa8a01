package cmd

import (
	"github.com/spf13/cobra"

	"github.com/civiclens/civiclens/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the CivicLens MCP server",
	Long: `Launch an MCP server on stdio so that agents can list topics and events,
merge engagement timelines and build trend paths through standard tools.

Timeline flags given here become the defaults for every tool call.`,
	Args: cobra.NoArgs,
	// Headers go to stderr, so stdio stays reserved for the protocol.
	PreRunE: apiSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, newClient(), cacheManager)
	},
}
