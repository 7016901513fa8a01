package cmd

import (
	"github.com/spf13/cobra"

	"github.com/civiclens/civiclens/core"
)

// mergeCmd aligns the engagement timelines of several events.
var mergeCmd = &cobra.Command{
	Use:   "merge <event-id>...",
	Short: "Align the engagement timelines of several events on one time axis.",
	Long: `Fetch the engagement timeline of every event and line them up row by row.

The output has one row per distinct timestamp across all events. Each event
contributes one column:
- 0 before its first observation
- its own value at timestamps it reports
- its most recent value at timestamps reported only by other events

Event ids can be given as separate arguments or comma separated.

Examples:
  # Compare two events side by side
  civiclens merge 7 9

  # Compare likes only, from one week ago
  civiclens merge 7,9,12 --metric likes --start "1 week ago"

  # Running totals, exported for pandas or DuckDB
  civiclens merge 7 9 --cumulative --output parquet --output-file merged.parquet

  # Chart the aligned series
  civiclens merge 7 9 --output png --output-file merged.png`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     timelineRun("merge timelines", core.ExecuteMerge),
}

// trendCmd draws the smoothed trend of one event.
var trendCmd = &cobra.Command{
	Use:   "trend <event-id>",
	Short: "Smooth the engagement timeline of one event into a chart path.",
	Long: `Project the engagement timeline of one event onto the dashboard chart frame and
smooth it with a Catmull-Rom spline expressed as cubic Bezier segments.

Text output shows the projected points, the summary stats and the SVG path data.
SVG and PNG outputs render the full chart. Use --chart-style to change colors,
fonts and labels with a YAML file.

Examples:
  # Show the curve and stats
  civiclens trend 7

  # Write the dashboard chart
  civiclens trend 7 --output svg --output-file trend.svg

  # A looser curve, closed back to its start
  civiclens trend 7 --tension 1 --closed --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     timelineRun("build trend", core.ExecuteTrend),
}
