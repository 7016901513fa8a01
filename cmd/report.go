package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/civiclens/civiclens/core"
	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/internal/outwriter"
	"github.com/civiclens/civiclens/schema"
)

// parseReportArgs resolves the report kind and, for topic and event reports, its id.
func parseReportArgs(args []string) (schema.ReportKind, int, error) {
	kind := schema.ReportKind(strings.ToLower(args[0]))
	if _, ok := schema.ValidReportKinds[kind]; !ok {
		return "", 0, fmt.Errorf("invalid report kind '%s'. must be topic, event, weekly, monthly", args[0])
	}
	if !kind.NeedsID() {
		if len(args) > 1 {
			return "", 0, fmt.Errorf("%s report takes no id", kind)
		}
		return kind, 0, nil
	}
	if len(args) != 2 {
		return "", 0, fmt.Errorf("%s report needs an id", kind)
	}
	id, err := contract.ParseID(args[1])
	if err != nil {
		return "", 0, err
	}
	return kind, id, nil
}

// reportCmd downloads a generated PDF report.
var reportCmd = &cobra.Command{
	Use:   "report <topic|event|weekly|monthly> [id]",
	Short: "Download a PDF report generated by the backend.",
	Long: `Download one of the PDF reports the backend generates.

Requires: --output-file parameter

Examples:
  civiclens report weekly --output-file weekly.pdf
  civiclens report topic 1 --output-file infrastructure.pdf
  civiclens report event 7 --output-file road-works.pdf`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: apiSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		kind, id, err := parseReportArgs(args)
		if err != nil {
			contract.LogFatal("Invalid report", err)
		}
		if err := core.ExecuteReport(rootCtx, cfg, newClient(), outwriter.NewOutWriter(), kind, id); err != nil {
			contract.LogFatal("Cannot download report", err)
		}
	},
}
