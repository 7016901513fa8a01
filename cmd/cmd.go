// Package cmd defines the command-line interface for civiclens.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(forumCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Browsing subcommands
	topicsCmd.AddCommand(topicsShowCmd)
	eventsCmd.AddCommand(eventsShowCmd)
	eventsCmd.AddCommand(eventsPostsCmd)
	forumCmd.AddCommand(forumListCmd)
	forumCmd.AddCommand(forumPostCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("api-url", contract.DefaultAPIURL, "Base URL of the dashboard backend")
	rootCmd.PersistentFlags().String("api-timeout", contract.DefaultAPITimeout.String(), "Timeout of a single backend request")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet or svg or png")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent backend requests")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Response cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-ttl", "1 hour", "How long cached backend responses stay fresh")
	rootCmd.PersistentFlags().String("run-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Structured log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Timeline flags are bound by sharedSetup for the command that runs
	for _, c := range []*cobra.Command{mergeCmd, trendCmd, serveCmd, mcpCmd} {
		addTimelineFlags(c)
	}
	trendCmd.Flags().Float64("tension", contract.DefaultTension, "Curve tension, 0 < t <= 2 (0.5 is Catmull-Rom)")
	trendCmd.Flags().Bool("closed", false, "Close the trend path back to its start")
	trendCmd.Flags().String("chart-style", "", "YAML chart style file for svg and png output")
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address the HTTP service listens on")

	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().String("password", "", "Password (or set CIVICLENS_PASSWORD)")
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}

// addTimelineFlags registers the series extraction flags on c.
func addTimelineFlags(c *cobra.Command) {
	c.Flags().String("metric", string(schema.EngagementMetric), "Metric to chart: engagement or likes or comments")
	c.Flags().Bool("cumulative", false, "Chart the running total of the metric")
	c.Flags().Bool("include-predictions", false, "Keep points the backend marks as predictions")
	c.Flags().String("start", "", "Start date in ISO8601 or time ago")
	c.Flags().String("end", "", "End date in ISO8601 or time ago")
	c.Flags().String("date-format", contract.DefaultDateFormat, "Go time layout for row labels")
}
