package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// Metric represents which engagement count feeds a timeline.
	Metric string

	// RunKind represents the kind of tracked run.
	RunKind string

	// ReportKind represents the scope of a backend PDF report.
	ReportKind string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	SVGOut     OutputMode = "svg"
	PNGOut     OutputMode = "png"
)

// All metrics supported.
const (
	EngagementMetric Metric = "engagement" // default
	LikesMetric      Metric = "likes"
	CommentsMetric   Metric = "comments"
)

// All run kinds supported.
const (
	MergeRun RunKind = "merge"
	TrendRun RunKind = "trend"
)

// All report kinds supported.
const (
	TopicReport   ReportKind = "topic"
	EventReport   ReportKind = "event"
	WeeklyReport  ReportKind = "weekly"
	MonthlyReport ReportKind = "monthly"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	SVGOut:     {},
	PNGOut:     {},
}

// ValidMetrics lists all valid metrics.
var ValidMetrics = map[Metric]struct{}{
	EngagementMetric: {},
	LikesMetric:      {},
	CommentsMetric:   {},
}

// ValidReportKinds lists all valid report kinds.
var ValidReportKinds = map[ReportKind]struct{}{
	TopicReport:   {},
	EventReport:   {},
	WeeklyReport:  {},
	MonthlyReport: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// NeedsID reports whether the report kind is scoped to a single entity.
func (k ReportKind) NeedsID() bool {
	return k == TopicReport || k == EventReport
}
