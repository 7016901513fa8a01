package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/civiclens/civiclens/core/spline"
	"github.com/civiclens/civiclens/core/timeline"
	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/schema"
)

// BuildMerge fetches every configured event and aligns their series on one timeline.
func BuildMerge(ctx context.Context, cfg *contract.Config, client contract.APIClient, mgr contract.CacheManager) (schema.MergeResult, error) {
	if len(cfg.EventIDs) == 0 {
		return schema.MergeResult{}, errors.New("no event ids given")
	}
	if !shouldSuppressHeader(ctx) {
		logTimelineHeader(cfg)
	}

	// --- 0. Begin Run Tracking (if configured) ---
	ctx = beginRun(ctx, mgr, schema.MergeRun, cfg)

	// --- 1. Fetch Phase ---
	timelines, err := fetchTimelines(ctx, cfg, client, cfg.EventIDs)
	if err != nil {
		abortRun(ctx, mgr)
		return schema.MergeResult{}, err
	}

	// --- 2. Extraction and Alignment ---
	series := make([]schema.Series, len(timelines))
	infos := make([]schema.SeriesInfo, len(timelines))
	names := make([]string, len(timelines))
	for i, tl := range timelines {
		series[i] = ExtractSeries(tl.Name, tl.Points, cfg)
		infos[i] = schema.SeriesInfo{
			Key:     schema.SeriesKey(i),
			EventID: tl.ID,
			Name:    tl.Name,
			Points:  len(series[i].Points),
		}
		names[i] = tl.Name
	}
	rows := timeline.Align(series)

	// --- 3. End Run Tracking ---
	endRun(ctx, mgr, rows, names)

	return schema.MergeResult{Series: infos, Rows: rows, Metric: cfg.Metric}, nil
}

// BuildTrend fetches a single event and smooths its series into chart paths.
func BuildTrend(ctx context.Context, cfg *contract.Config, client contract.APIClient, mgr contract.CacheManager) (schema.TrendResult, error) {
	if len(cfg.EventIDs) != 1 {
		return schema.TrendResult{}, fmt.Errorf("trend needs exactly one event id (got %d)", len(cfg.EventIDs))
	}
	if !shouldSuppressHeader(ctx) {
		logTimelineHeader(cfg)
	}

	ctx = beginRun(ctx, mgr, schema.TrendRun, cfg)

	tl, err := fetchTimeline(ctx, client, cfg.EventIDs[0])
	if err != nil {
		abortRun(ctx, mgr)
		return schema.TrendResult{}, fmt.Errorf("event %d: %w", cfg.EventIDs[0], err)
	}
	result, rows := trendFromSeries(tl.ID, ExtractSeries(tl.Name, tl.Points, cfg), cfg)

	endRun(ctx, mgr, rows, []string{tl.Name})
	return result, nil
}

// TrendFromSeries projects a series into the default chart frame and builds its curve.
func TrendFromSeries(eventID int, series schema.Series, cfg *contract.Config) schema.TrendResult {
	result, _ := trendFromSeries(eventID, series, cfg)
	return result
}

// trendFromSeries also returns the aligned rows so they can be recorded.
// Aligning a single series collapses duplicate timestamps.
func trendFromSeries(eventID int, series schema.Series, cfg *contract.Config) (schema.TrendResult, []schema.MergedRow) {
	rows := timeline.Align([]schema.Series{series})
	values := timeline.Column(rows, 0)

	labels := make([]string, len(rows))
	points := make([]schema.TimePoint, len(rows))
	for i, row := range rows {
		labels[i] = row.Date
		points[i] = schema.TimePoint{Timestamp: row.Timestamp, Date: row.Date, Value: values[i]}
	}

	tension := cfg.Tension
	if tension <= 0 {
		tension = spline.DefaultTension
	}
	frame := spline.DefaultFrame
	projected := spline.Project(values, frame)

	return schema.TrendResult{
		EventID: eventID,
		Name:    series.Name,
		Metric:  cfg.Metric,
		Labels:  labels,
		Values:  values,
		Points:  projected,
		Path:    spline.Build(projected, tension, cfg.Closed).String(),
		Area:    spline.AreaPath(projected, tension, frame),
		Ticks:   spline.AxisTicks(values, frame),
		Stats:   spline.Summarize(values),
		Closed:  cfg.Closed,
		Tension: tension,
		Frame:   frame,
		Series:  points,
	}, rows
}

// runStore returns the run store of mgr, or nil when runs are not tracked.
func runStore(mgr contract.CacheManager) contract.RunStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetRunStore()
}

// beginRun records the start of a run and stores its ID in the returned context.
func beginRun(ctx context.Context, mgr contract.CacheManager, kind schema.RunKind, cfg *contract.Config) context.Context {
	store := runStore(mgr)
	if store == nil {
		return ctx
	}

	params := map[string]any{
		"event_ids":           cfg.EventIDs,
		"metric":              string(cfg.Metric),
		"cumulative":          cfg.Cumulative,
		"include_predictions": cfg.IncludePredictions,
		"workers":             cfg.Workers,
	}
	if !cfg.StartTime.IsZero() {
		params["start"] = cfg.StartTime.Format(contract.DateTimeFormat)
	}
	if !cfg.EndTime.IsZero() {
		params["end"] = cfg.EndTime.Format(contract.DateTimeFormat)
	}
	if kind == schema.TrendRun {
		params["tension"] = cfg.Tension
		params["closed"] = cfg.Closed
	}

	runID, err := store.BeginRun(kind, time.Now(), params)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx
	}
	if runID > 0 {
		ctx = withRunID(ctx, runID)
	}
	return ctx
}

// endRun stores the aligned rows of the run and marks it complete.
func endRun(ctx context.Context, mgr contract.CacheManager, rows []schema.MergedRow, names []string) {
	store := runStore(mgr)
	runID, ok := getRunID(ctx)
	if store == nil || !ok {
		return
	}
	if err := store.RecordMergedRows(runID, rows, names); err != nil {
		contract.LogWarn("Failed to record merged rows", err)
	}
	if err := store.EndRun(runID, time.Now(), len(names), len(rows)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// abortRun closes a run that failed before producing rows, so it has an end time.
func abortRun(ctx context.Context, mgr contract.CacheManager) {
	store := runStore(mgr)
	runID, ok := getRunID(ctx)
	if store == nil || !ok {
		return
	}
	if err := store.EndRun(runID, time.Now(), 0, 0); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// logTimelineHeader prints the events and range of a timeline command to stderr.
func logTimelineHeader(cfg *contract.Config) {
	ids := make([]string, len(cfg.EventIDs))
	for i, id := range cfg.EventIDs {
		ids[i] = strconv.Itoa(id)
	}
	_, _ = fmt.Fprintf(os.Stderr, "🔎 Events: %s (Metric: %s)\n", strings.Join(ids, ", "), cfg.Metric)
	_, _ = fmt.Fprintf(os.Stderr, "📅 Range: %s → %s\n", rangeBound(cfg.StartTime, "beginning"), rangeBound(cfg.EndTime, "now"))
}

func rangeBound(t time.Time, open string) string {
	if t.IsZero() {
		return open
	}
	return t.Format(contract.DateTimeFormat)
}
