package core

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/schema"
)

// eventTimeline is the raw engagement history of one event.
type eventTimeline struct {
	ID     int
	Name   string
	Points []schema.EngagementPoint
}

// fetchTimelines loads every event concurrently, bounded by cfg.Workers.
// The result keeps the order of ids; the first failure cancels the rest.
func fetchTimelines(ctx context.Context, cfg *contract.Config, client contract.APIClient, ids []int) ([]eventTimeline, error) {
	timelines := make([]eventTimeline, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.Workers))
	for i, id := range ids {
		g.Go(func() error {
			tl, err := fetchTimeline(gctx, client, id)
			if err != nil {
				return fmt.Errorf("event %d: %w", id, err)
			}
			timelines[i] = tl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return timelines, nil
}

// fetchTimeline loads one event. Events listed without an embedded timeline
// fall back to the dedicated engagement endpoint.
func fetchTimeline(ctx context.Context, client contract.APIClient, id int) (eventTimeline, error) {
	event, err := client.GetEvent(ctx, id)
	if err != nil {
		return eventTimeline{}, err
	}

	tl := eventTimeline{ID: id, Name: event.Name, Points: event.EngagementTimeline}
	if tl.Name == "" {
		tl.Name = fmt.Sprintf("Event %d", id)
	}
	if len(tl.Points) > 0 {
		return tl, nil
	}

	engagement, err := client.GetEngagement(ctx, id)
	switch {
	case err == nil:
		tl.Points = engagement.Timeline
	case !errors.Is(err, contract.ErrNotFound):
		return eventTimeline{}, err
	}
	return tl, nil
}
