package worker

import (
	"context"
	"fmt"
	"log"

	"foodgram/internal/queue"
)

// RankingInvalidator is the slice of the ranking cache the worker needs.
type RankingInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Handler turns engagement events into ranking cache invalidations.
type Handler struct {
	ranking RankingInvalidator
}

func NewHandler(ranking RankingInvalidator) *Handler {
	return &Handler{ranking: ranking}
}

// HandleEvent processes a single event.
func (h *Handler) HandleEvent(ctx context.Context, event queue.EngagementEvent) error {
	return h.HandleBatch(ctx, []queue.EngagementEvent{event})
}

// HandleBatch invalidates the ranking at most once for the whole batch.
func (h *Handler) HandleBatch(ctx context.Context, events []queue.EngagementEvent) error {
	var (
		affected int
		unknown  error
	)
	for _, event := range events {
		switch {
		case event.AffectsRanking():
			affected++
		case event.Type == queue.EventPostUpdated:
			// recipe edits change neither post counts nor likes
		default:
			unknown = fmt.Errorf("unknown event type: %s", event.Type)
		}
	}

	if affected > 0 {
		if err := h.ranking.Invalidate(ctx); err != nil {
			return fmt.Errorf("invalidate ranking: %w", err)
		}
		log.Printf("[Worker] Ranking invalidated by %d of %d events", affected, len(events))
	}
	return unknown
}
