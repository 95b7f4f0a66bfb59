package service

import (
	"context"
	"log"

	"foodgram/internal/model"
	"foodgram/internal/queue"
)

// publishEngagement sends an event after a committed write. Publishing is
// best-effort: the write already happened, so failures are only logged.
func publishEngagement(ctx context.Context, publisher queue.Publisher, component string, event queue.EngagementEvent) {
	if publisher == nil {
		return
	}

	msgID, err := publisher.Publish(ctx, queue.StreamEngagement, event)
	if err != nil {
		log.Printf("[%s] Failed to publish %s event: post=%s err=%v", component, event.Type, event.PostID, err)
		return
	}
	log.Printf("[%s] Published %s: msgID=%s", component, event.Type, msgID)
}

// requireActor returns ErrUnauthenticated when no acting user was resolved.
func requireActor(actor *model.User) error {
	if actor == nil || actor.ID == "" {
		return model.ErrUnauthenticated
	}
	return nil
}
