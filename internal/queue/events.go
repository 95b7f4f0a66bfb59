package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the engagement stream
const (
	EventPostCreated = "post_created"
	EventPostUpdated = "post_updated"
	EventPostDeleted = "post_deleted"
	EventPostLiked   = "post_liked"
	EventPostUnliked = "post_unliked"
	EventUserCreated = "user_created"
	EventUserUpdated = "user_updated"
	EventUserDeleted = "user_deleted"
)

// Stream names
const (
	StreamEngagement = "stream:engagement"
)

// Consumer group name for ranking workers
const (
	ConsumerGroupRanking = "ranking_workers"
)

// EngagementEvent is published after a write that changes anything the user
// ranking is derived from: who is ranked, their summary, post counts or likes.
type EngagementEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	PostID   string `json:"post_id,omitempty"`
	AuthorID string `json:"author_id,omitempty"`
	// ActorID is the user who liked/unliked, or the user the account event is about
	ActorID string `json:"actor_id,omitempty"`
}

func newPostEvent(eventType, postID, authorID string) EngagementEvent {
	return EngagementEvent{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		AuthorID:  authorID,
	}
}

func NewPostCreatedEvent(postID, authorID string) EngagementEvent {
	return newPostEvent(EventPostCreated, postID, authorID)
}

func NewPostUpdatedEvent(postID, authorID string) EngagementEvent {
	return newPostEvent(EventPostUpdated, postID, authorID)
}

func NewPostDeletedEvent(postID, authorID string) EngagementEvent {
	return newPostEvent(EventPostDeleted, postID, authorID)
}

// NewLikeToggledEvent reports the state a like toggle left behind
func NewLikeToggledEvent(postID, authorID, actorID string, liked bool) EngagementEvent {
	eventType := EventPostUnliked
	if liked {
		eventType = EventPostLiked
	}
	e := newPostEvent(eventType, postID, authorID)
	e.ActorID = actorID
	return e
}

func newUserEvent(eventType, userID string) EngagementEvent {
	return EngagementEvent{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		ActorID:   userID,
	}
}

func NewUserCreatedEvent(userID string) EngagementEvent {
	return newUserEvent(EventUserCreated, userID)
}

// NewUserUpdatedEvent covers profile edits, username and avatar included
func NewUserUpdatedEvent(userID string) EngagementEvent {
	return newUserEvent(EventUserUpdated, userID)
}

func NewUserDeletedEvent(userID string) EngagementEvent {
	return newUserEvent(EventUserDeleted, userID)
}

// AffectsRanking reports whether the event changes the ranked users, their
// summaries, post counts or like totals
func (e EngagementEvent) AffectsRanking() bool {
	switch e.Type {
	case EventPostCreated, EventPostDeleted, EventPostLiked, EventPostUnliked,
		EventUserCreated, EventUserUpdated, EventUserDeleted:
		return true
	}
	return false
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so the event is JSON in a "data" field.
func (e EngagementEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseEngagementEvent parses an event from Redis stream message values.
func ParseEngagementEvent(values map[string]interface{}) (EngagementEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return EngagementEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event EngagementEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return EngagementEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
