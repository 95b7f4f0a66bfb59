package worker_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"foodgram/internal/cache"
	"foodgram/internal/model"
	"foodgram/internal/queue"
	"foodgram/internal/worker"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type mockInvalidator struct {
	calls int
	err   error
}

func (m *mockInvalidator) Invalidate(ctx context.Context) error {
	m.calls++
	return m.err
}

// fakeConsumer serves one batch, then blocks until the manager stops.
type fakeConsumer struct {
	batch []queue.Message

	mu    sync.Mutex
	reads int
	acked []string
	ackCh chan struct{}
}

func (f *fakeConsumer) EnsureGroup(ctx context.Context, stream, group string) error { return nil }

func (f *fakeConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]queue.Message, error) {
	f.mu.Lock()
	f.reads++
	first := f.reads == 1
	f.mu.Unlock()

	if first {
		return f.batch, nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeConsumer) Reclaim(ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int64) ([]queue.Message, error) {
	return nil, nil
}

func (f *fakeConsumer) Ack(ctx context.Context, stream, group string, ids ...string) error {
	f.mu.Lock()
	f.acked = append(f.acked, ids...)
	f.mu.Unlock()
	f.ackCh <- struct{}{}
	return nil
}

func (f *fakeConsumer) Pending(ctx context.Context, stream, group string) (int64, error) { return 0, nil }

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	// Use DB 1 for testing to avoid conflicts with dev data
	opts.DB = 1

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	client.FlushDB(ctx)
	return client
}

func cleanupTestRedis(client *redis.Client) {
	ctx := context.Background()
	client.FlushDB(ctx)
	client.Close()
}

// =============================================================================
// Handler Tests
// =============================================================================

func TestHandleEvent_RankingEventsInvalidate(t *testing.T) {
	events := []queue.EngagementEvent{
		queue.NewPostCreatedEvent("p1", "u1"),
		queue.NewPostDeletedEvent("p1", "u1"),
		queue.NewLikeToggledEvent("p1", "u1", "u2", true),
		queue.NewLikeToggledEvent("p1", "u1", "u2", false),
		queue.NewUserDeletedEvent("u1"),
	}

	for _, event := range events {
		t.Run(event.Type, func(t *testing.T) {
			inv := &mockInvalidator{}
			h := worker.NewHandler(inv)

			if err := h.HandleEvent(context.Background(), event); err != nil {
				t.Fatalf("HandleEvent failed: %v", err)
			}
			if inv.calls != 1 {
				t.Errorf("expected 1 invalidation, got %d", inv.calls)
			}
		})
	}
}

func TestHandleEvent_PostUpdatedLeavesRanking(t *testing.T) {
	inv := &mockInvalidator{}
	h := worker.NewHandler(inv)

	if err := h.HandleEvent(context.Background(), queue.NewPostUpdatedEvent("p1", "u1")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if inv.calls != 0 {
		t.Errorf("expected no invalidation, got %d", inv.calls)
	}
}

func TestHandleEvent_UnknownType(t *testing.T) {
	h := worker.NewHandler(&mockInvalidator{})

	err := h.HandleEvent(context.Background(), queue.EngagementEvent{Type: "post_exploded"})
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestHandleEvent_InvalidateError(t *testing.T) {
	boom := errors.New("redis down")
	h := worker.NewHandler(&mockInvalidator{err: boom})

	err := h.HandleEvent(context.Background(), queue.NewPostCreatedEvent("p1", "u1"))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped invalidate error, got %v", err)
	}
}

func TestHandleBatch_InvalidatesOnce(t *testing.T) {
	inv := &mockInvalidator{}
	h := worker.NewHandler(inv)

	err := h.HandleBatch(context.Background(), []queue.EngagementEvent{
		queue.NewLikeToggledEvent("p1", "u1", "u2", true),
		queue.NewLikeToggledEvent("p1", "u1", "u3", true),
		queue.NewPostUpdatedEvent("p1", "u1"),
		queue.NewPostCreatedEvent("p2", "u1"),
	})
	if err != nil {
		t.Fatalf("HandleBatch failed: %v", err)
	}
	if inv.calls != 1 {
		t.Errorf("expected 1 invalidation, got %d", inv.calls)
	}
}

func TestHandleBatch_UnknownTypeStillInvalidates(t *testing.T) {
	inv := &mockInvalidator{}
	h := worker.NewHandler(inv)

	err := h.HandleBatch(context.Background(), []queue.EngagementEvent{
		{Type: "post_exploded"},
		queue.NewPostDeletedEvent("p1", "u1"),
	})
	if err == nil {
		t.Error("expected error for unknown event type")
	}
	if inv.calls != 1 {
		t.Errorf("expected 1 invalidation, got %d", inv.calls)
	}
}

// =============================================================================
// Manager Tests
// =============================================================================

func TestManager_ProcessesAndAcksWholeBatch(t *testing.T) {
	// ARRANGE
	consumer := &fakeConsumer{
		batch: []queue.Message{
			{ID: "1-0", Event: queue.NewLikeToggledEvent("p1", "u1", "u2", true)},
			{ID: "2-0", Err: errors.New("missing or invalid 'data' field")},
			{ID: "3-0", Event: queue.NewPostCreatedEvent("p2", "u1")},
		},
		ackCh: make(chan struct{}, 1),
	}
	inv := &mockInvalidator{}
	m := worker.NewManager(consumer, worker.NewHandler(inv), worker.ManagerConfig{WorkerCount: 1})

	// ACT
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	select {
	case <-consumer.ackCh:
	case <-time.After(2 * time.Second):
		t.Fatal("batch was never acknowledged")
	}
	m.Stop()

	// ASSERT
	if inv.calls != 1 {
		t.Errorf("expected 1 invalidation for the batch, got %d", inv.calls)
	}
	want := []string{"1-0", "2-0", "3-0"}
	if len(consumer.acked) != len(want) {
		t.Fatalf("acked %v, want %v", consumer.acked, want)
	}
	for i, id := range want {
		if consumer.acked[i] != id {
			t.Errorf("acked[%d] = %s, want %s", i, consumer.acked[i], id)
		}
	}
}

func TestManager_StopIsSafeWithoutStart(t *testing.T) {
	m := worker.NewManager(&fakeConsumer{}, worker.NewHandler(&mockInvalidator{}), worker.ManagerConfig{})
	m.Stop()
	m.Stop()
}

// =============================================================================
// Redis Integration Tests
// =============================================================================

func TestRankingCacheInvalidation(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	rankings := cache.NewRankingCache(client, time.Minute)

	version, err := rankings.Version(ctx)
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}

	users := []model.RankedUser{
		{UserSummary: model.UserSummary{ID: "u1", Username: "ana"}, PostCount: 3, TotalLikes: 10},
	}
	if err := rankings.Set(ctx, version, "AN", users); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// filters are case-insensitive
	got, found, err := rankings.Get(ctx, version, "an")
	if err != nil || !found {
		t.Fatalf("expected cache hit, found=%v err=%v", found, err)
	}
	if len(got) != 1 || got[0].ID != "u1" || got[0].TotalLikes != 10 {
		t.Errorf("unexpected cached ranking: %+v", got)
	}

	h := worker.NewHandler(rankings)
	if err := h.HandleEvent(ctx, queue.NewLikeToggledEvent("p1", "u1", "u2", true)); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	next, err := rankings.Version(ctx)
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if next == version {
		t.Fatal("expected version bump after invalidation")
	}

	_, found, err = rankings.Get(ctx, next, "an")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected cache miss after invalidation")
	}
}

// TestStreamToWorkerIntegration covers Publisher -> Stream -> Consumer -> Handler -> Cache.
func TestStreamToWorkerIntegration(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()

	rankings := cache.NewRankingCache(client, time.Minute)
	publisher := queue.NewPublisher(client, 1000)
	consumer := queue.NewConsumer(client)
	handler := worker.NewHandler(rankings)

	if err := consumer.EnsureGroup(ctx, queue.StreamEngagement, queue.ConsumerGroupRanking); err != nil {
		t.Fatalf("EnsureGroup failed: %v", err)
	}

	before, _ := rankings.Version(ctx)

	if _, err := publisher.Publish(ctx, queue.StreamEngagement, queue.NewPostCreatedEvent("p1", "u1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	// an entry written by something other than the publisher
	if err := client.XAdd(ctx, &redis.XAddArgs{Stream: queue.StreamEngagement, Values: map[string]interface{}{"type": "junk"}}).Err(); err != nil {
		t.Fatalf("XAdd failed: %v", err)
	}

	messages, err := consumer.Read(ctx, queue.StreamEngagement, queue.ConsumerGroupRanking, "test-worker", 10, time.Second)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}

	msg := messages[0]
	if msg.Err != nil || msg.Event.Type != queue.EventPostCreated || msg.Event.PostID != "p1" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if messages[1].Err == nil {
		t.Error("expected decode error for the junk entry")
	}

	if err := handler.HandleEvent(ctx, msg.Event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if err := consumer.Ack(ctx, queue.StreamEngagement, queue.ConsumerGroupRanking, msg.ID, messages[1].ID); err != nil {
		t.Fatalf("Ack failed: %v", err)
	}

	after, _ := rankings.Version(ctx)
	if after != before+1 {
		t.Errorf("expected version %d, got %d", before+1, after)
	}

	pending, _ := consumer.Pending(ctx, queue.StreamEngagement, queue.ConsumerGroupRanking)
	if pending != 0 {
		t.Errorf("Expected 0 pending messages, got %d", pending)
	}
}
