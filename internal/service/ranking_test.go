package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"foodgram/internal/model"
	"foodgram/internal/queue"
	"foodgram/internal/repository/memory"
	"foodgram/internal/worker"
)

// fakeRankingCache is an in-process stand-in for the Redis ranking cache.
type fakeRankingCache struct {
	version    int64
	entries    map[string][]model.RankedUser
	versionErr error
	sets       int
}

func newFakeRankingCache() *fakeRankingCache {
	return &fakeRankingCache{entries: make(map[string][]model.RankedUser)}
}

func (c *fakeRankingCache) key(version int64, filter string) string {
	return fmt.Sprintf("%d:%s", version, strings.ToLower(filter))
}

func (c *fakeRankingCache) Version(ctx context.Context) (int64, error) {
	return c.version, c.versionErr
}

func (c *fakeRankingCache) Get(ctx context.Context, version int64, filter string) ([]model.RankedUser, bool, error) {
	users, ok := c.entries[c.key(version, filter)]
	return users, ok, nil
}

func (c *fakeRankingCache) Set(ctx context.Context, version int64, filter string, users []model.RankedUser) error {
	c.sets++
	c.entries[c.key(version, filter)] = users
	return nil
}

func (c *fakeRankingCache) Invalidate(ctx context.Context) error {
	c.version++
	return nil
}

// U1 (3 posts, 10 likes) ranks before U2 (3 posts, 5 likes); U3 with more posts leads.
func TestRankingService_OrdersByPostsThenLikes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	u2 := seedUser(t, store, "u2")
	u1 := seedUser(t, store, "u1")
	u3 := seedUser(t, store, "u3")
	seedUser(t, store, "u4")

	likesPerPost := map[*model.User][]int{
		u1: {4, 3, 3},
		u2: {5, 0, 0},
		u3: {0, 0, 0, 0},
	}
	for author, likes := range likesPerPost {
		for _, n := range likes {
			post := seedPost(t, store, author, "dish")
			likeTimes(t, store, post.ID, n)
		}
	}

	svc := NewRankingService(store, nil)
	resp, err := svc.RankUsers(ctx, "u")
	if err != nil {
		t.Fatalf("RankUsers failed: %v", err)
	}

	// fans do not match "u", so only the four seeded users rank
	if len(resp.Users) != 4 {
		t.Fatalf("expected 4 ranked users, got %d", len(resp.Users))
	}

	want := []struct {
		username string
		posts    int
		likes    int
	}{
		{"u3", 4, 0},
		{"u1", 3, 10},
		{"u2", 3, 5},
		{"u4", 0, 0},
	}
	for i, w := range want {
		got := resp.Users[i]
		if got.Username != w.username || got.PostCount != w.posts || got.TotalLikes != w.likes {
			t.Errorf("rank %d = %s (%d posts, %d likes), want %s (%d, %d)",
				i, got.Username, got.PostCount, got.TotalLikes, w.username, w.posts, w.likes)
		}
	}
}

func TestRankingService_StableForFullTies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	for _, name := range []string{"cook-b", "cook-a", "cook-c"} {
		seedUser(t, store, name)
	}

	resp, err := NewRankingService(store, nil).RankUsers(ctx, "COOK")
	if err != nil {
		t.Fatalf("RankUsers failed: %v", err)
	}

	got := make([]string, len(resp.Users))
	for i, u := range resp.Users {
		got[i] = u.Username
	}
	if strings.Join(got, ",") != "cook-b,cook-a,cook-c" {
		t.Errorf("order = %v, want store order", got)
	}
}

func TestRankingService_EmptyFilterMatchesEveryone(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "ana")
	seedUser(t, store, "bob")

	resp, err := NewRankingService(store, nil).RankUsers(context.Background(), "")
	if err != nil {
		t.Fatalf("RankUsers failed: %v", err)
	}
	if len(resp.Users) != 2 {
		t.Errorf("expected 2 users, got %d", len(resp.Users))
	}

	none, _ := NewRankingService(store, nil).RankUsers(context.Background(), "zzz")
	if none.Users == nil || len(none.Users) != 0 {
		t.Errorf("expected empty non-nil ranking, got %#v", none.Users)
	}
}

func TestRankingService_ReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ana := seedUser(t, store, "ana")
	rankings := newFakeRankingCache()
	svc := NewRankingService(store, rankings)

	first, err := svc.RankUsers(ctx, "ana")
	if err != nil {
		t.Fatalf("RankUsers failed: %v", err)
	}
	if rankings.sets != 1 || first.Users[0].PostCount != 0 {
		t.Fatalf("sets=%d users=%+v", rankings.sets, first.Users)
	}

	// a new post is invisible until the cache is invalidated
	seedPost(t, store, ana, "Flan")
	cached, _ := svc.RankUsers(ctx, "ana")
	if cached.Users[0].PostCount != 0 || rankings.sets != 1 {
		t.Errorf("expected cached ranking, got %+v (sets=%d)", cached.Users, rankings.sets)
	}

	_ = rankings.Invalidate(ctx)
	fresh, _ := svc.RankUsers(ctx, "ana")
	if fresh.Users[0].PostCount != 1 {
		t.Errorf("expected recomputed ranking, got %+v", fresh.Users)
	}
}

func TestRankingService_CacheErrorFallsBack(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "ana")
	rankings := newFakeRankingCache()
	rankings.versionErr = errors.New("redis down")

	resp, err := NewRankingService(store, rankings).RankUsers(context.Background(), "")
	if err != nil {
		t.Fatalf("RankUsers failed: %v", err)
	}
	if len(resp.Users) != 1 || rankings.sets != 0 {
		t.Errorf("users=%d sets=%d, want 1 user and no cache write", len(resp.Users), rankings.sets)
	}
}

// workerPublisher hands every published event straight to the ranking worker.
type workerPublisher struct {
	handler *worker.Handler
	types   []string
}

func (p *workerPublisher) Publish(ctx context.Context, stream string, event queue.EngagementEvent) (string, error) {
	p.types = append(p.types, event.Type)
	return "1-0", p.handler.HandleEvent(ctx, event)
}

func TestRankingService_AccountChangesInvalidateCache(t *testing.T) {
	// ARRANGE
	ctx := context.Background()
	store := memory.NewStore()
	rankings := newFakeRankingCache()
	pub := &workerPublisher{handler: worker.NewHandler(rankings)}
	users := NewUserService(store, pub)
	ranking := NewRankingService(store, rankings)

	req := validSignup()
	ana, err := users.Signup(ctx, req)
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if resp, _ := ranking.RankUsers(ctx, ""); len(resp.Users) != 1 {
		t.Fatalf("users before second signup = %d, want 1", len(resp.Users))
	}

	// ACT
	req = validSignup()
	req.Email = "bob@example.com"
	req.Username = "bob"
	if _, err := users.Signup(ctx, req); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	afterSignup, _ := ranking.RankUsers(ctx, "")

	renamed := "anabel"
	if _, err := users.Update(ctx, ana, &model.UpdateUserRequest{Username: &renamed}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	afterRename, _ := ranking.RankUsers(ctx, "")

	// ASSERT
	if len(afterSignup.Users) != 2 {
		t.Errorf("users after signup = %d, want 2", len(afterSignup.Users))
	}
	for _, u := range afterRename.Users {
		if u.ID == ana.ID && u.Username != renamed {
			t.Errorf("cached username = %q, want %q", u.Username, renamed)
		}
	}
	want := []string{queue.EventUserCreated, queue.EventUserCreated, queue.EventUserUpdated}
	if fmt.Sprint(pub.types) != fmt.Sprint(want) {
		t.Errorf("published %v, want %v", pub.types, want)
	}
}
