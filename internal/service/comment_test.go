package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"foodgram/internal/model"
	"foodgram/internal/repository/memory"
)

func TestCommentService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author")
	fan := seedUser(t, store, "fan")
	post := seedPost(t, store, author, "Ratatouille")
	svc := NewCommentService(store.Comments, store.Posts, store.Users)

	c, err := svc.Create(ctx, fan, post.ID, model.CreateCommentRequest{Comment: "  looks great  "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.Comment != "looks great" || c.UserID != fan.ID || c.ReplyTo != nil {
		t.Errorf("unexpected comment: %+v", c)
	}
	if c.Author == nil || c.Author.Username != "fan" {
		t.Errorf("author = %+v, want fan", c.Author)
	}

	list, err := svc.List(ctx, post.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list.Comments) != 1 || list.Comments[0].Author == nil {
		t.Errorf("comments = %+v", list.Comments)
	}
}

func TestCommentService_Create_Validation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author")
	post := seedPost(t, store, author, "Ratatouille")
	svc := NewCommentService(store.Comments, store.Posts, store.Users)

	tests := []struct {
		name   string
		actor  *model.User
		postID string
		body   string
		want   error
	}{
		{"empty body", author, post.ID, "   ", model.ErrContentRequired},
		{"too long", author, post.ID, strings.Repeat("a", model.MaxCommentLength+1), model.ErrContentTooLong},
		{"unknown post", author, "missing", "hi", model.ErrPostNotFound},
		{"empty post id", author, "", "hi", model.ErrPostIDRequired},
		{"no actor", nil, post.ID, "hi", model.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.actor, tt.postID, model.CreateCommentRequest{Comment: tt.body})
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCommentService_ReplyIntegrity(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author")
	fan := seedUser(t, store, "fan")
	post := seedPost(t, store, author, "Ratatouille")
	other := seedPost(t, store, author, "Risotto")
	svc := NewCommentService(store.Comments, store.Posts, store.Users)

	root, err := svc.Create(ctx, fan, post.ID, model.CreateCommentRequest{Comment: "first"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reply, err := svc.Reply(ctx, author, post.ID, root.ID, model.CreateCommentRequest{Comment: "thanks"})
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if reply.ReplyTo == nil || *reply.ReplyTo != root.ID {
		t.Errorf("reply_to = %v, want %s", reply.ReplyTo, root.ID)
	}

	// nested replies have no depth limit
	nested, err := svc.Reply(ctx, fan, post.ID, reply.ID, model.CreateCommentRequest{Comment: "welcome"})
	if err != nil {
		t.Fatalf("nested Reply failed: %v", err)
	}

	if _, err := svc.Reply(ctx, fan, post.ID, "missing", model.CreateCommentRequest{Comment: "?"}); !errors.Is(err, model.ErrParentCommentNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrParentCommentNotFound)
	}
	if _, err := svc.Reply(ctx, fan, other.ID, root.ID, model.CreateCommentRequest{Comment: "?"}); !errors.Is(err, model.ErrParentCommentNotFound) {
		t.Errorf("cross-post reply: error = %v, want %v", err, model.ErrParentCommentNotFound)
	}

	replies, err := svc.Replies(ctx, post.ID, root.ID)
	if err != nil {
		t.Fatalf("Replies failed: %v", err)
	}
	if len(replies.Comments) != 1 || replies.Comments[0].ID != reply.ID {
		t.Errorf("replies = %+v, want only %s", replies.Comments, reply.ID)
	}

	deeper, _ := svc.Replies(ctx, post.ID, reply.ID)
	if len(deeper.Comments) != 1 || deeper.Comments[0].ID != nested.ID {
		t.Errorf("nested replies = %+v, want only %s", deeper.Comments, nested.ID)
	}
}

func TestCommentService_Delete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author")
	fan := seedUser(t, store, "fan")
	post := seedPost(t, store, author, "Ratatouille")
	svc := NewCommentService(store.Comments, store.Posts, store.Users)

	root, _ := svc.Create(ctx, fan, post.ID, model.CreateCommentRequest{Comment: "first"})
	if _, err := svc.Reply(ctx, author, post.ID, root.ID, model.CreateCommentRequest{Comment: "thanks"}); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	// only the author can delete
	deleted, err := svc.Delete(ctx, author, root.ID)
	if !errors.Is(err, model.ErrNotCommentOwner) || deleted {
		t.Fatalf("deleted=%v err=%v, want ErrNotCommentOwner", deleted, err)
	}

	deleted, err = svc.Delete(ctx, fan, root.ID)
	if err != nil || !deleted {
		t.Fatalf("deleted=%v err=%v, want true", deleted, err)
	}

	// the reply went with its parent
	list, _ := svc.List(ctx, post.ID)
	if len(list.Comments) != 0 {
		t.Errorf("expected no comments left, got %d", len(list.Comments))
	}

	deleted, err = svc.Delete(ctx, fan, root.ID)
	if !errors.Is(err, model.ErrCommentNotFound) || deleted {
		t.Errorf("second delete: deleted=%v err=%v, want ErrCommentNotFound", deleted, err)
	}

	_, err = svc.Delete(ctx, fan, "does-not-exist")
	if model.KindOf(err) != model.KindNotFound {
		t.Errorf("unknown comment: kind=%v err=%v, want not found", model.KindOf(err), err)
	}
}

func TestCommentService_Replies_UnknownComment(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author")
	post := seedPost(t, store, author, "Ratatouille")
	svc := NewCommentService(store.Comments, store.Posts, store.Users)

	if _, err := svc.Replies(ctx, post.ID, "missing"); !errors.Is(err, model.ErrCommentNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrCommentNotFound)
	}
}
