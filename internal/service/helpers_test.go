package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"foodgram/internal/model"
	"foodgram/internal/repository"
)

func seedUser(t *testing.T, store *repository.Store, username string) *model.User {
	t.Helper()

	user := &model.User{
		ID:        uuid.NewString(),
		Email:     username + "@example.com",
		Username:  username,
		FirstName: username,
		Age:       30,
		Gender:    model.GenderNonBinary,
		Country:   "Spain",
	}
	if err := store.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedPost(t *testing.T, store *repository.Store, author *model.User, title string) *model.Post {
	t.Helper()

	post := model.NewPostFromRequest(author.ID, model.CreatePostRequest{
		Title:    title,
		Type:     model.PostTypeSalad,
		Duration: "20 min",
	})
	post.ID = uuid.NewString()
	if err := store.Posts.Create(context.Background(), post); err != nil {
		t.Fatalf("seed post %s: %v", title, err)
	}
	return post
}

// likeTimes makes n distinct users like postID.
func likeTimes(t *testing.T, store *repository.Store, postID string, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		fan := seedUser(t, store, "fan-"+uuid.NewString()[:8])
		if _, err := store.Likes.Toggle(context.Background(), postID, fan.ID); err != nil {
			t.Fatalf("seed like: %v", err)
		}
	}
}
