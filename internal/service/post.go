package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"foodgram/internal/model"
	"foodgram/internal/queue"
	"foodgram/internal/repository"
)

type PostService struct {
	postRepo    repository.PostRepository
	likeRepo    repository.LikeRepository
	savedRepo   repository.SavedPostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	publisher   queue.Publisher
}

func NewPostService(store *repository.Store, publisher queue.Publisher) *PostService {
	return &PostService{
		postRepo:    store.Posts,
		likeRepo:    store.Likes,
		savedRepo:   store.SavedPosts,
		commentRepo: store.Comments,
		userRepo:    store.Users,
		publisher:   publisher,
	}
}

// Create validates and stores a new recipe owned by actor.
func (s *PostService) Create(ctx context.Context, actor *model.User, req model.CreatePostRequest) (*model.Post, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	post := model.NewPostFromRequest(actor.ID, req)
	if err := post.Validate(); err != nil {
		return nil, err
	}
	post.ID = uuid.NewString()

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	log.Printf("[PostService] User %s created post %s", actor.ID, post.ID)
	publishEngagement(ctx, s.publisher, "PostService", queue.NewPostCreatedEvent(post.ID, actor.ID))

	return post, nil
}

// List returns posts newest first, optionally narrowed to one recipe type.
func (s *PostService) List(ctx context.Context, filter model.PostFilter) ([]model.Post, error) {
	if filter.Type != "" && !model.IsValidPostType(filter.Type) {
		return nil, model.ErrInvalidPostType
	}

	posts, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// GetPostDetail returns the post with its like count, the ids of the users
// who liked it and its comments as a flat list.
func (s *PostService) GetPostDetail(ctx context.Context, postID string) (*model.PostDetail, error) {
	if postID == "" {
		return nil, model.ErrPostIDRequired
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	likes, err := s.likeRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	attachAuthors(ctx, s.userRepo, comments)

	detail := &model.PostDetail{
		Post:     *post,
		Likes:    len(likes),
		LikedBy:  make([]string, 0, len(likes)),
		Comments: comments,
	}
	for _, like := range likes {
		detail.LikedBy = append(detail.LikedBy, like.UserID)
	}
	return detail, nil
}

// Update applies a partial update to a post owned by actor.
func (s *PostService) Update(ctx context.Context, actor *model.User, postID string, req model.UpdatePostRequest) (*model.Post, error) {
	if postID == "" {
		return nil, model.ErrPostIDRequired
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != actor.ID {
		return nil, model.ErrNotPostOwner
	}

	post.Apply(req)
	if err := post.Validate(); err != nil {
		return nil, err
	}

	// the repository re-checks ownership inside its write
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	log.Printf("[PostService] User %s updated post %s", actor.ID, postID)
	publishEngagement(ctx, s.publisher, "PostService", queue.NewPostUpdatedEvent(postID, actor.ID))

	return post, nil
}

// Delete removes a post owned by actor with its likes, comments, favorites and shares.
func (s *PostService) Delete(ctx context.Context, actor *model.User, postID string) error {
	if postID == "" {
		return model.ErrPostIDRequired
	}
	if err := requireActor(actor); err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, postID, actor.ID); err != nil {
		return err
	}

	log.Printf("[PostService] User %s deleted post %s", actor.ID, postID)
	publishEngagement(ctx, s.publisher, "PostService", queue.NewPostDeletedEvent(postID, actor.ID))

	return nil
}

// ToggleLike likes the post for actor, or removes the like if present.
func (s *PostService) ToggleLike(ctx context.Context, actor *model.User, postID string) (*model.ToggleResponse, error) {
	if postID == "" {
		return nil, model.ErrPostIDRequired
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.likeRepo.Toggle(ctx, postID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}

	log.Printf("[PostService] User %s set like=%t on post %s", actor.ID, liked, postID)
	publishEngagement(ctx, s.publisher, "PostService", queue.NewLikeToggledEvent(postID, post.UserID, actor.ID, liked))

	return &model.ToggleResponse{Active: liked}, nil
}

// ToggleFavorite adds or removes the post from actor's favorites.
func (s *PostService) ToggleFavorite(ctx context.Context, actor *model.User, postID string) (*model.ToggleResponse, error) {
	return s.toggleSaved(ctx, model.SavedFavorite, actor, postID)
}

// ToggleShare adds or removes the post from actor's shared posts.
func (s *PostService) ToggleShare(ctx context.Context, actor *model.User, postID string) (*model.ToggleResponse, error) {
	return s.toggleSaved(ctx, model.SavedShare, actor, postID)
}

func (s *PostService) toggleSaved(ctx context.Context, kind model.SavedKind, actor *model.User, postID string) (*model.ToggleResponse, error) {
	if postID == "" {
		return nil, model.ErrPostIDRequired
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	active, err := s.savedRepo.Toggle(ctx, kind, actor.ID, postID)
	if err != nil {
		return nil, fmt.Errorf("toggle %s: %w", kind, err)
	}

	log.Printf("[PostService] User %s set %s=%t on post %s", actor.ID, kind, active, postID)
	return &model.ToggleResponse{Active: active}, nil
}
