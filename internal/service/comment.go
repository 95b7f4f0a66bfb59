package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"foodgram/internal/model"
	"foodgram/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
	}
}

// Create adds a root comment to a post.
func (s *CommentService) Create(ctx context.Context, actor *model.User, postID string, req model.CreateCommentRequest) (*model.Comment, error) {
	if postID == "" {
		return nil, model.ErrPostIDRequired
	}
	return s.create(ctx, actor, postID, nil, req.Comment)
}

// Reply adds a comment whose parent is parentID. The parent must exist and
// belong to the same post.
func (s *CommentService) Reply(ctx context.Context, actor *model.User, postID, parentID string, req model.CreateCommentRequest) (*model.Comment, error) {
	if postID == "" {
		return nil, model.ErrPostIDRequired
	}
	if parentID == "" {
		return nil, model.ErrCommentIDRequired
	}
	return s.create(ctx, actor, postID, &parentID, req.Comment)
}

func (s *CommentService) create(ctx context.Context, actor *model.User, postID string, parentID *string, body string) (*model.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	body, err := model.NormalizeCommentBody(body)
	if err != nil {
		return nil, err
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	if parentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *parentID)
		if err != nil {
			if model.KindOf(err) == model.KindNotFound {
				return nil, model.ErrParentCommentNotFound
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, model.ErrParentCommentNotFound
		}
	}

	comment := &model.Comment{
		ID:      uuid.NewString(),
		PostID:  postID,
		UserID:  actor.ID,
		Comment: body,
		ReplyTo: parentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	author := actor.Summary()
	comment.Author = &author

	if parentID != nil {
		log.Printf("[CommentService] User %s replied to comment %s on post %s", actor.ID, *parentID, postID)
	} else {
		log.Printf("[CommentService] User %s commented on post %s", actor.ID, postID)
	}
	return comment, nil
}

// Delete removes a comment authored by actor together with its replies.
func (s *CommentService) Delete(ctx context.Context, actor *model.User, commentID string) (bool, error) {
	if commentID == "" {
		return false, model.ErrCommentIDRequired
	}
	if err := requireActor(actor); err != nil {
		return false, err
	}

	deleted, err := s.commentRepo.Delete(ctx, commentID, actor.ID)
	if err != nil {
		return false, err
	}

	log.Printf("[CommentService] User %s deleted comment %s", actor.ID, commentID)
	return deleted, nil
}

// List returns every comment of a post, flat and oldest first.
func (s *CommentService) List(ctx context.Context, postID string) (*model.CommentListResponse, error) {
	comments, err := s.listByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &model.CommentListResponse{Comments: comments}, nil
}

// Replies returns the direct replies to a comment.
func (s *CommentService) Replies(ctx context.Context, postID, commentID string) (*model.CommentListResponse, error) {
	if commentID == "" {
		return nil, model.ErrCommentIDRequired
	}

	comments, err := s.listByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	found := false
	for _, c := range comments {
		if c.ID == commentID {
			found = true
			break
		}
	}
	if !found {
		return nil, model.ErrCommentNotFound
	}

	return &model.CommentListResponse{Comments: model.ChildrenOf(comments, commentID)}, nil
}

func (s *CommentService) listByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	if postID == "" {
		return nil, model.ErrPostIDRequired
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	attachAuthors(ctx, s.userRepo, comments)
	return comments, nil
}

// attachAuthors fills Author on each comment with one batch lookup.
// Lookup failures leave the authors empty rather than failing the read.
func attachAuthors(ctx context.Context, users repository.UserRepository, comments []model.Comment) {
	if len(comments) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(comments))
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.UserID]; !ok {
			seen[c.UserID] = struct{}{}
			ids = append(ids, c.UserID)
		}
	}

	authors, err := users.GetByIDs(ctx, ids)
	if err != nil {
		log.Printf("[CommentService] Failed to load comment authors: %v", err)
		return
	}

	byID := make(map[string]model.UserSummary, len(authors))
	for i := range authors {
		byID[authors[i].ID] = authors[i].Summary()
	}
	for i := range comments {
		if author, ok := byID[comments[i].UserID]; ok {
			comments[i].Author = &author
		}
	}
}
