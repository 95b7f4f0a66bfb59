package memory

import (
	"context"

	"foodgram/internal/model"
)

type likeRepository struct {
	s *state
}

func (r *likeRepository) Toggle(ctx context.Context, postID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[postID]; !ok {
		return false, model.ErrPostNotFound
	}

	for i, l := range r.s.likes {
		if l.PostID == postID && l.UserID == userID {
			r.s.likes = append(r.s.likes[:i:i], r.s.likes[i+1:]...)
			return false, nil
		}
	}
	r.s.likes = append(r.s.likes, model.Like{PostID: postID, UserID: userID, CreatedAt: r.s.now()})
	return true, nil
}

func (r *likeRepository) ListByPost(ctx context.Context, postID string) ([]model.Like, error) {
	return r.ListByPosts(ctx, []string{postID})
}

func (r *likeRepository) ListByPosts(ctx context.Context, postIDs []string) ([]model.Like, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = struct{}{}
	}
	likes := []model.Like{}
	for _, l := range r.s.likes {
		if _, ok := wanted[l.PostID]; ok {
			likes = append(likes, l)
		}
	}
	return likes, nil
}

type savedPostRepository struct {
	s *state
}

func (r *savedPostRepository) Toggle(ctx context.Context, kind model.SavedKind, userID, postID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	byUser, ok := r.s.saved[kind]
	if !ok {
		return false, model.ValidationError("unknown saved kind: " + string(kind))
	}
	if _, ok := r.s.posts[postID]; !ok {
		return false, model.ErrPostNotFound
	}

	ids := byUser[userID]
	if indexOf(ids, postID) >= 0 {
		byUser[userID] = removeID(ids, postID)
		return false, nil
	}
	byUser[userID] = append(ids, postID)
	return true, nil
}

func (r *savedPostRepository) ListPostIDs(ctx context.Context, kind model.SavedKind, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return cloneIDs(r.s.saved[kind][userID]), nil
}

type commentRepository struct {
	s *state
}

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[c.PostID]; !ok {
		return model.ErrPostNotFound
	}
	if c.ReplyTo != nil {
		if _, ok := r.s.comments[*c.ReplyTo]; !ok {
			return model.ErrParentCommentNotFound
		}
	}

	c.CreatedAt = r.s.now()
	stored := *c
	stored.Author = nil
	r.s.comments[c.ID] = &stored
	r.s.commentOrder = append(r.s.commentOrder, c.ID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[commentID]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	out := *c
	return &out, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	comments := []model.Comment{}
	for _, id := range r.s.commentOrder {
		if c := r.s.comments[id]; c.PostID == postID {
			comments = append(comments, *c)
		}
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, commentID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.comments[commentID]
	if !ok {
		return false, model.ErrCommentNotFound
	}
	if c.UserID != userID {
		return false, model.ErrNotCommentOwner
	}
	r.s.removeCommentLocked(commentID)
	return true, nil
}
