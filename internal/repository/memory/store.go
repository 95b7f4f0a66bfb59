// Package memory is an in-process implementation of the repository interfaces.
// It backs STORE_DRIVER=memory and the service and handler tests.
package memory

import (
	"sync"
	"time"

	"foodgram/internal/model"
	"foodgram/internal/repository"
)

// state is shared by every repository of one store. A single lock covers all
// collections, so multi-collection writes (cascades, follow edges) are atomic.
type state struct {
	mu sync.RWMutex

	users     map[string]*model.User
	userOrder []string

	// following keeps follow order; followers is its inverse
	following map[string][]string
	followers map[string][]string

	posts     map[string]*model.Post
	postOrder []string

	likes []model.Like

	saved map[model.SavedKind]map[string][]string

	comments     map[string]*model.Comment
	commentOrder []string

	tokens map[string]*model.RefreshToken

	now func() time.Time
}

// NewStore returns an empty store
func NewStore() *repository.Store {
	s := &state{
		users:     make(map[string]*model.User),
		following: make(map[string][]string),
		followers: make(map[string][]string),
		posts:     make(map[string]*model.Post),
		saved: map[model.SavedKind]map[string][]string{
			model.SavedFavorite: {},
			model.SavedShare:    {},
		},
		comments: make(map[string]*model.Comment),
		tokens:   make(map[string]*model.RefreshToken),
		now:      time.Now,
	}

	return &repository.Store{
		Users:         &userRepository{s},
		Follows:       &followRepository{s},
		Posts:         &postRepository{s},
		Likes:         &likeRepository{s},
		SavedPosts:    &savedPostRepository{s},
		Comments:      &commentRepository{s},
		RefreshTokens: &refreshTokenRepository{s},
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func removeID(ids []string, id string) []string {
	if i := indexOf(ids, id); i >= 0 {
		return append(ids[:i:i], ids[i+1:]...)
	}
	return ids
}

func cloneIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// removePostLocked drops a post and everything hanging off it
func (s *state) removePostLocked(postID string) {
	delete(s.posts, postID)
	s.postOrder = removeID(s.postOrder, postID)

	kept := s.likes[:0]
	for _, l := range s.likes {
		if l.PostID != postID {
			kept = append(kept, l)
		}
	}
	s.likes = kept

	for _, byUser := range s.saved {
		for userID, ids := range byUser {
			byUser[userID] = removeID(ids, postID)
		}
	}

	for _, id := range cloneIDs(s.commentOrder) {
		if c, ok := s.comments[id]; ok && c.PostID == postID {
			s.removeCommentLocked(id)
		}
	}
}

// removeCommentLocked drops a comment and its replies, depth first
func (s *state) removeCommentLocked(commentID string) {
	if _, ok := s.comments[commentID]; !ok {
		return
	}
	for _, id := range cloneIDs(s.commentOrder) {
		if c, ok := s.comments[id]; ok && c.ReplyTo != nil && *c.ReplyTo == commentID {
			s.removeCommentLocked(id)
		}
	}
	delete(s.comments, commentID)
	s.commentOrder = removeID(s.commentOrder, commentID)
}
