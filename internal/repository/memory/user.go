package memory

import (
	"context"
	"strings"

	"foodgram/internal/model"
)

type userRepository struct {
	s *state
}

// copyUser returns a detached copy without relationship sets; services hydrate those.
func copyUser(u *model.User) model.User {
	c := *u
	c.Following, c.Followers, c.FavPosts, c.SharedPosts = nil, nil, nil, nil
	return c
}

func (r *userRepository) conflictLocked(u *model.User) error {
	for _, other := range r.s.users {
		if other.ID == u.ID {
			continue
		}
		if other.Email == u.Email {
			return model.ErrEmailExists
		}
		if other.Username == u.Username {
			return model.ErrUsernameExists
		}
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.conflictLocked(u); err != nil {
		return err
	}
	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now

	stored := copyUser(u)
	r.s.users[u.ID] = &stored
	r.s.userOrder = append(r.s.userOrder, u.ID)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	c := copyUser(u)
	return &c, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			c := copyUser(u)
			return &c, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepository) Search(ctx context.Context, filter string) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	filter = strings.ToLower(filter)
	users := []model.User{}
	for _, id := range r.s.userOrder {
		u := r.s.users[id]
		if strings.Contains(strings.ToLower(u.Username), filter) {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[u.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	if err := r.conflictLocked(u); err != nil {
		return err
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = r.s.now()
	stored := copyUser(u)
	r.s.users[u.ID] = &stored
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return model.ErrUserNotFound
	}

	for _, followee := range r.s.following[id] {
		r.s.followers[followee] = removeID(r.s.followers[followee], id)
	}
	for _, follower := range r.s.followers[id] {
		r.s.following[follower] = removeID(r.s.following[follower], id)
	}
	delete(r.s.following, id)
	delete(r.s.followers, id)

	for _, postID := range cloneIDs(r.s.postOrder) {
		if r.s.posts[postID].UserID == id {
			r.s.removePostLocked(postID)
		}
	}

	kept := r.s.likes[:0]
	for _, l := range r.s.likes {
		if l.UserID != id {
			kept = append(kept, l)
		}
	}
	r.s.likes = kept

	for _, commentID := range cloneIDs(r.s.commentOrder) {
		if c, ok := r.s.comments[commentID]; ok && c.UserID == id {
			r.s.removeCommentLocked(commentID)
		}
	}

	for _, byUser := range r.s.saved {
		delete(byUser, id)
	}

	for tokenID, t := range r.s.tokens {
		if t.UserID == id {
			delete(r.s.tokens, tokenID)
		}
	}

	delete(r.s.users, id)
	r.s.userOrder = removeID(r.s.userOrder, id)
	return nil
}
