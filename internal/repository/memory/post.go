package memory

import (
	"context"

	"foodgram/internal/model"
)

type postRepository struct {
	s *state
}

func copyPost(p *model.Post) model.Post {
	c := *p
	c.Allergies = cloneIDs(p.Allergies)
	c.Ingredients = append([]model.Ingredient{}, p.Ingredients...)
	c.Steps = make([]model.Step, len(p.Steps))
	for i, st := range p.Steps {
		st.Image = cloneIDs(st.Image)
		c.Steps[i] = st
	}
	return c
}

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[p.UserID]; !ok {
		return model.ErrUserNotFound
	}
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now

	stored := copyPost(p)
	r.s.posts[p.ID] = &stored
	r.s.postOrder = append(r.s.postOrder, p.ID)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	c := copyPost(p)
	return &c, nil
}

func (r *postRepository) GetByIDs(ctx context.Context, postIDs []string) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	posts := make([]model.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := r.s.posts[id]; ok {
			posts = append(posts, copyPost(p))
		}
	}
	return posts, nil
}

// newestFirstLocked walks posts in reverse insertion order
func (r *postRepository) newestFirstLocked(keep func(*model.Post) bool) []model.Post {
	posts := []model.Post{}
	for i := len(r.s.postOrder) - 1; i >= 0; i-- {
		p := r.s.posts[r.s.postOrder[i]]
		if keep(p) {
			posts = append(posts, copyPost(p))
		}
	}
	return posts
}

func (r *postRepository) List(ctx context.Context, filter model.PostFilter) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.newestFirstLocked(func(p *model.Post) bool {
		return filter.Type == "" || p.Type == filter.Type
	}), nil
}

func (r *postRepository) ListByAuthors(ctx context.Context, userIDs []string) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	authors := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		authors[id] = struct{}{}
	}
	return r.newestFirstLocked(func(p *model.Post) bool {
		_, ok := authors[p.UserID]
		return ok
	}), nil
}

func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.posts[p.ID]
	if !ok {
		return model.ErrPostNotFound
	}
	if existing.UserID != p.UserID {
		return model.ErrNotPostOwner
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.s.now()
	stored := copyPost(p)
	r.s.posts[p.ID] = &stored
	return nil
}

func (r *postRepository) Delete(ctx context.Context, postID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return model.ErrPostNotFound
	}
	if p.UserID != userID {
		return model.ErrNotPostOwner
	}
	r.s.removePostLocked(postID)
	return nil
}

func (r *postRepository) Exists(ctx context.Context, postID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.posts[postID]
	return ok, nil
}
