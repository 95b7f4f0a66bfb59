package memory

import (
	"context"
	"time"

	"foodgram/internal/model"
)

type refreshTokenRepository struct {
	s *state
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	token.CreatedAt = r.s.now()
	stored := *token
	r.s.tokens[token.ID] = &stored
	return nil
}

func (r *refreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, t := range r.s.tokens {
		if t.TokenHash == tokenHash {
			out := *t
			return &out, nil
		}
	}
	return nil, model.ErrRefreshTokenNotFound
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, id string, replacedBy *string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[id]
	if !ok || t.RevokedAt != nil {
		return false, nil
	}
	now := r.s.now()
	t.RevokedAt = &now
	t.ReplacedBy = replacedBy
	return true, nil
}

func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for _, t := range r.s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			revokedAt := now
			t.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cutoff := r.s.now().Add(-olderThan)
	var deleted int64
	for id, t := range r.s.tokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(r.s.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}
