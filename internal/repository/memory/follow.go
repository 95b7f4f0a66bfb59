package memory

import (
	"context"

	"foodgram/internal/model"
)

type followRepository struct {
	s *state
}

// Toggle updates the outbound and inbound sets under one lock
func (r *followRepository) Toggle(ctx context.Context, followerID, followeeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[followerID]; !ok {
		return false, model.ErrUserNotFound
	}
	if _, ok := r.s.users[followeeID]; !ok {
		return false, model.ErrUserNotFound
	}

	if indexOf(r.s.following[followerID], followeeID) >= 0 {
		r.s.following[followerID] = removeID(r.s.following[followerID], followeeID)
		r.s.followers[followeeID] = removeID(r.s.followers[followeeID], followerID)
		return false, nil
	}

	r.s.following[followerID] = append(r.s.following[followerID], followeeID)
	r.s.followers[followeeID] = append(r.s.followers[followeeID], followerID)
	return true, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return indexOf(r.s.following[followerID], followeeID) >= 0, nil
}

func (r *followRepository) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return cloneIDs(r.s.followers[userID]), nil
}

func (r *followRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return cloneIDs(r.s.following[userID]), nil
}
