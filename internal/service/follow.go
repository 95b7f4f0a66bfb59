package service

import (
	"context"
	"fmt"
	"log"

	"foodgram/internal/model"
	"foodgram/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// ToggleFollow follows targetID if actor does not follow them yet, unfollows
// otherwise. Both sides of the edge change in one storage write.
func (s *FollowService) ToggleFollow(ctx context.Context, actor *model.User, targetID string) (*model.ToggleFollowResponse, error) {
	if targetID == "" {
		return nil, model.ErrUserIDRequired
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if actor.ID == targetID {
		return nil, model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	following, err := s.followRepo.Toggle(ctx, actor.ID, targetID)
	if err != nil {
		return nil, fmt.Errorf("toggle follow: %w", err)
	}

	if following {
		log.Printf("[FollowService] User %s followed %s", actor.ID, targetID)
	} else {
		log.Printf("[FollowService] User %s unfollowed %s", actor.ID, targetID)
	}

	return &model.ToggleFollowResponse{Following: following}, nil
}

// ListFollowers returns the users whose following set contains userID.
func (s *FollowService) ListFollowers(ctx context.Context, userID string) (*model.FollowListResponse, error) {
	if userID == "" {
		return nil, model.ErrUserIDRequired
	}

	ids, err := s.followRepo.GetFollowerIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get follower ids: %w", err)
	}
	return s.summaries(ctx, ids)
}

// ListFollowing returns the users userID follows, in follow order.
func (s *FollowService) ListFollowing(ctx context.Context, userID string) (*model.FollowListResponse, error) {
	if userID == "" {
		return nil, model.ErrUserIDRequired
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	ids, err := s.followRepo.GetFollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get following ids: %w", err)
	}
	return s.summaries(ctx, ids)
}

func (s *FollowService) summaries(ctx context.Context, ids []string) (*model.FollowListResponse, error) {
	resp := &model.FollowListResponse{Users: []model.UserSummary{}}
	if len(ids) == 0 {
		return resp, nil
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	for i := range users {
		resp.Users = append(resp.Users, users[i].Summary())
	}
	return resp, nil
}
