package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"foodgram/internal/cache"
	"foodgram/internal/model"
	"foodgram/internal/repository"
)

// RankingService orders users by how many recipes they published and how
// many likes those recipes collected.
type RankingService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	likeRepo repository.LikeRepository
	cache    cache.RankingCache
}

// NewRankingService creates a ranking service. rankingCache may be nil, in
// which case every call aggregates from the store.
func NewRankingService(store *repository.Store, rankingCache cache.RankingCache) *RankingService {
	return &RankingService{
		userRepo: store.Users,
		postRepo: store.Posts,
		likeRepo: store.Likes,
		cache:    rankingCache,
	}
}

// RankUsers returns the users whose username contains filter (all users when
// filter is empty), ordered by post count then total likes, both descending.
// Users tied on both keep their store order.
func (s *RankingService) RankUsers(ctx context.Context, filter string) (*model.RankingResponse, error) {
	filter = strings.TrimSpace(filter)

	if s.cache == nil {
		users, err := s.aggregate(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &model.RankingResponse{Users: users}, nil
	}

	version, err := s.cache.Version(ctx)
	if err != nil {
		log.Printf("[RankingService] Cache unavailable, aggregating: %v", err)
		users, err := s.aggregate(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &model.RankingResponse{Users: users}, nil
	}

	if users, found, err := s.cache.Get(ctx, version, filter); err == nil && found {
		return &model.RankingResponse{Users: users}, nil
	}

	users, err := s.aggregate(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, version, filter, users); err != nil {
		log.Printf("[RankingService] Failed to cache ranking: filter=%q err=%v", filter, err)
	}
	return &model.RankingResponse{Users: users}, nil
}

func (s *RankingService) aggregate(ctx context.Context, filter string) ([]model.RankedUser, error) {
	users, err := s.userRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	ranked := make([]model.RankedUser, len(users))
	if len(users) == 0 {
		return ranked, nil
	}

	index := make(map[string]int, len(users))
	userIDs := make([]string, len(users))
	for i := range users {
		ranked[i] = model.RankedUser{UserSummary: users[i].Summary()}
		index[users[i].ID] = i
		userIDs[i] = users[i].ID
	}

	posts, err := s.postRepo.ListByAuthors(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	authorOf := make(map[string]string, len(posts))
	postIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		if i, ok := index[p.UserID]; ok {
			ranked[i].PostCount++
			authorOf[p.ID] = p.UserID
			postIDs = append(postIDs, p.ID)
		}
	}

	if len(postIDs) > 0 {
		likes, err := s.likeRepo.ListByPosts(ctx, postIDs)
		if err != nil {
			return nil, fmt.Errorf("list likes: %w", err)
		}
		for _, like := range likes {
			if author, ok := authorOf[like.PostID]; ok {
				ranked[index[author]].TotalLikes++
			}
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].PostCount != ranked[b].PostCount {
			return ranked[a].PostCount > ranked[b].PostCount
		}
		return ranked[a].TotalLikes > ranked[b].TotalLikes
	})

	return ranked, nil
}
