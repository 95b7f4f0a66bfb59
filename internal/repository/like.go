package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"foodgram/internal/model"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Toggle(ctx context.Context, postID, userID string) (bool, error) {
	liked, err := toggleRow(ctx, r.db,
		"like:"+postID+":"+userID,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`,
		`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, nil
}

func (r *likeRepository) ListByPost(ctx context.Context, postID string) ([]model.Like, error) {
	query := `SELECT post_id, user_id, created_at FROM post_likes WHERE post_id = $1 ORDER BY created_at, user_id`
	likes := []model.Like{}
	if err := r.db.SelectContext(ctx, &likes, query, postID); err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	return likes, nil
}

func (r *likeRepository) ListByPosts(ctx context.Context, postIDs []string) ([]model.Like, error) {
	likes := []model.Like{}
	if len(postIDs) == 0 {
		return likes, nil
	}
	query := `SELECT post_id, user_id, created_at FROM post_likes WHERE post_id = ANY($1)`
	if err := r.db.SelectContext(ctx, &likes, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("list likes by posts: %w", err)
	}
	return likes, nil
}
