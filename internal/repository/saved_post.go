package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"foodgram/internal/model"
)

type savedPostRepository struct {
	db *sqlx.DB
}

func NewSavedPostRepository(db *sqlx.DB) SavedPostRepository {
	return &savedPostRepository{db: db}
}

func (r *savedPostRepository) Toggle(ctx context.Context, kind model.SavedKind, userID, postID string) (bool, error) {
	saved, err := toggleRow(ctx, r.db,
		"saved:"+string(kind)+":"+userID+":"+postID,
		`DELETE FROM saved_posts WHERE kind = $1 AND user_id = $2 AND post_id = $3`,
		`INSERT INTO saved_posts (kind, user_id, post_id) VALUES ($1, $2, $3)
		 ON CONFLICT (kind, user_id, post_id) DO NOTHING`,
		string(kind), userID, postID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to toggle %s: %w", kind, err)
	}
	return saved, nil
}

func (r *savedPostRepository) ListPostIDs(ctx context.Context, kind model.SavedKind, userID string) ([]string, error) {
	query := `SELECT post_id FROM saved_posts WHERE kind = $1 AND user_id = $2 ORDER BY created_at, post_id`
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, string(kind), userID); err != nil {
		return nil, fmt.Errorf("list %s posts: %w", kind, err)
	}
	return ids, nil
}
