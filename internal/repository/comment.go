package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"foodgram/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment; ID is assigned by the caller.
func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO post_comments (id, post_id, user_id, comment, reply_to)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowxContext(ctx, query, c.ID, c.PostID, c.UserID, c.Comment, c.ReplyTo).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*model.Comment, error) {
	query := `SELECT id, post_id, user_id, comment, reply_to, created_at FROM post_comments WHERE id = $1`
	var c model.Comment
	err := r.db.GetContext(ctx, &c, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	query := `
		SELECT id, post_id, user_id, comment, reply_to, created_at
		FROM post_comments
		WHERE post_id = $1
		ORDER BY created_at, id
	`
	comments := []model.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Delete removes a comment owned by userID; replies go through ON DELETE CASCADE.
func (r *commentRepository) Delete(ctx context.Context, commentID, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM post_comments WHERE id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM post_comments WHERE id = $1)`, commentID); err != nil {
		return false, fmt.Errorf("check comment exists: %w", err)
	}
	if exists {
		return false, model.ErrNotCommentOwner
	}
	return false, model.ErrCommentNotFound
}
