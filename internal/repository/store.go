package repository

import "github.com/jmoiron/sqlx"

// NewPostgresStore wires every repository against one PostgreSQL pool
func NewPostgresStore(db *sqlx.DB) *Store {
	return &Store{
		Users:         NewUserRepository(db),
		Follows:       NewFollowRepository(db),
		Posts:         NewPostRepository(db),
		Likes:         NewLikeRepository(db),
		SavedPosts:    NewSavedPostRepository(db),
		Comments:      NewCommentRepository(db),
		RefreshTokens: NewRefreshTokenRepository(db),
	}
}
