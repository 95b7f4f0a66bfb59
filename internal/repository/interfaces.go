package repository

import (
	"context"
	"time"

	"foodgram/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByIDs preserves the order of ids and skips unknown ones
	GetByIDs(ctx context.Context, ids []string) ([]model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Search matches usernames containing filter (case-insensitive); "" matches everyone
	Search(ctx context.Context, filter string) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	// Delete removes the user with their follow edges, posts, likes, comments and tokens
	Delete(ctx context.Context, id string) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	// Revoke marks an active token revoked. It reports false when the token was
	// already revoked, so concurrent rotations of one token have a single winner.
	Revoke(ctx context.Context, id string, replacedBy *string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type FollowRepository interface {
	// Toggle removes the follower→followee edge if present, inserts it otherwise,
	// as one atomic step. Returns whether the edge exists afterwards.
	Toggle(ctx context.Context, followerID, followeeID string) (bool, error)
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	// GetFollowerIDs returns the users following userID
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
	// GetFollowingIDs returns the users userID follows, in follow order
	GetFollowingIDs(ctx context.Context, userID string) ([]string, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, postID string) (*model.Post, error)
	// GetByIDs preserves the order of postIDs and skips unknown ones
	GetByIDs(ctx context.Context, postIDs []string) ([]model.Post, error)
	// List returns posts newest first
	List(ctx context.Context, filter model.PostFilter) ([]model.Post, error)
	ListByAuthors(ctx context.Context, userIDs []string) ([]model.Post, error)
	// Update rewrites the recipe fields of a post owned by post.UserID
	Update(ctx context.Context, post *model.Post) error
	// Delete removes a post owned by userID together with its likes, comments,
	// favorites and shares
	Delete(ctx context.Context, postID, userID string) error
	Exists(ctx context.Context, postID string) (bool, error)
}

type LikeRepository interface {
	// Toggle deletes the (post, user) like if present, inserts it otherwise.
	// Returns whether the like exists afterwards.
	Toggle(ctx context.Context, postID, userID string) (bool, error)
	// ListByPost returns likes oldest first
	ListByPost(ctx context.Context, postID string) ([]model.Like, error)
	ListByPosts(ctx context.Context, postIDs []string) ([]model.Like, error)
}

type SavedPostRepository interface {
	// Toggle flips postID in the user's favorite or shared set.
	// Returns whether the post is in the set afterwards.
	Toggle(ctx context.Context, kind model.SavedKind, userID, postID string) (bool, error)
	ListPostIDs(ctx context.Context, kind model.SavedKind, userID string) ([]string, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, commentID string) (*model.Comment, error)
	// ListByPost returns the post's comments flat, oldest first
	ListByPost(ctx context.Context, postID string) ([]model.Comment, error)
	// Delete removes a comment authored by userID and every reply below it.
	// Fails with ErrCommentNotFound when the comment does not exist.
	Delete(ctx context.Context, commentID, userID string) (bool, error)
}

// Store bundles the repositories of one backing database
type Store struct {
	Users         UserRepository
	Follows       FollowRepository
	Posts         PostRepository
	Likes         LikeRepository
	SavedPosts    SavedPostRepository
	Comments      CommentRepository
	RefreshTokens RefreshTokenRepository
}
