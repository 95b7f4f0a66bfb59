package model

import "time"

// Like is the join record between a post and a user who liked it.
// At most one exists per (PostID, UserID).
type Like struct {
	PostID    string    `db:"post_id" json:"post_id" bson:"postId"`
	UserID    string    `db:"user_id" json:"user_id" bson:"userId"`
	CreatedAt time.Time `db:"created_at" json:"created_at" bson:"createdAt"`
}

// SavedKind names a per-user post set toggled from the post screen
type SavedKind string

const (
	SavedFavorite SavedKind = "favorite"
	SavedShare    SavedKind = "share"
)

// RankedUser is a user with the engagement figures used to order the ranking
type RankedUser struct {
	UserSummary
	PostCount  int `json:"post_count"`
	TotalLikes int `json:"total_likes"`
}

// RankingResponse is the ordered ranking payload
type RankingResponse struct {
	Users []RankedUser `json:"users"`
}
