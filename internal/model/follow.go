package model

import (
	"time"
)

// Follow is a directed edge: FollowerID follows FolloweeID.
// One edge backs both the follower's "following" view and the followee's "followers" view.
type Follow struct {
	FollowerID string    `db:"follower_id" json:"follower_id" bson:"followerId"`
	FolloweeID string    `db:"followee_id" json:"followee_id" bson:"followeeId"`
	CreatedAt  time.Time `db:"created_at" json:"created_at" bson:"createdAt"`
}

type FollowListResponse struct {
	Users []UserSummary `json:"users"`
}

// ToggleFollowResponse reports the edge state after a toggle
type ToggleFollowResponse struct {
	Following bool `json:"following"`
}

var (
	ErrCannotFollowSelf = newError(KindValidation, "cannot follow yourself")
)
