package model

import (
	"strings"
	"time"
)

// Comment represents a comment on a post. ReplyTo points at the parent comment;
// root comments have none.
type Comment struct {
	ID        string       `db:"id" json:"id" bson:"_id"`
	PostID    string       `db:"post_id" json:"post_id" bson:"postId"`
	UserID    string       `db:"user_id" json:"user_id" bson:"userId"`
	Comment   string       `db:"comment" json:"comment" bson:"comment"`
	ReplyTo   *string      `db:"reply_to" json:"reply_to,omitempty" bson:"replyTo,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"created_at" bson:"createdAt"`
	Author    *UserSummary `db:"-" json:"author,omitempty" bson:"-"` // Joined field
}

// CreateCommentRequest is the request body for creating a comment or a reply.
type CreateCommentRequest struct {
	Comment string `json:"comment"`
}

// CommentListResponse wraps a flat comment list
type CommentListResponse struct {
	Comments []Comment `json:"comments"`
}

// DeleteCommentResponse reports whether a comment was removed
type DeleteCommentResponse struct {
	Deleted bool `json:"deleted"`
}

// ChildrenOf returns the direct replies to parentID, preserving input order.
func ChildrenOf(comments []Comment, parentID string) []Comment {
	children := []Comment{}
	for _, c := range comments {
		if c.ReplyTo != nil && *c.ReplyTo == parentID {
			children = append(children, c)
		}
	}
	return children
}

// NormalizeCommentBody trims the body and enforces the length limit
func NormalizeCommentBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrContentRequired
	}
	if len(body) > MaxCommentLength {
		return "", ErrContentTooLong
	}
	return body, nil
}

// Comment constraints
const (
	MaxCommentLength = 2200
)

// Comment errors
var (
	ErrCommentNotFound       = newError(KindNotFound, "comment not found")
	ErrParentCommentNotFound = newError(KindNotFound, "parent comment not found")
	ErrCommentIDRequired     = newError(KindValidation, "comment id is required")
	ErrNotCommentOwner       = newError(KindAuth, "not the owner of this comment")
	ErrContentRequired       = newError(KindValidation, "comment content is required")
	ErrContentTooLong        = newError(KindValidation, "comment content too long")
)
