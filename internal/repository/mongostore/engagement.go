package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"foodgram/internal/model"
)

type likeRepository struct {
	c *collections
}

// maxToggleAttempts bounds how often a like toggle retries after losing an
// insert race.
const maxToggleAttempts = 5

// Toggle deletes the like if present, inserts it otherwise. Losing an insert
// race to the unique (postId, userId) index means another toggle liked the
// post first; the retry then sees that like and removes it, so every call
// flips the state exactly once.
func (r *likeRepository) Toggle(ctx context.Context, postID, userID string) (bool, error) {
	key := bson.M{"postId": postID, "userId": userID}

	for attempt := 1; attempt <= maxToggleAttempts; attempt++ {
		res, err := r.c.likes.DeleteOne(ctx, key)
		if err != nil {
			return false, fmt.Errorf("delete like: %w", err)
		}
		if res.DeletedCount > 0 {
			return false, nil
		}

		like := model.Like{PostID: postID, UserID: userID, CreatedAt: time.Now().UTC()}
		_, err = r.c.likes.InsertOne(ctx, like)
		if err == nil {
			return true, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return false, fmt.Errorf("insert like: %w", err)
		}
	}
	return false, fmt.Errorf("toggle like on post %s: still contended after %d attempts", postID, maxToggleAttempts)
}

func (r *likeRepository) ListByPost(ctx context.Context, postID string) ([]model.Like, error) {
	likes, err := findAll[model.Like](ctx, r.c.likes, bson.M{"postId": postID},
		orderedBy("createdAt", 1))
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	return likes, nil
}

func (r *likeRepository) ListByPosts(ctx context.Context, postIDs []string) ([]model.Like, error) {
	if len(postIDs) == 0 {
		return []model.Like{}, nil
	}
	likes, err := findAll[model.Like](ctx, r.c.likes, bson.M{"postId": bson.M{"$in": postIDs}})
	if err != nil {
		return nil, fmt.Errorf("list likes by posts: %w", err)
	}
	return likes, nil
}

type savedPostRepository struct {
	c *collections
}

func savedField(kind model.SavedKind) (string, error) {
	switch kind {
	case model.SavedFavorite:
		return "favPosts", nil
	case model.SavedShare:
		return "sharedPosts", nil
	}
	return "", model.ValidationError("unknown saved kind: " + string(kind))
}

// Toggle pulls postID from the user's array if present, pushes it otherwise.
// Both updates are conditional on the array content; a push that finds the
// post already there lost a race and retries as a pull, like the like toggle.
func (r *savedPostRepository) Toggle(ctx context.Context, kind model.SavedKind, userID, postID string) (bool, error) {
	field, err := savedField(kind)
	if err != nil {
		return false, err
	}

	for attempt := 1; attempt <= maxToggleAttempts; attempt++ {
		res, err := r.c.users.UpdateOne(ctx,
			bson.M{"_id": userID, field: postID},
			bson.M{"$pull": bson.M{field: postID}},
		)
		if err != nil {
			return false, fmt.Errorf("pull %s: %w", field, err)
		}
		if res.ModifiedCount > 0 {
			return false, nil
		}

		res, err = r.c.users.UpdateOne(ctx,
			bson.M{"_id": userID, field: bson.M{"$ne": postID}},
			bson.M{"$push": bson.M{field: postID}},
		)
		if err != nil {
			return false, fmt.Errorf("push %s: %w", field, err)
		}
		if res.MatchedCount > 0 {
			return true, nil
		}

		n, err := r.c.users.CountDocuments(ctx, bson.M{"_id": userID})
		if err != nil {
			return false, fmt.Errorf("check user exists: %w", err)
		}
		if n == 0 {
			return false, model.ErrUserNotFound
		}
	}
	return false, fmt.Errorf("toggle %s on post %s: still contended after %d attempts", field, postID, maxToggleAttempts)
}

type savedDoc struct {
	FavPosts    []string `bson:"favPosts"`
	SharedPosts []string `bson:"sharedPosts"`
}

func (r *savedPostRepository) ListPostIDs(ctx context.Context, kind model.SavedKind, userID string) ([]string, error) {
	if _, err := savedField(kind); err != nil {
		return nil, err
	}
	var doc savedDoc
	err := r.c.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load saved posts: %w", err)
	}

	if kind == model.SavedFavorite {
		return append([]string{}, doc.FavPosts...), nil
	}
	return append([]string{}, doc.SharedPosts...), nil
}

type commentRepository struct {
	c *collections
}

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	c.CreatedAt = time.Now().UTC()
	if _, err := r.c.comments.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*model.Comment, error) {
	var c model.Comment
	err := r.c.comments.FindOne(ctx, bson.M{"_id": commentID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	comments, err := findAll[model.Comment](ctx, r.c.comments, bson.M{"postId": postID}, orderedBy("createdAt", 1))
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Delete removes the comment and its reply subtree in one transaction
func (r *commentRepository) Delete(ctx context.Context, commentID, userID string) (bool, error) {
	return withTransaction(ctx, r.c.client, func(ctx context.Context) (bool, error) {
		existing, err := r.GetByID(ctx, commentID)
		if err != nil {
			return false, err
		}
		if existing.UserID != userID {
			return false, model.ErrNotCommentOwner
		}

		ids, err := descendantComments(ctx, r.c.comments, []string{commentID})
		if err != nil {
			return false, err
		}
		ids = append(ids, commentID)
		if _, err := r.c.comments.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
			return false, fmt.Errorf("delete comments: %w", err)
		}
		return true, nil
	})
}
