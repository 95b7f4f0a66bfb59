package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"foodgram/internal/model"
)

type followRepository struct {
	c *collections
}

// Toggle flips followee in the follower's following array and the follower in
// the followee's followers array inside one transaction. Each write is
// conditional on the current array content, so a retried transaction never
// appends twice.
func (r *followRepository) Toggle(ctx context.Context, followerID, followeeID string) (bool, error) {
	following, err := withTransaction(ctx, r.c.client, func(ctx context.Context) (bool, error) {
		res, err := r.c.users.UpdateOne(ctx,
			bson.M{"_id": followerID, "following": followeeID},
			bson.M{"$pull": bson.M{"following": followeeID}},
		)
		if err != nil {
			return false, fmt.Errorf("pull following: %w", err)
		}
		if res.ModifiedCount > 0 {
			if _, err := r.c.users.UpdateOne(ctx,
				bson.M{"_id": followeeID},
				bson.M{"$pull": bson.M{"followers": followerID}},
			); err != nil {
				return false, fmt.Errorf("pull follower: %w", err)
			}
			return false, nil
		}

		res, err = r.c.users.UpdateOne(ctx,
			bson.M{"_id": followerID, "following": bson.M{"$ne": followeeID}},
			bson.M{"$push": bson.M{"following": followeeID}},
		)
		if err != nil {
			return false, fmt.Errorf("push following: %w", err)
		}
		if res.MatchedCount == 0 {
			return false, model.ErrUserNotFound
		}

		res, err = r.c.users.UpdateOne(ctx,
			bson.M{"_id": followeeID},
			bson.M{"$addToSet": bson.M{"followers": followerID}},
		)
		if err != nil {
			return false, fmt.Errorf("push follower: %w", err)
		}
		if res.MatchedCount == 0 {
			return false, model.ErrUserNotFound
		}
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return following, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	n, err := r.c.users.CountDocuments(ctx, bson.M{"_id": followerID, "following": followeeID})
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return n > 0, nil
}

type relationDoc struct {
	Following []string `bson:"following"`
	Followers []string `bson:"followers"`
}

func (r *followRepository) relations(ctx context.Context, userID string) (relationDoc, error) {
	var doc relationDoc
	err := r.c.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("failed to load relations: %w", err)
	}
	return doc, nil
}

func (r *followRepository) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	doc, err := r.relations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append([]string{}, doc.Followers...), nil
}

func (r *followRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	doc, err := r.relations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append([]string{}, doc.Following...), nil
}
