package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"foodgram/internal/model"
)

type userRepository struct {
	c *collections
}

func duplicateUserError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	switch {
	case strings.Contains(err.Error(), "email"):
		return model.ErrEmailExists
	case strings.Contains(err.Error(), "username"):
		return model.ErrUsernameExists
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	doc := *u
	// arrays must exist for $push
	doc.Following, doc.Followers, doc.FavPosts, doc.SharedPosts = []string{}, []string{}, []string{}, []string{}

	if _, err := r.c.users.InsertOne(ctx, doc); err != nil {
		if dup := duplicateUserError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var u model.User
	err := r.c.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	users, err := findAll[model.User](ctx, r.c.users, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}

	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}

func (r *userRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.c.users.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return n > 0, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *userRepository) Search(ctx context.Context, filter string) ([]model.User, error) {
	query := bson.M{}
	if filter != "" {
		query["username"] = bson.M{"$regex": regexp.QuoteMeta(filter), "$options": "i"}
	}
	users, err := findAll[model.User](ctx, r.c.users, query, orderedBy("createdAt", 1))
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"email":     u.Email,
		"username":  u.Username,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"age":       u.Age,
		"gender":    u.Gender,
		"biography": u.Biography,
		"country":   u.Country,
		"avatarUrl": u.AvatarURL,
		"avatarKey": u.AvatarKey,
		"updatedAt": u.UpdatedAt,
	}
	res, err := r.c.users.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": set})
	if err != nil {
		if dup := duplicateUserError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	_, err := withTransaction(ctx, r.c.client, func(ctx context.Context) (struct{}, error) {
		res, err := r.c.users.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return struct{}{}, fmt.Errorf("delete user: %w", err)
		}
		if res.DeletedCount == 0 {
			return struct{}{}, model.ErrUserNotFound
		}

		_, err = r.c.users.UpdateMany(ctx,
			bson.M{"$or": bson.A{bson.M{"following": id}, bson.M{"followers": id}}},
			bson.M{"$pull": bson.M{"following": id, "followers": id}},
		)
		if err != nil {
			return struct{}{}, fmt.Errorf("pull follow edges: %w", err)
		}

		posts, err := findAll[idDoc](ctx, r.c.posts, bson.M{"userId": id})
		if err != nil {
			return struct{}{}, fmt.Errorf("find posts: %w", err)
		}
		postIDs := make([]string, 0, len(posts))
		for _, p := range posts {
			postIDs = append(postIDs, p.ID)
		}
		if err := removePosts(ctx, r.c, postIDs); err != nil {
			return struct{}{}, err
		}

		if _, err := r.c.likes.DeleteMany(ctx, bson.M{"userId": id}); err != nil {
			return struct{}{}, fmt.Errorf("delete likes: %w", err)
		}

		own, err := findAll[idDoc](ctx, r.c.comments, bson.M{"userId": id})
		if err != nil {
			return struct{}{}, fmt.Errorf("find comments: %w", err)
		}
		commentIDs := make([]string, 0, len(own))
		for _, c := range own {
			commentIDs = append(commentIDs, c.ID)
		}
		replies, err := descendantComments(ctx, r.c.comments, commentIDs)
		if err != nil {
			return struct{}{}, err
		}
		commentIDs = append(commentIDs, replies...)
		if len(commentIDs) > 0 {
			if _, err := r.c.comments.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": commentIDs}}); err != nil {
				return struct{}{}, fmt.Errorf("delete comments: %w", err)
			}
		}

		if _, err := r.c.tokens.DeleteMany(ctx, bson.M{"userId": id}); err != nil {
			return struct{}{}, fmt.Errorf("delete refresh tokens: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}
