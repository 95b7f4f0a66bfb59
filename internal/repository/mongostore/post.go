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

type postRepository struct {
	c *collections
}

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if _, err := r.c.posts.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	var p model.Post
	err := r.c.posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

func (r *postRepository) GetByIDs(ctx context.Context, postIDs []string) ([]model.Post, error) {
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}
	posts, err := findAll[model.Post](ctx, r.c.posts, bson.M{"_id": bson.M{"$in": postIDs}})
	if err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	postsMap := make(map[string]model.Post, len(posts))
	for _, p := range posts {
		postsMap[p.ID] = p
	}
	ordered := make([]model.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := postsMap[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (r *postRepository) List(ctx context.Context, filter model.PostFilter) ([]model.Post, error) {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	posts, err := findAll[model.Post](ctx, r.c.posts, query, orderedBy("createdAt", -1))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) ListByAuthors(ctx context.Context, userIDs []string) ([]model.Post, error) {
	if len(userIDs) == 0 {
		return []model.Post{}, nil
	}
	posts, err := findAll[model.Post](ctx, r.c.posts, bson.M{"userId": bson.M{"$in": userIDs}}, orderedBy("createdAt", -1))
	if err != nil {
		return nil, fmt.Errorf("list posts by authors: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	p.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"mainImage":   p.MainImage,
		"title":       p.Title,
		"type":        p.Type,
		"duration":    p.Duration,
		"difficulty":  p.Difficulty,
		"allergies":   p.Allergies,
		"description": p.Description,
		"ingredients": p.Ingredients,
		"diners":      p.Diners,
		"steps":       p.Steps,
		"updatedAt":   p.UpdatedAt,
	}
	res, err := r.c.posts.UpdateOne(ctx, bson.M{"_id": p.ID, "userId": p.UserID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missingOrForeign(ctx, p.ID)
	}
	return nil
}

// Delete removes the post and its likes, comments and saved references in one transaction
func (r *postRepository) Delete(ctx context.Context, postID, userID string) error {
	_, err := withTransaction(ctx, r.c.client, func(ctx context.Context) (struct{}, error) {
		n, err := r.c.posts.CountDocuments(ctx, bson.M{"_id": postID, "userId": userID})
		if err != nil {
			return struct{}{}, fmt.Errorf("check post owner: %w", err)
		}
		if n == 0 {
			return struct{}{}, r.missingOrForeign(ctx, postID)
		}
		return struct{}{}, removePosts(ctx, r.c, []string{postID})
	})
	return err
}

func (r *postRepository) missingOrForeign(ctx context.Context, postID string) error {
	exists, err := r.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if exists {
		return model.ErrNotPostOwner
	}
	return model.ErrPostNotFound
}

func (r *postRepository) Exists(ctx context.Context, postID string) (bool, error) {
	n, err := r.c.posts.CountDocuments(ctx, bson.M{"_id": postID})
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return n > 0, nil
}
