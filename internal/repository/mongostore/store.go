// Package mongostore implements the repository interfaces on MongoDB.
// Users documents carry their following, followers, favPosts and sharedPosts
// arrays. Multi-document writes run in transactions, which need a replica set.
package mongostore

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"foodgram/internal/repository"
)

// Collection names
const (
	usersCollection         = "users"
	postsCollection         = "posts"
	likesCollection         = "likes"
	commentsCollection      = "comments"
	refreshTokensCollection = "refresh_tokens"
)

type collections struct {
	client   *mongo.Client
	users    *mongo.Collection
	posts    *mongo.Collection
	likes    *mongo.Collection
	comments *mongo.Collection
	tokens   *mongo.Collection
}

// NewStore wires every repository against one database
func NewStore(db *mongo.Database) *repository.Store {
	c := &collections{
		client:   db.Client(),
		users:    db.Collection(usersCollection),
		posts:    db.Collection(postsCollection),
		likes:    db.Collection(likesCollection),
		comments: db.Collection(commentsCollection),
		tokens:   db.Collection(refreshTokensCollection),
	}

	return &repository.Store{
		Users:         &userRepository{c},
		Follows:       &followRepository{c},
		Posts:         &postRepository{c},
		Likes:         &likeRepository{c},
		SavedPosts:    &savedPostRepository{c},
		Comments:      &commentRepository{c},
		RefreshTokens: &refreshTokenRepository{c},
	}
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
// The likes (postId, userId) index is what keeps a like unique per pair.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_username")},
		},
		postsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		likesCollection: {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_post_user")},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "replyTo", Value: 1}}},
		},
		refreshTokensCollection: {
			{Keys: bson.D{{Key: "tokenHash", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_token_hash")},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
	}

	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	log.Println("[Mongo] Indexes ensured")
	return nil
}

// withTransaction runs fn in a session transaction and returns its result
func withTransaction[T any](ctx context.Context, client *mongo.Client, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	session, err := client.StartSession()
	if err != nil {
		return zero, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...options.Lister[options.FindOptions]) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func orderedBy(field string, dir int) *options.FindOptionsBuilder {
	return options.Find().SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}})
}

// descendantComments returns ids of every comment below roots, roots excluded
func descendantComments(ctx context.Context, comments *mongo.Collection, roots []string) ([]string, error) {
	var all []string
	frontier := roots
	for len(frontier) > 0 {
		children, err := findAll[idDoc](ctx, comments, bson.M{"replyTo": bson.M{"$in": frontier}})
		if err != nil {
			return nil, fmt.Errorf("find replies: %w", err)
		}
		frontier = frontier[:0:0]
		for _, c := range children {
			all = append(all, c.ID)
			frontier = append(frontier, c.ID)
		}
	}
	return all, nil
}

// removePosts deletes posts with their likes, comments and saved references
func removePosts(ctx context.Context, c *collections, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	in := bson.M{"$in": postIDs}
	if _, err := c.likes.DeleteMany(ctx, bson.M{"postId": in}); err != nil {
		return fmt.Errorf("delete likes: %w", err)
	}
	if _, err := c.comments.DeleteMany(ctx, bson.M{"postId": in}); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	_, err := c.users.UpdateMany(ctx,
		bson.M{"$or": bson.A{bson.M{"favPosts": in}, bson.M{"sharedPosts": in}}},
		bson.M{"$pull": bson.M{"favPosts": in, "sharedPosts": in}},
	)
	if err != nil {
		return fmt.Errorf("pull saved posts: %w", err)
	}
	if _, err := c.posts.DeleteMany(ctx, bson.M{"_id": in}); err != nil {
		return fmt.Errorf("delete posts: %w", err)
	}
	return nil
}

type idDoc struct {
	ID string `bson:"_id"`
}
