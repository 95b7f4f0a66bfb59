package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"foodgram/internal/model"
)

const postColumns = `id, user_id, main_image, title, type, duration, difficulty, allergies,
	description, ingredients, diners, steps, created_at, updated_at`

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postRow is the posts table shape; list fields are stored as TEXT[] and JSONB.
type postRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	MainImage   *string        `db:"main_image"`
	Title       string         `db:"title"`
	Type        string         `db:"type"`
	Duration    string         `db:"duration"`
	Difficulty  string         `db:"difficulty"`
	Allergies   pq.StringArray `db:"allergies"`
	Description *string        `db:"description"`
	Ingredients []byte         `db:"ingredients"`
	Diners      int            `db:"diners"`
	Steps       []byte         `db:"steps"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (row postRow) toModel() (model.Post, error) {
	p := model.Post{
		ID:          row.ID,
		UserID:      row.UserID,
		MainImage:   row.MainImage,
		Title:       row.Title,
		Type:        row.Type,
		Duration:    row.Duration,
		Difficulty:  row.Difficulty,
		Allergies:   []string(row.Allergies),
		Description: row.Description,
		Diners:      row.Diners,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	if err := json.Unmarshal(row.Ingredients, &p.Ingredients); err != nil {
		return p, fmt.Errorf("decode ingredients of post %s: %w", row.ID, err)
	}
	if err := json.Unmarshal(row.Steps, &p.Steps); err != nil {
		return p, fmt.Errorf("decode steps of post %s: %w", row.ID, err)
	}
	return p, nil
}

func encodeRecipeLists(p *model.Post) (ingredients, steps []byte, err error) {
	ingredients, err = json.Marshal(p.Ingredients)
	if err != nil {
		return nil, nil, fmt.Errorf("encode ingredients: %w", err)
	}
	steps, err = json.Marshal(p.Steps)
	if err != nil {
		return nil, nil, fmt.Errorf("encode steps: %w", err)
	}
	return ingredients, steps, nil
}

func (r *postRepository) selectPosts(ctx context.Context, query string, args ...interface{}) ([]model.Post, error) {
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	posts := make([]model.Post, 0, len(rows))
	for _, row := range rows {
		p, err := row.toModel()
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// Create inserts a new post; ID is assigned by the caller.
func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	ingredients, steps, err := encodeRecipeLists(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO posts (id, user_id, main_image, title, type, duration, difficulty, allergies,
		                   description, ingredients, diners, steps)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRowxContext(ctx, query,
		p.ID, p.UserID, p.MainImage, p.Title, p.Type, p.Duration, p.Difficulty,
		pq.Array(p.Allergies), p.Description, ingredients, p.Diners, steps,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a single post.
func (r *postRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	var row postRow
	err := r.db.GetContext(ctx, &row, `SELECT `+postColumns+` FROM posts WHERE id = $1`, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	p, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByIDs retrieves multiple posts in the order of postIDs.
func (r *postRepository) GetByIDs(ctx context.Context, postIDs []string) ([]model.Post, error) {
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}

	posts, err := r.selectPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ANY($1)`, pq.Array(postIDs))
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
	var (
		posts []model.Post
		err   error
	)
	if filter.Type != "" {
		posts, err = r.selectPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE type = $1 ORDER BY created_at DESC, id`, filter.Type)
	} else {
		posts, err = r.selectPosts(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id`)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) ListByAuthors(ctx context.Context, userIDs []string) ([]model.Post, error) {
	if len(userIDs) == 0 {
		return []model.Post{}, nil
	}
	posts, err := r.selectPosts(ctx,
		`SELECT `+postColumns+` FROM posts WHERE user_id = ANY($1) ORDER BY created_at DESC, id`,
		pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("list posts by authors: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	ingredients, steps, err := encodeRecipeLists(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE posts
		SET main_image = $3, title = $4, type = $5, duration = $6, difficulty = $7, allergies = $8,
		    description = $9, ingredients = $10, diners = $11, steps = $12, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`
	err = r.db.QueryRowxContext(ctx, query,
		p.ID, p.UserID, p.MainImage, p.Title, p.Type, p.Duration, p.Difficulty,
		pq.Array(p.Allergies), p.Description, ingredients, p.Diners, steps,
	).Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return r.missingOrForeign(ctx, p.ID)
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post owned by userID. Likes, comments and saved entries
// go with it through ON DELETE CASCADE in the same statement.
func (r *postRepository) Delete(ctx context.Context, postID, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return r.missingOrForeign(ctx, postID)
	}
	return nil
}

// missingOrForeign tells apart an absent post from one owned by someone else
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
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}
