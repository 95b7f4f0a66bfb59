package model

import (
	"fmt"
	"strings"
	"time"
)

// Recipe types
const (
	PostTypeSalad     = "Salad"
	PostTypeDessert   = "Dessert"
	PostTypeBreakfast = "Breakfast"
)

// Recipe difficulties
const (
	DifficultyEasy      = "Easy"
	DifficultyModerate  = "Moderate"
	DifficultyDifficult = "Difficult"
)

var validPostTypes = map[string]struct{}{
	PostTypeSalad:     {},
	PostTypeDessert:   {},
	PostTypeBreakfast: {},
}

var validDifficulties = map[string]struct{}{
	DifficultyEasy:      {},
	DifficultyModerate:  {},
	DifficultyDifficult: {},
}

var validAllergies = map[string]struct{}{
	"Gluten":        {},
	"Crustaceans":   {},
	"Eggs":          {},
	"Fish":          {},
	"Peanuts":       {},
	"Soy":           {},
	"Dairy":         {},
	"Nuts in shell": {},
	"Celery":        {},
	"Mustard":       {},
	"Sesame":        {},
	"Sulphites":     {},
	"Lupins":        {},
	"Mollusks":      {},
}

var validUnits = map[string]struct{}{
	"Liter":              {},
	"Milliliters":        {},
	"Kilograms":          {},
	"Grams":              {},
	"Pound":              {},
	"Ounce":              {},
	"Tablespoon":         {},
	"Tablespoon dessert": {},
}

// IsValidPostType reports whether t is a known recipe type
func IsValidPostType(t string) bool {
	_, ok := validPostTypes[t]
	return ok
}

// Post represents a recipe published by a user.
type Post struct {
	ID          string       `db:"id" json:"id" bson:"_id"`
	UserID      string       `db:"user_id" json:"user_id" bson:"userId"`
	MainImage   *string      `db:"main_image" json:"main_image" bson:"mainImage,omitempty"`
	Title       string       `db:"title" json:"title" bson:"title"`
	Type        string       `db:"type" json:"type" bson:"type"`
	Duration    string       `db:"duration" json:"duration" bson:"duration"`
	Difficulty  string       `db:"difficulty" json:"difficulty" bson:"difficulty"`
	Allergies   []string     `db:"-" json:"allergies" bson:"allergies"`
	Description *string      `db:"description" json:"description" bson:"description,omitempty"`
	Ingredients []Ingredient `db:"-" json:"ingredients" bson:"ingredients"`
	Diners      int          `db:"diners" json:"diners" bson:"diners"`
	Steps       []Step       `db:"-" json:"steps" bson:"steps"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at" bson:"updatedAt"`
}

// Ingredient is one line of a recipe's ingredient list
type Ingredient struct {
	Name     string  `json:"name" bson:"name"`
	Quantity float64 `json:"quantity" bson:"quantity"`
	Unity    string  `json:"unity" bson:"unity"`
}

// Step is one ordered preparation step
type Step struct {
	Title       string   `json:"title" bson:"title"`
	Description string   `json:"description" bson:"description"`
	Order       int      `json:"order" bson:"order"`
	Image       []string `json:"image" bson:"image"`
}

// PostDetail is a post with its engagement derived at read time.
// Comments are flat; consumers rebuild the thread from ReplyTo.
type PostDetail struct {
	Post
	Likes    int       `json:"likes"`
	LikedBy  []string  `json:"liked_by"`
	Comments []Comment `json:"comments"`
}

// PostFilter narrows post listings
type PostFilter struct {
	Type string
}

// CreatePostRequest is the request body for creating a recipe.
type CreatePostRequest struct {
	MainImage   *string      `json:"main_image"`
	Title       string       `json:"title"`
	Type        string       `json:"type"`
	Duration    string       `json:"duration"`
	Difficulty  string       `json:"difficulty"`
	Allergies   []string     `json:"allergies"`
	Description *string      `json:"description"`
	Ingredients []Ingredient `json:"ingredients"`
	Diners      *int         `json:"diners"`
	Dinners     *int         `json:"dinners"` // legacy spelling, accepted on input
	Steps       []Step       `json:"steps"`
}

// UpdatePostRequest is a partial recipe update; nil fields are left untouched.
type UpdatePostRequest struct {
	MainImage   *string       `json:"main_image"`
	Title       *string       `json:"title"`
	Type        *string       `json:"type"`
	Duration    *string       `json:"duration"`
	Difficulty  *string       `json:"difficulty"`
	Allergies   *[]string     `json:"allergies"`
	Description *string       `json:"description"`
	Ingredients *[]Ingredient `json:"ingredients"`
	Diners      *int          `json:"diners"`
	Dinners     *int          `json:"dinners"`
	Steps       *[]Step       `json:"steps"`
}

// ToggleResponse reports the relation state after a like/favorite/share toggle
type ToggleResponse struct {
	Active bool `json:"active"`
}

// Post constraints
const (
	MaxPostTitleLength = 200
	PostMediaFolder    = "posts"
	MaxPostMediaSize   = 10 * 1024 * 1024 // 10MB per image
)

// NewPostFromRequest builds an unsaved post from a create request
func NewPostFromRequest(userID string, req CreatePostRequest) *Post {
	p := &Post{
		UserID:      userID,
		MainImage:   req.MainImage,
		Title:       strings.TrimSpace(req.Title),
		Type:        req.Type,
		Duration:    strings.TrimSpace(req.Duration),
		Difficulty:  req.Difficulty,
		Allergies:   req.Allergies,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
	}
	switch {
	case req.Diners != nil:
		p.Diners = *req.Diners
	case req.Dinners != nil:
		p.Diners = *req.Dinners
	}
	normalizePost(p)
	return p
}

// Apply merges a partial update into the post
func (p *Post) Apply(req UpdatePostRequest) {
	if req.MainImage != nil {
		p.MainImage = req.MainImage
	}
	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Type != nil {
		p.Type = *req.Type
	}
	if req.Duration != nil {
		p.Duration = strings.TrimSpace(*req.Duration)
	}
	if req.Difficulty != nil {
		p.Difficulty = *req.Difficulty
	}
	if req.Allergies != nil {
		p.Allergies = *req.Allergies
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Ingredients != nil {
		p.Ingredients = *req.Ingredients
	}
	switch {
	case req.Diners != nil:
		p.Diners = *req.Diners
	case req.Dinners != nil:
		p.Diners = *req.Dinners
	}
	if req.Steps != nil {
		p.Steps = *req.Steps
	}
	normalizePost(p)
}

func normalizePost(p *Post) {
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	if p.Ingredients == nil {
		p.Ingredients = []Ingredient{}
	}
	if p.Steps == nil {
		p.Steps = []Step{}
	}
	for i := range p.Steps {
		if p.Steps[i].Image == nil {
			p.Steps[i].Image = []string{}
		}
	}
}

// Validate checks the recipe fields against the accepted enums
func (p *Post) Validate() error {
	if p.Title == "" || p.Duration == "" {
		return ErrMissingPostFields
	}
	if len(p.Title) > MaxPostTitleLength {
		return ErrTitleTooLong
	}
	if p.Type != "" && !IsValidPostType(p.Type) {
		return ValidationError(fmt.Sprintf("invalid post type: %s", p.Type))
	}
	if p.Difficulty != "" {
		if _, ok := validDifficulties[p.Difficulty]; !ok {
			return ValidationError(fmt.Sprintf("invalid difficulty: %s", p.Difficulty))
		}
	}
	for _, a := range p.Allergies {
		if _, ok := validAllergies[a]; !ok {
			return ValidationError(fmt.Sprintf("invalid allergy: %s", a))
		}
	}
	for _, ing := range p.Ingredients {
		if ing.Unity == "" {
			continue
		}
		if _, ok := validUnits[ing.Unity]; !ok {
			return ValidationError(fmt.Sprintf("invalid unity: %s", ing.Unity))
		}
	}
	if p.Diners < 0 {
		return ErrInvalidDiners
	}
	return nil
}

// Post errors
var (
	ErrPostNotFound      = newError(KindNotFound, "post not found")
	ErrPostIDRequired    = newError(KindValidation, "post id is required")
	ErrMissingPostFields = newError(KindValidation, "title and duration are required")
	ErrTitleTooLong      = newError(KindValidation, "title too long")
	ErrInvalidDiners     = newError(KindValidation, "diners must not be negative")
	ErrInvalidPostType   = newError(KindValidation, "invalid post type")

	// ErrNotPostOwner is returned when someone other than the author mutates a post
	ErrNotPostOwner = newError(KindAuth, "not the owner of this post")
)
