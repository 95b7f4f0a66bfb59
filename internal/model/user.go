package model

import (
	"time"
)

// Genders accepted on signup and profile update
const (
	GenderMale      = "male"
	GenderFemale    = "female"
	GenderNonBinary = "non-binary"
)

var validGenders = map[string]struct{}{
	GenderMale:      {},
	GenderFemale:    {},
	GenderNonBinary: {},
}

// IsValidGender reports whether g is one of the accepted genders
func IsValidGender(g string) bool {
	_, ok := validGenders[g]
	return ok
}

const MinNameLength = 2

// User represents a user in the system.
// The relationship sets are not columns in the relational store; services hydrate
// them from the follow and saved-post repositories.
type User struct {
	ID             string    `db:"id" json:"id" bson:"_id"`
	Email          string    `db:"email" json:"email" bson:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-" bson:"password"` // "-" hides from JSON output
	Username       string    `db:"username" json:"username" bson:"username"`
	FirstName      string    `db:"first_name" json:"first_name" bson:"firstName"`
	LastName       *string   `db:"last_name" json:"last_name" bson:"lastName,omitempty"`
	Age            int       `db:"age" json:"age" bson:"age"`
	Gender         string    `db:"gender" json:"gender" bson:"gender"`
	Biography      *string   `db:"biography" json:"biography" bson:"biography,omitempty"`
	Country        string    `db:"country" json:"country" bson:"country"`
	AvatarURL      *string   `db:"avatar_url" json:"avatar_url" bson:"avatarUrl,omitempty"`
	AvatarKey      *string   `db:"avatar_key" json:"-" bson:"avatarKey,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at" bson:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at" bson:"updatedAt"`

	Following   []string `db:"-" json:"following" bson:"following"`
	Followers   []string `db:"-" json:"followers" bson:"followers"`
	FavPosts    []string `db:"-" json:"fav_posts" bson:"favPosts"`
	SharedPosts []string `db:"-" json:"shared_posts" bson:"sharedPosts"`
}

// Summary returns the public, relationship-free view of the user
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
	}
}

// UserSummary is the lightweight user shape used in lists
type UserSummary struct {
	ID        string  `db:"id" json:"id"`
	Username  string  `db:"username" json:"username"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  *string `db:"last_name" json:"last_name"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url"`
}

// ProfileResponse is a user with its favorite posts populated
type ProfileResponse struct {
	*User
	FavoritePosts []Post `json:"favorite_posts"`
}

// SignupRequest represents the data needed to register a new user
type SignupRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name"`
	Age       int     `json:"age"`
	Gender    string  `json:"gender"`
	Country   string  `json:"country"`
	Biography *string `json:"biography"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is a partial profile update; nil fields are left untouched
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Age       *int    `json:"age"`
	Gender    *string `json:"gender"`
	Biography *string `json:"biography"`
	Country   *string `json:"country"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = newError(KindNotFound, "user not found")

	// ErrEmailExists is returned when attempting to use an email that is already registered
	ErrEmailExists = newError(KindConflict, "email already in use")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = newError(KindConflict, "username already exists")

	ErrMissingSignupFields = newError(KindValidation, "some required fields are missing")
	ErrInvalidAge          = newError(KindValidation, "please provide a valid age")
	ErrFirstNameTooShort   = newError(KindValidation, "first name must be 2 characters or longer")
	ErrLastNameTooShort    = newError(KindValidation, "last name must be 2 characters or longer")
	ErrInvalidGender       = newError(KindValidation, "gender must be one of: male, female, non-binary")
	ErrUserIDRequired      = newError(KindValidation, "user id is required")

	// ErrNotProfileOwner is returned when a user tries to remove someone else's account
	ErrNotProfileOwner = newError(KindAuth, "you don't have permission for this")
)
