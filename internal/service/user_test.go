package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/repository/memory"
)

// =============================================================================
// MOCK REPOSITORY
// =============================================================================
//
// UserService depends on the UserRepository interface, so tests can swap in a
// mock that returns controlled responses. Methods without a custom function
// behave like an empty store.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)

	// Track calls for assertions
	createCalls []createCall
}

type createCall struct {
	User *model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, createCall{User: user})
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	return []model.User{}, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) Search(ctx context.Context, filter string) ([]model.User, error) {
	return []model.User{}, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *model.User) error {
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	return nil
}

// newMockedUserService backs everything but users with the in-memory store.
func newMockedUserService(users repository.UserRepository) *UserService {
	store := memory.NewStore()
	store.Users = users
	return NewUserService(store, nil)
}

func validSignup() *model.SignupRequest {
	return &model.SignupRequest{
		Email:     "Ana@Example.com",
		Password:  "securepassword123",
		Username:  "ana",
		FirstName: "Ana",
		Age:       31,
		Gender:    model.GenderFemale,
		Country:   "Spain",
	}
}

// =============================================================================
// SIGNUP TESTS
// =============================================================================

func TestUserService_Signup_Success(t *testing.T) {
	// ARRANGE
	mockRepo := &mockUserRepository{}
	svc := newMockedUserService(mockRepo).WithDefaultAvatar("https://cdn.example.com/default.jpg", "avatars/default.jpg")
	req := validSignup()

	// ACT
	user, err := svc.Signup(context.Background(), req)

	// ASSERT
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if user.ID == "" {
		t.Error("expected an assigned id")
	}
	if user.Email != "ana@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.AvatarURL == nil || *user.AvatarURL != "https://cdn.example.com/default.jpg" {
		t.Errorf("avatar_url = %v, want default avatar", user.AvatarURL)
	}
	if len(user.Following) != 0 || len(user.Followers) != 0 {
		t.Error("new user should have empty relationship sets")
	}

	// Verify password was hashed (not stored in plain text!)
	if user.PasswordHashed == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		t.Error("password hash should be valid bcrypt hash")
	}

	if len(mockRepo.createCalls) != 1 {
		t.Errorf("Create called %d times, want 1", len(mockRepo.createCalls))
	}
}

func TestUserService_Signup_Validation(t *testing.T) {
	short := "B"
	tests := []struct {
		name   string
		mutate func(req *model.SignupRequest)
		want   error
	}{
		{"missing email", func(r *model.SignupRequest) { r.Email = "  " }, model.ErrMissingSignupFields},
		{"missing password", func(r *model.SignupRequest) { r.Password = "" }, model.ErrMissingSignupFields},
		{"missing country", func(r *model.SignupRequest) { r.Country = "" }, model.ErrMissingSignupFields},
		{"zero age", func(r *model.SignupRequest) { r.Age = 0 }, model.ErrInvalidAge},
		{"short first name", func(r *model.SignupRequest) { r.FirstName = "A" }, model.ErrFirstNameTooShort},
		{"short last name", func(r *model.SignupRequest) { r.LastName = &short }, model.ErrLastNameTooShort},
		{"unknown gender", func(r *model.SignupRequest) { r.Gender = "robot" }, model.ErrInvalidGender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{}
			svc := newMockedUserService(mockRepo)
			req := validSignup()
			tt.mutate(req)

			_, err := svc.Signup(context.Background(), req)

			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if model.KindOf(err) != model.KindValidation {
				t.Errorf("kind = %v, want validation", model.KindOf(err))
			}
			if len(mockRepo.createCalls) != 0 {
				t.Error("Create should not be called for invalid input")
			}
		})
	}
}

func TestUserService_Signup_EmailExists(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := newMockedUserService(mockRepo)

	user, err := svc.Signup(context.Background(), validSignup())

	if !errors.Is(err, model.ErrEmailExists) {
		t.Errorf("error = %v, want %v", err, model.ErrEmailExists)
	}
	if user != nil {
		t.Error("user should be nil when signup fails")
	}
	if len(mockRepo.createCalls) != 0 {
		t.Error("Create should not be called when email exists")
	}
}

func TestUserService_Signup_UsernameExists(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	svc := newMockedUserService(mockRepo)

	_, err := svc.Signup(context.Background(), validSignup())

	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("error = %v, want %v", err, model.ErrUsernameExists)
	}
}

func TestUserService_Signup_CheckEmailError(t *testing.T) {
	dbError := errors.New("database connection failed")
	mockRepo := &mockUserRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return false, dbError
		},
	}
	svc := newMockedUserService(mockRepo)

	_, err := svc.Signup(context.Background(), validSignup())

	// The original error should be wrapped
	if !errors.Is(err, dbError) {
		t.Errorf("error should wrap original database error, got %v", err)
	}
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestUserService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	stored := &model.User{ID: "u1", Email: "ana@example.com", Username: "ana", PasswordHashed: string(hash)}

	mockRepo := &mockUserRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == stored.Email {
				copied := *stored
				return &copied, nil
			}
			return nil, model.ErrUserNotFound
		},
	}
	svc := newMockedUserService(mockRepo)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid credentials", " ANA@example.com ", "correct-password", nil},
		{"wrong password", "ana@example.com", "nope", model.ErrInvalidCredentials},
		{"unknown email", "bob@example.com", "correct-password", model.ErrInvalidCredentials},
		{"empty password", "ana@example.com", "", model.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Login(context.Background(), &model.LoginRequest{Email: tt.email, Password: tt.password})

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && user.ID != "u1" {
				t.Errorf("user id = %q, want u1", user.ID)
			}
		})
	}
}

// =============================================================================
// PROFILE / UPDATE / DELETE TESTS (in-memory store)
// =============================================================================

func TestUserService_GetProfile_HydratesRelationships(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ana := seedUser(t, store, "ana")
	bob := seedUser(t, store, "bob")
	post := seedPost(t, store, bob, "Tomato salad")

	follows := NewFollowService(store.Follows, store.Users)
	posts := NewPostService(store, nil)
	users := NewUserService(store, nil)

	if _, err := follows.ToggleFollow(ctx, ana, bob.ID); err != nil {
		t.Fatalf("ToggleFollow failed: %v", err)
	}
	if _, err := posts.ToggleFavorite(ctx, ana, post.ID); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if _, err := posts.ToggleShare(ctx, ana, post.ID); err != nil {
		t.Fatalf("ToggleShare failed: %v", err)
	}

	profile, err := users.GetProfile(ctx, ana.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}

	if len(profile.Following) != 1 || profile.Following[0] != bob.ID {
		t.Errorf("following = %v, want [%s]", profile.Following, bob.ID)
	}
	if len(profile.FavPosts) != 1 || len(profile.SharedPosts) != 1 {
		t.Errorf("fav=%v shared=%v, want one each", profile.FavPosts, profile.SharedPosts)
	}
	if len(profile.FavoritePosts) != 1 || profile.FavoritePosts[0].Title != "Tomato salad" {
		t.Errorf("favorite posts = %+v", profile.FavoritePosts)
	}

	bobProfile, err := users.GetProfile(ctx, bob.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if len(bobProfile.Followers) != 1 || bobProfile.Followers[0] != ana.ID {
		t.Errorf("followers = %v, want [%s]", bobProfile.Followers, ana.ID)
	}
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ana := seedUser(t, store, "ana")
	seedUser(t, store, "bob")
	users := NewUserService(store, nil)

	taken := "bob"
	if _, err := users.Update(ctx, ana, &model.UpdateUserRequest{Username: &taken}); !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("error = %v, want %v", err, model.ErrUsernameExists)
	}

	gender := "robot"
	if _, err := users.Update(ctx, ana, &model.UpdateUserRequest{Gender: &gender}); !errors.Is(err, model.ErrInvalidGender) {
		t.Errorf("error = %v, want %v", err, model.ErrInvalidGender)
	}

	bio := "I cook"
	country := "Portugal"
	updated, err := users.Update(ctx, ana, &model.UpdateUserRequest{Biography: &bio, Country: &country})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Biography == nil || *updated.Biography != bio || updated.Country != country {
		t.Errorf("unexpected update result: %+v", updated)
	}
}

func TestUserService_Delete_OnlySelf(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ana := seedUser(t, store, "ana")
	bob := seedUser(t, store, "bob")
	users := NewUserService(store, nil)

	err := users.Delete(ctx, bob, ana.ID)
	if !errors.Is(err, model.ErrNotProfileOwner) {
		t.Fatalf("error = %v, want %v", err, model.ErrNotProfileOwner)
	}
	if model.KindOf(err) != model.KindAuth {
		t.Errorf("kind = %v, want auth", model.KindOf(err))
	}

	if err := users.Delete(ctx, ana, ana.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := users.GetByID(ctx, ana.ID); !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrUserNotFound)
	}
}
