package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"foodgram/internal/model"
	"foodgram/internal/queue"
	"foodgram/internal/repository"
)

// UserService handles business logic for user operations
type UserService struct {
	repo       repository.UserRepository
	followRepo repository.FollowRepository
	savedRepo  repository.SavedPostRepository
	postRepo   repository.PostRepository
	publisher  queue.Publisher

	defaultAvatarURL string
	defaultAvatarKey string
}

func NewUserService(store *repository.Store, publisher queue.Publisher) *UserService {
	return &UserService{
		repo:       store.Users,
		followRepo: store.Follows,
		savedRepo:  store.SavedPosts,
		postRepo:   store.Posts,
		publisher:  publisher,
	}
}

// WithDefaultAvatar sets the avatar new accounts start with
func (s *UserService) WithDefaultAvatar(url, key string) *UserService {
	s.defaultAvatarURL = url
	s.defaultAvatarKey = key
	return s
}

// Signup validates the request and creates a new account.
func (s *UserService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.Country = strings.TrimSpace(req.Country)

	if req.Email == "" || req.Password == "" || req.Username == "" || req.FirstName == "" ||
		req.Gender == "" || req.Country == "" {
		return nil, model.ErrMissingSignupFields
	}
	if req.Age <= 0 {
		return nil, model.ErrInvalidAge
	}
	if len(req.FirstName) < model.MinNameLength {
		return nil, model.ErrFirstNameTooShort
	}
	if req.LastName != nil && len(strings.TrimSpace(*req.LastName)) < model.MinNameLength {
		return nil, model.ErrLastNameTooShort
	}
	if !model.IsValidGender(req.Gender) {
		return nil, model.ErrInvalidGender
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	exists, err = s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		PasswordHashed: string(hashedPassword),
		Username:       req.Username,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Age:            req.Age,
		Gender:         req.Gender,
		Biography:      req.Biography,
		Country:        req.Country,
	}
	if s.defaultAvatarURL != "" {
		user.AvatarURL = &s.defaultAvatarURL
	}
	if s.defaultAvatarKey != "" {
		user.AvatarKey = &s.defaultAvatarKey
	}

	// the repository re-checks uniqueness, so a concurrent signup still gets a conflict
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[UserService] Signed up user %s (%s)", user.ID, user.Username)
	publishEngagement(ctx, s.publisher, "UserService", queue.NewUserCreatedEvent(user.ID))
	return s.hydrate(ctx, user)
}

// Login authenticates a user with email and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, model.ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		// Don't reveal whether the email exists or not
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return s.hydrate(ctx, user)
}

// GetByID retrieves a user by ID without relationship sets.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, model.ErrUserIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

// GetProfile returns the user with following, followers, favorites and shares
// filled in, and the favorite posts themselves.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.ProfileResponse, error) {
	if userID == "" {
		return nil, model.ErrUserIDRequired
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user, err = s.hydrate(ctx, user); err != nil {
		return nil, err
	}

	favorites := []model.Post{}
	if len(user.FavPosts) > 0 {
		favorites, err = s.postRepo.GetByIDs(ctx, user.FavPosts)
		if err != nil {
			return nil, fmt.Errorf("get favorite posts: %w", err)
		}
	}

	return &model.ProfileResponse{User: user, FavoritePosts: favorites}, nil
}

// Update applies a partial profile update for actor.
func (s *UserService) Update(ctx context.Context, actor *model.User, req *model.UpdateUserRequest) (*model.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, model.ErrMissingSignupFields
		}
		if email != user.Email {
			exists, err := s.repo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if exists {
				return nil, model.ErrEmailExists
			}
		}
		user.Email = email
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, model.ErrMissingSignupFields
		}
		if username != user.Username {
			exists, err := s.repo.ExistsByUsername(ctx, username)
			if err != nil {
				return nil, fmt.Errorf("failed to check username: %w", err)
			}
			if exists {
				return nil, model.ErrUsernameExists
			}
		}
		user.Username = username
	}
	if req.FirstName != nil {
		firstName := strings.TrimSpace(*req.FirstName)
		if len(firstName) < model.MinNameLength {
			return nil, model.ErrFirstNameTooShort
		}
		user.FirstName = firstName
	}
	if req.LastName != nil {
		lastName := strings.TrimSpace(*req.LastName)
		if len(lastName) < model.MinNameLength {
			return nil, model.ErrLastNameTooShort
		}
		user.LastName = &lastName
	}
	if req.Age != nil {
		if *req.Age <= 0 {
			return nil, model.ErrInvalidAge
		}
		user.Age = *req.Age
	}
	if req.Gender != nil {
		if !model.IsValidGender(*req.Gender) {
			return nil, model.ErrInvalidGender
		}
		user.Gender = *req.Gender
	}
	if req.Biography != nil {
		user.Biography = req.Biography
	}
	if req.Country != nil {
		country := strings.TrimSpace(*req.Country)
		if country == "" {
			return nil, model.ErrMissingSignupFields
		}
		user.Country = country
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[UserService] User %s updated their profile", user.ID)
	publishEngagement(ctx, s.publisher, "UserService", queue.NewUserUpdatedEvent(user.ID))
	return s.hydrate(ctx, user)
}

// UpdateAvatar points actor's avatar at an uploaded object. It returns the
// key of the replaced avatar so the caller can remove it from storage.
func (s *UserService) UpdateAvatar(ctx context.Context, actor *model.User, upload *model.UploadResult) (*model.User, string, error) {
	if err := requireActor(actor); err != nil {
		return nil, "", err
	}

	user, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, "", err
	}

	previousKey := ""
	if user.AvatarKey != nil && *user.AvatarKey != s.defaultAvatarKey {
		previousKey = *user.AvatarKey
	}

	user.AvatarURL = &upload.URL
	user.AvatarKey = &upload.Key
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, "", err
	}
	publishEngagement(ctx, s.publisher, "UserService", queue.NewUserUpdatedEvent(user.ID))

	hydrated, err := s.hydrate(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return hydrated, previousKey, nil
}

// Delete removes the account with everything it owns. Users can only delete themselves.
func (s *UserService) Delete(ctx context.Context, actor *model.User, userID string) error {
	if userID == "" {
		return model.ErrUserIDRequired
	}
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.ID != userID {
		return model.ErrNotProfileOwner
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	log.Printf("[UserService] Deleted user %s", userID)
	publishEngagement(ctx, s.publisher, "UserService", queue.NewUserDeletedEvent(userID))
	return nil
}

// hydrate fills the relationship sets the relational store keeps outside the users table.
func (s *UserService) hydrate(ctx context.Context, user *model.User) (*model.User, error) {
	var err error

	if user.Following, err = s.followRepo.GetFollowingIDs(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("get following: %w", err)
	}
	if user.Followers, err = s.followRepo.GetFollowerIDs(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("get followers: %w", err)
	}
	if user.FavPosts, err = s.savedRepo.ListPostIDs(ctx, model.SavedFavorite, user.ID); err != nil {
		return nil, fmt.Errorf("get favorites: %w", err)
	}
	if user.SharedPosts, err = s.savedRepo.ListPostIDs(ctx, model.SavedShare, user.ID); err != nil {
		return nil, fmt.Errorf("get shared posts: %w", err)
	}

	return user, nil
}
