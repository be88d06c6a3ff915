package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"sociogram/internal/model"
	"sociogram/internal/repository"
)

// UserService handles business logic for account operations
type UserService struct {
	repo       repository.UserRepository
	friendRepo repository.FriendRepository
}

func NewUserService(repo repository.UserRepository, friendRepo repository.FriendRepository) *UserService {
	return &UserService{
		repo:       repo,
		friendRepo: friendRepo,
	}
}

// Register creates a new account with an empty friend list and optional
// avatar metadata. The returned record never carries the password hash in
// serialized form.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("username is required")
	}

	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
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
		Username:       req.Username,
		PasswordHashed: string(hashedPassword),
		AvatarURL:      req.AvatarURL,
		AvatarKey:      req.AvatarKey,
	}

	if req.DisplayName != "" {
		user.DisplayName = &req.DisplayName
	}
	if req.Location != "" {
		user.Location = &req.Location
	}
	if req.Occupation != "" {
		user.Occupation = &req.Occupation
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user with username and password. Unknown usernames
// and wrong passwords are indistinguishable to the caller; the internal kind
// is logged for observability.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		log.Printf("[UserService] Login rejected: username=%q reason=%v", req.Username, err)
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		log.Printf("[UserService] Login rejected: username=%q reason=password mismatch", req.Username)
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile retrieves a user's profile enriched with the viewer's
// relationship. Viewing someone else's profile bumps their view counter;
// a failed bump never blocks the profile itself.
func (s *UserService) GetProfile(ctx context.Context, userID int64, viewerID *int64) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &model.ProfileResponse{
		User:     user,
		IsFriend: false,
	}

	if viewerID != nil && *viewerID != userID {
		isFriend, err := s.friendRepo.Exists(ctx, *viewerID, userID)
		if err == nil {
			profile.IsFriend = isFriend
		}

		if err := s.repo.IncrementProfileViews(ctx, userID); err != nil {
			log.Printf("[UserService] Failed to bump profile views for user=%d: %v", userID, err)
		}
	}

	return profile, nil
}
