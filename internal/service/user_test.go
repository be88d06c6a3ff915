package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sociogram/internal/model"
)

// =============================================================================
// REGISTER TESTS
// =============================================================================

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return false, nil // Username doesn't exist
		},
		createFn: func(ctx context.Context, user *model.User) error {
			// Simulate database setting ID and timestamps
			user.ID = 1
			user.CreatedAt = time.Now()
			user.UpdatedAt = time.Now()
			return nil
		},
	}
	svc := NewUserService(mockRepo, &mockFriendRepository{})

	req := &model.RegisterRequest{
		Username:    "testuser",
		Password:    "securepassword123",
		DisplayName: "Test User",
		Location:    "Saigon",
		Occupation:  "Engineer",
	}

	user, err := svc.Register(context.Background(), req)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}

	if user.Username != req.Username {
		t.Errorf("username = %q, want %q", user.Username, req.Username)
	}
	if user.DisplayName == nil || *user.DisplayName != req.DisplayName {
		t.Errorf("display_name = %v, want %q", user.DisplayName, req.DisplayName)
	}
	if user.Location == nil || *user.Location != req.Location {
		t.Errorf("location = %v, want %q", user.Location, req.Location)
	}
	if user.FriendCount != 0 {
		t.Errorf("friend_count = %d, want 0 for new account", user.FriendCount)
	}

	// Verify password was hashed (not stored in plain text!)
	if user.PasswordHashed == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password))
	if err != nil {
		t.Error("password hash should be valid bcrypt hash")
	}

	if len(mockRepo.createCalls) != 1 {
		t.Errorf("Create called %d times, want 1", len(mockRepo.createCalls))
	}
}

func TestUserService_Register_UsernameExists(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil // Username already exists
		},
	}
	svc := NewUserService(mockRepo, &mockFriendRepository{})

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "existinguser",
		Password: "password123",
	})

	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("error = %v, want %v", err, model.ErrUsernameExists)
	}
	if user != nil {
		t.Error("user should be nil when registration fails")
	}
	if len(mockRepo.createCalls) != 0 {
		t.Error("Create should not be called when username exists")
	}
}

// Two registrations can pass the pre-insert check before either row lands;
// the repository reports the losing insert as a duplicate and that has to
// reach the caller unchanged.
func TestUserService_Register_DuplicateInsertRace(t *testing.T) {
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			return model.ErrUsernameExists
		},
	}
	svc := NewUserService(mockRepo, &mockFriendRepository{})

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "raceduser",
		Password: "password123",
	})

	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("error = %v, want %v", err, model.ErrUsernameExists)
	}
	if user != nil {
		t.Error("user should be nil when registration fails")
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: "", password: "password123"},
		{name: "blank username", username: "   ", password: "password123"},
		{name: "empty password", username: "testuser", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{}
			svc := NewUserService(mockRepo, &mockFriendRepository{})

			_, err := svc.Register(context.Background(), &model.RegisterRequest{
				Username: tt.username,
				Password: tt.password,
			})

			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if len(mockRepo.createCalls) != 0 {
				t.Error("Create should not be called on validation failure")
			}
		})
	}
}

func TestUserService_Register_WithoutOptionalFields(t *testing.T) {
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			return nil
		},
	}
	svc := NewUserService(mockRepo, &mockFriendRepository{})

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "testuser",
		Password: "password123",
		// DisplayName, Location, Occupation intentionally omitted
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.DisplayName != nil {
		t.Errorf("display_name should be nil when not provided, got %v", user.DisplayName)
	}
	if user.Location != nil || user.Occupation != nil {
		t.Error("location and occupation should be nil when not provided")
	}
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestUserService_Login(t *testing.T) {
	validPassword := "correctpassword"
	validHash, _ := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)

	testUser := &model.User{
		ID:             1,
		Username:       "testuser",
		PasswordHashed: string(validHash),
	}

	tests := []struct {
		name          string
		username      string
		password      string
		mockGetByUser func(ctx context.Context, username string) (*model.User, error)
		wantErr       error
		wantUser      bool
	}{
		{
			name:     "successful login",
			username: "testuser",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
			wantErr:  nil,
			wantUser: true,
		},
		{
			name:     "user not found",
			username: "nonexistent",
			password: "anypassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, model.ErrUserNotFound
			},
			wantErr:  model.ErrInvalidCredentials, // Don't reveal user doesn't exist
			wantUser: false,
		},
		{
			name:     "wrong password",
			username: "testuser",
			password: "wrongpassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
			wantErr:  model.ErrInvalidCredentials,
			wantUser: false,
		},
		{
			name:     "database error",
			username: "testuser",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, errors.New("database error")
			},
			wantErr:  model.ErrInvalidCredentials, // Don't reveal internal errors
			wantUser: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{
				getByUsernameFn: tt.mockGetByUser,
			}
			svc := NewUserService(mockRepo, &mockFriendRepository{})

			user, err := svc.Login(context.Background(), &model.LoginRequest{
				Username: tt.username,
				Password: tt.password,
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.wantUser && user == nil {
				t.Error("expected user, got nil")
			}
			if !tt.wantUser && user != nil {
				t.Error("expected nil user")
			}
		})
	}
}

// Registering an account and logging in with the same credentials must
// round-trip through the stored hash.
func TestUserService_RegisterThenLogin(t *testing.T) {
	var stored *model.User
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			stored = user
			return nil
		},
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if stored != nil && stored.Username == username {
				return stored, nil
			}
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewUserService(mockRepo, &mockFriendRepository{})

	req := &model.RegisterRequest{Username: "roundtrip", Password: "hunter22"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "roundtrip",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Login after register: %v", err)
	}
	if user.ID != 1 {
		t.Errorf("user id = %d, want 1", user.ID)
	}

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Username: "roundtrip",
		Password: "wrong",
	})
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want %v", err, model.ErrInvalidCredentials)
	}
}

// =============================================================================
// PROFILE TESTS
// =============================================================================

func TestUserService_GetProfile(t *testing.T) {
	subject := &model.User{ID: 5, Username: "subject", ViewedProfile: 3}

	tests := []struct {
		name         string
		viewerID     *int64
		isFriend     bool
		wantIsFriend bool
		wantBumps    int
	}{
		{
			name:         "anonymous viewer",
			viewerID:     nil,
			wantIsFriend: false,
			wantBumps:    0,
		},
		{
			name:         "own profile",
			viewerID:     ptrInt64(5),
			wantIsFriend: false,
			wantBumps:    0,
		},
		{
			name:         "friend viewer",
			viewerID:     ptrInt64(9),
			isFriend:     true,
			wantIsFriend: true,
			wantBumps:    1,
		},
		{
			name:         "stranger viewer",
			viewerID:     ptrInt64(9),
			isFriend:     false,
			wantIsFriend: false,
			wantBumps:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{
				getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
					if id == subject.ID {
						return subject, nil
					}
					return nil, model.ErrUserNotFound
				},
			}
			mockFriends := &mockFriendRepository{
				existsFn: func(ctx context.Context, userID, friendID int64) (bool, error) {
					return tt.isFriend, nil
				},
			}
			svc := NewUserService(mockRepo, mockFriends)

			profile, err := svc.GetProfile(context.Background(), subject.ID, tt.viewerID)
			if err != nil {
				t.Fatalf("GetProfile: %v", err)
			}

			if profile.IsFriend != tt.wantIsFriend {
				t.Errorf("is_friend = %v, want %v", profile.IsFriend, tt.wantIsFriend)
			}
			if len(mockRepo.profileViewBumps) != tt.wantBumps {
				t.Errorf("profile view bumps = %d, want %d", len(mockRepo.profileViewBumps), tt.wantBumps)
			}
		})
	}
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	mockRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewUserService(mockRepo, &mockFriendRepository{})

	_, err := svc.GetProfile(context.Background(), 404, nil)
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrUserNotFound)
	}
}

func ptrInt64(v int64) *int64 { return &v }
