package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taskloop/taskloop-go/internal/avatar"
	"github.com/taskloop/taskloop-go/internal/crypto"
	"github.com/taskloop/taskloop-go/internal/model"
	"github.com/taskloop/taskloop-go/internal/repository"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already taken")
	ErrInvalidUpdateFields = errors.New("invalid update fields")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoAvatar            = errors.New("no avatar set")
	ErrBadAvatarType       = errors.New("avatar must be a png, jpg or jpeg file")
)

// UserStore persists user records.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	SetAvatar(ctx context.Context, id string, data []byte) error
	ClearAvatar(ctx context.Context, id string) error
	GetAvatar(ctx context.Context, id string) ([]byte, error)
}

// TaskPurger deletes all tasks of an owner during the account-deletion
// cascade.
type TaskPurger interface {
	DeleteByOwner(ctx context.Context, ownerID string) error
}

// Mailer sends account lifecycle notifications. Implementations must not
// block the request; sends are fire-and-forget.
type Mailer interface {
	SendWelcome(email, name string)
	SendCancellation(email, name string)
}

// UserService handles signup, login, profile and avatar business logic.
type UserService struct {
	users  UserStore
	tasks  TaskPurger
	tokens *TokenService
	mailer Mailer
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, tasks TaskPurger, tokens *TokenService, mailer Mailer) *UserService {
	return &UserService{users: users, tasks: tasks, tokens: tokens, mailer: mailer}
}

// Signup creates a user account, issues its first token and triggers the
// welcome notification.
func (s *UserService) Signup(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	user, err := model.NewUser(req)
	if err != nil {
		return model.AuthResponse{}, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("hashing password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	s.mailer.SendWelcome(user.Email, user.Name)

	return model.AuthResponse{User: user.Sanitized(), Token: token}, nil
}

// Login authenticates by email and password and issues a new token.
// Previously issued tokens stay valid; concurrent sessions are supported.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	if !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{User: user.Sanitized(), Token: token}, nil
}

// Logout revokes the token used for the current request.
func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	return s.tokens.RevokeOne(ctx, userID, token)
}

// LogoutAll revokes every active session of the user.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	return s.tokens.RevokeAll(ctx, userID)
}

// Profile returns the caller's own sanitized record.
func (s *UserService) Profile(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}
	return user.Sanitized(), nil
}

// Update applies an allow-listed partial update to the caller's profile.
// Any payload key outside {name, email, password, age} fails the whole
// operation before anything is read or written.
func (s *UserService) Update(ctx context.Context, userID string, keys []string, upd model.UserUpdate) (model.UserResponse, error) {
	if err := model.CheckUserUpdateFields(keys); err != nil {
		return model.UserResponse{}, fmt.Errorf("%w: %v", ErrInvalidUpdateFields, err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	if err := upd.Apply(user); err != nil {
		return model.UserResponse{}, err
	}

	if upd.Password != nil {
		hash, err := crypto.HashPassword(*upd.Password)
		if err != nil {
			return model.UserResponse{}, fmt.Errorf("hashing password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrEmailTaken
		}
		return model.UserResponse{}, err
	}

	return user.Sanitized(), nil
}

// Delete removes the account, then cascades to the user's tasks. The user
// row goes first and the two steps are not transactional: a failure in
// between leaves orphaned tasks rather than a half-deleted user.
func (s *UserService) Delete(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return model.UserResponse{}, err
	}

	if err := s.tasks.DeleteByOwner(ctx, userID); err != nil {
		return model.UserResponse{}, err
	}

	s.mailer.SendCancellation(user.Email, user.Name)

	return user.Sanitized(), nil
}

// allowed avatar upload extensions
var avatarExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// UploadAvatar validates the upload, normalizes the image to the canonical
// square PNG and stores the bytes on the user record.
func (s *UserService) UploadAvatar(ctx context.Context, userID, filename string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !avatarExtensions[ext] {
		return ErrBadAvatarType
	}

	normalized, err := avatar.Normalize(data)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}

	if err := s.users.SetAvatar(ctx, userID, normalized); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return nil
}

// DeleteAvatar clears the stored avatar. Deleting an absent avatar is an
// error, not a silent no-op.
func (s *UserService) DeleteAvatar(ctx context.Context, userID string) error {
	err := s.users.ClearAvatar(ctx, userID)
	if errors.Is(err, repository.ErrNoAvatar) {
		return ErrNoAvatar
	}
	return err
}

// Avatar returns the stored avatar bytes for any user id; the route is
// public.
func (s *UserService) Avatar(ctx context.Context, userID string) ([]byte, error) {
	data, err := s.users.GetAvatar(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrNoAvatar):
			return nil, ErrNoAvatar
		}
		return nil, err
	}
	return data, nil
}
