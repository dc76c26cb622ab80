package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrValidation is the sentinel wrapped by every construction-time
// validation failure. Handlers match it with errors.Is.
var ErrValidation = errors.New("validation failed")

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents a user row in the database. PasswordHash and Avatar never
// leave this package in a response; see UserResponse.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Age          int
	Avatar       []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserRequest represents a signup request. Unknown fields in the
// payload are simply not decoded, matching the schema-ignores-extras rule.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries a bearer token together with the sanitized user.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// UserResponse is the only user shape serialized to clients. It has no
// password or token fields, so stripping them is structural, not best-effort.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
}

// Sanitized converts a stored user into its client-safe representation.
func (u *User) Sanitized() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
	}
}

// NewUser validates a signup request and builds a user record without a
// password hash; hashing belongs to the caller. Construction fails closed:
// any invariant violation rejects the whole record.
func NewUser(req CreateUserRequest) (*User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	if req.Age < 0 {
		return nil, fmt.Errorf("%w: age must be a positive number", ErrValidation)
	}

	return &User{
		Name:  name,
		Email: email,
		Age:   req.Age,
	}, nil
}

// ValidatePassword enforces the plaintext password rules: at least 6
// characters after trimming and no "password" substring in any case.
func ValidatePassword(plaintext string) error {
	pw := strings.TrimSpace(plaintext)
	if len(pw) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if strings.Contains(strings.ToLower(pw), "password") {
		return fmt.Errorf("%w: password must not contain 'password'", ErrValidation)
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	return email, nil
}

// userUpdateFields is the allow-list for PATCH /users/me.
var userUpdateFields = map[string]bool{
	"name":     true,
	"email":    true,
	"password": true,
	"age":      true,
}

// UserUpdate holds the decoded allow-listed fields of a partial user update.
// Nil pointers mean the field was absent from the payload.
type UserUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

// CheckUserUpdateFields rejects the whole update when any payload key falls
// outside the allow-list. It runs before anything is applied.
func CheckUserUpdateFields(keys []string) error {
	for _, k := range keys {
		if !userUpdateFields[k] {
			return fmt.Errorf("invalid update field %q", k)
		}
	}
	return nil
}

// Apply mutates the user with the present fields, re-validating each one.
// The password is validated here but hashed by the caller.
func (u *UserUpdate) Apply(user *User) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return fmt.Errorf("%w: name is required", ErrValidation)
		}
		user.Name = name
	}
	if u.Email != nil {
		email, err := normalizeEmail(*u.Email)
		if err != nil {
			return err
		}
		user.Email = email
	}
	if u.Password != nil {
		if err := ValidatePassword(*u.Password); err != nil {
			return err
		}
	}
	if u.Age != nil {
		if *u.Age < 0 {
			return fmt.Errorf("%w: age must be a positive number", ErrValidation)
		}
		user.Age = *u.Age
	}
	return nil
}
