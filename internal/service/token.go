package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskloop/taskloop-go/internal/crypto"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenStore persists the active token list per user. It is an interface so
// the session side table can be swapped without touching validation logic.
type TokenStore interface {
	Insert(ctx context.Context, userID, token string) error
	Exists(ctx context.Context, userID, token string) (bool, error)
	DeleteOne(ctx context.Context, userID, token string) error
	DeleteAll(ctx context.Context, userID string) error
}

// TokenService mints and validates bearer tokens. A token authenticates only
// while its exact string is present in the store: the signing primitive is
// stateless, so revocation happens by removing the store entry.
type TokenService struct {
	store  TokenStore
	secret string
}

// NewTokenService creates a new TokenService with the signing secret
// injected from configuration.
func NewTokenService(store TokenStore, secret string) *TokenService {
	return &TokenService{store: store, secret: secret}
}

// Issue signs a token for the user and records it as active.
func (s *TokenService) Issue(ctx context.Context, userID string) (string, error) {
	token, err := crypto.SignToken(userID, s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	if err := s.store.Insert(ctx, userID, token); err != nil {
		return "", fmt.Errorf("persisting token: %w", err)
	}

	return token, nil
}

// Validate resolves a bearer token to a user id. Both checks must pass:
// the signature, and membership in the active token store. A structurally
// valid token that was revoked fails exactly like a forged one.
func (s *TokenService) Validate(ctx context.Context, token string) (string, error) {
	userID, err := crypto.ParseToken(token, s.secret)
	if err != nil {
		return "", ErrInvalidToken
	}

	active, err := s.store.Exists(ctx, userID, token)
	if err != nil {
		return "", fmt.Errorf("checking token: %w", err)
	}
	if !active {
		return "", ErrInvalidToken
	}

	return userID, nil
}

// RevokeOne removes exactly the matching token for the user.
func (s *TokenService) RevokeOne(ctx context.Context, userID, token string) error {
	return s.store.DeleteOne(ctx, userID, token)
}

// RevokeAll clears every active token for the user.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	return s.store.DeleteAll(ctx, userID)
}
