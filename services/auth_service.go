package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"competition-system/models"
	"competition-system/security"
)

// TokenSigner signs and verifies access tokens carrying a username.
type TokenSigner interface {
	Sign(subject string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// Credential is an issued access token.
type Credential struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type AuthService struct {
	Users  *UserService
	Signer TokenSigner

	dummyHash string
}

func NewAuthService(users *UserService, signer TokenSigner) (*AuthService, error) {
	// Compared against when the username is unknown, so a miss costs as much as a hit.
	dummy, err := users.Hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &AuthService{Users: users, Signer: signer, dummyHash: dummy}, nil
}

// Authenticate returns ErrInvalidCredentials for both an unknown username and a wrong
// password.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.Users.Hasher.Verify(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.Users.Hasher.Verify(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) IssueCredential(user *models.User) (*Credential, error) {
	token, expiresAt, err := s.Signer.Sign(user.Username)
	if err != nil {
		return nil, err
	}
	return &Credential{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt}, nil
}

// ResolveCredential verifies token and looks its subject up again, so tokens of deleted
// users stop working before they expire.
func (s *AuthService) ResolveCredential(ctx context.Context, token string) (*models.User, error) {
	username, err := s.Signer.Verify(token)
	if err != nil {
		if errors.Is(err, security.ErrInvalidToken) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return s.Users.GetUserByUsername(ctx, username)
}
