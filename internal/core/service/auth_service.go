package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/veilchat/chat-server/internal/core/domain"
	"github.com/veilchat/chat-server/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	identities ports.IdentityRepository
	jwtSecret  string
	tokenTTL   time.Duration
}

func NewAuthService(identities ports.IdentityRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &AuthService{identities: identities, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (string, *domain.Identity, error) {
	if username == "" || email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	if _, err := s.identities.FindByEmail(ctx, email); err == nil {
		return "", nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrIdentityNotFound) {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	identity := &domain.Identity{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		CredentialHash: string(hash),
		Status:         domain.StatusOffline,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		return "", nil, err
	}

	token, err := signSessionToken(s.jwtSecret, s.tokenTTL, identity)
	if err != nil {
		return "", nil, err
	}
	return token, identity, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Identity, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	identity, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.CredentialHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	// Persisted status is informational; live presence is registered over
	// the socket once the client connects.
	if err := s.identities.UpdatePresence(ctx, identity.ID, domain.StatusOnline); err != nil {
		return "", nil, err
	}

	token, err := signSessionToken(s.jwtSecret, s.tokenTTL, identity)
	if err != nil {
		return "", nil, err
	}
	return token, identity, nil
}
