package ports

import (
	"context"

	"github.com/veilchat/chat-server/internal/core/domain"
)

// AuthService handles registration and credential verification.
type AuthService interface {
	// Register creates a new identity and returns a signed session token
	// together with the created identity.
	Register(ctx context.Context, username, email, password string) (string, *domain.Identity, error)
	// Login verifies credentials, marks the identity online, and returns a
	// signed session token.
	Login(ctx context.Context, email, password string) (string, *domain.Identity, error)
}
