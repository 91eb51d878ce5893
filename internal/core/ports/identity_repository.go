package ports

import (
	"context"

	"github.com/veilchat/chat-server/internal/core/domain"
)

// IdentityRepository defines persistence operations for identities.
// Credential hashing is an explicit caller responsibility; the repository
// stores whatever hash it is handed.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	// UpdateProfile overwrites username, email and, when hash is non-empty,
	// the credential hash of an existing identity.
	UpdateProfile(ctx context.Context, id, username, email, hash string) error
	// UpdatePresence records the persisted connectivity status and last-seen
	// timestamp. Live presence itself is process-local and never persisted.
	UpdatePresence(ctx context.Context, id string, status domain.PresenceStatus) error
}
