package ports

import (
	"context"

	"github.com/veilchat/chat-server/internal/core/domain"
)

// DuressSettingsRepository persists per-owner duress configuration.
type DuressSettingsRepository interface {
	// FindByOwner returns the owner's settings record, or
	// domain.ErrSettingsNotFound when none has been saved yet.
	FindByOwner(ctx context.Context, ownerID string) (*domain.DuressSettings, error)
	// Save upserts the settings record keyed by owner id.
	Save(ctx context.Context, s *domain.DuressSettings) error
}

// GenerationGuard serializes synthetic-history generation per decoy so that
// concurrent switches cannot double a decoy's history.
type GenerationGuard interface {
	// Acquire attempts to take the generation lock for a decoy. It returns
	// false when another caller already holds it.
	Acquire(ctx context.Context, decoyID string) (bool, error)
	Release(ctx context.Context, decoyID string) error
}
