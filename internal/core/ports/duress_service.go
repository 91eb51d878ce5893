package ports

import (
	"context"

	"github.com/veilchat/chat-server/internal/core/domain"
)

// DecoyCredentials is the optional credential payload supplied when
// provisioning or re-provisioning a decoy account.
type DecoyCredentials struct {
	Username string
	Email    string
	Password string // empty on update keeps the existing hash
}

// UpdateSettingsInput carries a full settings save from the owner.
type UpdateSettingsInput struct {
	ShowTimestamps bool
	MinTimeMinutes int
	MaxTimeMinutes int
	NumFakeUsers   int
	Personas       []string
	Decoy          *DecoyCredentials // optional
}

// SettingsView is the settings record as returned to the owner, with the
// decoy's public profile when one is provisioned.
type SettingsView struct {
	ShowTimestamps bool
	MinTimeMinutes int
	MaxTimeMinutes int
	NumFakeUsers   int
	Personas       []string
	Decoy          *domain.Profile
}

// SwitchResult is the credential re-issue returned by Switch.
type SwitchResult struct {
	Token string
	Decoy domain.Profile
}

// DuressService is the identity switch controller.
type DuressService interface {
	GetSettings(ctx context.Context, ownerID string) (*SettingsView, error)
	UpdateSettings(ctx context.Context, ownerID string, in UpdateSettingsInput) error
	// Switch authenticates a duress trigger: it resolves the owner's decoy,
	// lazily populates its synthetic history on first use, and issues a
	// fresh session credential scoped to the decoy.
	Switch(ctx context.Context, ownerID string) (*SwitchResult, error)
}

// ConversationFabricator populates a decoy identity's synthetic history.
// Not idempotent: callers must gate on "no existing messages".
type ConversationFabricator interface {
	Populate(ctx context.Context, decoyID string, settings *domain.DuressSettings) error
}
