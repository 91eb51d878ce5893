package domain

import (
	"errors"
	"time"
)

// PresenceStatus is the connectivity state of an identity.
type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusOffline PresenceStatus = "offline"
)

var ErrIdentityNotFound = errors.New("identity not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUnauthorized = errors.New("unauthorized")
var ErrDecoyNotConfigured = errors.New("decoy account not configured")

// Identity models an account in the system: a real user, the decoy account a
// user switches into under duress, or a synthetic conversation counterpart.
type Identity struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	Email          string         `json:"email,omitempty"`
	CredentialHash string         `json:"-"`
	Avatar         string         `json:"avatar,omitempty"`
	Status         PresenceStatus `json:"status"`
	LastSeen       time.Time      `json:"lastSeen,omitempty"`
	// IsDecoy marks the account a user switches into under duress.
	// A decoy always has exactly one owner, recorded in OwnerID.
	IsDecoy bool   `json:"isDecoy"`
	OwnerID string `json:"ownerId,omitempty"`
	// Synthetic marks generated conversation counterparts. They are
	// non-decoy and owned by no one.
	Synthetic bool      `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile is the public view of an identity, safe to return to clients.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	IsDecoy  bool   `json:"isDecoy"`
}

// PublicProfile strips credential and ownership internals from an identity.
func (i *Identity) PublicProfile() Profile {
	return Profile{
		ID:       i.ID,
		Username: i.Username,
		Email:    i.Email,
		Avatar:   i.Avatar,
		IsDecoy:  i.IsDecoy,
	}
}
