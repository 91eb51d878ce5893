package domain

import "errors"

// MaxPersonas bounds the persona selection on a settings record.
const MaxPersonas = 5

var ErrSettingsInvalid = errors.New("invalid duress settings")
var ErrSettingsNotFound = errors.New("duress settings not found")

// DuressSettings configures an owner's decoy account and the synthetic
// history generated for it. Created on the owner's first save and mutated
// only by the owner. DecoyID is set once a decoy is provisioned and is
// stable thereafter: re-provisioning overwrites credentials but preserves
// the decoy id and therefore its conversation history.
type DuressSettings struct {
	ID             string   `json:"id"`
	OwnerID        string   `json:"ownerId"`
	DecoyID        string   `json:"decoyId,omitempty"`
	ShowTimestamps bool     `json:"showTimestamps"`
	MinTimeMinutes int      `json:"minTimeInMinutes"`
	MaxTimeMinutes int      `json:"maxTimeInMinutes"`
	NumFakeUsers   int      `json:"numberOfFakeUsers"`
	Personas       []string `json:"personas"`
}

// DefaultDuressSettings are the values served before an owner ever saves.
func DefaultDuressSettings(ownerID string) *DuressSettings {
	return &DuressSettings{
		OwnerID:        ownerID,
		ShowTimestamps: true,
		MinTimeMinutes: 2,
		MaxTimeMinutes: 1440,
		NumFakeUsers:   5,
	}
}

// Validate checks the numeric bounds and the persona cap.
func (s *DuressSettings) Validate() error {
	if s.MinTimeMinutes < 1 || s.MaxTimeMinutes < s.MinTimeMinutes {
		return ErrSettingsInvalid
	}
	if s.NumFakeUsers < 1 || s.NumFakeUsers > 20 {
		return ErrSettingsInvalid
	}
	if len(s.Personas) > MaxPersonas {
		return ErrSettingsInvalid
	}
	for _, id := range s.Personas {
		if _, ok := PersonaByID(id); !ok {
			return ErrSettingsInvalid
		}
	}
	return nil
}
