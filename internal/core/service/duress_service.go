package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/veilchat/chat-server/internal/core/domain"
	"github.com/veilchat/chat-server/internal/core/ports"
)

type duressService struct {
	identities ports.IdentityRepository
	messages   ports.MessageRepository
	settings   ports.DuressSettingsRepository
	guard      ports.GenerationGuard
	fabricator ports.ConversationFabricator
	jwtSecret  string
	tokenTTL   time.Duration
	log        zerolog.Logger
}

// NewDuressService returns the identity switch controller.
func NewDuressService(
	identities ports.IdentityRepository,
	messages ports.MessageRepository,
	settings ports.DuressSettingsRepository,
	guard ports.GenerationGuard,
	fabricator ports.ConversationFabricator,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) ports.DuressService {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &duressService{
		identities: identities,
		messages:   messages,
		settings:   settings,
		guard:      guard,
		fabricator: fabricator,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		log:        log,
	}
}

// GetSettings returns the owner's stored settings, or defaults when the
// owner has never saved.
func (s *duressService) GetSettings(ctx context.Context, ownerID string) (*ports.SettingsView, error) {
	stored, err := s.settings.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			stored = domain.DefaultDuressSettings(ownerID)
		} else {
			return nil, fmt.Errorf("get settings: %w", err)
		}
	}

	view := &ports.SettingsView{
		ShowTimestamps: stored.ShowTimestamps,
		MinTimeMinutes: stored.MinTimeMinutes,
		MaxTimeMinutes: stored.MaxTimeMinutes,
		NumFakeUsers:   stored.NumFakeUsers,
		Personas:       stored.Personas,
	}

	if stored.DecoyID != "" {
		decoy, err := s.identities.FindByID(ctx, stored.DecoyID)
		if err == nil {
			p := decoy.PublicProfile()
			view.Decoy = &p
		}
	}
	return view, nil
}

// UpdateSettings upserts the owner's settings record and, when decoy
// credentials are supplied, provisions or re-provisions the decoy account.
// The decoy id is set once and is stable thereafter so its synthetic
// history survives credential changes.
func (s *duressService) UpdateSettings(ctx context.Context, ownerID string, in ports.UpdateSettingsInput) error {
	stored, err := s.settings.FindByOwner(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, domain.ErrSettingsNotFound) {
			return fmt.Errorf("update settings: %w", err)
		}
		stored = &domain.DuressSettings{ID: uuid.NewString(), OwnerID: ownerID}
	}

	stored.ShowTimestamps = in.ShowTimestamps
	stored.MinTimeMinutes = in.MinTimeMinutes
	stored.MaxTimeMinutes = in.MaxTimeMinutes
	stored.NumFakeUsers = in.NumFakeUsers
	stored.Personas = in.Personas

	if err := stored.Validate(); err != nil {
		return err
	}

	if in.Decoy != nil {
		if err := s.provisionDecoy(ctx, ownerID, stored, in.Decoy); err != nil {
			return err
		}
	}

	if err := s.settings.Save(ctx, stored); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

func (s *duressService) provisionDecoy(ctx context.Context, ownerID string, stored *domain.DuressSettings, creds *ports.DecoyCredentials) error {
	if creds.Username == "" || creds.Email == "" {
		return domain.ErrSettingsInvalid
	}

	var existing *domain.Identity
	if stored.DecoyID != "" {
		found, err := s.identities.FindByID(ctx, stored.DecoyID)
		if err != nil && !errors.Is(err, domain.ErrIdentityNotFound) {
			return fmt.Errorf("provision decoy: %w", err)
		}
		existing = found
	}

	if existing == nil {
		// First provision requires a full credential set.
		if creds.Password == "" {
			return domain.ErrSettingsInvalid
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		decoy := &domain.Identity{
			ID:             uuid.NewString(),
			Username:       creds.Username,
			Email:          creds.Email,
			CredentialHash: string(hash),
			Status:         domain.StatusOffline,
			IsDecoy:        true,
			OwnerID:        ownerID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.identities.Create(ctx, decoy); err != nil {
			return fmt.Errorf("provision decoy: %w", err)
		}
		stored.DecoyID = decoy.ID
		s.log.Info().Str("owner", ownerID).Str("decoy", decoy.ID).Msg("decoy account provisioned")
		return nil
	}

	// Re-provision in place: id and conversation history are preserved.
	var hash string
	if creds.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hash = string(h)
	}
	if err := s.identities.UpdateProfile(ctx, existing.ID, creds.Username, creds.Email, hash); err != nil {
		return fmt.Errorf("provision decoy: %w", err)
	}
	s.log.Info().Str("owner", ownerID).Str("decoy", existing.ID).Msg("decoy credentials updated")
	return nil
}

// Switch re-issues a session credential scoped to the owner's decoy. On the
// first switch the decoy has no history yet, so generation runs synchronously
// before the credential is returned.
func (s *duressService) Switch(ctx context.Context, ownerID string) (*ports.SwitchResult, error) {
	stored, err := s.settings.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return nil, domain.ErrDecoyNotConfigured
		}
		return nil, fmt.Errorf("switch: %w", err)
	}
	if stored.DecoyID == "" {
		return nil, domain.ErrDecoyNotConfigured
	}

	decoy, err := s.identities.FindByID(ctx, stored.DecoyID)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrDecoyNotConfigured
		}
		return nil, fmt.Errorf("switch: %w", err)
	}

	if err := s.ensureHistory(ctx, decoy.ID, stored); err != nil {
		return nil, err
	}

	token, err := signSessionToken(s.jwtSecret, s.tokenTTL, decoy)
	if err != nil {
		return nil, fmt.Errorf("switch: %w", err)
	}

	s.log.Info().Str("owner", ownerID).Str("decoy", decoy.ID).Msg("switched to decoy session")

	return &ports.SwitchResult{Token: token, Decoy: decoy.PublicProfile()}, nil
}

// ensureHistory lazily populates the decoy's synthetic history exactly once.
// The check-then-generate sequence is serialized by a per-decoy lock; when a
// concurrent switch holds the lock, generation is simply skipped here.
func (s *duressService) ensureHistory(ctx context.Context, decoyID string, stored *domain.DuressSettings) error {
	count, err := s.messages.CountByParticipant(ctx, decoyID)
	if err != nil {
		return fmt.Errorf("switch: count history: %w", err)
	}
	if count > 0 {
		return nil
	}

	acquired, err := s.guard.Acquire(ctx, decoyID)
	if err != nil {
		// Degraded mode: proceed unguarded rather than failing the switch.
		s.log.Warn().Err(err).Str("decoy", decoyID).Msg("generation lock unavailable, proceeding unguarded")
		acquired = true
	}
	if !acquired {
		return nil
	}
	defer func() {
		if err := s.guard.Release(ctx, decoyID); err != nil {
			s.log.Warn().Err(err).Str("decoy", decoyID).Msg("failed to release generation lock")
		}
	}()

	// Re-check under the lock: a concurrent switch may have generated
	// between our count and the acquire.
	count, err = s.messages.CountByParticipant(ctx, decoyID)
	if err != nil {
		return fmt.Errorf("switch: count history: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := s.fabricator.Populate(ctx, decoyID, stored); err != nil {
		return fmt.Errorf("switch: populate history: %w", err)
	}
	return nil
}
