package service

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/veilchat/chat-server/internal/core/domain"
	"github.com/veilchat/chat-server/internal/core/ports"
)

const (
	minMessagesPerPeer = 5
	maxMessagesPerPeer = 20
)

// Fabricator populates a decoy identity's conversation history with
// synthetic counterparts and plausible message traffic tailing off into the
// past. Populate is expected to run once per decoy lifetime; invoking it
// twice doubles the history, so callers gate on "no existing messages".
type Fabricator struct {
	identities ports.IdentityRepository
	messages   ports.MessageRepository
	log        zerolog.Logger
}

func NewFabricator(identities ports.IdentityRepository, messages ports.MessageRepository, log zerolog.Logger) *Fabricator {
	return &Fabricator{identities: identities, messages: messages, log: log}
}

// Populate creates settings.NumFakeUsers counterpart identities and a
// conversation between the decoy and each of them.
func (f *Fabricator) Populate(ctx context.Context, decoyID string, settings *domain.DuressSettings) error {
	total := 0
	for i := 0; i < settings.NumFakeUsers; i++ {
		counterpart, err := f.createCounterpart(ctx, settings.Personas, i)
		if err != nil {
			return fmt.Errorf("populate: %w", err)
		}

		n, err := f.fabricateConversation(ctx, decoyID, counterpart.ID, settings)
		if err != nil {
			return fmt.Errorf("populate: %w", err)
		}
		total += n
	}

	f.log.Info().
		Str("decoy", decoyID).
		Int("counterparts", settings.NumFakeUsers).
		Int("messages", total).
		Msg("synthetic history generated")

	return nil
}

// createCounterpart provisions one synthetic identity. Selected personas
// name the first counterparts; the rest get generated profiles.
func (f *Fabricator) createCounterpart(ctx context.Context, personas []string, idx int) (*domain.Identity, error) {
	username := gofakeit.Username()
	if idx < len(personas) {
		if p, ok := domain.PersonaByID(personas[idx]); ok {
			username = p.DisplayName
		}
	}

	now := time.Now().UTC()
	status := domain.StatusOffline
	if gofakeit.Bool() {
		status = domain.StatusOnline
	}

	counterpart := &domain.Identity{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          gofakeit.Email(),
		CredentialHash: "",
		Avatar:         gofakeit.ImageURL(200, 200),
		Status:         status,
		LastSeen:       now.Add(-time.Duration(gofakeit.Number(1, 7*24*60)) * time.Minute),
		Synthetic:      true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := f.identities.Create(ctx, counterpart); err != nil {
		return nil, err
	}
	return counterpart, nil
}

// fabricateConversation writes one conversation between the decoy and a
// counterpart. Timestamps step backward from now by a random number of
// minutes in [MinTimeMinutes, MaxTimeMinutes] per message, so they are
// monotonically non-increasing and all strictly before now.
func (f *Fabricator) fabricateConversation(ctx context.Context, decoyID, peerID string, settings *domain.DuressSettings) (int, error) {
	n := gofakeit.Number(minMessagesPerPeer, maxMessagesPerPeer)
	cursor := time.Now().UTC()

	msgs := make([]*domain.Message, 0, n)
	for i := 0; i < n; i++ {
		cursor = cursor.Add(-time.Duration(gofakeit.Number(settings.MinTimeMinutes, settings.MaxTimeMinutes)) * time.Minute)

		senderID, receiverID := decoyID, peerID
		if gofakeit.Bool() {
			senderID, receiverID = peerID, decoyID
		}

		msgs = append(msgs, &domain.Message{
			ID:         uuid.NewString(),
			SenderID:   senderID,
			ReceiverID: receiverID,
			Content:    gofakeit.Sentence(gofakeit.Number(3, 12)),
			Kind:       domain.KindText,
			ReadBy:     []string{senderID},
			Reactions:  []domain.Reaction{},
			Delivered:  true,
			CreatedAt:  cursor,
		})
	}

	if err := f.messages.InsertBatch(ctx, msgs); err != nil {
		return 0, err
	}
	return n, nil
}
