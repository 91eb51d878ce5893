package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/veilchat/chat-server/internal/core/domain"
	"github.com/veilchat/chat-server/internal/core/ports"
)

const historyPageSize = 20

type messageService struct {
	identities ports.IdentityRepository
	messages   ports.MessageRepository
	log        zerolog.Logger
}

// NewMessageService returns a MessageService implementation: the message
// router plus the read/reaction state machine.
func NewMessageService(
	identities ports.IdentityRepository,
	messages ports.MessageRepository,
	log zerolog.Logger,
) ports.MessageService {
	return &messageService{identities: identities, messages: messages, log: log}
}

// SendPrivateMessage validates both participants and persists the message.
// Nothing is persisted when either participant is missing.
func (s *messageService) SendPrivateMessage(ctx context.Context, in ports.SendMessageInput) (*domain.Message, error) {
	if in.Content == "" {
		return nil, fmt.Errorf("send message: %w", domain.ErrInvalidKind)
	}
	kind := in.Kind
	if kind == "" {
		kind = domain.KindText
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("send message: %w", domain.ErrInvalidKind)
	}

	if _, err := s.identities.FindByID(ctx, in.SenderID); err != nil {
		return nil, fmt.Errorf("send message: sender: %w", err)
	}
	if _, err := s.identities.FindByID(ctx, in.ReceiverID); err != nil {
		return nil, fmt.Errorf("send message: receiver: %w", err)
	}

	msg := &domain.Message{
		ID:         uuid.NewString(),
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Content:    in.Content,
		Kind:       kind,
		ReadBy:     []string{},
		Reactions:  []domain.Reaction{},
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.messages.Insert(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("sender", in.SenderID).Msg("failed to persist message")
		return nil, err
	}

	s.log.Debug().
		Str("message_id", msg.ID).
		Str("sender", msg.SenderID).
		Str("receiver", msg.ReceiverID).
		Msg("message persisted")

	return msg, nil
}

// MarkRead adds readerID to the message's read set. Repeated calls with the
// same reader are no-ops.
func (s *messageService) MarkRead(ctx context.Context, messageID, readerID string) (*domain.Message, error) {
	msg, err := s.messages.AddReader(ctx, messageID, readerID)
	if err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	return msg, nil
}

// SetReaction replaces reactorID's reaction. Empty symbol removes it.
func (s *messageService) SetReaction(ctx context.Context, messageID, reactorID, symbol string) (*domain.Message, error) {
	if symbol != "" && !domain.ValidReaction(symbol) {
		return nil, fmt.Errorf("set reaction: %w", domain.ErrInvalidReaction)
	}

	msg, err := s.messages.ReplaceReaction(ctx, messageID, reactorID, symbol)
	if err != nil {
		return nil, fmt.Errorf("set reaction: %w", err)
	}
	return msg, nil
}

// History returns one page of the two-way conversation, oldest first within
// the page so clients can append in render order.
func (s *messageService) History(ctx context.Context, userID, otherID string, page int) ([]*domain.Message, error) {
	if page < 1 {
		page = 1
	}

	msgs, err := s.messages.ListConversation(ctx, userID, otherID, page, historyPageSize)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	// Repository returns newest first; flip for render order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Chats groups the identity's messages into conversations, keeping the
// latest message and an unread count per peer.
func (s *messageService) Chats(ctx context.Context, userID string) ([]ports.ChatSummary, error) {
	msgs, err := s.messages.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("chats: %w", err)
	}

	summaries := make(map[string]*ports.ChatSummary)
	order := make([]string, 0)

	for _, m := range msgs {
		peerID := m.SenderID
		if peerID == userID {
			peerID = m.ReceiverID
		}

		sum, ok := summaries[peerID]
		if !ok {
			peer, err := s.identities.FindByID(ctx, peerID)
			if err != nil {
				s.log.Warn().Err(err).Str("peer", peerID).Msg("skipping conversation with unresolvable peer")
				continue
			}
			sum = &ports.ChatSummary{
				ID:          conversationID(userID, peerID),
				Peer:        peer.PublicProfile(),
				LastContent: m.Content,
				LastKind:    m.Kind,
				LastAt:      m.CreatedAt,
			}
			summaries[peerID] = sum
			order = append(order, peerID)
		}

		if m.SenderID != userID && !m.ReadByContains(userID) {
			sum.UnreadCount++
		}
	}

	out := make([]ports.ChatSummary, 0, len(order))
	for _, peerID := range order {
		out = append(out, *summaries[peerID])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastAt.After(out[j].LastAt) })
	return out, nil
}

// conversationID is a stable key for an unordered identity pair.
func conversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "-" + b
}
