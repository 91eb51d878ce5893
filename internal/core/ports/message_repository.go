package ports

import (
	"context"

	"github.com/veilchat/chat-server/internal/core/domain"
)

// MessageRepository defines persistence operations for messages and their
// read/reaction state.
type MessageRepository interface {
	Insert(ctx context.Context, m *domain.Message) error
	InsertBatch(ctx context.Context, msgs []*domain.Message) error
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	// AddReader atomically adds readerID to the message's read set and
	// returns the updated message. Adding an already-present reader is a
	// no-op that still returns the message.
	AddReader(ctx context.Context, messageID, readerID string) (*domain.Message, error)
	// ReplaceReaction atomically removes any reaction by reactorID and, when
	// symbol is non-empty, inserts the new one. Returns the updated message.
	ReplaceReaction(ctx context.Context, messageID, reactorID, symbol string) (*domain.Message, error)
	// ListConversation returns one page of the two-way history between two
	// identities, newest first. Page is 1-based.
	ListConversation(ctx context.Context, userID, otherID string, page, limit int) ([]*domain.Message, error)
	// ListByParticipant returns every message the identity sent or received,
	// newest first.
	ListByParticipant(ctx context.Context, userID string) ([]*domain.Message, error)
	// CountByParticipant counts messages the identity sent or received.
	CountByParticipant(ctx context.Context, userID string) (int64, error)
}
