package ports

import (
	"context"
	"time"

	"github.com/veilchat/chat-server/internal/core/domain"
)

// SendMessageInput is the DTO passed from the transport layer to
// MessageService.SendPrivateMessage.
type SendMessageInput struct {
	SenderID   string
	ReceiverID string
	Content    string
	Kind       domain.MessageKind
}

// ChatSummary is one entry in an identity's conversation list: the peer,
// the latest message, and how many messages the identity has not read.
type ChatSummary struct {
	ID          string             `json:"id"`
	Peer        domain.Profile     `json:"user"`
	LastContent string             `json:"lastContent"`
	LastKind    domain.MessageKind `json:"lastType"`
	LastAt      time.Time          `json:"lastAt"`
	UnreadCount int                `json:"unreadCount"`
}

// MessageService is the message router and interaction state machine.
type MessageService interface {
	// SendPrivateMessage resolves both participants and persists the
	// message. Delivery to a live receiver connection is the caller's
	// concern (the realtime dispatcher).
	SendPrivateMessage(ctx context.Context, in SendMessageInput) (*domain.Message, error)
	// MarkRead idempotently adds readerID to the message's read set.
	MarkRead(ctx context.Context, messageID, readerID string) (*domain.Message, error)
	// SetReaction replaces reactorID's reaction on the message. An empty
	// symbol removes it; symbols outside the allowed set are rejected.
	SetReaction(ctx context.Context, messageID, reactorID, symbol string) (*domain.Message, error)
	// History returns one page (20 messages) of the two-way conversation,
	// oldest first within the page.
	History(ctx context.Context, userID, otherID string, page int) ([]*domain.Message, error)
	// Chats returns the identity's conversation list, most recent first.
	Chats(ctx context.Context, userID string) ([]ChatSummary, error)
}
