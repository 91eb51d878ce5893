package realtime

import (
	"encoding/json"

	"github.com/veilchat/chat-server/internal/core/domain"
)

// Inbound event names. The set is closed; unknown events are dropped.
const (
	EventUserOnline      = "user_online"
	EventPrivateMessage  = "private_message"
	EventTyping          = "typing"
	EventMessageRead     = "message_read"
	EventMessageReaction = "message_reaction"
)

// Outbound event names.
const (
	EventNewMessage          = "new_message"
	EventMessageSent         = "message_sent"
	EventMessageError        = "message_error"
	EventUserTyping          = "user_typing"
	EventMessageStatusUpdate = "message_status_update"
	EventUserStatus          = "user_status"
)

// Envelope is the wire frame for inbound events: a tag plus raw payload,
// decoded per-event by the dispatcher.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Event is an outbound frame.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// --- Inbound payloads ---

type userOnlinePayload struct {
	UserID string `json:"userId"`
}

type privateMessagePayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Type       string `json:"type"`
}

type typingPayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

type messageReadPayload struct {
	MessageID string `json:"messageId"`
	ReadBy    string `json:"readBy"`
}

type messageReactionPayload struct {
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
	Reaction  string `json:"reaction"`
}

// --- Outbound payloads ---

type errorPayload struct {
	Error string `json:"error"`
}

type userTypingPayload struct {
	UserID string `json:"userId"`
}

type userStatusPayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// statusUpdatePayload carries converged read/reaction state. Reaction
// changes ride the same event as read receipts; the outbound set is closed.
type statusUpdatePayload struct {
	MessageID string            `json:"messageId"`
	ReadBy    []string          `json:"readBy"`
	Reactions []domain.Reaction `json:"reactions,omitempty"`
}
