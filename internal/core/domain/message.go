package domain

import (
	"errors"
	"time"
)

// MessageKind is the content type of a message.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
)

var ErrMessageNotFound = errors.New("message not found")
var ErrInvalidReaction = errors.New("invalid reaction symbol")
var ErrInvalidKind = errors.New("invalid message kind")

// reactionSymbols is the closed set of glyphs a reactor may attach to a
// message. Anything else is rejected.
var reactionSymbols = map[string]struct{}{
	"❤️": {},
	"👍": {},
	"😊": {},
	"😂": {},
	"😮": {},
	"😢": {},
}

// ValidReaction reports whether symbol belongs to the allowed reaction set.
func ValidReaction(symbol string) bool {
	_, ok := reactionSymbols[symbol]
	return ok
}

// ValidKind reports whether kind is a known message content type.
func (k MessageKind) Valid() bool {
	return k == KindText || k == KindImage
}

// Reaction is a single symbol attributed to one reactor on one message.
// A reactor holds at most one reaction per message; a new one replaces it.
type Reaction struct {
	ReactorID string `json:"userId" bson:"user_id"`
	Symbol    string `json:"reaction" bson:"reaction"`
}

// Message is a private message between two identities, together with its
// read-receipt and reaction state.
type Message struct {
	ID         string      `json:"id" bson:"_id"`
	SenderID   string      `json:"senderId" bson:"sender_id"`
	ReceiverID string      `json:"receiverId" bson:"receiver_id"`
	Content    string      `json:"content" bson:"content"`
	Kind       MessageKind `json:"type" bson:"type"`
	// ReadBy grows monotonically and never holds duplicates.
	ReadBy    []string   `json:"readBy" bson:"read_by"`
	Reactions []Reaction `json:"reactions" bson:"reactions"`
	Delivered bool       `json:"delivered" bson:"delivered"`
	CreatedAt time.Time  `json:"createdAt" bson:"created_at"`
}

// ReadByContains reports whether readerID is already in the read set.
func (m *Message) ReadByContains(readerID string) bool {
	for _, id := range m.ReadBy {
		if id == readerID {
			return true
		}
	}
	return false
}
