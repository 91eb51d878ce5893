package realtime

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/veilchat/chat-server/internal/api/metrics"
	"github.com/veilchat/chat-server/internal/core/domain"
	"github.com/veilchat/chat-server/internal/core/ports"
)

// Dispatcher decodes inbound socket frames and applies them: it is the glue
// between the wire protocol, the message service, and the presence hub.
// Failures are echoed to the offending session only; they never propagate
// to other connections.
type Dispatcher struct {
	hub      *Hub
	messages ports.MessageService
	log      zerolog.Logger
}

func NewDispatcher(hub *Hub, messages ports.MessageService, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{hub: hub, messages: messages, log: log}
}

// Dispatch handles one inbound frame from sess.
func (d *Dispatcher) Dispatch(ctx context.Context, sess Session, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		d.log.Debug().Err(err).Msg("dropping malformed frame")
		return
	}

	switch env.Event {
	case EventUserOnline, EventPrivateMessage, EventTyping, EventMessageRead, EventMessageReaction:
		metrics.SocketEventsTotal.WithLabelValues(env.Event).Inc()
	default:
		metrics.SocketEventsTotal.WithLabelValues("unknown").Inc()
		d.log.Debug().Str("event", env.Event).Msg("dropping unknown event")
		return
	}

	switch env.Event {
	case EventUserOnline:
		d.handleUserOnline(sess, env.Data)
	case EventPrivateMessage:
		d.handlePrivateMessage(ctx, sess, env.Data)
	case EventTyping:
		d.handleTyping(env.Data)
	case EventMessageRead:
		d.handleMessageRead(ctx, sess, env.Data)
	case EventMessageReaction:
		d.handleMessageReaction(ctx, sess, env.Data)
	}
}

func (d *Dispatcher) handleUserOnline(sess Session, raw []byte) {
	var p userOnlinePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.UserID == "" {
		d.log.Debug().Msg("dropping user_online with no user id")
		return
	}
	d.hub.Register(p.UserID, sess)
}

func (d *Dispatcher) handlePrivateMessage(ctx context.Context, sess Session, raw []byte) {
	var p privateMessagePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		sess.Enqueue(Event{Event: EventMessageError, Data: errorPayload{Error: "invalid payload"}})
		return
	}

	msg, err := d.messages.SendPrivateMessage(ctx, ports.SendMessageInput{
		SenderID:   p.SenderID,
		ReceiverID: p.ReceiverID,
		Content:    p.Content,
		Kind:       domain.MessageKind(p.Type),
	})
	if err != nil {
		d.log.Warn().Err(err).Str("sender", p.SenderID).Msg("private message rejected")
		sess.Enqueue(Event{Event: EventMessageError, Data: errorPayload{Error: "failed to send message"}})
		return
	}

	metrics.MessagesSentTotal.WithLabelValues(string(msg.Kind)).Inc()

	// Deliver to the receiver if present. At-most-once: no retry, no queue;
	// an offline receiver picks the message up on its next history fetch.
	if peer, ok := d.hub.Lookup(msg.ReceiverID); ok {
		peer.Enqueue(Event{Event: EventNewMessage, Data: msg})
		metrics.MessageDeliveryTotal.WithLabelValues("delivered").Inc()
	} else {
		metrics.MessageDeliveryTotal.WithLabelValues("offline").Inc()
	}

	// Always confirm to the sender with the persisted message.
	sess.Enqueue(Event{Event: EventMessageSent, Data: msg})
}

func (d *Dispatcher) handleTyping(raw []byte) {
	var p typingPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	// Fire-and-forget: never persisted, silently dropped when the receiver
	// is not connected. Display expiry is the client's concern.
	if peer, ok := d.hub.Lookup(p.ReceiverID); ok {
		peer.Enqueue(Event{Event: EventUserTyping, Data: userTypingPayload{UserID: p.SenderID}})
	}
}

func (d *Dispatcher) handleMessageRead(ctx context.Context, sess Session, raw []byte) {
	var p messageReadPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		sess.Enqueue(Event{Event: EventMessageError, Data: errorPayload{Error: "invalid payload"}})
		return
	}

	msg, err := d.messages.MarkRead(ctx, p.MessageID, p.ReadBy)
	if err != nil {
		sess.Enqueue(Event{Event: EventMessageError, Data: errorPayload{Error: "failed to mark message as read"}})
		return
	}

	d.hub.Broadcast(Event{
		Event: EventMessageStatusUpdate,
		Data:  statusUpdatePayload{MessageID: msg.ID, ReadBy: msg.ReadBy},
	})
}

func (d *Dispatcher) handleMessageReaction(ctx context.Context, sess Session, raw []byte) {
	var p messageReactionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		sess.Enqueue(Event{Event: EventMessageError, Data: errorPayload{Error: "invalid payload"}})
		return
	}

	msg, err := d.messages.SetReaction(ctx, p.MessageID, p.UserID, p.Reaction)
	if err != nil {
		sess.Enqueue(Event{Event: EventMessageError, Data: errorPayload{Error: "failed to set reaction"}})
		return
	}

	d.hub.Broadcast(Event{
		Event: EventMessageStatusUpdate,
		Data:  statusUpdatePayload{MessageID: msg.ID, ReadBy: msg.ReadBy, Reactions: msg.Reactions},
	})
}

// Disconnect releases the session's presence entry, if it still owns one.
func (d *Dispatcher) Disconnect(sess Session) {
	if id, ok := d.hub.Unregister(sess); ok {
		d.log.Debug().Str("identity", id).Msg("identity went offline")
	}
}
