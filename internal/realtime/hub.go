package realtime

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/veilchat/chat-server/internal/api/metrics"
	"github.com/veilchat/chat-server/internal/core/domain"
)

// Session is a registered connection capable of receiving outbound events.
// Enqueue is non-blocking and reports whether the event was accepted.
type Session interface {
	Enqueue(Event) bool
}

// Hub is the presence registry: a process-local mapping of identity id to
// live session. State is rebuilt from scratch on restart; every identity is
// implicitly offline at boot. Nothing here is ever persisted.
type Hub struct {
	mu         sync.Mutex
	byIdentity map[string]Session
	identities map[Session]string
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		byIdentity: make(map[string]Session),
		identities: make(map[Session]string),
		log:        log,
	}
}

// Register binds an identity to a session, replacing any prior session for
// that identity (latest connection wins), and broadcasts online status.
func (h *Hub) Register(identityID string, sess Session) {
	h.mu.Lock()
	if old, ok := h.byIdentity[identityID]; ok && old != sess {
		delete(h.identities, old)
	}
	h.byIdentity[identityID] = sess
	h.identities[sess] = identityID
	n := len(h.byIdentity)
	h.mu.Unlock()

	metrics.PresenceConnections.Set(float64(n))
	h.log.Debug().Str("identity", identityID).Int("online", n).Msg("session registered")

	h.Broadcast(Event{
		Event: EventUserStatus,
		Data:  userStatusPayload{UserID: identityID, Status: string(domain.StatusOnline)},
	})
}

// Unregister removes the identity owning the session (reverse lookup) and
// broadcasts offline status. A stale session that has already been replaced
// by a newer one drops silently without touching the current binding.
func (h *Hub) Unregister(sess Session) (string, bool) {
	h.mu.Lock()
	identityID, ok := h.identities[sess]
	if !ok {
		h.mu.Unlock()
		return "", false
	}
	delete(h.identities, sess)
	current := h.byIdentity[identityID] == sess
	if current {
		delete(h.byIdentity, identityID)
	}
	n := len(h.byIdentity)
	h.mu.Unlock()

	if !current {
		return "", false
	}

	metrics.PresenceConnections.Set(float64(n))
	h.log.Debug().Str("identity", identityID).Int("online", n).Msg("session unregistered")

	h.Broadcast(Event{
		Event: EventUserStatus,
		Data:  userStatusPayload{UserID: identityID, Status: string(domain.StatusOffline)},
	})
	return identityID, true
}

// Lookup returns the live session for an identity, if any.
func (h *Hub) Lookup(identityID string) (Session, bool) {
	h.mu.Lock()
	sess, ok := h.byIdentity[identityID]
	h.mu.Unlock()
	return sess, ok
}

// Broadcast fans an event out to every registered session, best-effort.
// Events to sessions with full buffers are dropped.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	sessions := make([]Session, 0, len(h.identities))
	for sess := range h.identities {
		sessions = append(sessions, sess)
	}
	h.mu.Unlock()

	for _, sess := range sessions {
		if !sess.Enqueue(ev) {
			h.log.Warn().Str("event", ev.Event).Msg("dropping broadcast to slow session")
		}
	}
}
