package realtime

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// recordingSession collects enqueued events for assertions.
type recordingSession struct {
	mu     sync.Mutex
	events []Event
	full   bool
}

func (s *recordingSession) Enqueue(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	s.events = append(s.events, ev)
	return true
}

func (s *recordingSession) received() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func (s *recordingSession) lastEvent(t *testing.T) Event {
	t.Helper()
	evs := s.received()
	if len(evs) == 0 {
		t.Fatal("no events received")
	}
	return evs[len(evs)-1]
}

func countEvents(evs []Event, name string) int {
	n := 0
	for _, ev := range evs {
		if ev.Event == name {
			n++
		}
	}
	return n
}

func TestHubRegisterAndLookup(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sess := &recordingSession{}

	hub.Register("user-a", sess)

	got, ok := hub.Lookup("user-a")
	if !ok || got != sess {
		t.Fatal("Lookup() did not return the registered session")
	}
	if _, ok := hub.Lookup("user-b"); ok {
		t.Error("Lookup() found a session for an unregistered identity")
	}

	// Registration broadcasts online status to registered sessions.
	last := sess.lastEvent(t)
	if last.Event != EventUserStatus {
		t.Errorf("broadcast event = %s, want %s", last.Event, EventUserStatus)
	}
}

func TestHubLatestConnectionWins(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	first := &recordingSession{}
	second := &recordingSession{}

	hub.Register("user-a", first)
	hub.Register("user-a", second)

	got, ok := hub.Lookup("user-a")
	if !ok || got != second {
		t.Fatal("Lookup() should return the newest session for the identity")
	}

	// The replaced session no longer receives broadcasts.
	before := len(first.received())
	hub.Broadcast(Event{Event: EventUserStatus})
	if len(first.received()) != before {
		t.Error("stale session still receiving broadcasts")
	}
	if countEvents(second.received(), EventUserStatus) == 0 {
		t.Error("current session missed the broadcast")
	}
}

func TestHubStaleUnregisterIsNoOp(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	first := &recordingSession{}
	second := &recordingSession{}

	hub.Register("user-a", first)
	hub.Register("user-a", second)

	// The stale session disconnecting must not evict the newer binding.
	if _, ok := hub.Unregister(first); ok {
		t.Error("stale Unregister() reported a removal")
	}
	if _, ok := hub.Lookup("user-a"); !ok {
		t.Fatal("current session was evicted by a stale unregister")
	}

	id, ok := hub.Unregister(second)
	if !ok || id != "user-a" {
		t.Errorf("Unregister() = (%q, %v), want (user-a, true)", id, ok)
	}
	if _, ok := hub.Lookup("user-a"); ok {
		t.Error("identity still registered after its current session left")
	}
}

func TestHubUnregisterUnknownSession(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	if _, ok := hub.Unregister(&recordingSession{}); ok {
		t.Error("Unregister() of a never-registered session reported a removal")
	}
}

func TestHubBroadcastReachesAllSessions(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	a := &recordingSession{}
	b := &recordingSession{}
	hub.Register("user-a", a)
	hub.Register("user-b", b)

	hub.Broadcast(Event{Event: EventMessageStatusUpdate})

	for name, sess := range map[string]*recordingSession{"a": a, "b": b} {
		if countEvents(sess.received(), EventMessageStatusUpdate) != 1 {
			t.Errorf("session %s did not receive the broadcast exactly once", name)
		}
	}
}

func TestHubBroadcastDropsOnFullSession(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	slow := &recordingSession{full: true}
	fast := &recordingSession{}
	hub.Register("user-a", slow)
	hub.Register("user-b", fast)

	hub.Broadcast(Event{Event: EventMessageStatusUpdate})

	if countEvents(fast.received(), EventMessageStatusUpdate) != 1 {
		t.Error("healthy session should still receive the broadcast")
	}
}
