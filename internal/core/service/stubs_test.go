package service

import (
	"context"
	"sync"

	"github.com/veilchat/chat-server/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stubs shared by the service tests
// ---------------------------------------------------------------------------

type stubIdentityRepo struct {
	mu         sync.Mutex
	identities map[string]*domain.Identity
	createErr  error
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{identities: make(map[string]*domain.Identity)}
}

func cloneIdentity(i *domain.Identity) *domain.Identity {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}

func (r *stubIdentityRepo) add(i *domain.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identities[i.ID] = cloneIdentity(i)
}

func (r *stubIdentityRepo) Create(_ context.Context, i *domain.Identity) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.identities {
		if existing.Email == i.Email {
			return domain.ErrUserExists
		}
	}
	r.identities[i.ID] = cloneIdentity(i)
	return nil
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.identities[id]; ok {
		return cloneIdentity(i), nil
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.identities {
		if i.Email == email {
			return cloneIdentity(i), nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) UpdateProfile(_ context.Context, id, username, email, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.identities[id]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	i.Username = username
	i.Email = email
	if hash != "" {
		i.CredentialHash = hash
	}
	return nil
}

func (r *stubIdentityRepo) UpdatePresence(_ context.Context, id string, status domain.PresenceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.identities[id]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	i.Status = status
	return nil
}

func (r *stubIdentityRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.identities)
}

type stubMessageRepo struct {
	mu        sync.Mutex
	messages  []*domain.Message
	insertErr error
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{}
}

func cloneMessage(m *domain.Message) *domain.Message {
	clone := *m
	clone.ReadBy = append([]string(nil), m.ReadBy...)
	clone.Reactions = append([]domain.Reaction(nil), m.Reactions...)
	return &clone
}

func (r *stubMessageRepo) Insert(_ context.Context, m *domain.Message) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, cloneMessage(m))
	return nil
}

func (r *stubMessageRepo) InsertBatch(_ context.Context, msgs []*domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.messages = append(r.messages, cloneMessage(m))
	}
	return nil
}

func (r *stubMessageRepo) FindByID(_ context.Context, id string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			return cloneMessage(m), nil
		}
	}
	return nil, domain.ErrMessageNotFound
}

func (r *stubMessageRepo) AddReader(_ context.Context, messageID, readerID string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID != messageID {
			continue
		}
		if !m.ReadByContains(readerID) {
			m.ReadBy = append(m.ReadBy, readerID)
		}
		return cloneMessage(m), nil
	}
	return nil, domain.ErrMessageNotFound
}

func (r *stubMessageRepo) ReplaceReaction(_ context.Context, messageID, reactorID, symbol string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID != messageID {
			continue
		}
		kept := m.Reactions[:0]
		for _, re := range m.Reactions {
			if re.ReactorID != reactorID {
				kept = append(kept, re)
			}
		}
		m.Reactions = kept
		if symbol != "" {
			m.Reactions = append(m.Reactions, domain.Reaction{ReactorID: reactorID, Symbol: symbol})
		}
		return cloneMessage(m), nil
	}
	return nil, domain.ErrMessageNotFound
}

func (r *stubMessageRepo) ListConversation(_ context.Context, userID, otherID string, page, limit int) ([]*domain.Message, error) {
	all, _ := r.ListByParticipant(context.Background(), userID)
	var conv []*domain.Message
	for _, m := range all {
		if (m.SenderID == userID && m.ReceiverID == otherID) || (m.SenderID == otherID && m.ReceiverID == userID) {
			conv = append(conv, m)
		}
	}
	start := (page - 1) * limit
	if start >= len(conv) {
		return nil, nil
	}
	end := start + limit
	if end > len(conv) {
		end = len(conv)
	}
	return conv[start:end], nil
}

func (r *stubMessageRepo) ListByParticipant(_ context.Context, userID string) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Message
	for _, m := range r.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, cloneMessage(m))
		}
	}
	// newest first, matching the mongo repository's sort
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *stubMessageRepo) CountByParticipant(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			n++
		}
	}
	return n, nil
}

type stubSettingsRepo struct {
	mu      sync.Mutex
	byOwner map[string]*domain.DuressSettings
}

func newStubSettingsRepo() *stubSettingsRepo {
	return &stubSettingsRepo{byOwner: make(map[string]*domain.DuressSettings)}
}

func (r *stubSettingsRepo) FindByOwner(_ context.Context, ownerID string) (*domain.DuressSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byOwner[ownerID]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, domain.ErrSettingsNotFound
}

func (r *stubSettingsRepo) Save(_ context.Context, s *domain.DuressSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *s
	r.byOwner[s.OwnerID] = &clone
	return nil
}

// stubGuard is a GenerationGuard with scriptable acquire results.
type stubGuard struct {
	denyAcquire bool
	acquireErr  error
	acquired    []string
	released    []string
}

func (g *stubGuard) Acquire(_ context.Context, decoyID string) (bool, error) {
	if g.acquireErr != nil {
		return false, g.acquireErr
	}
	if g.denyAcquire {
		return false, nil
	}
	g.acquired = append(g.acquired, decoyID)
	return true, nil
}

func (g *stubGuard) Release(_ context.Context, decoyID string) error {
	g.released = append(g.released, decoyID)
	return nil
}

// countingFabricator records Populate invocations and optionally writes a
// marker message so existence checks observe the generation.
type countingFabricator struct {
	messages *stubMessageRepo
	calls    int
}

func (f *countingFabricator) Populate(ctx context.Context, decoyID string, _ *domain.DuressSettings) error {
	f.calls++
	if f.messages != nil {
		return f.messages.Insert(ctx, &domain.Message{
			ID:         "synthetic-" + decoyID,
			SenderID:   decoyID,
			ReceiverID: "peer",
			Content:    "hello",
			Kind:       domain.KindText,
		})
	}
	return nil
}
