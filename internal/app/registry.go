package app

import (
	"context"
	"sync"
	"time"

	"quiz-duel-service/internal/domain"
)

// DefaultRoomTTL is how long an empty room survives before the maintenance sweep removes it.
const DefaultRoomTTL = time.Hour

// RoomStore abstracts where live rooms are kept. Implementations must not do network I/O.
type RoomStore interface {
	// Insert stores the room unless its code is already live and reports whether it did.
	Insert(room *domain.Room) bool
	Get(code string) (*domain.Room, bool)
	Delete(code string)
	List() []*domain.Room
}

// CodeReserver claims room codes across instances sharing a backend. It is only called
// outside the coordinator's serialized section.
type CodeReserver interface {
	// Reserve claims code for ownerID and reports false when another holder has it.
	Reserve(ctx context.Context, code, ownerID string) (bool, error)
	Release(ctx context.Context, code string) error
	// Refresh extends the claims of rooms that are still live.
	Refresh(ctx context.Context, codes []string) error
}

// Registry owns room creation, lookup and deletion.
type Registry struct {
	store RoomStore
	now   func() time.Time
	ttl   time.Duration

	codesMu sync.Mutex
	codes   CodeGenerator
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithCodeGenerator replaces the random code source.
func WithCodeGenerator(gen CodeGenerator) RegistryOption {
	return func(r *Registry) { r.codes = gen }
}

// WithRegistryClock is test-only for deterministic room ages.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// WithRoomTTL sets the idle threshold used by Expired.
func WithRoomTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func NewRegistry(store RoomStore, opts ...RegistryOption) *Registry {
	r := &Registry{
		store: store,
		codes: RandomCode,
		now:   time.Now,
		ttl:   DefaultRoomTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NextCode draws a candidate code. Safe to call from any goroutine.
func (r *Registry) NextCode() string {
	r.codesMu.Lock()
	defer r.codesMu.Unlock()
	return CanonicalCode(r.codes())
}

// Create registers a new Idle room under a fresh code, retrying on collision.
func (r *Registry) Create(ownerID, ownerName string) *domain.Room {
	return r.CreateWithCode(ownerID, ownerName, "")
}

// CreateWithCode tries the pre-reserved code first and falls back to fresh codes when it
// is empty or already live.
func (r *Registry) CreateWithCode(ownerID, ownerName, code string) *domain.Room {
	if code = CanonicalCode(code); code != "" {
		room := domain.NewRoom(code, ownerID, ownerName, r.now())
		if r.store.Insert(room) {
			return room
		}
	}
	for {
		room := domain.NewRoom(r.NextCode(), ownerID, ownerName, r.now())
		if r.store.Insert(room) {
			return room
		}
	}
}

// Lookup is case-insensitive.
func (r *Registry) Lookup(code string) (*domain.Room, error) {
	room, ok := r.store.Get(CanonicalCode(code))
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// Delete is idempotent.
func (r *Registry) Delete(code string) {
	r.store.Delete(CanonicalCode(code))
}

func (r *Registry) Stats() domain.Stats {
	st := domain.Stats{Timestamp: r.now()}
	for _, room := range r.store.List() {
		st.RoomCount++
		st.TotalPlayers += room.PlayerCount()
		if room.Round.IsActive() {
			st.ActiveRoundCount++
		}
	}
	return st
}

// Codes lists the live room codes.
func (r *Registry) Codes() []string {
	rooms := r.store.List()
	out := make([]string, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Code)
	}
	return out
}

// Expired lists rooms that have no players and are older than the TTL.
func (r *Registry) Expired() []*domain.Room {
	now := r.now()
	var out []*domain.Room
	for _, room := range r.store.List() {
		if room.Expired(now, r.ttl) {
			out = append(out, room)
		}
	}
	return out
}
