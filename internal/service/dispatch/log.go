package dispatch

import (
	"context"
	"sort"
	"sync"

	"artisanal-futures/internal/domain/dispatch"
)

// MessageLog keeps the transient dispatch state per broadcast scope. Append
// and upsert return the full state after the write so it can be published.
type MessageLog interface {
	AppendMessage(ctx context.Context, scope string, m dispatch.Message) ([]dispatch.Message, error)
	Messages(ctx context.Context, scope string) ([]dispatch.Message, error)
	UpsertLocation(ctx context.Context, scope string, loc dispatch.Location) ([]dispatch.Location, error)
	Locations(ctx context.Context, scope string) ([]dispatch.Location, error)
}

// MemoryLog is a process-local MessageLog. It is lost on restart and not
// shared between instances.
type MemoryLog struct {
	mu        sync.Mutex
	cap       int
	messages  map[string][]dispatch.Message
	locations map[string]map[string]dispatch.Location
}

func NewMemoryLog(capacity int) *MemoryLog {
	if capacity <= 0 {
		capacity = 500
	}
	return &MemoryLog{
		cap:       capacity,
		messages:  make(map[string][]dispatch.Message),
		locations: make(map[string]map[string]dispatch.Location),
	}
}

func (l *MemoryLog) AppendMessage(_ context.Context, scope string, m dispatch.Message) ([]dispatch.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := append(l.messages[scope], m)
	if len(msgs) > l.cap {
		msgs = append([]dispatch.Message(nil), msgs[len(msgs)-l.cap:]...)
	}
	l.messages[scope] = msgs

	return append([]dispatch.Message(nil), msgs...), nil
}

func (l *MemoryLog) Messages(_ context.Context, scope string) ([]dispatch.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]dispatch.Message{}, l.messages[scope]...), nil
}

func (l *MemoryLog) UpsertLocation(_ context.Context, scope string, loc dispatch.Location) ([]dispatch.Location, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	byUser, ok := l.locations[scope]
	if !ok {
		byUser = make(map[string]dispatch.Location)
		l.locations[scope] = byUser
	}
	byUser[loc.UserID] = loc

	return sortedLocations(byUser), nil
}

func (l *MemoryLog) Locations(_ context.Context, scope string) ([]dispatch.Location, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return sortedLocations(l.locations[scope]), nil
}

func sortedLocations(byUser map[string]dispatch.Location) []dispatch.Location {
	out := make([]dispatch.Location, 0, len(byUser))
	for _, loc := range byUser {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
