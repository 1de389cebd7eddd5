package http

import (
	"log/slog"
	"sync"

	"github.com/aretw0/roster/internal/logging"
	"github.com/aretw0/roster/pkg/domain"
	"github.com/google/uuid"
)

const subscriberBuffer = 16

// StreamEvent is one diff ready to be written to SSE clients.
type StreamEvent struct {
	Seq  uint64
	Diff *domain.StateDiff
	Data []byte // JSON encoding of Diff
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]chan StreamEvent // subscriber id -> channel
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]chan StreamEvent),
		logger:      logger,
	}
}

// Subscribe registers a client. The returned function unregisters it and
// closes the channel.
func (sm *StreamManager) Subscribe() (string, <-chan StreamEvent, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan StreamEvent, subscriberBuffer)
	sm.subscribers[id] = ch

	return id, ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[id]; ok {
			delete(sm.subscribers, id)
			close(ch)
		}
	}
}

// Len returns the number of connected subscribers.
func (sm *StreamManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends ev to every subscriber without blocking.
func (sm *StreamManager) Broadcast(ev StreamEvent) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for id, ch := range sm.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow client
			sm.logger.Warn("SSE: client buffer full, dropping diff", "subscriber_id", id, "seq", ev.Seq)
		}
	}
}
