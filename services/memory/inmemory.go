package memory

import (
	"context"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/customeros/mailagent/internal/models"
)

// InMemoryStore keeps threads for the lifetime of the process.
type InMemoryStore struct {
	mu      sync.RWMutex
	threads map[string][]*models.ConversationMessage
	now     func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		threads: make(map[string][]*models.ConversationMessage),
		now:     time.Now,
	}
}

func (s *InMemoryStore) History(_ context.Context, threadID string, limit int) ([]*models.ConversationMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread := s.threads[threadID]
	if limit > 0 && len(thread) > limit {
		thread = thread[len(thread)-limit:]
	}

	history := make([]*models.ConversationMessage, 0, len(thread))
	for _, m := range thread {
		copied := *m
		history = append(history, &copied)
	}
	return history, nil
}

func (s *InMemoryStore) Append(_ context.Context, messages ...*models.ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range messages {
		if m == nil {
			continue
		}
		stored := *m
		if stored.ID == "" {
			stored.ID = gonanoid.Must()
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = s.now()
		}
		s.threads[stored.ThreadID] = append(s.threads[stored.ThreadID], &stored)
	}
	return nil
}
