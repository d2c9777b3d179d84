package memory

import (
	"sync"

	"legal-llama/internal/domain"
)

type Store struct {
	mu            sync.Mutex
	conversations map[string][]domain.Message
}

func NewStore() *Store {
	return &Store{
		conversations: make(map[string][]domain.Message),
	}
}

func (s *Store) Add(sessionID string, msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[sessionID] = append(s.conversations[sessionID], msg)
}

// Messages returns a copy of the session history in insertion order.
func (s *Store) Messages(sessionID string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.conversations[sessionID]
	if len(history) == 0 {
		return nil
	}
	return append([]domain.Message(nil), history...)
}

func (s *Store) Exists(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conversations[sessionID]
	return ok
}
