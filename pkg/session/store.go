package session

import (
	"container/list"
	"sync"

	"github.com/google/uuid"

	"github.com/psundar/indium-chat/internal/models"
)

// Store is an in-memory map of session id to ordered conversation turns.
// Sessions live for the process lifetime but are bounded: when the session
// count exceeds MaxSessions the least recently used session is evicted, and
// each session keeps at most MaxTurns turns (oldest dropped first).
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*entry
	order       *list.List // front = most recently used
	maxSessions int
	maxTurns    int
}

type entry struct {
	turns []models.ConversationTurn
	elem  *list.Element
}

type Config struct {
	MaxSessions int
	MaxTurns    int
}

func NewStore(config Config) *Store {
	if config.MaxSessions <= 0 {
		config.MaxSessions = 1000
	}
	if config.MaxTurns <= 0 {
		config.MaxTurns = 200
	}
	return &Store{
		sessions:    make(map[string]*entry),
		order:       list.New(),
		maxSessions: config.MaxSessions,
		maxTurns:    config.MaxTurns,
	}
}

// NewID returns a fresh opaque session identifier.
func NewID() string {
	return uuid.NewString()
}

// GetOrCreate returns a snapshot copy of the session's turns, creating an
// empty session on first access.
func (s *Store) GetOrCreate(id string) []models.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(id)
	out := make([]models.ConversationTurn, len(e.turns))
	copy(out, e.turns)
	return out
}

// Get returns a snapshot copy of the session's turns without creating the
// session or promoting it in the eviction order. Nil for unknown ids.
func (s *Store) Get(id string) []models.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil
	}
	out := make([]models.ConversationTurn, len(e.turns))
	copy(out, e.turns)
	return out
}

// Append records a turn at the end of the session's history.
func (s *Store) Append(id, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(id)
	e.turns = append(e.turns, models.ConversationTurn{Role: role, Content: content})
	if len(e.turns) > s.maxTurns {
		e.turns = e.turns[len(e.turns)-s.maxTurns:]
	}
}

// touch returns the session entry, creating it and evicting the least
// recently used session if the cap is exceeded. Caller holds the lock.
func (s *Store) touch(id string) *entry {
	if e, ok := s.sessions[id]; ok {
		s.order.MoveToFront(e.elem)
		return e
	}

	e := &entry{}
	e.elem = s.order.PushFront(id)
	s.sessions[id] = e

	for len(s.sessions) > s.maxSessions {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.order.Remove(oldest)
		delete(s.sessions, oldest.Value.(string))
	}

	return e
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
