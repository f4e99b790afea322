package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psundar/indium-chat/internal/models"
)

func TestGetOrCreateUnknownID(t *testing.T) {
	s := NewStore(Config{})
	assert.Empty(t, s.GetOrCreate("fresh"))
	assert.Equal(t, 1, s.Len())
}

func TestAppendAndRead(t *testing.T) {
	s := NewStore(Config{})

	s.Append("a", models.RoleUser, "hello")
	s.Append("a", models.RoleAssistant, "hi there")

	turns := s.GetOrCreate("a")
	require.Len(t, turns, 2)
	assert.Equal(t, models.ConversationTurn{Role: models.RoleUser, Content: "hello"}, turns[0])
	assert.Equal(t, models.ConversationTurn{Role: models.RoleAssistant, Content: "hi there"}, turns[1])
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewStore(Config{})

	s.Append("a", models.RoleUser, "question for a")
	s.Append("b", models.RoleUser, "question for b")

	require.Len(t, s.GetOrCreate("a"), 1)
	assert.Equal(t, "question for a", s.GetOrCreate("a")[0].Content)
	assert.Equal(t, "question for b", s.GetOrCreate("b")[0].Content)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore(Config{})
	s.Append("a", models.RoleUser, "original")

	turns := s.GetOrCreate("a")
	turns[0].Content = "mutated"

	assert.Equal(t, "original", s.GetOrCreate("a")[0].Content)
}

func TestTurnCap(t *testing.T) {
	s := NewStore(Config{MaxTurns: 4})

	for i := 0; i < 10; i++ {
		s.Append("a", models.RoleUser, fmt.Sprintf("turn %d", i))
	}

	turns := s.GetOrCreate("a")
	require.Len(t, turns, 4)
	assert.Equal(t, "turn 6", turns[0].Content)
	assert.Equal(t, "turn 9", turns[3].Content)
}

func TestGetDoesNotCreate(t *testing.T) {
	s := NewStore(Config{})

	assert.Nil(t, s.Get("never-seen"))
	assert.Equal(t, 0, s.Len())

	s.Append("a", models.RoleUser, "hello")
	require.Len(t, s.Get("a"), 1)
	assert.Equal(t, 1, s.Len())
}

func TestGetDoesNotPromote(t *testing.T) {
	s := NewStore(Config{MaxSessions: 2})

	s.Append("a", models.RoleUser, "1")
	s.Append("b", models.RoleUser, "1")

	// A read must not move "a" ahead of "b" in the eviction order.
	s.Get("a")
	s.Append("c", models.RoleUser, "1")

	assert.Nil(t, s.Get("a"))
	assert.Len(t, s.Get("b"), 1)
	assert.Len(t, s.Get("c"), 1)
}

func TestLRUEviction(t *testing.T) {
	s := NewStore(Config{MaxSessions: 3})

	s.Append("a", models.RoleUser, "1")
	s.Append("b", models.RoleUser, "1")
	s.Append("c", models.RoleUser, "1")

	// Touch "a" so "b" becomes the least recently used.
	s.GetOrCreate("a")

	s.Append("d", models.RoleUser, "1")

	assert.Equal(t, 3, s.Len())
	assert.Len(t, s.GetOrCreate("a"), 1)
	assert.Len(t, s.GetOrCreate("c"), 1)
	assert.Len(t, s.GetOrCreate("d"), 1)
}

func TestEvictedSessionStartsEmpty(t *testing.T) {
	s := NewStore(Config{MaxSessions: 1})

	s.Append("a", models.RoleUser, "1")
	s.Append("b", models.RoleUser, "1")

	// "a" was evicted; reading it recreates an empty session.
	assert.Empty(t, s.GetOrCreate("a"))
}

func TestConcurrentAppends(t *testing.T) {
	s := NewStore(Config{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", n)
			for j := 0; j < 50; j++ {
				s.Append(id, models.RoleUser, "q")
				s.GetOrCreate(id)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, s.Len())
	for i := 0; i < 8; i++ {
		assert.Len(t, s.GetOrCreate(fmt.Sprintf("session-%d", i)), 50)
	}
}

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
