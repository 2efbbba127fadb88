package generation

import (
	"context"
	"fmt"
	"sync"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/strategy"
)

// Scripted replays a fixed sequence of replies. Used by tests and by local
// runs without an upstream endpoint.
type Scripted struct {
	mu      sync.Mutex
	replies []string
	next    int

	// Calls records every messages slice passed to Generate
	Calls [][]Message
}

func NewScripted(replies ...string) *Scripted {
	return &Scripted{replies: replies}
}

func (s *Scripted) Generate(ctx context.Context, messages []Message, personality strategy.Personality) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, messages)
	if s.next >= len(s.replies) {
		return "", fmt.Errorf("no scripted reply left")
	}
	reply := s.replies[s.next]
	s.next++
	return reply, nil
}
