package services

import (
  "context"
  "sync"
  "testing"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/sse"
)

func testLogger(t *testing.T) *logger.Logger {
  t.Helper()
  log, err := logger.New("dev")
  if err != nil {
    t.Fatalf("logger.New: %v", err)
  }
  t.Cleanup(log.Sync)
  return log
}

// stubAI satisfies OpenAIClient with canned responses.
type stubAI struct {
  embedFn    func(inputs []string) ([][]float32, error)
  completeFn func(system, user string) (string, error)
}

func (s *stubAI) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
  if s.embedFn != nil {
    return s.embedFn(inputs)
  }
  vecs := make([][]float32, len(inputs))
  for i := range inputs {
    vecs[i] = []float32{1, 0, 0}
  }
  return vecs, nil
}

func (s *stubAI) Complete(ctx context.Context, system, user string) (string, error) {
  if s.completeFn != nil {
    return s.completeFn(system, user)
  }
  return "ok", nil
}

// recorderNotifier captures every event for assertions.
type recorderNotifier struct {
  mu     sync.Mutex
  events []sse.SSEEvent
}

func (n *recorderNotifier) Notify(ctx context.Context, restaurantID uuid.UUID, event sse.SSEEvent, data any) {
  n.mu.Lock()
  defer n.mu.Unlock()
  n.events = append(n.events, event)
}

func (n *recorderNotifier) saw(event sse.SSEEvent) bool {
  n.mu.Lock()
  defer n.mu.Unlock()
  for _, e := range n.events {
    if e == event {
      return true
    }
  }
  return false
}
