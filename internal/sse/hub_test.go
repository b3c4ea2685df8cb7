package sse

import (
  "testing"
  "time"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
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

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
  t.Helper()
  select {
  case msg := <-ch:
    return msg
  case <-time.After(timeout):
    t.Fatalf("timed out waiting for SSE message")
  }
  return SSEMessage{}
}

func TestSSEHubBroadcastOrdering(t *testing.T) {
  hub := NewSSEHub(testLogger(t))
  channel := uuid.New().String()

  client := hub.NewSSEClient(uuid.New())
  hub.AddChannel(client, channel)

  hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventShiftLogCreated, Data: map[string]any{"seq": 1}})
  hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventSummaryGenerated, Data: map[string]any{"seq": 2}})

  first := recvMessage(t, client.Outbound, time.Second)
  second := recvMessage(t, client.Outbound, time.Second)
  if first.Event != SSEEventShiftLogCreated {
    t.Fatalf("first event: want=%s got=%s", SSEEventShiftLogCreated, first.Event)
  }
  if second.Event != SSEEventSummaryGenerated {
    t.Fatalf("second event: want=%s got=%s", SSEEventSummaryGenerated, second.Event)
  }
}

func TestSSEHubChannelIsolation(t *testing.T) {
  hub := NewSSEHub(testLogger(t))
  channelA := uuid.New().String()
  channelB := uuid.New().String()

  clientA := hub.NewSSEClient(uuid.New())
  hub.AddChannel(clientA, channelA)
  clientB := hub.NewSSEClient(uuid.New())
  hub.AddChannel(clientB, channelB)

  hub.Broadcast(SSEMessage{Channel: channelA, Event: SSEEventTaskCreated})

  msg := recvMessage(t, clientA.Outbound, time.Second)
  if msg.Channel != channelA {
    t.Fatalf("wrong channel: %s", msg.Channel)
  }
  select {
  case leaked := <-clientB.Outbound:
    t.Fatalf("client on other channel received %+v", leaked)
  case <-time.After(50 * time.Millisecond):
  }
}

func TestSSEHubDropsWhenBufferFull(t *testing.T) {
  hub := NewSSEHub(testLogger(t))
  channel := uuid.New().String()

  client := hub.NewSSEClient(uuid.New())
  hub.AddChannel(client, channel)

  // Nobody is draining Outbound; overflow must not block the broadcaster.
  done := make(chan struct{})
  go func() {
    defer close(done)
    for i := 0; i < cap(client.Outbound)+10; i++ {
      hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventTaskUpdated})
    }
  }()

  select {
  case <-done:
  case <-time.After(2 * time.Second):
    t.Fatalf("broadcast blocked on a full client buffer")
  }
  if len(client.Outbound) != cap(client.Outbound) {
    t.Fatalf("expected a full buffer, got %d/%d", len(client.Outbound), cap(client.Outbound))
  }
}

func TestSSEHubRemoveClient(t *testing.T) {
  hub := NewSSEHub(testLogger(t))
  channel := uuid.New().String()

  client := hub.NewSSEClient(uuid.New())
  hub.AddChannel(client, channel)
  hub.RemoveClient(client)

  hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventTaskCreated})
  select {
  case msg := <-client.Outbound:
    t.Fatalf("removed client received %+v", msg)
  case <-time.After(50 * time.Millisecond):
  }
}
