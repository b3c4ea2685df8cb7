package services

import (
  "context"
  "github.com/google/uuid"
  redisclient "github.com/shiftline/shiftline-backend/internal/clients/redis"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/sse"
)

// Notifier publishes restaurant-scoped events. With a redis bus attached
// the event fans out to every replica; without one it only reaches
// clients on this instance.
type Notifier interface {
  Notify(ctx context.Context, restaurantID uuid.UUID, event sse.SSEEvent, data any)
}

type notifier struct {
  log *logger.Logger
  hub *sse.SSEHub
  bus redisclient.SSEBus
}

func NewNotifier(log *logger.Logger, hub *sse.SSEHub, bus redisclient.SSEBus) Notifier {
  return &notifier{
    log: log.With("service", "Notifier"),
    hub: hub,
    bus: bus,
  }
}

func (n *notifier) Notify(ctx context.Context, restaurantID uuid.UUID, event sse.SSEEvent, data any) {
  msg := sse.SSEMessage{
    Channel: restaurantID.String(),
    Event:   event,
    Data:    data,
  }
  if n.bus != nil {
    if err := n.bus.Publish(ctx, msg); err != nil {
      n.log.Warn("Redis publish failed, broadcasting locally", "event", event, "error", err)
      n.hub.Broadcast(msg)
    }
    return
  }
  n.hub.Broadcast(msg)
}
