package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/requestdata"
  "github.com/shiftline/shiftline-backend/internal/sse"
)

type SSEHandler struct {
  log        *logger.Logger
  hub        *sse.SSEHub
  memberRepo repos.RestaurantMemberRepo
}

func NewSSEHandler(log *logger.Logger, hub *sse.SSEHub, memberRepo repos.RestaurantMemberRepo) *SSEHandler {
  return &SSEHandler{
    log:        log.With("handler", "SSEHandler"),
    hub:        hub,
    memberRepo: memberRepo,
  }
}

// Stream subscribes the caller to the event channel of one restaurant.
// Membership is checked before the stream opens.
func (h *SSEHandler) Stream(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())

  restaurantID, err := uuid.Parse(c.Query("restaurant_id"))
  if err != nil {
    respondBadRequest(c, "restaurant_id is required")
    return
  }
  if _, err := h.memberRepo.Get(c.Request.Context(), nil, restaurantID, rd.UserID); err != nil {
    respondUnauthorized(c, "not a member of this restaurant")
    return
  }

  client := h.hub.NewSSEClient(rd.UserID)
  h.hub.AddChannel(client, restaurantID.String())
  defer h.hub.CloseClient(client)

  h.hub.ServeHTTP(c.Writer, c.Request, client)
}
