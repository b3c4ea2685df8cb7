package handlers

import (
  "strconv"
  "github.com/gin-gonic/gin"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/requestdata"
  "github.com/shiftline/shiftline-backend/internal/services"
)

type ChatHandler struct {
  log  *logger.Logger
  chat services.ChatService
}

func NewChatHandler(log *logger.Logger, chat services.ChatService) *ChatHandler {
  return &ChatHandler{
    log:  log.With("handler", "ChatHandler"),
    chat: chat,
  }
}

type sendChatRequest struct {
  Message string `json:"message" binding:"required"`
}

func (h *ChatHandler) Send(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req sendChatRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  reply, err := h.chat.Send(c.Request.Context(), rd.RestaurantID, rd.UserID, req.Message)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, reply)
}

func (h *ChatHandler) History(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
  messages, err := h.chat.History(c.Request.Context(), rd.RestaurantID, rd.UserID, limit)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, messages)
}
