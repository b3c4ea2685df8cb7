package handlers

import (
  "strconv"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/requestdata"
  "github.com/shiftline/shiftline-backend/internal/services"
)

type ShiftLogHandler struct {
  log       *logger.Logger
  shiftLogs services.ShiftLogService
}

func NewShiftLogHandler(log *logger.Logger, shiftLogs services.ShiftLogService) *ShiftLogHandler {
  return &ShiftLogHandler{
    log:       log.With("handler", "ShiftLogHandler"),
    shiftLogs: shiftLogs,
  }
}

type createShiftLogRequest struct {
  ShiftDate string `json:"shift_date" binding:"required"`
  ShiftType string `json:"shift_type" binding:"required"`
  Category  string `json:"category"`
  Content   string `json:"content" binding:"required"`
  Urgent    bool   `json:"urgent"`
}

func (h *ShiftLogHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req createShiftLogRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  entry, err := h.shiftLogs.Create(c.Request.Context(), rd.RestaurantID, rd.UserID, services.CreateShiftLogInput{
    ShiftDate: req.ShiftDate,
    ShiftType: req.ShiftType,
    Category:  req.Category,
    Content:   req.Content,
    Urgent:    req.Urgent,
  })
  if err != nil {
    respondError(c, err)
    return
  }
  respondCreated(c, entry)
}

func (h *ShiftLogHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())

  shiftDate := c.Query("shift_date")
  shiftType := c.Query("shift_type")
  if shiftDate != "" && shiftType != "" {
    entries, err := h.shiftLogs.ListByShift(c.Request.Context(), rd.RestaurantID, shiftDate, shiftType)
    if err != nil {
      respondError(c, err)
      return
    }
    respondOK(c, entries)
    return
  }

  limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
  entries, err := h.shiftLogs.ListRecent(c.Request.Context(), rd.RestaurantID, limit)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, entries)
}

func (h *ShiftLogHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  logID, err := uuid.Parse(c.Param("logID"))
  if err != nil {
    respondBadRequest(c, "invalid log id")
    return
  }
  if err := h.shiftLogs.Delete(c.Request.Context(), rd.RestaurantID, logID); err != nil {
    respondError(c, err)
    return
  }
  respondNoContent(c)
}
