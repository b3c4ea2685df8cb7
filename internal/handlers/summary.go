package handlers

import (
  "strconv"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/requestdata"
  "github.com/shiftline/shiftline-backend/internal/services"
)

type SummaryHandler struct {
  log       *logger.Logger
  summaries services.SummaryService
}

func NewSummaryHandler(log *logger.Logger, summaries services.SummaryService) *SummaryHandler {
  return &SummaryHandler{
    log:       log.With("handler", "SummaryHandler"),
    summaries: summaries,
  }
}

type generateSummaryRequest struct {
  ShiftDate string `json:"shift_date" binding:"required"`
  ShiftType string `json:"shift_type" binding:"required"`
}

func (h *SummaryHandler) Generate(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req generateSummaryRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  summary, err := h.summaries.Generate(c.Request.Context(), rd.RestaurantID, req.ShiftDate, req.ShiftType)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, summary)
}

func (h *SummaryHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  shiftDate := c.Query("shift_date")
  shiftType := c.Query("shift_type")
  if shiftDate == "" || shiftType == "" {
    respondBadRequest(c, "shift_date and shift_type are required")
    return
  }
  summary, err := h.summaries.GetByShift(c.Request.Context(), rd.RestaurantID, shiftDate, shiftType)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, summary)
}

type toggleActionItemRequest struct {
  Completed *bool `json:"completed" binding:"required"`
}

func (h *SummaryHandler) ToggleActionItem(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  summaryID, err := uuid.Parse(c.Param("summaryID"))
  if err != nil {
    respondBadRequest(c, "invalid summary id")
    return
  }
  index, err := strconv.Atoi(c.Param("index"))
  if err != nil {
    respondBadRequest(c, "invalid action item index")
    return
  }
  var req toggleActionItemRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  summary, err := h.summaries.ToggleActionItem(c.Request.Context(), rd.RestaurantID, summaryID, index, *req.Completed)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, summary)
}

func (h *SummaryHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
  summaries, err := h.summaries.ListByRestaurant(c.Request.Context(), rd.RestaurantID, limit)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, summaries)
}
