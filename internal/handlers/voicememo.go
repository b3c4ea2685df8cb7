package handlers

import (
  "net/http"
  "strconv"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/requestdata"
  "github.com/shiftline/shiftline-backend/internal/services"
)

const maxAudioUploadBytes = 64 << 20

type VoiceMemoHandler struct {
  log   *logger.Logger
  memos services.VoiceMemoService
}

func NewVoiceMemoHandler(log *logger.Logger, memos services.VoiceMemoService) *VoiceMemoHandler {
  return &VoiceMemoHandler{
    log:   log.With("handler", "VoiceMemoHandler"),
    memos: memos,
  }
}

// Upload takes multipart form data: an "audio" file plus shift fields.
func (h *VoiceMemoHandler) Upload(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())

  c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAudioUploadBytes)
  fileHeader, err := c.FormFile("audio")
  if err != nil {
    respondBadRequest(c, "audio file required")
    return
  }
  file, err := fileHeader.Open()
  if err != nil {
    respondBadRequest(c, "could not read audio file")
    return
  }
  defer file.Close()

  duration, _ := strconv.Atoi(c.PostForm("duration_secs"))
  memo, err := h.memos.Upload(c.Request.Context(), rd.RestaurantID, rd.UserID, services.UploadVoiceMemoInput{
    ShiftDate:    c.PostForm("shift_date"),
    ShiftType:    c.PostForm("shift_type"),
    Category:     c.PostForm("category"),
    Filename:     fileHeader.Filename,
    DurationSecs: duration,
    Audio:        file,
  })
  if err != nil {
    respondError(c, err)
    return
  }
  respondCreated(c, memo)
}

func (h *VoiceMemoHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  memoID, err := uuid.Parse(c.Param("memoID"))
  if err != nil {
    respondBadRequest(c, "invalid memo id")
    return
  }
  memo, err := h.memos.GetByID(c.Request.Context(), memoID)
  if err != nil || memo.RestaurantID != rd.RestaurantID {
    respondError(c, services.NewNotFoundError("voice memo", memoID.String()))
    return
  }
  respondOK(c, memo)
}

func (h *VoiceMemoHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())

  shiftDate := c.Query("shift_date")
  shiftType := c.Query("shift_type")
  if shiftDate != "" && shiftType != "" {
    memos, err := h.memos.ListByShift(c.Request.Context(), rd.RestaurantID, shiftDate, shiftType)
    if err != nil {
      respondError(c, err)
      return
    }
    respondOK(c, memos)
    return
  }

  limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
  memos, err := h.memos.ListRecent(c.Request.Context(), rd.RestaurantID, limit)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, memos)
}
