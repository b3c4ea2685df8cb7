package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/requestdata"
  "github.com/shiftline/shiftline-backend/internal/services"
)

type UserHandler struct {
  log   *logger.Logger
  users services.UserService
}

func NewUserHandler(log *logger.Logger, users services.UserService) *UserHandler {
  return &UserHandler{
    log:   log.With("handler", "UserHandler"),
    users: users,
  }
}

func (h *UserHandler) Me(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  user, err := h.users.GetByID(c.Request.Context(), rd.UserID)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, user)
}

type updateProfileRequest struct {
  FirstName string `json:"first_name"`
  LastName  string `json:"last_name"`
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req updateProfileRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  user, err := h.users.UpdateProfile(c.Request.Context(), rd.UserID, req.FirstName, req.LastName)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, user)
}

func (h *UserHandler) RegenerateAvatar(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  user, err := h.users.RegenerateAvatar(c.Request.Context(), rd.UserID)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, user)
}
