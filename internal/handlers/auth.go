package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/services"
)

type AuthHandler struct {
  log  *logger.Logger
  auth services.AuthService
}

func NewAuthHandler(log *logger.Logger, auth services.AuthService) *AuthHandler {
  return &AuthHandler{
    log:  log.With("handler", "AuthHandler"),
    auth: auth,
  }
}

type registerRequest struct {
  Email     string `json:"email" binding:"required"`
  Password  string `json:"password" binding:"required"`
  FirstName string `json:"first_name"`
  LastName  string `json:"last_name"`
}

func (h *AuthHandler) Register(c *gin.Context) {
  var req registerRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  user, tokens, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.FirstName, req.LastName)
  if err != nil {
    respondError(c, err)
    return
  }
  respondCreated(c, gin.H{"user": user, "tokens": tokens})
}

type loginRequest struct {
  Email    string `json:"email" binding:"required"`
  Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
  var req loginRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  user, tokens, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    respondUnauthorized(c, "invalid credentials")
    return
  }
  respondOK(c, gin.H{"user": user, "tokens": tokens})
}

type refreshRequest struct {
  RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
  var req refreshRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  tokens, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
  if err != nil {
    respondUnauthorized(c, "invalid refresh token")
    return
  }
  respondOK(c, tokens)
}

func (h *AuthHandler) Logout(c *gin.Context) {
  var req refreshRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
    respondError(c, err)
    return
  }
  respondNoContent(c)
}
