package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/requestdata"
  "github.com/shiftline/shiftline-backend/internal/services"
)

type RestaurantHandler struct {
  log         *logger.Logger
  restaurants services.RestaurantService
}

func NewRestaurantHandler(log *logger.Logger, restaurants services.RestaurantService) *RestaurantHandler {
  return &RestaurantHandler{
    log:         log.With("handler", "RestaurantHandler"),
    restaurants: restaurants,
  }
}

type createRestaurantRequest struct {
  Name     string `json:"name" binding:"required"`
  Timezone string `json:"timezone"`
}

func (h *RestaurantHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req createRestaurantRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  restaurant, err := h.restaurants.Create(c.Request.Context(), rd.UserID, req.Name, req.Timezone)
  if err != nil {
    respondError(c, err)
    return
  }
  respondCreated(c, restaurant)
}

func (h *RestaurantHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  restaurants, err := h.restaurants.ListForUser(c.Request.Context(), rd.UserID)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, restaurants)
}

func (h *RestaurantHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  restaurant, err := h.restaurants.GetByID(c.Request.Context(), rd.RestaurantID)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, restaurant)
}

type linkToastRequest struct {
  RestaurantGUID string `json:"restaurant_guid" binding:"required"`
  ClientID       string `json:"client_id" binding:"required"`
  ClientSecret   string `json:"client_secret" binding:"required"`
}

func (h *RestaurantHandler) LinkToast(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req linkToastRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  if err := h.restaurants.LinkToast(c.Request.Context(), rd.RestaurantID, req.RestaurantGUID, req.ClientID, req.ClientSecret); err != nil {
    respondError(c, err)
    return
  }
  respondNoContent(c)
}

func (h *RestaurantHandler) ListMembers(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  members, err := h.restaurants.ListMembers(c.Request.Context(), rd.RestaurantID)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, members)
}

type updateMemberRoleRequest struct {
  Role string `json:"role" binding:"required"`
}

func (h *RestaurantHandler) UpdateMemberRole(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  memberUserID, err := uuid.Parse(c.Param("userID"))
  if err != nil {
    respondBadRequest(c, "invalid user id")
    return
  }
  var req updateMemberRoleRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  if err := h.restaurants.UpdateMemberRole(c.Request.Context(), rd.RestaurantID, memberUserID, req.Role); err != nil {
    respondError(c, err)
    return
  }
  respondNoContent(c)
}

func (h *RestaurantHandler) RemoveMember(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  memberUserID, err := uuid.Parse(c.Param("userID"))
  if err != nil {
    respondBadRequest(c, "invalid user id")
    return
  }
  if err := h.restaurants.RemoveMember(c.Request.Context(), rd.RestaurantID, memberUserID); err != nil {
    respondError(c, err)
    return
  }
  respondNoContent(c)
}

type pinRequest struct {
  Pin string `json:"pin" binding:"required"`
}

func (h *RestaurantHandler) SetPin(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req pinRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  if err := h.restaurants.SetMemberPin(c.Request.Context(), rd.RestaurantID, rd.UserID, req.Pin); err != nil {
    respondError(c, err)
    return
  }
  respondNoContent(c)
}

func (h *RestaurantHandler) VerifyPin(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req pinRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  if err := h.restaurants.VerifyMemberPin(c.Request.Context(), rd.RestaurantID, rd.UserID, req.Pin); err != nil {
    respondUnauthorized(c, "invalid pin")
    return
  }
  respondOK(c, gin.H{"valid": true})
}

type inviteRequest struct {
  Email string `json:"email" binding:"required"`
  Role  string `json:"role" binding:"required"`
}

func (h *RestaurantHandler) Invite(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req inviteRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  invitation, err := h.restaurants.Invite(c.Request.Context(), rd.RestaurantID, rd.UserID, req.Email, req.Role)
  if err != nil {
    respondError(c, err)
    return
  }
  respondCreated(c, invitation)
}

func (h *RestaurantHandler) ListInvitations(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  invitations, err := h.restaurants.ListInvitations(c.Request.Context(), rd.RestaurantID)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, invitations)
}

func (h *RestaurantHandler) RevokeInvitation(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  invitationID, err := uuid.Parse(c.Param("invitationID"))
  if err != nil {
    respondBadRequest(c, "invalid invitation id")
    return
  }
  if err := h.restaurants.RevokeInvitation(c.Request.Context(), rd.RestaurantID, invitationID); err != nil {
    respondError(c, err)
    return
  }
  respondNoContent(c)
}

type acceptInvitationRequest struct {
  Token string `json:"token" binding:"required"`
}

func (h *RestaurantHandler) AcceptInvitation(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req acceptInvitationRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  member, err := h.restaurants.AcceptInvitation(c.Request.Context(), rd.UserID, req.Token)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, member)
}
