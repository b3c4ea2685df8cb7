package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/shiftline/shiftline-backend/internal/services"
)

type apiError struct {
  Error string `json:"error"`
}

func respondOK(c *gin.Context, data any) {
  c.JSON(http.StatusOK, data)
}

func respondCreated(c *gin.Context, data any) {
  c.JSON(http.StatusCreated, data)
}

func respondNoContent(c *gin.Context) {
  c.Status(http.StatusNoContent)
}

func respondBadRequest(c *gin.Context, msg string) {
  c.JSON(http.StatusBadRequest, apiError{Error: msg})
}

func respondUnauthorized(c *gin.Context, msg string) {
  c.JSON(http.StatusUnauthorized, apiError{Error: msg})
}

// respondError maps service errors onto HTTP statuses: missing resources
// to 404, rejected input to 400, upstream provider failures to 502,
// everything else to 500.
func respondError(c *gin.Context, err error) {
  switch {
  case services.IsNotFound(err):
    c.JSON(http.StatusNotFound, apiError{Error: err.Error()})
  case services.IsEmptyInput(err):
    c.JSON(http.StatusBadRequest, apiError{Error: err.Error()})
  case services.IsProviderError(err):
    c.JSON(http.StatusBadGateway, apiError{Error: err.Error()})
  default:
    c.JSON(http.StatusInternalServerError, apiError{Error: err.Error()})
  }
}
