package handlers

import (
  "strconv"
  "github.com/gin-gonic/gin"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/requestdata"
  "github.com/shiftline/shiftline-backend/internal/services"
)

type SearchHandler struct {
  log    *logger.Logger
  search services.SearchService
}

func NewSearchHandler(log *logger.Logger, search services.SearchService) *SearchHandler {
  return &SearchHandler{
    log:    log.With("handler", "SearchHandler"),
    search: search,
  }
}

func (h *SearchHandler) Search(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  query := c.Query("q")
  limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

  matches, err := h.search.Search(c.Request.Context(), rd.RestaurantID, query, limit)
  if err != nil {
    respondError(c, err)
    return
  }
  if matches == nil {
    matches = []services.SearchMatch{}
  }
  respondOK(c, gin.H{"results": matches})
}
