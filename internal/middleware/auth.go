package middleware

import (
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/requestdata"
  "github.com/shiftline/shiftline-backend/internal/services"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type AuthMiddleware struct {
  log        *logger.Logger
  auth       services.AuthService
  memberRepo repos.RestaurantMemberRepo
}

func NewAuthMiddleware(log *logger.Logger, auth services.AuthService, memberRepo repos.RestaurantMemberRepo) *AuthMiddleware {
  return &AuthMiddleware{
    log:        log.With("middleware", "AuthMiddleware"),
    auth:       auth,
    memberRepo: memberRepo,
  }
}

// RequireAuth validates the bearer token and stashes request data on the
// context for downstream handlers.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    header := c.GetHeader("Authorization")
    tokenString := ""
    if strings.HasPrefix(header, "Bearer ") {
      tokenString = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
    }
    // EventSource cannot set headers; allow token in query for SSE.
    if tokenString == "" {
      tokenString = strings.TrimSpace(c.Query("access_token"))
    }
    if tokenString == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
      return
    }

    userID, err := m.auth.ValidateAccessToken(tokenString)
    if err != nil {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
      return
    }

    rd := &requestdata.RequestData{
      TokenString: tokenString,
      UserID:      userID,
    }
    c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
    c.Next()
  }
}

// RequireMember checks that the authenticated user belongs to the
// restaurant in the route, optionally restricted to specific roles, and
// fills in the restaurant scope on the request data.
func (m *AuthMiddleware) RequireMember(roles ...string) gin.HandlerFunc {
  return func(c *gin.Context) {
    rd := requestdata.GetRequestData(c.Request.Context())
    if rd == nil {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
      return
    }

    restaurantID, err := uuid.Parse(c.Param("restaurantID"))
    if err != nil {
      c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid restaurant id"})
      return
    }

    member, err := m.memberRepo.Get(c.Request.Context(), nil, restaurantID, rd.UserID)
    if err != nil {
      c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not a member of this restaurant"})
      return
    }
    if len(roles) > 0 && !roleAllowed(member.Role, roles) {
      c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
      return
    }

    rd.RestaurantID = restaurantID
    rd.Role = member.Role
    c.Next()
  }
}

func roleAllowed(role string, allowed []string) bool {
  // owners can do anything a manager can
  for _, a := range allowed {
    if role == a {
      return true
    }
    if a == types.RoleManager && role == types.RoleOwner {
      return true
    }
  }
  return false
}
