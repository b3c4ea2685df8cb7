package server

import (
  "os"
  "time"
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
  "github.com/shiftline/shiftline-backend/internal/config"
  "github.com/shiftline/shiftline-backend/internal/handlers"
  "github.com/shiftline/shiftline-backend/internal/middleware"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type Handlers struct {
  Healthcheck *handlers.HealthcheckHandler
  Auth        *handlers.AuthHandler
  User        *handlers.UserHandler
  Restaurant  *handlers.RestaurantHandler
  ShiftLog    *handlers.ShiftLogHandler
  VoiceMemo   *handlers.VoiceMemoHandler
  Summary     *handlers.SummaryHandler
  Search      *handlers.SearchHandler
  Task        *handlers.TaskHandler
  Chat        *handlers.ChatHandler
  SSE         *handlers.SSEHandler
}

func NewRouter(cfg *config.Config, auth *middleware.AuthMiddleware, h Handlers) *gin.Engine {
  if cfg.Mode == "prod" || cfg.Mode == "production" {
    gin.SetMode(gin.ReleaseMode)
  }

  r := gin.New()
  r.Use(gin.Recovery())

  if os.Getenv("OTEL_ENABLED") == "true" {
    r.Use(otelgin.Middleware("shiftline-backend"))
  }

  r.Use(cors.New(cors.Config{
    AllowOrigins:     cfg.AllowedOrigins,
    AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
    AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
    ExposeHeaders:    []string{"Content-Length"},
    AllowCredentials: true,
    MaxAge:           12 * time.Hour,
  }))

  r.GET("/health", h.Healthcheck.Check)

  api := r.Group("/api")

  authGroup := api.Group("/auth")
  {
    authGroup.POST("/register", h.Auth.Register)
    authGroup.POST("/login", h.Auth.Login)
    authGroup.POST("/refresh", h.Auth.Refresh)
    authGroup.POST("/logout", h.Auth.Logout)
  }

  authed := api.Group("")
  authed.Use(auth.RequireAuth())
  {
    authed.GET("/me", h.User.Me)
    authed.PATCH("/me", h.User.UpdateMe)
    authed.POST("/me/avatar", h.User.RegenerateAvatar)

    authed.POST("/restaurants", h.Restaurant.Create)
    authed.GET("/restaurants", h.Restaurant.List)
    authed.POST("/invitations/accept", h.Restaurant.AcceptInvitation)

    authed.GET("/events", h.SSE.Stream)
  }

  // Everything below is scoped to one restaurant and requires membership.
  scoped := authed.Group("/restaurants/:restaurantID")
  scoped.Use(auth.RequireMember())
  {
    scoped.GET("", h.Restaurant.Get)
    scoped.GET("/members", h.Restaurant.ListMembers)
    scoped.PUT("/pin", h.Restaurant.SetPin)
    scoped.POST("/pin/verify", h.Restaurant.VerifyPin)

    scoped.GET("/shift-logs", h.ShiftLog.List)
    scoped.GET("/voice-memos", h.VoiceMemo.List)
    scoped.GET("/voice-memos/:memoID", h.VoiceMemo.Get)
    scoped.GET("/summaries", h.Summary.List)
    scoped.GET("/summaries/by-shift", h.Summary.Get)
    scoped.PATCH("/summaries/:summaryID/action-items/:index", h.Summary.ToggleActionItem)
    scoped.GET("/search", h.Search.Search)

    scoped.GET("/tasks", h.Task.List)
    scoped.POST("/tasks", h.Task.Create)
    scoped.PATCH("/tasks/:taskID", h.Task.Update)
    scoped.DELETE("/tasks/:taskID", h.Task.Delete)
    scoped.PUT("/tasks/reorder", h.Task.Reorder)

    scoped.POST("/chat", h.Chat.Send)
    scoped.GET("/chat/history", h.Chat.History)
  }

  // Writes to the operational record are manager-and-above.
  managed := authed.Group("/restaurants/:restaurantID")
  managed.Use(auth.RequireMember(types.RoleManager))
  {
    managed.POST("/toast", h.Restaurant.LinkToast)
    managed.PATCH("/members/:userID/role", h.Restaurant.UpdateMemberRole)
    managed.DELETE("/members/:userID", h.Restaurant.RemoveMember)

    managed.POST("/invitations", h.Restaurant.Invite)
    managed.GET("/invitations", h.Restaurant.ListInvitations)
    managed.DELETE("/invitations/:invitationID", h.Restaurant.RevokeInvitation)

    // Log entries are immutable once tagged; delete is for mislogged rows.
    managed.POST("/shift-logs", h.ShiftLog.Create)
    managed.DELETE("/shift-logs/:logID", h.ShiftLog.Delete)

    managed.POST("/voice-memos", h.VoiceMemo.Upload)
    managed.POST("/summaries/generate", h.Summary.Generate)
  }

  return r
}
