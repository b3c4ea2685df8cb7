package main

import (
  "context"
  "errors"
  "fmt"
  "net/http"
  "os"
  "os/signal"
  "syscall"
  "time"
  "github.com/shiftline/shiftline-backend/internal/clients/redis"
  "github.com/shiftline/shiftline-backend/internal/clients/sendgrid"
  "github.com/shiftline/shiftline-backend/internal/clients/toast"
  "github.com/shiftline/shiftline-backend/internal/config"
  "github.com/shiftline/shiftline-backend/internal/db"
  "github.com/shiftline/shiftline-backend/internal/handlers"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/middleware"
  "github.com/shiftline/shiftline-backend/internal/observability"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/server"
  "github.com/shiftline/shiftline-backend/internal/services"
  "github.com/shiftline/shiftline-backend/internal/sse"
)

func main() {
  // Logger
  log, err := logger.New(os.Getenv("APP_MODE"))
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Config
  cfg := config.Load(os.Getenv("CONFIG_PATH"), log)

  ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
  defer stop()

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  defer postgresService.Close()
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Error("Postgres auto migration failed", "error", err)
    os.Exit(1)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  restaurantRepo := repos.NewRestaurantRepo(thePG, log)
  memberRepo := repos.NewRestaurantMemberRepo(thePG, log)
  invitationRepo := repos.NewInvitationRepo(thePG, log)
  shiftLogRepo := repos.NewShiftLogRepo(thePG, log)
  voiceMemoRepo := repos.NewVoiceMemoRepo(thePG, log)
  summaryRepo := repos.NewShiftSummaryRepo(thePG, log)
  taskRepo := repos.NewTaskRepo(thePG, log)
  chunkRepo := repos.NewEmbeddingChunkRepo(thePG, log)
  chatMessageRepo := repos.NewChatMessageRepo(thePG, log)
  aiCallLogRepo := repos.NewAICallLogRepo(thePG, log)

  // SSE
  log.Info("Setting up SSE hub now...")
  sseHub := sse.NewSSEHub(log)

  // Redis fan-out is optional; without it events stay process-local.
  sseBus, err := redis.NewSSEBus(log)
  if err != nil {
    log.Warn("Redis SSE bus unavailable, events stay local", "error", err)
    sseBus = nil
  }
  if sseBus != nil {
    if err := sseBus.StartForwarder(ctx, sseHub.Broadcast); err != nil {
      log.Warn("Could not start SSE forwarder", "error", err)
    }
    defer sseBus.Close()
  }
  notifier := services.NewNotifier(log, sseHub, sseBus)

  // Clients
  toastClient := toast.NewClient(log)
  emailClient, err := sendgrid.NewFromEnv(log)
  if err != nil {
    log.Warn("Could not init sendgrid client, invites go out without email", "error", err)
    emailClient = nil
  }

  // Services
  log.Info("Setting up Services from main...")
  bucketService, err := services.NewBucketService(log)
  if err != nil {
    log.Warn("Could not init BucketService", "error", err)
  }
  openaiClient, err := services.NewOpenAIClient(log, aiCallLogRepo)
  if err != nil {
    log.Error("Could not init OpenAIClient", "error", err)
    os.Exit(1)
  }
  avatarService, err := services.NewAvatarService(log, bucketService)
  if err != nil {
    log.Error("Could not init AvatarService", "error", err)
    os.Exit(1)
  }
  speechService, err := services.NewSpeechProviderService(log)
  if err != nil {
    log.Warn("Could not init SpeechProviderService, voice memos will fail", "error", err)
  }

  var vectorIndex services.VectorIndex
  var vectorMirror services.VectorMirror
  if postgresService.VectorEnabled() {
    native := services.NewNativeVectorIndex(log, postgresService.Pool())
    vectorIndex = native
    vectorMirror = native
  } else {
    vectorIndex = services.NewLinearScanIndex(log, chunkRepo)
  }
  embeddingService := services.NewEmbeddingService(log, openaiClient, chunkRepo, vectorMirror)
  searchService := services.NewSearchService(log, openaiClient, vectorIndex, shiftLogRepo, voiceMemoRepo, summaryRepo)
  posMetricsService := services.NewPOSMetricsService(log, toastClient)

  authService, err := services.NewAuthService(log, userRepo, userTokenRepo, avatarService)
  if err != nil {
    log.Error("Could not init AuthService", "error", err)
    os.Exit(1)
  }
  userService := services.NewUserService(log, userRepo, avatarService)
  restaurantService := services.NewRestaurantService(log, restaurantRepo, memberRepo, invitationRepo, userRepo, avatarService, emailClient, notifier)
  shiftLogService := services.NewShiftLogService(log, shiftLogRepo, chunkRepo, embeddingService, notifier)
  voiceMemoService := services.NewVoiceMemoService(log, voiceMemoRepo, bucketService, speechService, embeddingService, notifier)
  summaryService := services.NewSummaryService(log, openaiClient, shiftLogRepo, voiceMemoRepo, summaryRepo, restaurantRepo, posMetricsService, embeddingService, notifier)
  taskService := services.NewTaskService(log, taskRepo, notifier)
  chatService := services.NewChatService(log, openaiClient, searchService, chatMessageRepo, notifier)

  voiceMemoService.StartWorker(ctx, time.Duration(cfg.WorkerInterval)*time.Second)

  // Tracing
  otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
    ServiceName: "shiftline-backend",
    Environment: cfg.Mode,
    Version:     os.Getenv("APP_VERSION"),
  })

  // Handlers
  log.Info("Setting up handlers from main...")
  h := server.Handlers{
    Healthcheck: handlers.NewHealthcheckHandler(),
    Auth:        handlers.NewAuthHandler(log, authService),
    User:        handlers.NewUserHandler(log, userService),
    Restaurant:  handlers.NewRestaurantHandler(log, restaurantService),
    ShiftLog:    handlers.NewShiftLogHandler(log, shiftLogService),
    VoiceMemo:   handlers.NewVoiceMemoHandler(log, voiceMemoService),
    Summary:     handlers.NewSummaryHandler(log, summaryService),
    Search:      handlers.NewSearchHandler(log, searchService),
    Task:        handlers.NewTaskHandler(log, taskService),
    Chat:        handlers.NewChatHandler(log, chatService),
    SSE:         handlers.NewSSEHandler(log, sseHub, memberRepo),
  }

  // Middleware + Router
  log.Info("Setting up router from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService, memberRepo)
  router := server.NewRouter(cfg, authMiddleware, h)

  srv := &http.Server{
    Addr:    ":" + cfg.Port,
    Handler: router,
  }

  go func() {
    log.Info("Server listening", "port", cfg.Port)
    if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
      log.Error("Server failed", "error", err)
      stop()
    }
  }()

  <-ctx.Done()
  log.Info("Shutting down...")

  shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
  defer cancel()
  if err := srv.Shutdown(shutdownCtx); err != nil {
    log.Warn("Server shutdown failed", "error", err)
  }
  if otelShutdown != nil {
    if err := otelShutdown(shutdownCtx); err != nil {
      log.Warn("Tracing shutdown failed", "error", err)
    }
  }
}
