package db

import (
  "context"
  "fmt"
  "github.com/jackc/pgx/v5/pgxpool"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
  "github.com/shiftline/shiftline-backend/internal/utils"
)

type PostgresService interface {
  DB() *gorm.DB
  Pool() *pgxpool.Pool
  VectorEnabled() bool
  AutoMigrateAll() error
  Close()
}

type postgresService struct {
  db            *gorm.DB
  pool          *pgxpool.Pool
  logger        *logger.Logger
  vectorEnabled bool
}

func NewPostgresService(log *logger.Logger) (PostgresService, error) {
  log = log.With("service", "PostgresService")

  host := utils.GetEnv("DB_HOST", "localhost", log)
  port := utils.GetEnv("DB_PORT", "5432", log)
  user := utils.GetEnv("DB_USER", "postgres", log)
  password := utils.GetEnv("DB_PASSWORD", "postgres", log)
  name := utils.GetEnv("DB_NAME", "shiftline", log)
  sslmode := utils.GetEnv("DB_SSLMODE", "disable", log)

  dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
    host, port, user, password, name, sslmode)

  gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    Logger: gormlogger.Default.LogMode(gormlogger.Silent),
  })
  if err != nil {
    return nil, fmt.Errorf("failed to connect to postgres: %w", err)
  }

  if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
    return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
  }

  // pgvector is optional. When it cannot be enabled we fall back to
  // scanning embeddings in process.
  vectorEnabled := false
  if utils.GetEnv("VECTOR_INDEX", "", log) != "scan" {
    if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS vector`).Error; err != nil {
      log.Warn("pgvector extension unavailable, falling back to linear scan", "error", err)
    } else {
      vectorEnabled = true
    }
  }

  pool, err := pgxpool.New(context.Background(), dsn)
  if err != nil {
    return nil, fmt.Errorf("failed to create pgx pool: %w", err)
  }

  svc := &postgresService{
    db:            gormDB,
    pool:          pool,
    logger:        log,
    vectorEnabled: vectorEnabled,
  }
  return svc, nil
}

func (s *postgresService) DB() *gorm.DB {
  return s.db
}

func (s *postgresService) Pool() *pgxpool.Pool {
  return s.pool
}

func (s *postgresService) VectorEnabled() bool {
  return s.vectorEnabled
}

func (s *postgresService) AutoMigrateAll() error {
  err := s.db.AutoMigrate(
    &types.User{},
    &types.UserToken{},
    &types.Restaurant{},
    &types.RestaurantMember{},
    &types.Invitation{},
    &types.ShiftLog{},
    &types.VoiceMemo{},
    &types.ShiftSummary{},
    &types.Task{},
    &types.EmbeddingChunk{},
    &types.ChatMessage{},
    &types.AICallLog{},
  )
  if err != nil {
    return fmt.Errorf("auto-migration failed: %w", err)
  }

  if s.vectorEnabled {
    if err := s.migrateVectorColumn(); err != nil {
      return err
    }
  }
  return nil
}

// embedDimensions is the dimensionality of the configured embedding
// model. The vector column has to match it, so deployments that change
// OPENAI_EMBED_MODEL must set OPENAI_EMBED_DIMENSIONS alongside.
func embedDimensions(log *logger.Logger) int {
  dims := utils.GetEnvAsInt("OPENAI_EMBED_DIMENSIONS", 1536, log)
  if dims <= 0 {
    return 1536
  }
  return dims
}

// migrateVectorColumn keeps the pgvector mirror of the JSONB embedding
// column in shape: a vector column plus an HNSW index for cosine search.
func (s *postgresService) migrateVectorColumn() error {
  stmts := []string{
    fmt.Sprintf(`ALTER TABLE embedding_chunks ADD COLUMN IF NOT EXISTS embedding_vec vector(%d)`, embedDimensions(s.logger)),
    `CREATE INDEX IF NOT EXISTS idx_embedding_chunks_vec ON embedding_chunks USING hnsw (embedding_vec vector_cosine_ops)`,
  }
  for _, stmt := range stmts {
    if err := s.db.Exec(stmt).Error; err != nil {
      return fmt.Errorf("vector column migration failed: %w", err)
    }
  }
  return nil
}

func (s *postgresService) Close() {
  s.pool.Close()
  sqlDB, err := s.db.DB()
  if err != nil {
    s.logger.Warn("Failed to get underlying sql.DB on close", "error", err)
    return
  }
  if err := sqlDB.Close(); err != nil {
    s.logger.Warn("Failed to close database connection", "error", err)
  }
}
