package services

import (
  "context"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/normalization"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/sse"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type CreateShiftLogInput struct {
  ShiftDate string
  ShiftType string
  Category  string
  Content   string
  Urgent    bool
}

type ShiftLogService interface {
  Create(ctx context.Context, restaurantID, authorID uuid.UUID, in CreateShiftLogInput) (*types.ShiftLog, error)
  GetByID(ctx context.Context, id uuid.UUID) (*types.ShiftLog, error)
  ListByShift(ctx context.Context, restaurantID uuid.UUID, shiftDate, shiftType string) ([]types.ShiftLog, error)
  ListRecent(ctx context.Context, restaurantID uuid.UUID, limit int) ([]types.ShiftLog, error)
  Delete(ctx context.Context, restaurantID, id uuid.UUID) error
}

type shiftLogService struct {
  log       *logger.Logger
  repo      repos.ShiftLogRepo
  chunkRepo repos.EmbeddingChunkRepo
  embedder  EmbeddingService
  notifier  Notifier
}

func NewShiftLogService(log *logger.Logger, repo repos.ShiftLogRepo, chunkRepo repos.EmbeddingChunkRepo, embedder EmbeddingService, notifier Notifier) ShiftLogService {
  return &shiftLogService{
    log:       log.With("service", "ShiftLogService"),
    repo:      repo,
    chunkRepo: chunkRepo,
    embedder:  embedder,
    notifier:  notifier,
  }
}

func (s *shiftLogService) Create(ctx context.Context, restaurantID, authorID uuid.UUID, in CreateShiftLogInput) (*types.ShiftLog, error) {
  content := normalization.ParseInputString(in.Content)
  if content == "" {
    return nil, NewEmptyInputError("content")
  }
  shiftDate := normalization.ParseShiftDate(in.ShiftDate)
  if shiftDate == "" {
    return nil, NewEmptyInputError("shift date")
  }
  if !validShiftType(in.ShiftType) {
    return nil, NewEmptyInputError("shift type")
  }
  category := in.Category
  if category == "" {
    category = types.LogCategoryGeneral
  }

  entry := &types.ShiftLog{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    AuthorID:     authorID,
    ShiftDate:    shiftDate,
    ShiftType:    in.ShiftType,
    Category:     category,
    Content:      content,
    Urgent:       in.Urgent,
  }
  if err := s.repo.Create(ctx, nil, entry); err != nil {
    return nil, err
  }

  // Indexing is best-effort; the log is saved either way.
  if err := s.embedder.IndexShiftLog(ctx, entry); err != nil {
    s.log.Warn("Shift log indexing failed", "shiftLogID", entry.ID, "error", err)
  }

  s.notifier.Notify(ctx, restaurantID, sse.SSEEventShiftLogCreated, entry)
  return entry, nil
}

func (s *shiftLogService) GetByID(ctx context.Context, id uuid.UUID) (*types.ShiftLog, error) {
  entry, err := s.repo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, NewNotFoundError("shift log", id.String())
  }
  return entry, nil
}

func (s *shiftLogService) ListByShift(ctx context.Context, restaurantID uuid.UUID, shiftDate, shiftType string) ([]types.ShiftLog, error) {
  shiftDate = normalization.ParseShiftDate(shiftDate)
  if shiftDate == "" {
    return nil, NewEmptyInputError("shift date")
  }
  return s.repo.ListByShift(ctx, nil, restaurantID, shiftDate, shiftType)
}

func (s *shiftLogService) ListRecent(ctx context.Context, restaurantID uuid.UUID, limit int) ([]types.ShiftLog, error) {
  return s.repo.ListByRestaurant(ctx, nil, restaurantID, limit)
}

// Delete removes a mislogged entry along with its search chunk. Entries
// are otherwise immutable once tagged; there is no update path.
func (s *shiftLogService) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
  entry, err := s.repo.GetByID(ctx, nil, id)
  if err != nil || entry.RestaurantID != restaurantID {
    return NewNotFoundError("shift log", id.String())
  }
  if err := s.repo.Delete(ctx, nil, id); err != nil {
    return err
  }
  return s.chunkRepo.DeleteBySource(ctx, nil, types.ChunkSourceLog, id)
}

func validShiftType(t string) bool {
  switch t {
  case types.ShiftTypeOpening, types.ShiftTypeMid, types.ShiftTypeClosing:
    return true
  }
  return false
}
