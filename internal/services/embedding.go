package services

import (
  "context"
  "strings"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/types"
)

const embedBatchSize = 64

// EmbeddingService turns shift logs, memo transcripts and summaries into
// searchable chunks. Logs and memos embed as a single chunk; summaries
// are windowed first.
type EmbeddingService interface {
  IndexShiftLog(ctx context.Context, entry *types.ShiftLog) error
  IndexVoiceMemo(ctx context.Context, memo *types.VoiceMemo) error
  IndexSummary(ctx context.Context, summary *types.ShiftSummary) (int, error)
}

type embeddingService struct {
  log       *logger.Logger
  ai        OpenAIClient
  chunkRepo repos.EmbeddingChunkRepo
  mirror    VectorMirror
}

// VectorMirror copies freshly written embeddings into the pgvector column
// when native search is enabled. A nil mirror is a no-op.
type VectorMirror interface {
  MirrorChunks(ctx context.Context, chunkIDs []uuid.UUID) error
}

func NewEmbeddingService(log *logger.Logger, ai OpenAIClient, chunkRepo repos.EmbeddingChunkRepo, mirror VectorMirror) EmbeddingService {
  return &embeddingService{
    log:       log.With("service", "EmbeddingService"),
    ai:        ai,
    chunkRepo: chunkRepo,
    mirror:    mirror,
  }
}

func (s *embeddingService) IndexShiftLog(ctx context.Context, entry *types.ShiftLog) error {
  text := shiftLogEmbeddingText(entry.Content, entry.Category, entry.Urgent)
  if strings.TrimSpace(entry.Content) == "" {
    return NewEmptyInputError("shift log content")
  }
  return s.indexSingle(ctx, entry.RestaurantID, types.ChunkSourceLog, entry.ID, entry.ShiftDate, text)
}

func (s *embeddingService) IndexVoiceMemo(ctx context.Context, memo *types.VoiceMemo) error {
  if strings.TrimSpace(memo.Transcript) == "" {
    return NewEmptyInputError("voice memo transcript")
  }
  text := voiceMemoEmbeddingText(memo.Transcript, memo.Category)
  return s.indexSingle(ctx, memo.RestaurantID, types.ChunkSourceMemo, memo.ID, memo.ShiftDate, text)
}

func (s *embeddingService) indexSingle(ctx context.Context, restaurantID uuid.UUID, sourceType string, sourceID uuid.UUID, shiftDate, text string) error {
  vecs, err := s.ai.Embed(ctx, []string{text})
  if err != nil {
    return err
  }

  // Re-embedding the same source replaces its previous chunk.
  if err := s.chunkRepo.DeleteBySource(ctx, nil, sourceType, sourceID); err != nil {
    return err
  }
  chunk := types.EmbeddingChunk{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    SourceType:   sourceType,
    SourceID:     sourceID,
    ChunkIndex:   0,
    ShiftDate:    shiftDate,
    Text:         text,
    Embedding:    embeddingJSON(vecs[0]),
  }
  if err := s.chunkRepo.CreateBatch(ctx, nil, []types.EmbeddingChunk{chunk}); err != nil {
    return err
  }
  s.mirrorNew(ctx, []uuid.UUID{chunk.ID})
  return nil
}

// IndexSummary deletes the summary's previous chunks then embeds the new
// windows. Windows whose embedding call fails are skipped; the count of
// stored chunks is returned.
func (s *embeddingService) IndexSummary(ctx context.Context, summary *types.ShiftSummary) (int, error) {
  if strings.TrimSpace(summary.SummaryText) == "" {
    return 0, NewEmptyInputError("summary text")
  }
  windows := chunkSummaryText(summary.SummaryText)
  if len(windows) == 0 {
    return 0, NewEmptyInputError("summary text")
  }

  if err := s.chunkRepo.DeleteBySource(ctx, nil, types.ChunkSourceSummary, summary.ID); err != nil {
    return 0, err
  }

  var stored []types.EmbeddingChunk
  for start := 0; start < len(windows); start += embedBatchSize {
    end := start + embedBatchSize
    if end > len(windows) {
      end = len(windows)
    }
    batch := windows[start:end]

    vecs, err := s.ai.Embed(ctx, batch)
    if err != nil {
      s.log.Warn("Embedding batch failed, skipping windows",
        "summaryID", summary.ID,
        "windowStart", start,
        "windowCount", len(batch),
        "error", err,
      )
      continue
    }
    for i, vec := range vecs {
      stored = append(stored, types.EmbeddingChunk{
        ID:           uuid.New(),
        RestaurantID: summary.RestaurantID,
        SourceType:   types.ChunkSourceSummary,
        SourceID:     summary.ID,
        ChunkIndex:   start + i,
        ShiftDate:    summary.ShiftDate,
        Text:         batch[i],
        Embedding:    embeddingJSON(vec),
      })
    }
  }

  if len(stored) == 0 {
    return 0, nil
  }
  if err := s.chunkRepo.CreateBatch(ctx, nil, stored); err != nil {
    return 0, err
  }
  ids := make([]uuid.UUID, len(stored))
  for i := range stored {
    ids[i] = stored[i].ID
  }
  s.mirrorNew(ctx, ids)
  return len(stored), nil
}

func (s *embeddingService) mirrorNew(ctx context.Context, ids []uuid.UUID) {
  if s.mirror == nil || len(ids) == 0 {
    return
  }
  if err := s.mirror.MirrorChunks(ctx, ids); err != nil {
    s.log.Warn("Failed to mirror chunks into vector column", "error", err)
  }
}
