package services

import (
  "context"
  "errors"
  "fmt"
  "io"
  "path"
  "strings"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/normalization"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/sse"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type UploadVoiceMemoInput struct {
  ShiftDate    string
  ShiftType    string
  Category     string
  Filename     string
  DurationSecs int
  Audio        io.Reader
}

type VoiceMemoService interface {
  Upload(ctx context.Context, restaurantID, authorID uuid.UUID, in UploadVoiceMemoInput) (*types.VoiceMemo, error)
  GetByID(ctx context.Context, id uuid.UUID) (*types.VoiceMemo, error)
  ListByShift(ctx context.Context, restaurantID uuid.UUID, shiftDate, shiftType string) ([]types.VoiceMemo, error)
  ListRecent(ctx context.Context, restaurantID uuid.UUID, limit int) ([]types.VoiceMemo, error)
  StartWorker(ctx context.Context, interval time.Duration)
}

type voiceMemoService struct {
  log      *logger.Logger
  repo     repos.VoiceMemoRepo
  bucket   BucketService
  speech   SpeechProviderService
  embedder EmbeddingService
  notifier Notifier
}

func NewVoiceMemoService(
  log *logger.Logger,
  repo repos.VoiceMemoRepo,
  bucket BucketService,
  speech SpeechProviderService,
  embedder EmbeddingService,
  notifier Notifier,
) VoiceMemoService {
  return &voiceMemoService{
    log:      log.With("service", "VoiceMemoService"),
    repo:     repo,
    bucket:   bucket,
    speech:   speech,
    embedder: embedder,
    notifier: notifier,
  }
}

// A memo is claimed at most this many times before it is marked failed.
const maxTranscribeAttempts = 3

var allowedAudioExts = map[string]string{
  ".wav":  "wav",
  ".mp3":  "mp3",
  ".m4a":  "m4a",
  ".flac": "flac",
  ".ogg":  "ogg",
  ".opus": "opus",
  ".webm": "webm",
}

func (s *voiceMemoService) Upload(ctx context.Context, restaurantID, authorID uuid.UUID, in UploadVoiceMemoInput) (*types.VoiceMemo, error) {
  shiftDate := normalization.ParseShiftDate(in.ShiftDate)
  if shiftDate == "" {
    return nil, NewEmptyInputError("shift date")
  }
  if !validShiftType(in.ShiftType) {
    return nil, NewEmptyInputError("shift type")
  }
  if in.Audio == nil {
    return nil, NewEmptyInputError("audio")
  }
  if s.bucket == nil {
    return nil, fmt.Errorf("audio storage is not configured")
  }
  ext := strings.ToLower(path.Ext(in.Filename))
  format, ok := allowedAudioExts[ext]
  if !ok {
    return nil, fmt.Errorf("unsupported audio format %q", ext)
  }
  category := in.Category
  if category == "" {
    category = types.LogCategoryGeneral
  }

  memoID := uuid.New()
  key := fmt.Sprintf("memos/%s/%s%s", restaurantID, memoID, ext)
  if err := s.bucket.UploadFile(ctx, key, in.Audio); err != nil {
    return nil, fmt.Errorf("audio upload: %w", err)
  }

  memo := &types.VoiceMemo{
    ID:             memoID,
    RestaurantID:   restaurantID,
    AuthorID:       authorID,
    ShiftDate:      shiftDate,
    ShiftType:      in.ShiftType,
    Category:       category,
    AudioObjectKey: key,
    AudioFormat:    format,
    DurationSecs:   in.DurationSecs,
    Status:         types.VoiceMemoStatusPending,
  }
  if err := s.repo.Create(ctx, nil, memo); err != nil {
    // keep the bucket clean when the row never landed
    if delErr := s.bucket.DeleteFile(ctx, key); delErr != nil {
      s.log.Warn("Failed to delete orphaned audio object", "key", key, "error", delErr)
    }
    return nil, err
  }

  s.notifier.Notify(ctx, restaurantID, sse.SSEEventVoiceMemoCreated, memo)
  return memo, nil
}

func (s *voiceMemoService) GetByID(ctx context.Context, id uuid.UUID) (*types.VoiceMemo, error) {
  memo, err := s.repo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, NewNotFoundError("voice memo", id.String())
  }
  return memo, nil
}

func (s *voiceMemoService) ListByShift(ctx context.Context, restaurantID uuid.UUID, shiftDate, shiftType string) ([]types.VoiceMemo, error) {
  shiftDate = normalization.ParseShiftDate(shiftDate)
  if shiftDate == "" {
    return nil, NewEmptyInputError("shift date")
  }
  return s.repo.ListByShift(ctx, nil, restaurantID, shiftDate, shiftType)
}

func (s *voiceMemoService) ListRecent(ctx context.Context, restaurantID uuid.UUID, limit int) ([]types.VoiceMemo, error) {
  return s.repo.ListByRestaurant(ctx, nil, restaurantID, limit)
}

// StartWorker runs the transcription loop until ctx is canceled. Each
// tick claims at most one pending memo; stale processing claims are
// requeued so a crashed worker cannot strand work.
func (s *voiceMemoService) StartWorker(ctx context.Context, interval time.Duration) {
  if interval <= 0 {
    interval = 5 * time.Second
  }
  go func() {
    ticker := time.NewTicker(interval)
    defer ticker.Stop()

    reclaim := time.NewTicker(time.Minute)
    defer reclaim.Stop()

    s.log.Info("Voice memo worker started", "interval", interval.String())
    for {
      select {
      case <-ctx.Done():
        s.log.Info("Voice memo worker stopping", "reason", ctx.Err())
        return
      case <-reclaim.C:
        if n, err := s.repo.ReleaseStaleClaims(ctx, 15*time.Minute); err != nil {
          s.log.Warn("Failed to release stale claims", "error", err)
        } else if n > 0 {
          s.log.Info("Requeued stale voice memos", "count", n)
        }
      case <-ticker.C:
        memo, err := s.repo.ClaimNextPending(ctx)
        if err != nil {
          if !errors.Is(err, gorm.ErrRecordNotFound) {
            s.log.Warn("Failed to claim pending memo", "error", err)
          }
          continue
        }
        s.process(ctx, memo)
      }
    }
  }()
}

func (s *voiceMemoService) process(ctx context.Context, memo *types.VoiceMemo) {
  slog := s.log.With("voiceMemoID", memo.ID, "restaurantID", memo.RestaurantID)

  fail := func(reason string, err error) {
    slog.Error("Voice memo transcription failed", "reason", reason, "error", err)
    memo.Status = types.VoiceMemoStatusFailed
    memo.FailReason = reason
    if uErr := s.repo.Update(ctx, nil, memo); uErr != nil {
      slog.Error("Failed to persist failed memo status", "error", uErr)
    }
    s.notifier.Notify(ctx, memo.RestaurantID, sse.SSEEventVoiceMemoFailed, map[string]any{
      "voice_memo_id": memo.ID,
      "reason":        reason,
    })
  }

  if memo.Attempts > maxTranscribeAttempts {
    fail("attempts_exhausted", fmt.Errorf("claimed %d times, giving up", memo.Attempts))
    return
  }

  if s.speech == nil || s.bucket == nil {
    fail("transcription_unavailable", fmt.Errorf("speech provider is not configured"))
    return
  }

  result, err := s.speech.TranscribeAudioGCS(ctx, s.bucket.GetGSURI(memo.AudioObjectKey), SpeechConfig{
    EnableAutomaticPunctuation: true,
  })
  if err != nil {
    fail("transcription", err)
    return
  }
  transcript := strings.TrimSpace(result.PrimaryText)
  if transcript == "" {
    fail("empty_transcript", NewEmptyInputError("transcript"))
    return
  }

  memo.Transcript = transcript
  memo.Status = types.VoiceMemoStatusCompleted
  memo.FailReason = ""
  if err := s.repo.Update(ctx, nil, memo); err != nil {
    fail("persist", err)
    return
  }

  if err := s.embedder.IndexVoiceMemo(ctx, memo); err != nil {
    slog.Warn("Voice memo indexing failed, transcript kept", "error", err)
  }

  slog.Info("Voice memo transcribed", "chars", len(transcript))
  s.notifier.Notify(ctx, memo.RestaurantID, sse.SSEEventVoiceMemoTranscribed, memo)
}
