package services

import (
  "context"
  "strings"
  "testing"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/sse"
  "github.com/shiftline/shiftline-backend/internal/types"
)

func newShiftLogServiceForTest(t *testing.T, repo *fakeShiftLogRepo, chunkRepo *fakeChunkRepo, notifier Notifier) ShiftLogService {
  t.Helper()
  embedder := NewEmbeddingService(testLogger(t), &stubAI{}, chunkRepo, nil)
  return NewShiftLogService(testLogger(t), repo, chunkRepo, embedder, notifier)
}

func TestShiftLogCreateIndexesChunk(t *testing.T) {
  restaurantID := uuid.New()
  repo := &fakeShiftLogRepo{}
  chunkRepo := &fakeChunkRepo{}
  notifier := &recorderNotifier{}
  svc := newShiftLogServiceForTest(t, repo, chunkRepo, notifier)

  entry, err := svc.Create(context.Background(), restaurantID, uuid.New(), CreateShiftLogInput{
    ShiftDate: "2026-03-14",
    ShiftType: types.ShiftTypeClosing,
    Category:  types.LogCategoryEquipment,
    Content:   "  Ice machine   leaking again ",
    Urgent:    true,
  })
  if err != nil {
    t.Fatalf("Create: %v", err)
  }
  if entry.Content != "Ice machine leaking again" {
    t.Fatalf("content not normalized: %q", entry.Content)
  }

  if len(chunkRepo.chunks) != 1 {
    t.Fatalf("expected 1 chunk, got %d", len(chunkRepo.chunks))
  }
  chunk := chunkRepo.chunks[0]
  if chunk.SourceType != types.ChunkSourceLog || chunk.SourceID != entry.ID {
    t.Fatalf("chunk source: %+v", chunk)
  }
  if !strings.HasPrefix(chunk.Text, "[URGENT - equipment] ") {
    t.Fatalf("urgent chunk text: %q", chunk.Text)
  }

  if !notifier.saw(sse.SSEEventShiftLogCreated) {
    t.Fatalf("expected %s event, got %v", sse.SSEEventShiftLogCreated, notifier.events)
  }
}

func TestShiftLogCreateValidation(t *testing.T) {
  svc := newShiftLogServiceForTest(t, &fakeShiftLogRepo{}, &fakeChunkRepo{}, &recorderNotifier{})

  cases := []struct {
    name string
    in   CreateShiftLogInput
  }{
    {"blank content", CreateShiftLogInput{ShiftDate: "2026-03-14", ShiftType: types.ShiftTypeOpening, Content: "   "}},
    {"bad date", CreateShiftLogInput{ShiftDate: "March 14", ShiftType: types.ShiftTypeOpening, Content: "fine"}},
    {"bad shift type", CreateShiftLogInput{ShiftDate: "2026-03-14", ShiftType: "brunch", Content: "fine"}},
  }
  for _, tc := range cases {
    if _, err := svc.Create(context.Background(), uuid.New(), uuid.New(), tc.in); !IsEmptyInput(err) {
      t.Fatalf("%s: expected empty-input error, got %v", tc.name, err)
    }
  }
}

func TestShiftLogDeleteRemovesChunk(t *testing.T) {
  restaurantID := uuid.New()
  repo := &fakeShiftLogRepo{}
  chunkRepo := &fakeChunkRepo{}
  svc := newShiftLogServiceForTest(t, repo, chunkRepo, &recorderNotifier{})

  entry, err := svc.Create(context.Background(), restaurantID, uuid.New(), CreateShiftLogInput{
    ShiftDate: "2026-03-14",
    ShiftType: types.ShiftTypeOpening,
    Content:   "Walk-in temp drifting",
  })
  if err != nil {
    t.Fatalf("Create: %v", err)
  }

  if err := svc.Delete(context.Background(), restaurantID, entry.ID); err != nil {
    t.Fatalf("Delete: %v", err)
  }
  if len(repo.logs) != 0 {
    t.Fatalf("entry not deleted: %+v", repo.logs)
  }
  if len(chunkRepo.chunks) != 0 {
    t.Fatalf("chunk should be removed with its entry: %+v", chunkRepo.chunks)
  }
}

func TestShiftLogDeleteScopedToRestaurant(t *testing.T) {
  repo := &fakeShiftLogRepo{}
  svc := newShiftLogServiceForTest(t, repo, &fakeChunkRepo{}, &recorderNotifier{})

  entry, err := svc.Create(context.Background(), uuid.New(), uuid.New(), CreateShiftLogInput{
    ShiftDate: "2026-03-14",
    ShiftType: types.ShiftTypeOpening,
    Content:   "Quiet open",
  })
  if err != nil {
    t.Fatalf("Create: %v", err)
  }

  if err := svc.Delete(context.Background(), uuid.New(), entry.ID); !IsNotFound(err) {
    t.Fatalf("other restaurant should not delete the entry, got %v", err)
  }
  if len(repo.logs) != 1 {
    t.Fatalf("entry must survive a cross-restaurant delete: %d", len(repo.logs))
  }
}
