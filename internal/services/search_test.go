package services

import (
  "context"
  "testing"
  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type fakeChunkRepo struct {
  chunks []types.EmbeddingChunk
}

func (r *fakeChunkRepo) CreateBatch(ctx context.Context, tx *gorm.DB, chunks []types.EmbeddingChunk) error {
  r.chunks = append(r.chunks, chunks...)
  return nil
}

func (r *fakeChunkRepo) DeleteBySource(ctx context.Context, tx *gorm.DB, sourceType string, sourceID uuid.UUID) error {
  kept := r.chunks[:0]
  for _, c := range r.chunks {
    if c.SourceType != sourceType || c.SourceID != sourceID {
      kept = append(kept, c)
    }
  }
  r.chunks = kept
  return nil
}

func (r *fakeChunkRepo) GetByRestaurantID(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, limit int) ([]types.EmbeddingChunk, error) {
  var out []types.EmbeddingChunk
  for _, c := range r.chunks {
    if c.RestaurantID == restaurantID {
      out = append(out, c)
    }
    if limit > 0 && len(out) == limit {
      break
    }
  }
  return out, nil
}

func chunkWithVec(restaurantID uuid.UUID, text string, vec []float32) types.EmbeddingChunk {
  return types.EmbeddingChunk{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    SourceType:   types.ChunkSourceSummary,
    SourceID:     uuid.New(),
    ShiftDate:    "2026-03-14",
    Text:         text,
    Embedding:    embeddingJSON(vec),
  }
}

func TestLinearScanIndexThresholdAndOrder(t *testing.T) {
  restaurantID := uuid.New()
  repo := &fakeChunkRepo{chunks: []types.EmbeddingChunk{
    chunkWithVec(restaurantID, "exact", []float32{1, 0, 0}),
    chunkWithVec(restaurantID, "close", []float32{1, 0.3, 0}),
    chunkWithVec(restaurantID, "orthogonal", []float32{0, 1, 0}),
    chunkWithVec(restaurantID, "opposite", []float32{-1, 0, 0}),
    chunkWithVec(uuid.New(), "other restaurant", []float32{1, 0, 0}),
  }}

  idx := NewLinearScanIndex(testLogger(t), repo)
  matches, err := idx.Search(context.Background(), restaurantID, []float32{1, 0, 0}, 10, similarityThreshold)
  if err != nil {
    t.Fatalf("Search: %v", err)
  }
  if len(matches) != 2 {
    t.Fatalf("expected 2 matches above threshold, got %d", len(matches))
  }
  if matches[0].Text != "exact" || matches[1].Text != "close" {
    t.Fatalf("wrong order: %q then %q", matches[0].Text, matches[1].Text)
  }
  if matches[0].Similarity < matches[1].Similarity {
    t.Fatalf("similarity not descending: %f < %f", matches[0].Similarity, matches[1].Similarity)
  }
  if matches[0].ShiftDate != "2026-03-14" {
    t.Fatalf("shift date not carried through: %q", matches[0].ShiftDate)
  }
}

func TestLinearScanIndexLimit(t *testing.T) {
  restaurantID := uuid.New()
  repo := &fakeChunkRepo{}
  for i := 0; i < 5; i++ {
    repo.chunks = append(repo.chunks, chunkWithVec(restaurantID, "match", []float32{1, 0, 0}))
  }

  idx := NewLinearScanIndex(testLogger(t), repo)
  matches, err := idx.Search(context.Background(), restaurantID, []float32{1, 0, 0}, 3, similarityThreshold)
  if err != nil {
    t.Fatalf("Search: %v", err)
  }
  if len(matches) != 3 {
    t.Fatalf("expected limit of 3, got %d", len(matches))
  }
}

func TestLinearScanIndexSkipsBadEmbeddings(t *testing.T) {
  restaurantID := uuid.New()
  bad := chunkWithVec(restaurantID, "bad", nil)
  bad.Embedding = datatypes.JSON(`not json`)
  repo := &fakeChunkRepo{chunks: []types.EmbeddingChunk{
    bad,
    chunkWithVec(restaurantID, "good", []float32{1, 0, 0}),
  }}

  idx := NewLinearScanIndex(testLogger(t), repo)
  matches, err := idx.Search(context.Background(), restaurantID, []float32{1, 0, 0}, 10, similarityThreshold)
  if err != nil {
    t.Fatalf("Search: %v", err)
  }
  if len(matches) != 1 || matches[0].Text != "good" {
    t.Fatalf("bad embeddings should be skipped: %+v", matches)
  }
}

func TestSearchServiceEmptyQuery(t *testing.T) {
  svc := NewSearchService(testLogger(t), &stubAI{}, NewLinearScanIndex(testLogger(t), &fakeChunkRepo{}),
    &fakeShiftLogRepo{}, &fakeVoiceMemoRepo{}, &fakeSummaryRepo{})

  _, err := svc.Search(context.Background(), uuid.New(), "   \n\t ", 5)
  if err == nil {
    t.Fatalf("expected error for blank query")
  }
  if !IsEmptyInput(err) {
    t.Fatalf("expected empty-input error, got %T: %v", err, err)
  }
}

func TestSearchServiceEmbedsQuery(t *testing.T) {
  restaurantID := uuid.New()
  repo := &fakeChunkRepo{chunks: []types.EmbeddingChunk{
    chunkWithVec(restaurantID, "ice machine leaking", []float32{0, 1, 0}),
    chunkWithVec(restaurantID, "new hire schedule", []float32{1, 0, 0}),
  }}

  var embedded []string
  ai := &stubAI{embedFn: func(inputs []string) ([][]float32, error) {
    embedded = append(embedded, inputs...)
    return [][]float32{{0, 1, 0}}, nil
  }}
  svc := NewSearchService(testLogger(t), ai, NewLinearScanIndex(testLogger(t), repo),
    &fakeShiftLogRepo{}, &fakeVoiceMemoRepo{}, &fakeSummaryRepo{})

  matches, err := svc.Search(context.Background(), restaurantID, "  ice   machine ", 5)
  if err != nil {
    t.Fatalf("Search: %v", err)
  }
  if len(embedded) != 1 || embedded[0] != "ice machine" {
    t.Fatalf("query should be normalized before embedding: %v", embedded)
  }
  if len(matches) != 1 || matches[0].Text != "ice machine leaking" {
    t.Fatalf("unexpected matches: %+v", matches)
  }
}

func TestSearchServiceHydratesParentRows(t *testing.T) {
  restaurantID := uuid.New()
  entry := types.ShiftLog{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    ShiftDate:    "2026-03-14",
    Content:      "Ice machine leaking again, technician booked for Monday",
  }

  chunk := chunkWithVec(restaurantID, "ice machine leaking", []float32{1, 0, 0})
  chunk.SourceType = types.ChunkSourceLog
  chunk.SourceID = entry.ID
  missing := chunkWithVec(restaurantID, "deleted summary window", []float32{1, 0, 0})

  repo := &fakeChunkRepo{chunks: []types.EmbeddingChunk{chunk, missing}}
  svc := NewSearchService(testLogger(t), &stubAI{}, NewLinearScanIndex(testLogger(t), repo),
    &fakeShiftLogRepo{logs: []types.ShiftLog{entry}}, &fakeVoiceMemoRepo{}, &fakeSummaryRepo{})

  matches, err := svc.Search(context.Background(), restaurantID, "ice machine", 5)
  if err != nil {
    t.Fatalf("Search: %v", err)
  }
  if len(matches) != 2 {
    t.Fatalf("expected 2 matches, got %d", len(matches))
  }
  for _, m := range matches {
    switch m.SourceID {
    case entry.ID:
      parent, ok := m.Data.(*types.ShiftLog)
      if !ok {
        t.Fatalf("log match should carry the parent row, got %T", m.Data)
      }
      if parent.Content != entry.Content {
        t.Fatalf("parent row content: %q", parent.Content)
      }
    default:
      // Parent gone since indexing; the match stays text-only.
      if m.Data != nil {
        t.Fatalf("orphaned match should have no data, got %+v", m.Data)
      }
    }
  }
}
