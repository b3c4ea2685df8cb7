package services

import (
  "context"
  "fmt"
  "sort"
  "strings"
  "github.com/google/uuid"
  "github.com/jackc/pgx/v5/pgxpool"
  "github.com/pgvector/pgvector-go"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/normalization"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/types"
)

const (
  // Matches below this cosine similarity are dropped.
  similarityThreshold = 0.3

  // Cap on how many chunks the in-process scan will score per query.
  linearScanRowCap = 1000

  defaultSearchLimit = 10
)

type SearchMatch struct {
  ChunkID    uuid.UUID `json:"chunk_id"`
  SourceType string    `json:"source_type"`
  SourceID   uuid.UUID `json:"source_id"`
  ShiftDate  string    `json:"shift_date"`
  Text       string    `json:"text"`
  Similarity float64   `json:"similarity"`

  // Data carries the parent row (shift log, summary or memo). Summary
  // chunks are 500-word windows, so the full row adds real information.
  Data any `json:"data,omitempty"`
}

// VectorIndex answers nearest-neighbor queries over embedded chunks. The
// implementation is chosen once at startup: pgvector when the extension
// is available, otherwise an in-process scan.
type VectorIndex interface {
  Search(ctx context.Context, restaurantID uuid.UUID, queryVec []float32, limit int, threshold float64) ([]SearchMatch, error)
}

// ---- Linear scan ----

type LinearScanIndex struct {
  log       *logger.Logger
  chunkRepo repos.EmbeddingChunkRepo
}

func NewLinearScanIndex(log *logger.Logger, chunkRepo repos.EmbeddingChunkRepo) *LinearScanIndex {
  return &LinearScanIndex{
    log:       log.With("service", "LinearScanIndex"),
    chunkRepo: chunkRepo,
  }
}

func (idx *LinearScanIndex) Search(ctx context.Context, restaurantID uuid.UUID, queryVec []float32, limit int, threshold float64) ([]SearchMatch, error) {
  chunks, err := idx.chunkRepo.GetByRestaurantID(ctx, nil, restaurantID, linearScanRowCap)
  if err != nil {
    return nil, err
  }

  var matches []SearchMatch
  for _, c := range chunks {
    vec := parseEmbedding(c.Embedding)
    if vec == nil {
      continue
    }
    sim := cosine(queryVec, vec)
    if sim < threshold {
      continue
    }
    matches = append(matches, SearchMatch{
      ChunkID:    c.ID,
      SourceType: c.SourceType,
      SourceID:   c.SourceID,
      ShiftDate:  c.ShiftDate,
      Text:       c.Text,
      Similarity: sim,
    })
  }

  // Stable sort keeps insertion order for equal scores.
  sort.SliceStable(matches, func(i, j int) bool {
    return matches[i].Similarity > matches[j].Similarity
  })
  if limit > 0 && len(matches) > limit {
    matches = matches[:limit]
  }
  return matches, nil
}

// ---- Native pgvector ----

type NativeVectorIndex struct {
  log  *logger.Logger
  pool *pgxpool.Pool
}

func NewNativeVectorIndex(log *logger.Logger, pool *pgxpool.Pool) *NativeVectorIndex {
  return &NativeVectorIndex{
    log:  log.With("service", "NativeVectorIndex"),
    pool: pool,
  }
}

func (idx *NativeVectorIndex) Search(ctx context.Context, restaurantID uuid.UUID, queryVec []float32, limit int, threshold float64) ([]SearchMatch, error) {
  if limit <= 0 {
    limit = defaultSearchLimit
  }
  qv := pgvector.NewVector(queryVec)

  rows, err := idx.pool.Query(ctx, `
    SELECT id, source_type, source_id, shift_date, text, 1 - (embedding_vec <=> $1) AS similarity
    FROM embedding_chunks
    WHERE restaurant_id = $2
      AND embedding_vec IS NOT NULL
      AND 1 - (embedding_vec <=> $1) >= $3
    ORDER BY embedding_vec <=> $1
    LIMIT $4`,
    qv, restaurantID, threshold, limit,
  )
  if err != nil {
    return nil, fmt.Errorf("vector search query: %w", err)
  }
  defer rows.Close()

  var matches []SearchMatch
  for rows.Next() {
    var m SearchMatch
    if err := rows.Scan(&m.ChunkID, &m.SourceType, &m.SourceID, &m.ShiftDate, &m.Text, &m.Similarity); err != nil {
      return nil, err
    }
    matches = append(matches, m)
  }
  return matches, rows.Err()
}

// MirrorChunks copies the canonical JSONB embeddings of the given chunks
// into the vector column. The jsonb array text form is a valid pgvector
// literal, so the cast happens in SQL.
func (idx *NativeVectorIndex) MirrorChunks(ctx context.Context, chunkIDs []uuid.UUID) error {
  if len(chunkIDs) == 0 {
    return nil
  }
  _, err := idx.pool.Exec(ctx, `
    UPDATE embedding_chunks
    SET embedding_vec = embedding::text::vector
    WHERE id = ANY($1) AND embedding IS NOT NULL`,
    chunkIDs,
  )
  return err
}

// ---- Search service ----

type SearchService interface {
  Search(ctx context.Context, restaurantID uuid.UUID, query string, limit int) ([]SearchMatch, error)
}

type searchService struct {
  log          *logger.Logger
  ai           OpenAIClient
  index        VectorIndex
  shiftLogRepo repos.ShiftLogRepo
  memoRepo     repos.VoiceMemoRepo
  summaryRepo  repos.ShiftSummaryRepo
}

func NewSearchService(
  log *logger.Logger,
  ai OpenAIClient,
  index VectorIndex,
  shiftLogRepo repos.ShiftLogRepo,
  memoRepo repos.VoiceMemoRepo,
  summaryRepo repos.ShiftSummaryRepo,
) SearchService {
  return &searchService{
    log:          log.With("service", "SearchService"),
    ai:           ai,
    index:        index,
    shiftLogRepo: shiftLogRepo,
    memoRepo:     memoRepo,
    summaryRepo:  summaryRepo,
  }
}

func (s *searchService) Search(ctx context.Context, restaurantID uuid.UUID, query string, limit int) ([]SearchMatch, error) {
  query = normalization.ParseInputString(query)
  if strings.TrimSpace(query) == "" {
    return nil, NewEmptyInputError("query")
  }
  if limit <= 0 {
    limit = defaultSearchLimit
  }

  vecs, err := s.ai.Embed(ctx, []string{query})
  if err != nil {
    return nil, err
  }
  matches, err := s.index.Search(ctx, restaurantID, vecs[0], limit, similarityThreshold)
  if err != nil {
    return nil, err
  }
  s.hydrate(ctx, matches)
  return matches, nil
}

// hydrate attaches each match's parent row. A row that cannot be loaded
// (deleted since indexing, say) leaves the match text-only.
func (s *searchService) hydrate(ctx context.Context, matches []SearchMatch) {
  for i := range matches {
    m := &matches[i]
    var (
      data any
      err  error
    )
    switch m.SourceType {
    case types.ChunkSourceLog:
      data, err = s.shiftLogRepo.GetByID(ctx, nil, m.SourceID)
    case types.ChunkSourceMemo:
      data, err = s.memoRepo.GetByID(ctx, nil, m.SourceID)
    case types.ChunkSourceSummary:
      data, err = s.summaryRepo.GetByID(ctx, nil, m.SourceID)
    default:
      continue
    }
    if err != nil {
      s.log.Warn("Search match parent missing", "sourceType", m.SourceType, "sourceID", m.SourceID, "error", err)
      continue
    }
    m.Data = data
  }
}
