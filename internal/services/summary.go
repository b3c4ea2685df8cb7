package services

import (
  "context"
  "encoding/json"
  "fmt"
  "strings"
  "time"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/normalization"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/sse"
  "github.com/shiftline/shiftline-backend/internal/types"
)

const maxActionItems = 10

type SummaryService interface {
  Generate(ctx context.Context, restaurantID uuid.UUID, shiftDate, shiftType string) (*types.ShiftSummary, error)
  GetByShift(ctx context.Context, restaurantID uuid.UUID, shiftDate, shiftType string) (*types.ShiftSummary, error)
  ListByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit int) ([]types.ShiftSummary, error)
  ToggleActionItem(ctx context.Context, restaurantID, summaryID uuid.UUID, index int, completed bool) (*types.ShiftSummary, error)
}

type summaryService struct {
  log            *logger.Logger
  ai             OpenAIClient
  shiftLogRepo   repos.ShiftLogRepo
  voiceMemoRepo  repos.VoiceMemoRepo
  summaryRepo    repos.ShiftSummaryRepo
  restaurantRepo repos.RestaurantRepo
  posMetrics     POSMetricsService
  embedder       EmbeddingService
  notifier       Notifier
}

func NewSummaryService(
  log *logger.Logger,
  ai OpenAIClient,
  shiftLogRepo repos.ShiftLogRepo,
  voiceMemoRepo repos.VoiceMemoRepo,
  summaryRepo repos.ShiftSummaryRepo,
  restaurantRepo repos.RestaurantRepo,
  posMetrics POSMetricsService,
  embedder EmbeddingService,
  notifier Notifier,
) SummaryService {
  return &summaryService{
    log:            log.With("service", "SummaryService"),
    ai:             ai,
    shiftLogRepo:   shiftLogRepo,
    voiceMemoRepo:  voiceMemoRepo,
    summaryRepo:    summaryRepo,
    restaurantRepo: restaurantRepo,
    posMetrics:     posMetrics,
    embedder:       embedder,
    notifier:       notifier,
  }
}

// Generate builds (or rebuilds) the summary for one shift. Rebuilding
// overwrites the stored summary and replaces its search chunks.
func (s *summaryService) Generate(ctx context.Context, restaurantID uuid.UUID, shiftDate, shiftType string) (*types.ShiftSummary, error) {
  shiftDate = normalization.ParseShiftDate(shiftDate)
  if shiftDate == "" {
    return nil, NewEmptyInputError("shift date")
  }

  slog := s.log.With("restaurantID", restaurantID, "shiftDate", shiftDate, "shiftType", shiftType)

  progress := func(stage string) {
    s.notifier.Notify(ctx, restaurantID, sse.SSEEventSummaryProgress, map[string]any{
      "shift_date": shiftDate,
      "shift_type": shiftType,
      "stage":      stage,
    })
  }
  fail := func(reason string, err error) (*types.ShiftSummary, error) {
    slog.Error("Summary generation failed", "reason", reason, "error", err)
    s.notifier.Notify(ctx, restaurantID, sse.SSEEventSummaryFailed, map[string]any{
      "shift_date": shiftDate,
      "shift_type": shiftType,
      "reason":     reason,
    })
    return nil, err
  }

  progress("fetching")
  logs, err := s.shiftLogRepo.ListByShift(ctx, nil, restaurantID, shiftDate, shiftType)
  if err != nil {
    return fail("fetch_logs", err)
  }
  memos, err := s.voiceMemoRepo.ListByShift(ctx, nil, restaurantID, shiftDate, shiftType)
  if err != nil {
    return fail("fetch_memos", err)
  }
  transcribed := memos[:0]
  for _, m := range memos {
    if m.Status == types.VoiceMemoStatusCompleted && strings.TrimSpace(m.Transcript) != "" {
      transcribed = append(transcribed, m)
    }
  }
  if len(logs) == 0 && len(transcribed) == 0 {
    return fail("no_shift_data", NewNotFoundError("shift data",
      fmt.Sprintf("no logs or transcribed memos for %s %s", shiftDate, shiftType)))
  }

  progress("pos_metrics")
  restaurant, err := s.restaurantRepo.GetByID(ctx, nil, restaurantID)
  if err != nil {
    return fail("fetch_restaurant", err)
  }
  metrics := s.posMetrics.Fetch(ctx, restaurant, shiftDate)

  progress("generating")
  system, user := buildSummaryPrompt(restaurant.Name, shiftDate, shiftType, logs, transcribed, metrics)
  summaryText, err := s.ai.Complete(ctx, system, user)
  if err != nil {
    return fail("model_completion", err)
  }

  progress("extracting")
  items := parseActionItems(summaryText)

  now := time.Now()
  summary := &types.ShiftSummary{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    ShiftDate:    shiftDate,
    ShiftType:    shiftType,
    Status:       types.SummaryStatusCompleted,
    SummaryText:  summaryText,
    ActionItems:  mustJSON(items),
    POSMetrics:   mustJSON(metrics),
    GeneratedAt:  &now,
  }
  if err := s.summaryRepo.Upsert(ctx, nil, summary); err != nil {
    return fail("persist", err)
  }
  // The upsert may have kept an existing row's ID; re-read so chunk
  // bookkeeping points at the stored row.
  stored, err := s.summaryRepo.GetByShift(ctx, nil, restaurantID, shiftDate, shiftType)
  if err != nil {
    return fail("reload", err)
  }

  progress("embedding")
  chunkCount, err := s.embedder.IndexSummary(ctx, stored)
  if err != nil {
    slog.Warn("Summary chunk indexing failed, summary kept", "error", err)
  } else {
    slog.Info("Summary indexed", "chunks", chunkCount)
  }

  s.notifier.Notify(ctx, restaurantID, sse.SSEEventSummaryGenerated, map[string]any{
    "shift_date": shiftDate,
    "shift_type": shiftType,
    "summary_id": stored.ID,
  })
  return stored, nil
}

func (s *summaryService) GetByShift(ctx context.Context, restaurantID uuid.UUID, shiftDate, shiftType string) (*types.ShiftSummary, error) {
  summary, err := s.summaryRepo.GetByShift(ctx, nil, restaurantID, shiftDate, shiftType)
  if err != nil {
    return nil, NewNotFoundError("shift summary", fmt.Sprintf("%s %s", shiftDate, shiftType))
  }
  return summary, nil
}

func (s *summaryService) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit int) ([]types.ShiftSummary, error) {
  return s.summaryRepo.ListByRestaurant(ctx, nil, restaurantID, limit)
}

// ToggleActionItem flips one extracted follow-up's completed flag inside
// the summary's action_items JSON. The summary text and chunks are left
// untouched.
func (s *summaryService) ToggleActionItem(ctx context.Context, restaurantID, summaryID uuid.UUID, index int, completed bool) (*types.ShiftSummary, error) {
  summary, err := s.summaryRepo.GetByID(ctx, nil, summaryID)
  if err != nil || summary.RestaurantID != restaurantID {
    return nil, NewNotFoundError("shift summary", summaryID.String())
  }

  var items []types.ActionItem
  if len(summary.ActionItems) > 0 {
    if err := json.Unmarshal(summary.ActionItems, &items); err != nil {
      return nil, fmt.Errorf("decode action items: %w", err)
    }
  }
  if index < 0 || index >= len(items) {
    return nil, NewNotFoundError("action item", fmt.Sprintf("index %d", index))
  }

  items[index].Completed = completed
  summary.ActionItems = mustJSON(items)
  if err := s.summaryRepo.Update(ctx, nil, summary); err != nil {
    return nil, err
  }

  s.notifier.Notify(ctx, restaurantID, sse.SSEEventActionItemToggled, map[string]any{
    "summary_id": summary.ID,
    "index":      index,
    "completed":  completed,
  })
  return summary, nil
}

func buildSummaryPrompt(restaurantName, shiftDate, shiftType string, logs []types.ShiftLog, memos []types.VoiceMemo, metrics POSMetrics) (string, string) {
  system := "You are an operations assistant for a restaurant. Write a concise shift summary " +
    "for the next manager coming on duty. Cover staffing, equipment, inventory and incidents. " +
    "End with a section titled 'Action Items' listing concrete follow-ups as bullet points, " +
    "one per line starting with '- '. Mark anything time-critical with the word 'urgent'."

  var b strings.Builder
  fmt.Fprintf(&b, "Restaurant: %s\nShift: %s (%s)\n\n", restaurantName, shiftDate, shiftType)

  b.WriteString("Manager log entries:\n")
  for _, l := range logs {
    fmt.Fprintf(&b, "- %s\n", shiftLogEmbeddingText(l.Content, l.Category, l.Urgent))
  }
  if len(memos) > 0 {
    b.WriteString("\nVoice memo transcripts:\n")
    for _, m := range memos {
      fmt.Fprintf(&b, "- %s\n", voiceMemoEmbeddingText(m.Transcript, m.Category))
    }
  }

  if metrics.Linked {
    b.WriteString("\nPOS snapshot:\n")
    if metrics.Sales != nil {
      fmt.Fprintf(&b, "- Net sales $%.2f across %d orders (%d guests)\n",
        metrics.Sales.NetSales, metrics.Sales.OrderCount, metrics.Sales.GuestCount)
    }
    if metrics.Labor != nil {
      fmt.Fprintf(&b, "- Labor $%.2f over %.1f hours (%d employees)\n",
        metrics.Labor.LaborCost, metrics.Labor.LaborHours, metrics.Labor.EmployeeCount)
    }
    if metrics.Sales == nil && metrics.Labor == nil {
      b.WriteString("- POS data unavailable for this shift\n")
    }
  }

  return system, b.String()
}

// parseActionItems pulls bullet lines out of generated summary text.
// Section headings that merely say "action items" are skipped, a bullet
// containing "urgent" is marked high urgency, and the list caps at
// maxActionItems.
func parseActionItems(summaryText string) []types.ActionItem {
  var items []types.ActionItem
  for _, line := range strings.Split(summaryText, "\n") {
    line = strings.TrimSpace(line)
    task, ok := stripBullet(line)
    if !ok {
      continue
    }
    task = strings.TrimSpace(task)
    if task == "" {
      continue
    }
    if strings.Contains(strings.ToLower(task), "action items") {
      continue
    }
    urgency := types.TaskUrgencyNormal
    if strings.Contains(strings.ToLower(task), "urgent") {
      urgency = types.TaskUrgencyHigh
    }
    items = append(items, types.ActionItem{
      Task:      task,
      Completed: false,
      Urgency:   urgency,
    })
    if len(items) == maxActionItems {
      break
    }
  }
  return items
}

func stripBullet(line string) (string, bool) {
  for _, prefix := range []string{"- ", "* ", "• "} {
    if strings.HasPrefix(line, prefix) {
      return line[len(prefix):], true
    }
  }
  // numbered bullets: "1. task", "12) task"
  for i := 0; i < len(line); i++ {
    c := line[i]
    if c >= '0' && c <= '9' {
      continue
    }
    if i > 0 && (c == '.' || c == ')') && i+1 < len(line) && line[i+1] == ' ' {
      return line[i+2:], true
    }
    break
  }
  return "", false
}
