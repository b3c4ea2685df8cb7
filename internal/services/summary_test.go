package services

import (
  "context"
  "encoding/json"
  "fmt"
  "strings"
  "testing"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/sse"
  "github.com/shiftline/shiftline-backend/internal/types"
)

func TestParseActionItems(t *testing.T) {
  text := strings.Join([]string{
    "The closing shift went smoothly overall.",
    "",
    "Action Items",
    "- Call the ice machine technician, urgent",
    "* Restock napkins before Friday",
    "• Review the new hire's schedule",
    "1. Submit the produce order",
    "2) Post the updated cleaning rota",
    "- ",
    "Not a bullet line",
  }, "\n")

  items := parseActionItems(text)
  if len(items) != 5 {
    t.Fatalf("expected 5 items, got %d: %+v", len(items), items)
  }
  if items[0].Task != "Call the ice machine technician, urgent" {
    t.Fatalf("first item: %q", items[0].Task)
  }
  if items[0].Urgency != types.TaskUrgencyHigh {
    t.Fatalf("item mentioning urgent should be high urgency, got %q", items[0].Urgency)
  }
  for _, it := range items[1:] {
    if it.Urgency != types.TaskUrgencyNormal {
      t.Fatalf("item %q: expected normal urgency, got %q", it.Task, it.Urgency)
    }
  }
  for _, it := range items {
    if it.Completed {
      t.Fatalf("item %q should start incomplete", it.Task)
    }
  }
}

func TestParseActionItemsSkipsHeadingBullets(t *testing.T) {
  items := parseActionItems("- Action Items:\n- Fix the door")
  if len(items) != 1 || items[0].Task != "Fix the door" {
    t.Fatalf("heading bullet should be skipped: %+v", items)
  }
}

func TestParseActionItemsCap(t *testing.T) {
  var b strings.Builder
  for i := 0; i < maxActionItems+5; i++ {
    fmt.Fprintf(&b, "- item %d\n", i)
  }
  items := parseActionItems(b.String())
  if len(items) != maxActionItems {
    t.Fatalf("expected cap of %d, got %d", maxActionItems, len(items))
  }
}

func TestParseActionItemsNoBullets(t *testing.T) {
  if items := parseActionItems("All quiet tonight. Nothing to follow up on."); len(items) != 0 {
    t.Fatalf("expected no items, got %+v", items)
  }
}

// ---- Generate flow ----

type fakeShiftLogRepo struct {
  repos.ShiftLogRepo
  logs []types.ShiftLog
}

func (r *fakeShiftLogRepo) ListByShift(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, shiftDate, shiftType string) ([]types.ShiftLog, error) {
  return r.logs, nil
}

func (r *fakeShiftLogRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ShiftLog, error) {
  for i := range r.logs {
    if r.logs[i].ID == id {
      return &r.logs[i], nil
    }
  }
  return nil, gorm.ErrRecordNotFound
}

func (r *fakeShiftLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.ShiftLog) error {
  r.logs = append(r.logs, *entry)
  return nil
}

func (r *fakeShiftLogRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  kept := r.logs[:0]
  for _, l := range r.logs {
    if l.ID != id {
      kept = append(kept, l)
    }
  }
  r.logs = kept
  return nil
}

type fakeVoiceMemoRepo struct {
  repos.VoiceMemoRepo
  memos []types.VoiceMemo
}

func (r *fakeVoiceMemoRepo) ListByShift(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, shiftDate, shiftType string) ([]types.VoiceMemo, error) {
  return r.memos, nil
}

func (r *fakeVoiceMemoRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.VoiceMemo, error) {
  for i := range r.memos {
    if r.memos[i].ID == id {
      return &r.memos[i], nil
    }
  }
  return nil, gorm.ErrRecordNotFound
}

func (r *fakeVoiceMemoRepo) Update(ctx context.Context, tx *gorm.DB, memo *types.VoiceMemo) error {
  for i := range r.memos {
    if r.memos[i].ID == memo.ID {
      r.memos[i] = *memo
      return nil
    }
  }
  r.memos = append(r.memos, *memo)
  return nil
}

type fakeSummaryRepo struct {
  repos.ShiftSummaryRepo
  stored *types.ShiftSummary
}

func (r *fakeSummaryRepo) Upsert(ctx context.Context, tx *gorm.DB, summary *types.ShiftSummary) error {
  if r.stored != nil {
    // Conflict keeps the original row identity.
    summary.ID = r.stored.ID
  }
  cp := *summary
  r.stored = &cp
  return nil
}

func (r *fakeSummaryRepo) GetByShift(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, shiftDate, shiftType string) (*types.ShiftSummary, error) {
  if r.stored == nil {
    return nil, gorm.ErrRecordNotFound
  }
  return r.stored, nil
}

func (r *fakeSummaryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ShiftSummary, error) {
  if r.stored == nil || r.stored.ID != id {
    return nil, gorm.ErrRecordNotFound
  }
  cp := *r.stored
  return &cp, nil
}

func (r *fakeSummaryRepo) Update(ctx context.Context, tx *gorm.DB, summary *types.ShiftSummary) error {
  cp := *summary
  r.stored = &cp
  return nil
}

type fakeRestaurantRepo struct {
  repos.RestaurantRepo
  restaurant *types.Restaurant
}

func (r *fakeRestaurantRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Restaurant, error) {
  return r.restaurant, nil
}

type stubPOSMetrics struct {
  metrics POSMetrics
}

func (s *stubPOSMetrics) Fetch(ctx context.Context, restaurant *types.Restaurant, businessDate string) POSMetrics {
  return s.metrics
}

type stubEmbedder struct {
  summaryChunks int
}

func (s *stubEmbedder) IndexShiftLog(ctx context.Context, entry *types.ShiftLog) error { return nil }

func (s *stubEmbedder) IndexVoiceMemo(ctx context.Context, memo *types.VoiceMemo) error { return nil }

func (s *stubEmbedder) IndexSummary(ctx context.Context, summary *types.ShiftSummary) (int, error) {
  s.summaryChunks++
  return 1, nil
}

func newSummaryServiceForTest(t *testing.T, ai OpenAIClient, logs []types.ShiftLog, memos []types.VoiceMemo, summaryRepo *fakeSummaryRepo, notifier Notifier) SummaryService {
  t.Helper()
  return NewSummaryService(
    testLogger(t),
    ai,
    &fakeShiftLogRepo{logs: logs},
    &fakeVoiceMemoRepo{memos: memos},
    summaryRepo,
    &fakeRestaurantRepo{restaurant: &types.Restaurant{ID: uuid.New(), Name: "Harbor Grill"}},
    &stubPOSMetrics{},
    &stubEmbedder{},
    notifier,
  )
}

func TestGenerateBuildsSummaryFromShiftData(t *testing.T) {
  restaurantID := uuid.New()
  logs := []types.ShiftLog{{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    ShiftDate:    "2026-03-14",
    ShiftType:    types.ShiftTypeClosing,
    Category:     types.LogCategoryEquipment,
    Content:      "Ice machine leaking again",
    Urgent:       true,
  }}
  memos := []types.VoiceMemo{
    {
      ID:           uuid.New(),
      RestaurantID: restaurantID,
      Status:       types.VoiceMemoStatusCompleted,
      Category:     types.LogCategoryStaffing,
      Transcript:   "Maria covered the bar, schedule her again Saturday",
    },
    {
      ID:           uuid.New(),
      RestaurantID: restaurantID,
      Status:       types.VoiceMemoStatusPending,
      Transcript:   "",
    },
  }

  var userPrompt string
  ai := &stubAI{completeFn: func(system, user string) (string, error) {
    userPrompt = user
    return "Rough close, ice machine is down.\n\nAction Items\n- Call the technician, urgent\n- Thank Maria for covering the bar", nil
  }}

  summaryRepo := &fakeSummaryRepo{}
  notifier := &recorderNotifier{}
  svc := newSummaryServiceForTest(t, ai, logs, memos, summaryRepo, notifier)

  summary, err := svc.Generate(context.Background(), restaurantID, "2026-03-14", types.ShiftTypeClosing)
  if err != nil {
    t.Fatalf("Generate: %v", err)
  }
  if summary.Status != types.SummaryStatusCompleted {
    t.Fatalf("status: %q", summary.Status)
  }
  if !strings.Contains(userPrompt, "[URGENT - equipment] Ice machine leaking again") {
    t.Fatalf("urgent log missing from prompt:\n%s", userPrompt)
  }
  if !strings.Contains(userPrompt, "Maria covered the bar") {
    t.Fatalf("transcribed memo missing from prompt:\n%s", userPrompt)
  }

  var items []types.ActionItem
  if err := json.Unmarshal(summary.ActionItems, &items); err != nil {
    t.Fatalf("decode action items: %v", err)
  }
  if len(items) != 2 {
    t.Fatalf("expected 2 action items, got %d", len(items))
  }
  if items[0].Urgency != types.TaskUrgencyHigh {
    t.Fatalf("first item should be high urgency: %+v", items[0])
  }

  if !notifier.saw(sse.SSEEventSummaryGenerated) {
    t.Fatalf("expected %s event, got %v", sse.SSEEventSummaryGenerated, notifier.events)
  }
}

func TestGenerateExcludesUntranscribedMemos(t *testing.T) {
  restaurantID := uuid.New()
  memos := []types.VoiceMemo{{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    Status:       types.VoiceMemoStatusPending,
    Transcript:   "should not appear",
  }}

  notifier := &recorderNotifier{}
  svc := newSummaryServiceForTest(t, &stubAI{}, nil, memos, &fakeSummaryRepo{}, notifier)

  _, err := svc.Generate(context.Background(), restaurantID, "2026-03-14", types.ShiftTypeOpening)
  if err == nil {
    t.Fatalf("expected error when only untranscribed memos exist")
  }
  if !IsNotFound(err) {
    t.Fatalf("expected not-found error, got %T: %v", err, err)
  }
  if !notifier.saw(sse.SSEEventSummaryFailed) {
    t.Fatalf("expected %s event, got %v", sse.SSEEventSummaryFailed, notifier.events)
  }
}

func TestGenerateRejectsBadShiftDate(t *testing.T) {
  svc := newSummaryServiceForTest(t, &stubAI{}, nil, nil, &fakeSummaryRepo{}, &recorderNotifier{})

  _, err := svc.Generate(context.Background(), uuid.New(), "March 14", types.ShiftTypeOpening)
  if !IsEmptyInput(err) {
    t.Fatalf("expected empty-input error for malformed date, got %v", err)
  }
}

func TestGenerateRegenerationKeepsRowIdentity(t *testing.T) {
  restaurantID := uuid.New()
  logs := []types.ShiftLog{{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    Content:      "Smooth open",
    Category:     types.LogCategoryGeneral,
  }}

  summaryRepo := &fakeSummaryRepo{}
  svc := newSummaryServiceForTest(t, &stubAI{}, logs, nil, summaryRepo, &recorderNotifier{})

  first, err := svc.Generate(context.Background(), restaurantID, "2026-03-14", types.ShiftTypeOpening)
  if err != nil {
    t.Fatalf("first Generate: %v", err)
  }
  second, err := svc.Generate(context.Background(), restaurantID, "2026-03-14", types.ShiftTypeOpening)
  if err != nil {
    t.Fatalf("second Generate: %v", err)
  }
  if first.ID != second.ID {
    t.Fatalf("regeneration should keep the stored row: %s vs %s", first.ID, second.ID)
  }
}

func TestToggleActionItemPersists(t *testing.T) {
  restaurantID := uuid.New()
  logs := []types.ShiftLog{{ID: uuid.New(), RestaurantID: restaurantID, Content: "Busy night"}}

  ai := &stubAI{completeFn: func(system, user string) (string, error) {
    return "Busy night.\n\nAction Items\n- Order more napkins\n- Fix the fryer, urgent", nil
  }}
  summaryRepo := &fakeSummaryRepo{}
  notifier := &recorderNotifier{}
  svc := newSummaryServiceForTest(t, ai, logs, nil, summaryRepo, notifier)

  summary, err := svc.Generate(context.Background(), restaurantID, "2026-03-14", types.ShiftTypeClosing)
  if err != nil {
    t.Fatalf("Generate: %v", err)
  }

  updated, err := svc.ToggleActionItem(context.Background(), restaurantID, summary.ID, 1, true)
  if err != nil {
    t.Fatalf("ToggleActionItem: %v", err)
  }

  var items []types.ActionItem
  if err := json.Unmarshal(updated.ActionItems, &items); err != nil {
    t.Fatalf("decode action items: %v", err)
  }
  if !items[1].Completed || items[0].Completed {
    t.Fatalf("only the second item should be completed: %+v", items)
  }

  // The write must survive a re-read through the repo.
  var persisted []types.ActionItem
  if err := json.Unmarshal(summaryRepo.stored.ActionItems, &persisted); err != nil {
    t.Fatalf("decode persisted action items: %v", err)
  }
  if !persisted[1].Completed {
    t.Fatalf("toggle not persisted: %+v", persisted)
  }

  if !notifier.saw(sse.SSEEventActionItemToggled) {
    t.Fatalf("expected %s event, got %v", sse.SSEEventActionItemToggled, notifier.events)
  }
}

func TestToggleActionItemScoping(t *testing.T) {
  restaurantID := uuid.New()
  logs := []types.ShiftLog{{ID: uuid.New(), RestaurantID: restaurantID, Content: "Quiet open"}}

  ai := &stubAI{completeFn: func(system, user string) (string, error) {
    return "Quiet open.\n\nAction Items\n- Count the till", nil
  }}
  summaryRepo := &fakeSummaryRepo{}
  svc := newSummaryServiceForTest(t, ai, logs, nil, summaryRepo, &recorderNotifier{})

  summary, err := svc.Generate(context.Background(), restaurantID, "2026-03-14", types.ShiftTypeOpening)
  if err != nil {
    t.Fatalf("Generate: %v", err)
  }

  if _, err := svc.ToggleActionItem(context.Background(), uuid.New(), summary.ID, 0, true); !IsNotFound(err) {
    t.Fatalf("other restaurant should not see the summary, got %v", err)
  }
  if _, err := svc.ToggleActionItem(context.Background(), restaurantID, summary.ID, 5, true); !IsNotFound(err) {
    t.Fatalf("out-of-range index should be not-found, got %v", err)
  }
}
