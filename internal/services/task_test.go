package services

import (
  "context"
  "sort"
  "testing"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/types"
)

// fakeTaskRepo keeps tasks in memory with the same position semantics as
// the real repo.
type fakeTaskRepo struct {
  tasks map[uuid.UUID]*types.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
  return &fakeTaskRepo{tasks: make(map[uuid.UUID]*types.Task)}
}

func (r *fakeTaskRepo) Create(ctx context.Context, tx *gorm.DB, task *types.Task) error {
  cp := *task
  r.tasks[task.ID] = &cp
  return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Task, error) {
  task, ok := r.tasks[id]
  if !ok {
    return nil, gorm.ErrRecordNotFound
  }
  cp := *task
  return &cp, nil
}

func (r *fakeTaskRepo) ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]types.Task, error) {
  var out []types.Task
  for _, task := range r.tasks {
    if task.RestaurantID == restaurantID {
      out = append(out, *task)
    }
  }
  sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
  return out, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, tx *gorm.DB, task *types.Task) error {
  if _, ok := r.tasks[task.ID]; !ok {
    return gorm.ErrRecordNotFound
  }
  cp := *task
  r.tasks[task.ID] = &cp
  return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  delete(r.tasks, id)
  return nil
}

func (r *fakeTaskRepo) MaxPosition(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) (int, error) {
  max := -1
  for _, task := range r.tasks {
    if task.RestaurantID == restaurantID && task.Position > max {
      max = task.Position
    }
  }
  return max, nil
}

func (r *fakeTaskRepo) ReorderAll(ctx context.Context, restaurantID uuid.UUID, orderedIDs []uuid.UUID) error {
  for i, id := range orderedIDs {
    task, ok := r.tasks[id]
    if !ok || task.RestaurantID != restaurantID {
      return gorm.ErrRecordNotFound
    }
    task.Position = i
  }
  return nil
}

func newTaskServiceForTest(t *testing.T) (TaskService, *fakeTaskRepo, *recorderNotifier) {
  t.Helper()
  repo := newFakeTaskRepo()
  notifier := &recorderNotifier{}
  return NewTaskService(testLogger(t), repo, notifier), repo, notifier
}

func TestTaskCreateAppendsToBottom(t *testing.T) {
  svc, _, _ := newTaskServiceForTest(t)
  restaurantID := uuid.New()
  creatorID := uuid.New()
  ctx := context.Background()

  first, err := svc.Create(ctx, restaurantID, creatorID, CreateTaskInput{Title: "Restock napkins"})
  if err != nil {
    t.Fatalf("Create: %v", err)
  }
  if first.Position != 0 {
    t.Fatalf("first task position: want 0, got %d", first.Position)
  }
  if first.Status != types.TaskStatusOpen || first.Urgency != types.TaskUrgencyNormal {
    t.Fatalf("defaults: %+v", first)
  }

  second, err := svc.Create(ctx, restaurantID, creatorID, CreateTaskInput{Title: "Call technician", Urgency: types.TaskUrgencyHigh})
  if err != nil {
    t.Fatalf("Create: %v", err)
  }
  if second.Position != 1 {
    t.Fatalf("second task position: want 1, got %d", second.Position)
  }
}

func TestTaskCreateValidation(t *testing.T) {
  svc, _, _ := newTaskServiceForTest(t)
  ctx := context.Background()

  if _, err := svc.Create(ctx, uuid.New(), uuid.New(), CreateTaskInput{Title: "   "}); !IsEmptyInput(err) {
    t.Fatalf("blank title: expected empty-input error, got %v", err)
  }
  if _, err := svc.Create(ctx, uuid.New(), uuid.New(), CreateTaskInput{Title: "ok", Urgency: "critical"}); err == nil {
    t.Fatalf("expected error for unknown urgency")
  }
}

func TestTaskUpdateStatusTransitions(t *testing.T) {
  svc, _, _ := newTaskServiceForTest(t)
  restaurantID := uuid.New()
  ctx := context.Background()

  task, err := svc.Create(ctx, restaurantID, uuid.New(), CreateTaskInput{Title: "Close out register"})
  if err != nil {
    t.Fatalf("Create: %v", err)
  }

  done := types.TaskStatusDone
  updated, err := svc.Update(ctx, restaurantID, task.ID, UpdateTaskInput{Status: &done})
  if err != nil {
    t.Fatalf("Update to done: %v", err)
  }
  if updated.Status != types.TaskStatusDone || updated.CompletedAt == nil {
    t.Fatalf("done task should record completion time: %+v", updated)
  }

  open := types.TaskStatusOpen
  updated, err = svc.Update(ctx, restaurantID, task.ID, UpdateTaskInput{Status: &open})
  if err != nil {
    t.Fatalf("Update to open: %v", err)
  }
  if updated.Status != types.TaskStatusOpen || updated.CompletedAt != nil {
    t.Fatalf("reopened task should clear completion time: %+v", updated)
  }
}

func TestTaskUpdateScopedToRestaurant(t *testing.T) {
  svc, _, _ := newTaskServiceForTest(t)
  ctx := context.Background()

  task, err := svc.Create(ctx, uuid.New(), uuid.New(), CreateTaskInput{Title: "Mine"})
  if err != nil {
    t.Fatalf("Create: %v", err)
  }

  title := "Stolen"
  if _, err := svc.Update(ctx, uuid.New(), task.ID, UpdateTaskInput{Title: &title}); !IsNotFound(err) {
    t.Fatalf("cross-restaurant update should be not-found, got %v", err)
  }
}

func TestTaskDeleteClosesPositionGap(t *testing.T) {
  svc, _, _ := newTaskServiceForTest(t)
  restaurantID := uuid.New()
  ctx := context.Background()

  var tasks []*types.Task
  for _, title := range []string{"a", "b", "c"} {
    task, err := svc.Create(ctx, restaurantID, uuid.New(), CreateTaskInput{Title: title})
    if err != nil {
      t.Fatalf("Create: %v", err)
    }
    tasks = append(tasks, task)
  }

  if err := svc.Delete(ctx, restaurantID, tasks[1].ID); err != nil {
    t.Fatalf("Delete: %v", err)
  }

  remaining, err := svc.List(ctx, restaurantID)
  if err != nil {
    t.Fatalf("List: %v", err)
  }
  if len(remaining) != 2 {
    t.Fatalf("expected 2 tasks, got %d", len(remaining))
  }
  for i, task := range remaining {
    if task.Position != i {
      t.Fatalf("positions should stay contiguous: task %d has position %d", i, task.Position)
    }
  }
}

func TestTaskReorder(t *testing.T) {
  svc, _, notifier := newTaskServiceForTest(t)
  restaurantID := uuid.New()
  ctx := context.Background()

  var ids []uuid.UUID
  for _, title := range []string{"a", "b", "c"} {
    task, err := svc.Create(ctx, restaurantID, uuid.New(), CreateTaskInput{Title: title})
    if err != nil {
      t.Fatalf("Create: %v", err)
    }
    ids = append(ids, task.ID)
  }

  reordered, err := svc.Reorder(ctx, restaurantID, []uuid.UUID{ids[2], ids[0], ids[1]})
  if err != nil {
    t.Fatalf("Reorder: %v", err)
  }
  if reordered[0].ID != ids[2] || reordered[1].ID != ids[0] || reordered[2].ID != ids[1] {
    t.Fatalf("wrong order after reorder: %+v", reordered)
  }
  if !notifier.saw("TaskReordered") {
    t.Fatalf("expected TaskReordered event, got %v", notifier.events)
  }
}

func TestTaskReorderRejectsBadPermutations(t *testing.T) {
  svc, _, _ := newTaskServiceForTest(t)
  restaurantID := uuid.New()
  ctx := context.Background()

  var ids []uuid.UUID
  for _, title := range []string{"a", "b"} {
    task, err := svc.Create(ctx, restaurantID, uuid.New(), CreateTaskInput{Title: title})
    if err != nil {
      t.Fatalf("Create: %v", err)
    }
    ids = append(ids, task.ID)
  }

  if _, err := svc.Reorder(ctx, restaurantID, []uuid.UUID{ids[0]}); err == nil {
    t.Fatalf("partial reorder should be rejected")
  }
  if _, err := svc.Reorder(ctx, restaurantID, []uuid.UUID{ids[0], ids[0]}); err == nil {
    t.Fatalf("duplicate id should be rejected")
  }
  if _, err := svc.Reorder(ctx, restaurantID, []uuid.UUID{ids[0], uuid.New()}); err == nil {
    t.Fatalf("unknown id should be rejected")
  }
}
