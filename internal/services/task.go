package services

import (
  "context"
  "fmt"
  "time"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/normalization"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/sse"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type CreateTaskInput struct {
  Title           string
  Notes           string
  Urgency         string
  AssigneeID      *uuid.UUID
  SourceSummaryID *uuid.UUID
}

type UpdateTaskInput struct {
  Title      *string
  Notes      *string
  Urgency    *string
  Status     *string
  AssigneeID *uuid.UUID
}

type TaskService interface {
  Create(ctx context.Context, restaurantID, creatorID uuid.UUID, in CreateTaskInput) (*types.Task, error)
  List(ctx context.Context, restaurantID uuid.UUID) ([]types.Task, error)
  Update(ctx context.Context, restaurantID, taskID uuid.UUID, in UpdateTaskInput) (*types.Task, error)
  Delete(ctx context.Context, restaurantID, taskID uuid.UUID) error
  Reorder(ctx context.Context, restaurantID uuid.UUID, orderedIDs []uuid.UUID) ([]types.Task, error)
}

type taskService struct {
  log      *logger.Logger
  repo     repos.TaskRepo
  notifier Notifier
}

func NewTaskService(log *logger.Logger, repo repos.TaskRepo, notifier Notifier) TaskService {
  return &taskService{
    log:      log.With("service", "TaskService"),
    repo:     repo,
    notifier: notifier,
  }
}

func (s *taskService) Create(ctx context.Context, restaurantID, creatorID uuid.UUID, in CreateTaskInput) (*types.Task, error) {
  title := normalization.ParseInputString(in.Title)
  if title == "" {
    return nil, NewEmptyInputError("title")
  }
  urgency := in.Urgency
  if urgency == "" {
    urgency = types.TaskUrgencyNormal
  }
  if !validUrgency(urgency) {
    return nil, fmt.Errorf("invalid urgency %q", urgency)
  }

  // New tasks land at the bottom of the board.
  maxPos, err := s.repo.MaxPosition(ctx, nil, restaurantID)
  if err != nil {
    return nil, err
  }

  task := &types.Task{
    ID:              uuid.New(),
    RestaurantID:    restaurantID,
    CreatorID:       creatorID,
    AssigneeID:      in.AssigneeID,
    Title:           title,
    Notes:           in.Notes,
    Status:          types.TaskStatusOpen,
    Urgency:         urgency,
    Position:        maxPos + 1,
    SourceSummaryID: in.SourceSummaryID,
  }
  if err := s.repo.Create(ctx, nil, task); err != nil {
    return nil, err
  }

  s.notifier.Notify(ctx, restaurantID, sse.SSEEventTaskCreated, task)
  return task, nil
}

func (s *taskService) List(ctx context.Context, restaurantID uuid.UUID) ([]types.Task, error) {
  return s.repo.ListByRestaurant(ctx, nil, restaurantID)
}

func (s *taskService) Update(ctx context.Context, restaurantID, taskID uuid.UUID, in UpdateTaskInput) (*types.Task, error) {
  task, err := s.repo.GetByID(ctx, nil, taskID)
  if err != nil || task.RestaurantID != restaurantID {
    return nil, NewNotFoundError("task", taskID.String())
  }

  if in.Title != nil {
    title := normalization.ParseInputString(*in.Title)
    if title == "" {
      return nil, NewEmptyInputError("title")
    }
    task.Title = title
  }
  if in.Notes != nil {
    task.Notes = *in.Notes
  }
  if in.Urgency != nil {
    if !validUrgency(*in.Urgency) {
      return nil, fmt.Errorf("invalid urgency %q", *in.Urgency)
    }
    task.Urgency = *in.Urgency
  }
  if in.AssigneeID != nil {
    task.AssigneeID = in.AssigneeID
  }
  if in.Status != nil {
    switch *in.Status {
    case types.TaskStatusOpen:
      task.Status = types.TaskStatusOpen
      task.CompletedAt = nil
    case types.TaskStatusDone:
      task.Status = types.TaskStatusDone
      now := time.Now()
      task.CompletedAt = &now
    default:
      return nil, fmt.Errorf("invalid status %q", *in.Status)
    }
  }

  if err := s.repo.Update(ctx, nil, task); err != nil {
    return nil, err
  }
  s.notifier.Notify(ctx, restaurantID, sse.SSEEventTaskUpdated, task)
  return task, nil
}

func (s *taskService) Delete(ctx context.Context, restaurantID, taskID uuid.UUID) error {
  task, err := s.repo.GetByID(ctx, nil, taskID)
  if err != nil || task.RestaurantID != restaurantID {
    return NewNotFoundError("task", taskID.String())
  }
  if err := s.repo.Delete(ctx, nil, taskID); err != nil {
    return err
  }
  // Close the position gap left behind.
  remaining, err := s.repo.ListByRestaurant(ctx, nil, restaurantID)
  if err != nil {
    return err
  }
  ids := make([]uuid.UUID, len(remaining))
  for i, t := range remaining {
    ids[i] = t.ID
  }
  return s.repo.ReorderAll(ctx, restaurantID, ids)
}

// Reorder rewrites the whole board order. The caller must pass every task
// exactly once; anything else is rejected so positions stay contiguous.
func (s *taskService) Reorder(ctx context.Context, restaurantID uuid.UUID, orderedIDs []uuid.UUID) ([]types.Task, error) {
  existing, err := s.repo.ListByRestaurant(ctx, nil, restaurantID)
  if err != nil {
    return nil, err
  }
  if len(orderedIDs) != len(existing) {
    return nil, fmt.Errorf("reorder must include all %d tasks, got %d", len(existing), len(orderedIDs))
  }
  known := make(map[uuid.UUID]bool, len(existing))
  for _, t := range existing {
    known[t.ID] = true
  }
  seen := make(map[uuid.UUID]bool, len(orderedIDs))
  for _, id := range orderedIDs {
    if !known[id] {
      return nil, fmt.Errorf("unknown task %s in reorder", id)
    }
    if seen[id] {
      return nil, fmt.Errorf("duplicate task %s in reorder", id)
    }
    seen[id] = true
  }

  if err := s.repo.ReorderAll(ctx, restaurantID, orderedIDs); err != nil {
    return nil, err
  }
  tasks, err := s.repo.ListByRestaurant(ctx, nil, restaurantID)
  if err != nil {
    return nil, err
  }
  s.notifier.Notify(ctx, restaurantID, sse.SSEEventTaskReordered, map[string]any{
    "ordered_ids": orderedIDs,
  })
  return tasks, nil
}

func validUrgency(u string) bool {
  switch u {
  case types.TaskUrgencyLow, types.TaskUrgencyNormal, types.TaskUrgencyHigh:
    return true
  }
  return false
}
