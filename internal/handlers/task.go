package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/requestdata"
  "github.com/shiftline/shiftline-backend/internal/services"
)

type TaskHandler struct {
  log   *logger.Logger
  tasks services.TaskService
}

func NewTaskHandler(log *logger.Logger, tasks services.TaskService) *TaskHandler {
  return &TaskHandler{
    log:   log.With("handler", "TaskHandler"),
    tasks: tasks,
  }
}

type createTaskRequest struct {
  Title           string     `json:"title" binding:"required"`
  Notes           string     `json:"notes"`
  Urgency         string     `json:"urgency"`
  AssigneeID      *uuid.UUID `json:"assignee_id"`
  SourceSummaryID *uuid.UUID `json:"source_summary_id"`
}

func (h *TaskHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req createTaskRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  task, err := h.tasks.Create(c.Request.Context(), rd.RestaurantID, rd.UserID, services.CreateTaskInput{
    Title:           req.Title,
    Notes:           req.Notes,
    Urgency:         req.Urgency,
    AssigneeID:      req.AssigneeID,
    SourceSummaryID: req.SourceSummaryID,
  })
  if err != nil {
    respondError(c, err)
    return
  }
  respondCreated(c, task)
}

func (h *TaskHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  tasks, err := h.tasks.List(c.Request.Context(), rd.RestaurantID)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, tasks)
}

type updateTaskRequest struct {
  Title      *string    `json:"title"`
  Notes      *string    `json:"notes"`
  Urgency    *string    `json:"urgency"`
  Status     *string    `json:"status"`
  AssigneeID *uuid.UUID `json:"assignee_id"`
}

func (h *TaskHandler) Update(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  taskID, err := uuid.Parse(c.Param("taskID"))
  if err != nil {
    respondBadRequest(c, "invalid task id")
    return
  }
  var req updateTaskRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  task, err := h.tasks.Update(c.Request.Context(), rd.RestaurantID, taskID, services.UpdateTaskInput{
    Title:      req.Title,
    Notes:      req.Notes,
    Urgency:    req.Urgency,
    Status:     req.Status,
    AssigneeID: req.AssigneeID,
  })
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  taskID, err := uuid.Parse(c.Param("taskID"))
  if err != nil {
    respondBadRequest(c, "invalid task id")
    return
  }
  if err := h.tasks.Delete(c.Request.Context(), rd.RestaurantID, taskID); err != nil {
    respondError(c, err)
    return
  }
  respondNoContent(c)
}

type reorderTasksRequest struct {
  OrderedIDs []uuid.UUID `json:"ordered_ids" binding:"required"`
}

func (h *TaskHandler) Reorder(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req reorderTasksRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondBadRequest(c, err.Error())
    return
  }
  tasks, err := h.tasks.Reorder(c.Request.Context(), rd.RestaurantID, req.OrderedIDs)
  if err != nil {
    respondError(c, err)
    return
  }
  respondOK(c, tasks)
}
