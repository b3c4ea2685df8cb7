package services

import (
  "context"
  "fmt"
  "strings"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/normalization"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/sse"
  "github.com/shiftline/shiftline-backend/internal/types"
)

const (
  chatContextChunks = 8
  chatHistoryTurns  = 12
)

type ChatCitation struct {
  SourceType string    `json:"source_type"`
  SourceID   uuid.UUID `json:"source_id"`
  ShiftDate  string    `json:"shift_date"`
}

type ChatService interface {
  Send(ctx context.Context, restaurantID, userID uuid.UUID, message string) (*types.ChatMessage, error)
  History(ctx context.Context, restaurantID, userID uuid.UUID, limit int) ([]types.ChatMessage, error)
}

type chatService struct {
  log      *logger.Logger
  ai       OpenAIClient
  search   SearchService
  msgRepo  repos.ChatMessageRepo
  notifier Notifier
}

func NewChatService(log *logger.Logger, ai OpenAIClient, search SearchService, msgRepo repos.ChatMessageRepo, notifier Notifier) ChatService {
  return &chatService{
    log:      log.With("service", "ChatService"),
    ai:       ai,
    search:   search,
    msgRepo:  msgRepo,
    notifier: notifier,
  }
}

// Send answers an operations question using retrieved shift history as
// grounding. Both the user turn and the assistant turn are persisted.
func (s *chatService) Send(ctx context.Context, restaurantID, userID uuid.UUID, message string) (*types.ChatMessage, error) {
  message = normalization.ParseInputString(message)
  if message == "" {
    return nil, NewEmptyInputError("message")
  }

  userTurn := &types.ChatMessage{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    UserID:       userID,
    Role:         types.ChatRoleUser,
    Content:      message,
  }
  if err := s.msgRepo.Create(ctx, nil, userTurn); err != nil {
    return nil, err
  }

  matches, err := s.search.Search(ctx, restaurantID, message, chatContextChunks)
  if err != nil && !IsEmptyInput(err) {
    // Retrieval problems degrade to an uncontextualized answer.
    s.log.Warn("Chat retrieval failed, answering without context", "error", err)
    matches = nil
  }

  history, err := s.msgRepo.ListRecent(ctx, nil, restaurantID, userID, chatHistoryTurns)
  if err != nil {
    return nil, err
  }

  system, user := buildChatPrompt(message, matches, history)
  answer, err := s.ai.Complete(ctx, system, user)
  if err != nil {
    return nil, err
  }

  citations := make([]ChatCitation, 0, len(matches))
  for _, m := range matches {
    citations = append(citations, ChatCitation{
      SourceType: m.SourceType,
      SourceID:   m.SourceID,
      ShiftDate:  m.ShiftDate,
    })
  }

  assistantTurn := &types.ChatMessage{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    UserID:       userID,
    Role:         types.ChatRoleAssistant,
    Content:      answer,
    Citations:    mustJSON(citations),
  }
  if err := s.msgRepo.Create(ctx, nil, assistantTurn); err != nil {
    return nil, err
  }

  s.notifier.Notify(ctx, restaurantID, sse.SSEEventChatMessageCreated, assistantTurn)
  return assistantTurn, nil
}

func (s *chatService) History(ctx context.Context, restaurantID, userID uuid.UUID, limit int) ([]types.ChatMessage, error) {
  return s.msgRepo.ListRecent(ctx, nil, restaurantID, userID, limit)
}

func buildChatPrompt(message string, matches []SearchMatch, history []types.ChatMessage) (string, string) {
  system := "You are an operations assistant for a restaurant management team. Answer using " +
    "the provided shift history excerpts when they are relevant, and say so plainly when the " +
    "history does not cover the question. Keep answers short and practical."

  var b strings.Builder
  if len(matches) > 0 {
    b.WriteString("Shift history excerpts:\n")
    for _, m := range matches {
      fmt.Fprintf(&b, "[%s %s] %s\n", m.SourceType, m.ShiftDate, m.Text)
    }
    b.WriteString("\n")
  }
  if len(history) > 0 {
    b.WriteString("Recent conversation:\n")
    for _, h := range history {
      fmt.Fprintf(&b, "%s: %s\n", h.Role, h.Content)
    }
    b.WriteString("\n")
  }
  fmt.Fprintf(&b, "Question: %s", message)
  return system, b.String()
}
