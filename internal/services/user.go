package services

import (
  "context"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/normalization"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type UserService interface {
  GetByID(ctx context.Context, id uuid.UUID) (*types.User, error)
  UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName string) (*types.User, error)
  RegenerateAvatar(ctx context.Context, id uuid.UUID) (*types.User, error)
}

type userService struct {
  log    *logger.Logger
  repo   repos.UserRepo
  avatar AvatarService
}

func NewUserService(log *logger.Logger, repo repos.UserRepo, avatar AvatarService) UserService {
  return &userService{
    log:    log.With("service", "UserService"),
    repo:   repo,
    avatar: avatar,
  }
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
  user, err := s.repo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, NewNotFoundError("user", id.String())
  }
  return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName string) (*types.User, error) {
  user, err := s.repo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, NewNotFoundError("user", id.String())
  }
  firstName = normalization.ParseInputString(firstName)
  lastName = normalization.ParseInputString(lastName)
  if firstName == "" && lastName == "" {
    return nil, NewEmptyInputError("name")
  }
  if firstName != "" {
    user.FirstName = firstName
  }
  if lastName != "" {
    user.LastName = lastName
  }
  if err := s.repo.Update(ctx, nil, user); err != nil {
    return nil, err
  }
  return user, nil
}

func (s *userService) RegenerateAvatar(ctx context.Context, id uuid.UUID) (*types.User, error) {
  user, err := s.repo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, NewNotFoundError("user", id.String())
  }
  url, err := s.avatar.GenerateUserAvatar(ctx, user.ID, user.FirstName, user.LastName)
  if err != nil {
    return nil, err
  }
  user.AvatarURL = url
  if err := s.repo.Update(ctx, nil, user); err != nil {
    return nil, err
  }
  return user, nil
}
