package services

import (
  "context"
  "fmt"
  "os"
  "strings"
  "time"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "github.com/shiftline/shiftline-backend/internal/clients/sendgrid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/normalization"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/sse"
  "github.com/shiftline/shiftline-backend/internal/types"
)

const invitationTTL = 7 * 24 * time.Hour

type RestaurantService interface {
  Create(ctx context.Context, ownerID uuid.UUID, name, timezone string) (*types.Restaurant, error)
  GetByID(ctx context.Context, id uuid.UUID) (*types.Restaurant, error)
  ListForUser(ctx context.Context, userID uuid.UUID) ([]types.Restaurant, error)
  LinkToast(ctx context.Context, id uuid.UUID, guid, clientID, clientSecret string) error

  ListMembers(ctx context.Context, restaurantID uuid.UUID) ([]types.RestaurantMember, error)
  UpdateMemberRole(ctx context.Context, restaurantID, userID uuid.UUID, role string) error
  RemoveMember(ctx context.Context, restaurantID, userID uuid.UUID) error
  SetMemberPin(ctx context.Context, restaurantID, userID uuid.UUID, pin string) error
  VerifyMemberPin(ctx context.Context, restaurantID, userID uuid.UUID, pin string) error

  Invite(ctx context.Context, restaurantID, inviterID uuid.UUID, email, role string) (*types.Invitation, error)
  AcceptInvitation(ctx context.Context, userID uuid.UUID, token string) (*types.RestaurantMember, error)
  RevokeInvitation(ctx context.Context, restaurantID, invitationID uuid.UUID) error
  ListInvitations(ctx context.Context, restaurantID uuid.UUID) ([]types.Invitation, error)
}

type restaurantService struct {
  log        *logger.Logger
  repo       repos.RestaurantRepo
  memberRepo repos.RestaurantMemberRepo
  inviteRepo repos.InvitationRepo
  userRepo   repos.UserRepo
  avatar     AvatarService
  email      sendgrid.Client
  notifier   Notifier
  appBaseURL string
}

func NewRestaurantService(
  log *logger.Logger,
  repo repos.RestaurantRepo,
  memberRepo repos.RestaurantMemberRepo,
  inviteRepo repos.InvitationRepo,
  userRepo repos.UserRepo,
  avatar AvatarService,
  email sendgrid.Client,
  notifier Notifier,
) RestaurantService {
  return &restaurantService{
    log:        log.With("service", "RestaurantService"),
    repo:       repo,
    memberRepo: memberRepo,
    inviteRepo: inviteRepo,
    userRepo:   userRepo,
    avatar:     avatar,
    email:      email,
    notifier:   notifier,
    appBaseURL: strings.TrimRight(os.Getenv("APP_BASE_URL"), "/"),
  }
}

func (s *restaurantService) Create(ctx context.Context, ownerID uuid.UUID, name, timezone string) (*types.Restaurant, error) {
  name = normalization.ParseInputString(name)
  if name == "" {
    return nil, NewEmptyInputError("name")
  }

  restaurant := &types.Restaurant{
    ID:   uuid.New(),
    Name: name,
  }
  if timezone != "" {
    restaurant.Timezone = timezone
  }

  if s.avatar != nil {
    if url, err := s.avatar.GenerateRestaurantAvatar(ctx, restaurant.ID, name); err != nil {
      s.log.Warn("Restaurant avatar generation failed", "restaurantID", restaurant.ID, "error", err)
    } else {
      restaurant.AvatarURL = url
    }
  }

  if err := s.repo.Create(ctx, nil, restaurant); err != nil {
    return nil, err
  }
  owner := &types.RestaurantMember{
    ID:           uuid.New(),
    RestaurantID: restaurant.ID,
    UserID:       ownerID,
    Role:         types.RoleOwner,
  }
  if err := s.memberRepo.Create(ctx, nil, owner); err != nil {
    return nil, err
  }
  s.log.Info("Restaurant created", "restaurantID", restaurant.ID, "ownerID", ownerID)
  return restaurant, nil
}

func (s *restaurantService) GetByID(ctx context.Context, id uuid.UUID) (*types.Restaurant, error) {
  restaurant, err := s.repo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, NewNotFoundError("restaurant", id.String())
  }
  return restaurant, nil
}

func (s *restaurantService) ListForUser(ctx context.Context, userID uuid.UUID) ([]types.Restaurant, error) {
  return s.repo.ListForUser(ctx, nil, userID)
}

func (s *restaurantService) LinkToast(ctx context.Context, id uuid.UUID, guid, clientID, clientSecret string) error {
  restaurant, err := s.repo.GetByID(ctx, nil, id)
  if err != nil {
    return NewNotFoundError("restaurant", id.String())
  }
  if strings.TrimSpace(guid) == "" || strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" {
    return NewEmptyInputError("toast credentials")
  }
  restaurant.ToastRestaurantGUID = strings.TrimSpace(guid)
  restaurant.ToastClientID = strings.TrimSpace(clientID)
  restaurant.ToastClientSecret = strings.TrimSpace(clientSecret)
  return s.repo.Update(ctx, nil, restaurant)
}

func (s *restaurantService) ListMembers(ctx context.Context, restaurantID uuid.UUID) ([]types.RestaurantMember, error) {
  return s.memberRepo.ListByRestaurant(ctx, nil, restaurantID)
}

func (s *restaurantService) UpdateMemberRole(ctx context.Context, restaurantID, userID uuid.UUID, role string) error {
  if !validRole(role) {
    return fmt.Errorf("invalid role %q", role)
  }
  member, err := s.memberRepo.Get(ctx, nil, restaurantID, userID)
  if err != nil {
    return NewNotFoundError("member", userID.String())
  }
  if member.Role == types.RoleOwner && role != types.RoleOwner {
    others, err := s.memberRepo.ListByRestaurant(ctx, nil, restaurantID)
    if err != nil {
      return err
    }
    owners := 0
    for _, m := range others {
      if m.Role == types.RoleOwner {
        owners++
      }
    }
    if owners <= 1 {
      return fmt.Errorf("cannot demote the last owner")
    }
  }
  member.Role = role
  return s.memberRepo.Update(ctx, nil, member)
}

func (s *restaurantService) RemoveMember(ctx context.Context, restaurantID, userID uuid.UUID) error {
  member, err := s.memberRepo.Get(ctx, nil, restaurantID, userID)
  if err != nil {
    return NewNotFoundError("member", userID.String())
  }
  if member.Role == types.RoleOwner {
    return fmt.Errorf("cannot remove an owner")
  }
  return s.memberRepo.Delete(ctx, nil, restaurantID, userID)
}

func (s *restaurantService) SetMemberPin(ctx context.Context, restaurantID, userID uuid.UUID, pin string) error {
  if len(pin) < 4 || len(pin) > 6 {
    return fmt.Errorf("pin must be 4 to 6 digits")
  }
  for _, r := range pin {
    if r < '0' || r > '9' {
      return fmt.Errorf("pin must be numeric")
    }
  }
  member, err := s.memberRepo.Get(ctx, nil, restaurantID, userID)
  if err != nil {
    return NewNotFoundError("member", userID.String())
  }
  hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
  if err != nil {
    return err
  }
  member.PinHash = string(hash)
  return s.memberRepo.Update(ctx, nil, member)
}

func (s *restaurantService) VerifyMemberPin(ctx context.Context, restaurantID, userID uuid.UUID, pin string) error {
  member, err := s.memberRepo.Get(ctx, nil, restaurantID, userID)
  if err != nil {
    return NewNotFoundError("member", userID.String())
  }
  if member.PinHash == "" {
    return fmt.Errorf("no pin set")
  }
  if err := bcrypt.CompareHashAndPassword([]byte(member.PinHash), []byte(pin)); err != nil {
    return fmt.Errorf("invalid pin")
  }
  return nil
}

func (s *restaurantService) Invite(ctx context.Context, restaurantID, inviterID uuid.UUID, email, role string) (*types.Invitation, error) {
  email = normalization.ParseEmail(email)
  if email == "" {
    return nil, NewEmptyInputError("email")
  }
  if !validRole(role) || role == types.RoleOwner {
    return nil, fmt.Errorf("invalid role %q", role)
  }
  if existing, err := s.inviteRepo.GetPendingByEmail(ctx, nil, restaurantID, email); err == nil && existing != nil {
    return nil, fmt.Errorf("an invitation for %s is already pending", email)
  }

  token, err := randomToken()
  if err != nil {
    return nil, err
  }
  invitation := &types.Invitation{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    InviterID:    inviterID,
    Email:        email,
    Role:         role,
    TokenHash:    hashToken(token),
    Status:       types.InvitationStatusPending,
    ExpiresAt:    time.Now().Add(invitationTTL),
  }
  if err := s.inviteRepo.Create(ctx, nil, invitation); err != nil {
    return nil, err
  }

  if s.email != nil {
    restaurant, rErr := s.repo.GetByID(ctx, nil, restaurantID)
    name := "your restaurant"
    if rErr == nil {
      name = restaurant.Name
    }
    link := fmt.Sprintf("%s/invitations/accept?token=%s", s.appBaseURL, token)
    sendErr := s.email.Send(ctx, sendgrid.SendEmailRequest{
      To:      []sendgrid.EmailAddress{{Email: email}},
      Subject: fmt.Sprintf("You're invited to join %s", name),
      Text:    fmt.Sprintf("You've been invited to join %s as %s.\n\nAccept here: %s\n\nThis invitation expires in 7 days.", name, role, link),
    })
    if sendErr != nil {
      s.log.Warn("Invitation email failed, invitation kept", "invitationID", invitation.ID, "error", sendErr)
    }
  }

  s.notifier.Notify(ctx, restaurantID, sse.SSEEventInviteCreated, invitation)
  return invitation, nil
}

func (s *restaurantService) AcceptInvitation(ctx context.Context, userID uuid.UUID, token string) (*types.RestaurantMember, error) {
  invitation, err := s.inviteRepo.GetByTokenHash(ctx, nil, hashToken(token))
  if err != nil {
    return nil, NewNotFoundError("invitation", "")
  }
  if invitation.Status != types.InvitationStatusPending {
    return nil, fmt.Errorf("invitation is %s", invitation.Status)
  }
  if time.Now().After(invitation.ExpiresAt) {
    invitation.Status = types.InvitationStatusExpired
    _ = s.inviteRepo.Update(ctx, nil, invitation)
    return nil, fmt.Errorf("invitation expired")
  }

  user, err := s.userRepo.GetByID(ctx, nil, userID)
  if err != nil {
    return nil, NewNotFoundError("user", userID.String())
  }
  if !strings.EqualFold(user.Email, invitation.Email) {
    return nil, fmt.Errorf("invitation was issued for a different email")
  }

  member := &types.RestaurantMember{
    ID:           uuid.New(),
    RestaurantID: invitation.RestaurantID,
    UserID:       userID,
    Role:         invitation.Role,
  }
  if err := s.memberRepo.Create(ctx, nil, member); err != nil {
    return nil, err
  }
  invitation.Status = types.InvitationStatusAccepted
  if err := s.inviteRepo.Update(ctx, nil, invitation); err != nil {
    return nil, err
  }

  s.notifier.Notify(ctx, invitation.RestaurantID, sse.SSEEventMemberJoined, member)
  return member, nil
}

func (s *restaurantService) RevokeInvitation(ctx context.Context, restaurantID, invitationID uuid.UUID) error {
  invitation, err := s.inviteRepo.GetByID(ctx, nil, invitationID)
  if err != nil || invitation.RestaurantID != restaurantID {
    return NewNotFoundError("invitation", invitationID.String())
  }
  if invitation.Status != types.InvitationStatusPending {
    return fmt.Errorf("invitation is %s", invitation.Status)
  }
  invitation.Status = types.InvitationStatusRevoked
  return s.inviteRepo.Update(ctx, nil, invitation)
}

func (s *restaurantService) ListInvitations(ctx context.Context, restaurantID uuid.UUID) ([]types.Invitation, error) {
  if _, err := s.inviteRepo.ExpireStale(ctx, nil); err != nil {
    s.log.Warn("Failed to expire stale invitations", "error", err)
  }
  return s.inviteRepo.ListByRestaurant(ctx, nil, restaurantID)
}

func validRole(role string) bool {
  switch role {
  case types.RoleOwner, types.RoleManager, types.RoleStaff:
    return true
  }
  return false
}
