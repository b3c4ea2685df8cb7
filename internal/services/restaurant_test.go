package services

import (
  "context"
  "strings"
  "testing"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/sse"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type fakeInvitationRepo struct {
  repos.InvitationRepo
  invitations map[uuid.UUID]*types.Invitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
  return &fakeInvitationRepo{invitations: make(map[uuid.UUID]*types.Invitation)}
}

func (r *fakeInvitationRepo) Create(ctx context.Context, tx *gorm.DB, inv *types.Invitation) error {
  cp := *inv
  r.invitations[inv.ID] = &cp
  return nil
}

func (r *fakeInvitationRepo) GetByTokenHash(ctx context.Context, tx *gorm.DB, tokenHash string) (*types.Invitation, error) {
  for _, inv := range r.invitations {
    if inv.TokenHash == tokenHash {
      cp := *inv
      return &cp, nil
    }
  }
  return nil, gorm.ErrRecordNotFound
}

func (r *fakeInvitationRepo) GetPendingByEmail(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, email string) (*types.Invitation, error) {
  for _, inv := range r.invitations {
    if inv.RestaurantID == restaurantID && inv.Email == email && inv.Status == types.InvitationStatusPending {
      cp := *inv
      return &cp, nil
    }
  }
  return nil, gorm.ErrRecordNotFound
}

func (r *fakeInvitationRepo) Update(ctx context.Context, tx *gorm.DB, inv *types.Invitation) error {
  cp := *inv
  r.invitations[inv.ID] = &cp
  return nil
}

type fakeMemberRepo struct {
  repos.RestaurantMemberRepo
  members []*types.RestaurantMember
}

func (r *fakeMemberRepo) Create(ctx context.Context, tx *gorm.DB, m *types.RestaurantMember) error {
  cp := *m
  r.members = append(r.members, &cp)
  return nil
}

func (r *fakeMemberRepo) Get(ctx context.Context, tx *gorm.DB, restaurantID, userID uuid.UUID) (*types.RestaurantMember, error) {
  for _, m := range r.members {
    if m.RestaurantID == restaurantID && m.UserID == userID {
      return m, nil
    }
  }
  return nil, gorm.ErrRecordNotFound
}

func (r *fakeMemberRepo) ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]types.RestaurantMember, error) {
  var out []types.RestaurantMember
  for _, m := range r.members {
    if m.RestaurantID == restaurantID {
      out = append(out, *m)
    }
  }
  return out, nil
}

func (r *fakeMemberRepo) Update(ctx context.Context, tx *gorm.DB, m *types.RestaurantMember) error {
  for i, existing := range r.members {
    if existing.ID == m.ID {
      cp := *m
      r.members[i] = &cp
      return nil
    }
  }
  return gorm.ErrRecordNotFound
}

type fakeUserRepo struct {
  repos.UserRepo
  users map[uuid.UUID]*types.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error) {
  if u, ok := r.users[id]; ok {
    return u, nil
  }
  return nil, gorm.ErrRecordNotFound
}

func newRestaurantServiceForTest(t *testing.T, inviteRepo *fakeInvitationRepo, memberRepo *fakeMemberRepo, userRepo *fakeUserRepo, notifier Notifier) RestaurantService {
  t.Helper()
  return NewRestaurantService(
    testLogger(t),
    &fakeRestaurantRepo{restaurant: &types.Restaurant{ID: uuid.New(), Name: "Harbor Grill"}},
    memberRepo,
    inviteRepo,
    userRepo,
    nil,
    nil,
    notifier,
  )
}

func seedInvitation(t *testing.T, repo *fakeInvitationRepo, restaurantID uuid.UUID, email string) string {
  t.Helper()
  token, err := randomToken()
  if err != nil {
    t.Fatalf("randomToken: %v", err)
  }
  inv := &types.Invitation{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    Email:        email,
    Role:         types.RoleStaff,
    TokenHash:    hashToken(token),
    Status:       types.InvitationStatusPending,
    ExpiresAt:    time.Now().Add(time.Hour),
  }
  if err := repo.Create(context.Background(), nil, inv); err != nil {
    t.Fatalf("seed invitation: %v", err)
  }
  return token
}

func TestAcceptInvitationJoinsMembership(t *testing.T) {
  restaurantID := uuid.New()
  userID := uuid.New()

  inviteRepo := newFakeInvitationRepo()
  memberRepo := &fakeMemberRepo{}
  userRepo := &fakeUserRepo{users: map[uuid.UUID]*types.User{
    userID: {ID: userID, Email: "staff@example.com"},
  }}
  notifier := &recorderNotifier{}
  svc := newRestaurantServiceForTest(t, inviteRepo, memberRepo, userRepo, notifier)

  token := seedInvitation(t, inviteRepo, restaurantID, "staff@example.com")

  member, err := svc.AcceptInvitation(context.Background(), userID, token)
  if err != nil {
    t.Fatalf("AcceptInvitation: %v", err)
  }
  if member.RestaurantID != restaurantID || member.Role != types.RoleStaff {
    t.Fatalf("member: %+v", member)
  }
  if !notifier.saw(sse.SSEEventMemberJoined) {
    t.Fatalf("expected %s event, got %v", sse.SSEEventMemberJoined, notifier.events)
  }
}

func TestAcceptInvitationSecondAcceptFails(t *testing.T) {
  restaurantID := uuid.New()
  userID := uuid.New()

  inviteRepo := newFakeInvitationRepo()
  memberRepo := &fakeMemberRepo{}
  userRepo := &fakeUserRepo{users: map[uuid.UUID]*types.User{
    userID: {ID: userID, Email: "staff@example.com"},
  }}
  svc := newRestaurantServiceForTest(t, inviteRepo, memberRepo, userRepo, &recorderNotifier{})

  token := seedInvitation(t, inviteRepo, restaurantID, "staff@example.com")

  if _, err := svc.AcceptInvitation(context.Background(), userID, token); err != nil {
    t.Fatalf("first accept: %v", err)
  }
  if _, err := svc.AcceptInvitation(context.Background(), userID, token); err == nil {
    t.Fatalf("second accept should fail on status")
  }
  if len(memberRepo.members) != 1 {
    t.Fatalf("second accept must not add a membership: %d", len(memberRepo.members))
  }
}

func TestAcceptInvitationRejectsWrongEmail(t *testing.T) {
  restaurantID := uuid.New()
  userID := uuid.New()

  inviteRepo := newFakeInvitationRepo()
  userRepo := &fakeUserRepo{users: map[uuid.UUID]*types.User{
    userID: {ID: userID, Email: "other@example.com"},
  }}
  svc := newRestaurantServiceForTest(t, inviteRepo, &fakeMemberRepo{}, userRepo, &recorderNotifier{})

  token := seedInvitation(t, inviteRepo, restaurantID, "staff@example.com")

  if _, err := svc.AcceptInvitation(context.Background(), userID, token); err == nil {
    t.Fatalf("accept with mismatched email should fail")
  }
}

func TestAcceptInvitationExpired(t *testing.T) {
  restaurantID := uuid.New()
  userID := uuid.New()

  inviteRepo := newFakeInvitationRepo()
  userRepo := &fakeUserRepo{users: map[uuid.UUID]*types.User{
    userID: {ID: userID, Email: "staff@example.com"},
  }}
  svc := newRestaurantServiceForTest(t, inviteRepo, &fakeMemberRepo{}, userRepo, &recorderNotifier{})

  token, err := randomToken()
  if err != nil {
    t.Fatalf("randomToken: %v", err)
  }
  inv := &types.Invitation{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    Email:        "staff@example.com",
    Role:         types.RoleStaff,
    TokenHash:    hashToken(token),
    Status:       types.InvitationStatusPending,
    ExpiresAt:    time.Now().Add(-time.Hour),
  }
  if err := inviteRepo.Create(context.Background(), nil, inv); err != nil {
    t.Fatalf("seed: %v", err)
  }

  if _, err := svc.AcceptInvitation(context.Background(), userID, token); err == nil || !strings.Contains(err.Error(), "expired") {
    t.Fatalf("expected expiry error, got %v", err)
  }
  if got := inviteRepo.invitations[inv.ID].Status; got != types.InvitationStatusExpired {
    t.Fatalf("invitation should be marked expired, got %q", got)
  }
}

func TestSetAndVerifyMemberPin(t *testing.T) {
  restaurantID := uuid.New()
  userID := uuid.New()

  memberRepo := &fakeMemberRepo{members: []*types.RestaurantMember{{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    UserID:       userID,
    Role:         types.RoleStaff,
  }}}
  svc := newRestaurantServiceForTest(t, newFakeInvitationRepo(), memberRepo, &fakeUserRepo{}, &recorderNotifier{})

  if err := svc.SetMemberPin(context.Background(), restaurantID, userID, "12ab"); err == nil {
    t.Fatalf("non-numeric pin should be rejected")
  }
  if err := svc.SetMemberPin(context.Background(), restaurantID, userID, "123"); err == nil {
    t.Fatalf("short pin should be rejected")
  }
  if err := svc.SetMemberPin(context.Background(), restaurantID, userID, "4821"); err != nil {
    t.Fatalf("SetMemberPin: %v", err)
  }
  if err := svc.VerifyMemberPin(context.Background(), restaurantID, userID, "4821"); err != nil {
    t.Fatalf("VerifyMemberPin: %v", err)
  }
  if err := svc.VerifyMemberPin(context.Background(), restaurantID, userID, "0000"); err == nil {
    t.Fatalf("wrong pin should be rejected")
  }
}

func TestUpdateMemberRoleProtectsLastOwner(t *testing.T) {
  restaurantID := uuid.New()
  ownerID := uuid.New()

  memberRepo := &fakeMemberRepo{members: []*types.RestaurantMember{{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    UserID:       ownerID,
    Role:         types.RoleOwner,
  }}}
  svc := newRestaurantServiceForTest(t, newFakeInvitationRepo(), memberRepo, &fakeUserRepo{}, &recorderNotifier{})

  if err := svc.UpdateMemberRole(context.Background(), restaurantID, ownerID, types.RoleManager); err == nil {
    t.Fatalf("demoting the only owner should fail")
  }

  secondOwner := uuid.New()
  memberRepo.members = append(memberRepo.members, &types.RestaurantMember{
    ID:           uuid.New(),
    RestaurantID: restaurantID,
    UserID:       secondOwner,
    Role:         types.RoleOwner,
  })
  if err := svc.UpdateMemberRole(context.Background(), restaurantID, ownerID, types.RoleManager); err != nil {
    t.Fatalf("demotion with a second owner present: %v", err)
  }
}
