package services

import (
  "context"
  "crypto/rand"
  "crypto/sha256"
  "encoding/hex"
  "fmt"
  "os"
  "time"
  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/normalization"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/types"
)

const (
  accessTokenTTL  = 15 * time.Minute
  refreshTokenTTL = 30 * 24 * time.Hour
)

type AuthTokens struct {
  AccessToken  string `json:"access_token"`
  RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
  Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, *AuthTokens, error)
  Login(ctx context.Context, email, password string) (*types.User, *AuthTokens, error)
  Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error)
  Logout(ctx context.Context, refreshToken string) error
  ValidateAccessToken(tokenString string) (uuid.UUID, error)
}

type authService struct {
  log       *logger.Logger
  userRepo  repos.UserRepo
  tokenRepo repos.UserTokenRepo
  avatar    AvatarService
  jwtSecret []byte
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, tokenRepo repos.UserTokenRepo, avatar AvatarService) (AuthService, error) {
  secret := os.Getenv("JWT_SECRET")
  if secret == "" {
    return nil, fmt.Errorf("missing JWT_SECRET")
  }
  return &authService{
    log:       log.With("service", "AuthService"),
    userRepo:  userRepo,
    tokenRepo: tokenRepo,
    avatar:    avatar,
    jwtSecret: []byte(secret),
  }, nil
}

func (s *authService) Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, *AuthTokens, error) {
  email = normalization.ParseEmail(email)
  if email == "" {
    return nil, nil, NewEmptyInputError("email")
  }
  if len(password) < 8 {
    return nil, nil, fmt.Errorf("password must be at least 8 characters")
  }

  if _, err := s.userRepo.GetByEmail(ctx, nil, email); err == nil {
    return nil, nil, fmt.Errorf("email already registered")
  }

  hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
  if err != nil {
    return nil, nil, err
  }

  user := &types.User{
    ID:           uuid.New(),
    Email:        email,
    PasswordHash: string(hash),
    FirstName:    normalization.ParseInputString(firstName),
    LastName:     normalization.ParseInputString(lastName),
  }

  if s.avatar != nil {
    if url, aErr := s.avatar.GenerateUserAvatar(ctx, user.ID, user.FirstName, user.LastName); aErr != nil {
      s.log.Warn("Avatar generation failed", "userID", user.ID, "error", aErr)
    } else {
      user.AvatarURL = url
    }
  }

  if err := s.userRepo.Create(ctx, nil, user); err != nil {
    return nil, nil, err
  }

  tokens, err := s.issueTokens(ctx, user.ID)
  if err != nil {
    return nil, nil, err
  }
  s.log.Info("User registered", "userID", user.ID)
  return user, tokens, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*types.User, *AuthTokens, error) {
  email = normalization.ParseEmail(email)
  user, err := s.userRepo.GetByEmail(ctx, nil, email)
  if err != nil {
    return nil, nil, fmt.Errorf("invalid credentials")
  }
  if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
    return nil, nil, fmt.Errorf("invalid credentials")
  }

  tokens, err := s.issueTokens(ctx, user.ID)
  if err != nil {
    return nil, nil, err
  }
  return user, tokens, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
  stored, err := s.tokenRepo.GetByHash(ctx, nil, hashToken(refreshToken))
  if err != nil {
    return nil, fmt.Errorf("invalid refresh token")
  }
  if stored.Revoked || time.Now().After(stored.ExpiresAt) {
    return nil, fmt.Errorf("refresh token expired")
  }

  // rotate: revoke the old token, issue a fresh pair
  if err := s.tokenRepo.Revoke(ctx, nil, stored.ID); err != nil {
    return nil, err
  }
  return s.issueTokens(ctx, stored.UserID)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
  stored, err := s.tokenRepo.GetByHash(ctx, nil, hashToken(refreshToken))
  if err != nil {
    return nil
  }
  return s.tokenRepo.Revoke(ctx, nil, stored.ID)
}

func (s *authService) ValidateAccessToken(tokenString string) (uuid.UUID, error) {
  token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
    }
    return s.jwtSecret, nil
  })
  if err != nil || !token.Valid {
    return uuid.Nil, fmt.Errorf("invalid access token")
  }
  claims, ok := token.Claims.(jwt.MapClaims)
  if !ok {
    return uuid.Nil, fmt.Errorf("invalid token claims")
  }
  sub, _ := claims["sub"].(string)
  userID, err := uuid.Parse(sub)
  if err != nil {
    return uuid.Nil, fmt.Errorf("invalid subject claim")
  }
  return userID, nil
}

func (s *authService) issueTokens(ctx context.Context, userID uuid.UUID) (*AuthTokens, error) {
  now := time.Now()
  claims := jwt.MapClaims{
    "sub": userID.String(),
    "iat": now.Unix(),
    "exp": now.Add(accessTokenTTL).Unix(),
  }
  access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
  if err != nil {
    return nil, err
  }

  refresh, err := randomToken()
  if err != nil {
    return nil, err
  }
  record := &types.UserToken{
    ID:        uuid.New(),
    UserID:    userID,
    TokenHash: hashToken(refresh),
    ExpiresAt: now.Add(refreshTokenTTL),
  }
  if err := s.tokenRepo.Create(ctx, nil, record); err != nil {
    return nil, err
  }

  return &AuthTokens{AccessToken: access, RefreshToken: refresh}, nil
}

func randomToken() (string, error) {
  buf := make([]byte, 32)
  if _, err := rand.Read(buf); err != nil {
    return "", err
  }
  return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
  sum := sha256.Sum256([]byte(token))
  return hex.EncodeToString(sum[:])
}
