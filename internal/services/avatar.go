package services

import (
  "bytes"
  "context"
  "fmt"
  "image/color"
  "math/rand"
  "os"
  "strings"
  "time"
  "github.com/fogleman/gg"
  "github.com/golang/freetype/truetype"
  "github.com/google/uuid"
  "golang.org/x/image/font"
  "github.com/shiftline/shiftline-backend/internal/logger"
)

// AvatarService renders initials-on-color avatars for new users and
// restaurants so the UI always has something to show.
type AvatarService interface {
  GenerateUserAvatar(ctx context.Context, userID uuid.UUID, firstName, lastName string) (string, error)
  GenerateRestaurantAvatar(ctx context.Context, restaurantID uuid.UUID, name string) (string, error)
}

// Embedded palette keeps startup free of config files.
var avatarPalette = []color.NRGBA{
  {R: 0xE5, G: 0x6B, B: 0x4A, A: 0xFF},
  {R: 0xD9, G: 0x8E, B: 0x32, A: 0xFF},
  {R: 0x5B, G: 0x8C, B: 0x5A, A: 0xFF},
  {R: 0x3C, G: 0x79, B: 0xA6, A: 0xFF},
  {R: 0x7A, G: 0x5C, B: 0xA8, A: 0xFF},
  {R: 0xA6, G: 0x4C, B: 0x6E, A: 0xFF},
  {R: 0x4A, G: 0x8B, B: 0x8C, A: 0xFF},
}

type avatarService struct {
  log      *logger.Logger
  bucket   BucketService
  fontFace font.Face
  rng      *rand.Rand
}

func NewAvatarService(log *logger.Logger, bucket BucketService) (AvatarService, error) {
  serviceLog := log.With("service", "AvatarService")

  fontPath := os.Getenv("AVATAR_FONT")
  if strings.TrimSpace(fontPath) == "" {
    return nil, fmt.Errorf("env var AVATAR_FONT is empty")
  }
  face, err := loadFontFace(fontPath, 206)
  if err != nil {
    return nil, fmt.Errorf("could not load avatar font: %w", err)
  }

  return &avatarService{
    log:      serviceLog,
    bucket:   bucket,
    fontFace: face,
    rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
  }, nil
}

func (as *avatarService) GenerateUserAvatar(ctx context.Context, userID uuid.UUID, firstName, lastName string) (string, error) {
  key := fmt.Sprintf("avatars/users/%s/%d.png", userID, time.Now().UnixNano())
  return as.renderAndUpload(ctx, key, computeInitials(firstName, lastName))
}

func (as *avatarService) GenerateRestaurantAvatar(ctx context.Context, restaurantID uuid.UUID, name string) (string, error) {
  words := strings.Fields(name)
  first, last := "", ""
  if len(words) > 0 {
    first = words[0]
  }
  if len(words) > 1 {
    last = words[len(words)-1]
  }
  key := fmt.Sprintf("avatars/restaurants/%s/%d.png", restaurantID, time.Now().UnixNano())
  return as.renderAndUpload(ctx, key, computeInitials(first, last))
}

func (as *avatarService) renderAndUpload(ctx context.Context, key, initials string) (string, error) {
  if as.bucket == nil {
    return "", fmt.Errorf("avatar storage is not configured")
  }
  const size = 512

  dc := gg.NewContext(size, size)
  dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
  dc.Clip()

  dc.SetColor(avatarPalette[as.rng.Intn(len(avatarPalette))])
  dc.DrawRectangle(0, 0, float64(size), float64(size))
  dc.Fill()

  dc.SetFontFace(as.fontFace)
  tw, th := dc.MeasureString(initials)
  cx, cy := float64(size)/2, float64(size)/2

  dc.SetColor(color.White)
  dc.DrawString(initials, cx-(tw/2)+5, cy+(th/2)-10)

  var buf bytes.Buffer
  if err := dc.EncodePNG(&buf); err != nil {
    return "", fmt.Errorf("failed to encode PNG: %w", err)
  }
  if err := as.bucket.UploadFile(ctx, key, bytes.NewReader(buf.Bytes())); err != nil {
    return "", fmt.Errorf("failed to upload avatar: %w", err)
  }
  return as.bucket.GetPublicURL(key), nil
}

func computeInitials(first, last string) string {
  fInit := "?"
  if len(first) > 0 {
    fInit = strings.ToUpper(first[:1])
  }
  lInit := "?"
  if len(last) > 0 {
    lInit = strings.ToUpper(last[:1])
  }
  return fInit + lInit
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
  fontBytes, err := os.ReadFile(fontPath)
  if err != nil {
    return nil, fmt.Errorf("failed to read font file: %w", err)
  }
  parsedFont, err := truetype.Parse(fontBytes)
  if err != nil {
    return nil, fmt.Errorf("failed to parse TTF: %w", err)
  }
  face := truetype.NewFace(parsedFont, &truetype.Options{
    Size:    size,
    DPI:     72,
    Hinting: font.HintingNone,
  })
  return face, nil
}
