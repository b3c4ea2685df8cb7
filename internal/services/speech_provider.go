package services

import (
  "context"
  "fmt"
  "os"
  "path/filepath"
  "strings"
  "time"
  speech "cloud.google.com/go/speech/apiv1"
  "google.golang.org/api/option"
  "google.golang.org/grpc/codes"
  "google.golang.org/grpc/status"
  speechpb "cloud.google.com/go/speech/apiv1/speechpb"
  "github.com/shiftline/shiftline-backend/internal/logger"
)

// SpeechProviderService transcribes voice memos. Memos are short (a
// manager talking for a minute or two) so a single transcript string is
// all the pipeline needs.
type SpeechProviderService interface {
  TranscribeAudioGCS(ctx context.Context, gcsURI string, cfg SpeechConfig) (*SpeechResult, error)
  Close() error
}

type SpeechConfig struct {
  LanguageCode               string
  Model                      string
  UseEnhanced                bool
  EnableAutomaticPunctuation bool

  SampleRateHertz   int
  AudioChannelCount int

  // Optional override
  Encoding speechpb.RecognitionConfig_AudioEncoding
}

type SpeechResult struct {
  Provider    string `json:"provider"`
  SourceURI   string `json:"source_uri,omitempty"`
  PrimaryText string `json:"primary_text"`
}

type speechProviderService struct {
  log    *logger.Logger
  client *speech.Client

  maxRetries int
}

func NewSpeechProviderService(log *logger.Logger) (SpeechProviderService, error) {
  if log == nil {
    return nil, fmt.Errorf("logger required")
  }
  slog := log.With("service", "SpeechProviderService")

  creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
  if creds == "" {
    creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
  }

  ctx := context.Background()

  var c *speech.Client
  var err error
  if creds != "" {
    c, err = speech.NewClient(ctx, option.WithCredentialsFile(creds))
  } else {
    c, err = speech.NewClient(ctx)
  }
  if err != nil {
    return nil, fmt.Errorf("speech client: %w", err)
  }

  return &speechProviderService{
    log:        slog,
    client:     c,
    maxRetries: 4,
  }, nil
}

func (s *speechProviderService) Close() error {
  if s == nil || s.client == nil {
    return nil
  }
  return s.client.Close()
}

func (s *speechProviderService) TranscribeAudioGCS(ctx context.Context, gcsURI string, cfg SpeechConfig) (*SpeechResult, error) {
  ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
  defer cancel()

  if !strings.HasPrefix(gcsURI, "gs://") {
    return nil, fmt.Errorf("gcsURI must be gs://... got %q", gcsURI)
  }

  rcfg := buildSpeechRecognitionConfig(gcsURI, cfg)
  req := &speechpb.LongRunningRecognizeRequest{
    Config: rcfg,
    Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Uri{Uri: gcsURI}},
  }

  resp, err := s.retryLR(ctx, func() (*speechpb.LongRunningRecognizeResponse, error) {
    op, err := s.client.LongRunningRecognize(ctx, req)
    if err != nil {
      return nil, err
    }
    return op.Wait(ctx)
  })
  if err != nil {
    return nil, NewProviderError("gcp_speech", fmt.Errorf("longrunningrecognize: %w", err))
  }

  return parseSpeechResponse(gcsURI, resp), nil
}

func buildSpeechRecognitionConfig(gcsURI string, cfg SpeechConfig) *speechpb.RecognitionConfig {
  if cfg.LanguageCode == "" {
    cfg.LanguageCode = "en-US"
  }

  enc := cfg.Encoding
  if enc == speechpb.RecognitionConfig_ENCODING_UNSPECIFIED {
    enc = inferSpeechEncoding(gcsURI)
  }

  return &speechpb.RecognitionConfig{
    LanguageCode:               cfg.LanguageCode,
    Model:                      cfg.Model,
    UseEnhanced:                cfg.UseEnhanced,
    EnableAutomaticPunctuation: cfg.EnableAutomaticPunctuation,
    Encoding:                   enc,
    SampleRateHertz:            int32(max0(cfg.SampleRateHertz)),
    AudioChannelCount:          int32(max0(cfg.AudioChannelCount)),
  }
}

func inferSpeechEncoding(gcsURI string) speechpb.RecognitionConfig_AudioEncoding {
  ext := strings.ToLower(filepath.Ext(gcsURI))

  switch ext {
  case ".wav":
    return speechpb.RecognitionConfig_LINEAR16
  case ".flac":
    return speechpb.RecognitionConfig_FLAC
  case ".mp3":
    return speechpb.RecognitionConfig_MP3
  case ".ogg", ".opus", ".webm":
    return speechpb.RecognitionConfig_OGG_OPUS
  default:
    // leave unspecified; API can sometimes auto-detect in practice
    return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
  }
}

func parseSpeechResponse(sourceURI string, resp *speechpb.LongRunningRecognizeResponse) *SpeechResult {
  out := &SpeechResult{
    Provider:  "gcp_speech",
    SourceURI: sourceURI,
  }
  if resp == nil || len(resp.Results) == 0 {
    return out
  }

  var full strings.Builder
  for _, r := range resp.Results {
    if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
      continue
    }
    alt := r.Alternatives[0]
    if strings.TrimSpace(alt.Transcript) == "" {
      continue
    }
    if full.Len() > 0 {
      full.WriteString(" ")
    }
    full.WriteString(strings.TrimSpace(alt.Transcript))
  }
  out.PrimaryText = strings.TrimSpace(full.String())
  return out
}

func (s *speechProviderService) retryLR(ctx context.Context, fn func() (*speechpb.LongRunningRecognizeResponse, error)) (*speechpb.LongRunningRecognizeResponse, error) {
  backoff := 750 * time.Millisecond
  var last error
  for attempt := 0; attempt <= s.maxRetries; attempt++ {
    if ctx.Err() != nil {
      return nil, ctx.Err()
    }
    resp, err := fn()
    if err == nil {
      return resp, nil
    }
    last = err

    code := status.Code(err)
    if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
      return nil, err
    }
    if attempt == s.maxRetries {
      break
    }
    time.Sleep(backoff)
    backoff *= 2
    if backoff > 10*time.Second {
      backoff = 10 * time.Second
    }
  }
  return nil, last
}

func max0(x int) int {
  if x < 0 {
    return 0
  }
  return x
}
