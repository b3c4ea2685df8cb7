package services

import (
  "bytes"
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "io"
  "math/rand"
  "net"
  "net/http"
  "os"
  "strconv"
  "strings"
  "time"
  "github.com/google/uuid"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/repos"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type OpenAIClient interface {
  Embed(ctx context.Context, inputs []string) ([][]float32, error)
  Complete(ctx context.Context, system string, user string) (string, error)
}

type openAIClient struct {
  log        *logger.Logger
  baseURL    string
  apiKey     string
  model      string
  embedModel string
  httpClient *http.Client

  maxRetries int

  // calls, when set, records every model call for cost accounting.
  calls repos.AICallLogRepo
}

func NewOpenAIClient(log *logger.Logger, calls repos.AICallLogRepo) (OpenAIClient, error) {
  apiKey := os.Getenv("OPENAI_API_KEY")
  if apiKey == "" {
    return nil, fmt.Errorf("missing OPENAI_API_KEY")
  }

  baseURL := os.Getenv("OPENAI_BASE_URL")
  if baseURL == "" {
    baseURL = "https://api.openai.com"
  }

  model := os.Getenv("OPENAI_MODEL")
  if model == "" {
    model = "gpt-4o-mini"
  }

  embed := os.Getenv("OPENAI_EMBED_MODEL")
  if embed == "" {
    embed = "text-embedding-3-small"
  }

  timeoutSec := 120
  if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
      timeoutSec = parsed
    }
  }

  maxRetries := 4
  if v := os.Getenv("OPENAI_MAX_RETRIES"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
      maxRetries = parsed
    }
  }

  return &openAIClient{
    log:        log.With("service", "OpenAIClient"),
    baseURL:    baseURL,
    apiKey:     apiKey,
    model:      model,
    embedModel: embed,
    httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
    maxRetries: maxRetries,
    calls:      calls,
  }, nil
}

type tokenUsage struct {
  PromptTokens     int `json:"prompt_tokens"`
  CompletionTokens int `json:"completion_tokens"`
}

func (c *openAIClient) record(ctx context.Context, kind string, model string, start time.Time, usage tokenUsage, callErr error) {
  if c.calls == nil {
    return
  }
  entry := &types.AICallLog{
    ID:               uuid.New(),
    Kind:             kind,
    Model:            model,
    StatusCode:       http.StatusOK,
    PromptTokens:     usage.PromptTokens,
    CompletionTokens: usage.CompletionTokens,
    DurationMS:       time.Since(start).Milliseconds(),
  }
  if callErr != nil {
    entry.StatusCode = 0
    entry.Error = callErr.Error()
    var httpErr *openAIHTTPError
    if errors.As(callErr, &httpErr) {
      entry.StatusCode = httpErr.StatusCode
    }
  }
  if err := c.calls.Create(ctx, nil, entry); err != nil {
    c.log.Warn("Failed to record AI call", "kind", kind, "error", err)
  }
}

type openAIHTTPError struct {
  StatusCode int
  Body       string
}

func (e *openAIHTTPError) Error() string {
  return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
  if code == 408 || code == 429 {
    return true
  }
  if code >= 500 && code <= 599 {
    return true
  }
  return false
}

func isRetryableErr(err error) bool {
  if err == nil {
    return false
  }
  if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
    // caller cancellation is checked separately in the retry loop
    return true
  }
  var netErr net.Error
  if errors.As(err, &netErr) {
    if netErr.Timeout() {
      return true
    }
  }
  var httpErr *openAIHTTPError
  if errors.As(err, &httpErr) {
    return isRetryableHTTP(httpErr.StatusCode)
  }
  return false
}

func jitterSleep(base time.Duration) time.Duration {
  // +/- 20%
  if base <= 0 {
    return 0
  }
  j := 0.2
  delta := base.Seconds() * j
  low := base.Seconds() - delta
  high := base.Seconds() + delta
  if low < 0 {
    low = 0
  }
  v := low + rand.Float64()*(high-low)
  return time.Duration(v * float64(time.Second))
}

func (c *openAIClient) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
  var buf bytes.Buffer
  if body != nil {
    if err := json.NewEncoder(&buf).Encode(body); err != nil {
      return nil, nil, err
    }
  }

  req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
  if err != nil {
    return nil, nil, err
  }
  req.Header.Set("Authorization", "Bearer "+c.apiKey)
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return nil, nil, err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return resp, nil, readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }
  return resp, raw, nil
}

func (c *openAIClient) do(ctx context.Context, method, path string, body any, out any) error {
  // exponential backoff: 1s, 2s, 4s, 8s (cap ~10s)
  backoff := 1 * time.Second

  for attempt := 0; attempt <= c.maxRetries; attempt++ {
    if ctx.Err() != nil {
      return ctx.Err()
    }

    resp, raw, err := c.doOnce(ctx, method, path, body)
    if err == nil {
      if out == nil {
        return nil
      }
      if uErr := json.Unmarshal(raw, out); uErr != nil {
        return fmt.Errorf("openai decode error: %w; raw=%s", uErr, string(raw))
      }
      return nil
    }

    if !isRetryableErr(err) {
      return err
    }
    if attempt == c.maxRetries {
      return err
    }

    // Respect Retry-After when present
    sleepFor := backoff
    if resp != nil {
      ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
      if ra != "" {
        if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
          sleepFor = time.Duration(secs) * time.Second
        }
      }
    }

    if sleepFor > 10*time.Second {
      sleepFor = 10 * time.Second
    }
    sleepFor = jitterSleep(sleepFor)

    c.log.Warn("OpenAI request retrying",
      "path", path,
      "attempt", attempt+1,
      "max_retries", c.maxRetries,
      "sleep", sleepFor.String(),
      "error", err.Error(),
    )

    time.Sleep(sleepFor)
    backoff *= 2
  }

  return fmt.Errorf("unreachable retry loop")
}

// ---- Embeddings ----

type embeddingsRequest struct {
  Model string   `json:"model"`
  Input []string `json:"input"`
}

type embeddingsResponse struct {
  Data []struct {
    Embedding []float64 `json:"embedding"`
    Index     int       `json:"index"`
  } `json:"data"`
  Usage tokenUsage `json:"usage"`
}

func (c *openAIClient) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
  if len(inputs) == 0 {
    return [][]float32{}, nil
  }
  req := embeddingsRequest{
    Model: c.embedModel,
    Input: inputs,
  }
  start := time.Now()
  var resp embeddingsResponse
  err := c.do(ctx, "POST", "/v1/embeddings", req, &resp)
  c.record(ctx, "embed", c.embedModel, start, resp.Usage, err)
  if err != nil {
    return nil, NewProviderError("openai", err)
  }
  out := make([][]float32, len(inputs))
  for _, d := range resp.Data {
    vec := make([]float32, len(d.Embedding))
    for i, f := range d.Embedding {
      vec[i] = float32(f)
    }
    if d.Index >= 0 && d.Index < len(out) {
      out[d.Index] = vec
    }
  }
  for i := range out {
    if out[i] == nil {
      return nil, NewProviderError("openai", fmt.Errorf("missing embedding for index %d", i))
    }
  }
  return out, nil
}

// ---- Chat completion (plain text) ----

type chatCompletionRequest struct {
  Model    string `json:"model"`
  Messages []struct {
    Role    string `json:"role"`
    Content string `json:"content"`
  } `json:"messages"`
  Temperature float64 `json:"temperature"`
}

type chatCompletionResponse struct {
  Choices []struct {
    Message struct {
      Content string `json:"content"`
    } `json:"message"`
    FinishReason string `json:"finish_reason"`
  } `json:"choices"`
  Usage tokenUsage `json:"usage"`
}

func (c *openAIClient) Complete(ctx context.Context, system string, user string) (string, error) {
  req := chatCompletionRequest{
    Model:       c.model,
    Temperature: 0.2,
  }
  req.Messages = []struct {
    Role    string `json:"role"`
    Content string `json:"content"`
  }{
    {Role: "system", Content: system},
    {Role: "user", Content: user},
  }

  start := time.Now()
  var resp chatCompletionResponse
  err := c.do(ctx, "POST", "/v1/chat/completions", req, &resp)
  c.record(ctx, "complete", c.model, start, resp.Usage, err)
  if err != nil {
    return "", NewProviderError("openai", err)
  }
  if len(resp.Choices) == 0 {
    return "", NewProviderError("openai", fmt.Errorf("no choices in response"))
  }
  text := strings.TrimSpace(resp.Choices[0].Message.Content)
  if text == "" {
    return "", NewProviderError("openai", fmt.Errorf("empty completion"))
  }
  return text, nil
}
