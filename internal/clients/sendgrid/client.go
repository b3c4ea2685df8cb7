package sendgrid

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "os"
  "strings"
  "time"
  "github.com/shiftline/shiftline-backend/internal/logger"
)

type Client interface {
  Send(ctx context.Context, req SendEmailRequest) error
}

type EmailAddress struct {
  Email string `json:"email"`
  Name  string `json:"name,omitempty"`
}

type SendEmailRequest struct {
  To      []EmailAddress
  Subject string
  Text    string
  HTML    string
}

type client struct {
  log        *logger.Logger
  httpClient *http.Client
  baseURL    string
  apiKey     string
  from       EmailAddress
  maxRetries int
}

func NewFromEnv(log *logger.Logger) (Client, error) {
  if log == nil {
    return nil, fmt.Errorf("logger required")
  }
  apiKey := strings.TrimSpace(os.Getenv("SENDGRID_API_KEY"))
  if apiKey == "" {
    return nil, fmt.Errorf("missing SENDGRID_API_KEY")
  }
  baseURL := strings.TrimSpace(os.Getenv("SENDGRID_BASE_URL"))
  if baseURL == "" {
    baseURL = "https://api.sendgrid.com"
  }
  return &client{
    log:        log.With("client", "SendGridClient"),
    httpClient: &http.Client{Timeout: 30 * time.Second},
    baseURL:    strings.TrimRight(baseURL, "/"),
    apiKey:     apiKey,
    from: EmailAddress{
      Email: strings.TrimSpace(os.Getenv("SENDGRID_FROM_EMAIL")),
      Name:  strings.TrimSpace(os.Getenv("SENDGRID_FROM_NAME")),
    },
    maxRetries: 3,
  }, nil
}

type personalization struct {
  To []EmailAddress `json:"to"`
}

type mailContent struct {
  Type  string `json:"type"`
  Value string `json:"value"`
}

type mailSendRequest struct {
  Personalizations []personalization `json:"personalizations"`
  From             EmailAddress      `json:"from"`
  Subject          string            `json:"subject"`
  Content          []mailContent     `json:"content"`
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) error {
  if len(req.To) == 0 {
    return fmt.Errorf("sendgrid: To required")
  }
  if c.from.Email == "" {
    return fmt.Errorf("sendgrid: SENDGRID_FROM_EMAIL not set")
  }
  if strings.TrimSpace(req.Subject) == "" {
    return fmt.Errorf("sendgrid: Subject required")
  }

  contents := []mailContent{}
  if t := strings.TrimSpace(req.Text); t != "" {
    contents = append(contents, mailContent{Type: "text/plain", Value: t})
  }
  if h := strings.TrimSpace(req.HTML); h != "" {
    contents = append(contents, mailContent{Type: "text/html", Value: h})
  }
  if len(contents) == 0 {
    return fmt.Errorf("sendgrid: Text or HTML content required")
  }

  wire := mailSendRequest{
    Personalizations: []personalization{{To: req.To}},
    From:             c.from,
    Subject:          strings.TrimSpace(req.Subject),
    Content:          contents,
  }

  backoff := 1 * time.Second
  var lastErr error
  for attempt := 0; attempt <= c.maxRetries; attempt++ {
    if ctx.Err() != nil {
      return ctx.Err()
    }
    status, err := c.doOnce(ctx, wire)
    if err == nil {
      return nil
    }
    lastErr = err

    retryable := status == 0 || status == http.StatusTooManyRequests || status >= 500
    if !retryable || attempt == c.maxRetries {
      return err
    }

    c.log.Warn("SendGrid request retrying",
      "attempt", attempt+1,
      "max_retries", c.maxRetries,
      "sleep", backoff.String(),
      "error", err.Error(),
    )
    time.Sleep(backoff)
    backoff *= 2
    if backoff > 10*time.Second {
      backoff = 10 * time.Second
    }
  }
  return lastErr
}

func (c *client) doOnce(ctx context.Context, wire mailSendRequest) (int, error) {
  var buf bytes.Buffer
  if err := json.NewEncoder(&buf).Encode(wire); err != nil {
    return 0, err
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/mail/send", &buf)
  if err != nil {
    return 0, err
  }
  req.Header.Set("Authorization", "Bearer "+c.apiKey)
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return 0, err
  }
  raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
  _ = resp.Body.Close()

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    body := strings.TrimSpace(string(raw))
    if len(body) > 500 {
      body = body[:500] + "..."
    }
    return resp.StatusCode, fmt.Errorf("sendgrid http %d: %s", resp.StatusCode, body)
  }
  return resp.StatusCode, nil
}
