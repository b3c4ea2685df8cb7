package toast

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "strings"
  "sync"
  "time"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/utils"
)

// Client talks to the Toast partner API. Sales and labor pulls are
// best-effort inputs to shift summaries; callers treat failures as
// missing data, never as fatal.
type Client interface {
  GetSalesSummary(ctx context.Context, creds Credentials, businessDate string) (*SalesSummary, error)
  GetLaborSummary(ctx context.Context, creds Credentials, businessDate string) (*LaborSummary, error)
}

type Credentials struct {
  RestaurantGUID string
  ClientID       string
  ClientSecret   string
}

func (c Credentials) Configured() bool {
  return c.RestaurantGUID != "" && c.ClientID != "" && c.ClientSecret != ""
}

type SalesSummary struct {
  BusinessDate string  `json:"business_date"`
  NetSales     float64 `json:"net_sales"`
  GrossSales   float64 `json:"gross_sales"`
  OrderCount   int     `json:"order_count"`
  GuestCount   int     `json:"guest_count"`
  VoidAmount   float64 `json:"void_amount"`
}

type LaborSummary struct {
  BusinessDate string  `json:"business_date"`
  LaborCost    float64 `json:"labor_cost"`
  LaborHours   float64 `json:"labor_hours"`
  EmployeeCount int    `json:"employee_count"`
}

type client struct {
  log        *logger.Logger
  httpClient *http.Client
  baseURL    string

  mu     sync.Mutex
  tokens map[string]cachedToken
}

type cachedToken struct {
  value     string
  expiresAt time.Time
}

func NewClient(log *logger.Logger) Client {
  baseURL := utils.GetEnv("TOAST_API_BASE_URL", "https://ws-api.toasttab.com", log)
  return &client{
    log:        log.With("client", "ToastClient"),
    httpClient: &http.Client{Timeout: 30 * time.Second},
    baseURL:    strings.TrimRight(baseURL, "/"),
    tokens:     make(map[string]cachedToken),
  }
}

// token returns a cached bearer token for the credentials, refreshing it
// a minute before expiry.
func (c *client) token(ctx context.Context, creds Credentials) (string, error) {
  c.mu.Lock()
  cached, ok := c.tokens[creds.ClientID]
  c.mu.Unlock()
  if ok && time.Until(cached.expiresAt) > time.Minute {
    return cached.value, nil
  }

  body := map[string]string{
    "clientId":     creds.ClientID,
    "clientSecret": creds.ClientSecret,
    "userAccessType": "TOAST_MACHINE_CLIENT",
  }
  raw, err := json.Marshal(body)
  if err != nil {
    return "", err
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodPost,
    c.baseURL+"/authentication/v1/authentication/login", bytes.NewReader(raw))
  if err != nil {
    return "", err
  }
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return "", fmt.Errorf("toast auth request: %w", err)
  }
  defer resp.Body.Close()

  respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
  if err != nil {
    return "", err
  }
  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return "", fmt.Errorf("toast auth failed: status %d: %s", resp.StatusCode, truncate(respBody, 200))
  }

  var parsed struct {
    Token struct {
      AccessToken string `json:"accessToken"`
      ExpiresIn   int    `json:"expiresIn"`
    } `json:"token"`
  }
  if err := json.Unmarshal(respBody, &parsed); err != nil {
    return "", fmt.Errorf("toast auth decode: %w", err)
  }
  if parsed.Token.AccessToken == "" {
    return "", fmt.Errorf("toast auth returned empty token")
  }

  expiresIn := parsed.Token.ExpiresIn
  if expiresIn <= 0 {
    expiresIn = 3600
  }
  c.mu.Lock()
  c.tokens[creds.ClientID] = cachedToken{
    value:     parsed.Token.AccessToken,
    expiresAt: time.Now().Add(time.Duration(expiresIn) * time.Second),
  }
  c.mu.Unlock()

  return parsed.Token.AccessToken, nil
}

func (c *client) get(ctx context.Context, creds Credentials, path string, out interface{}) error {
  tok, err := c.token(ctx, creds)
  if err != nil {
    return err
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
  if err != nil {
    return err
  }
  req.Header.Set("Authorization", "Bearer "+tok)
  req.Header.Set("Toast-Restaurant-External-ID", creds.RestaurantGUID)

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return fmt.Errorf("toast request: %w", err)
  }
  defer resp.Body.Close()

  respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
  if err != nil {
    return err
  }
  if resp.StatusCode == http.StatusUnauthorized {
    // Token may have been revoked server-side; drop the cache entry so
    // the next call re-authenticates.
    c.mu.Lock()
    delete(c.tokens, creds.ClientID)
    c.mu.Unlock()
  }
  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return fmt.Errorf("toast request failed: status %d: %s", resp.StatusCode, truncate(respBody, 200))
  }
  return json.Unmarshal(respBody, out)
}

func (c *client) GetSalesSummary(ctx context.Context, creds Credentials, businessDate string) (*SalesSummary, error) {
  if !creds.Configured() {
    return nil, fmt.Errorf("toast credentials not configured")
  }
  date := strings.ReplaceAll(businessDate, "-", "")

  var parsed struct {
    NetSales   float64 `json:"netSales"`
    GrossSales float64 `json:"grossSales"`
    OrderCount int     `json:"orderCount"`
    GuestCount int     `json:"guestCount"`
    VoidAmount float64 `json:"voidAmount"`
  }
  path := fmt.Sprintf("/reporting/v1/reports/salesSummary?businessDate=%s", date)
  if err := c.get(ctx, creds, path, &parsed); err != nil {
    return nil, err
  }
  return &SalesSummary{
    BusinessDate: businessDate,
    NetSales:     parsed.NetSales,
    GrossSales:   parsed.GrossSales,
    OrderCount:   parsed.OrderCount,
    GuestCount:   parsed.GuestCount,
    VoidAmount:   parsed.VoidAmount,
  }, nil
}

func (c *client) GetLaborSummary(ctx context.Context, creds Credentials, businessDate string) (*LaborSummary, error) {
  if !creds.Configured() {
    return nil, fmt.Errorf("toast credentials not configured")
  }
  date := strings.ReplaceAll(businessDate, "-", "")

  var parsed struct {
    TotalLaborCost  float64 `json:"totalLaborCost"`
    TotalLaborHours float64 `json:"totalLaborHours"`
    EmployeeCount   int     `json:"employeeCount"`
  }
  path := fmt.Sprintf("/labor/v1/reports/laborSummary?businessDate=%s", date)
  if err := c.get(ctx, creds, path, &parsed); err != nil {
    return nil, err
  }
  return &LaborSummary{
    BusinessDate:  businessDate,
    LaborCost:     parsed.TotalLaborCost,
    LaborHours:    parsed.TotalLaborHours,
    EmployeeCount: parsed.EmployeeCount,
  }, nil
}

func truncate(b []byte, n int) string {
  if len(b) <= n {
    return string(b)
  }
  return string(b[:n]) + "..."
}
