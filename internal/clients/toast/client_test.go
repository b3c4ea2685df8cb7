package toast

import (
  "context"
  "encoding/json"
  "net/http"
  "net/http/httptest"
  "testing"
  "github.com/shiftline/shiftline-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
  t.Helper()
  log, err := logger.New("dev")
  if err != nil {
    t.Fatalf("logger.New: %v", err)
  }
  t.Cleanup(log.Sync)
  return log
}

func testCreds() Credentials {
  return Credentials{
    RestaurantGUID: "guid-1",
    ClientID:       "client-1",
    ClientSecret:   "secret-1",
  }
}

func newTestClient(t *testing.T, handler http.Handler) Client {
  t.Helper()
  srv := httptest.NewServer(handler)
  t.Cleanup(srv.Close)
  t.Setenv("TOAST_API_BASE_URL", srv.URL)
  return NewClient(testLogger(t))
}

func TestGetSalesSummary(t *testing.T) {
  var authCalls int
  mux := http.NewServeMux()
  mux.HandleFunc("/authentication/v1/authentication/login", func(w http.ResponseWriter, r *http.Request) {
    authCalls++
    var body map[string]string
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
      t.Fatalf("decode auth body: %v", err)
    }
    if body["clientId"] != "client-1" || body["userAccessType"] != "TOAST_MACHINE_CLIENT" {
      t.Fatalf("unexpected auth body: %v", body)
    }
    json.NewEncoder(w).Encode(map[string]any{
      "token": map[string]any{"accessToken": "tok-1", "expiresIn": 3600},
    })
  })
  mux.HandleFunc("/reporting/v1/reports/salesSummary", func(w http.ResponseWriter, r *http.Request) {
    if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
      t.Fatalf("missing bearer token: %q", got)
    }
    if got := r.Header.Get("Toast-Restaurant-External-ID"); got != "guid-1" {
      t.Fatalf("missing restaurant header: %q", got)
    }
    if got := r.URL.Query().Get("businessDate"); got != "20260314" {
      t.Fatalf("business date should drop dashes: %q", got)
    }
    json.NewEncoder(w).Encode(map[string]any{
      "netSales":   1234.56,
      "grossSales": 1400.00,
      "orderCount": 87,
      "guestCount": 120,
      "voidAmount": 12.50,
    })
  })

  c := newTestClient(t, mux)
  sales, err := c.GetSalesSummary(context.Background(), testCreds(), "2026-03-14")
  if err != nil {
    t.Fatalf("GetSalesSummary: %v", err)
  }
  if sales.NetSales != 1234.56 || sales.OrderCount != 87 || sales.GuestCount != 120 {
    t.Fatalf("unexpected summary: %+v", sales)
  }
  if sales.BusinessDate != "2026-03-14" {
    t.Fatalf("business date should keep the dashed form: %q", sales.BusinessDate)
  }

  // Second call reuses the cached token.
  if _, err := c.GetSalesSummary(context.Background(), testCreds(), "2026-03-14"); err != nil {
    t.Fatalf("second GetSalesSummary: %v", err)
  }
  if authCalls != 1 {
    t.Fatalf("expected 1 auth call, got %d", authCalls)
  }
}

func TestGetLaborSummary(t *testing.T) {
  mux := http.NewServeMux()
  mux.HandleFunc("/authentication/v1/authentication/login", func(w http.ResponseWriter, r *http.Request) {
    json.NewEncoder(w).Encode(map[string]any{
      "token": map[string]any{"accessToken": "tok-1", "expiresIn": 3600},
    })
  })
  mux.HandleFunc("/labor/v1/reports/laborSummary", func(w http.ResponseWriter, r *http.Request) {
    json.NewEncoder(w).Encode(map[string]any{
      "totalLaborCost":  640.25,
      "totalLaborHours": 42.5,
      "employeeCount":   9,
    })
  })

  c := newTestClient(t, mux)
  labor, err := c.GetLaborSummary(context.Background(), testCreds(), "2026-03-14")
  if err != nil {
    t.Fatalf("GetLaborSummary: %v", err)
  }
  if labor.LaborCost != 640.25 || labor.LaborHours != 42.5 || labor.EmployeeCount != 9 {
    t.Fatalf("unexpected summary: %+v", labor)
  }
}

func TestUnconfiguredCredentials(t *testing.T) {
  c := newTestClient(t, http.NewServeMux())
  if _, err := c.GetSalesSummary(context.Background(), Credentials{}, "2026-03-14"); err == nil {
    t.Fatalf("expected error for missing credentials")
  }
  if _, err := c.GetLaborSummary(context.Background(), Credentials{ClientID: "only-id"}, "2026-03-14"); err == nil {
    t.Fatalf("expected error for partial credentials")
  }
}

func TestTokenCacheDroppedOn401(t *testing.T) {
  var authCalls int
  var dataCalls int
  mux := http.NewServeMux()
  mux.HandleFunc("/authentication/v1/authentication/login", func(w http.ResponseWriter, r *http.Request) {
    authCalls++
    json.NewEncoder(w).Encode(map[string]any{
      "token": map[string]any{"accessToken": "tok", "expiresIn": 3600},
    })
  })
  mux.HandleFunc("/reporting/v1/reports/salesSummary", func(w http.ResponseWriter, r *http.Request) {
    dataCalls++
    if dataCalls == 1 {
      w.WriteHeader(http.StatusUnauthorized)
      return
    }
    json.NewEncoder(w).Encode(map[string]any{"netSales": 1.0})
  })

  c := newTestClient(t, mux)
  if _, err := c.GetSalesSummary(context.Background(), testCreds(), "2026-03-14"); err == nil {
    t.Fatalf("expected failure on 401")
  }
  if _, err := c.GetSalesSummary(context.Background(), testCreds(), "2026-03-14"); err != nil {
    t.Fatalf("retry after 401: %v", err)
  }
  if authCalls != 2 {
    t.Fatalf("401 should drop the cached token; auth calls = %d", authCalls)
  }
}

func TestAuthFailure(t *testing.T) {
  mux := http.NewServeMux()
  mux.HandleFunc("/authentication/v1/authentication/login", func(w http.ResponseWriter, r *http.Request) {
    w.WriteHeader(http.StatusForbidden)
  })

  c := newTestClient(t, mux)
  if _, err := c.GetSalesSummary(context.Background(), testCreds(), "2026-03-14"); err == nil {
    t.Fatalf("expected auth failure to surface")
  }
}
