package services

import (
  "context"
  "golang.org/x/sync/errgroup"
  "github.com/shiftline/shiftline-backend/internal/clients/toast"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
)

// POSMetrics is the sales and labor snapshot attached to a shift summary.
// Zero-valued fields mean the pull failed or POS is not linked. The
// derived ratios are only set when their inputs came back non-zero.
type POSMetrics struct {
  Linked bool                `json:"linked"`
  Sales  *toast.SalesSummary `json:"sales,omitempty"`
  Labor  *toast.LaborSummary `json:"labor,omitempty"`

  AvgCheckSize float64 `json:"avg_check_size,omitempty"`
  LaborPercent float64 `json:"labor_percent,omitempty"`
}

type POSMetricsService interface {
  Fetch(ctx context.Context, restaurant *types.Restaurant, businessDate string) POSMetrics
}

type posMetricsService struct {
  log   *logger.Logger
  toast toast.Client
}

func NewPOSMetricsService(log *logger.Logger, toastClient toast.Client) POSMetricsService {
  return &posMetricsService{
    log:   log.With("service", "POSMetricsService"),
    toast: toastClient,
  }
}

// Fetch pulls sales and labor in parallel. POS problems never fail the
// caller; whatever was retrieved is returned and the rest stays nil.
func (s *posMetricsService) Fetch(ctx context.Context, restaurant *types.Restaurant, businessDate string) POSMetrics {
  creds := toast.Credentials{
    RestaurantGUID: restaurant.ToastRestaurantGUID,
    ClientID:       restaurant.ToastClientID,
    ClientSecret:   restaurant.ToastClientSecret,
  }
  if !creds.Configured() {
    return POSMetrics{Linked: false}
  }

  out := POSMetrics{Linked: true}
  g, gctx := errgroup.WithContext(ctx)

  g.Go(func() error {
    sales, err := s.toast.GetSalesSummary(gctx, creds, businessDate)
    if err != nil {
      s.log.Warn("Toast sales pull failed", "restaurantID", restaurant.ID, "businessDate", businessDate, "error", err)
      return nil
    }
    out.Sales = sales
    return nil
  })
  g.Go(func() error {
    labor, err := s.toast.GetLaborSummary(gctx, creds, businessDate)
    if err != nil {
      s.log.Warn("Toast labor pull failed", "restaurantID", restaurant.ID, "businessDate", businessDate, "error", err)
      return nil
    }
    out.Labor = labor
    return nil
  })
  _ = g.Wait()

  if out.Sales != nil && out.Sales.GuestCount > 0 {
    out.AvgCheckSize = out.Sales.NetSales / float64(out.Sales.GuestCount)
  }
  if out.Sales != nil && out.Labor != nil && out.Sales.NetSales > 0 {
    out.LaborPercent = out.Labor.LaborCost / out.Sales.NetSales * 100
  }
  return out
}
