package domain

import (
	"context"

	paymentdomain "github.com/rapidwifi/zone/internal/payment/domain"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
)

// Overview is the dashboard rollup. All figures are computed from the
// registry on demand; an empty registry yields zeros, never an error.
type Overview struct {
	Totals           map[voucherdomain.Status]int64 `json:"totals"`
	ByProfile        map[string]int64               `json:"by_profile"`
	RevenueByMethod  map[paymentdomain.Method]int64 `json:"revenue_by_method"`
	RevenueByProfile map[string]int64               `json:"revenue_by_profile"`
	CreatedPerDay    map[string]int64               `json:"created_per_day"`
	TotalRevenue     int64                          `json:"total_revenue"`
	Currency         string                         `json:"currency"`
}

type Service interface {
	Overview(ctx context.Context) (Overview, error)
}
