package service

import (
	"context"
	"time"

	"github.com/rapidwifi/zone/internal/clock"
	"github.com/rapidwifi/zone/internal/config"
	paymentdomain "github.com/rapidwifi/zone/internal/payment/domain"
	statsdomain "github.com/rapidwifi/zone/internal/stats/domain"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// trendWindow is how far back the daily creation trend reaches.
const trendWindow = 30 * 24 * time.Hour

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	VoucherRepo voucherdomain.Repository
	PaymentRepo paymentdomain.Repository
	Cfg         config.Config
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	voucherRepo voucherdomain.Repository
	paymentRepo paymentdomain.Repository
	currency    string
}

func NewService(p Params) statsdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("stats.service"),
		clock:       p.Clock,
		voucherRepo: p.VoucherRepo,
		paymentRepo: p.PaymentRepo,
		currency:    p.Cfg.Gateway.Currency,
	}
}

func (s *Service) Overview(ctx context.Context) (statsdomain.Overview, error) {
	totals, err := s.voucherRepo.CountByStatus(ctx, s.db)
	if err != nil {
		return statsdomain.Overview{}, err
	}
	byProfile, err := s.voucherRepo.CountByProfile(ctx, s.db)
	if err != nil {
		return statsdomain.Overview{}, err
	}
	revenueByMethod, err := s.paymentRepo.RevenueByMethod(ctx, s.db)
	if err != nil {
		return statsdomain.Overview{}, err
	}
	revenueByProfile, err := s.revenueByProfile(ctx)
	if err != nil {
		return statsdomain.Overview{}, err
	}
	trend, err := s.voucherRepo.CreatedPerDay(ctx, s.db, s.clock.Now().Add(-trendWindow))
	if err != nil {
		return statsdomain.Overview{}, err
	}

	var total int64
	for _, amount := range revenueByMethod {
		total += amount
	}

	return statsdomain.Overview{
		Totals:           totals,
		ByProfile:        byProfile,
		RevenueByMethod:  revenueByMethod,
		RevenueByProfile: revenueByProfile,
		CreatedPerDay:    trend,
		TotalRevenue:     total,
		Currency:         s.currency,
	}, nil
}

// revenueByProfile joins successful payments to the vouchers they sold. A
// payment whose voucher vanished from the registry still counts, under an
// empty profile bucket.
func (s *Service) revenueByProfile(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Profile string
		Total   int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&paymentdomain.Payment{}).
		Joins("LEFT JOIN vouchers ON vouchers.username = payments.voucher_id").
		Where("payments.status = ?", paymentdomain.StatusSuccess).
		Select("vouchers.profile as profile, sum(payments.amount) as total").
		Group("vouchers.profile").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	revenue := make(map[string]int64, len(rows))
	for _, r := range rows {
		revenue[r.Profile] = r.Total
	}
	return revenue, nil
}
