package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rapidwifi/zone/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) GetByReference(ctx context.Context, db *gorm.DB, reference string) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Where("reference = ?", reference).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repo) LatestPendingForVoucher(ctx context.Context, db *gorm.DB, voucherUsername string) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).
		Where("voucher_id = ? AND status = ?", voucherUsername, domain.StatusPending).
		Order("created_at desc, id desc").
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Finalize is the compare-and-set that makes confirmation idempotent under
// concurrent duplicate delivery: only the writer that still observes
// status=pending wins.
func (r *repo) Finalize(ctx context.Context, db *gorm.DB, id any, next domain.Status, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{
			"status":     next,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) SetReference(ctx context.Context, db *gorm.DB, id any, reference string) error {
	return db.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Update("reference", reference).Error
}

func (r *repo) RevenueByMethod(ctx context.Context, db *gorm.DB) (map[domain.Method]int64, error) {
	type row struct {
		Method domain.Method
		Total  int64
	}
	var rows []row
	err := db.WithContext(ctx).Model(&domain.Payment{}).
		Where("status = ?", domain.StatusSuccess).
		Select("method, sum(amount) as total").
		Group("method").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	revenue := make(map[domain.Method]int64, len(rows))
	for _, r := range rows {
		revenue[r.Method] = r.Total
	}
	return revenue, nil
}
