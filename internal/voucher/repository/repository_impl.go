package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rapidwifi/zone/internal/voucher/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, voucher *domain.Voucher) error {
	return db.WithContext(ctx).Create(voucher).Error
}

// GetByUsername resolves a voucher by its unique username. Deleted vouchers
// are invisible here so lifecycle operations on them report not-found.
func (r *repo) GetByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.Voucher, error) {
	var voucher domain.Voucher
	err := db.WithContext(ctx).
		Where("username = ? AND status <> ?", username, domain.StatusDeleted).
		First(&voucher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.Filter) ([]domain.Voucher, error) {
	var vouchers []domain.Voucher
	stmt := db.WithContext(ctx).Model(&domain.Voucher{}).
		Where("status <> ?", domain.StatusDeleted)

	if batch := strings.TrimSpace(filter.Batch); batch != "" {
		stmt = stmt.Where("batch_tag = ?", batch)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if profile := strings.TrimSpace(filter.Profile); profile != "" {
		stmt = stmt.Where("profile = ?", profile)
	}

	if err := stmt.Order("created_at desc, id desc").Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

// UpdateStatus is a compare-and-set: the row moves only while its status is
// still one of from, so two racing writers cannot both apply a transition.
func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, username string, from []domain.Status, next domain.Status, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Model(&domain.Voucher{}).
		Where("username = ? AND status IN ?", username, from).
		Updates(map[string]any{
			"status":     next,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB) (map[domain.Status]int64, error) {
	type row struct {
		Status domain.Status
		Count  int64
	}
	var rows []row
	err := db.WithContext(ctx).Model(&domain.Voucher{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (r *repo) CountByProfile(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	type row struct {
		Profile string
		Count   int64
	}
	var rows []row
	err := db.WithContext(ctx).Model(&domain.Voucher{}).
		Where("status <> ?", domain.StatusDeleted).
		Select("profile, count(*) as count").
		Group("profile").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Profile] = r.Count
	}
	return counts, nil
}

func (r *repo) CreatedPerDay(ctx context.Context, db *gorm.DB, since time.Time) (map[string]int64, error) {
	var vouchers []domain.Voucher
	err := db.WithContext(ctx).Model(&domain.Voucher{}).
		Where("created_at >= ?", since.UTC()).
		Select("created_at").
		Find(&vouchers).Error
	if err != nil {
		return nil, err
	}
	// Date bucketing happens here rather than in SQL so it behaves the same
	// on sqlite, mysql and postgres.
	counts := make(map[string]int64)
	for _, v := range vouchers {
		counts[v.CreatedAt.UTC().Format("2006-01-02")]++
	}
	return counts, nil
}
