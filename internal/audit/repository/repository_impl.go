package repository

import (
	"context"
	"strings"

	"github.com/rapidwifi/zone/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Entry, error) {
	var entries []domain.Entry
	stmt := db.WithContext(ctx).Model(&domain.Entry{})

	if action := strings.TrimSpace(filter.Action); action != "" {
		stmt = stmt.Where("action = ?", action)
	}
	if actor := strings.TrimSpace(filter.Actor); actor != "" {
		stmt = stmt.Where("actor = ?", actor)
	}
	if target := strings.TrimSpace(filter.Target); target != "" {
		stmt = stmt.Where("target = ?", target)
	}
	if filter.From != nil {
		stmt = stmt.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		stmt = stmt.Where("created_at <= ?", filter.To.UTC())
	}

	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	if err := stmt.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
