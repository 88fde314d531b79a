package repository

import (
	"context"
	"errors"

	"github.com/rapidwifi/zone/internal/operator/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, operator *domain.Operator) error {
	return db.WithContext(ctx).Create(operator).Error
}

func (r *repo) GetByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.Operator, error) {
	var operator domain.Operator
	err := db.WithContext(ctx).Where("username = ?", username).First(&operator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &operator, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Operator, error) {
	var operators []domain.Operator
	err := db.WithContext(ctx).Order("username asc").Find(&operators).Error
	if err != nil {
		return nil, err
	}
	return operators, nil
}

func (r *repo) SetStatus(ctx context.Context, db *gorm.DB, username string, status domain.Status) (bool, error) {
	res := db.WithContext(ctx).Model(&domain.Operator{}).
		Where("username = ?", username).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
