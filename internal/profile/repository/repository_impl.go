package repository

import (
	"context"
	"errors"

	"github.com/rapidwifi/zone/internal/profile/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, profile *domain.Profile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func (r *repo) GetByName(ctx context.Context, db *gorm.DB, name string) (*domain.Profile, error) {
	var profile domain.Profile
	err := db.WithContext(ctx).Where("name = ?", name).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Profile, error) {
	var profiles []domain.Profile
	if err := db.WithContext(ctx).Order("price asc, name asc").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
