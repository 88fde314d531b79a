package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Profile is a named service tier configured on the access point:
// duration, speed and the price an operator charges for it.
type Profile struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null;uniqueIndex"`
	Duration  string       `json:"duration" gorm:"type:text;not null"`
	Price     int64        `json:"price" gorm:"not null"`
	RateLimit string       `json:"rate_limit" gorm:"type:text"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (Profile) TableName() string { return "profiles" }

type Service interface {
	List(ctx context.Context) ([]Profile, error)
	Get(ctx context.Context, name string) (Profile, error)

	// PriceFor resolves the price of a profile. Profiles named
	// "<duration>-<price>FCFA" carry their price in the name; that parse is
	// the fallback when no row exists.
	PriceFor(ctx context.Context, name string) (int64, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, profile *Profile) error
	GetByName(ctx context.Context, db *gorm.DB, name string) (*Profile, error)
	List(ctx context.Context, db *gorm.DB) ([]Profile, error)
}

var (
	ErrProfileNotFound = errors.New("profile_not_found")
	ErrUnpricedProfile = errors.New("unpriced_profile")
)
