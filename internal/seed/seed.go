package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	operatordomain "github.com/rapidwifi/zone/internal/operator/domain"
	profiledomain "github.com/rapidwifi/zone/internal/profile/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin"
)

// defaultProfiles mirrors the tiers configured on the access point. The name
// carries the price so a voucher stays priceable even if the row is removed.
var defaultProfiles = []profiledomain.Profile{
	{Name: "1h-500FCFA", Duration: "1h", Price: 500, RateLimit: "2M/2M"},
	{Name: "3h-1000FCFA", Duration: "3h", Price: 1000, RateLimit: "2M/2M"},
	{Name: "24h-2000FCFA", Duration: "24h", Price: 2000, RateLimit: "4M/4M"},
	{Name: "7d-5000FCFA", Duration: "7d", Price: 5000, RateLimit: "4M/4M"},
}

// EnsureDefaults seeds the profile tiers and a bootstrap admin account so a
// fresh install is usable without manual inserts. Existing rows are left
// untouched.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureProfilesTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureAdminTx(ctx, tx, node)
	})
}

func ensureProfilesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	now := time.Now().UTC()
	for _, tier := range defaultProfiles {
		var count int64
		if err := tx.WithContext(ctx).Model(&profiledomain.Profile{}).
			Where("name = ?", tier.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		tier.ID = node.Generate()
		tier.CreatedAt = now
		if err := tx.WithContext(ctx).Create(&tier).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&operatordomain.Operator{}).
		Where("role = ?", operatordomain.RoleAdmin).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := operatordomain.Operator{
		ID:           node.Generate(),
		Username:     defaultAdminUsername,
		PasswordHash: string(hash),
		Role:         operatordomain.RoleAdmin,
		Status:       operatordomain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&admin).Error
}
