package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the business status of a voucher held in the registry. The
// registry is the source of truth for business status; the access point is
// the source of truth for enforcement. The two are eventually consistent.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusSold    Status = "sold"
	StatusBlocked Status = "blocked"
	StatusDeleted Status = "deleted"
)

// Voucher is a username/password pair granting timed hotspot access under a
// service profile. Username is unique across all non-deleted vouchers and
// the batch tag never changes after creation.
type Voucher struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Username  string       `json:"username" gorm:"type:text;not null;uniqueIndex"`
	Password  string       `json:"password" gorm:"type:text;not null"`
	Profile   string       `json:"profile" gorm:"type:text;not null;index"`
	BatchTag  string       `json:"batch_tag" gorm:"type:text;not null;index"`
	Status    Status       `json:"status" gorm:"type:text;not null;index"`
	CreatedBy string       `json:"created_by" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (Voucher) TableName() string { return "vouchers" }

// transitions is the monotone transition table. Deleted is terminal; a
// voucher never leaves it.
var transitions = map[Status][]Status{
	StatusPending: {StatusActive, StatusDeleted},
	StatusActive:  {StatusSold, StatusBlocked, StatusDeleted},
	StatusSold:    {StatusBlocked, StatusDeleted},
	StatusBlocked: {StatusActive, StatusDeleted},
	StatusDeleted: {},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
