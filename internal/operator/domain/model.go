package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleOperator
}

type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Operator is a dashboard account. Disabling keeps the row so entries in the
// audit trail that name it keep resolving.
type Operator struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	Username     string       `json:"username" gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string       `json:"-" gorm:"type:text;not null"`
	Role         Role         `json:"role" gorm:"type:text;not null"`
	Status       Status       `json:"status" gorm:"type:text;not null"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null"`
}

func (Operator) TableName() string { return "users" }
