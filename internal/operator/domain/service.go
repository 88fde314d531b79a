package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrOperatorNotFound   = errors.New("operator_not_found")
	ErrDuplicateUsername  = errors.New("duplicate_username")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

type Service interface {
	// Create registers an account with a freshly hashed password.
	Create(ctx context.Context, username, password string, role Role) (Operator, error)
	// Authenticate verifies credentials against an active account.
	Authenticate(ctx context.Context, username, password string) (Operator, error)
	Activate(ctx context.Context, username string) error
	Deactivate(ctx context.Context, username string) error
	List(ctx context.Context) ([]Operator, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, operator *Operator) error
	GetByUsername(ctx context.Context, db *gorm.DB, username string) (*Operator, error)
	List(ctx context.Context, db *gorm.DB) ([]Operator, error)
	SetStatus(ctx context.Context, db *gorm.DB, username string, status Status) (bool, error)
}
