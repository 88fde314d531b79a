package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/rapidwifi/zone/internal/clock"
	"github.com/rapidwifi/zone/internal/operator/domain"
	"github.com/rapidwifi/zone/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("operator.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, username, password string, role domain.Role) (domain.Operator, error) {
	username = strings.TrimSpace(username)
	if !role.Valid() {
		return domain.Operator{}, domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return domain.Operator{}, err
	}

	now := s.clock.Now()
	operator := domain.Operator{
		ID:           s.genID.Generate(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, &operator); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Operator{}, domain.ErrDuplicateUsername
		}
		return domain.Operator{}, err
	}
	s.log.Info("operator created",
		zap.String("username", username),
		zap.String("role", string(role)))
	return operator, nil
}

// Authenticate never says which of the username or password was wrong.
func (s *Service) Authenticate(ctx context.Context, username, password string) (domain.Operator, error) {
	operator, err := s.repo.GetByUsername(ctx, s.db, strings.TrimSpace(username))
	if err != nil {
		return domain.Operator{}, err
	}
	if operator == nil || operator.Status != domain.StatusActive {
		s.log.Warn("login rejected", zap.String("username", username))
		return domain.Operator{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("login rejected", zap.String("username", username))
		return domain.Operator{}, domain.ErrInvalidCredentials
	}
	return *operator, nil
}

func (s *Service) Activate(ctx context.Context, username string) error {
	return s.setStatus(ctx, username, domain.StatusActive)
}

func (s *Service) Deactivate(ctx context.Context, username string) error {
	return s.setStatus(ctx, username, domain.StatusDisabled)
}

func (s *Service) setStatus(ctx context.Context, username string, status domain.Status) error {
	changed, err := s.repo.SetStatus(ctx, s.db, strings.TrimSpace(username), status)
	if err != nil {
		return err
	}
	if !changed {
		return domain.ErrOperatorNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.Operator, error) {
	return s.repo.List(ctx, s.db)
}
