package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/rapidwifi/zone/internal/clock"
	"github.com/rapidwifi/zone/internal/operator/domain"
	"github.com/rapidwifi/zone/internal/operator/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setup(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:operator_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Operator{}))

	node, err := snowflake.NewNode(13)
	require.NoError(t, err)

	return NewService(Params{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	created, err := svc.Create(ctx, "chairman", "s3cret", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, created.Status)
	assert.NotEqual(t, "s3cret", created.PasswordHash)

	operator, err := svc.Authenticate(ctx, "chairman", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, operator.Role)

	_, err = svc.Authenticate(ctx, "chairman", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCreateRejectsDuplicateAndBadRole(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	_, err := svc.Create(ctx, "cashier", "pw", domain.RoleOperator)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "cashier", "pw2", domain.RoleOperator)
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

	_, err = svc.Create(ctx, "other", "pw", domain.Role("superuser"))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestDeactivateBlocksLoginButKeepsRow(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	_, err := svc.Create(ctx, "cashier", "pw", domain.RoleOperator)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, "cashier"))

	_, err = svc.Authenticate(ctx, "cashier", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	operators, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, operators, 1)
	assert.Equal(t, domain.StatusDisabled, operators[0].Status)

	require.NoError(t, svc.Activate(ctx, "cashier"))
	_, err = svc.Authenticate(ctx, "cashier", "pw")
	assert.NoError(t, err)
}

func TestStatusChangeOnUnknownOperator(t *testing.T) {
	svc := setup(t)

	err := svc.Deactivate(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrOperatorNotFound)
}
