package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/rapidwifi/zone/internal/audit/domain"
	auditrepo "github.com/rapidwifi/zone/internal/audit/repository"
	auditservice "github.com/rapidwifi/zone/internal/audit/service"
	"github.com/rapidwifi/zone/internal/clock"
	"github.com/rapidwifi/zone/internal/config"
	notifydomain "github.com/rapidwifi/zone/internal/notify/domain"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setup(t *testing.T, cfg config.NotifyConfig) (notifydomain.Service, auditdomain.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:notify_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.Entry{}))

	node, err := snowflake.NewNode(15)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  auditrepo.Provide(),
	})
	svc := NewService(Params{
		Log:      log,
		AuditSvc: auditSvc,
		Cfg:      config.Config{Notify: cfg},
	})
	return svc, auditSvc
}

func testVoucher() voucherdomain.Voucher {
	return voucherdomain.Voucher{Username: "AB12", Password: "pw", Profile: "1h", BatchTag: "batch-1"}
}

func TestDistributeAppendsOneEntry(t *testing.T) {
	ctx := context.Background()
	svc, auditSvc := setup(t, config.NotifyConfig{SMSEnabled: true})

	err := svc.Distribute(ctx, "sms", "+22961234567", testVoucher(), "operator1")
	require.NoError(t, err)

	entries, err := auditSvc.List(ctx, auditdomain.ListFilter{Action: auditdomain.ActionSMSDistribution})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "operator1", entries[0].Actor)
	assert.Equal(t, "AB12", entries[0].Target)
	assert.Equal(t, auditdomain.ChannelSMS, entries[0].Channel)
	assert.Equal(t, auditdomain.StatusSuccess, entries[0].Status)
}

func TestDistributeFailureIsAudited(t *testing.T) {
	ctx := context.Background()
	svc, auditSvc := setup(t, config.NotifyConfig{TelegramEnabled: true})

	err := svc.Distribute(ctx, "telegram", "", testVoucher(), "operator1")
	require.Error(t, err)

	entries, err := auditSvc.List(ctx, auditdomain.ListFilter{Action: auditdomain.ActionTelegramDist})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, auditdomain.StatusFailed, entries[0].Status)
}

func TestDistributeChannelGating(t *testing.T) {
	ctx := context.Background()
	svc, auditSvc := setup(t, config.NotifyConfig{SMSEnabled: true})

	err := svc.Distribute(ctx, "whatsapp", "+22961234567", testVoucher(), "operator1")
	assert.ErrorIs(t, err, notifydomain.ErrChannelDisabled)

	err = svc.Distribute(ctx, "pigeon", "+22961234567", testVoucher(), "operator1")
	assert.ErrorIs(t, err, notifydomain.ErrUnknownChannel)

	// A refused channel never reaches the audit trail.
	entries, err := auditSvc.List(ctx, auditdomain.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Equal(t, []string{"sms"}, svc.Channels())
}
