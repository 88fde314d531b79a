package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/rapidwifi/zone/internal/clock"
	"github.com/rapidwifi/zone/internal/config"
	paymentdomain "github.com/rapidwifi/zone/internal/payment/domain"
	paymentrepo "github.com/rapidwifi/zone/internal/payment/repository"
	statsdomain "github.com/rapidwifi/zone/internal/stats/domain"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
	voucherrepo "github.com/rapidwifi/zone/internal/voucher/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	svc  statsdomain.Service
	clk  *clock.FakeClock
	node *snowflake.Node
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:stats_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&voucherdomain.Voucher{}, &paymentdomain.Payment{}))

	node, err := snowflake.NewNode(11)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:          db,
		Log:         zaptest.NewLogger(t),
		Clock:       clk,
		VoucherRepo: voucherrepo.Provide(),
		PaymentRepo: paymentrepo.Provide(),
		Cfg:         config.Config{Gateway: config.GatewayConfig{Currency: "XOF"}},
	})
	return &fixture{db: db, svc: svc, clk: clk, node: node}
}

func (f *fixture) seedVoucher(t *testing.T, username, profile string, status voucherdomain.Status, createdAt time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&voucherdomain.Voucher{
		ID:        f.node.Generate(),
		Username:  username,
		Password:  "pw",
		Profile:   profile,
		BatchTag:  "seed",
		Status:    status,
		CreatedBy: "system",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}).Error)
}

func (f *fixture) seedPayment(t *testing.T, voucher string, amount int64, method paymentdomain.Method, status paymentdomain.Status) {
	t.Helper()
	now := f.clk.Now()
	require.NoError(t, f.db.Create(&paymentdomain.Payment{
		ID:        f.node.Generate(),
		VoucherID: voucher,
		Reference: fmt.Sprintf("ref-%s", f.node.Generate()),
		Amount:    amount,
		Currency:  "XOF",
		Method:    method,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error)
}

func TestOverviewEmptyRegistry(t *testing.T) {
	f := setup(t)

	overview, err := f.svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Empty(t, overview.Totals)
	assert.Empty(t, overview.ByProfile)
	assert.Empty(t, overview.RevenueByMethod)
	assert.Empty(t, overview.CreatedPerDay)
	assert.Zero(t, overview.TotalRevenue)
	assert.Equal(t, "XOF", overview.Currency)
}

func TestOverviewAggregates(t *testing.T) {
	f := setup(t)
	now := f.clk.Now()

	f.seedVoucher(t, "A1", "1h", voucherdomain.StatusActive, now)
	f.seedVoucher(t, "A2", "1h", voucherdomain.StatusSold, now.Add(-24*time.Hour))
	f.seedVoucher(t, "B1", "24h", voucherdomain.StatusSold, now)
	f.seedVoucher(t, "C1", "1h", voucherdomain.StatusDeleted, now)

	f.seedPayment(t, "A2", 500, paymentdomain.MethodMobileMoney, paymentdomain.StatusSuccess)
	f.seedPayment(t, "B1", 2000, paymentdomain.MethodCash, paymentdomain.StatusSuccess)
	f.seedPayment(t, "B1", 2000, paymentdomain.MethodMobileMoney, paymentdomain.StatusFailed)

	overview, err := f.svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), overview.Totals[voucherdomain.StatusActive])
	assert.Equal(t, int64(2), overview.Totals[voucherdomain.StatusSold])
	assert.Equal(t, int64(1), overview.Totals[voucherdomain.StatusDeleted])

	// Deleted vouchers drop out of the profile breakdown.
	assert.Equal(t, int64(2), overview.ByProfile["1h"])
	assert.Equal(t, int64(1), overview.ByProfile["24h"])

	// Failed payments never count as revenue.
	assert.Equal(t, int64(500), overview.RevenueByMethod[paymentdomain.MethodMobileMoney])
	assert.Equal(t, int64(2000), overview.RevenueByMethod[paymentdomain.MethodCash])
	assert.Equal(t, int64(2500), overview.TotalRevenue)

	assert.Equal(t, int64(500), overview.RevenueByProfile["1h"])
	assert.Equal(t, int64(2000), overview.RevenueByProfile["24h"])
}

func TestOverviewCreationTrend(t *testing.T) {
	f := setup(t)
	now := f.clk.Now()

	f.seedVoucher(t, "A1", "1h", voucherdomain.StatusActive, now)
	f.seedVoucher(t, "A2", "1h", voucherdomain.StatusActive, now)
	f.seedVoucher(t, "A3", "1h", voucherdomain.StatusActive, now.Add(-48*time.Hour))
	// Outside the 30 day window.
	f.seedVoucher(t, "OLD", "1h", voucherdomain.StatusActive, now.Add(-40*24*time.Hour))

	overview, err := f.svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), overview.CreatedPerDay["2026-03-10"])
	assert.Equal(t, int64(1), overview.CreatedPerDay["2026-03-08"])
	assert.Len(t, overview.CreatedPerDay, 2)
}
