package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/rapidwifi/zone/internal/audit/domain"
	"github.com/rapidwifi/zone/internal/audit/repository"
	"github.com/rapidwifi/zone/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:audit_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Entry{}))

	node, err := snowflake.NewNode(17)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	})
	return svc, clk
}

func TestAppendDefaults(t *testing.T) {
	ctx := context.Background()
	svc, clk := setup(t)

	entry := svc.Append(ctx, domain.Record{Action: domain.ActionCreate, Target: "AB12"})
	assert.Equal(t, domain.ActorSystem, entry.Actor)
	assert.Equal(t, domain.StatusSuccess, entry.Status)
	assert.Equal(t, clk.Now(), entry.CreatedAt)

	entries, err := svc.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	svc, clk := setup(t)

	svc.Append(ctx, domain.Record{Action: domain.ActionCreate, Actor: "op1", Target: "A1"})
	clk.Advance(time.Minute)
	svc.Append(ctx, domain.Record{Action: domain.ActionBlock, Actor: "op1", Target: "A1"})
	clk.Advance(time.Minute)
	svc.Append(ctx, domain.Record{Action: domain.ActionBlock, Actor: "op2", Target: "B1"})

	entries, err := svc.List(ctx, domain.ListFilter{Action: domain.ActionBlock})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, "B1", entries[0].Target)
	assert.Equal(t, "A1", entries[1].Target)

	entries, err = svc.List(ctx, domain.ListFilter{Actor: "op1", Action: domain.ActionBlock})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	from := clk.Now().Add(-30 * time.Second)
	entries, err = svc.List(ctx, domain.ListFilter{From: &from})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = svc.List(ctx, domain.ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestListRejectsInvertedRange(t *testing.T) {
	svc, clk := setup(t)

	from := clk.Now()
	to := from.Add(-time.Hour)
	_, err := svc.List(context.Background(), domain.ListFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	svc.Append(ctx, domain.Record{
		Action:  domain.ActionCashSale,
		Actor:   "op1",
		Target:  "AB12",
		Details: map[string]any{"amount": 500},
	})

	entries, err := svc.List(ctx, domain.ListFilter{})
	require.NoError(t, err)

	csv := svc.ExportCSV(entries)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "action,actor,target,details,timestamp", lines[0])
	assert.Contains(t, lines[1], "cash_sale,op1,AB12,")
	assert.Contains(t, lines[1], "amount")
}
