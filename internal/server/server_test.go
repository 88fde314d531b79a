package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	auditdomain "github.com/rapidwifi/zone/internal/audit/domain"
	auditrepo "github.com/rapidwifi/zone/internal/audit/repository"
	auditservice "github.com/rapidwifi/zone/internal/audit/service"
	"github.com/rapidwifi/zone/internal/clock"
	"github.com/rapidwifi/zone/internal/config"
	notifyservice "github.com/rapidwifi/zone/internal/notify/service"
	operatordomain "github.com/rapidwifi/zone/internal/operator/domain"
	operatorrepo "github.com/rapidwifi/zone/internal/operator/repository"
	operatorservice "github.com/rapidwifi/zone/internal/operator/service"
	paymentdomain "github.com/rapidwifi/zone/internal/payment/domain"
	paymentrepo "github.com/rapidwifi/zone/internal/payment/repository"
	paymentservice "github.com/rapidwifi/zone/internal/payment/service"
	profiledomain "github.com/rapidwifi/zone/internal/profile/domain"
	profilerepo "github.com/rapidwifi/zone/internal/profile/repository"
	profileservice "github.com/rapidwifi/zone/internal/profile/service"
	"github.com/rapidwifi/zone/internal/router/sim"
	statsservice "github.com/rapidwifi/zone/internal/stats/service"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
	voucherrepo "github.com/rapidwifi/zone/internal/voucher/repository"
	voucherservice "github.com/rapidwifi/zone/internal/voucher/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type testStack struct {
	engine  *gin.Engine
	db      *gorm.DB
	backend *sim.Backend
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:server_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&voucherdomain.Voucher{},
		&paymentdomain.Payment{},
		&auditdomain.Entry{},
		&profiledomain.Profile{},
		&operatordomain.Operator{},
	))

	node, err := snowflake.NewNode(21)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	log := zaptest.NewLogger(t)
	backend := sim.New()

	cfg := config.Config{
		Gateway: config.GatewayConfig{SharedSecret: "secret", Currency: "XOF"},
		Voucher: config.VoucherConfig{UsernameLength: 4, PasswordLength: 5},
		Notify:  config.NotifyConfig{SMSEnabled: true},
	}

	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: auditrepo.Provide(),
	})
	profileSvc := profileservice.NewService(profileservice.Params{
		DB: db, Log: log, GenID: node, Repo: profilerepo.Provide(),
	})
	voucherSvc := voucherservice.NewService(voucherservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Channel: backend,
		AuditSvc: auditSvc, Repo: voucherrepo.Provide(), Cfg: cfg,
	})
	paymentSvc := paymentservice.NewService(paymentservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, AuditSvc: auditSvc,
		Repo: paymentrepo.Provide(), VoucherRepo: voucherrepo.Provide(),
		ProfileSvc: profileSvc, Cfg: cfg,
	})
	statsSvc := statsservice.NewService(statsservice.Params{
		DB: db, Log: log, Clock: clk,
		VoucherRepo: voucherrepo.Provide(), PaymentRepo: paymentrepo.Provide(), Cfg: cfg,
	})
	operatorSvc := operatorservice.NewService(operatorservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: operatorrepo.Provide(),
	})
	notifySvc := notifyservice.NewService(notifyservice.Params{
		Log: log, AuditSvc: auditSvc, Cfg: cfg,
	})

	engine := NewEngine(cfg, prometheus.NewRegistry())
	NewServer(ServerParams{
		Gin: engine, Cfg: cfg,
		VoucherSvc: voucherSvc, PaymentSvc: paymentSvc, AuditSvc: auditSvc,
		StatsSvc: statsSvc, ProfileSvc: profileSvc, OperatorSvc: operatorSvc,
		NotifySvc: notifySvc,
	})

	return &testStack{engine: engine, db: db, backend: backend}
}

func (ts *testStack) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Operator", "op1")
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func (ts *testStack) createBatch(t *testing.T, count int) []voucherdomain.Voucher {
	t.Helper()
	w := ts.request(t, http.MethodPost, "/api/vouchers/batch", gin.H{
		"count": count, "profile": "1h-500FCFA", "batchTag": "batch-test",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result voucherdomain.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Created, count)
	return result.Created
}

func TestHealth(t *testing.T) {
	ts := newTestStack(t)
	w := ts.request(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVoucherLifecycleOverHTTP(t *testing.T) {
	ts := newTestStack(t)
	created := ts.createBatch(t, 2)
	username := created[0].Username

	// The voucher validates while active.
	w := ts.request(t, http.MethodPost, "/api/vouchers/validate", gin.H{
		"username": username, "password": created[0].Password,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)

	// Block it, then re-block: both succeed.
	w = ts.request(t, http.MethodPost, "/api/vouchers/"+username+"/block", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ts.request(t, http.MethodPost, "/api/vouchers/"+username+"/block", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Blocked vouchers no longer validate.
	w = ts.request(t, http.MethodPost, "/api/vouchers/validate", gin.H{
		"username": username, "password": created[0].Password,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":false`)

	// Delete, then the voucher is gone.
	w = ts.request(t, http.MethodDelete, "/api/vouchers/"+username, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = ts.request(t, http.MethodPost, "/api/vouchers/"+username+"/block", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBlockUnknownVoucherReturns404(t *testing.T) {
	ts := newTestStack(t)
	w := ts.request(t, http.MethodPost, "/api/vouchers/NOPE/block", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBatchRejectsBadCount(t *testing.T) {
	ts := newTestStack(t)
	w := ts.request(t, http.MethodPost, "/api/vouchers/batch", gin.H{
		"count": 0, "profile": "1h-500FCFA",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallbackSignatureMismatchReturns403(t *testing.T) {
	ts := newTestStack(t)
	created := ts.createBatch(t, 1)

	w := ts.request(t, http.MethodPost, "/api/payments/callback", gin.H{
		"transactionId": "txn-1",
		"voucherId":     created[0].Username,
		"amount":        500,
		"status":        "success",
		"signature":     "bogus",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSandboxCallbackSellsVoucher(t *testing.T) {
	ts := newTestStack(t)
	created := ts.createBatch(t, 1)

	w := ts.request(t, http.MethodPost, "/api/payments/callback", gin.H{
		"externalId": created[0].Username,
		"status":     "SUCCESSFUL",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var voucher voucherdomain.Voucher
	require.NoError(t, ts.db.Where("username = ?", created[0].Username).First(&voucher).Error)
	assert.Equal(t, voucherdomain.StatusSold, voucher.Status)
}

func TestCashSaleAmountMismatchReturns400(t *testing.T) {
	ts := newTestStack(t)
	created := ts.createBatch(t, 1)

	w := ts.request(t, http.MethodPost, "/api/payments/cash", gin.H{
		"username": created[0].Username, "amount": 9999,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsOverviewEndpoint(t *testing.T) {
	ts := newTestStack(t)
	ts.createBatch(t, 3)

	w := ts.request(t, http.MethodGet, "/api/stats/overview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totals"`)
}

func TestAuditExportCSVEndpoint(t *testing.T) {
	ts := newTestStack(t)
	ts.createBatch(t, 1)

	w := ts.request(t, http.MethodGet, "/api/audit/export.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "action,actor,target,details,timestamp")
}

func TestRevokeBatchEndpoint(t *testing.T) {
	ts := newTestStack(t)
	ts.createBatch(t, 3)

	w := ts.request(t, http.MethodPost, "/api/vouchers/revoke", gin.H{"batchTag": "batch-test"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"revoked":3`)
}
