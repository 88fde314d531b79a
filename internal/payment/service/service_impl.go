package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	auditdomain "github.com/rapidwifi/zone/internal/audit/domain"
	"github.com/rapidwifi/zone/internal/clock"
	"github.com/rapidwifi/zone/internal/config"
	"github.com/rapidwifi/zone/internal/metrics"
	paymentdomain "github.com/rapidwifi/zone/internal/payment/domain"
	profiledomain "github.com/rapidwifi/zone/internal/profile/domain"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	AuditSvc    auditdomain.Service
	Repo        paymentdomain.Repository
	VoucherRepo voucherdomain.Repository
	ProfileSvc  profiledomain.Service
	Cfg         config.Config
	Metrics     *metrics.Metrics `optional:"true"`
}

// Service is the payment reconciler. It moves payments and vouchers through
// the registry only; it never touches the command channel, so the access
// point keeps honoring a sold voucher exactly as it did an active one.
type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	auditSvc    auditdomain.Service
	repo        paymentdomain.Repository
	voucherRepo voucherdomain.Repository
	profileSvc  profiledomain.Service
	secret      string
	currency    string
	metrics     *metrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		auditSvc:    p.AuditSvc,
		repo:        p.Repo,
		voucherRepo: p.VoucherRepo,
		profileSvc:  p.ProfileSvc,
		secret:      p.Cfg.Gateway.SharedSecret,
		currency:    p.Cfg.Gateway.Currency,
		metrics:     p.Metrics,
	}
}

func (s *Service) Initiate(ctx context.Context, voucherUsername string, amount int64, method paymentdomain.Method, phone string) (paymentdomain.Payment, error) {
	voucher, err := s.sellableVoucher(ctx, voucherUsername)
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	now := s.clock.Now()
	payment := paymentdomain.Payment{
		ID:        s.genID.Generate(),
		VoucherID: voucher.Username,
		Reference: uuid.NewString(),
		Amount:    amount,
		Currency:  s.currency,
		Method:    method,
		Status:    paymentdomain.StatusPending,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &payment); err != nil {
		return paymentdomain.Payment{}, err
	}
	return payment, nil
}

func (s *Service) Confirm(ctx context.Context, callback paymentdomain.Callback) (paymentdomain.ConfirmResult, error) {
	reference, voucherUsername := callbackIdentity(callback)
	success := successStatus(callback.Status)

	if callback.Production() {
		if !verifySignature(s.secret, callback.TransactionID, callback.Amount, callback.Status, callback.Signature) {
			// Security-relevant rejection: audited, nothing mutated.
			s.auditSvc.Append(ctx, auditdomain.Record{
				Action: auditdomain.ActionSignatureReject,
				Actor:  auditdomain.ActorSystem,
				Target: voucherUsername,
				Status: auditdomain.StatusFailed,
				Details: map[string]any{
					"transactionId": callback.TransactionID,
				},
			})
			return paymentdomain.ConfirmResult{}, paymentdomain.ErrSignatureMismatch
		}
	}

	payment, err := s.resolvePayment(ctx, reference, voucherUsername, callback.Amount)
	if err != nil {
		return paymentdomain.ConfirmResult{}, err
	}

	// Idempotency: duplicate delivery of a confirmation for a terminal
	// payment is harmless and reports success without a new audit entry.
	if payment.Status.Terminal() {
		return paymentdomain.ConfirmResult{Payment: *payment, AlreadyProcessed: true}, nil
	}

	next := paymentdomain.StatusFailed
	if success {
		next = paymentdomain.StatusSuccess
	}

	now := s.clock.Now()
	changed, err := s.repo.Finalize(ctx, s.db, payment.ID, next, now)
	if err != nil {
		return paymentdomain.ConfirmResult{}, err
	}
	if !changed {
		// Lost the compare-and-set to a concurrent duplicate; the payment
		// is terminal now, so this delivery degrades to a no-op.
		current, err := s.repo.GetByReference(ctx, s.db, payment.Reference)
		if err != nil {
			return paymentdomain.ConfirmResult{}, err
		}
		if current == nil {
			return paymentdomain.ConfirmResult{}, paymentdomain.ErrPaymentNotFound
		}
		return paymentdomain.ConfirmResult{Payment: *current, AlreadyProcessed: true}, nil
	}
	payment.Status = next
	payment.UpdatedAt = now

	result := paymentdomain.ConfirmResult{Payment: *payment}
	if success {
		sold, err := s.markSold(ctx, payment.VoucherID)
		if err != nil {
			return result, err
		}
		result.VoucherSold = sold
	}

	s.countConfirm(payment.Method, next)
	s.auditSvc.Append(ctx, auditdomain.Record{
		Action: auditdomain.ActionPaymentConfirmed,
		Actor:  auditdomain.ActorSystem,
		Target: payment.VoucherID,
		Status: confirmAuditStatus(next),
		Details: map[string]any{
			"reference": payment.Reference,
			"amount":    payment.Amount,
			"method":    string(payment.Method),
		},
	})
	return result, nil
}

func (s *Service) RecordCash(ctx context.Context, operatorID, voucherUsername string, amount int64) (paymentdomain.Payment, error) {
	voucher, err := s.sellableVoucher(ctx, voucherUsername)
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	price, err := s.profileSvc.PriceFor(ctx, voucher.Profile)
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	payment, err := s.repo.LatestPendingForVoucher(ctx, s.db, voucher.Username)
	if err != nil {
		return paymentdomain.Payment{}, err
	}
	if payment == nil {
		created, err := s.createPending(ctx, voucher.Username, amount, paymentdomain.MethodCash, operatorID)
		if err != nil {
			return paymentdomain.Payment{}, err
		}
		payment = created
	}

	if amount != price {
		// The payment stays pending so the operator can retry with the
		// right amount.
		return *payment, &paymentdomain.AmountMismatchError{Expected: price, Got: amount}
	}

	now := s.clock.Now()
	changed, err := s.repo.Finalize(ctx, s.db, payment.ID, paymentdomain.StatusSuccess, now)
	if err != nil {
		return *payment, err
	}
	if !changed {
		return *payment, nil
	}
	payment.Status = paymentdomain.StatusSuccess
	payment.UpdatedAt = now

	if _, err := s.markSold(ctx, voucher.Username); err != nil {
		return *payment, err
	}

	s.countConfirm(paymentdomain.MethodCash, paymentdomain.StatusSuccess)
	s.auditSvc.Append(ctx, auditdomain.Record{
		Action: auditdomain.ActionCashSale,
		Actor:  operatorID,
		Target: voucher.Username,
		Status: auditdomain.StatusSuccess,
		Details: map[string]any{
			"amount":  amount,
			"profile": voucher.Profile,
		},
	})
	return *payment, nil
}

func (s *Service) sellableVoucher(ctx context.Context, username string) (*voucherdomain.Voucher, error) {
	voucher, err := s.voucherRepo.GetByUsername(ctx, s.db, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, voucherdomain.ErrNotFound
	}
	if voucher.Status != voucherdomain.StatusPending && voucher.Status != voucherdomain.StatusActive {
		return nil, paymentdomain.ErrVoucherNotSellable
	}
	return voucher, nil
}

// resolvePayment finds the payment a callback refers to: by reference first,
// then the latest pending payment of the named voucher. A confirmation for a
// sale initiated outside this process opens the payment on the spot.
func (s *Service) resolvePayment(ctx context.Context, reference, voucherUsername string, amount int64) (*paymentdomain.Payment, error) {
	if reference != "" {
		payment, err := s.repo.GetByReference(ctx, s.db, reference)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			return payment, nil
		}
	}
	if voucherUsername == "" {
		return nil, paymentdomain.ErrPaymentNotFound
	}

	payment, err := s.repo.LatestPendingForVoucher(ctx, s.db, voucherUsername)
	if err != nil {
		return nil, err
	}
	if payment != nil {
		// Rebind the payment to the gateway reference while it is still
		// pending, so a redelivery after it turns terminal resolves to
		// this row instead of falling through to the voucher.
		if reference != "" && payment.Reference != reference {
			if err := s.repo.SetReference(ctx, s.db, payment.ID, reference); err != nil {
				return nil, err
			}
			payment.Reference = reference
		}
		return payment, nil
	}

	voucher, err := s.sellableVoucher(ctx, voucherUsername)
	if err != nil {
		return nil, err
	}
	return s.createPendingWithReference(ctx, voucher.Username, amount, paymentdomain.MethodMobileMoney, reference)
}

func (s *Service) createPending(ctx context.Context, voucherUsername string, amount int64, method paymentdomain.Method, operator string) (*paymentdomain.Payment, error) {
	payment, err := s.createPendingWithReference(ctx, voucherUsername, amount, method, "")
	if err != nil {
		return nil, err
	}
	payment.Operator = operator
	return payment, nil
}

func (s *Service) createPendingWithReference(ctx context.Context, voucherUsername string, amount int64, method paymentdomain.Method, reference string) (*paymentdomain.Payment, error) {
	if reference == "" {
		reference = uuid.NewString()
	}
	now := s.clock.Now()
	payment := paymentdomain.Payment{
		ID:        s.genID.Generate(),
		VoucherID: voucherUsername,
		Reference: reference,
		Amount:    amount,
		Currency:  s.currency,
		Method:    method,
		Status:    paymentdomain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *Service) markSold(ctx context.Context, voucherUsername string) (bool, error) {
	return s.voucherRepo.UpdateStatus(ctx, s.db, voucherUsername,
		[]voucherdomain.Status{voucherdomain.StatusPending, voucherdomain.StatusActive},
		voucherdomain.StatusSold, s.clock.Now())
}

func (s *Service) countConfirm(method paymentdomain.Method, status paymentdomain.Status) {
	if s.metrics != nil {
		s.metrics.PaymentsConfirmed.WithLabelValues(string(method), string(status)).Inc()
	}
}

func callbackIdentity(callback paymentdomain.Callback) (reference, voucherUsername string) {
	if callback.Production() {
		return strings.TrimSpace(callback.TransactionID), strings.TrimSpace(callback.VoucherID)
	}
	// Sandbox callbacks name the voucher directly.
	external := strings.TrimSpace(callback.ExternalID)
	return external, external
}

func successStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success", "successful":
		return true
	default:
		return false
	}
}

func confirmAuditStatus(status paymentdomain.Status) string {
	if status == paymentdomain.StatusSuccess {
		return auditdomain.StatusSuccess
	}
	return auditdomain.StatusFailed
}
