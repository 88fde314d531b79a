package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	// Initiate opens a pending payment for a sellable voucher.
	Initiate(ctx context.Context, voucherUsername string, amount int64, method Method, phone string) (Payment, error)

	// Confirm applies a gateway callback idempotently: a payment that is
	// already terminal is a success no-op, and only a pending payment may
	// transition. A bad signature changes nothing and is rejected.
	Confirm(ctx context.Context, callback Callback) (ConfirmResult, error)

	// RecordCash is the synchronous in-person variant of Confirm. The
	// tendered amount must match the voucher's profile price exactly.
	RecordCash(ctx context.Context, operatorID, voucherUsername string, amount int64) (Payment, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	GetByReference(ctx context.Context, db *gorm.DB, reference string) (*Payment, error)
	LatestPendingForVoucher(ctx context.Context, db *gorm.DB, voucherUsername string) (*Payment, error)
	// Finalize moves a payment to a terminal status only while it is still
	// pending; returns true when the row changed.
	Finalize(ctx context.Context, db *gorm.DB, id any, next Status, at time.Time) (bool, error)
	// SetReference rebinds a still-pending payment to the gateway's
	// transaction reference so redeliveries can find it after it turns
	// terminal.
	SetReference(ctx context.Context, db *gorm.DB, id any, reference string) error
	RevenueByMethod(ctx context.Context, db *gorm.DB) (map[Method]int64, error)
}

var (
	ErrSignatureMismatch  = errors.New("signature_mismatch")
	ErrPaymentNotFound    = errors.New("payment_not_found")
	ErrVoucherNotSellable = errors.New("voucher_not_sellable")
)

// AmountMismatchError tells the operator the expected price of the tier.
type AmountMismatchError struct {
	Expected int64
	Got      int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: expected %d, got %d", e.Expected, e.Got)
}

func IsAmountMismatch(err error) bool {
	var ame *AmountMismatchError
	return errors.As(err, &ame)
}
