package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

type Method string

const (
	MethodCash        Method = "cash"
	MethodMobileMoney Method = "mobile_money"
	MethodOther       Method = "other"
)

// Payment records one sale attempt for a voucher. A terminal status
// (success/failed) is set at most once; redelivered confirmations must never
// move a payment that already reached it.
type Payment struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	VoucherID string       `json:"voucher_id" gorm:"type:text;not null;index"`
	Reference string       `json:"reference" gorm:"type:text;not null;uniqueIndex"`
	Amount    int64        `json:"amount" gorm:"not null"`
	Currency  string       `json:"currency" gorm:"type:text;not null"`
	Method    Method       `json:"method" gorm:"type:text;not null"`
	Status    Status       `json:"status" gorm:"type:text;not null;index"`
	Phone     string       `json:"phone" gorm:"type:text"`
	Operator  string       `json:"operator" gorm:"type:text"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Callback is a payment gateway confirmation. Two shapes are accepted: the
// production record carries transactionId/voucherId/amount/status plus an
// HMAC signature; the sandbox record carries only externalId/status, where
// externalId names the voucher.
type Callback struct {
	TransactionID string `json:"transactionId"`
	VoucherID     string `json:"voucherId"`
	Amount        int64  `json:"amount"`
	ExternalID    string `json:"externalId"`
	Status        string `json:"status"`
	Signature     string `json:"signature"`
}

// Production reports whether the callback is the signed production shape.
func (c Callback) Production() bool {
	return c.TransactionID != "" || c.Signature != ""
}

// ConfirmResult summarizes what a confirmation did. Duplicate deliveries
// come back with AlreadyProcessed set and no other effect.
type ConfirmResult struct {
	Payment          Payment `json:"payment"`
	AlreadyProcessed bool    `json:"already_processed"`
	VoucherSold      bool    `json:"voucher_sold"`
}
