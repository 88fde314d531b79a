package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Entry is one immutable audit record. Entries are appended once and never
// updated or deleted by normal operation.
type Entry struct {
	ID        snowflake.ID      `json:"id" gorm:"primaryKey"`
	Action    string            `json:"action" gorm:"type:text;not null;index"`
	Actor     string            `json:"actor" gorm:"type:text;not null;index"`
	Target    string            `json:"target" gorm:"type:text;not null;index"`
	Channel   string            `json:"channel" gorm:"type:text"`
	Status    string            `json:"status" gorm:"type:text;not null"`
	Details   datatypes.JSONMap `json:"details"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null;index"`
}

func (Entry) TableName() string { return "audit_logs" }

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Actions recorded by the orchestrator, reconciler and distribution layer.
const (
	ActionCreate           = "create"
	ActionBlock            = "block"
	ActionDelete           = "delete"
	ActionRevokeBatch      = "revoke_batch"
	ActionPaymentConfirmed = "payment_confirmed"
	ActionCashSale         = "cash_sale"
	ActionSignatureReject  = "signature_reject"
	ActionSMSDistribution  = "sms_distribution"
	ActionWhatsAppDist     = "whatsapp_distribution"
	ActionTelegramDist     = "telegram_distribution"
)

// Delivery channels carried on distribution entries.
const (
	ChannelDashboard = "Dashboard"
	ChannelSMS       = "SMS"
	ChannelWhatsApp  = "WhatsApp"
	ChannelTelegram  = "Telegram"
)

// ActorSystem is recorded when no operator identity is available.
const ActorSystem = "system"
