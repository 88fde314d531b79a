package sender

import (
	"context"
	"fmt"

	notifydomain "github.com/rapidwifi/zone/internal/notify/domain"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
	"go.uber.org/zap"
)

// stub logs the delivery instead of calling a provider. The real SMS and
// messaging integrations terminate outside this process; what matters here is
// the message contract and the audit trail around each attempt.
type stub struct {
	channel string
	log     *zap.Logger
}

func newStub(channel string, log *zap.Logger) notifydomain.Sender {
	return &stub{channel: channel, log: log.Named("notify." + channel)}
}

func (s *stub) Channel() string { return s.channel }

func (s *stub) Send(ctx context.Context, recipient string, voucher voucherdomain.Voucher) error {
	if recipient == "" {
		return fmt.Errorf("%s: empty recipient", s.channel)
	}
	s.log.Info("voucher dispatched",
		zap.String("recipient", recipient),
		zap.String("voucher", voucher.Username),
		zap.String("profile", voucher.Profile))
	return nil
}

func NewSMS(log *zap.Logger) notifydomain.Sender      { return newStub("sms", log) }
func NewWhatsApp(log *zap.Logger) notifydomain.Sender { return newStub("whatsapp", log) }
func NewTelegram(log *zap.Logger) notifydomain.Sender { return newStub("telegram", log) }
