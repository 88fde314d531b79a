package service

import (
	"context"
	"sort"

	auditdomain "github.com/rapidwifi/zone/internal/audit/domain"
	"github.com/rapidwifi/zone/internal/config"
	notifydomain "github.com/rapidwifi/zone/internal/notify/domain"
	"github.com/rapidwifi/zone/internal/notify/sender"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	AuditSvc auditdomain.Service
	Cfg      config.Config
}

type Service struct {
	log      *zap.Logger
	auditSvc auditdomain.Service
	senders  map[string]notifydomain.Sender
}

func NewService(p Params) notifydomain.Service {
	senders := make(map[string]notifydomain.Sender)
	if p.Cfg.Notify.SMSEnabled {
		s := sender.NewSMS(p.Log)
		senders[s.Channel()] = s
	}
	if p.Cfg.Notify.WhatsAppEnabled {
		s := sender.NewWhatsApp(p.Log)
		senders[s.Channel()] = s
	}
	if p.Cfg.Notify.TelegramEnabled {
		s := sender.NewTelegram(p.Log)
		senders[s.Channel()] = s
	}
	return &Service{
		log:      p.Log.Named("notify.service"),
		auditSvc: p.AuditSvc,
		senders:  senders,
	}
}

// Distribute sends over the named channel and appends exactly one
// "<channel>_distribution" audit entry whether the send worked or not.
func (s *Service) Distribute(ctx context.Context, channel, recipient string, voucher voucherdomain.Voucher, actor string) error {
	snd, ok := s.senders[channel]
	if !ok {
		if _, known := knownChannels[channel]; known {
			return notifydomain.ErrChannelDisabled
		}
		return notifydomain.ErrUnknownChannel
	}

	sendErr := snd.Send(ctx, recipient, voucher)

	status := auditdomain.StatusSuccess
	details := map[string]any{
		"recipient": recipient,
		"batchTag":  voucher.BatchTag,
	}
	if sendErr != nil {
		status = auditdomain.StatusFailed
		details["error"] = sendErr.Error()
	}
	s.auditSvc.Append(ctx, auditdomain.Record{
		Action:  channel + "_distribution",
		Actor:   actor,
		Target:  voucher.Username,
		Channel: channelLabels[channel],
		Status:  status,
		Details: details,
	})
	return sendErr
}

func (s *Service) Channels() []string {
	channels := make([]string, 0, len(s.senders))
	for name := range s.senders {
		channels = append(channels, name)
	}
	sort.Strings(channels)
	return channels
}

var knownChannels = map[string]struct{}{
	"sms":      {},
	"whatsapp": {},
	"telegram": {},
}

var channelLabels = map[string]string{
	"sms":      auditdomain.ChannelSMS,
	"whatsapp": auditdomain.ChannelWhatsApp,
	"telegram": auditdomain.ChannelTelegram,
}
