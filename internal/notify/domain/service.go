package domain

import (
	"context"
	"errors"

	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
)

var (
	ErrChannelDisabled = errors.New("channel_disabled")
	ErrUnknownChannel  = errors.New("unknown_channel")
)

// Sender delivers one voucher to one recipient over a single channel.
type Sender interface {
	Channel() string
	Send(ctx context.Context, recipient string, voucher voucherdomain.Voucher) error
}

// Service fans a voucher out to a delivery channel and records the attempt.
type Service interface {
	Distribute(ctx context.Context, channel, recipient string, voucher voucherdomain.Voucher, actor string) error
	Channels() []string
}
