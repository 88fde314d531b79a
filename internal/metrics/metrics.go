package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics holds the voucher core's prometheus counters. Services treat it as
// optional so tests can run without a registry.
type Metrics struct {
	VouchersCreated   *prometheus.CounterVec
	CommandsExecuted  *prometheus.CounterVec
	PaymentsConfirmed *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		VouchersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rapidwifi_vouchers_created_total",
			Help: "Vouchers created, by profile and outcome.",
		}, []string{"profile", "outcome"}),
		CommandsExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rapidwifi_router_commands_total",
			Help: "Commands issued on the router channel, by verb and outcome.",
		}, []string{"verb", "outcome"}),
		PaymentsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rapidwifi_payments_confirmed_total",
			Help: "Payment confirmations applied, by method and status.",
		}, []string{"method", "status"}),
	}

	reg.MustRegister(m.VouchersCreated, m.CommandsExecuted, m.PaymentsConfirmed)
	return m
}

func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

var Module = fx.Module("metrics",
	fx.Provide(NewRegistry),
	fx.Provide(func(reg *prometheus.Registry) prometheus.Registerer { return reg }),
	fx.Provide(New),
)
