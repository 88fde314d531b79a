package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rapidwifi/zone/internal/config"
	statsdomain "github.com/rapidwifi/zone/internal/stats/domain"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Worker mails a periodic system report: voucher counts by status and
// revenue to date. Disabled deployments run a no-op mailer and skip the
// ticker entirely.
type Worker struct {
	log      *zap.Logger
	statsSvc statsdomain.Service
	mailer   Mailer
	cfg      config.AlertConfig

	stop chan struct{}
	done chan struct{}
}

type Params struct {
	fx.In

	Log      *zap.Logger
	StatsSvc statsdomain.Service
	Mailer   Mailer
	Cfg      config.Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		log:      p.Log.Named("alert.worker"),
		statsSvc: p.StatsSvc,
		mailer:   p.Mailer,
		cfg:      p.Cfg.Alert,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (w *Worker) Start() {
	if !w.cfg.Enabled {
		close(w.done)
		return
	}
	go w.loop()
}

func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}

func (w *Worker) loop() {
	defer close(w.done)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			if err := w.sendReport(context.Background()); err != nil {
				w.log.Warn("daily report failed", zap.Error(err))
			}
		}
	}
}

func (w *Worker) sendReport(ctx context.Context) error {
	overview, err := w.statsSvc.Overview(ctx)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active vouchers: %d\n", overview.Totals[voucherdomain.StatusActive])
	fmt.Fprintf(&b, "Sold vouchers: %d\n", overview.Totals[voucherdomain.StatusSold])
	fmt.Fprintf(&b, "Blocked vouchers: %d\n", overview.Totals[voucherdomain.StatusBlocked])
	fmt.Fprintf(&b, "Total revenue: %d %s\n", overview.TotalRevenue, overview.Currency)

	return w.mailer.Send(ctx, w.cfg.Recipients, "Daily System Report", b.String())
}

var Module = fx.Module("alert",
	fx.Provide(NewMailerFromConfig),
	fx.Provide(NewWorker),
	fx.Invoke(func(lc fx.Lifecycle, w *Worker) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				w.Start()
				return nil
			},
			OnStop: func(context.Context) error {
				w.Stop()
				return nil
			},
		})
	}),
)
