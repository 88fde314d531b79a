package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rapidwifi/zone/internal/audit"
	auditdomain "github.com/rapidwifi/zone/internal/audit/domain"
	"github.com/rapidwifi/zone/internal/config"
	"github.com/rapidwifi/zone/internal/notify"
	notifydomain "github.com/rapidwifi/zone/internal/notify/domain"
	"github.com/rapidwifi/zone/internal/operator"
	operatordomain "github.com/rapidwifi/zone/internal/operator/domain"
	"github.com/rapidwifi/zone/internal/payment"
	paymentdomain "github.com/rapidwifi/zone/internal/payment/domain"
	"github.com/rapidwifi/zone/internal/profile"
	profiledomain "github.com/rapidwifi/zone/internal/profile/domain"
	"github.com/rapidwifi/zone/internal/ratelimit"
	"github.com/rapidwifi/zone/internal/stats"
	statsdomain "github.com/rapidwifi/zone/internal/stats/domain"
	"github.com/rapidwifi/zone/internal/voucher"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	profile.Module,
	voucher.Module,
	payment.Module,
	stats.Module,
	operator.Module,
	notify.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, registry *prometheus.Registry) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.AppVersion})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(cfg config.Config, registry *prometheus.Registry) *gin.Engine {
	return NewEngine(cfg, registry)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	voucherSvc   voucherdomain.Service
	paymentSvc   paymentdomain.Service
	auditSvc     auditdomain.Service
	statsSvc     statsdomain.Service
	profileSvc   profiledomain.Service
	operatorSvc  operatordomain.Service
	notifySvc    notifydomain.Service
	loginLimiter *ratelimit.TokenBucket
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	VoucherSvc  voucherdomain.Service
	PaymentSvc  paymentdomain.Service
	AuditSvc    auditdomain.Service
	StatsSvc    statsdomain.Service
	ProfileSvc  profiledomain.Service
	OperatorSvc operatordomain.Service
	NotifySvc   notifydomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		voucherSvc:   p.VoucherSvc,
		paymentSvc:   p.PaymentSvc,
		auditSvc:     p.AuditSvc,
		statsSvc:     p.StatsSvc,
		profileSvc:   p.ProfileSvc,
		operatorSvc:  p.OperatorSvc,
		notifySvc:    p.NotifySvc,
		loginLimiter: ratelimit.NewTokenBucket(0.05, 20),
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	vouchers := api.Group("/vouchers")
	vouchers.POST("/batch", s.CreateVoucherBatch)
	vouchers.GET("", s.ListVouchers)
	vouchers.GET("/export.csv", s.ExportVouchersCSV)
	vouchers.GET("/remote", s.ListRemoteUsers)
	vouchers.POST("/validate", s.ValidateVoucher)
	vouchers.POST("/revoke", s.RevokeVoucherBatch)
	vouchers.POST("/:username/block", s.BlockVoucher)
	vouchers.DELETE("/:username", s.DeleteVoucher)

	payments := api.Group("/payments")
	payments.POST("/initiate", s.InitiatePayment)
	payments.POST("/callback", s.PaymentCallback)
	payments.POST("/cash", s.RecordCashSale)

	api.GET("/audit", s.ListAuditLogs)
	api.GET("/audit/export.csv", s.ExportAuditCSV)

	api.GET("/stats/overview", s.StatsOverview)
	api.GET("/profiles", s.ListProfiles)

	api.POST("/distribute", s.DistributeVoucher)

	api.POST("/login", s.Login)
	operators := api.Group("/operators")
	operators.GET("", s.ListOperators)
	operators.POST("", s.CreateOperator)
	operators.POST("/:username/activate", s.ActivateOperator)
	operators.POST("/:username/deactivate", s.DeactivateOperator)
}

// actor resolves the acting operator for audit attribution. The dashboard
// forwards the authenticated username; absent that, actions are system-owned.
func actor(c *gin.Context) string {
	if v := c.GetHeader("X-Operator"); v != "" {
		return v
	}
	return auditdomain.ActorSystem
}
