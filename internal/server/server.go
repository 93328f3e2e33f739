package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Pathan99z/rc-convergio-b-sub001/internal/audit"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/clock"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/config"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/deal"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/document"
	obsmetrics "github.com/Pathan99z/rc-convergio-b-sub001/internal/observability/metrics"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/order"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/payment"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/paymentlink"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/providerconfig"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/quote"
	quotedomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/domain"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/reconcile"
	reconciledomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/reconcile/domain"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/subscription"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	clock.Module,
	audit.Module,
	deal.Module,
	document.Module,
	quote.Module,
	paymentlink.Module,
	order.Module,
	providerconfig.Module,
	payment.Module,
	subscription.Module,
	reconcile.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin() *gin.Engine {
	return NewEngine()
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	quoteSvc       quotedomain.Service
	reconcileSvc   reconciledomain.Service
	webhookMetrics *obsmetrics.WebhookMetrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	QuoteSvc     quotedomain.Service
	ReconcileSvc reconciledomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		log:            p.Log.Named("http.server"),
		genID:          p.GenID,
		quoteSvc:       p.QuoteSvc,
		reconcileSvc:   p.ReconcileSvc,
		webhookMetrics: obsmetrics.Webhook(),
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Quotes --------
	quotes := api.Group("/quotes", s.OrgContext())
	{
		quotes.POST("", s.CreateQuote)
		quotes.GET("/:id", s.GetQuoteByID)
		quotes.PATCH("/:id", s.UpdateQuote)
		quotes.POST("/:id/send", s.SendQuote)
		quotes.POST("/:id/accept", s.AcceptQuote)
		quotes.POST("/:id/reject", s.RejectQuote)
	}

	// -------- Payment Webhooks --------
	api.POST("/payments/webhooks/:provider", s.HandlePaymentWebhook)
}
