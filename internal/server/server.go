// Package server wires the HTTP surface: the gin engine, shared
// middleware, and the per-feature route handlers.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/smallbiznis/lodgia/internal/audit/domain"
	checkoutdomain "github.com/smallbiznis/lodgia/internal/checkout/domain"
	"github.com/smallbiznis/lodgia/internal/config"
	invoicedomain "github.com/smallbiznis/lodgia/internal/invoice/domain"
	pricingdomain "github.com/smallbiznis/lodgia/internal/pricing/domain"
	"github.com/smallbiznis/lodgia/internal/receipt"
	roomdomain "github.com/smallbiznis/lodgia/internal/room/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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

// Server holds the resolved feature services behind the route handlers.
type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	checkoutSvc checkoutdomain.Service
	pricingSvc  pricingdomain.Service
	roomRepo    roomdomain.Repository
	invoiceRepo invoicedomain.Repository
	receiptSvc  *receipt.Service
	auditSvc    auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	CheckoutSvc checkoutdomain.Service
	PricingSvc  pricingdomain.Service
	RoomRepo    roomdomain.Repository
	InvoiceRepo invoicedomain.Repository
	ReceiptSvc  *receipt.Service
	AuditSvc    auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		log:         p.Log.Named("http.server"),
		genID:       p.GenID,
		checkoutSvc: p.CheckoutSvc,
		pricingSvc:  p.PricingSvc,
		roomRepo:    p.RoomRepo,
		invoiceRepo: p.InvoiceRepo,
		receiptSvc:  p.ReceiptSvc,
		auditSvc:    p.AuditSvc,
	}

	svc.registerCheckoutRoutes()
	svc.registerPricingRoutes()
	svc.registerRoomRoutes()
	svc.registerBookingRoutes()
	svc.registerAuditRoutes()

	return svc
}
