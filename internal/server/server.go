package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/cantina/internal/billing"
	billingdomain "github.com/smallbiznis/cantina/internal/billing/domain"
	"github.com/smallbiznis/cantina/internal/company"
	companydomain "github.com/smallbiznis/cantina/internal/company/domain"
	"github.com/smallbiznis/cantina/internal/config"
	"github.com/smallbiznis/cantina/internal/consumption"
	consumptiondomain "github.com/smallbiznis/cantina/internal/consumption/domain"
	"github.com/smallbiznis/cantina/internal/invoice"
	invoicedomain "github.com/smallbiznis/cantina/internal/invoice/domain"
	"github.com/smallbiznis/cantina/internal/providers"
	"github.com/smallbiznis/cantina/internal/ratelimit"
	"github.com/smallbiznis/cantina/internal/report"
	reportdomain "github.com/smallbiznis/cantina/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewHTTPMetrics),
	fx.Provide(registerGin),
	company.Module,
	consumption.Module,
	billing.Module,
	invoice.Module,
	report.Module,
	providers.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	return NewEngine(log, metrics)
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
	companySvc     companydomain.Service
	consumptionSvc consumptiondomain.Service
	billingSvc     billingdomain.Service
	invoiceSvc     invoicedomain.Service
	reportSvc      reportdomain.Service
	ingestLimiter  *ratelimit.IngestLimiter
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	CompanySvc     companydomain.Service
	ConsumptionSvc consumptiondomain.Service
	BillingSvc     billingdomain.Service
	InvoiceSvc     invoicedomain.Service
	ReportSvc      reportdomain.Service
	IngestLimiter  *ratelimit.IngestLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		companySvc:     p.CompanySvc,
		consumptionSvc: p.ConsumptionSvc,
		billingSvc:     p.BillingSvc,
		invoiceSvc:     p.InvoiceSvc,
		reportSvc:      p.ReportSvc,
		ingestLimiter:  p.IngestLimiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/companies", s.CreateCompany)
	v1.GET("/companies", s.ListCompanies)
	v1.GET("/companies/:id", s.GetCompanyByID)
	v1.PATCH("/companies/:id", s.UpdateCompany)
	v1.GET("/companies/:id/statement", s.GetStatement)
	v1.GET("/companies/:id/statement/export", s.ExportStatement)

	v1.POST("/consumptions", s.RegisterConsumption)
	v1.GET("/consumptions", s.ListConsumptions)
	v1.POST("/consumptions/:id/void", s.VoidConsumption)
	v1.POST("/consumptions/:id/unvoid", s.UnvoidConsumption)

	v1.POST("/invoices", s.GenerateInvoice)
	v1.GET("/invoices", s.ListInvoices)
	v1.GET("/invoices/:id", s.GetInvoiceByID)
	v1.POST("/invoices/:id/finalize", s.FinalizeInvoice)
	v1.POST("/invoices/:id/send", s.SendInvoice)

	v1.GET("/reports/revenue", s.GetMonthlyRevenue)
	v1.GET("/reports/companies/:id", s.GetCompanyBreakdown)
}
