// Package scheduler closes billing months. Once a company's local calendar
// rolls into a new month, the previous month's consumption is frozen into a
// draft invoice.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cantina/internal/clock"
	companydomain "github.com/smallbiznis/cantina/internal/company/domain"
	invoicedomain "github.com/smallbiznis/cantina/internal/invoice/domain"
	"github.com/smallbiznis/cantina/internal/scheduler/domain"
	"github.com/smallbiznis/cantina/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const jobMonthClose = "month_close"

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	CompanySvc companydomain.Service
	InvoiceSvc invoicedomain.Service
	Config     Config `optional:"true"`
}

type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	genID      *snowflake.Node
	clock      clock.Clock
	companySvc companydomain.Service
	invoiceSvc invoicedomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil || p.CompanySvc == nil || p.InvoiceSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
		genID:      p.GenID,
		clock:      p.Clock,
		companySvc: p.CompanySvc,
		invoiceSvc: p.InvoiceSvc,
	}, nil
}

// RunOnce executes one scheduler tick.
func (s *Scheduler) RunOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	return s.MonthCloseJob(ctx)
}

// MonthCloseJob generates a draft invoice for the previous local month of
// every active company. Claims make the job idempotent across ticks and
// replicas.
func (s *Scheduler) MonthCloseJob(ctx context.Context) error {
	companies, err := s.companySvc.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", jobMonthClose, err)
	}

	var errs error
	for _, company := range companies {
		if err := s.closeCompanyMonth(ctx, company); err != nil {
			errs = errors.Join(errs, fmt.Errorf("company %s: %w", company.ID, err))
		}
	}
	return errs
}

func (s *Scheduler) closeCompanyMonth(ctx context.Context, company companydomain.Company) error {
	cfg := company.BillingConfig()
	local := s.clock.Now().In(cfg.Location)
	prev := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, cfg.Location).AddDate(0, -1, 0)
	periodKey := fmt.Sprintf("%04d-%02d", prev.Year(), int(prev.Month()))

	claim, ok, err := s.claim(ctx, jobMonthClose, periodKey, company.ID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	log := s.log.With(
		zap.String("job", jobMonthClose),
		zap.String("company_id", company.ID.String()),
		zap.String("period", periodKey),
	)

	invoice, err := s.invoiceSvc.Generate(ctx, invoicedomain.GenerateInvoiceRequest{
		CompanyID: company.ID.String(),
		Year:      prev.Year(),
		Month:     prev.Month(),
	})
	if err != nil {
		// An already finalized invoice means the month was closed by hand.
		if errors.Is(err, invoicedomain.ErrAlreadyFinalized) {
			return s.finish(ctx, claim)
		}
		s.release(ctx, claim)
		log.Warn("month close failed", zap.Error(err))
		return err
	}

	if s.cfg.FinalizeInvoices {
		if _, err := s.invoiceSvc.Finalize(ctx, invoice.Invoice.ID.String()); err != nil {
			s.release(ctx, claim)
			log.Warn("finalize failed", zap.Error(err))
			return err
		}
	}

	log.Info("month closed", zap.Int64("total_cents", invoice.Invoice.TotalCents))
	return s.finish(ctx, claim)
}

func (s *Scheduler) claim(ctx context.Context, job, periodKey string, companyID snowflake.ID) (*domain.JobRun, bool, error) {
	run := domain.JobRun{
		ID:        s.genID.Generate(),
		Job:       job,
		PeriodKey: periodKey,
		CompanyID: companyID,
		Status:    domain.JobRunStatusRunning,
		StartedAt: s.clock.Now(),
	}

	err := s.db.WithContext(ctx).Create(&run).Error
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &run, true, nil
}

func (s *Scheduler) finish(ctx context.Context, run *domain.JobRun) error {
	now := s.clock.Now()
	return s.db.WithContext(ctx).Model(run).Updates(map[string]any{
		"status":      domain.JobRunStatusSucceeded,
		"finished_at": now,
	}).Error
}

func (s *Scheduler) release(ctx context.Context, run *domain.JobRun) {
	if err := s.db.WithContext(ctx).Delete(run).Error; err != nil {
		s.log.Warn("failed to release job claim", zap.Error(err))
	}
}

// RunForever ticks until the context is canceled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
