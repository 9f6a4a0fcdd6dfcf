package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	billingdomain "github.com/smallbiznis/cantina/internal/billing/domain"
	"github.com/smallbiznis/cantina/internal/billing/engine"
	"github.com/smallbiznis/cantina/internal/cache"
	"github.com/smallbiznis/cantina/internal/clock"
	companydomain "github.com/smallbiznis/cantina/internal/company/domain"
	consumptiondomain "github.com/smallbiznis/cantina/internal/consumption/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const statementTTL = 30 * time.Second

type Params struct {
	fx.In

	Log            *zap.Logger
	Clock          clock.Clock
	CompanySvc     companydomain.Service
	ConsumptionSvc consumptiondomain.Service
}

type Service struct {
	log            *zap.Logger
	clock          clock.Clock
	companySvc     companydomain.Service
	consumptionSvc consumptiondomain.Service

	// statements are memoized per (company, period, event fingerprint) so
	// live-updating dashboards do not recompute on every poll.
	statements cache.Cache[string, billingdomain.Statement]
}

func NewService(p Params) billingdomain.Service {
	return &Service{
		log:            p.Log.Named("billing.service"),
		clock:          p.Clock,
		companySvc:     p.CompanySvc,
		consumptionSvc: p.ConsumptionSvc,
		statements:     cache.NewTTLCache[string, billingdomain.Statement](),
	}
}

func (s *Service) GetStatement(ctx context.Context, req billingdomain.StatementRequest) (billingdomain.Statement, error) {
	if strings.TrimSpace(req.CompanyID) == "" {
		return billingdomain.Statement{}, billingdomain.ErrInvalidCompany
	}
	if err := billingdomain.ValidatePeriod(req.Year, req.Month, s.clock.Now()); err != nil {
		return billingdomain.Statement{}, err
	}

	company, err := s.companySvc.GetByID(ctx, req.CompanyID)
	if err != nil {
		if err == companydomain.ErrNotFound || err == companydomain.ErrInvalidID {
			return billingdomain.Statement{}, billingdomain.ErrCompanyNotFound
		}
		return billingdomain.Statement{}, err
	}

	cfg := company.BillingConfig()
	consumptions, err := s.consumptionSvc.ListForBillingMonth(ctx, req.CompanyID, req.Year, req.Month, cfg.Location)
	if err != nil {
		return billingdomain.Statement{}, err
	}

	key := statementKey(req, consumptions)
	if cached, ok := s.statements.Get(key); ok {
		return cached, nil
	}

	events := make([]engine.Event, 0, len(consumptions))
	for _, c := range consumptions {
		events = append(events, engine.Event{
			EmployeeID: c.EmployeeID,
			OccurredAt: c.OccurredAt,
			Voided:     c.Voided,
		})
	}

	rows := engine.ComputeDailyBilling(cfg, events, req.Year, req.Month)
	statement := billingdomain.Statement{
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Year:        req.Year,
		Month:       req.Month,
		Currency:    billingdomain.DefaultCurrency,
		Rows:        rows,
		TotalCents:  engine.ComputeMonthlyTotal(rows),
		ComputedAt:  s.clock.Now(),
	}

	s.statements.Set(key, statement, statementTTL)
	return statement, nil
}

func statementKey(req billingdomain.StatementRequest, consumptions []consumptiondomain.Consumption) string {
	h := sha256.New()
	for _, c := range consumptions {
		fmt.Fprintf(h, "%d|%t\n", c.ID, c.Voided)
	}
	return fmt.Sprintf("%s|%04d-%02d|%s", req.CompanyID, req.Year, int(req.Month), hex.EncodeToString(h.Sum(nil)))
}
