package service

import (
	"context"
	"time"

	billingdomain "github.com/smallbiznis/cantina/internal/billing/domain"
	"github.com/smallbiznis/cantina/internal/clock"
	companydomain "github.com/smallbiznis/cantina/internal/company/domain"
	"github.com/smallbiznis/cantina/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	CompanySvc companydomain.Service
	BillingSvc billingdomain.Service
}

type Service struct {
	log        *zap.Logger
	clock      clock.Clock
	companySvc companydomain.Service
	billingSvc billingdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("report.service"),
		clock:      p.Clock,
		companySvc: p.CompanySvc,
		billingSvc: p.BillingSvc,
	}
}

func (s *Service) MonthlyRevenue(ctx context.Context, year int, month time.Month) (domain.MonthlyRevenue, error) {
	if err := billingdomain.ValidatePeriod(year, month, s.clock.Now()); err != nil {
		return domain.MonthlyRevenue{}, domain.ErrInvalidPeriod
	}

	companies, err := s.companySvc.ListActive(ctx)
	if err != nil {
		return domain.MonthlyRevenue{}, err
	}

	report := domain.MonthlyRevenue{
		Year:       year,
		Month:      month,
		Currency:   billingdomain.DefaultCurrency,
		Companies:  make([]domain.CompanyRevenue, 0, len(companies)),
		ComputedAt: s.clock.Now(),
	}

	for _, company := range companies {
		statement, err := s.billingSvc.GetStatement(ctx, billingdomain.StatementRequest{
			CompanyID: company.ID.String(),
			Year:      year,
			Month:     month,
		})
		if err != nil {
			return domain.MonthlyRevenue{}, err
		}

		revenue := domain.CompanyRevenue{
			CompanyID:   company.ID,
			CompanyName: company.Name,
			TotalCents:  statement.TotalCents,
		}
		for _, row := range statement.Rows {
			revenue.MealCount += row.ActualCount
			revenue.BilledCount += row.BilledCount
		}

		report.Companies = append(report.Companies, revenue)
		report.TotalCents += statement.TotalCents
	}

	return report, nil
}

func (s *Service) CompanyBreakdown(ctx context.Context, companyID string, year int, month time.Month) (domain.CompanyBreakdown, error) {
	statement, err := s.billingSvc.GetStatement(ctx, billingdomain.StatementRequest{
		CompanyID: companyID,
		Year:      year,
		Month:     month,
	})
	if err != nil {
		return domain.CompanyBreakdown{}, err
	}

	return domain.CompanyBreakdown{
		CompanyID:   statement.CompanyID,
		CompanyName: statement.CompanyName,
		Year:        statement.Year,
		Month:       statement.Month,
		Currency:    statement.Currency,
		Rows:        statement.Rows,
		TotalCents:  statement.TotalCents,
	}, nil
}
