package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	companydomain "github.com/smallbiznis/cantina/internal/company/domain"
	companyservice "github.com/smallbiznis/cantina/internal/company/service"
	"github.com/smallbiznis/cantina/internal/config"
	"github.com/smallbiznis/cantina/internal/consumption/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, companydomain.Company) {
	t.Helper()

	dbConn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&companydomain.Company{}, &domain.Consumption{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	companySvc := companyservice.NewService(companyservice.Params{
		DB:       dbConn,
		Log:      zap.NewNop(),
		GenID:    node,
		Defaults: config.NewStaticBillingDefaults(config.DefaultBillingDefaults()),
	})

	company, err := companySvc.Create(context.Background(), companydomain.CreateCompanyRequest{
		Name:         "Acme",
		Slug:         "acme",
		ContactEmail: "a@b.c",
	})
	require.NoError(t, err)

	svc := NewService(Params{
		DB:         dbConn,
		Log:        zap.NewNop(),
		GenID:      node,
		CompanySvc: companySvc,
	})
	return svc, company
}

func TestRegisterConsumption(t *testing.T) {
	svc, company := newTestService(t)

	occurred := time.Date(2026, time.July, 15, 13, 30, 0, 0, time.UTC)
	resp, err := svc.Register(context.Background(), domain.RegisterConsumptionRequest{
		CompanyID:  company.ID.String(),
		EmployeeID: "emp-042",
		Source:     "cafeteria",
		OccurredAt: occurred,
	})
	require.NoError(t, err)

	assert.Equal(t, company.ID, resp.CompanyID)
	assert.Equal(t, "emp-042", resp.EmployeeID)
	assert.Equal(t, domain.SourceCafeteria, resp.Source)
	assert.True(t, resp.OccurredAt.Equal(occurred))
	assert.False(t, resp.Voided)
}

func TestRegisterValidation(t *testing.T) {
	svc, company := newTestService(t)
	ctx := context.Background()
	occurred := time.Now().UTC()

	_, err := svc.Register(ctx, domain.RegisterConsumptionRequest{
		CompanyID: "999999999", EmployeeID: "e", OccurredAt: occurred,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)

	_, err = svc.Register(ctx, domain.RegisterConsumptionRequest{
		CompanyID: company.ID.String(), EmployeeID: "e", Source: "drone", OccurredAt: occurred,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSource)

	_, err = svc.Register(ctx, domain.RegisterConsumptionRequest{
		CompanyID: company.ID.String(), EmployeeID: "e",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOccurredAt)

	// A missing employee is only allowed for POS walk-ins.
	_, err = svc.Register(ctx, domain.RegisterConsumptionRequest{
		CompanyID: company.ID.String(), Source: "cafeteria", OccurredAt: occurred,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmployee)

	resp, err := svc.Register(ctx, domain.RegisterConsumptionRequest{
		CompanyID: company.ID.String(), Source: "pos", OccurredAt: occurred,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.WalkInEmployeeID, resp.EmployeeID)
}

func TestRegisterIdempotency(t *testing.T) {
	svc, company := newTestService(t)
	ctx := context.Background()

	key := "pos-7421"
	first, err := svc.Register(ctx, domain.RegisterConsumptionRequest{
		CompanyID:      company.ID.String(),
		EmployeeID:     "emp-1",
		OccurredAt:     time.Now().UTC(),
		IdempotencyKey: &key,
	})
	require.NoError(t, err)

	second, err := svc.Register(ctx, domain.RegisterConsumptionRequest{
		CompanyID:      company.ID.String(),
		EmployeeID:     "emp-1",
		OccurredAt:     time.Now().UTC(),
		IdempotencyKey: &key,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestVoidUnvoid(t *testing.T) {
	svc, company := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, domain.RegisterConsumptionRequest{
		CompanyID:  company.ID.String(),
		EmployeeID: "emp-1",
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	voided, err := svc.Void(ctx, resp.ID.String())
	require.NoError(t, err)
	assert.True(t, voided.Voided)
	require.NotNil(t, voided.VoidedAt)

	_, err = svc.Void(ctx, resp.ID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadyVoided)

	unvoided, err := svc.Unvoid(ctx, resp.ID.String())
	require.NoError(t, err)
	assert.False(t, unvoided.Voided)
	assert.Nil(t, unvoided.VoidedAt)

	_, err = svc.Unvoid(ctx, resp.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotVoided)
}

func TestListForBillingMonthWindow(t *testing.T) {
	svc, company := newTestService(t)
	ctx := context.Background()

	mexicoCity := time.FixedZone("CST", -6*3600)

	register := func(at time.Time) snowflake.ID {
		resp, err := svc.Register(ctx, domain.RegisterConsumptionRequest{
			CompanyID:  company.ID.String(),
			EmployeeID: "emp-1",
			OccurredAt: at,
		})
		require.NoError(t, err)
		return resp.ID
	}

	// July 1st 00:30 local is July 1st 06:30 UTC.
	inMonth := register(time.Date(2026, time.July, 1, 6, 30, 0, 0, time.UTC))
	// June 30th 23:00 local; inside the widened window, excluded later by
	// the engine's per-day filter.
	nearEdge := register(time.Date(2026, time.July, 1, 5, 0, 0, 0, time.UTC))
	// Deep inside June; outside the widened window.
	register(time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC))

	voided := register(time.Date(2026, time.July, 15, 18, 0, 0, 0, time.UTC))
	_, err := svc.Void(ctx, voided.String())
	require.NoError(t, err)

	rows, err := svc.ListForBillingMonth(ctx, company.ID.String(), 2026, time.July, mexicoCity)
	require.NoError(t, err)

	ids := make([]snowflake.ID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assert.Contains(t, ids, inMonth)
	assert.Contains(t, ids, nearEdge)
	assert.NotContains(t, ids, voided)
	assert.Len(t, rows, 2)
}

func TestListPagination(t *testing.T) {
	svc, company := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Register(ctx, domain.RegisterConsumptionRequest{
			CompanyID:  company.ID.String(),
			EmployeeID: "emp-1",
			OccurredAt: time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, domain.ListConsumptionRequest{
		CompanyID: company.ID.String(),
		PageSize:  3,
	})
	require.NoError(t, err)
	assert.Len(t, first.Consumptions, 3)
	assert.True(t, first.HasMore)

	second, err := svc.List(ctx, domain.ListConsumptionRequest{
		CompanyID: company.ID.String(),
		PageSize:  3,
		PageToken: first.NextPageToken,
	})
	require.NoError(t, err)
	assert.Len(t, second.Consumptions, 2)
	assert.False(t, second.HasMore)
}
