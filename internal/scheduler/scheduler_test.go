package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	billingservice "github.com/smallbiznis/cantina/internal/billing/service"
	"github.com/smallbiznis/cantina/internal/clock"
	companydomain "github.com/smallbiznis/cantina/internal/company/domain"
	companyservice "github.com/smallbiznis/cantina/internal/company/service"
	"github.com/smallbiznis/cantina/internal/config"
	consumptiondomain "github.com/smallbiznis/cantina/internal/consumption/domain"
	consumptionservice "github.com/smallbiznis/cantina/internal/consumption/service"
	invoicedomain "github.com/smallbiznis/cantina/internal/invoice/domain"
	invoiceservice "github.com/smallbiznis/cantina/internal/invoice/service"
	"github.com/smallbiznis/cantina/internal/providers/email"
	"github.com/smallbiznis/cantina/internal/providers/pdf"
	"github.com/smallbiznis/cantina/internal/scheduler/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type schedulerEnv struct {
	scheduler  *Scheduler
	invoiceSvc invoicedomain.Service
	companySvc companydomain.Service
	company    companydomain.Company
	clock      *clock.FakeClock
	db         *gorm.DB
}

func newSchedulerEnv(t *testing.T, cfg Config) *schedulerEnv {
	t.Helper()

	dbConn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&companydomain.Company{},
		&consumptiondomain.Consumption{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&domain.JobRun{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	defaults := config.NewStaticBillingDefaults(config.DefaultBillingDefaults())

	companySvc := companyservice.NewService(companyservice.Params{
		DB:       dbConn,
		Log:      zap.NewNop(),
		GenID:    node,
		Defaults: defaults,
	})

	company, err := companySvc.Create(context.Background(), companydomain.CreateCompanyRequest{
		Name:         "Acme",
		Slug:         "acme",
		ContactEmail: "billing@acme.example",
		Timezone:     "UTC",
	})
	require.NoError(t, err)

	consumptionSvc := consumptionservice.NewService(consumptionservice.Params{
		DB:         dbConn,
		Log:        zap.NewNop(),
		GenID:      node,
		CompanySvc: companySvc,
	})

	fakeClock := clock.NewFakeClock(time.Date(2026, time.August, 1, 0, 10, 0, 0, time.UTC))

	billingSvc := billingservice.NewService(billingservice.Params{
		Log:            zap.NewNop(),
		Clock:          fakeClock,
		CompanySvc:     companySvc,
		ConsumptionSvc: consumptionSvc,
	})

	invoiceSvc := invoiceservice.NewService(invoiceservice.Params{
		Log:        zap.NewNop(),
		DB:         dbConn,
		GenID:      node,
		Clock:      fakeClock,
		Defaults:   defaults,
		BillingSvc: billingSvc,
		CompanySvc: companySvc,
		PDF:        &pdf.NoOpProvider{},
		Email:      &email.NoOpProvider{},
	})

	sched, err := New(Params{
		DB:         dbConn,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fakeClock,
		CompanySvc: companySvc,
		InvoiceSvc: invoiceSvc,
		Config:     cfg,
	})
	require.NoError(t, err)

	return &schedulerEnv{
		scheduler:  sched,
		invoiceSvc: invoiceSvc,
		companySvc: companySvc,
		company:    company,
		clock:      fakeClock,
		db:         dbConn,
	}
}

func TestMonthCloseGeneratesDraft(t *testing.T) {
	env := newSchedulerEnv(t, Config{})

	require.NoError(t, env.scheduler.RunOnce(context.Background()))

	invoices, err := env.invoiceSvc.List(context.Background(), invoicedomain.ListInvoiceRequest{
		CompanyID: env.company.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, invoicedomain.InvoiceStatusDraft, invoices[0].Status)
	assert.Equal(t, 2026, invoices[0].Year)
	assert.Equal(t, int(time.July), invoices[0].Month)
}

func TestMonthCloseIsIdempotent(t *testing.T) {
	env := newSchedulerEnv(t, Config{})
	ctx := context.Background()

	require.NoError(t, env.scheduler.RunOnce(ctx))
	require.NoError(t, env.scheduler.RunOnce(ctx))

	var count int64
	require.NoError(t, env.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var runs int64
	require.NoError(t, env.db.Model(&domain.JobRun{}).Count(&runs).Error)
	assert.Equal(t, int64(1), runs)
}

func TestMonthCloseFinalizes(t *testing.T) {
	env := newSchedulerEnv(t, Config{FinalizeInvoices: true})

	require.NoError(t, env.scheduler.RunOnce(context.Background()))

	invoices, err := env.invoiceSvc.List(context.Background(), invoicedomain.ListInvoiceRequest{
		CompanyID: env.company.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, invoicedomain.InvoiceStatusFinalized, invoices[0].Status)
	assert.NotNil(t, invoices[0].InvoiceNumber)
}

func TestMonthCloseSkipsInactiveCompanies(t *testing.T) {
	env := newSchedulerEnv(t, Config{})
	ctx := context.Background()

	inactive := false
	_, err := env.companySvc.Update(ctx, companydomain.UpdateCompanyRequest{
		ID:     env.company.ID.String(),
		Active: &inactive,
	})
	require.NoError(t, err)

	require.NoError(t, env.scheduler.RunOnce(ctx))

	var count int64
	require.NoError(t, env.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestMonthCloseAdvancesWithClock(t *testing.T) {
	env := newSchedulerEnv(t, Config{})
	ctx := context.Background()

	require.NoError(t, env.scheduler.RunOnce(ctx))

	// A month later the next period closes too.
	env.clock.Advance(31 * 24 * time.Hour)
	require.NoError(t, env.scheduler.RunOnce(ctx))

	var count int64
	require.NoError(t, env.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
