package service

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
	"github.com/smallbiznis/cantina/internal/invoice/domain"
	"github.com/smallbiznis/cantina/internal/providers/email"
	"github.com/smallbiznis/cantina/internal/providers/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingEmail struct {
	email.NoOpProvider
	sent int
}

func (r *recordingEmail) SendWithAttachments(ctx context.Context, to []string, subject string, htmlBody string, attachments []email.Attachment) error {
	r.sent++
	return nil
}

type invoiceEnv struct {
	svc         domain.Service
	consumption consumptiondomain.Service
	companySvc  companydomain.Service
	company     companydomain.Company
	clock       *clock.FakeClock
	email       *recordingEmail
}

func newInvoiceEnv(t *testing.T) *invoiceEnv {
	t.Helper()

	dbConn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&companydomain.Company{},
		&consumptiondomain.Consumption{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
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

	target := 2
	price := int64(8000)
	company, err := companySvc.Create(context.Background(), companydomain.CreateCompanyRequest{
		Name:           "Acme",
		Slug:           "acme",
		ContactEmail:   "billing@acme.example",
		Timezone:       "UTC",
		MealPriceCents: &price,
		DailyTarget:    &target,
	})
	require.NoError(t, err)

	consumptionSvc := consumptionservice.NewService(consumptionservice.Params{
		DB:         dbConn,
		Log:        zap.NewNop(),
		GenID:      node,
		CompanySvc: companySvc,
	})

	fakeClock := clock.NewFakeClock(time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC))

	billingSvc := billingservice.NewService(billingservice.Params{
		Log:            zap.NewNop(),
		Clock:          fakeClock,
		CompanySvc:     companySvc,
		ConsumptionSvc: consumptionSvc,
	})

	mail := &recordingEmail{}
	svc := NewService(Params{
		Log:        zap.NewNop(),
		DB:         dbConn,
		GenID:      node,
		Clock:      fakeClock,
		Defaults:   defaults,
		BillingSvc: billingSvc,
		CompanySvc: companySvc,
		PDF:        &pdf.NoOpProvider{},
		Email:      mail,
	})

	return &invoiceEnv{
		svc:         svc,
		consumption: consumptionSvc,
		companySvc:  companySvc,
		company:     company,
		clock:       fakeClock,
		email:       mail,
	}
}

func (e *invoiceEnv) generate(t *testing.T) domain.InvoiceWithItems {
	t.Helper()
	resp, err := e.svc.Generate(context.Background(), domain.GenerateInvoiceRequest{
		CompanyID: e.company.ID.String(),
		Year:      2026,
		Month:     time.July,
	})
	require.NoError(t, err)
	return resp
}

func TestGenerateDraftInvoice(t *testing.T) {
	env := newInvoiceEnv(t)

	_, err := env.consumption.Register(context.Background(), consumptiondomain.RegisterConsumptionRequest{
		CompanyID:  env.company.ID.String(),
		EmployeeID: "emp-1",
		OccurredAt: time.Date(2026, time.July, 1, 13, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	resp := env.generate(t)

	assert.Equal(t, domain.InvoiceStatusDraft, resp.Invoice.Status)
	assert.Equal(t, "MXN", resp.Invoice.Currency)
	assert.Nil(t, resp.Invoice.InvoiceNumber)
	assert.NotEmpty(t, resp.Items)

	var total int64
	for _, item := range resp.Items {
		total += item.SubtotalCents
		assert.Equal(t, int64(8000), item.UnitPriceCents)
	}
	assert.Equal(t, resp.Invoice.TotalCents, total)
}

func TestRegenerateReplacesDraftItems(t *testing.T) {
	env := newInvoiceEnv(t)
	ctx := context.Background()

	first := env.generate(t)

	_, err := env.consumption.Register(ctx, consumptiondomain.RegisterConsumptionRequest{
		CompanyID:  env.company.ID.String(),
		EmployeeID: "emp-1",
		// A Friday, so the row reflects actual count only.
		OccurredAt: time.Date(2026, time.July, 3, 13, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	second := env.generate(t)

	assert.Equal(t, first.Invoice.ID, second.Invoice.ID)
	assert.Greater(t, second.Invoice.TotalCents, first.Invoice.TotalCents)
	assert.Len(t, second.Items, len(first.Items)+1)
}

func TestFinalizeAssignsNumber(t *testing.T) {
	env := newInvoiceEnv(t)

	draft := env.generate(t)

	finalized, err := env.svc.Finalize(context.Background(), draft.Invoice.ID.String())
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusFinalized, finalized.Status)
	require.NotNil(t, finalized.InvoiceNumber)
	assert.Equal(t, "INV-202608-000001", *finalized.InvoiceNumber)
	require.NotNil(t, finalized.IssuedAt)
	require.NotNil(t, finalized.DueAt)
	assert.Equal(t, finalized.IssuedAt.AddDate(0, 0, 15), *finalized.DueAt)

	_, err = env.svc.Finalize(context.Background(), draft.Invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
}

func TestGenerateAfterFinalizeRejected(t *testing.T) {
	env := newInvoiceEnv(t)

	draft := env.generate(t)
	_, err := env.svc.Finalize(context.Background(), draft.Invoice.ID.String())
	require.NoError(t, err)

	_, err = env.svc.Generate(context.Background(), domain.GenerateInvoiceRequest{
		CompanyID: env.company.ID.String(),
		Year:      2026,
		Month:     time.July,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
}

func TestSendInvoice(t *testing.T) {
	env := newInvoiceEnv(t)
	ctx := context.Background()

	draft := env.generate(t)

	_, err := env.svc.Send(ctx, draft.Invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFinalized)

	_, err = env.svc.Finalize(ctx, draft.Invoice.ID.String())
	require.NoError(t, err)

	sent, err := env.svc.Send(ctx, draft.Invoice.ID.String())
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)
	assert.Equal(t, 1, env.email.sent)
}

func TestListInvoicesByStatus(t *testing.T) {
	env := newInvoiceEnv(t)

	draft := env.generate(t)
	_, err := env.svc.Finalize(context.Background(), draft.Invoice.ID.String())
	require.NoError(t, err)

	status := domain.InvoiceStatusFinalized
	invoices, err := env.svc.List(context.Background(), domain.ListInvoiceRequest{
		CompanyID: env.company.ID.String(),
		Status:    &status,
	})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, draft.Invoice.ID, invoices[0].ID)
}
