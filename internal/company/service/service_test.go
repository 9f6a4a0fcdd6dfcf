package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/cantina/internal/company/domain"
	"github.com/smallbiznis/cantina/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dbConn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Company{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:       dbConn,
		Log:      zap.NewNop(),
		GenID:    node,
		Defaults: config.NewStaticBillingDefaults(config.DefaultBillingDefaults()),
	})
}

func TestCreateCompanyAppliesDefaults(t *testing.T) {
	svc := newTestService(t)

	company, err := svc.Create(context.Background(), domain.CreateCompanyRequest{
		Name:         "Acme de México",
		Slug:         "acme-mx",
		ContactEmail: "billing@acme.example",
	})
	require.NoError(t, err)

	assert.Equal(t, "America/Mexico_City", company.Timezone)
	assert.Equal(t, int64(8000), company.MealPriceCents)
	assert.Equal(t, []int{1, 2, 3, 4}, []int(company.ChargeableWeekdays))
	assert.False(t, company.IncludeWalkIns)
	assert.True(t, company.Active)
}

func TestCreateCompanyValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	price := int64(-1)
	target := -5
	tz := "Mars/Olympus"

	tests := []struct {
		name string
		req  domain.CreateCompanyRequest
		want error
	}{
		{"missing name", domain.CreateCompanyRequest{Slug: "x", ContactEmail: "a@b.c"}, domain.ErrInvalidName},
		{"missing slug", domain.CreateCompanyRequest{Name: "X", ContactEmail: "a@b.c"}, domain.ErrInvalidSlug},
		{"bad email", domain.CreateCompanyRequest{Name: "X", Slug: "x", ContactEmail: "nope"}, domain.ErrInvalidEmail},
		{"bad timezone", domain.CreateCompanyRequest{Name: "X", Slug: "x", ContactEmail: "a@b.c", Timezone: tz}, domain.ErrInvalidTimezone},
		{"negative price", domain.CreateCompanyRequest{Name: "X", Slug: "x", ContactEmail: "a@b.c", MealPriceCents: &price}, domain.ErrInvalidMealPrice},
		{"negative target", domain.CreateCompanyRequest{Name: "X", Slug: "x", ContactEmail: "a@b.c", DailyTarget: &target}, domain.ErrInvalidTarget},
		{"bad weekday", domain.CreateCompanyRequest{Name: "X", Slug: "x", ContactEmail: "a@b.c", ChargeableWeekdays: []int{7}}, domain.ErrInvalidWeekday},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateCompanyDuplicateSlug(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCompanyRequest{
		Name:         "First",
		Slug:         "shared",
		ContactEmail: "a@b.c",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateCompanyRequest{
		Name:         "Second",
		Slug:         "shared",
		ContactEmail: "d@e.f",
	})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestUpdateCompany(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	company, err := svc.Create(ctx, domain.CreateCompanyRequest{
		Name:         "Acme",
		Slug:         "acme",
		ContactEmail: "a@b.c",
	})
	require.NoError(t, err)

	target := 250
	active := false
	updated, err := svc.Update(ctx, domain.UpdateCompanyRequest{
		ID:                 company.ID.String(),
		DailyTarget:        &target,
		ChargeableWeekdays: []int{1, 2, 3, 4, 5},
		Active:             &active,
	})
	require.NoError(t, err)

	assert.Equal(t, 250, updated.DailyTarget)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, []int(updated.ChargeableWeekdays))
	assert.False(t, updated.Active)

	fetched, err := svc.GetByID(ctx, company.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 250, fetched.DailyTarget)
}

func TestGetCompanyNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetByID(context.Background(), "123456789")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), "not-a-snowflake")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListActiveExcludesInactive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateCompanyRequest{Name: "A", Slug: "a", ContactEmail: "a@b.c"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, domain.CreateCompanyRequest{Name: "B", Slug: "b", ContactEmail: "b@b.c"})
	require.NoError(t, err)

	inactive := false
	_, err = svc.Update(ctx, domain.UpdateCompanyRequest{ID: second.ID.String(), Active: &inactive})
	require.NoError(t, err)

	companies, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, first.ID, companies[0].ID)
}
