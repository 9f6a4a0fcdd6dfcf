package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cantina/internal/company/domain"
	"github.com/smallbiznis/cantina/internal/config"
	"github.com/smallbiznis/cantina/pkg/db"
	"github.com/smallbiznis/cantina/pkg/db/option"
	"github.com/smallbiznis/cantina/pkg/db/pagination"
	"github.com/smallbiznis/cantina/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Defaults *config.BillingDefaultsHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	defaults *config.BillingDefaultsHolder
	repo     repository.Repository[domain.Company]
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("company.service"),
		genID:    p.GenID,
		defaults: p.Defaults,
		repo:     repository.ProvideStore[domain.Company](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCompanyRequest) (domain.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Company{}, domain.ErrInvalidName
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if slug == "" {
		return domain.Company{}, domain.ErrInvalidSlug
	}

	email := strings.TrimSpace(req.ContactEmail)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Company{}, domain.ErrInvalidEmail
	}

	defaults := s.defaults.Get()

	timezone := strings.TrimSpace(req.Timezone)
	if timezone == "" {
		timezone = defaults.Timezone
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return domain.Company{}, domain.ErrInvalidTimezone
	}

	mealPrice := defaults.MealPriceCents
	if req.MealPriceCents != nil {
		mealPrice = *req.MealPriceCents
	}
	if mealPrice < 0 {
		return domain.Company{}, domain.ErrInvalidMealPrice
	}

	target := defaults.DailyTarget
	if req.DailyTarget != nil {
		target = *req.DailyTarget
	}
	if target < 0 {
		return domain.Company{}, domain.ErrInvalidTarget
	}

	weekdays := req.ChargeableWeekdays
	if weekdays == nil {
		weekdays = defaults.ChargeableWeekdays
	}
	if err := validateWeekdays(weekdays); err != nil {
		return domain.Company{}, err
	}

	now := time.Now().UTC()
	company := domain.Company{
		ID:                 s.genID.Generate(),
		Name:               name,
		Slug:               slug,
		ContactEmail:       email,
		Timezone:           timezone,
		MealPriceCents:     mealPrice,
		DailyTarget:        target,
		ChargeableWeekdays: datatypes.NewJSONSlice(weekdays),
		IncludeWalkIns:     req.IncludeWalkIns,
		Active:             true,
		Metadata:           datatypes.JSONMap{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, &company); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Company{}, domain.ErrSlugTaken
		}
		return domain.Company{}, err
	}

	return company, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCompanyRequest) (domain.Company, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Company{}, domain.ErrInvalidID
	}

	existing, err := s.repo.FindOne(ctx, &domain.Company{ID: id})
	if err != nil {
		return domain.Company{}, err
	}
	if existing == nil {
		return domain.Company{}, domain.ErrNotFound
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Company{}, domain.ErrInvalidName
		}
		updates["name"] = name
	}
	if req.ContactEmail != nil {
		email := strings.TrimSpace(*req.ContactEmail)
		if email == "" || !strings.Contains(email, "@") {
			return domain.Company{}, domain.ErrInvalidEmail
		}
		updates["contact_email"] = email
	}
	if req.Timezone != nil {
		timezone := strings.TrimSpace(*req.Timezone)
		if _, err := time.LoadLocation(timezone); err != nil || timezone == "" {
			return domain.Company{}, domain.ErrInvalidTimezone
		}
		updates["timezone"] = timezone
	}
	if req.MealPriceCents != nil {
		if *req.MealPriceCents < 0 {
			return domain.Company{}, domain.ErrInvalidMealPrice
		}
		updates["meal_price_cents"] = *req.MealPriceCents
	}
	if req.DailyTarget != nil {
		if *req.DailyTarget < 0 {
			return domain.Company{}, domain.ErrInvalidTarget
		}
		updates["daily_target"] = *req.DailyTarget
	}
	if req.ChargeableWeekdays != nil {
		if err := validateWeekdays(req.ChargeableWeekdays); err != nil {
			return domain.Company{}, err
		}
		updates["chargeable_weekdays"] = datatypes.NewJSONSlice(req.ChargeableWeekdays)
	}
	if req.IncludeWalkIns != nil {
		updates["include_walk_ins"] = *req.IncludeWalkIns
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if err := s.repo.Update(ctx, id.String(), updates); err != nil {
		return domain.Company{}, err
	}

	updated, err := s.repo.FindOne(ctx, &domain.Company{ID: id})
	if err != nil {
		return domain.Company{}, err
	}
	if updated == nil {
		return domain.Company{}, domain.ErrNotFound
	}
	return *updated, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Company, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.Company{}, domain.ErrInvalidID
	}

	company, err := s.repo.FindOne(ctx, &domain.Company{ID: id})
	if err != nil {
		return domain.Company{}, err
	}
	if company == nil {
		return domain.Company{}, domain.ErrNotFound
	}
	return *company, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCompanyRequest) (domain.ListCompanyResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 || pageSize > 250 {
		pageSize = 50
	}

	opts := []option.QueryOption{
		option.WithOrder("id ASC"),
		option.WithLimit(pageSize + 1),
	}
	if req.ActiveOnly {
		opts = append(opts, option.WithWhere("active = ?", true))
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListCompanyResponse{}, domain.ErrInvalidID
		}
		opts = append(opts, option.WithWhere("id > ?", cursor.ID))
	}

	rows, err := s.repo.Find(ctx, &domain.Company{}, opts...)
	if err != nil {
		return domain.ListCompanyResponse{}, err
	}

	pageInfo, rows := pagination.BuildCursorPageInfo(rows, pageSize, func(c *domain.Company) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: c.ID.String()})
		return token
	})

	companies := make([]domain.Company, 0, len(rows))
	for _, row := range rows {
		companies = append(companies, *row)
	}

	return domain.ListCompanyResponse{
		PageInfo:  *pageInfo,
		Companies: companies,
	}, nil
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Company, error) {
	rows, err := s.repo.Find(ctx, &domain.Company{},
		option.WithWhere("active = ?", true),
		option.WithOrder("id ASC"),
	)
	if err != nil {
		return nil, err
	}

	companies := make([]domain.Company, 0, len(rows))
	for _, row := range rows {
		companies = append(companies, *row)
	}
	return companies, nil
}

func validateWeekdays(weekdays []int) error {
	for _, day := range weekdays {
		if day < 0 || day > 6 {
			return domain.ErrInvalidWeekday
		}
	}
	return nil
}
