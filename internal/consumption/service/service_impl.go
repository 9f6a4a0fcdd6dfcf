package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/smallbiznis/cantina/internal/company/domain"
	"github.com/smallbiznis/cantina/internal/consumption/domain"
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

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	CompanySvc companydomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	companySvc companydomain.Service
	repo       repository.Repository[domain.Consumption]
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("consumption.service"),
		genID:      p.GenID,
		companySvc: p.CompanySvc,
		repo:       repository.ProvideStore[domain.Consumption](p.DB),
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterConsumptionRequest) (domain.Consumption, error) {
	companyID, err := snowflake.ParseString(strings.TrimSpace(req.CompanyID))
	if err != nil || companyID == 0 {
		return domain.Consumption{}, domain.ErrInvalidCompany
	}
	if _, err := s.companySvc.GetByID(ctx, companyID.String()); err != nil {
		return domain.Consumption{}, domain.ErrInvalidCompany
	}

	source := domain.Source(strings.ToLower(strings.TrimSpace(req.Source)))
	switch source {
	case domain.SourceCafeteria, domain.SourcePOS, domain.SourceKiosk:
	case "":
		source = domain.SourceCafeteria
	default:
		return domain.Consumption{}, domain.ErrInvalidSource
	}

	employeeID := strings.TrimSpace(req.EmployeeID)
	if employeeID == "" {
		if source != domain.SourcePOS {
			return domain.Consumption{}, domain.ErrInvalidEmployee
		}
		employeeID = domain.WalkInEmployeeID
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		return domain.Consumption{}, domain.ErrInvalidOccurredAt
	}

	if req.IdempotencyKey != nil {
		key := strings.TrimSpace(*req.IdempotencyKey)
		if key != "" {
			existing, err := s.repo.FindOne(ctx, &domain.Consumption{IdempotencyKey: &key})
			if err != nil {
				return domain.Consumption{}, err
			}
			if existing != nil {
				return *existing, nil
			}
			req.IdempotencyKey = &key
		} else {
			req.IdempotencyKey = nil
		}
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	now := time.Now().UTC()
	consumption := domain.Consumption{
		ID:             s.genID.Generate(),
		CompanyID:      companyID,
		EmployeeID:     employeeID,
		Source:         source,
		OccurredAt:     occurredAt.UTC(),
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, &consumption); err != nil {
		if db.IsDuplicateKeyErr(err) && req.IdempotencyKey != nil {
			existing, findErr := s.repo.FindOne(ctx, &domain.Consumption{IdempotencyKey: req.IdempotencyKey})
			if findErr == nil && existing != nil {
				return *existing, nil
			}
		}
		return domain.Consumption{}, err
	}

	return consumption, nil
}

func (s *Service) Void(ctx context.Context, rawID string) (domain.Consumption, error) {
	return s.setVoided(ctx, rawID, true)
}

func (s *Service) Unvoid(ctx context.Context, rawID string) (domain.Consumption, error) {
	return s.setVoided(ctx, rawID, false)
}

func (s *Service) setVoided(ctx context.Context, rawID string, voided bool) (domain.Consumption, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.Consumption{}, domain.ErrInvalidID
	}

	existing, err := s.repo.FindOne(ctx, &domain.Consumption{ID: id})
	if err != nil {
		return domain.Consumption{}, err
	}
	if existing == nil {
		return domain.Consumption{}, domain.ErrNotFound
	}
	if existing.Voided == voided {
		if voided {
			return domain.Consumption{}, domain.ErrAlreadyVoided
		}
		return domain.Consumption{}, domain.ErrNotVoided
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"voided":     voided,
		"updated_at": now,
	}
	if voided {
		updates["voided_at"] = now
	} else {
		updates["voided_at"] = nil
	}

	if err := s.repo.Update(ctx, id.String(), updates); err != nil {
		return domain.Consumption{}, err
	}

	updated, err := s.repo.FindOne(ctx, &domain.Consumption{ID: id})
	if err != nil {
		return domain.Consumption{}, err
	}
	if updated == nil {
		return domain.Consumption{}, domain.ErrNotFound
	}
	return *updated, nil
}

func (s *Service) List(ctx context.Context, req domain.ListConsumptionRequest) (domain.ListConsumptionResponse, error) {
	companyID, err := snowflake.ParseString(strings.TrimSpace(req.CompanyID))
	if err != nil || companyID == 0 {
		return domain.ListConsumptionResponse{}, domain.ErrInvalidCompany
	}

	pageSize := req.PageSize
	if pageSize <= 0 || pageSize > 250 {
		pageSize = 50
	}

	opts := []option.QueryOption{
		option.WithWhere("company_id = ?", companyID),
		option.WithOrder("id ASC"),
		option.WithLimit(pageSize + 1),
	}
	if req.EmployeeID != "" {
		opts = append(opts, option.WithWhere("employee_id = ?", req.EmployeeID))
	}
	if req.From != nil {
		opts = append(opts, option.WithWhere("occurred_at >= ?", req.From.UTC()))
	}
	if req.To != nil {
		opts = append(opts, option.WithWhere("occurred_at < ?", req.To.UTC()))
	}
	if req.Voided != nil {
		opts = append(opts, option.WithWhere("voided = ?", *req.Voided))
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListConsumptionResponse{}, domain.ErrInvalidID
		}
		opts = append(opts, option.WithWhere("id > ?", cursor.ID))
	}

	rows, err := s.repo.Find(ctx, &domain.Consumption{}, opts...)
	if err != nil {
		return domain.ListConsumptionResponse{}, err
	}

	pageInfo, rows := pagination.BuildCursorPageInfo(rows, pageSize, func(c *domain.Consumption) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: c.ID.String()})
		return token
	})

	consumptions := make([]domain.Consumption, 0, len(rows))
	for _, row := range rows {
		consumptions = append(consumptions, *row)
	}

	return domain.ListConsumptionResponse{
		PageInfo:     *pageInfo,
		Consumptions: consumptions,
	}, nil
}

func (s *Service) ListForBillingMonth(ctx context.Context, rawCompanyID string, year int, month time.Month, loc *time.Location) ([]domain.Consumption, error) {
	companyID, err := snowflake.ParseString(strings.TrimSpace(rawCompanyID))
	if err != nil || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	if loc == nil {
		loc = time.UTC
	}

	// One day of slack either side covers UTC rows landing on adjacent
	// local days near midnight.
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	from := monthStart.AddDate(0, 0, -1).UTC()
	to := monthStart.AddDate(0, 1, 1).UTC()

	rows, err := s.repo.Find(ctx, &domain.Consumption{},
		option.WithWhere("company_id = ?", companyID),
		option.WithWhere("voided = ?", false),
		option.WithWhere("occurred_at >= ? AND occurred_at < ?", from, to),
		option.WithOrder("occurred_at ASC, id ASC"),
	)
	if err != nil {
		return nil, err
	}

	consumptions := make([]domain.Consumption, 0, len(rows))
	for _, row := range rows {
		consumptions = append(consumptions, *row)
	}
	return consumptions, nil
}
