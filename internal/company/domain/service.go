package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/cantina/pkg/db/pagination"
)

type CreateCompanyRequest struct {
	Name               string `json:"name"`
	Slug               string `json:"slug"`
	ContactEmail       string `json:"contact_email"`
	Timezone           string `json:"timezone"`
	MealPriceCents     *int64 `json:"meal_price_cents"`
	DailyTarget        *int   `json:"daily_target"`
	ChargeableWeekdays []int  `json:"chargeable_weekdays"`
	IncludeWalkIns     bool   `json:"include_walk_ins"`
}

type UpdateCompanyRequest struct {
	ID                 string `json:"-"`
	Name               *string `json:"name"`
	ContactEmail       *string `json:"contact_email"`
	Timezone           *string `json:"timezone"`
	MealPriceCents     *int64  `json:"meal_price_cents"`
	DailyTarget        *int    `json:"daily_target"`
	ChargeableWeekdays []int   `json:"chargeable_weekdays"`
	IncludeWalkIns     *bool   `json:"include_walk_ins"`
	Active             *bool   `json:"active"`
}

type ListCompanyRequest struct {
	PageToken  string
	PageSize   int
	ActiveOnly bool
}

type ListCompanyResponse struct {
	pagination.PageInfo
	Companies []Company `json:"companies"`
}

type Service interface {
	Create(context.Context, CreateCompanyRequest) (Company, error)
	Update(context.Context, UpdateCompanyRequest) (Company, error)
	GetByID(ctx context.Context, id string) (Company, error)
	List(context.Context, ListCompanyRequest) (ListCompanyResponse, error)
	// ListActive returns every active company, for fleet-wide reporting.
	ListActive(context.Context) ([]Company, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidSlug      = errors.New("invalid_slug")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidTimezone  = errors.New("invalid_timezone")
	ErrInvalidMealPrice = errors.New("invalid_meal_price")
	ErrInvalidTarget    = errors.New("invalid_daily_target")
	ErrInvalidWeekday   = errors.New("invalid_weekday")
	ErrSlugTaken        = errors.New("slug_taken")
	ErrNotFound         = errors.New("not_found")
)
