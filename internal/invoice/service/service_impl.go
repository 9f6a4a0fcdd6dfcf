package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/smallbiznis/cantina/internal/billing/domain"
	"github.com/smallbiznis/cantina/internal/clock"
	companydomain "github.com/smallbiznis/cantina/internal/company/domain"
	"github.com/smallbiznis/cantina/internal/config"
	"github.com/smallbiznis/cantina/internal/invoice/domain"
	"github.com/smallbiznis/cantina/internal/invoice/format"
	"github.com/smallbiznis/cantina/internal/providers/email"
	"github.com/smallbiznis/cantina/internal/providers/pdf"
	"github.com/smallbiznis/cantina/pkg/db/option"
	"github.com/smallbiznis/cantina/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	DB         *gorm.DB
	GenID      *snowflake.Node
	Clock      clock.Clock
	Defaults   *config.BillingDefaultsHolder
	BillingSvc billingdomain.Service
	CompanySvc companydomain.Service
	PDF        pdf.Provider
	Email      email.Provider
}

type Service struct {
	log        *zap.Logger
	db         *gorm.DB
	genID      *snowflake.Node
	clock      clock.Clock
	defaults   *config.BillingDefaultsHolder
	billingSvc billingdomain.Service
	companySvc companydomain.Service
	pdf        pdf.Provider
	email      email.Provider

	invoices repository.Repository[domain.Invoice]
	items    repository.Repository[domain.InvoiceItem]
}

func NewService(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("invoice.service"),
		db:         p.DB,
		genID:      p.GenID,
		clock:      p.Clock,
		defaults:   p.Defaults,
		billingSvc: p.BillingSvc,
		companySvc: p.CompanySvc,
		pdf:        p.PDF,
		email:      p.Email,
		invoices:   repository.ProvideStore[domain.Invoice](p.DB),
		items:      repository.ProvideStore[domain.InvoiceItem](p.DB),
	}
}

func (s *Service) Generate(ctx context.Context, req domain.GenerateInvoiceRequest) (domain.InvoiceWithItems, error) {
	companyID, err := snowflake.ParseString(strings.TrimSpace(req.CompanyID))
	if err != nil {
		return domain.InvoiceWithItems{}, domain.ErrInvalidID
	}

	statement, err := s.billingSvc.GetStatement(ctx, billingdomain.StatementRequest{
		CompanyID: req.CompanyID,
		Year:      req.Year,
		Month:     req.Month,
	})
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}

	company, err := s.companySvc.GetByID(ctx, req.CompanyID)
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}

	existing, err := s.invoices.FindOne(ctx, &domain.Invoice{
		CompanyID: companyID,
		Year:      req.Year,
		Month:     int(req.Month),
	})
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}
	if existing != nil && existing.Status != domain.InvoiceStatusDraft {
		return domain.InvoiceWithItems{}, domain.ErrAlreadyFinalized
	}

	invoice := domain.Invoice{
		ID:         s.genID.Generate(),
		CompanyID:  companyID,
		Year:       req.Year,
		Month:      int(req.Month),
		Status:     domain.InvoiceStatusDraft,
		TotalCents: statement.TotalCents,
		Currency:   statement.Currency,
		Metadata:   datatypes.JSONMap{},
	}
	if existing != nil {
		invoice.ID = existing.ID
		invoice.CreatedAt = existing.CreatedAt
	}

	items := make([]*domain.InvoiceItem, 0, len(statement.Rows))
	for _, row := range statement.Rows {
		items = append(items, &domain.InvoiceItem{
			ID:             s.genID.Generate(),
			InvoiceID:      invoice.ID,
			Date:           row.Date.String(),
			ActualCount:    row.ActualCount,
			BilledCount:    row.BilledCount,
			UnitPriceCents: company.MealPriceCents,
			SubtotalCents:  row.SubtotalCents,
		})
	}

	// Regeneration replaces the draft wholesale so the invoice always
	// mirrors the latest statement instead of accumulating stale lines.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if existing != nil {
			if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&domain.InvoiceItem{}).Error; err != nil {
				return err
			}
			if err := tx.Save(&invoice).Error; err != nil {
				return err
			}
		} else {
			if err := s.invoices.WithTrx(tx).Create(ctx, &invoice); err != nil {
				return err
			}
		}
		if len(items) == 0 {
			return nil
		}
		return s.items.WithTrx(tx).BatchCreate(ctx, items)
	})
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}

	s.log.Info("invoice generated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("company_id", invoice.CompanyID.String()),
		zap.Int("year", invoice.Year),
		zap.Int("month", invoice.Month),
		zap.Int64("total_cents", invoice.TotalCents),
	)

	return s.withItems(ctx, invoice)
}

func (s *Service) Finalize(ctx context.Context, rawID string) (domain.Invoice, error) {
	invoice, err := s.getInvoice(ctx, rawID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice.Status != domain.InvoiceStatusDraft {
		return domain.Invoice{}, domain.ErrAlreadyFinalized
	}

	defaults := s.defaults.Get()
	now := s.clock.Now()

	seq, err := s.nextSequence(ctx, now.Year())
	if err != nil {
		return domain.Invoice{}, err
	}

	number, err := format.FormatInvoiceNumber(defaults.InvoiceNumber, now, seq)
	if err != nil {
		return domain.Invoice{}, err
	}

	dueAt := now.AddDate(0, 0, defaults.InvoiceDueDays)
	invoice.InvoiceNumber = &number
	invoice.Status = domain.InvoiceStatusFinalized
	invoice.IssuedAt = &now
	invoice.DueAt = &dueAt

	if err := s.invoices.Update(ctx, invoice.ID.String(), map[string]any{
		"invoice_number": number,
		"status":         domain.InvoiceStatusFinalized,
		"issued_at":      now,
		"due_at":         dueAt,
	}); err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice finalized",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", number),
	)

	return *invoice, nil
}

func (s *Service) Send(ctx context.Context, rawID string) (domain.Invoice, error) {
	invoice, err := s.getInvoice(ctx, rawID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice.Status != domain.InvoiceStatusFinalized && invoice.Status != domain.InvoiceStatusSent {
		return domain.Invoice{}, domain.ErrNotFinalized
	}

	company, err := s.companySvc.GetByID(ctx, invoice.CompanyID.String())
	if err != nil {
		return domain.Invoice{}, err
	}
	if strings.TrimSpace(company.ContactEmail) == "" {
		return domain.Invoice{}, domain.ErrMissingRecipient
	}

	items, err := s.items.Find(ctx, &domain.InvoiceItem{InvoiceID: invoice.ID}, option.WithOrder("date ASC"))
	if err != nil {
		return domain.Invoice{}, err
	}

	data := s.renderData(*invoice, company, items)
	document, err := s.pdf.GenerateInvoice(ctx, data)
	if err != nil {
		return domain.Invoice{}, err
	}

	subject := fmt.Sprintf("Invoice %s for %s %d", data.InvoiceNumber, time.Month(invoice.Month), invoice.Year)
	body := fmt.Sprintf("<p>Dear %s,</p><p>Please find attached invoice %s covering %s. Total due: %s.</p>",
		company.Name, data.InvoiceNumber, data.ServicePeriod, format.FormatMoney(invoice.TotalCents, invoice.Currency))

	err = s.email.SendWithAttachments(ctx, []string{company.ContactEmail}, subject, body, []email.Attachment{{
		Filename:    fmt.Sprintf("%s.pdf", data.InvoiceNumber),
		ContentType: "application/pdf",
		Content:     document,
	}})
	if err != nil {
		return domain.Invoice{}, err
	}

	now := s.clock.Now()
	invoice.Status = domain.InvoiceStatusSent
	invoice.SentAt = &now

	if err := s.invoices.Update(ctx, invoice.ID.String(), map[string]any{
		"status":  domain.InvoiceStatusSent,
		"sent_at": now,
	}); err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice sent",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("recipient", company.ContactEmail),
	)

	return *invoice, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.InvoiceWithItems, error) {
	invoice, err := s.getInvoice(ctx, rawID)
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}
	return s.withItems(ctx, *invoice)
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) ([]domain.Invoice, error) {
	query := &domain.Invoice{}
	if strings.TrimSpace(req.CompanyID) != "" {
		companyID, err := snowflake.ParseString(strings.TrimSpace(req.CompanyID))
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		query.CompanyID = companyID
	}
	if req.Status != nil {
		query.Status = *req.Status
	}
	if req.Year != nil {
		query.Year = *req.Year
	}

	rows, err := s.invoices.Find(ctx, query, option.WithOrder("year DESC, month DESC"))
	if err != nil {
		return nil, err
	}

	invoices := make([]domain.Invoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, *row)
	}
	return invoices, nil
}

func (s *Service) getInvoice(ctx context.Context, rawID string) (*domain.Invoice, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	invoice, err := s.invoices.FindOne(ctx, &domain.Invoice{ID: id})
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) withItems(ctx context.Context, invoice domain.Invoice) (domain.InvoiceWithItems, error) {
	rows, err := s.items.Find(ctx, &domain.InvoiceItem{InvoiceID: invoice.ID}, option.WithOrder("date ASC"))
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}

	items := make([]domain.InvoiceItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, *row)
	}
	return domain.InvoiceWithItems{Invoice: invoice, Items: items}, nil
}

// nextSequence counts numbered invoices issued in the given year. Sequence
// gaps after a failed finalize are acceptable; collisions are not, and the
// unique index on invoice_number backstops concurrent finalizes.
func (s *Service) nextSequence(ctx context.Context, year int) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("invoice_number IS NOT NULL AND issued_at >= ? AND issued_at < ?",
			time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

func (s *Service) renderData(invoice domain.Invoice, company companydomain.Company, items []*domain.InvoiceItem) pdf.InvoiceData {
	number := ""
	if invoice.InvoiceNumber != nil {
		number = *invoice.InvoiceNumber
	}

	data := pdf.InvoiceData{
		CompanyName:   company.Name,
		ContactEmail:  company.ContactEmail,
		InvoiceNumber: number,
		ServicePeriod: fmt.Sprintf("%s %d", time.Month(invoice.Month), invoice.Year),
		Currency:      invoice.Currency,
		Total:         format.FormatCents(invoice.TotalCents),
	}
	if invoice.IssuedAt != nil {
		data.IssueDate = invoice.IssuedAt.Format("2006-01-02")
	}
	if invoice.DueAt != nil {
		data.DueDate = invoice.DueAt.Format("2006-01-02")
	}

	for _, item := range items {
		data.Items = append(data.Items, pdf.InvoiceLine{
			Date:      item.Date,
			Actual:    item.ActualCount,
			Billed:    item.BilledCount,
			UnitPrice: format.FormatCents(item.UnitPriceCents),
			Subtotal:  format.FormatCents(item.SubtotalCents),
		})
	}

	return data
}
