package quotations

import (
	"context"
	"errors"
	"fmt"

	"github.com/quotadesk/quotadesk/internal/customers"
	"github.com/quotadesk/quotadesk/internal/document"
	"github.com/quotadesk/quotadesk/internal/export"
	"github.com/quotadesk/quotadesk/internal/pricing"
	"github.com/quotadesk/quotadesk/internal/products"
)

var ErrInvalidStatus = errors.New("invalid status transition")

// CustomerDirectory is the slice of the customer service quotations need.
type CustomerDirectory interface {
	Get(ctx context.Context, id int64) (customers.Customer, error)
}

// Catalog resolves product details for line items whose name, price or
// image were not supplied explicitly.
type Catalog interface {
	GetByCode(ctx context.Context, code string) (products.Product, error)
}

// Branding carries the fixed document identity rendered on every export.
type Branding struct {
	BrandLine   string
	LogoURL     string
	Bank        export.BankDetails
	Declaration string
}

type Service struct {
	repo      Repository
	directory CustomerDirectory
	catalog   Catalog
	branding  Branding
	pageCfg   document.Config
}

func NewService(repo Repository, directory CustomerDirectory, catalog Catalog, branding Branding) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		catalog:   catalog,
		branding:  branding,
		pageCfg:   document.DefaultConfig(),
	}
}

func (s *Service) Create(ctx context.Context, req CreateQuotationRequest) (*Quotation, error) {
	if req.ValidUntil.Before(req.QuoteDate) {
		return nil, &pricing.ValidationError{Field: "valid_until", Reason: "must not precede quote_date"}
	}
	if _, err := s.directory.Get(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	q := Quotation{
		Title:              req.Title,
		CustomerID:         req.CustomerID,
		Status:             StatusDraft,
		Version:            1,
		QuoteDate:          req.QuoteDate,
		ValidUntil:         req.ValidUntil,
		Notes:              req.Notes,
		ExtraDiscountValue: req.ExtraDiscountValue,
		ExtraDiscountType:  req.ExtraDiscountType,
		Shipping:           req.Shipping,
		TaxRate:            req.TaxRate,
		TaxAmount:          req.TaxAmount,
		RoundOff:           req.RoundOff,
		FinalAmount:        req.FinalAmount,
		Items:              items,
	}
	if err := s.snapshotTotals(&q); err != nil {
		return nil, err
	}

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		refID, err := repo.GenerateRefID(ctx, q.QuoteDate)
		if err != nil {
			return fmt.Errorf("generate ref id: %w", err)
		}
		q.RefID = refID

		id, err = repo.Create(ctx, q)
		if err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		for _, item := range q.Items {
			item.QuotationID = id
			if _, err := repo.InsertItem(ctx, item); err != nil {
				return fmt.Errorf("insert quotation item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateQuotationRequest) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if q.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only DRAFT quotations can be edited", ErrInvalidStatus)
	}

	if req.Title != nil {
		q.Title = *req.Title
	}
	if req.QuoteDate != nil {
		q.QuoteDate = *req.QuoteDate
	}
	if req.ValidUntil != nil {
		q.ValidUntil = *req.ValidUntil
	}
	if req.Notes != nil {
		q.Notes = req.Notes
	}
	if req.ExtraDiscountValue != nil {
		q.ExtraDiscountValue = *req.ExtraDiscountValue
	}
	if req.ExtraDiscountType != nil {
		q.ExtraDiscountType = *req.ExtraDiscountType
	}
	if req.Shipping != nil {
		q.Shipping = *req.Shipping
	}
	if req.TaxRate != nil {
		q.TaxRate = *req.TaxRate
	}
	if req.TaxAmount != nil {
		q.TaxAmount = req.TaxAmount
	}
	if req.RoundOff != nil {
		q.RoundOff = req.RoundOff
	}
	if req.FinalAmount != nil {
		q.FinalAmount = req.FinalAmount
	}
	if q.ValidUntil.Before(q.QuoteDate) {
		return nil, &pricing.ValidationError{Field: "valid_until", Reason: "must not precede quote_date"}
	}

	itemsChanged := req.Items != nil
	if itemsChanged {
		items, err := s.resolveItems(ctx, *req.Items)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].QuotationID = q.ID
		}
		q.Items = items
	}

	if err := s.snapshotTotals(q); err != nil {
		return nil, err
	}
	q.Version++

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateHeader(ctx, *q); err != nil {
			return err
		}
		if itemsChanged {
			if err := repo.DeleteItems(ctx, q.ID); err != nil {
				return err
			}
			for _, item := range q.Items {
				if _, err := repo.InsertItem(ctx, item); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update quotation: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Submit(ctx context.Context, id int64) (*Quotation, error) {
	return s.transition(ctx, id, StatusDraft, StatusSubmitted, nil)
}

func (s *Service) Approve(ctx context.Context, id int64) (*Quotation, error) {
	return s.transition(ctx, id, StatusSubmitted, StatusApproved, nil)
}

func (s *Service) Reject(ctx context.Context, id int64, reason string) (*Quotation, error) {
	return s.transition(ctx, id, StatusSubmitted, StatusRejected, &reason)
}

func (s *Service) transition(ctx context.Context, id int64, from, to Status, reason *string) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if q.Status != from {
		return nil, fmt.Errorf("%w: %s requires status %s, have %s", ErrInvalidStatus, to, from, q.Status)
	}
	if err := s.repo.UpdateStatus(ctx, id, to, reason); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Quotation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]QuotationSummary, int, error) {
	if req.Limit == 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// Totals derives the display breakdown for a stored quotation.
func (s *Service) Totals(q *Quotation) (TotalsResponse, error) {
	main, optional := q.LineItems()
	b, err := pricing.ComputeTotals(append(main, optional...), q.Adjustments())
	if err != nil {
		return TotalsResponse{}, err
	}
	return totalsResponse(b), nil
}

// BuildDocument assembles the export view-model: customer, priced items,
// derived totals, HSN codes and the paginated page sequence.
func (s *Service) BuildDocument(ctx context.Context, id int64) (*export.Document, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	customer, err := s.directory.Get(ctx, q.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	main, optional := q.LineItems()
	totals, err := pricing.ComputeTotals(append(main, optional...), q.Adjustments())
	if err != nil {
		return nil, err
	}
	pages, err := document.Paginate(main, optional, s.pageCfg)
	if err != nil {
		return nil, err
	}

	hsn := make(map[string]string)
	for _, it := range q.Items {
		if _, done := hsn[it.ProductCode]; done {
			continue
		}
		if p, err := s.catalog.GetByCode(ctx, it.ProductCode); err == nil {
			hsn[it.ProductCode] = p.HSN()
		}
	}

	return &export.Document{
		Title:           q.Title,
		RefID:           q.RefID,
		Version:         q.Version,
		BrandLine:       s.branding.BrandLine,
		LogoURL:         s.branding.LogoURL,
		Date:            q.QuoteDate,
		CustomerName:    customer.Name,
		CustomerPhone:   customer.Phone,
		CustomerAddress: customer.Address,
		Main:            main,
		Optional:        optional,
		Totals:          totals,
		TaxRate:         q.TaxRate,
		HSNByProduct:    hsn,
		Bank:            s.branding.Bank,
		Declaration:     s.branding.Declaration,
		Pages:           pages,
	}, nil
}

// resolveItems fills gaps in submitted lines from the catalog: missing
// names, prices and images come from the product record; a missing product
// leaves the submitted values as-is.
func (s *Service) resolveItems(ctx context.Context, reqs []ItemRequest) ([]Item, error) {
	items := make([]Item, 0, len(reqs))
	for i, req := range reqs {
		item := Item{
			ProductCode:   req.ProductCode,
			Name:          req.Name,
			ImageURL:      req.ImageURL,
			Quantity:      req.Quantity,
			DiscountValue: req.DiscountValue,
			DiscountType:  req.DiscountType,
			IsOptional:    req.IsOptional,
			Position:      i + 1,
		}
		if req.UnitPrice != nil {
			item.UnitPrice = *req.UnitPrice
		}
		if item.DiscountType == "" {
			item.DiscountType = pricing.DiscountPercent
		}

		if item.Name == "" || item.UnitPrice == 0 || item.ImageURL == "" {
			if p, err := s.catalog.GetByCode(ctx, req.ProductCode); err == nil {
				if item.Name == "" {
					item.Name = p.Name
				}
				if req.UnitPrice == nil {
					item.UnitPrice = p.EffectivePrice()
				}
				if item.ImageURL == "" {
					item.ImageURL = p.PrimaryImage()
				}
			}
		}
		if item.Name == "" {
			return nil, &pricing.ValidationError{
				Field:  fmt.Sprintf("items[%d].name", i),
				Reason: "unknown product and no name supplied",
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// snapshotTotals validates the pricing inputs and stores the derived
// headline figures on the quotation row.
func (s *Service) snapshotTotals(q *Quotation) error {
	main, optional := q.LineItems()
	b, err := pricing.ComputeTotals(append(main, optional...), q.Adjustments())
	if err != nil {
		return err
	}
	q.Subtotal = b.Subtotal
	q.TaxableValue = b.TaxableValue
	q.GrandTotal = b.DisplayTotal
	return nil
}
