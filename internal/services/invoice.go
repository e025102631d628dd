package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/internal/apperr"
	"github.com/diewo77/giardino/internal/models"
	"github.com/diewo77/giardino/internal/repository"
)

type InvoiceService struct {
	db       *gorm.DB
	invoices *repository.Repository[models.Invoice]
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db, invoices: repository.Invoices(db)}
}

// SetStatus moves an invoice to status.
func (s *InvoiceService) SetStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error {
	if !status.Valid() {
		return apperr.Validation("invalid invoice status", map[string]string{"status": "invalid"})
	}
	return s.invoices.Update(ctx, id, map[string]any{"status": status})
}

// CurrencyTotals is the invoiced amount per status for one currency.
type CurrencyTotals struct {
	Currency  string          `json:"currency"`
	Paid      decimal.Decimal `json:"paid"`
	Unpaid    decimal.Decimal `json:"unpaid"`
	Cancelled decimal.Decimal `json:"cancelled"`
	Count     int             `json:"count"`
}

// Summary totals all invoices by currency and status.
func (s *InvoiceService) Summary(ctx context.Context) ([]CurrencyTotals, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Select("currency", "status", "total").
		Order("currency").
		Find(&invoices).Error
	if err != nil {
		return nil, repository.Translate("invoice", "summarize invoices", err)
	}

	var out []CurrencyTotals
	index := map[string]int{}
	for _, inv := range invoices {
		i, ok := index[inv.Currency]
		if !ok {
			i = len(out)
			index[inv.Currency] = i
			out = append(out, CurrencyTotals{Currency: inv.Currency})
		}
		t := &out[i]
		t.Count++
		switch inv.Status {
		case models.InvoiceStatusPaid:
			t.Paid = t.Paid.Add(inv.Total)
		case models.InvoiceStatusUnpaid:
			t.Unpaid = t.Unpaid.Add(inv.Total)
		case models.InvoiceStatusCancelled:
			t.Cancelled = t.Cancelled.Add(inv.Total)
		default:
			return nil, fmt.Errorf("invoice in unknown status %q", inv.Status)
		}
	}
	return out, nil
}
