package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/internal/apperr"
	"github.com/diewo77/giardino/internal/models"
	"github.com/diewo77/giardino/internal/repository"
)

// ConversionResult identifies the invoice produced from a quote.
type ConversionResult struct {
	InvoiceID uuid.UUID `json:"id"`
	Number    string    `json:"numero"`
}

// Converter turns quotes into invoices.
type Converter struct {
	db  *gorm.DB
	log *zap.Logger
	// Now is the clock used for issue and due dates.
	Now func() time.Time

	quotes       *repository.Repository[models.Quote]
	invoices     *repository.Repository[models.Invoice]
	invoiceItems *repository.Repository[models.InvoiceLineItem]
}

func NewConverter(db *gorm.DB, log *zap.Logger) *Converter {
	return &Converter{
		db:           db,
		log:          log,
		Now:          time.Now,
		quotes:       repository.Quotes(db),
		invoices:     repository.Invoices(db),
		invoiceItems: repository.InvoiceItems(db),
	}
}

// Convert creates an unpaid invoice mirroring the quote and its line items,
// then marks the quote approved. The invoice and its items are written in
// one transaction. A failed status update is logged and does not fail the
// conversion. Converting the same quote twice yields two invoices.
func (c *Converter) Convert(ctx context.Context, quoteID uuid.UUID) (ConversionResult, error) {
	q, err := c.quotes.Get(ctx, quoteID)
	if err != nil {
		return ConversionResult{}, err
	}

	y, m, d := c.Now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var res ConversionResult
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := models.NextInvoiceNumber(tx, today.Year())
		if err != nil {
			return err
		}
		sourceID := q.ID
		inv := &models.Invoice{
			Number:        number,
			IssueDate:     datatypes.Date(today),
			DueDate:       datatypes.Date(today.AddDate(0, 0, models.InvoiceDueDays)),
			ClientID:      q.ClientID,
			Total:         q.Total,
			Status:        models.InvoiceStatusUnpaid,
			Currency:      q.Currency,
			Notes:         q.Notes,
			SourceQuoteID: &sourceID,
		}
		if err := c.invoices.WithTx(tx).Create(ctx, inv); err != nil {
			return err
		}
		if err := c.invoiceItems.WithTx(tx).CreateBatch(ctx, invoiceLines(inv.ID, q.Items)); err != nil {
			return err
		}
		res = ConversionResult{InvoiceID: inv.ID, Number: inv.Number}
		return nil
	})
	if err != nil {
		c.log.Error("quote conversion rolled back", zap.String("quote_id", quoteID.String()), zap.Error(err))
		return ConversionResult{}, apperr.Persistence("create invoice from quote "+q.Number, err)
	}

	if err := c.quotes.Update(ctx, q.ID, map[string]any{"status": models.QuoteStatusApproved}); err != nil {
		c.log.Warn("quote status not updated after conversion",
			zap.String("quote_id", q.ID.String()),
			zap.String("invoice_number", res.Number),
			zap.Error(err))
	}
	c.log.Info("quote converted",
		zap.String("quote_number", q.Number),
		zap.String("invoice_number", res.Number),
		zap.Int("items", len(q.Items)))
	return res, nil
}

// invoiceLines copies quote lines onto a new invoice. Custom lines get a
// NULL service reference.
func invoiceLines(invoiceID uuid.UUID, items []models.QuoteLineItem) []models.InvoiceLineItem {
	out := make([]models.InvoiceLineItem, 0, len(items))
	for _, it := range items {
		out = append(out, models.InvoiceLineItem{
			InvoiceID: invoiceID,
			ServiceID: models.NormalizeServiceID(it.ServiceID),
			Line:      it.Line,
		})
	}
	return out
}
