package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "unpaid"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) Valid() bool {
	return s == InvoiceStatusUnpaid || s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// InvoiceDueDays is the payment term applied to converted quotes.
const InvoiceDueDays = 30

// Invoice ("fattura") is a binding billing document, optionally derived
// from a quote.
type Invoice struct {
	Base

	Number string `gorm:"size:50;not null;uniqueIndex" json:"number"`

	IssueDate datatypes.Date `gorm:"not null" json:"issue_date"`
	DueDate   datatypes.Date `gorm:"not null" json:"due_date"`

	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Total    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Status   InvoiceStatus   `gorm:"size:20;not null;index" json:"status"`
	Currency string          `gorm:"size:3;not null" json:"currency"`
	Notes    string          `gorm:"type:text" json:"notes,omitempty"`

	// SourceQuoteID points back to the quote this invoice was converted from.
	SourceQuoteID *uuid.UUID `gorm:"type:uuid;index" json:"source_quote_id,omitempty"`
	SourceQuote   *Quote     `gorm:"foreignKey:SourceQuoteID" json:"-"`

	Items []InvoiceLineItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// InvoiceLineItem is one billable row of an invoice.
type InvoiceLineItem struct {
	Base

	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`

	ServiceID *uuid.UUID `gorm:"type:uuid;index" json:"service_id"`
	Service   *Service   `gorm:"foreignKey:ServiceID" json:"service,omitempty"`

	Line
}

// NextInvoiceNumber returns the number following the highest one issued in
// the given year. Format: F-YYYY-NNNN (e.g., F-2026-0001)
//
// Only numbers with a purely numeric suffix count, compared as integers, so
// hand-entered numbers such as F-2026-0001-bis never reset the sequence.
func NextInvoiceNumber(db *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("F-%d-", year)
	var numbers []string
	err := db.Model(&Invoice{}).
		Where("number LIKE ?", prefix+"%").
		Pluck("number", &numbers).Error
	if err != nil {
		return "", err
	}
	seq := 0
	for _, number := range numbers {
		if n, ok := sequenceOf(number, prefix); ok && n > seq {
			seq = n
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

// sequenceOf parses the digits after prefix.
func sequenceOf(number, prefix string) (int, bool) {
	suffix, ok := strings.CutPrefix(number, prefix)
	if !ok || suffix == "" || strings.TrimLeft(suffix, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}
