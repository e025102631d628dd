package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomServiceRef is the value a form or API client sends instead of a
// service id to mark a free-text line.
const CustomServiceRef = "custom"

// Line holds the columns common to quote and invoice line items.
type Line struct {
	Description string          `gorm:"size:500;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(10,3);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
	Position    int             `gorm:"not null;default:0" json:"position"`
}

// ExpectedTotal is quantity × unit price rounded to cents.
func (l Line) ExpectedTotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice).Round(2)
}

// ParseServiceRef turns a service reference from user input into a column
// value. Empty and "custom" both mean a custom line with no catalog service.
func ParseServiceRef(ref string) (*uuid.UUID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.EqualFold(ref, CustomServiceRef) {
		return nil, nil
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, err
	}
	return NormalizeServiceID(&id), nil
}

// NormalizeServiceID maps the nil UUID, the stored form of the custom
// sentinel, to a NULL reference.
func NormalizeServiceID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	v := *id
	return &v
}

// SumLines totals the stored line totals.
func SumLines(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return total
}
