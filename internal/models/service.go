package models

import "github.com/shopspring/decimal"

// BillingUnit is how a catalog service is priced.
type BillingUnit string

const (
	UnitHourly   BillingUnit = "hourly"
	UnitDaily    BillingUnit = "daily"
	UnitPerPiece BillingUnit = "per_piece"
	UnitFlat     BillingUnit = "flat"
)

// Valid reports whether u is one of the known billing units.
func (u BillingUnit) Valid() bool {
	switch u {
	case UnitHourly, UnitDaily, UnitPerPiece, UnitFlat:
		return true
	}
	return false
}

// Service is a catalog item. Line items may reference it; deletion is
// refused while any do.
type Service struct {
	Base

	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Unit        BillingUnit     `gorm:"size:20;not null" json:"unit"`
	Active      bool            `gorm:"not null" json:"active"`
}
