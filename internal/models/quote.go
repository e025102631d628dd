package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// QuoteStatus represents the status of a quote.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusRejected QuoteStatus = "rejected"
)

func (s QuoteStatus) Valid() bool {
	return s == QuoteStatusPending || s == QuoteStatusApproved || s == QuoteStatusRejected
}

// DefaultCurrency is used when a quote or invoice is created without one.
const DefaultCurrency = "CHF"

// Quote ("preventivo") is a cost estimate sent to a client.
type Quote struct {
	Base

	// Number is assigned by the business, not generated.
	Number string `gorm:"size:50;not null;uniqueIndex" json:"number"`

	IssueDate  datatypes.Date  `gorm:"not null" json:"issue_date"`
	ExpiryDate *datatypes.Date `json:"expiry_date,omitempty"`

	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Total    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Status   QuoteStatus     `gorm:"size:20;not null;index" json:"status"`
	Currency string          `gorm:"size:3;not null" json:"currency"`
	Notes    string          `gorm:"type:text" json:"notes,omitempty"`

	Items []QuoteLineItem `gorm:"foreignKey:QuoteID" json:"items,omitempty"`
}

// QuoteLineItem is one billable row of a quote.
type QuoteLineItem struct {
	Base

	QuoteID uuid.UUID `gorm:"type:uuid;not null;index" json:"quote_id"`

	// Nil for custom lines.
	ServiceID *uuid.UUID `gorm:"type:uuid;index" json:"service_id"`
	Service   *Service   `gorm:"foreignKey:ServiceID" json:"service,omitempty"`

	Line
}
