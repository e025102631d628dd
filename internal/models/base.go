package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base holds the columns shared by every table: a server-assigned UUID and
// the GORM managed timestamps.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the identifier when the caller left it empty.
func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All returns every persisted model, parents before children, for AutoMigrate.
func All() []any {
	return []any{
		&AdminUser{},
		&Client{},
		&Service{},
		&Quote{},
		&QuoteLineItem{},
		&Invoice{},
		&InvoiceLineItem{},
	}
}
