package repository

import (
	"gorm.io/gorm"

	"github.com/diewo77/giardino/internal/models"
)

const lineOrder = "position, created_at"

func Clients(db *gorm.DB) *Repository[models.Client] {
	return New[models.Client](db, Options{
		Entity:        "client",
		SearchColumns: []string{"first_name", "last_name", "company", "email", "city"},
		Order:         "last_name, first_name",
	})
}

func Services(db *gorm.DB) *Repository[models.Service] {
	return New[models.Service](db, Options{
		Entity:        "service",
		SearchColumns: []string{"name", "description"},
		Order:         "name",
	})
}

// Quotes loads the client and the ordered line items on Get.
func Quotes(db *gorm.DB) *Repository[models.Quote] {
	return New[models.Quote](db, Options{
		Entity:        "quote",
		Preloads:      []string{"Client", "Items"},
		PreloadOrder:  map[string]string{"Items": lineOrder},
		SearchColumns: []string{"number", "notes"},
		Order:         "issue_date DESC, number DESC",
	})
}

// Invoices loads the client and the ordered line items on Get.
func Invoices(db *gorm.DB) *Repository[models.Invoice] {
	return New[models.Invoice](db, Options{
		Entity:        "invoice",
		Preloads:      []string{"Client", "Items"},
		PreloadOrder:  map[string]string{"Items": lineOrder},
		SearchColumns: []string{"number", "notes"},
		Order:         "issue_date DESC, number DESC",
	})
}

func QuoteItems(db *gorm.DB) *Repository[models.QuoteLineItem] {
	return New[models.QuoteLineItem](db, Options{Entity: "quote line item", Order: lineOrder})
}

func InvoiceItems(db *gorm.DB) *Repository[models.InvoiceLineItem] {
	return New[models.InvoiceLineItem](db, Options{Entity: "invoice line item", Order: lineOrder})
}

func AdminUsers(db *gorm.DB) *Repository[models.AdminUser] {
	return New[models.AdminUser](db, Options{Entity: "user", SearchColumns: []string{"email", "name"}, Order: "email"})
}
