// Package dbtest opens migrated in-memory SQLite stores and builds fixtures
// for package tests.
package dbtest

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/internal/db"
	"github.com/diewo77/giardino/internal/models"
)

// Open returns a fresh store named after the test, with foreign keys on.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the shared memory database consistent inside transactions
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

// Client inserts a client named after last.
func Client(t testing.TB, gdb *gorm.DB, last string) *models.Client {
	t.Helper()
	c := &models.Client{FirstName: "Anna", LastName: last, Email: strings.ToLower(last) + "@example.com", City: "Lugano", Country: "CH"}
	if err := gdb.Create(c).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

// Service inserts an active hourly service.
func Service(t testing.TB, gdb *gorm.DB, name string, price int64) *models.Service {
	t.Helper()
	s := &models.Service{Name: name, UnitPrice: decimal.NewFromInt(price), Unit: models.UnitHourly, Active: true}
	if err := gdb.Create(s).Error; err != nil {
		t.Fatalf("create service: %v", err)
	}
	return s
}

// Line builds a line with a consistent total.
func Line(desc, qty, price string, pos int) models.Line {
	l := models.Line{
		Description: desc,
		Quantity:    decimal.RequireFromString(qty),
		UnitPrice:   decimal.RequireFromString(price),
		Position:    pos,
	}
	l.LineTotal = l.ExpectedTotal()
	return l
}

// Date returns the calendar date of y-m-d.
func Date(y int, m time.Month, d int) datatypes.Date {
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// Quote inserts a pending quote for clientID with the given items. The
// total is the sum of the item totals.
func Quote(t testing.TB, gdb *gorm.DB, number string, clientID uuid.UUID, items ...models.QuoteLineItem) *models.Quote {
	t.Helper()
	lines := make([]models.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, it.Line)
	}
	q := &models.Quote{
		Number:    number,
		IssueDate: Date(2026, time.March, 2),
		ClientID:  clientID,
		Total:     models.SumLines(lines),
		Status:    models.QuoteStatusPending,
		Currency:  models.DefaultCurrency,
		Notes:     "Spring cleanup",
	}
	if err := gdb.Create(q).Error; err != nil {
		t.Fatalf("create quote: %v", err)
	}
	for i := range items {
		items[i].QuoteID = q.ID
	}
	if len(items) > 0 {
		if err := gdb.Create(&items).Error; err != nil {
			t.Fatalf("create quote items: %v", err)
		}
	}
	q.Items = items
	return q
}

// Invoice inserts an unpaid invoice for clientID, optionally linked to a
// source quote.
func Invoice(t testing.TB, gdb *gorm.DB, number string, clientID uuid.UUID, sourceQuoteID *uuid.UUID, items ...models.InvoiceLineItem) *models.Invoice {
	t.Helper()
	lines := make([]models.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, it.Line)
	}
	inv := &models.Invoice{
		Number:        number,
		IssueDate:     Date(2026, time.March, 10),
		DueDate:       Date(2026, time.April, 9),
		ClientID:      clientID,
		Total:         models.SumLines(lines),
		Status:        models.InvoiceStatusUnpaid,
		Currency:      models.DefaultCurrency,
		SourceQuoteID: sourceQuoteID,
	}
	if err := gdb.Create(inv).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	for i := range items {
		items[i].InvoiceID = inv.ID
	}
	if len(items) > 0 {
		if err := gdb.Create(&items).Error; err != nil {
			t.Fatalf("create invoice items: %v", err)
		}
	}
	inv.Items = items
	return inv
}

// Count returns the number of rows of model matching the optional where.
func Count(t testing.TB, gdb *gorm.DB, model any, where ...any) int64 {
	t.Helper()
	q := gdb.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}
