package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/internal/models"
	"github.com/diewo77/giardino/internal/repository"
)

const exportSheet = "Fatture"

var exportHeader = []any{"Number", "Client", "Issue date", "Due date", "Status", "Currency", "Total"}

// Exporter writes the invoice register as an XLSX workbook.
type Exporter struct {
	db *gorm.DB
}

func NewExporter(db *gorm.DB) *Exporter { return &Exporter{db: db} }

// WriteInvoices writes one row per invoice, oldest first.
func (e *Exporter) WriteInvoices(ctx context.Context, w io.Writer) error {
	var invoices []models.Invoice
	err := e.db.WithContext(ctx).Preload("Client").Order("issue_date, number").Find(&invoices).Error
	if err != nil {
		return repository.Translate("invoice", "export invoices", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return err
	}
	for i, inv := range invoices {
		client := ""
		if inv.Client != nil {
			client = inv.Client.FullName()
		}
		total, _ := inv.Total.Float64()
		row := []any{
			inv.Number,
			client,
			time.Time(inv.IssueDate).Format(time.DateOnly),
			time.Time(inv.DueDate).Format(time.DateOnly),
			string(inv.Status),
			inv.Currency,
			total,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(exportSheet, "A", "B", 24); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
