package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/gate"
	"github.com/diewo77/giardino/httpx"
	"github.com/diewo77/giardino/internal/apperr"
	"github.com/diewo77/giardino/internal/models"
	"github.com/diewo77/giardino/internal/policy"
	"github.com/diewo77/giardino/internal/repository"
	"github.com/diewo77/giardino/internal/services"
	"github.com/diewo77/giardino/validation"
)

type InvoiceHandler struct {
	db       *gorm.DB
	log      *zap.Logger
	gate     *policy.AuthGate
	invoices *repository.Repository[models.Invoice]
	items    *repository.Repository[models.InvoiceLineItem]
	svc      *services.InvoiceService
	export   *services.Exporter
}

func NewInvoiceHandler(db *gorm.DB, g *policy.AuthGate, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		db:       db,
		log:      log,
		gate:     g,
		invoices: repository.Invoices(db),
		items:    repository.InvoiceItems(db),
		svc:      services.NewInvoiceService(db),
		export:   services.NewExporter(db),
	}
}

type invoiceInput struct {
	// Number is generated when empty.
	Number    string `json:"number"`
	IssueDate string `json:"issue_date"`
	// DueDate defaults to issue date plus the payment term.
	DueDate       string          `json:"due_date"`
	ClientID      string          `json:"client_id"`
	Status        string          `json:"status"`
	Currency      string          `json:"currency"`
	Notes         string          `json:"notes"`
	SourceQuoteID *string         `json:"source_quote_id"`
	Total         decimal.Decimal `json:"total"`
	Items         []lineInput     `json:"items"`
}

type invoiceHeader struct {
	Number        string
	IssueDate     datatypes.Date
	DueDate       datatypes.Date
	ClientID      uuid.UUID
	Status        models.InvoiceStatus
	Currency      string
	Notes         string
	SourceQuoteID *uuid.UUID
}

func (in invoiceInput) header(v validation.Violations) invoiceHeader {
	h := invoiceHeader{
		Number:   strings.TrimSpace(in.Number),
		Status:   models.InvoiceStatus(in.Status),
		Currency: strings.ToUpper(strings.TrimSpace(in.Currency)),
		Notes:    in.Notes,
	}
	if h.Status == "" {
		h.Status = models.InvoiceStatusUnpaid
	}
	if h.Currency == "" {
		h.Currency = models.DefaultCurrency
	}
	validation.MaxLen("number", h.Number, 50, v)
	validation.OneOf("status", h.Status.Valid(), v)
	validation.MaxLen("currency", h.Currency, 3, v)
	h.IssueDate = parseDate("issue_date", in.IssueDate, v)
	if strings.TrimSpace(in.DueDate) == "" {
		h.DueDate = datatypes.Date(time.Time(h.IssueDate).AddDate(0, 0, models.InvoiceDueDays))
	} else {
		h.DueDate = parseDate("due_date", in.DueDate, v)
	}
	if _, bad := v["issue_date"]; !bad {
		if _, bad := v["due_date"]; !bad && time.Time(h.DueDate).Before(time.Time(h.IssueDate)) {
			v["due_date"] = "before_issue_date"
		}
	}
	id, err := uuid.Parse(in.ClientID)
	if err != nil {
		v["client_id"] = "invalid"
	}
	h.ClientID = id
	if in.SourceQuoteID != nil && *in.SourceQuoteID != "" {
		qid, err := uuid.Parse(*in.SourceQuoteID)
		if err != nil {
			v["source_quote_id"] = "invalid"
		} else {
			h.SourceQuoteID = &qid
		}
	}
	return h
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.invoices.List(r.Context(), listParams(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	inv, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Create inserts an invoice and its items in one transaction. When the
// number is omitted the next F-YYYY-NNNN of the issue year is taken.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in invoiceInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	v := make(validation.Violations)
	hdr := in.header(v)
	lines := parseLines(in.Items, 0, v)
	if err := checkServices(ctx, h.db, lines, v); err != nil {
		httpx.Error(w, err)
		return
	}
	total := in.Total
	if len(lines) > 0 {
		total = sumParsed(lines)
	}
	validation.NonNegativeDecimal("total", total, v)
	if err := v.Err(); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := requireClient(ctx, h.db, hdr.ClientID); err != nil {
		httpx.Error(w, err)
		return
	}
	if hdr.SourceQuoteID != nil {
		ok, err := repository.Quotes(h.db).Exists(ctx, *hdr.SourceQuoteID)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		if !ok {
			httpx.Error(w, apperr.Validation("unknown quote", map[string]string{"source_quote_id": "unknown_quote"}))
			return
		}
	}

	inv := models.Invoice{
		Number:        hdr.Number,
		IssueDate:     hdr.IssueDate,
		DueDate:       hdr.DueDate,
		ClientID:      hdr.ClientID,
		Total:         total.Round(2),
		Status:        hdr.Status,
		Currency:      hdr.Currency,
		Notes:         hdr.Notes,
		SourceQuoteID: hdr.SourceQuoteID,
	}
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if inv.Number == "" {
			n, err := models.NextInvoiceNumber(tx, time.Time(inv.IssueDate).Year())
			if err != nil {
				return apperr.Persistence("generate invoice number", err)
			}
			inv.Number = n
		}
		if err := h.invoices.WithTx(tx).Create(ctx, &inv); err != nil {
			return err
		}
		inv.Items = invoiceItems(inv.ID, lines)
		return h.items.WithTx(tx).CreateBatch(ctx, inv.Items)
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	h.log.Info("invoice created", zap.String("invoice_number", inv.Number))
	httpx.JSON(w, http.StatusCreated, inv)
}

// Update replaces the invoice header. Paid and cancelled invoices are
// locked for everyone but admins.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	current, err := h.invoices.Get(ctx, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.gate.Authorize(ctx, gate.ActionUpdate, policy.ResourceInvoice, current); err != nil {
		h.gate.WriteError(w, err)
		return
	}
	var in invoiceInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	v := make(validation.Violations)
	hdr := in.header(v)
	validation.Required("number", hdr.Number, v)
	if err := v.Err(); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := requireClient(ctx, h.db, hdr.ClientID); err != nil {
		httpx.Error(w, err)
		return
	}
	fields := map[string]any{
		"number":     hdr.Number,
		"issue_date": hdr.IssueDate,
		"due_date":   hdr.DueDate,
		"client_id":  hdr.ClientID,
		"status":     hdr.Status,
		"currency":   hdr.Currency,
		"notes":      hdr.Notes,
	}
	if err := h.invoices.Update(ctx, id, fields); err != nil {
		httpx.Error(w, err)
		return
	}
	inv, err := h.invoices.Get(ctx, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

type statusInput struct {
	Status string `json:"status"`
}

// SetStatus marks an invoice paid, unpaid or cancelled.
func (h *InvoiceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var in statusInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	current, err := h.invoices.Get(ctx, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.gate.Authorize(ctx, gate.ActionUpdate, policy.ResourceInvoice, current); err != nil {
		h.gate.WriteError(w, err)
		return
	}
	if err := h.svc.SetStatus(ctx, id, models.InvoiceStatus(in.Status)); err != nil {
		httpx.Error(w, err)
		return
	}
	current.Status = models.InvoiceStatus(in.Status)
	httpx.JSON(w, http.StatusOK, current)
}

func (h *InvoiceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.Summary(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if totals == nil {
		totals = []services.CurrencyTotals{}
	}
	httpx.JSON(w, http.StatusOK, totals)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export streams the invoice register as an XLSX attachment.
func (h *InvoiceHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="fatture.xlsx"`)
	if err := h.export.WriteInvoices(r.Context(), w); err != nil {
		h.log.Error("invoice export failed", zap.Error(err))
		w.Header().Del("Content-Disposition")
		httpx.Error(w, err)
	}
}

func invoiceItems(invoiceID uuid.UUID, lines []parsedLine) []models.InvoiceLineItem {
	items := make([]models.InvoiceLineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.InvoiceLineItem{InvoiceID: invoiceID, ServiceID: l.ServiceID, Line: l.Line})
	}
	return items
}
