package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/httpx"
	"github.com/diewo77/giardino/internal/apperr"
	"github.com/diewo77/giardino/internal/models"
	"github.com/diewo77/giardino/internal/repository"
	"github.com/diewo77/giardino/validation"
)

type QuoteHandler struct {
	db     *gorm.DB
	quotes *repository.Repository[models.Quote]
	items  *repository.Repository[models.QuoteLineItem]
}

func NewQuoteHandler(db *gorm.DB) *QuoteHandler {
	return &QuoteHandler{db: db, quotes: repository.Quotes(db), items: repository.QuoteItems(db)}
}

type quoteInput struct {
	Number     string  `json:"number"`
	IssueDate  string  `json:"issue_date"`
	ExpiryDate *string `json:"expiry_date"`
	ClientID   string  `json:"client_id"`
	Status     string  `json:"status"`
	Currency   string  `json:"currency"`
	Notes      string  `json:"notes"`
	// Total is used only when the quote has no items.
	Total decimal.Decimal `json:"total"`
	Items []lineInput     `json:"items"`
}

type quoteHeader struct {
	Number     string
	IssueDate  datatypes.Date
	ExpiryDate *datatypes.Date
	ClientID   uuid.UUID
	Status     models.QuoteStatus
	Currency   string
	Notes      string
}

func (in quoteInput) header(v validation.Violations) quoteHeader {
	h := quoteHeader{
		Number:   strings.TrimSpace(in.Number),
		Status:   models.QuoteStatus(in.Status),
		Currency: strings.ToUpper(strings.TrimSpace(in.Currency)),
		Notes:    in.Notes,
	}
	if h.Status == "" {
		h.Status = models.QuoteStatusPending
	}
	if h.Currency == "" {
		h.Currency = models.DefaultCurrency
	}
	validation.Required("number", h.Number, v)
	validation.MaxLen("number", h.Number, 50, v)
	validation.OneOf("status", h.Status.Valid(), v)
	validation.MaxLen("currency", h.Currency, 3, v)
	h.IssueDate = parseDate("issue_date", in.IssueDate, v)
	if in.ExpiryDate != nil && *in.ExpiryDate != "" {
		d := parseDate("expiry_date", *in.ExpiryDate, v)
		h.ExpiryDate = &d
	}
	id, err := uuid.Parse(in.ClientID)
	if err != nil {
		v["client_id"] = "invalid"
	}
	h.ClientID = id
	return h
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.quotes.List(r.Context(), listParams(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	q, err := h.quotes.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// Create inserts a quote and its items in one transaction. The total is
// the sum of the line totals.
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in quoteInput
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

	q := models.Quote{
		Number:     hdr.Number,
		IssueDate:  hdr.IssueDate,
		ExpiryDate: hdr.ExpiryDate,
		ClientID:   hdr.ClientID,
		Total:      total.Round(2),
		Status:     hdr.Status,
		Currency:   hdr.Currency,
		Notes:      hdr.Notes,
	}
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := h.quotes.WithTx(tx).Create(ctx, &q); err != nil {
			return err
		}
		q.Items = quoteItems(q.ID, lines)
		return h.items.WithTx(tx).CreateBatch(ctx, q.Items)
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

// Update replaces the quote header. Items are managed through AddItems.
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var in quoteInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	v := make(validation.Violations)
	hdr := in.header(v)
	if err := v.Err(); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := requireClient(ctx, h.db, hdr.ClientID); err != nil {
		httpx.Error(w, err)
		return
	}
	fields := map[string]any{
		"number":      hdr.Number,
		"issue_date":  hdr.IssueDate,
		"expiry_date": hdr.ExpiryDate,
		"client_id":   hdr.ClientID,
		"status":      hdr.Status,
		"currency":    hdr.Currency,
		"notes":       hdr.Notes,
	}
	if err := h.quotes.Update(ctx, id, fields); err != nil {
		httpx.Error(w, err)
		return
	}
	q, err := h.quotes.Get(ctx, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// AddItems appends a JSON array of lines to a quote and recomputes its
// total, all in one transaction.
func (h *QuoteHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var raw json.RawMessage
	if err := httpx.DecodeJSON(w, r, &raw); err != nil {
		httpx.Error(w, err)
		return
	}
	if !isJSONArray(raw) {
		httpx.Error(w, apperr.Validation("items payload must be a JSON array", nil))
		return
	}
	var inputs []lineInput
	if err := json.Unmarshal(raw, &inputs); err != nil {
		httpx.Error(w, apperr.Validation("invalid items: "+err.Error(), nil))
		return
	}
	if len(inputs) == 0 {
		httpx.Error(w, apperr.Validation("at least one item is required", nil))
		return
	}

	exists, err := h.quotes.Exists(ctx, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if !exists {
		httpx.Error(w, apperr.NotFound("quote"))
		return
	}
	var count int64
	if err := h.db.WithContext(ctx).Model(&models.QuoteLineItem{}).Where("quote_id = ?", id).Count(&count).Error; err != nil {
		httpx.Error(w, apperr.Persistence("count quote items", err))
		return
	}
	v := make(validation.Violations)
	lines := parseLines(inputs, int(count), v)
	if err := checkServices(ctx, h.db, lines, v); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := v.Err(); err != nil {
		httpx.Error(w, err)
		return
	}

	items := quoteItems(id, lines)
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := h.items.WithTx(tx).CreateBatch(ctx, items); err != nil {
			return err
		}
		total, err := quoteTotal(ctx, tx, id)
		if err != nil {
			return err
		}
		return h.quotes.WithTx(tx).Update(ctx, id, map[string]any{"total": total})
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, items)
}

func quoteItems(quoteID uuid.UUID, lines []parsedLine) []models.QuoteLineItem {
	items := make([]models.QuoteLineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.QuoteLineItem{QuoteID: quoteID, ServiceID: l.ServiceID, Line: l.Line})
	}
	return items
}

func quoteTotal(ctx context.Context, tx *gorm.DB, quoteID uuid.UUID) (decimal.Decimal, error) {
	var items []models.QuoteLineItem
	if err := tx.WithContext(ctx).Select("line_total").Where("quote_id = ?", quoteID).Find(&items).Error; err != nil {
		return decimal.Zero, apperr.Persistence("sum quote items", err)
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	return total, nil
}

// requireClient turns a dangling client reference into a validation error.
func requireClient(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	ok, err := repository.Clients(db).Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("unknown client", map[string]string{"client_id": "unknown_client"})
	}
	return nil
}
