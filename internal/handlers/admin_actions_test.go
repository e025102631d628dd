package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diewo77/giardino/internal/dbtest"
	"github.com/diewo77/giardino/internal/models"
	"github.com/diewo77/giardino/internal/services"
)

func TestAdminActions_Convert(t *testing.T) {
	gdb := dbtest.Open(t)
	c := dbtest.Client(t, gdb, "Costa")
	q := dbtest.Quote(t, gdb, "P-1", c.ID, models.QuoteLineItem{Line: dbtest.Line("Mowing", "2", "50", 0)})
	h := NewAdminActionsHandler(gdb, zap.NewNop())

	rec := serve("POST /api/quotes/{id}/convert", h.Convert, request(t, http.MethodPost, "/api/quotes/"+q.ID.String()+"/convert", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[convertResponse](t, rec)
	assert.True(t, body.Success)
	assert.NotEqual(t, uuid.Nil, body.Invoice.InvoiceID)
	assert.Regexp(t, `^F-\d{4}-0001$`, body.Invoice.Number)
	assert.EqualValues(t, 1, dbtest.Count(t, gdb, &models.InvoiceLineItem{}))

	rec = serve("POST /api/quotes/{id}/convert", h.Convert, request(t, http.MethodPost, "/api/quotes/6f1c1b7e-2a0e-4a5e-9d55-0c6a0f4b8a11/convert", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminActions_DeleteClient(t *testing.T) {
	gdb := dbtest.Open(t)
	c := dbtest.Client(t, gdb, "Costa")
	q := dbtest.Quote(t, gdb, "P-1", c.ID, models.QuoteLineItem{Line: dbtest.Line("Mowing", "2", "50", 0)})
	dbtest.Invoice(t, gdb, "F-2026-0001", c.ID, &q.ID, models.InvoiceLineItem{Line: dbtest.Line("Mowing", "2", "50", 0)})
	h := NewAdminActionsHandler(gdb, zap.NewNop())
	del := h.Delete(services.EntityClient)

	rec := serve("DELETE /api/clients", del, request(t, http.MethodDelete, "/api/clients?id="+c.ID.String(), nil))
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Contains(t, decode[map[string]any](t, rec)["error"], "cannot delete client")
	assert.EqualValues(t, 1, dbtest.Count(t, gdb, &models.Client{}))

	rec = serve("DELETE /api/clients", del, request(t, http.MethodDelete, "/api/clients?id="+c.ID.String()+"&cascade=true", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"message": "deleted"}, decode[map[string]any](t, rec))
	for _, model := range []any{&models.Client{}, &models.Quote{}, &models.QuoteLineItem{}, &models.Invoice{}, &models.InvoiceLineItem{}} {
		assert.EqualValues(t, 0, dbtest.Count(t, gdb, model), "%T", model)
	}
}

func TestAdminActions_DeleteErrors(t *testing.T) {
	gdb := dbtest.Open(t)
	c := dbtest.Client(t, gdb, "Costa")
	s := dbtest.Service(t, gdb, "Taglio", 55)
	dbtest.Quote(t, gdb, "P-1", c.ID, models.QuoteLineItem{ServiceID: &s.ID, Line: dbtest.Line("Mowing", "1", "55", 0)})
	h := NewAdminActionsHandler(gdb, zap.NewNop())

	rec := serve("DELETE /api/services", h.Delete(services.EntityService), request(t, http.MethodDelete, "/api/services?id="+s.ID.String()+"&cascade=true", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve("DELETE /api/quotes", h.Delete(services.EntityQuote), request(t, http.MethodDelete, "/api/quotes", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "required", decode[errorBody](t, rec).Details["id"])

	rec = serve("DELETE /api/invoices", h.Delete(services.EntityInvoice), request(t, http.MethodDelete, "/api/invoices?id=6f1c1b7e-2a0e-4a5e-9d55-0c6a0f4b8a11", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
