package handlers

import (
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/httpx"
	"github.com/diewo77/giardino/internal/services"
)

// AdminActionsHandler serves the quote conversion and cascading delete
// workflows.
type AdminActionsHandler struct {
	converter *services.Converter
	deleter   *services.Deleter
}

func NewAdminActionsHandler(db *gorm.DB, log *zap.Logger) *AdminActionsHandler {
	return &AdminActionsHandler{
		converter: services.NewConverter(db, log),
		deleter:   services.NewDeleter(db, log),
	}
}

type convertResponse struct {
	Success bool                      `json:"success"`
	Invoice services.ConversionResult `json:"invoice"`
}

// Convert turns the quote {id} into a new unpaid invoice.
func (h *AdminActionsHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.converter.Convert(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, convertResponse{Success: true, Invoice: res})
}

// Delete returns the handler removing ?id= of entity. ?cascade=true also
// removes dependents the graph allows to cascade.
func (h *AdminActionsHandler) Delete(entity services.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		if err := h.deleter.Delete(r.Context(), entity, id, boolParam(r, "cascade")); err != nil {
			httpx.Error(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"message": "deleted"})
	}
}
