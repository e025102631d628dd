package handlers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/httpx"
	"github.com/diewo77/giardino/internal/models"
	"github.com/diewo77/giardino/internal/repository"
	"github.com/diewo77/giardino/validation"
)

type ServiceHandler struct {
	services *repository.Repository[models.Service]
}

func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{services: repository.Services(db)}
}

type serviceInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit"`
	// Active defaults to true on create.
	Active *bool `json:"active"`
}

func (in serviceInput) validate() error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 255, v)
	validation.NonNegativeDecimal("unit_price", in.UnitPrice, v)
	validation.OneOf("unit", models.BillingUnit(in.Unit).Valid(), v)
	return v.Err()
}

func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.services.List(r.Context(), listParams(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	s, err := h.services.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in serviceInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := in.validate(); err != nil {
		httpx.Error(w, err)
		return
	}
	s := models.Service{
		Name:        in.Name,
		Description: in.Description,
		UnitPrice:   in.UnitPrice.Round(2),
		Unit:        models.BillingUnit(in.Unit),
		Active:      in.Active == nil || *in.Active,
	}
	if err := h.services.Create(r.Context(), &s); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, s)
}

func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var in serviceInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := in.validate(); err != nil {
		httpx.Error(w, err)
		return
	}
	fields := map[string]any{
		"name":        in.Name,
		"description": in.Description,
		"unit_price":  in.UnitPrice.Round(2),
		"unit":        in.Unit,
	}
	if in.Active != nil {
		fields["active"] = *in.Active
	}
	if err := h.services.Update(r.Context(), id, fields); err != nil {
		httpx.Error(w, err)
		return
	}
	s, err := h.services.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}
