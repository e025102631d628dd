package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/giardino/httpx"
	"github.com/diewo77/giardino/internal/models"
	"github.com/diewo77/giardino/internal/repository"
	"github.com/diewo77/giardino/validation"
)

type ClientHandler struct {
	clients *repository.Repository[models.Client]
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{clients: repository.Clients(db)}
}

type clientInput struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Company    string `json:"company"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
	VATNumber  string `json:"vat_number"`
	FiscalCode string `json:"fiscal_code"`
	Notes      string `json:"notes"`
}

func (in *clientInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.VATNumber = strings.ToUpper(strings.TrimSpace(in.VATNumber))
	in.FiscalCode = strings.ToUpper(strings.TrimSpace(in.FiscalCode))
}

func (in clientInput) validate() error {
	v := make(validation.Violations)
	validation.Required("first_name", in.FirstName, v)
	validation.Required("last_name", in.LastName, v)
	validation.MaxLen("first_name", in.FirstName, 100, v)
	validation.MaxLen("last_name", in.LastName, 100, v)
	validation.Email("email", in.Email, v)
	validation.MaxLen("vat_number", in.VATNumber, 30, v)
	validation.MaxLen("fiscal_code", in.FiscalCode, 30, v)
	return v.Err()
}

func (in clientInput) fields() map[string]any {
	return map[string]any{
		"first_name":  in.FirstName,
		"last_name":   in.LastName,
		"company":     in.Company,
		"email":       in.Email,
		"phone":       in.Phone,
		"street":      in.Street,
		"postal_code": in.PostalCode,
		"city":        in.City,
		"country":     in.Country,
		"vat_number":  in.VATNumber,
		"fiscal_code": in.FiscalCode,
		"notes":       in.Notes,
	}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.clients.List(r.Context(), listParams(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.clients.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in clientInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	in.normalize()
	if err := in.validate(); err != nil {
		httpx.Error(w, err)
		return
	}
	c := models.Client{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Company:    in.Company,
		Email:      in.Email,
		Phone:      in.Phone,
		Street:     in.Street,
		PostalCode: in.PostalCode,
		City:       in.City,
		Country:    in.Country,
		VATNumber:  in.VATNumber,
		FiscalCode: in.FiscalCode,
		Notes:      in.Notes,
	}
	if err := h.clients.Create(r.Context(), &c); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var in clientInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	in.normalize()
	if err := in.validate(); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.clients.Update(r.Context(), id, in.fields()); err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.clients.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}
