package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/giardino/internal/apperr"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.NotFound("quote"), http.StatusNotFound, "quote not found"},
		{apperr.Validation("id is required", nil), http.StatusBadRequest, "id is required"},
		{fmt.Errorf("wrapped: %w", apperr.Conflict("cannot delete client", nil)), http.StatusConflict, "cannot delete client"},
		{apperr.Persistence("insert invoice", errors.New("timeout")), http.StatusInternalServerError, "persistence_error"},
		{errors.New("raw"), http.StatusInternalServerError, "persistence_error"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		Error(rec, tt.err)
		if rec.Code != tt.status {
			t.Errorf("%v: status %d, want %d", tt.err, rec.Code, tt.status)
		}
		if got := decode(t, rec)["error"]; got != tt.code {
			t.Errorf("%v: error %v, want %s", tt.err, got, tt.code)
		}
	}
}

func TestErrorPersistenceDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperr.Persistence("insert invoice", errors.New("timeout")))
	if got := decode(t, rec)["details"]; got != "insert invoice: timeout" {
		t.Fatalf("details = %v", got)
	}
}

func TestErrorValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperr.Validation("validation failed", map[string]string{"email": "required"}))
	details, ok := decode(t, rec)["details"].(map[string]any)
	if !ok || details["email"] != "required" {
		t.Fatalf("details = %v", details)
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct{ Name string }
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	if err := DecodeJSON(httptest.NewRecorder(), r, &v); err != nil || v.Name != "x" {
		t.Fatalf("decode = %v %+v", err, v)
	}
	for _, body := range []string{"", "{", `"text"`} {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := DecodeJSON(httptest.NewRecorder(), r, &v)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("body %q: expected validation error, got %v", body, err)
		}
	}
}
