// Package handlers exposes the back-office JSON API.
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/diewo77/giardino/internal/apperr"
	"github.com/diewo77/giardino/internal/repository"
	"github.com/diewo77/giardino/validation"
)

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uuid.UUID, error) {
	return parseID(r.PathValue("id"))
}

// queryID parses the required ?id= parameter of delete requests.
func queryID(r *http.Request) (uuid.UUID, error) {
	return parseID(r.URL.Query().Get("id"))
}

func parseID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, apperr.Validation("id is required", map[string]string{"id": "required"})
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperr.Validation("invalid id", map[string]string{"id": "invalid"})
	}
	return id, nil
}

// boolParam reads a boolean query flag; absent or unparsable means false.
func boolParam(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

func listParams(r *http.Request) repository.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return repository.ListParams{Page: page, Limit: limit, Query: q.Get("q")}
}

// parseDate reads a YYYY-MM-DD field.
func parseDate(field, value string, v validation.Violations) datatypes.Date {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		v[field] = "invalid_date"
		return datatypes.Date{}
	}
	return datatypes.Date(t)
}

// isJSONArray reports whether raw holds a JSON array.
func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
