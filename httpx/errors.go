package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/diewo77/giardino/internal/apperr"
)

const maxBodyBytes = 1 << 20

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error writes err as the fixed error body. Classified errors use their
// message as the error code; persistence failures report the kind and carry
// the underlying message in details.
func Error(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		JSONError(w, http.StatusInternalServerError, string(apperr.KindPersistence), err.Error())
		return
	}
	var details any
	switch {
	case ae.Details != nil:
		details = ae.Details
	case ae.Kind == apperr.KindPersistence && ae.Err != nil:
		details = ae.Message + ": " + ae.Err.Error()
	case ae.Kind == apperr.KindPersistence:
		details = ae.Message
	}
	msg := string(ae.Kind)
	if ae.Kind != apperr.KindPersistence && ae.Message != "" {
		msg = ae.Message
	}
	JSONError(w, StatusOf(err), msg, details)
}

// DecodeJSON reads one JSON value from the request body into v. Malformed
// or oversized bodies become validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required", nil)
		}
		return apperr.Validation(fmt.Sprintf("invalid JSON body: %v", err), nil)
	}
	return nil
}
