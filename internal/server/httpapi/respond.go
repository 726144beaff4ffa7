package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskit/internal/common"
)

// authFailureMessage is deliberately the same for every authentication
// failure so callers cannot distinguish forged, revoked, and orphaned
// tokens.
const authFailureMessage = "Please authenticate."

type errorResponse struct {
	Error string `json:"error"`
}

type fieldsResponse struct {
	Errors map[string]string `json:"errors"`
}

type successResponse struct {
	Success string `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the service error taxonomy onto HTTP responses. Every
// path writes something: validation detail for 400, a uniform message for
// 403, an empty body for 404, and an opaque message for everything else.
func writeError(w http.ResponseWriter, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, fieldsResponse{Errors: ve.Fields})
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: authFailureMessage})
	case errors.Is(err, common.ErrorNotFound):
		w.WriteHeader(http.StatusNotFound)
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// decodeAllowListed parses body into dst, first rejecting any update whose
// key set is empty or not a subset of allowed. The check runs before any
// mutation is attempted: either the whole update is sanctioned or none of
// it applies.
func decodeAllowListed(body []byte, allowed map[string]struct{}, dst any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return common.FieldError("updates", "invalid updates being applied")
	}
	if len(raw) == 0 {
		return common.FieldError("updates", "invalid updates being applied")
	}
	for key := range raw {
		if _, ok := allowed[key]; !ok {
			return common.FieldError("updates", "invalid updates being applied")
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return common.FieldError("updates", "invalid updates being applied")
	}
	return nil
}
