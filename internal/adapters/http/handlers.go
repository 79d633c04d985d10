package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"sanctuary/internal/adapters/http/middleware"
	"sanctuary/internal/application/orchestrators"
	"sanctuary/internal/application/projections"
	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/failure"
)

// validate checks request DTOs against their `validate` tags.
var validate = validator.New()

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("internal_error", "error", err.Error())
	}
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorBody{Kind: failure.KindInternal, Message: "internal server error"})
}

// writeError maps an error kind onto its HTTP status.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, orchestrators.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Kind: "unauthenticated", Message: err.Error()})
		return
	}
	kind := failure.Kind(err)
	var status int
	switch kind {
	case failure.KindNotFound:
		status = http.StatusNotFound
	case failure.KindConflict, failure.KindDuplicate:
		status = http.StatusConflict
	case failure.KindValidation:
		status = http.StatusBadRequest
	case failure.KindCodeSpaceExhausted:
		status = http.StatusServiceUnavailable
	case failure.KindForbidden:
		status = http.StatusForbidden
	default:
		internalError(w, err)
		return
	}
	writeJSON(w, status, errorBody{Kind: kind, Message: err.Error()})
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeAndValidate reads a JSON body into v and runs its validate tags.
// On failure it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := strictDecode(r, v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Kind: failure.KindValidation, Message: "invalid JSON body"})
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Kind: failure.KindValidation, Message: validationMessage(err)})
		return false
	}
	return true
}

// validationMessage flattens validator errors into "field: rule" pairs.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}

// caller returns the authenticated caller. Routes behind RequireAuth always have one.
func caller(r *http.Request) account.Caller {
	c, _ := middleware.CallerFromContext(r.Context())
	return c
}

func calendar() projections.Calendar {
	return projections.Calendar{Now: cfg.Clock, Location: cfg.Location}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
