package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"formsapi/internal/model"
	"formsapi/internal/transport/rest/middleware"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

var statusByKind = map[model.ErrorKind]int{
	model.KindValidation:   http.StatusBadRequest,
	model.KindNotFound:     http.StatusNotFound,
	model.KindUnauthorized: http.StatusUnauthorized,
	model.KindForbidden:    http.StatusForbidden,
	model.KindConflict:     http.StatusConflict,
}

// writeServiceError renders a service error. Consistency and unclassified
// errors are logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := model.AsError(err)
	if ok {
		if status, known := statusByKind[e.Kind]; known {
			writeError(w, status, e.Message, e.Code)
			return
		}
	}

	attrs := []any{
		"requestId", middleware.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	}
	if ok {
		attrs = append(attrs, "code", e.Code)
	}
	slog.ErrorContext(r.Context(), "request failed", attrs...)
	writeError(w, http.StatusInternalServerError, "internal error", "internal_error")
}

// decodeBody decodes a JSON request body into v
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_body")
		return false
	}
	return true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_body")
		return nil, false
	}
	return data, true
}
