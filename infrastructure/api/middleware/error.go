package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/qabank/qabank/internal/domain"
)

// ErrorBody is one entry in the JSON error envelope.
type ErrorBody struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	ID     string `json:"id,omitempty"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Errors []ErrorBody `json:"errors"`
}

// WriteError maps a domain error to an HTTP status and writes the JSON error
// envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	title := "Internal Server Error"

	switch {
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		title = "Forbidden"
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		title = "Not Found"
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		title = "Validation Error"
	case errors.Is(err, domain.ErrDuplicateMembership):
		status = http.StatusConflict
		title = "Duplicate Membership"
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		status = http.StatusBadGateway
		title = "Embedding Service Unavailable"
	case errors.Is(err, domain.ErrIndexUnavailable):
		status = http.StatusServiceUnavailable
		title = "Vector Index Unavailable"
	}

	correlationID := GetCorrelationID(r.Context())

	if logger != nil {
		logger.Error("request error",
			"correlation_id", correlationID,
			"status", status,
			"error", err.Error(),
			"path", r.URL.Path,
		)
	}

	resp := ErrorResponse{
		Errors: []ErrorBody{
			{
				Status: http.StatusText(status),
				Title:  title,
				Detail: err.Error(),
				ID:     correlationID,
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
