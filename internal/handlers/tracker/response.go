package tracker

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/kevin07696/subs-tracker/pkg/encoding"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies; every request here is a handful of fields
const maxBodyBytes = 64 << 10

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	if err := encoding.WriteJSON(w, status, body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
		http.Error(w, `{"success":false,"error":"internal error"}`, http.StatusInternalServerError)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: message})
}

// respondDomainError maps service errors to HTTP statuses. Anything that is
// not a recognised domain error is a 500 and its message is not exposed.
func (h *Handler) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	var domainErr *domain.DomainError
	if status == http.StatusInternalServerError || !errors.As(err, &domainErr) {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		h.respondJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "internal error",
			Code:  string(domain.ErrorCodeDatabaseError),
		})
		return
	}

	h.respondJSON(w, status, ErrorResponse{
		Error:   domainErr.Message,
		Code:    string(domainErr.Code),
		Details: domainErr.Details,
	})
}

func statusFor(err error) int {
	switch {
	case domain.IsValidationError(err):
		return http.StatusBadRequest
	case domain.IsNotFoundError(err):
		return http.StatusNotFound
	case domain.IsEngineError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields.
// An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
