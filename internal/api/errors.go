package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BenWassa/vox/pkg/models"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Error codes of the JSON error envelope
const (
	codeNotFound       = "not_found"
	codeInvalidStatus  = "invalid_status"
	codeInvalidFormat  = "invalid_format"
	codeInvalidRequest = "invalid_request"
	codeStorage        = "storage_failure"
	codeInternal       = "internal"
)

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError maps engine errors to status codes. Invalid format is checked before
// not found: an import naming unknown items carries both.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, codeInternal
	switch {
	case errors.Is(err, models.ErrInvalidFormat):
		status, code = http.StatusBadRequest, codeInvalidFormat
	case errors.Is(err, models.ErrInvalidStatus):
		status, code = http.StatusBadRequest, codeInvalidStatus
	case errors.Is(err, models.ErrNotFound):
		status, code = http.StatusNotFound, codeNotFound
	case errors.Is(err, models.ErrStorage):
		status, code = http.StatusServiceUnavailable, codeStorage
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	s.writeErrorCode(w, r, status, code, err.Error())
}

func (s *Server) writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorBody{
		Error:     code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
