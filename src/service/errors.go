package service

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mosaicnetworks/waybill/src/workflow"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusOf(err error) int {
	var le *workflow.LedgerError
	switch {
	case workflow.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrNotApprover),
		errors.Is(err, workflow.ErrRestricted):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrDocumentNotFound),
		errors.Is(err, workflow.ErrContentUnavailable):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrCapabilityMissing),
		errors.Is(err, workflow.ErrContentUnreadable):
		return http.StatusNotImplemented
	case errors.As(err, &le):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) writeError(w http.ResponseWriter, what string, err error) {
	status := statusOf(err)

	entry := s.logger.WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error(what)
	} else {
		entry.Debug(what)
	}

	writeJSON(w, status, errorResponse{
		Success: false,
		Error:   what,
		Message: err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
