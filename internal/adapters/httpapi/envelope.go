package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/courier/internal/apperr"
)

// envelope is the uniform response body shape. Success responses carry
// data (and pagination for listings); failures carry error detail.
type envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message,omitempty"`
	Data       any                 `json:"data,omitempty"`
	Errors     []apperr.FieldError `json:"errors,omitempty"`
	Error      string              `json:"error,omitempty"`
	Pagination *pagination         `json:"pagination,omitempty"`
}

type pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, message string, data any, page *pagination) {
	writeJSON(w, status, envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: page,
	})
}

func writeFieldErrors(w http.ResponseWriter, fields []apperr.FieldError) {
	writeJSON(w, http.StatusBadRequest, envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  fields,
	})
}

// writeError maps an application error onto the wire. Storage detail is
// suppressed unless the server runs in a development environment.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		writeFieldErrors(w, apperr.FieldsOf(err))
	case apperr.KindSelfMessage:
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false,
			Message: "Invalid action",
			Error:   "Cannot send message to yourself",
		})
	case apperr.KindAuthMissing:
		writeJSON(w, http.StatusUnauthorized, envelope{
			Success: false,
			Message: "Unauthorized",
			Error:   "Authentication required",
		})
	case apperr.KindForbidden:
		writeJSON(w, http.StatusForbidden, envelope{
			Success: false,
			Message: "Unauthorized",
			Error:   errMessage(err),
		})
	case apperr.KindNotFound:
		writeJSON(w, http.StatusNotFound, envelope{
			Success: false,
			Message: "Message not found",
			Error:   errMessage(err),
		})
	default:
		detail := "Unknown error"
		if s.development {
			detail = err.Error()
		}
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{
			Success: false,
			Message: "Server error",
			Error:   detail,
		})
	}
}

func errMessage(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
