package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"blogAPI/internal/apperror"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: message}, statusCode)
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindAuthentication:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteAppError renders err with the status of its kind. Internal errors
// are logged and replaced by a generic message.
func WriteAppError(w http.ResponseWriter, r *http.Request, log *logrus.Logger, err error) {
	status := StatusFor(apperror.KindOf(err))
	if status >= http.StatusInternalServerError && log != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
	}

	WriteError(w, apperror.MessageOf(err), status)
}

func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	WriteAppError(w, r, h.Log, err)
}
