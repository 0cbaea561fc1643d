package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
)

const maxBodyBytes = 1 << 20

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

// WriteError maps err to its status and logs server-side failures once.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := appErrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).Error("request failed")
	}
	WriteJSON(w, status, map[string]string{"error": appErrors.PublicMessage(err)})
}

// DecodeJSON reads a bounded JSON body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return appErrors.NewValidationError("body", "request body is empty")
		}
		return appErrors.NewValidationError("body", "invalid request body: "+err.Error())
	}
	return nil
}
