package web

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Message string `json:"message"`
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("encoding response")
	}
}

// respondError writes a short JSON failure message and logs the cause.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		logrus.WithError(err).Error(message)
	}
	respondJSON(w, status, errorResponse{Message: message})
}
