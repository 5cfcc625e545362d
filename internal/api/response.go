// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/feedrank/internal/logging"
)

// APIResponse wraps every ops response body.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    APIMeta   `json:"meta"`
}

// APIError is a machine-readable failure.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta carries tracing metadata.
type APIMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, r, status, &APIResponse{Success: status < http.StatusBadRequest, Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	write(w, r, status, &APIResponse{Error: &APIError{Code: code, Message: message}})
}

func write(w http.ResponseWriter, r *http.Request, status int, resp *APIResponse) {
	resp.Meta = APIMeta{
		RequestID: logging.RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode response")
	}
}
