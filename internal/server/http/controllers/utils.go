package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	streamsvc "github.com/rzbill/flostream/internal/services/streams"
	"github.com/rzbill/flostream/internal/streamlog"
	"github.com/rzbill/flostream/pkg/id"
)

// Helper functions for common HTTP responses

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps service errors to status codes. Caller mistakes are
// 400 and a missing key is 404; the message is the error text.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, streamsvc.ErrNoSuchKey):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, id.ErrInvalidID),
		errors.Is(err, id.ErrNotMonotonic),
		errors.Is(err, streamlog.ErrOptionSyntax),
		errors.Is(err, streamlog.ErrOptionValue),
		errors.Is(err, streamlog.ErrFieldCount),
		errors.Is(err, streamsvc.ErrInvalidFilter),
		errors.Is(err, streamsvc.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// requireMethod writes 405 and returns false when r does not use method.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// requireKey returns the "key" query parameter or writes 400.
func requireKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return "", false
	}
	return key, true
}

// parseCount parses an optional count. def is returned for an empty string.
func parseCount(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, streamlog.ErrOptionValue
	}
	return n, nil
}

// parseBool parses a boolean string and returns the boolean value.
//
// Returns true for "true" or "1", false otherwise.
func parseBool(s string) bool {
	return s == "true" || s == "1"
}

// orDefault returns s, or def when s is empty.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
