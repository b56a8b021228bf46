package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
	"github.com/pokertrack/pokertrack-server/internal/logger"
	"github.com/pokertrack/pokertrack-server/internal/usecase"
	"github.com/pokertrack/pokertrack-server/pkg/db"
)

// Headers carrying the caller identity
const (
	HeaderUserID   = "X-User-ID"
	HeaderUsername = "X-Username"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func callerFrom(r *http.Request) usecase.Caller {
	return usecase.Caller{
		UserID:   r.Header.Get(HeaderUserID),
		Username: r.Header.Get(HeaderUsername),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("Failed to encode response: %v", err)
	}
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entities.ErrInvalidInput), errors.Is(err, entities.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrAlreadyExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
		detail = http.StatusText(status)
	}
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// queryInt reads an optional non-negative integer query parameter
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", entities.ErrInvalidInput, name)
	}
	return n, nil
}
