package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

var ErrBadRequest = goerr.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

// statusOf maps known sentinels to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, taxonomy.ErrCategoryNotFound), errors.Is(err, taxonomy.ErrSubCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleHTTP logs err with its goerr values and writes a JSON error body.
// Server errors hide the message from the client.
func handleHTTP(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status := statusOf(err)
	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		attrs := []any{"status", status, "error", err.Error(), "values", ge.Values()}
		if status >= http.StatusInternalServerError {
			attrs = append(attrs, "stack", ge.Stacks())
			logger.Error("HTTP error", attrs...)
		} else {
			logger.Warn("HTTP error", attrs...)
		}
	} else {
		logger.Error("HTTP error", "status", status, "error", err.Error())
	}

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(ctx, w, status, errorResponse{Error: msg})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.From(ctx).Warn("failed to write response", "error", err)
	}
}
