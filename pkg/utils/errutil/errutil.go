package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
)

// Handle logs err with its goerr values and stack, and reports it to Sentry
// when a hub is configured.
func Handle(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	report(ctx, err)
}

// HandleHTTP logs err and writes a JSON error body carrying publicMsg.
// The internal error text is never written to the client.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int, publicMsg string) {
	if err != nil {
		logger := logging.From(ctx)
		var ge *goerr.Error
		if errors.As(err, &ge) {
			logger.Error("HTTP error",
				"status", statusCode,
				"error", err.Error(),
				"values", ge.Values(),
				"stack", ge.Stacks(),
			)
		} else {
			logger.Error("HTTP error",
				"status", statusCode,
				"error", err.Error(),
			)
		}

		if statusCode >= http.StatusInternalServerError {
			report(ctx, err)
		}
	}

	WriteError(w, statusCode, publicMsg)
}

// WriteError writes {"error": msg} without logging
func WriteError(w http.ResponseWriter, statusCode int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func report(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	var ge *goerr.Error
	if errors.As(err, &ge) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetContext("goerr", sentry.Context(ge.Values()))
			hub.CaptureException(err)
		})
		return
	}
	hub.CaptureException(err)
}
