package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/toolforge/pkg/utils/logging"
)

// Close safely closes an io.Closer and logs any errors.
// It handles nil closers gracefully.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// CloseFunc calls fn and logs the returned error. Used for clients whose
// Close signature is not io.Closer compatible.
func CloseFunc(ctx context.Context, name string, fn func() error) {
	if fn == nil {
		return
	}
	if err := fn(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.String("target", name), slog.Any("error", err))
	}
}
