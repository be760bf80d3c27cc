package services

import (
	"context"
	"log/slog"

	"reportqa/internal/infrastructure"
)

// logServiceError logs a failed service action. Trace and run ids are added
// by the infrastructure handler from ctx.
func logServiceError(ctx context.Context, logger *slog.Logger, action, message string, err error, attrs ...slog.Attr) {
	allAttrs := []slog.Attr{
		slog.String("action", action),
	}
	allAttrs = append(allAttrs, attrs...)

	infrastructure.WithError(logger, err).LogAttrs(ctx, slog.LevelError, message, allAttrs...)
}
