package http

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

const serviceName = "brandhub"

func httpLogger() *slog.Logger {
	return slog.Default().With(
		"service", serviceName,
		"module", "http",
		"layer", "adapter",
	)
}

// logHTTPOperationError records why a handler answered with an error status.
func logHTTPOperationError(ctx context.Context, operation string, statusCode int, message string, err error) {
	fields := []any{
		"operation", operation,
		"outcome", "failure",
		"status_code", statusCode,
		"message", message,
		"request_id", requestIDFromContext(ctx),
	}
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	if actor := actorFromContext(ctx); actor.AccountID != uuid.Nil {
		fields = append(fields, "account_id", actor.AccountID.String())
	}
	httpLogger().Log(ctx, levelForStatus(statusCode), "http operation failed", fields...)
}
