package usecase

import (
	"context"
	"errors"

	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/pkg/apperror"
	"cv-tracker-backend/pkg/logger"
)

// notFoundOr converts domain.ErrNotFound into a 404 with msg and wraps
// anything else as a 500.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound(msg)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Internal(err)
}

// publish sends an event after the write committed. A broker failure is
// logged and does not fail the request.
func publish(ctx context.Context, events domain.EventPublisher, routingKey string, payload any) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, routingKey, payload); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish event", "event", routingKey, "error", err)
	}
}

func invalidateListas(ctx context.Context, cache domain.ListaCache) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		logger.FromContext(ctx).Warn("Failed to invalidate listas cache", "error", err)
	}
}
