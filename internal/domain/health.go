package domain

import "context"

// HealthUsecase reports the status of every backing service.
type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}
