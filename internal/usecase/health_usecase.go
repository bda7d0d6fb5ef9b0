package usecase

import (
	"context"
	"time"

	"cv-tracker-backend/internal/domain"
)

// HealthCheckFunc reports nil when a dependency is reachable.
type HealthCheckFunc func(ctx context.Context) error

type healthUsecase struct {
	checks map[string]HealthCheckFunc
}

func NewHealthUsecase(checks map[string]HealthCheckFunc) domain.HealthUsecase {
	return &healthUsecase{checks: checks}
}

// Check runs every dependency check with a short timeout. The bool is false
// when any of them failed.
func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	healthy := true
	for name, check := range u.checks {
		if err := check(ctx); err != nil {
			status[name] = "unavailable"
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		status["status"] = "degraded"
	}
	return status, healthy
}
