package usecase

import (
	"context"
	"sort"
	"time"
)

// HealthCheckFunc checks one dependency
type HealthCheckFunc func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	checks map[string]HealthCheckFunc
}

// NewHealthUsecase reports "ok" overall unless a check fails, in which case
// the status becomes "degraded". Optional dependencies (Redis) belong here too:
// the service keeps serving without them.
func NewHealthUsecase(checks map[string]HealthCheckFunc) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result := map[string]string{"status": "ok"}

	names := make([]string, 0, len(u.checks))
	for name := range u.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := u.checks[name](ctx); err != nil {
			result[name] = "unavailable"
			result["status"] = "degraded"
			continue
		}
		result[name] = "ok"
	}
	return result
}
