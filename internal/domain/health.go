package domain

import "context"

type HealthUsecase interface {
	// Check reports per-dependency status and whether every one is up.
	Check(ctx context.Context) (map[string]string, bool)
}
