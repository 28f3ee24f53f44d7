package repositories

import (
	"context"

	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// CatalogSource fetches the candidates of an optimization run. Every call
// returns an independent snapshot.
type CatalogSource interface {
	Snapshot(ctx context.Context) (entities.CatalogSnapshot, error)
}

// PlanRepository receives plans produced by optimization runs
type PlanRepository interface {
	SavePlan(ctx context.Context, runID string, result *entities.OptimizationResult) error
}
