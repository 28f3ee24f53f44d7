package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// PlanRepository keeps submitted plans in memory, keyed by run id
type PlanRepository struct {
	mu    sync.RWMutex
	plans map[string]entities.OptimizationResult
	order []string
}

// NewPlanRepository creates a new in-memory plan repository
func NewPlanRepository() *PlanRepository {
	return &PlanRepository{
		plans: make(map[string]entities.OptimizationResult),
	}
}

// Verify interface compliance
var _ repositories.PlanRepository = (*PlanRepository)(nil)

// SavePlan stores a copy of result under runID
func (r *PlanRepository) SavePlan(ctx context.Context, runID string, result *entities.OptimizationResult) error {
	if result == nil {
		return fmt.Errorf("plan for run %s cannot be nil", runID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plans[runID]; exists {
		return fmt.Errorf("plan already saved for run %s", runID)
	}

	stored := *result
	stored.Entries = append([]entities.ProductionPlanEntry(nil), result.Entries...)
	stored.Leftover = append([]entities.MaterialBalance(nil), result.Leftover...)
	stored.Unconstrained = append([]entities.ProductID(nil), result.Unconstrained...)
	r.plans[runID] = stored
	r.order = append(r.order, runID)
	return nil
}

// GetPlan returns the plan saved for runID
func (r *PlanRepository) GetPlan(runID string) (*entities.OptimizationResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plan, exists := r.plans[runID]
	if !exists {
		return nil, fmt.Errorf("plan not found: %s", runID)
	}
	return &plan, nil
}

// RunIDs returns the ids of saved plans in save order
func (r *PlanRepository) RunIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}
