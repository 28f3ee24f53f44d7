package optimizer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/services"
	"go.uber.org/zap"
)

// EngineConfig holds configuration for the optimization engine
type EngineConfig struct {
	// ComputeBound solves the LP relaxation after allocation to report the
	// optimality gap of the greedy plan
	ComputeBound bool
	// Logger receives diagnostics; nil means no logging
	Logger *zap.Logger
}

// Request carries the per-run adjustments of an optimization
type Request struct {
	// Reservation is stock already promised elsewhere, removed before allocation
	Reservation map[entities.RawMaterialID]decimal.Decimal
	// DemandCaps bounds the units planned for the products it names
	DemandCaps map[entities.ProductID]entities.Quantity
}

// Engine validates a catalog snapshot and produces a production plan
type Engine struct {
	validator *services.CatalogValidator
	config    EngineConfig
	logger    *zap.Logger
}

// NewEngine creates an engine with the default configuration
func NewEngine() *Engine {
	return NewEngineWithConfig(EngineConfig{})
}

// NewEngineWithConfig creates an engine with custom configuration
func NewEngineWithConfig(config EngineConfig) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		validator: services.NewCatalogValidator(),
		config:    config,
		logger:    logger,
	}
}

// Optimize computes the production plan for snapshot. A *services.ValidationError
// is returned, and no plan, when the snapshot or request is inconsistent.
// An empty product or raw material list yields an empty plan.
func (e *Engine) Optimize(ctx context.Context, snapshot entities.CatalogSnapshot, req Request) (*entities.OptimizationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(snapshot.Products) == 0 || len(snapshot.RawMaterials) == 0 {
		catalog := NewCatalog(snapshot)
		result := Aggregate(nil)
		result.Leftover = catalog.Balances(catalog.Stock())
		result.Unconstrained = make([]entities.ProductID, 0)
		return result, nil
	}

	validation := e.validator.ValidateCatalog(snapshot)
	validation.Merge(e.validator.ValidateReservation(snapshot.RawMaterials, req.Reservation))
	validation.Merge(e.validator.ValidateDemandCaps(snapshot.Products, req.DemandCaps))
	if err := validation.Err(); err != nil {
		return nil, err
	}

	catalog := NewCatalog(snapshot)
	stock := catalog.Stock()
	for materialID, reserved := range req.Reservation {
		stock[materialID] = stock[materialID].Sub(reserved)
	}

	allocation := NewAllocator(catalog).Allocate(stock, req.DemandCaps)

	result := Aggregate(allocation.Entries)
	result.Leftover = catalog.Balances(allocation.Remaining)
	result.Unconstrained = allocation.Unconstrained

	if len(allocation.Unconstrained) > 0 {
		e.logger.Warn("products without composition are only planned up to their demand cap",
			zap.Int("count", len(allocation.Unconstrained)))
	}

	if e.config.ComputeBound {
		bound, err := UpperBound(catalog, stock, req.DemandCaps)
		if err != nil {
			e.logger.Warn("upper bound unavailable", zap.Error(err))
		} else {
			if bound.LessThan(result.GrandTotal) {
				// float rounding in the relaxation; the plan itself is a valid bound
				bound = result.GrandTotal
			}
			result.UpperBound = &bound
		}
	}

	e.logger.Debug("production plan computed",
		zap.Int("products", result.TotalProducts),
		zap.Int64("units", int64(result.TotalUnits)),
		zap.String("grand_total", result.GrandTotal.String()))

	return result, nil
}

// Explain returns the allocation order the engine would use for snapshot
func (e *Engine) Explain(snapshot entities.CatalogSnapshot) ([]RankedProduct, error) {
	if err := e.validator.ValidateCatalog(snapshot).Err(); err != nil {
		return nil, fmt.Errorf("cannot rank products: %w", err)
	}
	catalog := NewCatalog(snapshot)
	return NewAllocator(catalog).Rank(catalog.Stock()), nil
}
