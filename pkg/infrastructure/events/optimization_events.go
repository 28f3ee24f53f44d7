package events

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

const (
	OptimizationStartedEvent   = "optimization.started"
	ProductionPlannedEvent     = "production.planned"
	OptimizationCompletedEvent = "optimization.completed"
	OptimizationRejectedEvent  = "optimization.rejected"
)

// OptimizationStarted is recorded once the catalog snapshot has been read
type OptimizationStarted struct {
	Source       string `json:"source"`
	RawMaterials int    `json:"raw_materials"`
	Products     int    `json:"products"`
}

// ProductionPlanned is recorded for every plan entry, in allocation order
type ProductionPlanned struct {
	Entry entities.ProductionPlanEntry `json:"entry"`
}

// OptimizationCompleted closes a successful run
type OptimizationCompleted struct {
	GrandTotal    decimal.Decimal   `json:"grand_total"`
	TotalProducts int               `json:"total_products"`
	TotalUnits    entities.Quantity `json:"total_units"`
	UpperBound    *decimal.Decimal  `json:"upper_bound,omitempty"`
}

// OptimizationRejected closes a run that produced no plan
type OptimizationRejected struct {
	Reason string   `json:"reason"`
	Errors []string `json:"errors,omitempty"`
}
