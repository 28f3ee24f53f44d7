package entities

import "github.com/shopspring/decimal"

// ProductionPlanEntry is the suggested production of one product
type ProductionPlanEntry struct {
	ProductID   ProductID
	ProductCode string
	ProductName string
	Quantity    Quantity
	UnitValue   decimal.Decimal
	TotalValue  decimal.Decimal
}

// NewProductionPlanEntry builds an entry for quantity units of product,
// deriving unit and total value from the product price
func NewProductionPlanEntry(product Product, quantity Quantity) ProductionPlanEntry {
	return ProductionPlanEntry{
		ProductID:   product.ID,
		ProductCode: product.Code,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitValue:   product.Price,
		TotalValue:  product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// OptimizationResult is the outcome of one optimization run.
// Totals are derived from Entries by the plan aggregator and never set on their own.
type OptimizationResult struct {
	Entries       []ProductionPlanEntry
	GrandTotal    decimal.Decimal
	TotalProducts int
	TotalUnits    Quantity

	// Leftover is the remaining stock of every raw material after the plan
	Leftover []MaterialBalance
	// Unconstrained lists products with an empty composition
	Unconstrained []ProductID
	// UpperBound is the LP relaxation value, when it was computed
	UpperBound *decimal.Decimal
}

// IsEmpty reports whether the plan suggests producing nothing
func (r *OptimizationResult) IsEmpty() bool {
	return len(r.Entries) == 0
}

// Gap returns the relative distance between the plan value and the upper
// bound, or zero when no bound is known
func (r *OptimizationResult) Gap() decimal.Decimal {
	if r.UpperBound == nil || !r.UpperBound.IsPositive() {
		return decimal.Zero
	}
	gap := r.UpperBound.Sub(r.GrandTotal).Div(*r.UpperBound)
	if gap.IsNegative() {
		return decimal.Zero
	}
	return gap
}
