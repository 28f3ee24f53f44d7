package optimizer

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

var maxUnits = decimal.NewFromInt(math.MaxInt64)

// Evaluator answers stock sufficiency questions against a catalog
type Evaluator struct {
	catalog *Catalog
}

// NewEvaluator creates an evaluator for catalog
func NewEvaluator(catalog *Catalog) *Evaluator {
	return &Evaluator{catalog: catalog}
}

// Consumption returns the total consumption per raw material of producing quantities
func (e *Evaluator) Consumption(quantities QuantityVector) StockVector {
	total := make(StockVector)
	for productID, qty := range quantities {
		if qty == 0 {
			continue
		}
		units := decimal.NewFromInt(int64(qty))
		for materialID, perUnit := range e.catalog.consumption[productID] {
			total[materialID] = total[materialID].Add(perUnit.Mul(units))
		}
	}
	return total
}

// Feasible reports whether quantities can be produced from stock.
// Negative quantities are never feasible.
func (e *Evaluator) Feasible(quantities QuantityVector, stock StockVector) bool {
	for _, qty := range quantities {
		if qty < 0 {
			return false
		}
	}
	for materialID, used := range e.Consumption(quantities) {
		if used.GreaterThan(stock[materialID]) {
			return false
		}
	}
	return true
}

// RemainingCapacity returns the maximum number of additional units of a
// product that remaining stock allows. unbounded is true when the product
// has an empty composition; units is then zero and the caller decides.
func (e *Evaluator) RemainingCapacity(productID entities.ProductID, remaining StockVector) (units entities.Quantity, unbounded bool) {
	i, ok := e.catalog.productIndex[productID]
	if !ok {
		return 0, false
	}
	product := e.catalog.products[i]
	if !product.HasComposition() {
		return 0, true
	}

	capacity := maxUnits
	constrained := false
	for _, line := range product.Composition {
		if !line.RequiredQuantity.IsPositive() {
			continue
		}
		constrained = true
		available := remaining[line.RawMaterialID]
		if !available.IsPositive() {
			return 0, false
		}
		whole, _ := available.QuoRem(line.RequiredQuantity, 0)
		if whole.LessThan(capacity) {
			capacity = whole
		}
	}

	if !constrained {
		return 0, true
	}
	return entities.Quantity(capacity.IntPart()), false
}
