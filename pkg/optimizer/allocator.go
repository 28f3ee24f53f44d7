package optimizer

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// RankedProduct is a product with the value density used to order allocation
type RankedProduct struct {
	Product entities.Product
	Density decimal.Decimal
	// Unconstrained products have an empty composition and rank first
	Unconstrained bool
}

// Allocation is the raw output of the greedy pass, before aggregation
type Allocation struct {
	Entries       []entities.ProductionPlanEntry
	Remaining     StockVector
	Unconstrained []entities.ProductID
}

// Allocator assigns whole production units to products in density order
type Allocator struct {
	catalog   *Catalog
	evaluator *Evaluator
}

// NewAllocator creates an allocator over catalog
func NewAllocator(catalog *Catalog) *Allocator {
	return &Allocator{
		catalog:   catalog,
		evaluator: NewEvaluator(catalog),
	}
}

// Rank orders products by descending value density measured against stock,
// breaking ties by ascending product id
func (a *Allocator) Rank(stock StockVector) []RankedProduct {
	ranked := make([]RankedProduct, 0, len(a.catalog.products))
	for _, product := range a.catalog.products {
		ranked = append(ranked, RankedProduct{
			Product:       product.Clone(),
			Density:       density(product, stock),
			Unconstrained: !product.HasComposition(),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Unconstrained != ranked[j].Unconstrained {
			return ranked[i].Unconstrained
		}
		if cmp := ranked[i].Density.Cmp(ranked[j].Density); cmp != 0 {
			return cmp > 0
		}
		return ranked[i].Product.ID < ranked[j].Product.ID
	})

	return ranked
}

// density is price divided by the largest required/stock ratio of the
// composition, computed as the smallest price*stock/required. A required
// material without stock makes the product worthless to rank.
func density(product entities.Product, stock StockVector) decimal.Decimal {
	var best *decimal.Decimal
	for _, line := range product.Composition {
		if !line.RequiredQuantity.IsPositive() {
			continue
		}
		available := stock[line.RawMaterialID]
		if !available.IsPositive() {
			return decimal.Zero
		}
		candidate := product.Price.Mul(available).Div(line.RequiredQuantity)
		if best == nil || candidate.LessThan(*best) {
			best = &candidate
		}
	}
	if best == nil {
		return decimal.Zero
	}
	return *best
}

// Allocate runs the greedy pass against stock. stock is not modified.
// caps bounds the units of the products it names; a product with an empty
// composition receives its cap, or nothing when it has none. The units of
// the whole plan never exceed math.MaxInt64.
func (a *Allocator) Allocate(stock StockVector, caps map[entities.ProductID]entities.Quantity) Allocation {
	remaining := stock.Clone()
	allocation := Allocation{
		Entries:       make([]entities.ProductionPlanEntry, 0, len(a.catalog.products)),
		Unconstrained: make([]entities.ProductID, 0),
	}

	var planned entities.Quantity
	for _, candidate := range a.Rank(remaining) {
		product := candidate.Product
		limit, capped := caps[product.ID]

		qty, unbounded := a.evaluator.RemainingCapacity(product.ID, remaining)
		if unbounded {
			allocation.Unconstrained = append(allocation.Unconstrained, product.ID)
			qty = 0
			if capped {
				qty = limit
			}
		} else if capped && limit < qty {
			qty = limit
		}

		if headroom := entities.Quantity(math.MaxInt64) - planned; qty > headroom {
			qty = headroom
		}
		if qty <= 0 {
			continue
		}
		planned += qty

		units := decimal.NewFromInt(int64(qty))
		for _, line := range product.Composition {
			remaining[line.RawMaterialID] = remaining[line.RawMaterialID].Sub(line.RequiredQuantity.Mul(units))
		}

		allocation.Entries = append(allocation.Entries, entities.NewProductionPlanEntry(product, qty))
	}

	allocation.Remaining = remaining
	return allocation
}
