package optimizer

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// Aggregate turns plan entries into an OptimizationResult. Entries with no
// units are dropped; totals are sums over the kept entries. The input slice
// is not modified.
func Aggregate(entries []entities.ProductionPlanEntry) *entities.OptimizationResult {
	result := &entities.OptimizationResult{
		Entries:    make([]entities.ProductionPlanEntry, 0, len(entries)),
		GrandTotal: decimal.Zero,
	}

	for _, entry := range entries {
		if entry.Quantity <= 0 {
			continue
		}
		result.Entries = append(result.Entries, entry)
		result.GrandTotal = result.GrandTotal.Add(entry.TotalValue)
		result.TotalUnits += entry.Quantity
		result.TotalProducts++
	}

	return result
}
