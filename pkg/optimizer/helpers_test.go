package optimizer

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func material(id entities.RawMaterialID, code, stock string) entities.RawMaterial {
	return entities.RawMaterial{ID: id, Code: code, Name: code, StockQuantity: dec(stock)}
}

func product(id entities.ProductID, code, price string, lines ...entities.CompositionLine) entities.Product {
	return entities.Product{ID: id, Code: code, Name: code, Price: dec(price), Composition: lines}
}

func line(id entities.RawMaterialID, required string) entities.CompositionLine {
	return entities.CompositionLine{RawMaterialID: id, RequiredQuantity: dec(required)}
}

// bakerySnapshot is the demo catalog: five raw materials and three products
func bakerySnapshot() entities.CatalogSnapshot {
	return entities.CatalogSnapshot{
		RawMaterials: []entities.RawMaterial{
			material(1, "MP001", "1000"), // flour
			material(2, "MP002", "500"),  // sugar
			material(3, "MP003", "300"),  // milk
			material(4, "MP004", "200"),  // eggs
			material(5, "MP005", "150"),  // butter
		},
		Products: []entities.Product{
			product(1, "PRD001", "12.50", line(1, "200"), line(3, "50"), line(5, "10")),
			product(2, "PRD002", "35.00", line(1, "300"), line(2, "200"), line(3, "100"), line(4, "50"), line(5, "80")),
			product(3, "PRD003", "8.00", line(1, "150"), line(2, "100"), line(5, "60"), line(4, "30")),
		},
	}
}

func quantities(result *entities.OptimizationResult) QuantityVector {
	q := make(QuantityVector, len(result.Entries))
	for _, entry := range result.Entries {
		q[entry.ProductID] = entry.Quantity
	}
	return q
}
