package sql

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// BakeryCatalog is the demo catalog: a small bakery with five raw materials
// and three products
func BakeryCatalog() entities.CatalogSnapshot {
	d := decimal.RequireFromString
	line := func(id entities.RawMaterialID, required string) entities.CompositionLine {
		return entities.CompositionLine{RawMaterialID: id, RequiredQuantity: d(required)}
	}

	return entities.CatalogSnapshot{
		RawMaterials: []entities.RawMaterial{
			{ID: 1, Code: "MP001", Name: "Wheat Flour", StockQuantity: d("1000")},
			{ID: 2, Code: "MP002", Name: "Sugar", StockQuantity: d("500")},
			{ID: 3, Code: "MP003", Name: "Milk", StockQuantity: d("300")},
			{ID: 4, Code: "MP004", Name: "Eggs", StockQuantity: d("200")},
			{ID: 5, Code: "MP005", Name: "Butter", StockQuantity: d("150")},
		},
		Products: []entities.Product{
			{ID: 1, Code: "PRD001", Name: "French Bread", Price: d("12.50"),
				Composition: []entities.CompositionLine{line(1, "200"), line(3, "50"), line(5, "10")}},
			{ID: 2, Code: "PRD002", Name: "Chocolate Cake", Price: d("35.00"),
				Composition: []entities.CompositionLine{line(1, "300"), line(2, "200"), line(3, "100"), line(4, "50"), line(5, "80")}},
			{ID: 3, Code: "PRD003", Name: "Butter Cookies", Price: d("8.00"),
				Composition: []entities.CompositionLine{line(1, "150"), line(2, "100"), line(5, "60"), line(4, "30")}},
		},
	}
}

// Seed loads the bakery catalog when the raw_material table is empty.
// It reports whether anything was written.
func (s *Store) Seed(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&RawMaterialModel{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count raw materials: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if err := s.ImportSnapshot(ctx, BakeryCatalog()); err != nil {
		return false, fmt.Errorf("failed to seed catalog: %w", err)
	}
	return true, nil
}
