package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

func testSnapshot() entities.CatalogSnapshot {
	return entities.CatalogSnapshot{
		RawMaterials: []entities.RawMaterial{
			{ID: 1, Code: "MP001", Name: "Flour", StockQuantity: decimal.NewFromInt(1000)},
		},
		Products: []entities.Product{
			{ID: 1, Code: "PRD001", Name: "Bread", Price: decimal.NewFromInt(12), Composition: []entities.CompositionLine{
				{RawMaterialID: 1, RequiredQuantity: decimal.NewFromInt(200)},
			}},
		},
	}
}

func TestCatalogSource_SnapshotsAreIndependent(t *testing.T) {
	source := NewCatalogSourceFromSnapshot(testSnapshot())
	ctx := context.Background()

	first, err := source.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Failed to snapshot: %v", err)
	}
	first.RawMaterials[0].StockQuantity = decimal.Zero
	first.Products[0].Composition[0].RequiredQuantity = decimal.Zero

	second, err := source.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Failed to snapshot: %v", err)
	}
	if !second.RawMaterials[0].StockQuantity.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected stock 1000, got %s", second.RawMaterials[0].StockQuantity)
	}
	if !second.Products[0].Composition[0].RequiredQuantity.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected required 200, got %s", second.Products[0].Composition[0].RequiredQuantity)
	}
}

func TestCatalogSource_ConcurrentSnapshots(t *testing.T) {
	materials := NewRawMaterialRepository(1)
	materials.SaveRawMaterial(testSnapshot().RawMaterials[0])
	source := NewCatalogSource(materials, NewProductRepository(0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := source.Snapshot(context.Background()); err != nil {
				t.Errorf("Snapshot failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_ = materials.AdjustStock(1, decimal.NewFromInt(1))
		}()
	}
	wg.Wait()
}

func TestCatalogSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewCatalogSourceFromSnapshot(testSnapshot()).Snapshot(ctx); err == nil {
		t.Error("Expected error for canceled context")
	}
}

func TestPlanRepository_SavePlan(t *testing.T) {
	repo := NewPlanRepository()
	ctx := context.Background()
	result := &entities.OptimizationResult{
		Entries: []entities.ProductionPlanEntry{{ProductID: 1, Quantity: 3}},
	}

	if err := repo.SavePlan(ctx, "run-1", result); err != nil {
		t.Fatalf("Failed to save plan: %v", err)
	}
	result.Entries[0].Quantity = 99

	stored, err := repo.GetPlan("run-1")
	if err != nil {
		t.Fatalf("Failed to get plan: %v", err)
	}
	if stored.Entries[0].Quantity != 3 {
		t.Errorf("Expected stored quantity 3, got %d", stored.Entries[0].Quantity)
	}

	if err := repo.SavePlan(ctx, "run-1", result); err == nil {
		t.Error("Expected error when saving the same run twice")
	}
	if err := repo.SavePlan(ctx, "run-2", nil); err == nil {
		t.Error("Expected error for nil plan")
	}
	if ids := repo.RunIDs(); len(ids) != 1 || ids[0] != "run-1" {
		t.Errorf("Expected [run-1], got %v", ids)
	}
}
