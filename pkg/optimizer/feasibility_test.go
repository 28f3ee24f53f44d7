package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

func TestEvaluator_RemainingCapacity(t *testing.T) {
	catalog := NewCatalog(entities.CatalogSnapshot{
		RawMaterials: []entities.RawMaterial{material(1, "MP001", "10"), material(2, "MP002", "7.5")},
		Products: []entities.Product{
			product(1, "TWO_LINES", "1", line(1, "3"), line(2, "2.5")),
			product(2, "EMPTY", "1"),
		},
	})
	evaluator := NewEvaluator(catalog)

	testCases := []struct {
		name          string
		productID     entities.ProductID
		remaining     StockVector
		wantUnits     entities.Quantity
		wantUnbounded bool
	}{
		{"scarcest line wins", 1, catalog.Stock(), 3, false},
		{"second line binds", 1, StockVector{1: dec("10"), 2: dec("5")}, 2, false},
		{"zero stock", 1, StockVector{1: dec("0"), 2: dec("100")}, 0, false},
		{"missing stock entry", 1, StockVector{1: dec("100")}, 0, false},
		{"empty composition", 2, catalog.Stock(), 0, true},
		{"unknown product", 9, catalog.Stock(), 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			units, unbounded := evaluator.RemainingCapacity(tc.productID, tc.remaining)
			assert.Equal(t, tc.wantUnits, units)
			assert.Equal(t, tc.wantUnbounded, unbounded)
		})
	}
}

func TestEvaluator_Feasible(t *testing.T) {
	catalog := NewCatalog(bakerySnapshot())
	evaluator := NewEvaluator(catalog)
	stock := catalog.Stock()

	assert.True(t, evaluator.Feasible(QuantityVector{}, stock))
	assert.True(t, evaluator.Feasible(QuantityVector{1: 3, 2: 1}, stock))
	assert.True(t, evaluator.Feasible(QuantityVector{1: 5}, stock), "5 breads use exactly all flour")
	assert.False(t, evaluator.Feasible(QuantityVector{1: 6}, stock))
	assert.False(t, evaluator.Feasible(QuantityVector{2: 2}, stock), "two cakes need 160 butter")
	assert.False(t, evaluator.Feasible(QuantityVector{1: -1}, stock))
}

func TestEvaluator_Consumption(t *testing.T) {
	catalog := NewCatalog(bakerySnapshot())

	used := NewEvaluator(catalog).Consumption(QuantityVector{1: 2, 3: 1, 2: 0})

	assert.True(t, used[1].Equal(dec("550")))
	assert.True(t, used[2].Equal(dec("100")))
	assert.True(t, used[3].Equal(dec("100")))
	assert.True(t, used[4].Equal(dec("30")))
	assert.True(t, used[5].Equal(dec("80")))
}

func TestCatalog_Lookups(t *testing.T) {
	snapshot := bakerySnapshot()
	catalog := NewCatalog(snapshot)

	p, ok := catalog.Product(2)
	assert.True(t, ok)
	assert.Equal(t, "PRD002", p.Code)

	_, ok = catalog.Product(99)
	assert.False(t, ok)

	m, ok := catalog.RawMaterial(5)
	assert.True(t, ok)
	assert.Equal(t, "MP005", m.Code)

	assert.True(t, catalog.Consumption(1, 1).Equal(dec("200")))
	assert.True(t, catalog.Consumption(1, 2).IsZero(), "sugar is not in bread")
	assert.Len(t, catalog.ConsumptionVector(3), 4)

	// the catalog keeps its own copy
	snapshot.Products[0].Composition[0].RequiredQuantity = dec("1")
	assert.True(t, catalog.Consumption(1, 1).Equal(dec("200")))

	vector := catalog.ConsumptionVector(1)
	vector[1] = dec("0")
	assert.True(t, catalog.Consumption(1, 1).Equal(dec("200")))
}
