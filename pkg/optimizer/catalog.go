package optimizer

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// StockVector maps raw materials to a quantity of stock
type StockVector map[entities.RawMaterialID]decimal.Decimal

// Clone returns an independent copy of the vector
func (s StockVector) Clone() StockVector {
	clone := make(StockVector, len(s))
	for id, qty := range s {
		clone[id] = qty
	}
	return clone
}

// QuantityVector maps products to a number of units
type QuantityVector map[entities.ProductID]entities.Quantity

// Catalog is the bill-of-materials model of one run. It is built from a
// copy of the snapshot and never mutated afterwards.
type Catalog struct {
	materials     []entities.RawMaterial
	products      []entities.Product
	materialIndex map[entities.RawMaterialID]int
	productIndex  map[entities.ProductID]int
	consumption   map[entities.ProductID]map[entities.RawMaterialID]decimal.Decimal
}

// NewCatalog builds a catalog from snapshot
func NewCatalog(snapshot entities.CatalogSnapshot) *Catalog {
	snapshot = snapshot.Clone()

	c := &Catalog{
		materials:     snapshot.RawMaterials,
		products:      snapshot.Products,
		materialIndex: make(map[entities.RawMaterialID]int, len(snapshot.RawMaterials)),
		productIndex:  make(map[entities.ProductID]int, len(snapshot.Products)),
		consumption:   make(map[entities.ProductID]map[entities.RawMaterialID]decimal.Decimal, len(snapshot.Products)),
	}

	for i, material := range c.materials {
		c.materialIndex[material.ID] = i
	}

	for i, product := range c.products {
		c.productIndex[product.ID] = i
		vector := make(map[entities.RawMaterialID]decimal.Decimal, len(product.Composition))
		for _, line := range product.Composition {
			vector[line.RawMaterialID] = line.RequiredQuantity
		}
		c.consumption[product.ID] = vector
	}

	return c
}

// Product returns the product with the given id
func (c *Catalog) Product(id entities.ProductID) (entities.Product, bool) {
	i, ok := c.productIndex[id]
	if !ok {
		return entities.Product{}, false
	}
	return c.products[i].Clone(), true
}

// RawMaterial returns the raw material with the given id
func (c *Catalog) RawMaterial(id entities.RawMaterialID) (entities.RawMaterial, bool) {
	i, ok := c.materialIndex[id]
	if !ok {
		return entities.RawMaterial{}, false
	}
	return c.materials[i], true
}

// Products returns all products in snapshot order
func (c *Catalog) Products() []entities.Product {
	products := make([]entities.Product, len(c.products))
	for i, p := range c.products {
		products[i] = p.Clone()
	}
	return products
}

// RawMaterials returns all raw materials in snapshot order
func (c *Catalog) RawMaterials() []entities.RawMaterial {
	materials := make([]entities.RawMaterial, len(c.materials))
	copy(materials, c.materials)
	return materials
}

// ConsumptionVector returns the per-unit consumption of a product. Materials
// outside the composition are absent, which Consumption reports as zero.
func (c *Catalog) ConsumptionVector(id entities.ProductID) map[entities.RawMaterialID]decimal.Decimal {
	vector := make(map[entities.RawMaterialID]decimal.Decimal, len(c.consumption[id]))
	for materialID, qty := range c.consumption[id] {
		vector[materialID] = qty
	}
	return vector
}

// Consumption returns how much of a raw material one unit of a product consumes
func (c *Catalog) Consumption(productID entities.ProductID, materialID entities.RawMaterialID) decimal.Decimal {
	qty, ok := c.consumption[productID][materialID]
	if !ok {
		return decimal.Zero
	}
	return qty
}

// Stock returns the on-hand stock of every raw material
func (c *Catalog) Stock() StockVector {
	stock := make(StockVector, len(c.materials))
	for _, material := range c.materials {
		stock[material.ID] = material.StockQuantity
	}
	return stock
}

// Balances lists stock in raw material order
func (c *Catalog) Balances(stock StockVector) []entities.MaterialBalance {
	balances := make([]entities.MaterialBalance, 0, len(c.materials))
	for _, material := range c.materials {
		balances = append(balances, entities.MaterialBalance{
			RawMaterialID: material.ID,
			Code:          material.Code,
			Quantity:      stock[material.ID],
		})
	}
	return balances
}
