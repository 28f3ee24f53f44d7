package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CompositionLine is one bill-of-materials entry: the quantity of a raw
// material consumed to produce a single unit of the owning product
type CompositionLine struct {
	RawMaterialID    RawMaterialID
	RequiredQuantity decimal.Decimal
}

// NewCompositionLine creates a validated CompositionLine
func NewCompositionLine(rawMaterialID RawMaterialID, required decimal.Decimal) (*CompositionLine, error) {
	if rawMaterialID <= 0 {
		return nil, fmt.Errorf("raw material id must be positive, got %d", rawMaterialID)
	}
	if !required.IsPositive() {
		return nil, fmt.Errorf("required quantity must be positive, got %s", required)
	}

	return &CompositionLine{
		RawMaterialID:    rawMaterialID,
		RequiredQuantity: required,
	}, nil
}

// Product is a sellable item defined by its price and composition
type Product struct {
	ID          ProductID
	Code        string
	Name        string
	Price       decimal.Decimal
	Composition []CompositionLine
}

// NewProduct creates a validated Product. Composition lines are copied.
func NewProduct(id ProductID, code, name string, price decimal.Decimal, composition []CompositionLine) (*Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("product id must be positive, got %d", id)
	}
	if code == "" {
		return nil, fmt.Errorf("product code cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative, got %s", price)
	}

	seen := make(map[RawMaterialID]bool, len(composition))
	for _, line := range composition {
		if seen[line.RawMaterialID] {
			return nil, fmt.Errorf("raw material %d appears more than once in composition of %s", line.RawMaterialID, code)
		}
		seen[line.RawMaterialID] = true
	}

	p := &Product{
		ID:    id,
		Code:  code,
		Name:  name,
		Price: price,
	}
	p.Composition = append(p.Composition, composition...)
	return p, nil
}

// HasComposition reports whether the product consumes any raw material
func (p Product) HasComposition() bool {
	return len(p.Composition) > 0
}

// Clone returns a deep copy of the product
func (p Product) Clone() Product {
	clone := p
	clone.Composition = make([]CompositionLine, len(p.Composition))
	copy(clone.Composition, p.Composition)
	return clone
}
