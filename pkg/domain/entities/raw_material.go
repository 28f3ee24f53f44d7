package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RawMaterial is a stocked input consumed by product compositions
type RawMaterial struct {
	ID            RawMaterialID
	Code          string
	Name          string
	StockQuantity decimal.Decimal
}

// NewRawMaterial creates a validated RawMaterial
func NewRawMaterial(id RawMaterialID, code, name string, stock decimal.Decimal) (*RawMaterial, error) {
	if id <= 0 {
		return nil, fmt.Errorf("raw material id must be positive, got %d", id)
	}
	if code == "" {
		return nil, fmt.Errorf("raw material code cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("raw material name cannot be empty")
	}
	if stock.IsNegative() {
		return nil, fmt.Errorf("stock quantity cannot be negative, got %s", stock)
	}

	return &RawMaterial{
		ID:            id,
		Code:          code,
		Name:          name,
		StockQuantity: stock,
	}, nil
}

// MaterialBalance reports the stock of one raw material at some point of a run
type MaterialBalance struct {
	RawMaterialID RawMaterialID
	Code          string
	Quantity      decimal.Decimal
}
