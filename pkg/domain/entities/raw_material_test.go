package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRawMaterial_Validation(t *testing.T) {
	valid, err := NewRawMaterial(1, "MP001", "Wheat Flour", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("Expected valid raw material creation to succeed: %v", err)
	}
	if !valid.StockQuantity.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected stock 1000, got %s", valid.StockQuantity)
	}

	zeroStock, err := NewRawMaterial(2, "MP002", "Sugar", decimal.Zero)
	if err != nil {
		t.Fatalf("Expected zero stock to be accepted: %v", err)
	}
	if !zeroStock.StockQuantity.IsZero() {
		t.Errorf("Expected zero stock, got %s", zeroStock.StockQuantity)
	}

	testCases := []struct {
		name        string
		id          RawMaterialID
		code        string
		matName     string
		stock       decimal.Decimal
		expectError string
	}{
		{"non-positive id", 0, "MP001", "Flour", decimal.NewFromInt(1), "raw material id must be positive, got 0"},
		{"empty code", 1, "", "Flour", decimal.NewFromInt(1), "raw material code cannot be empty"},
		{"empty name", 1, "MP001", "", decimal.NewFromInt(1), "raw material name cannot be empty"},
		{"negative stock", 1, "MP001", "Flour", decimal.NewFromFloat(-2.5), "stock quantity cannot be negative, got -2.5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRawMaterial(tc.id, tc.code, tc.matName, tc.stock)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}
