package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validSnapshot() entities.CatalogSnapshot {
	return entities.CatalogSnapshot{
		RawMaterials: []entities.RawMaterial{
			{ID: 1, Code: "MP001", Name: "Flour", StockQuantity: dec("1000")},
			{ID: 2, Code: "MP002", Name: "Sugar", StockQuantity: dec("500")},
		},
		Products: []entities.Product{
			{
				ID: 1, Code: "PRD001", Name: "Bread", Price: dec("12.50"),
				Composition: []entities.CompositionLine{
					{RawMaterialID: 1, RequiredQuantity: dec("200")},
				},
			},
			{
				ID: 2, Code: "PRD002", Name: "Cake", Price: dec("35"),
				Composition: []entities.CompositionLine{
					{RawMaterialID: 1, RequiredQuantity: dec("300")},
					{RawMaterialID: 2, RequiredQuantity: dec("200")},
				},
			},
		},
	}
}

func TestValidateCatalog_Valid(t *testing.T) {
	result := NewCatalogValidator().ValidateCatalog(validSnapshot())

	assert.True(t, result.Valid())
	assert.NoError(t, result.Err())
}

func TestValidateCatalog_Empty(t *testing.T) {
	result := NewCatalogValidator().ValidateCatalog(entities.CatalogSnapshot{})

	assert.True(t, result.Valid())
}

func TestValidateCatalog_UnknownRawMaterial(t *testing.T) {
	snapshot := validSnapshot()
	snapshot.Products[0].Composition = append(snapshot.Products[0].Composition,
		entities.CompositionLine{RawMaterialID: 99, RequiredQuantity: dec("1")})

	result := NewCatalogValidator().ValidateCatalog(snapshot)

	require.False(t, result.Valid())
	require.Len(t, result.UnknownReferences, 1)
	assert.Equal(t, UnknownReference{ProductID: 1, RawMaterialID: 99}, result.UnknownReferences[0])

	err := result.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCatalog))

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, []string{"product 1: composition references unknown raw material 99"}, validationErr.Errors)
}

func TestValidateCatalog_Problems(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(s *entities.CatalogSnapshot)
		expectError string
	}{
		{
			name:        "negative stock",
			mutate:      func(s *entities.CatalogSnapshot) { s.RawMaterials[0].StockQuantity = dec("-1") },
			expectError: "raw material 1: stock quantity cannot be negative, got -1",
		},
		{
			name:        "negative price",
			mutate:      func(s *entities.CatalogSnapshot) { s.Products[1].Price = dec("-35") },
			expectError: "product 2: price cannot be negative, got -35",
		},
		{
			name:        "zero requirement",
			mutate:      func(s *entities.CatalogSnapshot) { s.Products[0].Composition[0].RequiredQuantity = decimal.Zero },
			expectError: "product 1: required quantity of raw material 1 cannot be zero",
		},
		{
			name:        "negative requirement",
			mutate:      func(s *entities.CatalogSnapshot) { s.Products[0].Composition[0].RequiredQuantity = dec("-3") },
			expectError: "product 1: required quantity of raw material 1 cannot be negative, got -3",
		},
		{
			name: "duplicate composition line",
			mutate: func(s *entities.CatalogSnapshot) {
				s.Products[1].Composition[1].RawMaterialID = 1
			},
			expectError: "product 2: raw material 1 appears more than once in composition",
		},
		{
			name:        "duplicate raw material id",
			mutate:      func(s *entities.CatalogSnapshot) { s.RawMaterials[1].ID = 1 },
			expectError: "duplicate raw material id 1",
		},
		{
			name:        "duplicate product id",
			mutate:      func(s *entities.CatalogSnapshot) { s.Products[1].ID = 1 },
			expectError: "duplicate product id 1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snapshot := validSnapshot()
			tc.mutate(&snapshot)

			result := NewCatalogValidator().ValidateCatalog(snapshot)

			require.False(t, result.Valid())
			assert.Contains(t, result.Errors, tc.expectError)
		})
	}
}

func TestValidateReservation(t *testing.T) {
	materials := validSnapshot().RawMaterials
	validator := NewCatalogValidator()

	ok := validator.ValidateReservation(materials, map[entities.RawMaterialID]decimal.Decimal{
		1: dec("1000"),
		2: dec("0"),
	})
	assert.True(t, ok.Valid())

	bad := validator.ValidateReservation(materials, map[entities.RawMaterialID]decimal.Decimal{
		7: dec("1"),
		2: dec("-1"),
		1: dec("1000.5"),
	})
	assert.Equal(t, []string{
		"reservation for raw material 1 exceeds stock: 1000.5 > 1000",
		"reservation for raw material 2 cannot be negative, got -1",
		"reservation references unknown raw material 7",
	}, bad.Errors)
}

func TestValidateDemandCaps(t *testing.T) {
	products := validSnapshot().Products
	validator := NewCatalogValidator()

	assert.True(t, validator.ValidateDemandCaps(products, map[entities.ProductID]entities.Quantity{1: 0, 2: 10}).Valid())

	bad := validator.ValidateDemandCaps(products, map[entities.ProductID]entities.Quantity{3: 1, 1: -2})
	assert.Equal(t, []string{
		"demand cap for product 1 cannot be negative, got -2",
		"demand cap references unknown product 3",
	}, bad.Errors)
}

func TestValidationResult_Merge(t *testing.T) {
	first := &ValidationResult{Errors: []string{"a"}}
	first.Merge(&ValidationResult{Errors: []string{"b"}})
	first.Merge(nil)

	assert.Equal(t, []string{"a", "b"}, first.Errors)
	assert.EqualError(t, first.Err(), "catalog validation failed: a; b")
}
