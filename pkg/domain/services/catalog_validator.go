package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// ErrInvalidCatalog is matched by every ValidationError
var ErrInvalidCatalog = errors.New("invalid catalog")

// ValidationError reports every problem found in a catalog snapshot or
// optimization request. No plan is produced when it is returned.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog validation failed: %s", strings.Join(e.Errors, "; "))
}

// Is makes errors.Is(err, ErrInvalidCatalog) succeed
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidCatalog
}

// UnknownReference is a composition line pointing at a missing raw material
type UnknownReference struct {
	ProductID     entities.ProductID
	RawMaterialID entities.RawMaterialID
}

// ValidationResult contains the results of catalog validation
type ValidationResult struct {
	UnknownReferences []UnknownReference
	DuplicateLines    []UnknownReference
	Errors            []string
}

// Valid reports whether no problem was found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns a *ValidationError when problems were found, nil otherwise
func (r *ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Errors: append([]string(nil), r.Errors...)}
}

func (r *ValidationResult) addf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// CatalogValidator checks catalog snapshots before allocation begins
type CatalogValidator struct{}

// NewCatalogValidator creates a new catalog validator
func NewCatalogValidator() *CatalogValidator {
	return &CatalogValidator{}
}

// ValidateCatalog checks data integrity of a snapshot. Problems are reported
// in input order so the message is reproducible.
func (v *CatalogValidator) ValidateCatalog(snapshot entities.CatalogSnapshot) *ValidationResult {
	result := &ValidationResult{
		UnknownReferences: make([]UnknownReference, 0),
		DuplicateLines:    make([]UnknownReference, 0),
		Errors:            make([]string, 0),
	}

	materials := v.validateRawMaterials(snapshot.RawMaterials, result)

	seenProducts := make(map[entities.ProductID]bool, len(snapshot.Products))
	for _, product := range snapshot.Products {
		if seenProducts[product.ID] {
			result.addf("duplicate product id %d", product.ID)
		}
		seenProducts[product.ID] = true

		if product.Price.IsNegative() {
			result.addf("product %d: price cannot be negative, got %s", product.ID, product.Price)
		}

		v.validateComposition(product, materials, result)
	}

	return result
}

func (v *CatalogValidator) validateRawMaterials(materials []entities.RawMaterial, result *ValidationResult) map[entities.RawMaterialID]bool {
	known := make(map[entities.RawMaterialID]bool, len(materials))
	for _, material := range materials {
		if known[material.ID] {
			result.addf("duplicate raw material id %d", material.ID)
		}
		known[material.ID] = true

		if material.StockQuantity.IsNegative() {
			result.addf("raw material %d: stock quantity cannot be negative, got %s", material.ID, material.StockQuantity)
		}
	}
	return known
}

func (v *CatalogValidator) validateComposition(product entities.Product, materials map[entities.RawMaterialID]bool, result *ValidationResult) {
	seen := make(map[entities.RawMaterialID]bool, len(product.Composition))
	for _, line := range product.Composition {
		ref := UnknownReference{ProductID: product.ID, RawMaterialID: line.RawMaterialID}

		if !materials[line.RawMaterialID] {
			result.UnknownReferences = append(result.UnknownReferences, ref)
			result.addf("product %d: composition references unknown raw material %d", product.ID, line.RawMaterialID)
		}
		if seen[line.RawMaterialID] {
			result.DuplicateLines = append(result.DuplicateLines, ref)
			result.addf("product %d: raw material %d appears more than once in composition", product.ID, line.RawMaterialID)
		}
		seen[line.RawMaterialID] = true

		switch {
		case line.RequiredQuantity.IsNegative():
			result.addf("product %d: required quantity of raw material %d cannot be negative, got %s",
				product.ID, line.RawMaterialID, line.RequiredQuantity)
		case line.RequiredQuantity.IsZero():
			result.addf("product %d: required quantity of raw material %d cannot be zero",
				product.ID, line.RawMaterialID)
		}
	}
}

// ValidateReservation checks that every reserved quantity names a known raw
// material, is not negative and fits in the material's stock
func (v *CatalogValidator) ValidateReservation(
	materials []entities.RawMaterial,
	reservation map[entities.RawMaterialID]decimal.Decimal,
) *ValidationResult {
	result := &ValidationResult{Errors: make([]string, 0)}

	stock := make(map[entities.RawMaterialID]decimal.Decimal, len(materials))
	for _, material := range materials {
		stock[material.ID] = material.StockQuantity
	}

	for _, id := range sortedMaterialIDs(reservation) {
		qty := reservation[id]
		available, exists := stock[id]
		switch {
		case !exists:
			result.addf("reservation references unknown raw material %d", id)
		case qty.IsNegative():
			result.addf("reservation for raw material %d cannot be negative, got %s", id, qty)
		case qty.GreaterThan(available):
			result.addf("reservation for raw material %d exceeds stock: %s > %s", id, qty, available)
		}
	}

	return result
}

// ValidateDemandCaps checks that every cap names a known product and is not negative
func (v *CatalogValidator) ValidateDemandCaps(
	products []entities.Product,
	caps map[entities.ProductID]entities.Quantity,
) *ValidationResult {
	result := &ValidationResult{Errors: make([]string, 0)}

	known := make(map[entities.ProductID]bool, len(products))
	for _, product := range products {
		known[product.ID] = true
	}

	for _, id := range sortedProductIDs(caps) {
		switch {
		case !known[id]:
			result.addf("demand cap references unknown product %d", id)
		case caps[id] < 0:
			result.addf("demand cap for product %d cannot be negative, got %d", id, caps[id])
		}
	}

	return result
}

// Merge appends the problems of other to r
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.UnknownReferences = append(r.UnknownReferences, other.UnknownReferences...)
	r.DuplicateLines = append(r.DuplicateLines, other.DuplicateLines...)
	r.Errors = append(r.Errors, other.Errors...)
}
