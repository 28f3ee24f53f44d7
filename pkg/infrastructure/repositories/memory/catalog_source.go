package memory

import (
	"context"
	"fmt"

	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// CatalogSource snapshots the in-memory raw material and product repositories
type CatalogSource struct {
	materials repositories.RawMaterialRepository
	products  repositories.ProductRepository
}

// NewCatalogSource creates a catalog source over the given repositories
func NewCatalogSource(materials repositories.RawMaterialRepository, products repositories.ProductRepository) *CatalogSource {
	return &CatalogSource{materials: materials, products: products}
}

// NewCatalogSourceFromSnapshot loads snapshot into fresh repositories
func NewCatalogSourceFromSnapshot(snapshot entities.CatalogSnapshot) *CatalogSource {
	materials := NewRawMaterialRepository(len(snapshot.RawMaterials))
	for _, material := range snapshot.RawMaterials {
		materials.SaveRawMaterial(material)
	}
	products := NewProductRepository(len(snapshot.Products))
	for _, product := range snapshot.Products {
		products.SaveProduct(product)
	}
	return NewCatalogSource(materials, products)
}

// Verify interface compliance
var _ repositories.CatalogSource = (*CatalogSource)(nil)

// Snapshot returns independent copies of all raw materials and products
func (s *CatalogSource) Snapshot(ctx context.Context) (entities.CatalogSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return entities.CatalogSnapshot{}, err
	}

	materials, err := s.materials.GetAllRawMaterials()
	if err != nil {
		return entities.CatalogSnapshot{}, fmt.Errorf("failed to read raw materials: %w", err)
	}
	products, err := s.products.GetAllProducts()
	if err != nil {
		return entities.CatalogSnapshot{}, fmt.Errorf("failed to read products: %w", err)
	}

	snapshot := entities.CatalogSnapshot{
		RawMaterials: make([]entities.RawMaterial, 0, len(materials)),
		Products:     make([]entities.Product, 0, len(products)),
	}
	for _, material := range materials {
		snapshot.RawMaterials = append(snapshot.RawMaterials, *material)
	}
	for _, product := range products {
		snapshot.Products = append(snapshot.Products, product.Clone())
	}
	return snapshot, nil
}
