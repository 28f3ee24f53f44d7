package memory

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// RawMaterialRepository provides in-memory raw material storage
type RawMaterialRepository struct {
	mu           sync.RWMutex
	materials    []entities.RawMaterial
	materialsMap map[entities.RawMaterialID]int
}

// NewRawMaterialRepository creates a new in-memory raw material repository
func NewRawMaterialRepository(expectedMaterials int) *RawMaterialRepository {
	return &RawMaterialRepository{
		materials:    make([]entities.RawMaterial, 0, expectedMaterials),
		materialsMap: make(map[entities.RawMaterialID]int, expectedMaterials),
	}
}

// Verify interface compliance
var _ repositories.RawMaterialRepository = (*RawMaterialRepository)(nil)

// LoadRawMaterials loads raw materials into the repository
func (r *RawMaterialRepository) LoadRawMaterials(materials []*entities.RawMaterial) error {
	for _, material := range materials {
		r.SaveRawMaterial(*material)
	}
	return nil
}

// SaveRawMaterial adds a raw material or replaces the one with the same id.
// Replacing keeps the original position so snapshots stay in load order.
func (r *RawMaterialRepository) SaveRawMaterial(material entities.RawMaterial) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index, exists := r.materialsMap[material.ID]; exists {
		r.materials[index] = material
		return
	}
	r.materialsMap[material.ID] = len(r.materials)
	r.materials = append(r.materials, material)
}

// GetRawMaterial returns a copy of the raw material with the given id
func (r *RawMaterialRepository) GetRawMaterial(id entities.RawMaterialID) (*entities.RawMaterial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.materialsMap[id]
	if !exists {
		return nil, fmt.Errorf("raw material not found: %d", id)
	}
	material := r.materials[index]
	return &material, nil
}

// GetAllRawMaterials returns copies of all raw materials in load order
func (r *RawMaterialRepository) GetAllRawMaterials() ([]*entities.RawMaterial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	materials := make([]*entities.RawMaterial, 0, len(r.materials))
	for i := range r.materials {
		material := r.materials[i]
		materials = append(materials, &material)
	}
	return materials, nil
}

// AdjustStock adds delta to the stock of a raw material between optimization runs
func (r *RawMaterialRepository) AdjustStock(id entities.RawMaterialID, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.materialsMap[id]
	if !exists {
		return fmt.Errorf("raw material not found: %d", id)
	}
	stock := r.materials[index].StockQuantity.Add(delta)
	if stock.IsNegative() {
		return fmt.Errorf("stock of raw material %d cannot become negative, got %s", id, stock)
	}
	r.materials[index].StockQuantity = stock
	return nil
}
