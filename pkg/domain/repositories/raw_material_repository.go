package repositories

import "github.com/vsinha/prodplan/pkg/domain/entities"

// RawMaterialRepository provides access to raw material master data
type RawMaterialRepository interface {
	GetRawMaterial(id entities.RawMaterialID) (*entities.RawMaterial, error)
	GetAllRawMaterials() ([]*entities.RawMaterial, error)
	LoadRawMaterials(materials []*entities.RawMaterial) error
}
