package entities

// CatalogSnapshot is an immutable copy of the catalog taken for one run
type CatalogSnapshot struct {
	RawMaterials []RawMaterial
	Products     []Product
}

// Clone returns a deep copy of the snapshot
func (s CatalogSnapshot) Clone() CatalogSnapshot {
	clone := CatalogSnapshot{
		RawMaterials: make([]RawMaterial, len(s.RawMaterials)),
		Products:     make([]Product, len(s.Products)),
	}
	copy(clone.RawMaterials, s.RawMaterials)
	for i, p := range s.Products {
		clone.Products[i] = p.Clone()
	}
	return clone
}
