// Package catalogfile reads catalog snapshots from a single YAML or JSON
// document.
package catalogfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a catalog document
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Amount is a decimal that decodes from either a number or a string
type Amount struct {
	decimal.Decimal
}

// UnmarshalYAML parses the scalar text exactly, without a float round trip
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number, got %s", node.Line, nodeKind(node))
	}
	d, err := decimal.NewFromString(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("line %d: invalid number %q", node.Line, node.Value)
	}
	a.Decimal = d
	return nil
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	default:
		return "alias"
	}
}

// RawMaterial is the document form of a raw material
type RawMaterial struct {
	ID            int64  `yaml:"id" json:"id"`
	Code          string `yaml:"code" json:"code"`
	Name          string `yaml:"name" json:"name"`
	StockQuantity Amount `yaml:"stockQuantity" json:"stockQuantity"`
}

// CompositionLine is the document form of a composition line
type CompositionLine struct {
	RawMaterialID    int64  `yaml:"rawMaterialId" json:"rawMaterialId"`
	RequiredQuantity Amount `yaml:"requiredQuantity" json:"requiredQuantity"`
}

// Product is the document form of a product
type Product struct {
	ID          int64             `yaml:"id" json:"id"`
	Code        string            `yaml:"code" json:"code"`
	Name        string            `yaml:"name" json:"name"`
	Price       Amount            `yaml:"price" json:"price"`
	Composition []CompositionLine `yaml:"composition,omitempty" json:"composition,omitempty"`
}

// Reservation is stock already promised elsewhere
type Reservation struct {
	RawMaterialID int64  `yaml:"rawMaterialId" json:"rawMaterialId"`
	Quantity      Amount `yaml:"quantity" json:"quantity"`
}

// DemandCap limits the units planned for a product
type DemandCap struct {
	ProductID int64 `yaml:"productId" json:"productId"`
	MaxUnits  int64 `yaml:"maxUnits" json:"maxUnits"`
}

// Document is a complete catalog file
type Document struct {
	RawMaterials  []RawMaterial `yaml:"rawMaterials" json:"rawMaterials"`
	Products      []Product     `yaml:"products" json:"products"`
	Reservations  []Reservation `yaml:"reservations,omitempty" json:"reservations,omitempty"`
	DemandCapList []DemandCap   `yaml:"demandCaps,omitempty" json:"demandCaps,omitempty"`
}

// FormatFromPath infers the document format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported catalog file extension %q (use .yaml, .yml or .json)", filepath.Ext(path))
	}
}

// Load reads the catalog document at path
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file %s: %w", path, err)
	}
	defer file.Close()

	doc, err := Decode(file, format)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return doc, nil
}

// Decode parses a catalog document in the given format
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(r)
		decoder.KnownFields(true)
		if err := decoder.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode YAML catalog: %w", err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(r)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode JSON catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown catalog format %q", format)
	}
	return &doc, nil
}

// Snapshot converts the document into domain entities. Only structural
// problems are reported here; value checks are left to catalog validation
// so that every problem is reported together.
func (d *Document) Snapshot() (entities.CatalogSnapshot, error) {
	snapshot := entities.CatalogSnapshot{
		RawMaterials: make([]entities.RawMaterial, 0, len(d.RawMaterials)),
		Products:     make([]entities.Product, 0, len(d.Products)),
	}

	for i, m := range d.RawMaterials {
		if m.ID <= 0 {
			return entities.CatalogSnapshot{}, fmt.Errorf("rawMaterials[%d]: id must be positive, got %d", i, m.ID)
		}
		if m.Code == "" {
			return entities.CatalogSnapshot{}, fmt.Errorf("rawMaterials[%d]: code cannot be empty", i)
		}
		snapshot.RawMaterials = append(snapshot.RawMaterials, entities.RawMaterial{
			ID:            entities.RawMaterialID(m.ID),
			Code:          m.Code,
			Name:          m.Name,
			StockQuantity: m.StockQuantity.Decimal,
		})
	}

	for i, p := range d.Products {
		if p.ID <= 0 {
			return entities.CatalogSnapshot{}, fmt.Errorf("products[%d]: id must be positive, got %d", i, p.ID)
		}
		if p.Code == "" {
			return entities.CatalogSnapshot{}, fmt.Errorf("products[%d]: code cannot be empty", i)
		}
		product := entities.Product{
			ID:          entities.ProductID(p.ID),
			Code:        p.Code,
			Name:        p.Name,
			Price:       p.Price.Decimal,
			Composition: make([]entities.CompositionLine, 0, len(p.Composition)),
		}
		for _, line := range p.Composition {
			product.Composition = append(product.Composition, entities.CompositionLine{
				RawMaterialID:    entities.RawMaterialID(line.RawMaterialID),
				RequiredQuantity: line.RequiredQuantity.Decimal,
			})
		}
		snapshot.Products = append(snapshot.Products, product)
	}

	return snapshot, nil
}

// Reservation returns the reserved stock keyed by raw material. Repeated
// entries for one material are summed.
func (d *Document) Reservation() map[entities.RawMaterialID]decimal.Decimal {
	if len(d.Reservations) == 0 {
		return nil
	}
	reservation := make(map[entities.RawMaterialID]decimal.Decimal, len(d.Reservations))
	for _, r := range d.Reservations {
		id := entities.RawMaterialID(r.RawMaterialID)
		reservation[id] = reservation[id].Add(r.Quantity.Decimal)
	}
	return reservation
}

// DemandCaps returns the demand caps keyed by product. The last entry for a
// product wins.
func (d *Document) DemandCaps() map[entities.ProductID]entities.Quantity {
	if len(d.DemandCapList) == 0 {
		return nil
	}
	caps := make(map[entities.ProductID]entities.Quantity, len(d.DemandCapList))
	for _, c := range d.DemandCapList {
		caps[entities.ProductID(c.ProductID)] = entities.Quantity(c.MaxUnits)
	}
	return caps
}
