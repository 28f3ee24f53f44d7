package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

var (
	rawMaterialHeader = []string{"id", "code", "name", "stock_quantity"}
	productHeader     = []string{"id", "code", "name", "price"}
	compositionHeader = []string{"product_id", "raw_material_id", "required_quantity"}
)

// Loader handles loading catalog data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadCatalog reads the three catalog files and assembles a snapshot.
// compositionsFile may be empty when no product has a composition.
func (l *Loader) LoadCatalog(rawMaterialsFile, productsFile, compositionsFile string) (entities.CatalogSnapshot, error) {
	materials, err := l.LoadRawMaterials(rawMaterialsFile)
	if err != nil {
		return entities.CatalogSnapshot{}, err
	}

	products, err := l.LoadProducts(productsFile)
	if err != nil {
		return entities.CatalogSnapshot{}, err
	}

	compositions := map[entities.ProductID][]entities.CompositionLine{}
	if compositionsFile != "" {
		compositions, err = l.LoadCompositions(compositionsFile)
		if err != nil {
			return entities.CatalogSnapshot{}, err
		}
	}

	return Assemble(materials, products, compositions)
}

// Assemble attaches composition lines to their products
func Assemble(
	materials []*entities.RawMaterial,
	products []*entities.Product,
	compositions map[entities.ProductID][]entities.CompositionLine,
) (entities.CatalogSnapshot, error) {
	snapshot := entities.CatalogSnapshot{
		RawMaterials: make([]entities.RawMaterial, 0, len(materials)),
		Products:     make([]entities.Product, 0, len(products)),
	}
	for _, material := range materials {
		snapshot.RawMaterials = append(snapshot.RawMaterials, *material)
	}

	known := make(map[entities.ProductID]bool, len(products))
	for _, p := range products {
		known[p.ID] = true
		product, err := entities.NewProduct(p.ID, p.Code, p.Name, p.Price, compositions[p.ID])
		if err != nil {
			return entities.CatalogSnapshot{}, fmt.Errorf("product %d: %w", p.ID, err)
		}
		snapshot.Products = append(snapshot.Products, *product)
	}

	unknown := make([]entities.ProductID, 0)
	for productID := range compositions {
		if !known[productID] {
			unknown = append(unknown, productID)
		}
	}
	if len(unknown) > 0 {
		sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
		return entities.CatalogSnapshot{}, fmt.Errorf("composition references unknown product %d", unknown[0])
	}

	return snapshot, nil
}

// LoadRawMaterials loads raw materials from a CSV file
func (l *Loader) LoadRawMaterials(filename string) ([]*entities.RawMaterial, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw materials file %s: %w", filename, err)
	}
	defer file.Close()

	return ReadRawMaterials(file)
}

// ReadRawMaterials parses raw materials from CSV
func ReadRawMaterials(r io.Reader) ([]*entities.RawMaterial, error) {
	records, err := readRecords(r, "raw materials", rawMaterialHeader)
	if err != nil {
		return nil, err
	}

	materials := make([]*entities.RawMaterial, 0, len(records))
	for i, record := range records {
		material, err := parseRawMaterial(record)
		if err != nil {
			return nil, fmt.Errorf("raw materials CSV row %d: %w", i+2, err)
		}
		materials = append(materials, material)
	}

	return materials, nil
}

// LoadProducts loads products, without compositions, from a CSV file
func (l *Loader) LoadProducts(filename string) ([]*entities.Product, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open products file %s: %w", filename, err)
	}
	defer file.Close()

	return ReadProducts(file)
}

// ReadProducts parses products from CSV
func ReadProducts(r io.Reader) ([]*entities.Product, error) {
	records, err := readRecords(r, "products", productHeader)
	if err != nil {
		return nil, err
	}

	products := make([]*entities.Product, 0, len(records))
	for i, record := range records {
		product, err := parseProduct(record)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		products = append(products, product)
	}

	return products, nil
}

// LoadCompositions loads composition lines from a CSV file, grouped by
// product in file order
func (l *Loader) LoadCompositions(filename string) (map[entities.ProductID][]entities.CompositionLine, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open compositions file %s: %w", filename, err)
	}
	defer file.Close()

	return ReadCompositions(file)
}

// ReadCompositions parses composition lines from CSV
func ReadCompositions(r io.Reader) (map[entities.ProductID][]entities.CompositionLine, error) {
	records, err := readRecords(r, "compositions", compositionHeader)
	if err != nil {
		return nil, err
	}

	compositions := make(map[entities.ProductID][]entities.CompositionLine)
	for i, record := range records {
		productID, line, err := parseCompositionLine(record)
		if err != nil {
			return nil, fmt.Errorf("compositions CSV row %d: %w", i+2, err)
		}
		compositions[productID] = append(compositions[productID], *line)
	}

	return compositions, nil
}

// readRecords reads all rows, checks the header and column counts, and
// returns the data rows. A file holding only the header is an empty table.
func readRecords(r io.Reader, kind string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}

	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseRawMaterial(record []string) (*entities.RawMaterial, error) {
	id, err := parseID(record[0], "id")
	if err != nil {
		return nil, err
	}

	stock, err := parseDecimal(record[3], "stock_quantity")
	if err != nil {
		return nil, err
	}

	return entities.NewRawMaterial(entities.RawMaterialID(id), strings.TrimSpace(record[1]), strings.TrimSpace(record[2]), stock)
}

func parseProduct(record []string) (*entities.Product, error) {
	id, err := parseID(record[0], "id")
	if err != nil {
		return nil, err
	}

	price, err := parseDecimal(record[3], "price")
	if err != nil {
		return nil, err
	}

	return entities.NewProduct(entities.ProductID(id), strings.TrimSpace(record[1]), strings.TrimSpace(record[2]), price, nil)
}

func parseCompositionLine(record []string) (entities.ProductID, *entities.CompositionLine, error) {
	productID, err := parseID(record[0], "product_id")
	if err != nil {
		return 0, nil, err
	}

	materialID, err := parseID(record[1], "raw_material_id")
	if err != nil {
		return 0, nil, err
	}

	required, err := parseDecimal(record[2], "required_quantity")
	if err != nil {
		return 0, nil, err
	}

	line, err := entities.NewCompositionLine(entities.RawMaterialID(materialID), required)
	if err != nil {
		return 0, nil, err
	}
	return entities.ProductID(productID), line, nil
}

func parseID(s, column string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", column, s)
	}
	return id, nil
}

func parseDecimal(s, column string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("missing %s", column)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %q", column, s)
	}
	return d, nil
}
