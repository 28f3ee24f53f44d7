package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// GenerateConfig holds configuration for catalog generation
type GenerateConfig struct {
	RawMaterials int     // Number of raw materials to generate
	Products     int     // Number of products to generate
	MaxLines     int     // Maximum composition lines per product
	Stock        float64 // Stock multiplier (1.0 = enough for ~10 units of an average product)
	OutputDir    string  // Output directory for generated files
	Seed         int64   // Random seed for reproducible generation
	Help         bool    // Show help
	Verbose      bool    // Verbose output
}

// NewGenerateFlagSet declares the flags of the generate subcommand
func NewGenerateFlagSet(cfg *GenerateConfig) *pflag.FlagSet {
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	fs.IntVar(&cfg.RawMaterials, "raw-materials", 20, "Number of raw materials to generate")
	fs.IntVar(&cfg.Products, "products", 50, "Number of products to generate")
	fs.IntVar(&cfg.MaxLines, "max-lines", 5, "Maximum composition lines per product")
	fs.Float64Var(&cfg.Stock, "stock", 1.0, "Stock multiplier")
	fs.StringVar(&cfg.OutputDir, "output", "", "Output directory for generated files")
	fs.Int64Var(&cfg.Seed, "seed", 0, "Random seed for reproducible generation")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose output")
	fs.BoolVarP(&cfg.Help, "help", "h", false, "Show this help message")
	return fs
}

// GenerateCommand writes a random CSV catalog
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	stdout io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig, stdout io.Writer) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		config.Seed = seed
	}
	if stdout == nil {
		stdout = os.Stdout
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		stdout: stdout,
	}
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}

	if err := cmd.validate(); err != nil {
		return err
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.stdout,
			"🔧 Generating catalog with %d raw materials, %d products, up to %d lines each, %.1fx stock\n",
			cmd.config.RawMaterials, cmd.config.Products, cmd.config.MaxLines, cmd.config.Stock)
		fmt.Fprintf(cmd.stdout, "📁 Output directory: %s\n", cmd.config.OutputDir)
		fmt.Fprintf(cmd.stdout, "🎲 Random seed: %d\n", cmd.config.Seed)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	snapshot := cmd.Catalog()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := cmd.writeRawMaterials(snapshot.RawMaterials); err != nil {
		return fmt.Errorf("failed to generate raw materials: %w", err)
	}
	if err := cmd.writeProducts(snapshot.Products); err != nil {
		return fmt.Errorf("failed to generate products: %w", err)
	}
	if err := cmd.writeCompositions(snapshot.Products); err != nil {
		return fmt.Errorf("failed to generate compositions: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.stdout, "✅ Catalog generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) validate() error {
	switch {
	case cmd.config.OutputDir == "":
		return fmt.Errorf("--output is required")
	case cmd.config.RawMaterials < 1:
		return fmt.Errorf("--raw-materials must be at least 1")
	case cmd.config.Products < 1:
		return fmt.Errorf("--products must be at least 1")
	case cmd.config.MaxLines < 1:
		return fmt.Errorf("--max-lines must be at least 1")
	case cmd.config.Stock <= 0:
		return fmt.Errorf("--stock must be positive")
	}
	return nil
}

// Catalog draws a random catalog. Every product consumes between one and
// MaxLines distinct raw materials.
func (cmd *GenerateCommand) Catalog() entities.CatalogSnapshot {
	snapshot := entities.CatalogSnapshot{
		RawMaterials: make([]entities.RawMaterial, 0, cmd.config.RawMaterials),
		Products:     make([]entities.Product, 0, cmd.config.Products),
	}

	// average consumption per unit is ~25, stock covers ~10 units at 1.0x
	stockScale := decimal.NewFromFloat(cmd.config.Stock)
	for i := 0; i < cmd.config.RawMaterials; i++ {
		base := decimal.NewFromInt(int64(100 + cmd.rand.Intn(400)))
		snapshot.RawMaterials = append(snapshot.RawMaterials, entities.RawMaterial{
			ID:            entities.RawMaterialID(i + 1),
			Code:          fmt.Sprintf("MP%04d", i+1),
			Name:          fmt.Sprintf("Raw Material %d", i+1),
			StockQuantity: base.Mul(stockScale).Round(2),
		})
	}

	maxLines := cmd.config.MaxLines
	if maxLines > cmd.config.RawMaterials {
		maxLines = cmd.config.RawMaterials
	}
	for i := 0; i < cmd.config.Products; i++ {
		lines := 1 + cmd.rand.Intn(maxLines)
		materials := cmd.rand.Perm(cmd.config.RawMaterials)[:lines]

		product := entities.Product{
			ID:          entities.ProductID(i + 1),
			Code:        fmt.Sprintf("PRD%04d", i+1),
			Name:        fmt.Sprintf("Product %d", i+1),
			Price:       decimal.New(int64(100+cmd.rand.Intn(9900)), -2),
			Composition: make([]entities.CompositionLine, 0, lines),
		}
		for _, m := range materials {
			product.Composition = append(product.Composition, entities.CompositionLine{
				RawMaterialID:    entities.RawMaterialID(m + 1),
				RequiredQuantity: decimal.New(int64(10+cmd.rand.Intn(400)), -1),
			})
		}
		snapshot.Products = append(snapshot.Products, product)
	}

	return snapshot
}

func (cmd *GenerateCommand) writeRawMaterials(materials []entities.RawMaterial) error {
	rows := [][]string{{"id", "code", "name", "stock_quantity"}}
	for _, m := range materials {
		rows = append(rows, []string{strconv.FormatInt(int64(m.ID), 10), m.Code, m.Name, m.StockQuantity.String()})
	}
	return cmd.writeFile("raw_materials.csv", rows)
}

func (cmd *GenerateCommand) writeProducts(products []entities.Product) error {
	rows := [][]string{{"id", "code", "name", "price"}}
	for _, p := range products {
		rows = append(rows, []string{strconv.FormatInt(int64(p.ID), 10), p.Code, p.Name, p.Price.StringFixed(2)})
	}
	return cmd.writeFile("products.csv", rows)
}

func (cmd *GenerateCommand) writeCompositions(products []entities.Product) error {
	rows := [][]string{{"product_id", "raw_material_id", "required_quantity"}}
	for _, p := range products {
		for _, line := range p.Composition {
			rows = append(rows, []string{
				strconv.FormatInt(int64(p.ID), 10),
				strconv.FormatInt(int64(line.RawMaterialID), 10),
				line.RequiredQuantity.String(),
			})
		}
	}
	return cmd.writeFile("compositions.csv", rows)
}

func (cmd *GenerateCommand) writeFile(name string, rows [][]string) error {
	file, err := os.Create(filepath.Join(cmd.config.OutputDir, name))
	if err != nil {
		return err
	}
	defer file.Close()

	if err := csv.NewWriter(file).WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}

func (cmd *GenerateCommand) printHelp() {
	fmt.Fprintln(cmd.stdout, `Catalog Generator

USAGE:
    prodplan generate [OPTIONS]

OPTIONS:
    --raw-materials <N>  Number of raw materials to generate (default 20)
    --products <N>       Number of products to generate (default 50)
    --max-lines <N>      Maximum composition lines per product (default 5)
    --stock <F>          Stock multiplier (e.g., 0.5 = scarce, 4.0 = plentiful) (default 1.0)
    --output <DIR>       Output directory for generated files (required)
    --seed <N>           Random seed for reproducible generation (optional)
    --verbose            Enable verbose output
    --help               Show this help message

EXAMPLES:
    # Generate a small catalog
    prodplan generate --raw-materials 5 --products 10 --output ./small_catalog

    # Generate a large catalog for performance testing
    prodplan generate --raw-materials 500 --products 5000 --max-lines 12 --output ./large_catalog --verbose

    # Generate a reproducible catalog
    prodplan generate --output ./repro_catalog --seed 12345`)
}
