package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/prodplan/pkg/interfaces/cli/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	bakeryRawMaterials = `id,code,name,stock_quantity
1,MP001,Wheat Flour,1000
2,MP002,Sugar,500
3,MP003,Milk,300
4,MP004,Eggs,200
5,MP005,Butter,150
`
	bakeryProducts = `id,code,name,price
1,PRD001,French Bread,12.50
2,PRD002,Chocolate Cake,35.00
3,PRD003,Butter Cookies,8.00
`
	bakeryCompositions = `product_id,raw_material_id,required_quantity
1,1,200
1,3,50
1,5,10
2,1,300
2,2,200
2,3,100
2,4,50
2,5,80
3,1,150
3,2,100
3,5,60
3,4,30
`
)

func writeBakery(t *testing.T, compositions string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"raw_materials.csv": bakeryRawMaterials,
		"products.csv":      bakeryProducts,
		"compositions.csv":  compositions,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cfg, err := config.Load(args)
	require.NoError(t, err)

	var stdout bytes.Buffer
	err = NewOptimizeCommand(cfg, nil, &stdout).Execute(context.Background())
	return stdout.String(), err
}

type planJSON struct {
	RunID       string `json:"runId"`
	GrandTotal  string `json:"grandTotal"`
	TotalUnits  int64  `json:"totalUnits"`
	UpperBound  string `json:"upperBound"`
	Suggestions []struct {
		ProductCode string `json:"productCode"`
		Quantity    int64  `json:"quantity"`
	} `json:"suggestions"`
}

func decodePlan(t *testing.T, out string) planJSON {
	t.Helper()
	var plan planJSON
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	return plan
}

func TestOptimizeCommand_CSVText(t *testing.T) {
	dir := writeBakery(t, bakeryCompositions)

	out, err := run(t, "--dir", dir, "--verbose")
	require.NoError(t, err)

	assert.Contains(t, out, "📈 Allocation Order:")
	assert.Contains(t, out, "📊 Production Plan Summary")
	assert.Contains(t, out, "Grand Total: 72.50")
	assert.Contains(t, out, "🏁 Production planning complete!")
}

func TestOptimizeCommand_CSVJSONWithBound(t *testing.T) {
	dir := writeBakery(t, bakeryCompositions)

	out, err := run(t, "--dir", dir, "--format", "json", "--bound")
	require.NoError(t, err)

	plan := decodePlan(t, out)
	assert.NotEmpty(t, plan.RunID)
	assert.Equal(t, "72.5", plan.GrandTotal)
	assert.Equal(t, int64(4), plan.TotalUnits)
	assert.NotEmpty(t, plan.UpperBound)
	require.Len(t, plan.Suggestions, 2)
	assert.Equal(t, "PRD002", plan.Suggestions[0].ProductCode)
	assert.Equal(t, int64(1), plan.Suggestions[0].Quantity)
	assert.Equal(t, "PRD001", plan.Suggestions[1].ProductCode)
	assert.Equal(t, int64(3), plan.Suggestions[1].Quantity)
}

func TestOptimizeCommand_DemandCapAndMissingCompositions(t *testing.T) {
	dir := writeBakery(t, bakeryCompositions)

	out, err := run(t, "--dir", dir, "--format", "json", "--cap", "2=0")
	require.NoError(t, err)
	plan := decodePlan(t, out)
	for _, s := range plan.Suggestions {
		assert.NotEqual(t, "PRD002", s.ProductCode)
	}

	// without compositions.csv every product is unconstrained and, uncapped, planned at zero
	require.NoError(t, os.Remove(filepath.Join(dir, "compositions.csv")))
	out, err = run(t, "--dir", dir, "--format", "json")
	require.NoError(t, err)
	plan = decodePlan(t, out)
	assert.Equal(t, "0", plan.GrandTotal)
	assert.Empty(t, plan.Suggestions)
}

func TestOptimizeCommand_ValidationError(t *testing.T) {
	dir := writeBakery(t, bakeryCompositions+"1,9,1\n")
	metricsFile := filepath.Join(t.TempDir(), "prodplan.prom")

	out, err := run(t, "--dir", dir, "--metrics-file", metricsFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error computing production plan")
	assert.Contains(t, out, "❌ product 1: composition references unknown raw material 9")

	content, readErr := os.ReadFile(metricsFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(content), `prodplan_optimizations_total{outcome="rejected"} 1`)
}

func TestOptimizeCommand_MissingCSVFile(t *testing.T) {
	_, err := run(t, "--raw-materials", "nope.csv", "--products", "nope.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog file not found: nope.csv")
}

func TestOptimizeCommand_CatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rawMaterials:
  - {id: 1, code: MP001, name: Steel, stockQuantity: 100}
products:
  - id: 1
    code: PRD001
    name: Bracket
    price: 10
    composition:
      - {rawMaterialId: 1, requiredQuantity: 10}
demandCaps:
  - {productId: 1, maxUnits: 4}
`), 0644))

	out, err := run(t, "--source", "file", "--catalog", path, "--format", "json")
	require.NoError(t, err)
	plan := decodePlan(t, out)
	assert.Equal(t, "40", plan.GrandTotal)

	// the command line cap replaces the document cap
	out, err = run(t, "--source", "file", "--catalog", path, "--format", "json", "--cap", "1=2", "--reserve", "1=90")
	require.NoError(t, err)
	plan = decodePlan(t, out)
	assert.Equal(t, "10", plan.GrandTotal)
}

func TestOptimizeCommand_SeedDatabaseAndSavePlan(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "plans.db")

	out, err := run(t, "--seed-only", "--db-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "Demo catalog loaded")

	out, err = run(t, "--seed-only", "--db-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "seeding skipped")

	out, err = run(t, "--source", "db", "--db-dsn", dsn, "--save-plan", "--format", "json")
	require.NoError(t, err)
	plan := decodePlan(t, out)
	assert.Equal(t, "72.5", plan.GrandTotal)
}

func TestOptimizeCommand_Help(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "prodplan - production plan optimizer")
	assert.Contains(t, out, "--metrics-file")
}

func TestGenerateCommand_Reproducible(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	for _, dir := range []string{first, second} {
		cmd := NewGenerateCommand(GenerateConfig{
			RawMaterials: 6, Products: 12, MaxLines: 4, Stock: 1.5, OutputDir: dir, Seed: 42,
		}, &bytes.Buffer{})
		require.NoError(t, cmd.Execute(context.Background()))
	}

	for _, name := range []string{"raw_materials.csv", "products.csv", "compositions.csv"} {
		a, err := os.ReadFile(filepath.Join(first, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, name))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), name)
	}

	// the generated catalog is a valid input
	out, err := run(t, "--dir", first, "--format", "json")
	require.NoError(t, err)
	decodePlan(t, out)
}

func TestGenerateCommand_Validation(t *testing.T) {
	err := NewGenerateCommand(GenerateConfig{Products: 1, RawMaterials: 1, MaxLines: 1, Stock: 1}, &bytes.Buffer{}).
		Execute(context.Background())
	assert.EqualError(t, err, "--output is required")

	err = NewGenerateCommand(GenerateConfig{OutputDir: t.TempDir(), Products: 1, RawMaterials: 1, MaxLines: 1}, &bytes.Buffer{}).
		Execute(context.Background())
	assert.EqualError(t, err, "--stock must be positive")
}

func TestNewGenerateFlagSet(t *testing.T) {
	var cfg GenerateConfig
	fs := NewGenerateFlagSet(&cfg)
	require.NoError(t, fs.Parse([]string{"--products", "7", "--output", "out", "--seed", "9"}))

	assert.Equal(t, 7, cfg.Products)
	assert.Equal(t, 20, cfg.RawMaterials)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, int64(9), cfg.Seed)
}

func TestOptimizeCommand_CatalogFileReservationsAdd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rawMaterials:
  - {id: 1, code: MP001, name: Steel, stockQuantity: 100}
products:
  - id: 1
    code: PRD001
    name: Bracket
    price: 10
    composition:
      - {rawMaterialId: 1, requiredQuantity: 10}
reservations:
  - {rawMaterialId: 1, quantity: 50}
`), 0644))

	out, err := run(t, "--source", "file", "--catalog", path, "--format", "json", "--reserve", "1=30")
	require.NoError(t, err)
	plan := decodePlan(t, out)
	assert.Equal(t, "20", plan.GrandTotal)
}

func TestOptimizeCommand_VerbosePrintsRunEvents(t *testing.T) {
	dir := writeBakery(t, bakeryCompositions)

	out, err := run(t, "--dir", dir, "--verbose")
	require.NoError(t, err)

	assert.Contains(t, out, "📜 Run Events:")
	assert.Contains(t, out, "optimization.started")
	assert.Contains(t, out, "PRD002 x1 = 35.00")
	assert.Contains(t, out, "PRD001 x3 = 37.50")
	assert.Contains(t, out, "grand_total=72.50 units=4")
}

func TestOptimizeCommand_VerbosePrintsRejection(t *testing.T) {
	dir := writeBakery(t, bakeryCompositions+"1,9,1\n")

	out, err := run(t, "--dir", dir, "--verbose")
	require.Error(t, err)
	assert.Contains(t, out, "optimization.rejected")
	assert.Contains(t, out, "reason=invalid catalog problems=1")
}

func TestOptimizeCommand_LogsRunEvents(t *testing.T) {
	dir := writeBakery(t, bakeryCompositions)
	t.Chdir(t.TempDir())

	cfg, err := config.Load([]string{"--dir", dir, "--format", "json"})
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	var stdout bytes.Buffer
	require.NoError(t, NewOptimizeCommand(cfg, zap.New(core), &stdout).Execute(context.Background()))

	entries := logs.FilterMessage("run event").All()
	require.Len(t, entries, 4, "started, two planned, completed")

	types := make(map[string]int)
	for _, entry := range entries {
		types[entry.ContextMap()["event_type"].(string)]++
	}
	assert.Equal(t, map[string]int{
		"optimization.started":   1,
		"production.planned":     2,
		"optimization.completed": 1,
	}, types)
}
