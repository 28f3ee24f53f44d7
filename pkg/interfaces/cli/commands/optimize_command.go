package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/application/dto"
	"github.com/vsinha/prodplan/pkg/application/services"
	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
	domainservices "github.com/vsinha/prodplan/pkg/domain/services"
	"github.com/vsinha/prodplan/pkg/infrastructure/events"
	"github.com/vsinha/prodplan/pkg/infrastructure/metrics"
	"github.com/vsinha/prodplan/pkg/infrastructure/repositories/catalogfile"
	"github.com/vsinha/prodplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/prodplan/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/prodplan/pkg/infrastructure/repositories/sql"
	"github.com/vsinha/prodplan/pkg/interfaces/cli/config"
	"github.com/vsinha/prodplan/pkg/interfaces/cli/output"
	"github.com/vsinha/prodplan/pkg/optimizer"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OptimizeCommand loads a catalog, computes the production plan and
// renders it
type OptimizeCommand struct {
	config *config.Config
	logger *zap.Logger
	stdout io.Writer
}

// NewOptimizeCommand creates the command. A nil logger discards logs and a
// nil stdout means os.Stdout.
func NewOptimizeCommand(cfg *config.Config, logger *zap.Logger, stdout io.Writer) *OptimizeCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	return &OptimizeCommand{config: cfg, logger: logger, stdout: stdout}
}

// Execute runs the command
func (c *OptimizeCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if c.config.SeedOnly {
		return c.seed(ctx)
	}

	var db *gorm.DB
	if c.config.Source.Kind == config.SourceDB || c.config.Optimizer.SavePlan {
		var err error
		db, err = c.openDatabase(ctx)
		if err != nil {
			return err
		}
		defer closeDatabase(db)
	}

	source, req, err := c.resolveSource(ctx, db)
	if err != nil {
		return err
	}

	// command line caps replace a catalog document's cap for the same product,
	// command line reservations add to the document's
	caps, err := c.config.DemandCaps()
	if err != nil {
		return err
	}
	if len(caps) > 0 && req.DemandCaps == nil {
		req.DemandCaps = make(map[entities.ProductID]entities.Quantity, len(caps))
	}
	for id, units := range caps {
		req.DemandCaps[id] = units
	}

	reservation, err := c.config.Reservation()
	if err != nil {
		return err
	}
	if len(reservation) > 0 && req.Reservation == nil {
		req.Reservation = make(map[entities.RawMaterialID]decimal.Decimal, len(reservation))
	}
	for id, qty := range reservation {
		req.Reservation[id] = req.Reservation[id].Add(qty)
	}
	req.SavePlan = c.config.Optimizer.SavePlan

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		return err
	}

	eventStore := events.NewInMemoryEventStore(c.logger)
	defer eventStore.Drain()
	if err := subscribeEventLog(eventStore, c.logger); err != nil {
		return err
	}

	engine := optimizer.NewEngineWithConfig(optimizer.EngineConfig{
		ComputeBound: c.config.Optimizer.Bound,
		Logger:       c.logger,
	})

	opts := []services.Option{
		services.WithEngine(engine),
		services.WithEventStore(eventStore),
		services.WithRecorder(recorder),
		services.WithLogger(c.logger),
	}
	if db != nil {
		opts = append(opts, services.WithPlanRepository(sql.NewStore(db)))
	}
	service := services.NewOptimizationService(source, opts...)

	if c.config.Output.Verbose {
		if err := c.printRanking(ctx, source, engine); err != nil {
			return err
		}
	}

	run, runErr := service.Optimize(ctx, req)

	if c.config.Output.Verbose {
		if err := printRunEvents(c.stdout, eventStore); err != nil {
			return err
		}
	}

	if c.config.Metrics.File != "" {
		if err := metrics.WriteTextfile(c.config.Metrics.File, registry); err != nil {
			c.logger.Warn("failed to write metrics", zap.Error(err))
		}
	}

	if runErr != nil {
		var validationErr *domainservices.ValidationError
		if errors.As(runErr, &validationErr) {
			for _, problem := range validationErr.Errors {
				fmt.Fprintf(c.stdout, "❌ %s\n", problem)
			}
		}
		return fmt.Errorf("error computing production plan: %w", runErr)
	}

	err = output.Generate(dto.NewProductionPlanResponse(run.RunID, run.Result), output.Config{
		Format:    c.config.Output.Format,
		OutputDir: c.config.Output.Dir,
		Verbose:   c.config.Output.Verbose,
		Duration:  run.Duration,
		Source:    req.SourceName,
		Writer:    c.stdout,
	})
	if err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.Output.Verbose {
		if run.Saved {
			fmt.Fprintf(c.stdout, "💾 Plan stored as run %s\n", run.RunID)
		}
		fmt.Fprintln(c.stdout, "🏁 Production planning complete!")
	}
	return nil
}

// resolveSource builds the catalog source. Reservations and demand caps
// declared inside a catalog document are returned in the request.
func (c *OptimizeCommand) resolveSource(ctx context.Context, db *gorm.DB) (repositories.CatalogSource, services.OptimizationRequest, error) {
	req := services.OptimizationRequest{SourceName: c.config.Source.Kind}

	switch c.config.Source.Kind {
	case config.SourceCSV:
		files := c.csvFiles()
		for _, path := range []string{files.rawMaterials, files.products} {
			if _, err := os.Stat(path); err != nil {
				return nil, req, fmt.Errorf("catalog file not found: %s", path)
			}
		}
		if files.compositions != "" {
			if _, err := os.Stat(files.compositions); err != nil {
				if !files.optionalCompositions || !os.IsNotExist(err) {
					return nil, req, fmt.Errorf("catalog file not found: %s", files.compositions)
				}
				files.compositions = ""
			}
		}

		snapshot, err := csv.NewLoader().LoadCatalog(files.rawMaterials, files.products, files.compositions)
		if err != nil {
			return nil, req, fmt.Errorf("error loading catalog: %w", err)
		}
		req.SourceName = "csv:" + files.products
		return memory.NewCatalogSourceFromSnapshot(snapshot), req, nil

	case config.SourceFile:
		doc, err := catalogfile.Load(c.config.Source.CatalogFile)
		if err != nil {
			return nil, req, fmt.Errorf("error loading catalog: %w", err)
		}
		snapshot, err := doc.Snapshot()
		if err != nil {
			return nil, req, fmt.Errorf("error loading catalog: %w", err)
		}
		req.Reservation = doc.Reservation()
		req.DemandCaps = doc.DemandCaps()
		req.SourceName = "file:" + c.config.Source.CatalogFile
		return memory.NewCatalogSourceFromSnapshot(snapshot), req, nil

	case config.SourceDB:
		req.SourceName = "db:" + c.config.Database.Driver
		return sql.NewStore(db), req, nil

	default:
		return nil, req, fmt.Errorf("unsupported source %q", c.config.Source.Kind)
	}
}

type csvFiles struct {
	rawMaterials, products, compositions string
	// compositions.csv may be absent from a catalog directory
	optionalCompositions bool
}

func (c *OptimizeCommand) csvFiles() csvFiles {
	src := c.config.Source
	if src.Dir != "" {
		files := csvFiles{
			rawMaterials: filepath.Join(src.Dir, "raw_materials.csv"),
			products:     filepath.Join(src.Dir, "products.csv"),
			compositions: filepath.Join(src.Dir, "compositions.csv"),

			optionalCompositions: true,
		}
		// explicit files win over the directory layout
		if src.RawMaterialsFile != "" {
			files.rawMaterials = src.RawMaterialsFile
		}
		if src.ProductsFile != "" {
			files.products = src.ProductsFile
		}
		if src.CompositionsFile != "" {
			files.compositions = src.CompositionsFile
			files.optionalCompositions = false
		}
		return files
	}
	return csvFiles{
		rawMaterials: src.RawMaterialsFile,
		products:     src.ProductsFile,
		compositions: src.CompositionsFile,
	}
}

func (c *OptimizeCommand) openDatabase(ctx context.Context) (*gorm.DB, error) {
	db, err := sql.Open(c.config.Database.Driver, c.config.Database.DSN, c.config.Database.Debug)
	if err != nil {
		return nil, err
	}
	if err := sql.NewStore(db).Migrate(ctx); err != nil {
		closeDatabase(db)
		return nil, err
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (c *OptimizeCommand) seed(ctx context.Context) error {
	db, err := c.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	seeded, err := sql.NewStore(db).Seed(ctx)
	if err != nil {
		return err
	}
	if seeded {
		c.logger.Info("demo catalog seeded", zap.String("driver", c.config.Database.Driver))
		fmt.Fprintln(c.stdout, "✅ Demo catalog loaded: 5 raw materials, 3 products")
	} else {
		fmt.Fprintln(c.stdout, "✅ Database already holds a catalog, seeding skipped")
	}
	return nil
}

func (c *OptimizeCommand) printRanking(ctx context.Context, source repositories.CatalogSource, engine *optimizer.Engine) error {
	snapshot, err := source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	fmt.Fprintf(c.stdout, "🚀 Production Planner\n")
	fmt.Fprintf(c.stdout, "Catalog: %d raw materials, %d products\n\n", len(snapshot.RawMaterials), len(snapshot.Products))

	ranking, err := engine.Explain(snapshot)
	if err != nil {
		// the run itself reports validation problems
		return nil
	}
	fmt.Fprintf(c.stdout, "📈 Allocation Order:\n")
	fmt.Fprintf(c.stdout, "%-4s %-12s %-30s %-14s\n", "#", "Code", "Product", "Density")
	for i, r := range ranking {
		density := r.Density.StringFixed(4)
		if r.Unconstrained {
			density = "unconstrained"
		}
		fmt.Fprintf(c.stdout, "%-4d %-12s %-30s %-14s\n", i+1, r.Product.Code, r.Product.Name, density)
	}
	fmt.Fprintln(c.stdout)
	return nil
}

// showHelp displays the help message
func (c *OptimizeCommand) showHelp() {
	fmt.Fprintf(c.stdout, `prodplan - production plan optimizer

Suggests how many units of each product to manufacture from the raw
materials in stock so that the total sale value is as high as possible.

USAGE:
    prodplan --dir <directory>                  # CSV catalog directory
    prodplan --source file --catalog <file>     # YAML or JSON catalog
    prodplan --source db --db-dsn <dsn>         # catalog tables in a database
    prodplan --seed-only --db-dsn <dsn>         # load the demo catalog
    prodplan generate --output <dir>            # random CSV catalog

OPTIONS:
`)
	fs := config.NewFlagSet()
	fs.SetOutput(c.stdout)
	fs.PrintDefaults()
	fmt.Fprintf(c.stdout, `
CSV FILE FORMATS:

raw_materials.csv:
    id,code,name,stock_quantity
    1,MP001,Wheat Flour,1000

products.csv:
    id,code,name,price
    1,PRD001,French Bread,12.50

compositions.csv:
    product_id,raw_material_id,required_quantity
    1,1,200

ENVIRONMENT:
    Every option can be set as PRODPLAN_<SECTION>_<KEY>, for example
    PRODPLAN_OUTPUT_FORMAT=json or PRODPLAN_DATABASE_DSN=..., and in
    prodplan.yaml. A .env file in the working directory is loaded first.

EXAMPLES:
    prodplan --dir examples/bakery --verbose
    prodplan --dir examples/bakery --bound --format json
    prodplan --source file --catalog catalog.yaml --cap 2=1 --reserve 1=100
    prodplan --source db --db-driver postgres --db-dsn "host=localhost user=app dbname=plans" --save-plan
`)
}
