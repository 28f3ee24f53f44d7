package sql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vsinha/prodplan/pkg/domain/entities"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrPlanNotFound is returned when no plan is stored for a run
var ErrPlanNotFound = errors.New("production plan not found")

// Open connects to the database. driver is "sqlite" or "postgres".
func Open(driver, dsn string, debug bool) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}

	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q (use sqlite or postgres)", driver)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect %s database: %w", driver, err)
	}
	return db, nil
}

// Store reads catalog snapshots from and writes production plans to a database
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on an open connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the catalog and plan tables
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// Snapshot reads the whole catalog, ordered by id
func (s *Store) Snapshot(ctx context.Context) (entities.CatalogSnapshot, error) {
	var materials []RawMaterialModel
	if err := s.db.WithContext(ctx).Order("id").Find(&materials).Error; err != nil {
		return entities.CatalogSnapshot{}, fmt.Errorf("failed to read raw materials: %w", err)
	}

	var products []ProductModel
	err := s.db.WithContext(ctx).
		Preload("Compositions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("id").
		Find(&products).Error
	if err != nil {
		return entities.CatalogSnapshot{}, fmt.Errorf("failed to read products: %w", err)
	}

	snapshot := entities.CatalogSnapshot{
		RawMaterials: make([]entities.RawMaterial, 0, len(materials)),
		Products:     make([]entities.Product, 0, len(products)),
	}
	for _, m := range materials {
		snapshot.RawMaterials = append(snapshot.RawMaterials, entities.RawMaterial{
			ID:            entities.RawMaterialID(m.ID),
			Code:          m.Code,
			Name:          m.Name,
			StockQuantity: m.StockQuantity,
		})
	}
	for _, p := range products {
		product := entities.Product{
			ID:          entities.ProductID(p.ID),
			Code:        p.Code,
			Name:        p.Name,
			Price:       p.Price,
			Composition: make([]entities.CompositionLine, 0, len(p.Compositions)),
		}
		for _, c := range p.Compositions {
			product.Composition = append(product.Composition, entities.CompositionLine{
				RawMaterialID:    entities.RawMaterialID(c.RawMaterialID),
				RequiredQuantity: c.RequiredQuantity,
			})
		}
		snapshot.Products = append(snapshot.Products, product)
	}

	return snapshot, nil
}

// ImportSnapshot writes snapshot into empty catalog tables in one transaction
func (s *Store) ImportSnapshot(ctx context.Context, snapshot entities.CatalogSnapshot) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range snapshot.RawMaterials {
			row := RawMaterialModel{
				ID:            int64(m.ID),
				Code:          m.Code,
				Name:          m.Name,
				StockQuantity: m.StockQuantity,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to insert raw material %s: %w", m.Code, err)
			}
		}
		for _, p := range snapshot.Products {
			row := ProductModel{
				ID:    int64(p.ID),
				Code:  p.Code,
				Name:  p.Name,
				Price: p.Price,
			}
			for _, line := range p.Composition {
				row.Compositions = append(row.Compositions, CompositionModel{
					RawMaterialID:    int64(line.RawMaterialID),
					RequiredQuantity: line.RequiredQuantity,
				})
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to insert product %s: %w", p.Code, err)
			}
		}
		return nil
	})
}

// SavePlan stores the plan of one run with its entries in allocation order
func (s *Store) SavePlan(ctx context.Context, runID string, result *entities.OptimizationResult) error {
	if result == nil {
		return fmt.Errorf("cannot save nil plan for run %s", runID)
	}

	plan := PlanModel{
		ID:            uuid.NewString(),
		RunID:         runID,
		GrandTotal:    result.GrandTotal,
		TotalProducts: result.TotalProducts,
		TotalUnits:    int64(result.TotalUnits),
		UpperBound:    result.UpperBound,
	}
	for i, entry := range result.Entries {
		plan.Entries = append(plan.Entries, PlanEntryModel{
			Position:    i,
			ProductID:   int64(entry.ProductID),
			ProductCode: entry.ProductCode,
			ProductName: entry.ProductName,
			Quantity:    int64(entry.Quantity),
			UnitValue:   entry.UnitValue,
			TotalValue:  entry.TotalValue,
		})
	}
	for i, balance := range result.Leftover {
		plan.Leftover = append(plan.Leftover, PlanLeftoverModel{
			Position:      i,
			RawMaterialID: int64(balance.RawMaterialID),
			Code:          balance.Code,
			Quantity:      balance.Quantity,
		})
	}
	for i, productID := range result.Unconstrained {
		plan.Unconstrained = append(plan.Unconstrained, PlanUnconstrainedModel{
			Position:  i,
			ProductID: int64(productID),
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&plan).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save plan for run %s: %w", runID, err)
	}
	return nil
}

// LoadPlan reads back the plan stored for runID
func (s *Store) LoadPlan(ctx context.Context, runID string) (*entities.OptimizationResult, error) {
	var plan PlanModel
	err := s.db.WithContext(ctx).
		Preload("Entries", byPosition).
		Preload("Leftover", byPosition).
		Preload("Unconstrained", byPosition).
		Where("run_id = ?", runID).
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: run %s", ErrPlanNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan for run %s: %w", runID, err)
	}

	result := &entities.OptimizationResult{
		Entries:       make([]entities.ProductionPlanEntry, 0, len(plan.Entries)),
		GrandTotal:    plan.GrandTotal,
		TotalProducts: plan.TotalProducts,
		TotalUnits:    entities.Quantity(plan.TotalUnits),
		UpperBound:    plan.UpperBound,
		Leftover:      make([]entities.MaterialBalance, 0, len(plan.Leftover)),
		Unconstrained: make([]entities.ProductID, 0, len(plan.Unconstrained)),
	}
	for _, e := range plan.Entries {
		result.Entries = append(result.Entries, entities.ProductionPlanEntry{
			ProductID:   entities.ProductID(e.ProductID),
			ProductCode: e.ProductCode,
			ProductName: e.ProductName,
			Quantity:    entities.Quantity(e.Quantity),
			UnitValue:   e.UnitValue,
			TotalValue:  e.TotalValue,
		})
	}
	for _, l := range plan.Leftover {
		result.Leftover = append(result.Leftover, entities.MaterialBalance{
			RawMaterialID: entities.RawMaterialID(l.RawMaterialID),
			Code:          l.Code,
			Quantity:      l.Quantity,
		})
	}
	for _, u := range plan.Unconstrained {
		result.Unconstrained = append(result.Unconstrained, entities.ProductID(u.ProductID))
	}
	return result, nil
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
