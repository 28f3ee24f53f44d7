// Package sql persists catalogs and production plans in a relational
// database through gorm.
package sql

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawMaterialModel is a row of raw_material
type RawMaterialModel struct {
	ID            int64           `gorm:"primaryKey"`
	Code          string          `gorm:"size:50;not null;uniqueIndex"`
	Name          string          `gorm:"size:255;not null"`
	StockQuantity decimal.Decimal `gorm:"type:numeric(15,4);not null"`
}

func (RawMaterialModel) TableName() string { return "raw_material" }

// ProductModel is a row of product
type ProductModel struct {
	ID           int64              `gorm:"primaryKey"`
	Code         string             `gorm:"size:50;not null;uniqueIndex"`
	Name         string             `gorm:"size:255;not null"`
	Price        decimal.Decimal    `gorm:"type:numeric(15,2);not null"`
	Compositions []CompositionModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (ProductModel) TableName() string { return "product" }

// CompositionModel is a row of product_composition
type CompositionModel struct {
	ID               int64           `gorm:"primaryKey"`
	ProductID        int64           `gorm:"not null;uniqueIndex:idx_product_material,priority:1"`
	RawMaterialID    int64           `gorm:"not null;uniqueIndex:idx_product_material,priority:2"`
	RequiredQuantity decimal.Decimal `gorm:"type:numeric(15,4);not null"`
}

func (CompositionModel) TableName() string { return "product_composition" }

// PlanModel is a row of production_plan
type PlanModel struct {
	ID            string                   `gorm:"primaryKey;size:36"`
	RunID         string                   `gorm:"size:64;not null;uniqueIndex"`
	GrandTotal    decimal.Decimal          `gorm:"type:numeric(18,2);not null"`
	TotalProducts int                      `gorm:"not null"`
	TotalUnits    int64                    `gorm:"not null"`
	UpperBound    *decimal.Decimal         `gorm:"type:numeric(18,6)"`
	Entries       []PlanEntryModel         `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
	Leftover      []PlanLeftoverModel      `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
	Unconstrained []PlanUnconstrainedModel `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
}

func (PlanModel) TableName() string { return "production_plan" }

// PlanEntryModel is a row of production_plan_entry
type PlanEntryModel struct {
	ID          int64           `gorm:"primaryKey"`
	PlanID      string          `gorm:"size:36;not null;index"`
	Position    int             `gorm:"not null"`
	ProductID   int64           `gorm:"not null"`
	ProductCode string          `gorm:"size:50;not null"`
	ProductName string          `gorm:"size:255;not null"`
	Quantity    int64           `gorm:"not null"`
	UnitValue   decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	TotalValue  decimal.Decimal `gorm:"type:numeric(18,2);not null"`
}

func (PlanEntryModel) TableName() string { return "production_plan_entry" }

// PlanLeftoverModel is a row of production_plan_leftover: the stock of one
// raw material left after the plan
type PlanLeftoverModel struct {
	ID            int64           `gorm:"primaryKey"`
	PlanID        string          `gorm:"size:36;not null;index"`
	Position      int             `gorm:"not null"`
	RawMaterialID int64           `gorm:"not null"`
	Code          string          `gorm:"size:50;not null"`
	Quantity      decimal.Decimal `gorm:"type:numeric(15,4);not null"`
}

func (PlanLeftoverModel) TableName() string { return "production_plan_leftover" }

// PlanUnconstrainedModel flags a product without composition in a plan
type PlanUnconstrainedModel struct {
	ID        int64  `gorm:"primaryKey"`
	PlanID    string `gorm:"size:36;not null;index"`
	Position  int    `gorm:"not null"`
	ProductID int64  `gorm:"not null"`
}

func (PlanUnconstrainedModel) TableName() string { return "production_plan_unconstrained" }

// AllModels lists every model in migration order
func AllModels() []interface{} {
	return []interface{}{
		&RawMaterialModel{}, &ProductModel{}, &CompositionModel{},
		&PlanModel{}, &PlanEntryModel{}, &PlanLeftoverModel{}, &PlanUnconstrainedModel{},
	}
}
