package entities

// RawMaterialID identifies a raw material in the catalog
type RawMaterialID int64

// ProductID identifies a finished product in the catalog
type ProductID int64

// Quantity represents an integer quantity value for discrete manufacturing units
type Quantity int64
