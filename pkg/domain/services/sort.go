package services

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

func sortedMaterialIDs(m map[entities.RawMaterialID]decimal.Decimal) []entities.RawMaterialID {
	ids := make([]entities.RawMaterialID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedProductIDs(m map[entities.ProductID]entities.Quantity) []entities.ProductID {
	ids := make([]entities.ProductID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
