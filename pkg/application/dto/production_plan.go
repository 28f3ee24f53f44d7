package dto

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// ProductionSuggestion is one line of the suggested production plan
type ProductionSuggestion struct {
	ProductID   int64           `json:"productId"`
	ProductCode string          `json:"productCode"`
	ProductName string          `json:"productName"`
	Quantity    int64           `json:"quantity"`
	UnitValue   decimal.Decimal `json:"unitValue"`
	TotalValue  decimal.Decimal `json:"totalValue"`
}

// MaterialBalance is the stock of a raw material left after the plan
type MaterialBalance struct {
	RawMaterialID int64           `json:"rawMaterialId"`
	Code          string          `json:"code"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// ProductionPlanResponse is the serialized form of an optimization result.
// Decimals are encoded as JSON strings so no precision is lost.
type ProductionPlanResponse struct {
	RunID         string                 `json:"runId,omitempty"`
	Suggestions   []ProductionSuggestion `json:"suggestions"`
	GrandTotal    decimal.Decimal        `json:"grandTotal"`
	TotalProducts int                    `json:"totalProducts"`
	TotalUnits    int64                  `json:"totalUnits"`
	UpperBound    *decimal.Decimal       `json:"upperBound,omitempty"`
	Leftover      []MaterialBalance      `json:"leftover"`
	Unconstrained []int64                `json:"unconstrained,omitempty"`
}

// NewProductionPlanResponse converts result; slices are never nil so empty
// plans encode as [] rather than null
func NewProductionPlanResponse(runID string, result *entities.OptimizationResult) *ProductionPlanResponse {
	resp := &ProductionPlanResponse{
		RunID:         runID,
		Suggestions:   make([]ProductionSuggestion, 0, len(result.Entries)),
		GrandTotal:    result.GrandTotal,
		TotalProducts: result.TotalProducts,
		TotalUnits:    int64(result.TotalUnits),
		UpperBound:    result.UpperBound,
		Leftover:      make([]MaterialBalance, 0, len(result.Leftover)),
	}

	for _, entry := range result.Entries {
		resp.Suggestions = append(resp.Suggestions, ProductionSuggestion{
			ProductID:   int64(entry.ProductID),
			ProductCode: entry.ProductCode,
			ProductName: entry.ProductName,
			Quantity:    int64(entry.Quantity),
			UnitValue:   entry.UnitValue,
			TotalValue:  entry.TotalValue,
		})
	}
	for _, balance := range result.Leftover {
		resp.Leftover = append(resp.Leftover, MaterialBalance{
			RawMaterialID: int64(balance.RawMaterialID),
			Code:          balance.Code,
			Quantity:      balance.Quantity,
		})
	}
	for _, id := range result.Unconstrained {
		resp.Unconstrained = append(resp.Unconstrained, int64(id))
	}

	return resp
}
