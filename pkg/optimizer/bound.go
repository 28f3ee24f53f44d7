package optimizer

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const simplexTolerance = 1e-10

// UpperBound returns the value of the continuous relaxation of the plan:
//
//	max  sum(price_j * x_j)
//	s.t. sum_j(required_ij * x_j) <= stock_i   for every raw material i
//	     x_j <= cap_j                          for every capped product j
//	     x_j >= 0
//
// No integer plan can be worth more. Products with an empty composition
// contribute price*cap when capped and nothing otherwise, as in Allocate.
func UpperBound(catalog *Catalog, stock StockVector, caps map[entities.ProductID]entities.Quantity) (decimal.Decimal, error) {
	constant := decimal.Zero
	var constrained []entities.Product
	for _, product := range catalog.products {
		if product.HasComposition() {
			constrained = append(constrained, product)
			continue
		}
		if limit, ok := caps[product.ID]; ok && limit > 0 {
			constant = constant.Add(product.Price.Mul(decimal.NewFromInt(int64(limit))))
		}
	}
	if len(constrained) == 0 || len(catalog.materials) == 0 {
		return constant, nil
	}

	var capped []int
	for j, product := range constrained {
		if _, ok := caps[product.ID]; ok {
			capped = append(capped, j)
		}
	}

	// Equality form with one slack column per row: [W | I] [x; s] = b.
	rows := len(catalog.materials) + len(capped)
	cols := len(constrained) + rows
	A := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)

	for j, product := range constrained {
		c[j] = -product.Price.InexactFloat64()
	}
	for i, material := range catalog.materials {
		for j, product := range constrained {
			A.Set(i, j, catalog.Consumption(product.ID, material.ID).InexactFloat64())
		}
		A.Set(i, len(constrained)+i, 1)
		b[i] = stock[material.ID].InexactFloat64()
	}
	for k, j := range capped {
		row := len(catalog.materials) + k
		A.Set(row, j, 1)
		A.Set(row, len(constrained)+row, 1)
		b[row] = float64(caps[constrained[j].ID])
	}

	// The slack columns form an identity basis that is feasible because stock
	// and caps are never negative.
	basis := make([]int, rows)
	for i := range basis {
		basis[i] = len(constrained) + i
	}

	optF, _, err := lp.Simplex(c, A, b, simplexTolerance, basis)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to solve LP relaxation: %w", err)
	}

	return decimal.NewFromFloat(-optF).Round(6).Add(constant), nil
}
