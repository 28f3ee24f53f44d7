// Package optimizer computes production plans from a catalog snapshot.
//
// The plan maximizes realized sale value subject to raw-material stock using
// a single-pass greedy allocation: products are ranked by value density
// (price over the scarcest-resource consumption ratio) and each one receives
// as many whole units as the remaining stock allows. The result is feasible,
// deterministic and reproducible, but not guaranteed optimal; UpperBound
// reports the LP relaxation value so callers can see the gap.
//
// The engine holds no state between calls and copies its inputs on entry.
package optimizer
