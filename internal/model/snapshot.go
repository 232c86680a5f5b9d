package model

import "time"

// PortfolioSnapshot is one materialized (date, value, invested) record in a
// user's reconstructed portfolio history. The full per-user set is a
// disposable projection: each backfill run deletes and rebuilds it
// atomically, and at most one snapshot exists per (user, date).
type PortfolioSnapshot struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Date           time.Time `json:"date"`
	TotalValue     float64   `json:"totalValue"`
	InvestedValue  float64   `json:"investedValue"`
	BenchmarkValue *float64  `json:"benchmarkValue,omitempty"`
}

// PerformancePoint is one entry of the performance graph returned by the
// analytics endpoint.
type PerformancePoint struct {
	Name      string   `json:"name"` // short label, e.g. "Jan-24"
	Date      string   `json:"date"` // ISO date
	Portfolio float64  `json:"portfolio"`
	Invested  float64  `json:"invested"`
	Benchmark *float64 `json:"benchmark,omitempty"`
}
