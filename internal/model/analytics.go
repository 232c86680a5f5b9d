package model

// SectorSlice is one group of the sector allocation split.
type SectorSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"` // percentage of total, 0..100
	Total float64 `json:"total"` // absolute market value
}

// RiskMetrics holds the volatility/beta figures derived from the snapshot
// series. Volatility is annualized and expressed in percent; the label
// buckets it for display (Low/Medium/High).
type RiskMetrics struct {
	Beta          float64 `json:"beta"`
	Volatility    string  `json:"volatility"`
	VolatilityPct float64 `json:"volatilityNum"`
}

// AnalyticsResponse is the payload of GET /api/analytics.
type AnalyticsResponse struct {
	Metrics          AnalyticsMetrics   `json:"metrics"`
	Sectors          []SectorSlice      `json:"sectors"`
	PerformanceGraph []PerformancePoint `json:"performance_graph"`
}

// AnalyticsMetrics is the headline metric block of the analytics payload.
type AnalyticsMetrics struct {
	XIRR        float64 `json:"xirr"`
	Beta        float64 `json:"beta"`
	Volatility  string  `json:"volatility"`
	HealthScore int     `json:"health_score"`
}

// HomeSummary is the landing-page roll-up: net worth plus the current
// month's spend against budget.
type HomeSummary struct {
	MonthlySpend  float64 `json:"monthly_spend"`
	MonthlyBudget float64 `json:"monthly_budget"`
	NetWorth      float64 `json:"net_worth"`
	Username      string  `json:"username"`
}
