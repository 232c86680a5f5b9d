package model

// User owns holdings, snapshots, and expenses. Authentication lives outside
// this service; handlers identify the caller by user id.
type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	MonthlyBudget float64 `json:"monthlyBudget"`
}
