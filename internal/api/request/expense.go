package request

type CreateExpenseRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	Date        string  `json:"date,omitempty"`
}

type UpdateBudgetRequest struct {
	MonthlyBudget float64 `json:"monthlyBudget"`
}
