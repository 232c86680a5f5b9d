package request

type CreateTradeRequest struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Type     string `json:"type"`
	Quantity string `json:"qty"`
	Price    string `json:"price"`
	Date     string `json:"date"`
}
