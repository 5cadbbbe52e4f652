package models

// Expense is an append-only ledger record. Date travels as YYYY-MM-DD,
// the way the frontend sends and renders it.
type Expense struct {
	ID          int    `json:"id"`
	UserID      int    `json:"userId"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type ExpenseRequest struct {
	UserID      int    `json:"userId"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}
