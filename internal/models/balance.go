package models

import "time"

type Balance struct {
	UserID         int       `json:"userId"`
	CurrentBalance int64     `json:"balance"`
	UpdatedAt      time.Time `json:"-"`
}

type BalanceHistory struct {
	ID           int       `json:"id"`
	UserID       int       `json:"userId"`
	Balance      int64     `json:"balance"`
	ChangeAmount int64     `json:"changeAmount"`
	ExpenseID    *int      `json:"expenseId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type DepositRequest struct {
	UserID int   `json:"userId"`
	Amount int64 `json:"amount"`
}
