package services

import (
	"database/sql"
	"time"

	"harcama/internal/apperrors"
	"harcama/internal/models"

	"github.com/rs/zerolog"
)

// LedgerService owns every mutation of the balances table. Per-user writes
// are serialized by the InnoDB row lock on the user's balance row; writes
// for different users do not contend.
type LedgerService struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewLedgerService(db *sql.DB, logger zerolog.Logger) *LedgerService {
	return &LedgerService{
		db:     db,
		logger: logger,
	}
}

// lockBalance acquires an exclusive lock on the user's balance row,
// creating the row with 0 first if it does not exist.
func (s *LedgerService) lockBalance(tx *sql.Tx, userID int) (int64, error) {
	var current int64
	err := tx.QueryRow(
		"SELECT current_balance FROM balances WHERE user_id = ? FOR UPDATE",
		userID,
	).Scan(&current)

	if err == sql.ErrNoRows {
		_, err = tx.Exec("INSERT INTO balances (user_id, current_balance) VALUES (?, 0)", userID)
		if err != nil {
			return 0, apperrors.Dependency("failed to initialize balance", err)
		}
		err = tx.QueryRow(
			"SELECT current_balance FROM balances WHERE user_id = ? FOR UPDATE",
			userID,
		).Scan(&current)
	}

	if err != nil {
		return 0, apperrors.Dependency("failed to lock balance", err)
	}

	return current, nil
}

func (s *LedgerService) recordHistory(tx *sql.Tx, userID int, balance, change int64, expenseID *int) {
	_, err := tx.Exec(
		"INSERT INTO balance_history (user_id, balance, change_amount, expense_id) VALUES (?, ?, ?, ?)",
		userID, balance, change, expenseID,
	)
	if err != nil {
		s.logger.Warn().Err(err).Int("user_id", userID).Msg("Failed to record balance history (non-critical)")
	}
}

// RecordExpense appends an expense row and debits the user's balance as a
// single atomic unit. Overdraft is allowed: the balance may go negative.
func (s *LedgerService) RecordExpense(req *models.ExpenseRequest) (*models.Expense, error) {
	if req.UserID <= 0 {
		return nil, apperrors.Validationf("userId is required")
	}
	if req.Amount <= 0 {
		return nil, apperrors.Validationf("amount must be a positive integer")
	}
	if req.Category == "" || req.Description == "" {
		return nil, apperrors.Validationf("category and description are required")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, apperrors.Validationf("date must be a valid YYYY-MM-DD date")
	}

	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error().Err(err).Msg("Error starting expense transaction")
		return nil, apperrors.Dependency("failed to start transaction", err)
	}
	defer tx.Rollback()

	current, err := s.lockBalance(tx, req.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", req.UserID).Msg("Error locking balance for expense")
		return nil, err
	}

	result, err := tx.Exec(
		"INSERT INTO expenses (user_id, amount, category, description, date) VALUES (?, ?, ?, ?, ?)",
		req.UserID, req.Amount, req.Category, req.Description, req.Date,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", req.UserID).Msg("Error inserting expense")
		return nil, apperrors.Dependency("failed to insert expense", err)
	}

	expenseID, err := result.LastInsertId()
	if err != nil {
		return nil, apperrors.Dependency("failed to get expense ID", err)
	}

	_, err = tx.Exec(
		"UPDATE balances SET current_balance = current_balance - ? WHERE user_id = ?",
		req.Amount, req.UserID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", req.UserID).Msg("Error debiting balance")
		return nil, apperrors.Dependency("failed to update balance", err)
	}

	id := int(expenseID)
	s.recordHistory(tx, req.UserID, current-req.Amount, -req.Amount, &id)

	if err = tx.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("Error committing expense transaction")
		return nil, apperrors.Dependency("failed to commit transaction", err)
	}

	s.logger.Info().
		Int("expense_id", id).
		Int("user_id", req.UserID).
		Int64("amount", req.Amount).
		Int64("new_balance", current-req.Amount).
		Msg("Expense recorded")

	return &models.Expense{
		ID:          id,
		UserID:      req.UserID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	}, nil
}

// Deposit credits the user's balance, creating the row on first use. The
// upsert never resets an existing balance. Returns the post-increment value.
func (s *LedgerService) Deposit(userID int, amount int64) (int64, error) {
	if userID <= 0 {
		return 0, apperrors.Validationf("userId is required")
	}
	if amount <= 0 {
		return 0, apperrors.Validationf("amount must be a positive integer")
	}

	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error().Err(err).Msg("Error starting deposit transaction")
		return 0, apperrors.Dependency("failed to start transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO balances (user_id, current_balance) VALUES (?, 0) ON DUPLICATE KEY UPDATE current_balance = current_balance",
		userID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error ensuring balance row")
		return 0, apperrors.Dependency("failed to initialize balance", err)
	}

	_, err = tx.Exec(
		"UPDATE balances SET current_balance = current_balance + ? WHERE user_id = ?",
		amount, userID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error crediting balance")
		return 0, apperrors.Dependency("failed to update balance", err)
	}

	var balance int64
	err = tx.QueryRow("SELECT current_balance FROM balances WHERE user_id = ?", userID).Scan(&balance)
	if err != nil {
		return 0, apperrors.Dependency("failed to read balance", err)
	}

	s.recordHistory(tx, userID, balance, amount, nil)

	if err = tx.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("Error committing deposit transaction")
		return 0, apperrors.Dependency("failed to commit transaction", err)
	}

	s.logger.Info().
		Int("user_id", userID).
		Int64("amount", amount).
		Int64("new_balance", balance).
		Msg("Deposit completed")

	return balance, nil
}

// GetBalance returns the user's current balance, or 0 when no row exists.
func (s *LedgerService) GetBalance(userID int) (int64, error) {
	var balance int64
	err := s.db.QueryRow(
		"SELECT current_balance FROM balances WHERE user_id = ?",
		userID,
	).Scan(&balance)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error fetching balance")
		return 0, apperrors.Dependency("failed to fetch balance", err)
	}

	return balance, nil
}

// ListExpenses returns the user's expenses, most recent first, same-day
// entries ordered by descending id. Bounds are inclusive when supplied.
func (s *LedgerService) ListExpenses(userID int, from, to string) ([]*models.Expense, error) {
	if userID <= 0 {
		return nil, apperrors.Validationf("userId is required")
	}

	query := "SELECT id, user_id, amount, category, description, DATE_FORMAT(date, '%Y-%m-%d') FROM expenses WHERE user_id = ?"
	args := []interface{}{userID}

	if from != "" {
		query += " AND date >= ?"
		args = append(args, from)
	}
	if to != "" {
		query += " AND date <= ?"
		args = append(args, to)
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error fetching expenses")
		return nil, apperrors.Dependency("failed to fetch expenses", err)
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	for rows.Next() {
		var e models.Expense
		err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Description, &e.Date)
		if err != nil {
			return nil, apperrors.Dependency("failed to scan expense", err)
		}
		expenses = append(expenses, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Dependency("failed to iterate expenses", err)
	}

	return expenses, nil
}

// CalculateBalanceFromHistory recomputes the balance from the audit trail.
func (s *LedgerService) CalculateBalanceFromHistory(userID int) (int64, error) {
	var total int64
	err := s.db.QueryRow(
		"SELECT COALESCE(SUM(change_amount), 0) FROM balance_history WHERE user_id = ?",
		userID,
	).Scan(&total)

	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error calculating balance from history")
		return 0, apperrors.Dependency("failed to calculate balance from history", err)
	}

	return total, nil
}

// ReconcileBalance compares the materialized balance against the audit
// trail and logs any discrepancy. Read-only.
func (s *LedgerService) ReconcileBalance(userID int) error {
	current, err := s.GetBalance(userID)
	if err != nil {
		return err
	}

	calculated, err := s.CalculateBalanceFromHistory(userID)
	if err != nil {
		return err
	}

	if current != calculated {
		s.logger.Warn().
			Int("user_id", userID).
			Int64("current_balance", current).
			Int64("calculated_balance", calculated).
			Msg("Balance discrepancy detected")
	}

	return nil
}

// ListBalanceUserIDs returns every user with a balance row, for the
// reconciliation sweep.
func (s *LedgerService) ListBalanceUserIDs() ([]int, error) {
	rows, err := s.db.Query("SELECT user_id FROM balances")
	if err != nil {
		return nil, apperrors.Dependency("failed to list balances", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Dependency("failed to scan user id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Dependency("failed to iterate balances", err)
	}

	return ids, nil
}
