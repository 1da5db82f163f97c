package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
)

// CreateExpense persists a new expense and its share assignments.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var receipt any
	if expense.ReceiptRef != "" {
		receipt = expense.ReceiptRef
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, bill_id, description, amount, paid_by, receipt_ref, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.BillID, expense.Description, expense.Amount.String(),
		expense.PaidBy, receipt, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertShares(ctx, tx, expense.ID, expense.SharedBy); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its share assignments.
// The row and its shares are read in one transaction so a concurrent
// update cannot land between them.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	expense := &models.Expense{}
	var amount string
	var receipt sql.NullString

	err = tx.QueryRowContext(ctx,
		`SELECT id, bill_id, description, amount, paid_by, receipt_ref, created_at, updated_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.BillID, &expense.Description, &amount,
		&expense.PaidBy, &receipt, &expense.CreatedAt, &expense.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	expense.Amount, err = parseAmount(amount)
	if err != nil {
		return nil, err
	}
	if receipt.Valid {
		expense.ReceiptRef = receipt.String
	}

	expense.SharedBy, err = sharesFor(ctx, tx, expense.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return expense, nil
}

// UpdateExpense replaces an expense and its share assignments.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var receipt any
	if expense.ReceiptRef != "" {
		receipt = expense.ReceiptRef
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET description = ?, amount = ?, paid_by = ?, receipt_ref = ?, updated_at = ?
		 WHERE id = ?`,
		expense.Description, expense.Amount.String(), expense.PaidBy, receipt,
		expense.UpdatedAt, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check expense update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, ledger.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear expense shares: %w", err)
	}
	if err := insertShares(ctx, tx, expense.ID, expense.SharedBy); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense; shares cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check expense delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, ledger.ErrNotFound)
	}
	return nil
}

// ListExpensesByBill retrieves all expenses for a bill, newest first.
// Rows and their shares are read inside one transaction; balance
// computation depends on the result being a single consistent snapshot
// even while another caller is replacing an expense.
func (s *SQLiteStore) ListExpensesByBill(ctx context.Context, billID string) ([]*models.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, bill_id, description, amount, paid_by, receipt_ref, created_at, updated_at
		 FROM expenses WHERE bill_id = ? ORDER BY created_at DESC, id`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var amount string
		var receipt sql.NullString
		if err := rows.Scan(&expense.ID, &expense.BillID, &expense.Description, &amount,
			&expense.PaidBy, &receipt, &expense.CreatedAt, &expense.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.Amount, err = parseAmount(amount)
		if err != nil {
			return nil, err
		}
		if receipt.Valid {
			expense.ReceiptRef = receipt.String
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	for _, expense := range expenses {
		expense.SharedBy, err = sharesFor(ctx, tx, expense.ID)
		if err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return expenses, nil
}

func insertShares(ctx context.Context, tx *sql.Tx, expenseID string, sharedBy []string) error {
	for _, userID := range sharedBy {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, user_id) VALUES (?, ?)",
			expenseID, userID,
		); err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}
	return nil
}

func sharesFor(ctx context.Context, tx *sql.Tx, expenseID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT user_id FROM expense_shares WHERE expense_id = ? ORDER BY user_id",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		users = append(users, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return users, nil
}
