package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
)

// parseAmount converts a stored TEXT amount back into a decimal.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse stored amount %q: %w", s, err)
	}
	return d, nil
}

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if bill.CreatedAt == 0 {
		bill.CreatedAt = now
	}
	if bill.UpdatedAt == 0 {
		bill.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (id, event_id, title, description, total_amount, is_settled, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.EventID, bill.Title, bill.Description, bill.TotalAmount.String(),
		boolToInt(bill.IsSettled), bill.CreatedBy, bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by its ID.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, event_id, title, description, total_amount, is_settled, created_by, created_at, updated_at
		 FROM bills WHERE id = ?`,
		billID,
	)
	bill, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill %s: %w", billID, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// UpdateBill updates an existing bill.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	bill.UpdatedAt = time.Now().Unix()

	res, err := s.db.ExecContext(ctx,
		`UPDATE bills SET event_id = ?, title = ?, description = ?, total_amount = ?, is_settled = ?, updated_at = ?
		 WHERE id = ?`,
		bill.EventID, bill.Title, bill.Description, bill.TotalAmount.String(),
		boolToInt(bill.IsSettled), bill.UpdatedAt, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check bill update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", bill.ID, ledger.ErrNotFound)
	}
	return nil
}

// DeleteBill removes a bill; foreign keys cascade to expenses,
// settlements, and participants.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check bill delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", billID, ledger.ErrNotFound)
	}
	return nil
}

// ListBillsForUser returns bills the user created, participates in, or
// that belong to one of the given event IDs, newest first.
func (s *SQLiteStore) ListBillsForUser(ctx context.Context, userID string, eventIDs []string) ([]*models.Bill, error) {
	query := `SELECT id, event_id, title, description, total_amount, is_settled, created_by, created_at, updated_at
	 FROM bills
	 WHERE created_by = ?
	    OR id IN (SELECT bill_id FROM bill_participants WHERE user_id = ?)`
	args := []any{userID, userID}

	if len(eventIDs) > 0 {
		query += " OR event_id IN (?" + strings.Repeat(", ?", len(eventIDs)-1) + ")"
		for _, id := range eventIDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var total string
	var settled int
	if err := row.Scan(&bill.ID, &bill.EventID, &bill.Title, &bill.Description,
		&total, &settled, &bill.CreatedBy, &bill.CreatedAt, &bill.UpdatedAt); err != nil {
		return nil, err
	}
	amount, err := parseAmount(total)
	if err != nil {
		return nil, err
	}
	bill.TotalAmount = amount
	bill.IsSettled = settled != 0
	return bill, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
