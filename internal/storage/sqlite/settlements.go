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

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	var notes any
	if settlement.Notes != "" {
		notes = settlement.Notes
	}
	var confirmedAt any
	if settlement.ConfirmedAt != 0 {
		confirmedAt = settlement.ConfirmedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, bill_id, from_user, to_user, amount, notes, is_confirmed, confirmed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.BillID, settlement.FromUser, settlement.ToUser,
		settlement.Amount.String(), notes, boolToInt(settlement.IsConfirmed),
		confirmedAt, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var amount string
	var notes sql.NullString
	var confirmed int
	var confirmedAt sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, bill_id, from_user, to_user, amount, notes, is_confirmed, confirmed_at, created_at
		 FROM settlements WHERE id = ?`,
		settlementID,
	).Scan(&settlement.ID, &settlement.BillID, &settlement.FromUser, &settlement.ToUser,
		&amount, &notes, &confirmed, &confirmedAt, &settlement.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	settlement.Amount, err = parseAmount(amount)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		settlement.Notes = notes.String
	}
	settlement.IsConfirmed = confirmed != 0
	if confirmedAt.Valid {
		settlement.ConfirmedAt = confirmedAt.Int64
	}
	return settlement, nil
}

// ConfirmSettlement atomically flips an unconfirmed settlement to
// confirmed. The conditional update is the single-writer guard: of two
// racing confirms exactly one observes a row change.
func (s *SQLiteStore) ConfirmSettlement(ctx context.Context, settlementID string, confirmedAt int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE settlements SET is_confirmed = 1, confirmed_at = ? WHERE id = ? AND is_confirmed = 0",
		confirmedAt, settlementID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to confirm settlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check settlement confirm: %w", err)
	}
	return n == 1, nil
}

// DeleteUnconfirmedSettlement removes a settlement only while it is
// unconfirmed. Confirmed settlements are immutable.
func (s *SQLiteStore) DeleteUnconfirmedSettlement(ctx context.Context, settlementID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM settlements WHERE id = ? AND is_confirmed = 0",
		settlementID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete settlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check settlement delete: %w", err)
	}
	return n == 1, nil
}

// ListSettlementsByBill retrieves all settlements for a bill, newest first.
func (s *SQLiteStore) ListSettlementsByBill(ctx context.Context, billID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, bill_id, from_user, to_user, amount, notes, is_confirmed, confirmed_at, created_at
		 FROM settlements WHERE bill_id = ? ORDER BY created_at DESC, id`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement := &models.Settlement{}
		var amount string
		var notes sql.NullString
		var confirmed int
		var confirmedAt sql.NullInt64

		if err := rows.Scan(&settlement.ID, &settlement.BillID, &settlement.FromUser,
			&settlement.ToUser, &amount, &notes, &confirmed, &confirmedAt,
			&settlement.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}

		settlement.Amount, err = parseAmount(amount)
		if err != nil {
			return nil, err
		}
		if notes.Valid {
			settlement.Notes = notes.String
		}
		settlement.IsConfirmed = confirmed != 0
		if confirmedAt.Valid {
			settlement.ConfirmedAt = confirmedAt.Int64
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}
