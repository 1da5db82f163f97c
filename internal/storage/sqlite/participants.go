package sqlite

import (
	"context"
	"fmt"
	"time"
)

// EnsureParticipant enrolls the user in the bill if not already
// enrolled. The (bill, user) primary key makes re-enrollment a no-op.
func (s *SQLiteStore) EnsureParticipant(ctx context.Context, billID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bill_participants (bill_id, user_id, joined_at) VALUES (?, ?, ?)
		 ON CONFLICT (bill_id, user_id) DO NOTHING`,
		billID, userID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to ensure participant: %w", err)
	}
	return nil
}

// ListParticipants returns the user IDs enrolled in a bill.
func (s *SQLiteStore) ListParticipants(ctx context.Context, billID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM bill_participants WHERE bill_id = ? ORDER BY joined_at, user_id",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		users = append(users, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return users, nil
}
