package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// SettlementService runs the settlement state machine:
//
//	Proposed -> Confirmed (recipient confirms, irreversible)
//	Proposed -> deleted   (recipient rejects)
//
// A settlement is an asserted payment; it is never validated against the
// computed balances and never feeds back into them.
type SettlementService struct {
	store  storage.Store
	events EventDirectory
	now    func() time.Time
}

// NewSettlementService creates a SettlementService over the given store
// and event directory.
func NewSettlementService(store storage.Store, events EventDirectory) *SettlementService {
	return &SettlementService{store: store, events: events, now: time.Now}
}

// ConfirmResult reports the outcome of a confirm call.
type ConfirmResult struct {
	Settlement *models.Settlement
	// AlreadyConfirmed is the soft no-op case: the settlement had been
	// confirmed before this call. Reported as a warning, not an error.
	AlreadyConfirmed bool
}

// Propose records a settlement asserted by the actor as payer. The
// recipient must differ from the payer and the amount must be positive;
// the amount is deliberately not checked against the computed balances.
func (s *SettlementService) Propose(ctx context.Context, actor, billID, toUser string, amount decimal.Decimal, notes string) (*models.Settlement, error) {
	if err := validateSettlementInput(actor, toUser, amount); err != nil {
		return nil, err
	}

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.CreatedBy != actor {
		allowed, err := s.isEventInsider(ctx, bill.EventID, actor)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("user %s may not record settlements on bill %s: %w", actor, billID, ledger.ErrPermissionDenied)
		}
	}

	settlement := &models.Settlement{
		BillID:   billID,
		FromUser: actor,
		ToUser:   toUser,
		Amount:   amount.Round(2),
		Notes:    notes,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("Propose settlement failed", "bill_id", billID, "error", err)
		return nil, err
	}

	slog.Info("Settlement proposed",
		"settlement_id", settlement.ID,
		"bill_id", billID,
		"from", actor,
		"to", toUser,
		"amount", settlement.Amount.String(),
	)
	return settlement, nil
}

// Confirm marks a settlement as confirmed. Only the recipient may
// confirm. Confirming an already-confirmed settlement is a no-op
// reported via AlreadyConfirmed; confirmation is irreversible.
func (s *SettlementService) Confirm(ctx context.Context, actor, settlementID string) (*ConfirmResult, error) {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if settlement.ToUser != actor {
		return nil, fmt.Errorf("only the recipient may confirm settlement %s: %w", settlementID, ledger.ErrPermissionDenied)
	}

	confirmedAt := s.now().Unix()
	won, err := s.store.ConfirmSettlement(ctx, settlementID, confirmedAt)
	if err != nil {
		return nil, err
	}
	if !won {
		slog.Warn("Settlement was already confirmed", "settlement_id", settlementID, "user", actor)
		return &ConfirmResult{Settlement: settlement, AlreadyConfirmed: true}, nil
	}

	settlement.IsConfirmed = true
	settlement.ConfirmedAt = confirmedAt
	slog.Info("Settlement confirmed", "settlement_id", settlementID, "by", actor)
	return &ConfirmResult{Settlement: settlement}, nil
}

// Reject deletes an unconfirmed settlement. Only the recipient may
// reject, and rejecting a confirmed settlement is an invalid state.
func (s *SettlementService) Reject(ctx context.Context, actor, settlementID string) error {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return err
	}
	if settlement.ToUser != actor {
		return fmt.Errorf("only the recipient may reject settlement %s: %w", settlementID, ledger.ErrPermissionDenied)
	}
	if settlement.IsConfirmed {
		return fmt.Errorf("settlement %s is confirmed and cannot be rejected: %w", settlementID, ledger.ErrInvalidState)
	}

	deleted, err := s.store.DeleteUnconfirmedSettlement(ctx, settlementID)
	if err != nil {
		return err
	}
	if !deleted {
		// Lost a race against a concurrent confirm.
		return fmt.Errorf("settlement %s is confirmed and cannot be rejected: %w", settlementID, ledger.ErrInvalidState)
	}

	slog.Info("Settlement rejected", "settlement_id", settlementID, "by", actor)
	return nil
}

func (s *SettlementService) isEventInsider(ctx context.Context, eventID, userID string) (bool, error) {
	owner, err := s.events.IsOwner(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check event owner: %w", err)
	}
	if owner {
		return true, nil
	}
	member, err := s.events.IsMember(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check event membership: %w", err)
	}
	return member, nil
}
