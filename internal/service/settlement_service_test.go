package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
)

func setupSettlementService(t *testing.T) (*SettlementService, *BillService, *models.Bill) {
	t.Helper()
	events := newFakeEvents()
	events.addEvent("trip", "alice", true, "alice", "bob", "carol")
	store := newTestStore(t)

	bills := NewBillService(store, events)
	bill, err := bills.CreateBill(context.Background(), "alice", "trip", "Cabin weekend", "")
	require.NoError(t, err)

	return NewSettlementService(store, events), bills, bill
}

func TestProposeSettlement(t *testing.T) {
	ctx := context.Background()

	t.Run("payer records a pending settlement", func(t *testing.T) {
		svc, _, bill := setupSettlementService(t)
		settlement, err := svc.Propose(ctx, "carol", bill.ID, "bob", dec("14.83"), "venmo")
		require.NoError(t, err)
		assert.Equal(t, "carol", settlement.FromUser)
		assert.Equal(t, "bob", settlement.ToUser)
		assert.False(t, settlement.IsConfirmed)
		assert.True(t, settlement.Amount.Equal(dec("14.83")))
	})

	t.Run("amount is not checked against balances", func(t *testing.T) {
		// No expenses exist, yet any positive amount may be recorded.
		svc, _, bill := setupSettlementService(t)
		_, err := svc.Propose(ctx, "carol", bill.ID, "bob", dec("999.99"), "")
		assert.NoError(t, err)
	})

	t.Run("self transfer is a validation error", func(t *testing.T) {
		svc, _, bill := setupSettlementService(t)
		_, err := svc.Propose(ctx, "carol", bill.ID, "carol", dec("5.00"), "")
		assert.True(t, ledger.IsValidation(err))
	})

	t.Run("non-positive amount is a validation error", func(t *testing.T) {
		svc, _, bill := setupSettlementService(t)
		_, err := svc.Propose(ctx, "carol", bill.ID, "bob", dec("0"), "")
		assert.True(t, ledger.IsValidation(err))
	})

	t.Run("outsider is denied", func(t *testing.T) {
		svc, _, bill := setupSettlementService(t)
		_, err := svc.Propose(ctx, "mallory", bill.ID, "bob", dec("5.00"), "")
		assert.True(t, errors.Is(err, ledger.ErrPermissionDenied))
	})

	t.Run("unknown bill is NotFound", func(t *testing.T) {
		svc, _, _ := setupSettlementService(t)
		_, err := svc.Propose(ctx, "carol", "nope", "bob", dec("5.00"), "")
		assert.True(t, errors.Is(err, ledger.ErrNotFound))
	})
}

func TestConfirmSettlement(t *testing.T) {
	ctx := context.Background()

	propose := func(t *testing.T, svc *SettlementService, billID string) *models.Settlement {
		t.Helper()
		settlement, err := svc.Propose(ctx, "carol", billID, "bob", dec("14.83"), "")
		require.NoError(t, err)
		return settlement
	}

	t.Run("recipient confirms", func(t *testing.T) {
		svc, _, bill := setupSettlementService(t)
		settlement := propose(t, svc, bill.ID)

		res, err := svc.Confirm(ctx, "bob", settlement.ID)
		require.NoError(t, err)
		assert.False(t, res.AlreadyConfirmed)
		assert.True(t, res.Settlement.IsConfirmed)
		assert.NotZero(t, res.Settlement.ConfirmedAt)
	})

	t.Run("re-confirm is a warning, not an error", func(t *testing.T) {
		svc, _, bill := setupSettlementService(t)
		settlement := propose(t, svc, bill.ID)

		_, err := svc.Confirm(ctx, "bob", settlement.ID)
		require.NoError(t, err)

		res, err := svc.Confirm(ctx, "bob", settlement.ID)
		require.NoError(t, err)
		assert.True(t, res.AlreadyConfirmed)
	})

	t.Run("only the recipient may confirm", func(t *testing.T) {
		svc, _, bill := setupSettlementService(t)
		settlement := propose(t, svc, bill.ID)

		_, err := svc.Confirm(ctx, "carol", settlement.ID)
		assert.True(t, errors.Is(err, ledger.ErrPermissionDenied))

		_, err = svc.Confirm(ctx, "alice", settlement.ID)
		assert.True(t, errors.Is(err, ledger.ErrPermissionDenied))
	})

	t.Run("unknown settlement is NotFound", func(t *testing.T) {
		svc, _, _ := setupSettlementService(t)
		_, err := svc.Confirm(ctx, "bob", "nope")
		assert.True(t, errors.Is(err, ledger.ErrNotFound))
	})
}

func TestRejectSettlement(t *testing.T) {
	ctx := context.Background()

	t.Run("recipient rejects a pending settlement, record is deleted", func(t *testing.T) {
		svc, _, bill := setupSettlementService(t)
		settlement, err := svc.Propose(ctx, "carol", bill.ID, "bob", dec("14.83"), "")
		require.NoError(t, err)

		require.NoError(t, svc.Reject(ctx, "bob", settlement.ID))

		_, err = svc.Confirm(ctx, "bob", settlement.ID)
		assert.True(t, errors.Is(err, ledger.ErrNotFound))
	})

	t.Run("rejecting a confirmed settlement is invalid state", func(t *testing.T) {
		svc, _, bill := setupSettlementService(t)
		settlement, err := svc.Propose(ctx, "carol", bill.ID, "bob", dec("14.83"), "")
		require.NoError(t, err)
		_, err = svc.Confirm(ctx, "bob", settlement.ID)
		require.NoError(t, err)

		err = svc.Reject(ctx, "bob", settlement.ID)
		assert.True(t, errors.Is(err, ledger.ErrInvalidState))
	})

	t.Run("only the recipient may reject", func(t *testing.T) {
		svc, _, bill := setupSettlementService(t)
		settlement, err := svc.Propose(ctx, "carol", bill.ID, "bob", dec("14.83"), "")
		require.NoError(t, err)

		err = svc.Reject(ctx, "carol", settlement.ID)
		assert.True(t, errors.Is(err, ledger.ErrPermissionDenied))
	})
}

// Confirmed settlements stay out of the balance calculation: the bill
// detail exposes them alongside, never folded in.
func TestSettlementsDoNotAffectBalances(t *testing.T) {
	ctx := context.Background()
	svc, bills, bill := setupSettlementService(t)

	_, err := bills.AddExpense(ctx, "bob", bill.ID, ExpenseInput{
		Description: "Groceries", Amount: dec("30.00"), PaidBy: "bob",
		SharedBy: []string{"bob", "carol"},
	})
	require.NoError(t, err)

	settlement, err := svc.Propose(ctx, "carol", bill.ID, "bob", dec("15.00"), "")
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, "bob", settlement.ID)
	require.NoError(t, err)

	detail, err := bills.BillDetail(ctx, "carol", bill.ID)
	require.NoError(t, err)
	assert.True(t, detail.Balances["carol"].Equal(dec("-15")),
		"carol balance = %s despite confirmed settlement", detail.Balances["carol"])
	require.Len(t, detail.Settlements, 1)
	assert.True(t, detail.Settlements[0].IsConfirmed)
}
