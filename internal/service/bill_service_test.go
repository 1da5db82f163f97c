package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
)

func setupBillService(t *testing.T) (*BillService, *fakeEvents) {
	t.Helper()
	events := newFakeEvents()
	events.addEvent("trip", "alice", true, "alice", "bob", "carol")
	return NewBillService(newTestStore(t), events), events
}

func mustCreateBill(t *testing.T, svc *BillService, actor string) *models.Bill {
	t.Helper()
	bill, err := svc.CreateBill(context.Background(), actor, "trip", "Cabin weekend", "")
	require.NoError(t, err)
	return bill
}

func TestCreateBill(t *testing.T) {
	ctx := context.Background()

	t.Run("member of finalized event creates bill", func(t *testing.T) {
		svc, _ := setupBillService(t)
		bill, err := svc.CreateBill(ctx, "bob", "trip", "Cabin weekend", "two nights")
		require.NoError(t, err)
		assert.NotEmpty(t, bill.ID)
		assert.Equal(t, "bob", bill.CreatedBy)
		assert.True(t, bill.TotalAmount.Equal(dec("0")))

		// Creator is enrolled as a participant.
		detail, err := svc.BillDetail(ctx, "bob", bill.ID)
		require.NoError(t, err)
		assert.Equal(t, bill.ID, detail.Bill.ID)
	})

	t.Run("unfinalized event is invalid state", func(t *testing.T) {
		svc, events := setupBillService(t)
		events.addEvent("draft", "alice", false, "alice")
		_, err := svc.CreateBill(ctx, "alice", "draft", "Too early", "")
		assert.True(t, errors.Is(err, ledger.ErrInvalidState))
	})

	t.Run("non-member is denied", func(t *testing.T) {
		svc, _ := setupBillService(t)
		_, err := svc.CreateBill(ctx, "mallory", "trip", "Sneaky", "")
		assert.True(t, errors.Is(err, ledger.ErrPermissionDenied))
	})

	t.Run("empty title is a validation error", func(t *testing.T) {
		svc, _ := setupBillService(t)
		_, err := svc.CreateBill(ctx, "alice", "trip", "  ", "")
		assert.True(t, ledger.IsValidation(err))
	})
}

func TestAddExpense_RecomputesTotal(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupBillService(t)
	bill := mustCreateBill(t, svc, "alice")

	_, err := svc.AddExpense(ctx, "bob", bill.ID, ExpenseInput{
		Description: "Groceries",
		Amount:      dec("45.99"),
		PaidBy:      "bob",
		SharedBy:    []string{"alice", "bob", "carol"},
	})
	require.NoError(t, err)

	_, err = svc.AddExpense(ctx, "alice", bill.ID, ExpenseInput{
		Description: "Fuel",
		Amount:      dec("23.50"),
		PaidBy:      "alice",
		SharedBy:    []string{"alice", "bob", "carol"},
	})
	require.NoError(t, err)

	detail, err := svc.BillDetail(ctx, "alice", bill.ID)
	require.NoError(t, err)
	assert.True(t, detail.Bill.TotalAmount.Equal(dec("69.49")),
		"total = %s", detail.Bill.TotalAmount)
}

func TestExpenseMutations(t *testing.T) {
	ctx := context.Background()

	t.Run("update refreshes the total", func(t *testing.T) {
		svc, _ := setupBillService(t)
		bill := mustCreateBill(t, svc, "alice")
		expense, err := svc.AddExpense(ctx, "bob", bill.ID, ExpenseInput{
			Description: "Taxi", Amount: dec("20.00"), PaidBy: "bob", SharedBy: []string{"alice", "bob"},
		})
		require.NoError(t, err)

		_, err = svc.UpdateExpense(ctx, "bob", expense.ID, ExpenseInput{
			Description: "Taxi", Amount: dec("24.00"), PaidBy: "bob", SharedBy: []string{"alice", "bob"},
		})
		require.NoError(t, err)

		detail, err := svc.BillDetail(ctx, "alice", bill.ID)
		require.NoError(t, err)
		assert.True(t, detail.Bill.TotalAmount.Equal(dec("24.00")))
	})

	t.Run("delete refreshes the total", func(t *testing.T) {
		svc, _ := setupBillService(t)
		bill := mustCreateBill(t, svc, "alice")
		expense, err := svc.AddExpense(ctx, "bob", bill.ID, ExpenseInput{
			Description: "Taxi", Amount: dec("20.00"), PaidBy: "bob", SharedBy: []string{"alice", "bob"},
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteExpense(ctx, "alice", expense.ID))

		detail, err := svc.BillDetail(ctx, "alice", bill.ID)
		require.NoError(t, err)
		assert.True(t, detail.Bill.TotalAmount.IsZero())
	})

	t.Run("bill creator may edit another payer's expense", func(t *testing.T) {
		svc, _ := setupBillService(t)
		bill := mustCreateBill(t, svc, "alice")
		expense, err := svc.AddExpense(ctx, "bob", bill.ID, ExpenseInput{
			Description: "Snacks", Amount: dec("5.00"), PaidBy: "bob", SharedBy: []string{"bob"},
		})
		require.NoError(t, err)

		_, err = svc.UpdateExpense(ctx, "alice", expense.ID, ExpenseInput{
			Description: "Snacks", Amount: dec("6.00"), PaidBy: "bob", SharedBy: []string{"bob"},
		})
		assert.NoError(t, err)
	})

	t.Run("unrelated member may not edit", func(t *testing.T) {
		svc, _ := setupBillService(t)
		bill := mustCreateBill(t, svc, "alice")
		expense, err := svc.AddExpense(ctx, "bob", bill.ID, ExpenseInput{
			Description: "Snacks", Amount: dec("5.00"), PaidBy: "bob", SharedBy: []string{"bob"},
		})
		require.NoError(t, err)

		_, err = svc.UpdateExpense(ctx, "carol", expense.ID, ExpenseInput{
			Description: "Snacks", Amount: dec("1.00"), PaidBy: "bob", SharedBy: []string{"bob"},
		})
		assert.True(t, errors.Is(err, ledger.ErrPermissionDenied))
	})

	t.Run("negative amount is a validation error", func(t *testing.T) {
		svc, _ := setupBillService(t)
		bill := mustCreateBill(t, svc, "alice")
		_, err := svc.AddExpense(ctx, "bob", bill.ID, ExpenseInput{
			Description: "Refund", Amount: dec("-1.00"), PaidBy: "bob",
		})
		assert.True(t, ledger.IsValidation(err))
	})
}

func TestAddExpense_ConcurrentMutationsKeepTotalConsistent(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupBillService(t)
	bill := mustCreateBill(t, svc, "alice")

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddExpense(ctx, "bob", bill.ID, ExpenseInput{
				Description: "Round", Amount: dec("10.00"), PaidBy: "bob", SharedBy: []string{"alice", "bob"},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	detail, err := svc.BillDetail(ctx, "alice", bill.ID)
	require.NoError(t, err)
	assert.True(t, detail.Bill.TotalAmount.Equal(dec("80.00")),
		"total = %s", detail.Bill.TotalAmount)
}

// An expense add racing the bill's deletion must surface NotFound, not
// a storage constraint failure.
func TestAddExpense_RacingBillDeleteIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupBillService(t)
	bill := mustCreateBill(t, svc, "alice")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, err := svc.AddExpense(ctx, "bob", bill.ID, ExpenseInput{
					Description: "Round", Amount: dec("10.00"), PaidBy: "bob", SharedBy: []string{"alice", "bob"},
				})
				if err != nil {
					assert.True(t, errors.Is(err, ledger.ErrNotFound), "unexpected error: %v", err)
					return
				}
			}
		}()
	}
	require.NoError(t, svc.DeleteBill(ctx, "alice", bill.ID))
	wg.Wait()

	_, err := svc.BillDetail(ctx, "alice", bill.ID)
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
}

func TestBillDetail(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupBillService(t)
	bill := mustCreateBill(t, svc, "alice")

	_, err := svc.AddExpense(ctx, "bob", bill.ID, ExpenseInput{
		Description: "Groceries", Amount: dec("45.99"), PaidBy: "bob",
		SharedBy: []string{"alice", "bob", "carol"},
	})
	require.NoError(t, err)

	t.Run("returns balances, plan, and settlements separately", func(t *testing.T) {
		detail, err := svc.BillDetail(ctx, "carol", bill.ID)
		require.NoError(t, err)
		assert.Len(t, detail.Expenses, 1)
		assert.True(t, detail.Balances["bob"].Equal(dec("30.66")),
			"bob balance = %s", detail.Balances["bob"])
		assert.True(t, detail.Balances["carol"].Equal(dec("-15.33")))
		require.Len(t, detail.Plan, 2)
		assert.Empty(t, detail.Settlements)
	})

	t.Run("access enrolls the viewer lazily", func(t *testing.T) {
		_, err := svc.BillDetail(ctx, "carol", bill.ID)
		require.NoError(t, err)

		entries, err := svc.ListBills(ctx, "carol", BillFilter{})
		require.NoError(t, err)
		require.NotEmpty(t, entries)
	})

	t.Run("outsider is denied", func(t *testing.T) {
		_, err := svc.BillDetail(ctx, "mallory", bill.ID)
		assert.True(t, errors.Is(err, ledger.ErrPermissionDenied))
	})

	t.Run("unknown bill is NotFound", func(t *testing.T) {
		_, err := svc.BillDetail(ctx, "alice", "nope")
		assert.True(t, errors.Is(err, ledger.ErrNotFound))
	})
}

func TestListBills_Filters(t *testing.T) {
	ctx := context.Background()
	svc, events := setupBillService(t)
	events.addEvent("dinner", "alice", true, "alice", "bob")

	trip := mustCreateBill(t, svc, "alice")
	dinner, err := svc.CreateBill(ctx, "alice", "dinner", "Birthday dinner", "")
	require.NoError(t, err)
	_, err = svc.SetSettled(ctx, "alice", dinner.ID, true)
	require.NoError(t, err)

	t.Run("no filter lists everything", func(t *testing.T) {
		entries, err := svc.ListBills(ctx, "alice", BillFilter{})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("event filter", func(t *testing.T) {
		entries, err := svc.ListBills(ctx, "alice", BillFilter{EventID: "trip"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, trip.ID, entries[0].Bill.ID)
	})

	t.Run("settled filter", func(t *testing.T) {
		settled := true
		entries, err := svc.ListBills(ctx, "alice", BillFilter{Settled: &settled})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, dinner.ID, entries[0].Bill.ID)
	})
}

func TestSetSettled(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupBillService(t)
	bill := mustCreateBill(t, svc, "alice")

	t.Run("creator toggles regardless of balances", func(t *testing.T) {
		// Outstanding balances do not block the manual flag.
		_, err := svc.AddExpense(ctx, "bob", bill.ID, ExpenseInput{
			Description: "Groceries", Amount: dec("45.99"), PaidBy: "bob",
			SharedBy: []string{"alice", "bob"},
		})
		require.NoError(t, err)

		updated, err := svc.SetSettled(ctx, "alice", bill.ID, true)
		require.NoError(t, err)
		assert.True(t, updated.IsSettled)
	})

	t.Run("non-creator is denied", func(t *testing.T) {
		_, err := svc.SetSettled(ctx, "bob", bill.ID, false)
		assert.True(t, errors.Is(err, ledger.ErrPermissionDenied))
	})
}

func TestDeleteBill(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupBillService(t)
	bill := mustCreateBill(t, svc, "alice")

	t.Run("non-creator is denied", func(t *testing.T) {
		err := svc.DeleteBill(ctx, "bob", bill.ID)
		assert.True(t, errors.Is(err, ledger.ErrPermissionDenied))
	})

	t.Run("creator deletes, bill is gone", func(t *testing.T) {
		require.NoError(t, svc.DeleteBill(ctx, "alice", bill.ID))
		_, err := svc.BillDetail(ctx, "alice", bill.ID)
		assert.True(t, errors.Is(err, ledger.ErrNotFound))
	})
}
