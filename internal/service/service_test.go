package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger/internal/storage/sqlite"
)

// fakeEvents is a canned EventDirectory for tests.
type fakeEvents struct {
	finalized map[string]bool
	members   map[string][]string // eventID -> userIDs
	owners    map[string]string   // eventID -> owner userID
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{
		finalized: map[string]bool{},
		members:   map[string][]string{},
		owners:    map[string]string{},
	}
}

func (f *fakeEvents) addEvent(eventID, owner string, finalized bool, members ...string) {
	f.finalized[eventID] = finalized
	f.owners[eventID] = owner
	f.members[eventID] = members
}

func (f *fakeEvents) IsFinalized(_ context.Context, eventID string) (bool, error) {
	return f.finalized[eventID], nil
}

func (f *fakeEvents) IsMember(_ context.Context, eventID, userID string) (bool, error) {
	for _, m := range f.members[eventID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEvents) IsOwner(_ context.Context, eventID, userID string) (bool, error) {
	return f.owners[eventID] == userID, nil
}

func (f *fakeEvents) EventsFor(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for eventID, members := range f.members {
		if f.owners[eventID] == userID {
			ids = append(ids, eventID)
			continue
		}
		for _, m := range members {
			if m == userID {
				ids = append(ids, eventID)
				break
			}
		}
	}
	return ids, nil
}

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
