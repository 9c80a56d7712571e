package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeshare/backend/internal/domain/shared"
)

// memEntryRepo is an in-memory EntryRepository for engine tests. Locking is
// irrelevant here; each test runs single-threaded.
type memEntryRepo struct {
	entries map[string]*Entry
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: make(map[string]*Entry)}
}

func entryKey(roomID, userID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", roomID, userID)
}

func (r *memEntryRepo) Get(_ context.Context, roomID, userID uuid.UUID) (*Entry, error) {
	if entry, ok := r.entries[entryKey(roomID, userID)]; ok {
		return entry, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memEntryRepo) GetForUpdate(_ context.Context, roomID, userID uuid.UUID) (*Entry, error) {
	if entry, ok := r.entries[entryKey(roomID, userID)]; ok {
		return entry, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memEntryRepo) GetOrCreateForUpdate(_ context.Context, roomID, userID uuid.UUID) (*Entry, error) {
	key := entryKey(roomID, userID)
	if entry, ok := r.entries[key]; ok {
		return entry, nil
	}
	entry := NewEntry(roomID, userID)
	r.entries[key] = entry
	return entry, nil
}

func (r *memEntryRepo) Save(_ context.Context, entry *Entry) error {
	r.entries[entryKey(entry.RoomID, entry.UserID)] = entry
	return nil
}

func (r *memEntryRepo) ListByRoom(_ context.Context, roomID uuid.UUID) ([]*Entry, error) {
	var result []*Entry
	for _, entry := range r.entries {
		if entry.RoomID == roomID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *memEntryRepo) DeleteByRoom(_ context.Context, roomID uuid.UUID) (int64, error) {
	var deleted int64
	for key, entry := range r.entries {
		if entry.RoomID == roomID {
			delete(r.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// assertSymmetry checks that for every owes relation the counterpart entry
// records the identical debt, and that no map holds zero or self entries.
func assertSymmetry(t *testing.T, repo *memEntryRepo, roomID uuid.UUID) {
	t.Helper()
	entries, err := repo.ListByRoom(context.Background(), roomID)
	require.NoError(t, err)

	byUser := make(map[uuid.UUID]*Entry)
	for _, entry := range entries {
		byUser[entry.UserID] = entry
	}

	for _, entry := range entries {
		for other, amount := range entry.Owes {
			assert.True(t, amount.IsPositive(), "owes must hold positive amounts only")
			assert.NotEqual(t, entry.UserID, other, "owes must not hold self entries")
			counterpart, ok := byUser[other]
			require.True(t, ok, "counterpart entry must exist for owed user")
			assert.True(t, counterpart.Debts.Get(entry.UserID).Equal(amount),
				"debts[%s] on %s must mirror owes", entry.UserID, other)
		}
		for other, amount := range entry.Debts {
			assert.True(t, amount.IsPositive(), "debts must hold positive amounts only")
			assert.NotEqual(t, entry.UserID, other, "debts must not hold self entries")
			counterpart, ok := byUser[other]
			require.True(t, ok)
			assert.True(t, counterpart.Owes.Get(entry.UserID).Equal(amount))
		}
	}
}

func amt(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestLedger_AddDebt(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New()
	debtor := uuid.New()
	creditor := uuid.New()

	t.Run("creates entries lazily and writes symmetric pair", func(t *testing.T) {
		repo := newMemEntryRepo()
		l := NewLedger(repo)

		require.NoError(t, l.AddDebt(ctx, roomID, debtor, creditor, amt("30")))

		debtorEntry, err := repo.GetForUpdate(ctx, roomID, debtor)
		require.NoError(t, err)
		creditorEntry, err := repo.GetForUpdate(ctx, roomID, creditor)
		require.NoError(t, err)

		assert.True(t, debtorEntry.OwedTo(creditor).Equal(amt("30")))
		assert.True(t, creditorEntry.DebtFrom(debtor).Equal(amt("30")))
		assertSymmetry(t, repo, roomID)
	})

	t.Run("accumulates onto existing debt", func(t *testing.T) {
		repo := newMemEntryRepo()
		l := NewLedger(repo)

		require.NoError(t, l.AddDebt(ctx, roomID, debtor, creditor, amt("30")))
		require.NoError(t, l.AddDebt(ctx, roomID, debtor, creditor, amt("12.50")))

		debtorEntry, _ := repo.GetForUpdate(ctx, roomID, debtor)
		assert.True(t, debtorEntry.OwedTo(creditor).Equal(amt("42.5")))
		assertSymmetry(t, repo, roomID)
	})

	t.Run("ignores non-positive amounts and self debts", func(t *testing.T) {
		repo := newMemEntryRepo()
		l := NewLedger(repo)

		require.NoError(t, l.AddDebt(ctx, roomID, debtor, creditor, decimal.Zero))
		require.NoError(t, l.AddDebt(ctx, roomID, debtor, creditor, amt("-5")))
		require.NoError(t, l.AddDebt(ctx, roomID, debtor, debtor, amt("10")))

		assert.Empty(t, repo.entries, "no entries should be created for no-ops")
	})
}

func TestLedger_SubtractDebt(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New()
	debtor := uuid.New()
	creditor := uuid.New()

	t.Run("reduces debt symmetrically", func(t *testing.T) {
		repo := newMemEntryRepo()
		l := NewLedger(repo)

		require.NoError(t, l.AddDebt(ctx, roomID, debtor, creditor, amt("50")))
		require.NoError(t, l.SubtractDebt(ctx, roomID, debtor, creditor, amt("20")))

		debtorEntry, _ := repo.GetForUpdate(ctx, roomID, debtor)
		creditorEntry, _ := repo.GetForUpdate(ctx, roomID, creditor)
		assert.True(t, debtorEntry.OwedTo(creditor).Equal(amt("30")))
		assert.True(t, creditorEntry.DebtFrom(debtor).Equal(amt("30")))
		assertSymmetry(t, repo, roomID)
	})

	t.Run("floors at zero instead of flipping", func(t *testing.T) {
		repo := newMemEntryRepo()
		l := NewLedger(repo)

		require.NoError(t, l.AddDebt(ctx, roomID, debtor, creditor, amt("20")))
		require.NoError(t, l.SubtractDebt(ctx, roomID, debtor, creditor, amt("50")))

		debtorEntry, _ := repo.GetForUpdate(ctx, roomID, debtor)
		creditorEntry, _ := repo.GetForUpdate(ctx, roomID, creditor)
		assert.Empty(t, debtorEntry.Owes, "floored debt must be removed, not stored as zero")
		assert.Empty(t, creditorEntry.Debts)
		assert.Empty(t, debtorEntry.Debts, "no reverse debt may appear")
		assertSymmetry(t, repo, roomID)
	})

	t.Run("no-op when entries are missing", func(t *testing.T) {
		repo := newMemEntryRepo()
		l := NewLedger(repo)

		require.NoError(t, l.SubtractDebt(ctx, roomID, debtor, creditor, amt("10")))
		assert.Empty(t, repo.entries)
	})
}

func TestLedger_ReduceDebt(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New()
	debtor := uuid.New()
	creditor := uuid.New()

	t.Run("partial payment reduces the debt", func(t *testing.T) {
		repo := newMemEntryRepo()
		l := NewLedger(repo)

		require.NoError(t, l.AddDebt(ctx, roomID, debtor, creditor, amt("30")))
		require.NoError(t, l.ReduceDebt(ctx, roomID, debtor, creditor, amt("10")))

		debtorEntry, _ := repo.GetForUpdate(ctx, roomID, debtor)
		assert.True(t, debtorEntry.OwedTo(creditor).Equal(amt("20")))
		assertSymmetry(t, repo, roomID)
	})

	t.Run("exact payment clears both sides", func(t *testing.T) {
		repo := newMemEntryRepo()
		l := NewLedger(repo)

		require.NoError(t, l.AddDebt(ctx, roomID, debtor, creditor, amt("30")))
		require.NoError(t, l.ReduceDebt(ctx, roomID, debtor, creditor, amt("30")))

		debtorEntry, _ := repo.GetForUpdate(ctx, roomID, debtor)
		creditorEntry, _ := repo.GetForUpdate(ctx, roomID, creditor)
		assert.Empty(t, debtorEntry.Owes)
		assert.Empty(t, creditorEntry.Debts)
		assertSymmetry(t, repo, roomID)
	})

	t.Run("overpayment flips the obligation", func(t *testing.T) {
		repo := newMemEntryRepo()
		l := NewLedger(repo)

		require.NoError(t, l.AddDebt(ctx, roomID, debtor, creditor, amt("30")))
		require.NoError(t, l.ReduceDebt(ctx, roomID, debtor, creditor, amt("50")))

		debtorEntry, _ := repo.GetForUpdate(ctx, roomID, debtor)
		creditorEntry, _ := repo.GetForUpdate(ctx, roomID, creditor)
		assert.Empty(t, debtorEntry.Owes)
		assert.True(t, debtorEntry.DebtFrom(creditor).Equal(amt("20")), "payer is now owed the excess")
		assert.True(t, creditorEntry.OwedTo(debtor).Equal(amt("20")))
		assertSymmetry(t, repo, roomID)
	})

	t.Run("payment with no debt becomes a reverse debt", func(t *testing.T) {
		repo := newMemEntryRepo()
		l := NewLedger(repo)

		require.NoError(t, l.ReduceDebt(ctx, roomID, debtor, creditor, amt("25")))

		debtorEntry, _ := repo.GetForUpdate(ctx, roomID, debtor)
		creditorEntry, _ := repo.GetForUpdate(ctx, roomID, creditor)
		assert.True(t, debtorEntry.DebtFrom(creditor).Equal(amt("25")))
		assert.True(t, creditorEntry.OwedTo(debtor).Equal(amt("25")))
		assertSymmetry(t, repo, roomID)
	})
}

// TestLedger_BillPaymentScenario walks the full A/B/C scenario: a 90 bill
// split three ways with A paying, B settling exactly, C overpaying by 20.
func TestLedger_BillPaymentScenario(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New()
	userA := uuid.New()
	userB := uuid.New()
	userC := uuid.New()

	repo := newMemEntryRepo()
	l := NewLedger(repo)

	// Bill: amount 90, payer A, shares A/B/C 30 each. The payer's own share
	// produces no ledger effect.
	require.NoError(t, l.AddDebt(ctx, roomID, userB, userA, amt("30")))
	require.NoError(t, l.AddDebt(ctx, roomID, userC, userA, amt("30")))
	require.NoError(t, l.AddDebt(ctx, roomID, userA, userA, amt("30")))

	entryA, _ := repo.GetForUpdate(ctx, roomID, userA)
	assert.Empty(t, entryA.Owes)
	assert.True(t, entryA.DebtFrom(userB).Equal(amt("30")))
	assert.True(t, entryA.DebtFrom(userC).Equal(amt("30")))

	// B pays A exactly 30.
	require.NoError(t, l.ReduceDebt(ctx, roomID, userB, userA, amt("30")))
	entryB, _ := repo.GetForUpdate(ctx, roomID, userB)
	entryA, _ = repo.GetForUpdate(ctx, roomID, userA)
	assert.Empty(t, entryB.Owes)
	assert.True(t, entryA.DebtFrom(userB).IsZero())

	// C pays A 50, overpaying by 20: A now owes C.
	require.NoError(t, l.ReduceDebt(ctx, roomID, userC, userA, amt("50")))
	entryC, _ := repo.GetForUpdate(ctx, roomID, userC)
	entryA, _ = repo.GetForUpdate(ctx, roomID, userA)
	assert.Empty(t, entryC.Owes)
	assert.True(t, entryC.DebtFrom(userA).Equal(amt("20")))
	assert.True(t, entryA.OwedTo(userC).Equal(amt("20")))

	assertSymmetry(t, repo, roomID)

	// Net balances must always sum to zero.
	entries, err := repo.ListByRoom(ctx, roomID)
	require.NoError(t, err)
	net := decimal.Zero
	for _, entry := range entries {
		net = net.Add(entry.NetBalance())
	}
	assert.True(t, net.IsZero(), "every debt must have an equal and opposite credit")
}

// TestLedger_DeleteAfterOverpayment pins the observed floor-subtract behavior
// when a bill is deleted after an overpayment flipped the pair's direction.
// Reversal is deliberately not a true inverse.
func TestLedger_DeleteAfterOverpayment(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New()
	debtor := uuid.New()
	creditor := uuid.New()

	repo := newMemEntryRepo()
	l := NewLedger(repo)

	// Bill share of 30, then a 50 payment flips the pair: creditor owes 20.
	require.NoError(t, l.AddDebt(ctx, roomID, debtor, creditor, amt("30")))
	require.NoError(t, l.ReduceDebt(ctx, roomID, debtor, creditor, amt("50")))

	// Deleting the bill subtracts 30 from debtor->creditor, which is already
	// zero, so the floor leaves the flipped 20 untouched.
	require.NoError(t, l.SubtractDebt(ctx, roomID, debtor, creditor, amt("30")))

	debtorEntry, _ := repo.GetForUpdate(ctx, roomID, debtor)
	creditorEntry, _ := repo.GetForUpdate(ctx, roomID, creditor)
	assert.Empty(t, debtorEntry.Owes)
	assert.True(t, debtorEntry.DebtFrom(creditor).Equal(amt("20")),
		"flipped obligation survives the bill deletion")
	assert.True(t, creditorEntry.OwedTo(debtor).Equal(amt("20")))
	assertSymmetry(t, repo, roomID)
}

func TestLedger_Cleanup(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New()
	debtor := uuid.New()
	creditor := uuid.New()

	repo := newMemEntryRepo()
	l := NewLedger(repo)

	require.NoError(t, l.AddDebt(ctx, roomID, debtor, creditor, amt("30")))
	require.NoError(t, l.Cleanup(ctx, roomID))

	entries, err := repo.ListByRoom(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, entries, 2, "cleanup empties entries but never deletes them")
	for _, entry := range entries {
		assert.Empty(t, entry.Owes)
		assert.Empty(t, entry.Debts)
	}

	// Second cleanup yields the same empty state.
	require.NoError(t, l.Cleanup(ctx, roomID))
	entries, err = repo.ListByRoom(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Empty(t, entry.Owes)
		assert.Empty(t, entry.Debts)
	}
}
