package ledger

import (
	"bytes"
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger is the debt engine. It owns all mutation of entry maps and maintains
// the pairwise symmetry invariant: entry(debtor).Owes[creditor] always equals
// entry(creditor).Debts[debtor], both present or both absent.
//
// Every operation must run inside the caller's transaction; the repository's
// ForUpdate fetches hold row locks until that transaction commits, which
// serializes concurrent mutations of the same (room, user-pair).
type Ledger struct {
	entries EntryRepository
}

// NewLedger creates a debt engine over the given entry repository
func NewLedger(entries EntryRepository) *Ledger {
	return &Ledger{entries: entries}
}

// AddDebt increases what debtor owes creditor by amount, creating either
// entry as needed. Used for new bill shares and for payment-deletion
// reversal. No-op when amount is non-positive or debtor == creditor.
func (l *Ledger) AddDebt(ctx context.Context, roomID, debtorID, creditorID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() || debtorID == creditorID {
		return nil
	}

	debtor, creditor, err := l.lockPair(ctx, roomID, debtorID, creditorID, true)
	if err != nil {
		return err
	}

	newAmount := debtor.OwedTo(creditorID).Add(amount)
	debtor.SetOwed(creditorID, newAmount)
	creditor.SetDebt(debtorID, newAmount)

	return l.saveBoth(ctx, debtor, creditor)
}

// SubtractDebt decreases what debtor owes creditor by amount, flooring at
// zero. Unlike ReduceDebt it never flips the obligation direction. Used for
// bill-deletion reversal. No-op when either entry is missing.
func (l *Ledger) SubtractDebt(ctx context.Context, roomID, debtorID, creditorID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() || debtorID == creditorID {
		return nil
	}

	debtor, creditor, err := l.lockPair(ctx, roomID, debtorID, creditorID, false)
	if err != nil {
		return err
	}
	if debtor == nil || creditor == nil {
		// Nothing to subtract from.
		return nil
	}

	newAmount := debtor.OwedTo(creditorID).Sub(amount)
	if newAmount.IsNegative() {
		newAmount = decimal.Zero
	}
	debtor.SetOwed(creditorID, newAmount)
	creditor.SetDebt(debtorID, newAmount)

	return l.saveBoth(ctx, debtor, creditor)
}

// ReduceDebt settles a payment of amount from debtor to creditor. A payment
// up to the current debt reduces it; paying more than is owed clears the debt
// and records the excess as a reverse obligation, so the payer becomes the
// creditor for the overpaid part.
func (l *Ledger) ReduceDebt(ctx context.Context, roomID, debtorID, creditorID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() || debtorID == creditorID {
		return nil
	}

	debtor, creditor, err := l.lockPair(ctx, roomID, debtorID, creditorID, true)
	if err != nil {
		return err
	}

	current := debtor.OwedTo(creditorID)
	switch {
	case amount.LessThanOrEqual(current):
		// Exact or partial payment.
		newAmount := current.Sub(amount)
		debtor.SetOwed(creditorID, newAmount)
		creditor.SetDebt(debtorID, newAmount)

	case current.IsPositive():
		// Overpayment: clear the debt, flip the excess.
		overpayment := amount.Sub(current)
		debtor.SetOwed(creditorID, decimal.Zero)
		creditor.SetDebt(debtorID, decimal.Zero)
		debtor.SetDebt(creditorID, overpayment)
		creditor.SetOwed(debtorID, overpayment)

	default:
		// No existing debt: the whole payment becomes a reverse debt.
		debtor.SetDebt(creditorID, amount)
		creditor.SetOwed(debtorID, amount)
	}

	return l.saveBoth(ctx, debtor, creditor)
}

// Cleanup empties the owes/debts maps of every entry in the room. The rows
// themselves survive, so calling it again is a no-op with the same result.
func (l *Ledger) Cleanup(ctx context.Context, roomID uuid.UUID) error {
	entries, err := l.entries.ListByRoom(ctx, roomID)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		entry.Clear()
		if err := l.entries.Save(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// lockPair fetches the two entries with row locks in a deterministic order so
// that two transactions touching the same pair from opposite directions
// cannot deadlock. When create is false, missing entries are returned as nil
// instead of being created.
func (l *Ledger) lockPair(ctx context.Context, roomID, aID, bID uuid.UUID, create bool) (a, b *Entry, err error) {
	first, second := aID, bID
	if bytes.Compare(bID[:], aID[:]) < 0 {
		first, second = bID, aID
	}

	firstEntry, err := l.lockOne(ctx, roomID, first, create)
	if err != nil {
		return nil, nil, err
	}
	secondEntry, err := l.lockOne(ctx, roomID, second, create)
	if err != nil {
		return nil, nil, err
	}

	if first == aID {
		return firstEntry, secondEntry, nil
	}
	return secondEntry, firstEntry, nil
}

func (l *Ledger) lockOne(ctx context.Context, roomID, userID uuid.UUID, create bool) (*Entry, error) {
	if create {
		return l.entries.GetOrCreateForUpdate(ctx, roomID, userID)
	}
	entry, err := l.entries.GetForUpdate(ctx, roomID, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

func (l *Ledger) saveBoth(ctx context.Context, a, b *Entry) error {
	if err := l.entries.Save(ctx, a); err != nil {
		return err
	}
	return l.entries.Save(ctx, b)
}
