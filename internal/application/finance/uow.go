package finance

import (
	"context"

	"github.com/homeshare/backend/internal/domain/ledger"
)

// Repos bundles the ledger repositories scoped to one transaction
type Repos struct {
	Entries  ledger.EntryRepository
	Bills    ledger.BillRepository
	Payments ledger.PaymentRepository
}

// Engine returns a debt engine over the transaction-scoped entry repository
func (r Repos) Engine() *ledger.Ledger {
	return ledger.NewLedger(r.Entries)
}

// UnitOfWork runs a function against transaction-scoped repositories. The
// transaction commits when fn returns nil and rolls back otherwise, so the
// row locks taken by the entry repository's ForUpdate fetches are held for
// the whole of fn.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}
