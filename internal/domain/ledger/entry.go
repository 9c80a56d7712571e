package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homeshare/backend/internal/domain/shared"
)

// Entry is the per-room, per-user ledger record. Owes holds what this user
// owes others, Debts holds what others owe this user. Entries are created
// lazily on the first debt event touching the user and are emptied, never
// deleted, by cleanup.
type Entry struct {
	shared.BaseEntity
	RoomID uuid.UUID `json:"room_id"`
	UserID uuid.UUID `json:"user_id"`
	Owes   DebtMap   `json:"owes"`
	Debts  DebtMap   `json:"debts"`
}

// NewEntry creates an empty ledger entry for the given room and user
func NewEntry(roomID, userID uuid.UUID) *Entry {
	return &Entry{
		BaseEntity: shared.NewBaseEntity(),
		RoomID:     roomID,
		UserID:     userID,
		Owes:       NewDebtMap(),
		Debts:      NewDebtMap(),
	}
}

// OwedTo returns what this user currently owes the given user
func (e *Entry) OwedTo(userID uuid.UUID) decimal.Decimal {
	return e.Owes.Get(userID)
}

// DebtFrom returns what the given user currently owes this user
func (e *Entry) DebtFrom(userID uuid.UUID) decimal.Decimal {
	return e.Debts.Get(userID)
}

// SetOwed records what this user owes the given user, dropping the key when
// the amount is non-positive or self-referential
func (e *Entry) SetOwed(userID uuid.UUID, amount decimal.Decimal) {
	e.Owes.setAmount(e.UserID, userID, amount)
}

// SetDebt records what the given user owes this user
func (e *Entry) SetDebt(userID uuid.UUID, amount decimal.Decimal) {
	e.Debts.setAmount(e.UserID, userID, amount)
}

// Clear empties both maps. Used by room cleanup; the entry row survives.
func (e *Entry) Clear() {
	e.Owes = NewDebtMap()
	e.Debts = NewDebtMap()
}

// NetBalance returns total owed to this user minus total this user owes.
// Positive means the user is owed money.
func (e *Entry) NetBalance() decimal.Decimal {
	return e.Debts.Total().Sub(e.Owes.Total())
}

// Summary returns defensively filtered copies of both maps
func (e *Entry) Summary() (owes, debts DebtMap) {
	return e.Owes.Filtered(e.UserID), e.Debts.Filtered(e.UserID)
}
