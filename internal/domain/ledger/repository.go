package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EntryRepository persists ledger entries. Implementations must make the
// ForUpdate variants take a row-level lock for the duration of the enclosing
// transaction; the engine's read-modify-write cycle on shared entries is not
// safe without it.
type EntryRepository interface {
	// Get fetches the entry for (room, user) without locking it.
	// Returns shared.ErrNotFound if no entry exists.
	Get(ctx context.Context, roomID, userID uuid.UUID) (*Entry, error)

	// GetForUpdate fetches and locks the entry for (room, user).
	// Returns shared.ErrNotFound if no entry exists.
	GetForUpdate(ctx context.Context, roomID, userID uuid.UUID) (*Entry, error)

	// GetOrCreateForUpdate fetches and locks the entry for (room, user),
	// creating an empty one if it does not exist yet.
	GetOrCreateForUpdate(ctx context.Context, roomID, userID uuid.UUID) (*Entry, error)

	// Save persists the entry's current owes/debts state.
	Save(ctx context.Context, entry *Entry) error

	// ListByRoom returns every entry in the room.
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*Entry, error)

	// DeleteByRoom removes all entries in the room, returning the count.
	DeleteByRoom(ctx context.Context, roomID uuid.UUID) (int64, error)
}

// BillRepository persists bills
type BillRepository interface {
	Create(ctx context.Context, bill *Bill) error
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*Bill, error)
	ListByRoomAndDate(ctx context.Context, roomID uuid.UUID, date time.Time) ([]*Bill, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByRoom(ctx context.Context, roomID uuid.UUID) (int64, error)
}

// PaymentRepository persists payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByRoom(ctx context.Context, roomID uuid.UUID) (int64, error)
}
