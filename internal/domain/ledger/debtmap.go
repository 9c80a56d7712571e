package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtMap maps a counterparty user ID to a positive monetary amount.
// Absence of a key means the implicit amount is zero. The map never stores
// zero, negative, or self-keyed amounts; setAmount is the single chokepoint
// enforcing that.
type DebtMap map[uuid.UUID]decimal.Decimal

// NewDebtMap creates an empty DebtMap
func NewDebtMap() DebtMap {
	return make(DebtMap)
}

// Get returns the amount recorded for the given user, or zero if absent
func (m DebtMap) Get(userID uuid.UUID) decimal.Decimal {
	if amount, ok := m[userID]; ok {
		return amount
	}
	return decimal.Zero
}

// setAmount writes an amount for the given counterparty. Non-positive amounts
// and self references remove the key instead of storing it.
func (m DebtMap) setAmount(ownerID, otherID uuid.UUID, amount decimal.Decimal) {
	if !amount.IsPositive() || otherID == ownerID {
		delete(m, otherID)
		return
	}
	m[otherID] = amount
}

// Total returns the sum of all recorded amounts
func (m DebtMap) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range m {
		total = total.Add(amount)
	}
	return total
}

// Filtered returns a copy with zero, negative, and owner-keyed amounts
// removed. The stored map should already satisfy this; the filter is a
// defensive read-side guarantee.
func (m DebtMap) Filtered(ownerID uuid.UUID) DebtMap {
	clean := make(DebtMap, len(m))
	for userID, amount := range m {
		if amount.IsPositive() && userID != ownerID {
			clean[userID] = amount
		}
	}
	return clean
}

// Value implements driver.Valuer so the map is stored as a JSONB column
func (m DebtMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner to read the map back from a JSONB column
func (m *DebtMap) Scan(value interface{}) error {
	if value == nil {
		*m = NewDebtMap()
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan DebtMap: unsupported type")
	}

	if len(bytes) == 0 {
		*m = NewDebtMap()
		return nil
	}
	return json.Unmarshal(bytes, m)
}
