package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homeshare/backend/internal/domain/shared"
)

// Payment is a direct transfer from payer to payee inside a room
type Payment struct {
	shared.BaseEntity
	RoomID      uuid.UUID       `json:"room_id"`
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	PayerUserID uuid.UUID       `json:"payer_user_id"`
	PayeeUserID uuid.UUID       `json:"payee_user_id"`
}

// NewPayment creates a validated payment record
func NewPayment(roomID uuid.UUID, title, category string, amount decimal.Decimal, payerID, payeeID uuid.UUID) (*Payment, error) {
	if title == "" {
		return nil, shared.NewValidationError("title is required")
	}
	if category == "" {
		return nil, shared.NewValidationError("category is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("amount must be greater than 0")
	}
	if payerID == uuid.Nil || payeeID == uuid.Nil {
		return nil, shared.NewValidationError("payer_id and payee_id are required")
	}
	return &Payment{
		BaseEntity:  shared.NewBaseEntity(),
		RoomID:      roomID,
		Title:       title,
		Category:    category,
		Amount:      amount,
		PayerUserID: payerID,
		PayeeUserID: payeeID,
	}, nil
}
