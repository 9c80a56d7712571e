package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homeshare/backend/internal/domain/ledger"
	"github.com/homeshare/backend/internal/domain/room"
	"github.com/homeshare/backend/internal/domain/shared"
)

// PaymentService records direct user-to-user payments and settles them
// against the ledger
type PaymentService struct {
	uow   UnitOfWork
	rooms room.Membership
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(uow UnitOfWork, rooms room.Membership) *PaymentService {
	return &PaymentService{uow: uow, rooms: rooms}
}

// CreatePaymentRequest carries the payment input. payer_id names the member
// who paid; when absent the authenticated caller is the payer.
type CreatePaymentRequest struct {
	Title       string          `json:"title" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	PayerID     *uuid.UUID      `json:"payer_id,omitempty"`
	PayeeUserID uuid.UUID       `json:"payee_user_id" binding:"required"`
}

// PaymentResponse is returned after a successful payment
type PaymentResponse struct {
	PaymentID uuid.UUID `json:"payment_id"`
}

// CreatePayment validates membership, persists the payment and reduces what
// the payer owes the payee. Paying more than is owed flips the excess into a
// debt the payee owes the payer.
func (s *PaymentService) CreatePayment(ctx context.Context, callerID, roomID uuid.UUID, req CreatePaymentRequest) (*PaymentResponse, error) {
	payerID := callerID
	if req.PayerID != nil && *req.PayerID != uuid.Nil {
		payerID = *req.PayerID
	}
	if payerID == req.PayeeUserID {
		return nil, shared.NewValidationError("payer and payee must be different users")
	}

	payment, err := ledger.NewPayment(roomID, req.Title, req.Category, req.Amount, payerID, req.PayeeUserID)
	if err != nil {
		return nil, err
	}

	ok, err := s.rooms.AreMembers(ctx, []uuid.UUID{callerID, payerID, req.PayeeUserID}, roomID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewForbiddenError("caller, payer and payee must be members of the room")
	}

	err = s.uow.Execute(ctx, func(ctx context.Context, r Repos) error {
		if err := r.Payments.Create(ctx, payment); err != nil {
			return err
		}
		return r.Engine().ReduceDebt(ctx, roomID, payerID, req.PayeeUserID, req.Amount)
	})
	if err != nil {
		return nil, err
	}

	return &PaymentResponse{PaymentID: payment.ID}, nil
}
