package finance

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/homeshare/backend/internal/domain/room"
	"github.com/homeshare/backend/internal/domain/shared"
)

// ReversalService deletes bills and payments and unwinds their ledger effect.
//
// Reversals are deliberately not perfect inverses: bill deletion subtracts
// with a floor at zero, so shares already settled or flipped by an
// overpayment are not resurrected, and payment deletion re-adds the paid
// amount without undoing a flip the payment may have caused.
type ReversalService struct {
	uow   UnitOfWork
	rooms room.Membership
}

// NewReversalService creates a new ReversalService
func NewReversalService(uow UnitOfWork, rooms room.Membership) *ReversalService {
	return &ReversalService{uow: uow, rooms: rooms}
}

// DeleteBill removes a bill and subtracts each stored non-payer share from
// the ledger. Only members of the bill's room may delete it.
func (s *ReversalService) DeleteBill(ctx context.Context, userID, billID uuid.UUID) error {
	return s.uow.Execute(ctx, func(ctx context.Context, r Repos) error {
		bill, err := r.Bills.FindByID(ctx, billID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("bill %s not found", billID)
			}
			return err
		}

		ok, err := s.rooms.IsMember(ctx, userID, bill.RoomID)
		if err != nil {
			return err
		}
		if !ok {
			return shared.NewForbiddenError("only room members can delete this bill")
		}

		engine := r.Engine()
		for _, participant := range bill.Participants {
			if err := engine.SubtractDebt(ctx, bill.RoomID, participant.UserID, bill.PayerUserID, participant.AmountDue); err != nil {
				return err
			}
		}

		return r.Bills.Delete(ctx, billID)
	})
}

// DeletePayment removes a payment and restores the paid amount as a debt
// from payer to payee. Only members of the payment's room may delete it.
func (s *ReversalService) DeletePayment(ctx context.Context, userID, paymentID uuid.UUID) error {
	return s.uow.Execute(ctx, func(ctx context.Context, r Repos) error {
		payment, err := r.Payments.FindByID(ctx, paymentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("payment %s not found", paymentID)
			}
			return err
		}

		ok, err := s.rooms.IsMember(ctx, userID, payment.RoomID)
		if err != nil {
			return err
		}
		if !ok {
			return shared.NewForbiddenError("only room members can delete this payment")
		}

		if err := r.Engine().AddDebt(ctx, payment.RoomID, payment.PayerUserID, payment.PayeeUserID, payment.Amount); err != nil {
			return err
		}

		return r.Payments.Delete(ctx, paymentID)
	})
}
