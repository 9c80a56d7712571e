package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homeshare/backend/internal/domain/ledger"
	"github.com/homeshare/backend/internal/domain/room"
	"github.com/homeshare/backend/internal/domain/shared"
)

// BillService creates shared bills and charges the resulting debts
type BillService struct {
	uow   UnitOfWork
	rooms room.Membership
	now   func() time.Time
}

// NewBillService creates a new BillService
func NewBillService(uow UnitOfWork, rooms room.Membership) *BillService {
	return &BillService{uow: uow, rooms: rooms, now: time.Now}
}

// ParticipantShare is one user's share in a bill creation request
type ParticipantShare struct {
	UserID    uuid.UUID       `json:"user_id"`
	AmountDue decimal.Decimal `json:"amount_due"`
}

// CreateBillRequest carries the bill creation input. payer_id names the
// member who fronted the money; when absent the authenticated caller is the
// payer.
type CreateBillRequest struct {
	Title        string             `json:"title" binding:"required"`
	Category     string             `json:"category" binding:"required"`
	Amount       decimal.Decimal    `json:"amount"`
	PayerID      *uuid.UUID         `json:"payer_id,omitempty"`
	Participants []ParticipantShare `json:"users" binding:"required"`
	Frequency    string             `json:"frequency,omitempty"`
	Repeat       int                `json:"repeat,omitempty"`
}

// BillResponse is returned after a successful bill creation
type BillResponse struct {
	BillID        uuid.UUID `json:"bill_id"`
	ScheduledRows int       `json:"scheduled_rows"`
}

// CreateBill validates the request, persists one bill row per scheduled
// occurrence and charges each non-payer participant's share against the
// payer. Debts are charged once per creation call regardless of how many
// occurrences are scheduled; future occurrences are stored as waiting rows
// only.
func (s *BillService) CreateBill(ctx context.Context, callerID, roomID uuid.UUID, req CreateBillRequest) (*BillResponse, error) {
	payerID := callerID
	if req.PayerID != nil && *req.PayerID != uuid.Nil {
		payerID = *req.PayerID
	}
	if req.Title == "" {
		return nil, shared.NewValidationError("title is required")
	}
	if req.Category == "" {
		return nil, shared.NewValidationError("category is required")
	}
	if req.Repeat < 0 {
		return nil, shared.NewValidationError("repeat cannot be negative")
	}

	var freq *ledger.Frequency
	if req.Frequency != "" {
		parsed, err := ledger.ParseFrequency(req.Frequency)
		if err != nil {
			return nil, err
		}
		if req.Repeat < 1 {
			return nil, shared.NewValidationError("repeat must be at least 1 when a frequency is given")
		}
		freq = parsed
	} else if req.Repeat > 0 {
		return nil, shared.NewValidationError("frequency is required when repeat is set")
	}

	participants := make(ledger.Participants, 0, len(req.Participants))
	for _, share := range req.Participants {
		participants = append(participants, ledger.Participant{
			UserID:    share.UserID,
			AmountDue: share.AmountDue,
		})
	}
	if err := ledger.ValidateSplit(req.Amount, participants); err != nil {
		return nil, err
	}

	memberIDs := make([]uuid.UUID, 0, len(participants)+2)
	memberIDs = append(memberIDs, callerID, payerID)
	for _, participant := range participants {
		memberIDs = append(memberIDs, participant.UserID)
	}
	ok, err := s.rooms.AreMembers(ctx, memberIDs, roomID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewForbiddenError("caller, payer and all participants must be members of the room")
	}

	dates := ledger.ScheduledDates(s.now(), freq, req.Repeat)

	var first *ledger.Bill
	err = s.uow.Execute(ctx, func(ctx context.Context, r Repos) error {
		for i, date := range dates {
			status := ledger.BillStatusCreated
			if i > 0 {
				status = ledger.BillStatusWaiting
			}
			bill := &ledger.Bill{
				BaseEntity:    shared.NewBaseEntity(),
				RoomID:        roomID,
				Title:         req.Title,
				Category:      req.Category,
				Amount:        req.Amount,
				PayerUserID:   payerID,
				Participants:  participants,
				Frequency:     req.Frequency,
				Repeat:        req.Repeat,
				Status:        status,
				ScheduledDate: date,
			}
			if err := r.Bills.Create(ctx, bill); err != nil {
				return err
			}
			if first == nil {
				first = bill
			}
		}

		engine := r.Engine()
		for _, participant := range participants {
			if err := engine.AddDebt(ctx, roomID, participant.UserID, payerID, participant.AmountDue); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &BillResponse{BillID: first.ID, ScheduledRows: len(dates)}, nil
}
