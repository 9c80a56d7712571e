package finance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homeshare/backend/internal/domain/ledger"
	"github.com/homeshare/backend/internal/domain/room"
	"github.com/homeshare/backend/internal/domain/shared"
)

// QueryService answers read queries over the ledger and runs the room-level
// maintenance operations
type QueryService struct {
	uow   UnitOfWork
	rooms room.Repository
}

// NewQueryService creates a new QueryService
func NewQueryService(uow UnitOfWork, rooms room.Repository) *QueryService {
	return &QueryService{uow: uow, rooms: rooms}
}

// DebtSummary is one user's filtered view of the ledger
type DebtSummary struct {
	UserID uuid.UUID       `json:"user_id"`
	Owes   ledger.DebtMap  `json:"owes"`
	Debts  ledger.DebtMap  `json:"debts"`
	Net    decimal.Decimal `json:"net"`
}

// MemberWithDebts is a room member's public fields flattened together with
// their ledger view
type MemberWithDebts struct {
	UserID    uuid.UUID       `json:"user_id"`
	Username  string          `json:"username"`
	FirstName string          `json:"first_name,omitempty"`
	LastName  string          `json:"last_name,omitempty"`
	Owes      ledger.DebtMap  `json:"owes"`
	Debts     ledger.DebtMap  `json:"debts"`
	Net       decimal.Decimal `json:"net"`
}

// NetBalance is one user's net position in a room
type NetBalance struct {
	UserID uuid.UUID       `json:"user_id"`
	Net    decimal.Decimal `json:"net"`
}

// ActivityItem is one entry of the merged bill and payment feed
type ActivityItem struct {
	Type        string          `json:"type"` // bill or payment
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	PayerUserID uuid.UUID       `json:"payer_user_id"`
	PayeeUserID *uuid.UUID      `json:"payee_user_id,omitempty"`
	Status      string          `json:"status,omitempty"`
	Date        time.Time       `json:"date"`
}

// ClearResult reports what a room wipe removed
type ClearResult struct {
	BillsDeleted    int64 `json:"bills_deleted"`
	PaymentsDeleted int64 `json:"payments_deleted"`
	EntriesDeleted  int64 `json:"entries_deleted"`
}

// GetUserDebtSummary returns the filtered owes/debts view for one user.
// A user with no ledger entry gets an empty summary, not an error.
func (s *QueryService) GetUserDebtSummary(ctx context.Context, roomID, userID uuid.UUID) (*DebtSummary, error) {
	var summary *DebtSummary
	err := s.uow.Execute(ctx, func(ctx context.Context, r Repos) error {
		entry, err := r.Entries.Get(ctx, roomID, userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				summary = emptySummary(userID)
				return nil
			}
			return err
		}
		summary = summarize(entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// GetRoomMembersWithDebts returns every room member joined with their debt
// summary. Members without a ledger entry appear with empty maps.
func (s *QueryService) GetRoomMembersWithDebts(ctx context.Context, roomID uuid.UUID) ([]MemberWithDebts, error) {
	members, err := s.rooms.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}

	var entries []*ledger.Entry
	err = s.uow.Execute(ctx, func(ctx context.Context, r Repos) error {
		entries, err = r.Entries.ListByRoom(ctx, roomID)
		return err
	})
	if err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID]*ledger.Entry, len(entries))
	for _, entry := range entries {
		byUser[entry.UserID] = entry
	}

	result := make([]MemberWithDebts, 0, len(members))
	for _, member := range members {
		summary := emptySummary(member.ID)
		if entry, ok := byUser[member.ID]; ok {
			summary = summarize(entry)
		}
		result = append(result, MemberWithDebts{
			UserID:    member.ID,
			Username:  member.Username,
			FirstName: member.FirstName,
			LastName:  member.LastName,
			Owes:      summary.Owes,
			Debts:     summary.Debts,
			Net:       summary.Net,
		})
	}
	return result, nil
}

// GetNetBalances returns the net position of every user with a non-zero
// balance in the room. The nets of a consistent room always sum to zero.
func (s *QueryService) GetNetBalances(ctx context.Context, roomID uuid.UUID) ([]NetBalance, error) {
	var entries []*ledger.Entry
	err := s.uow.Execute(ctx, func(ctx context.Context, r Repos) error {
		var err error
		entries, err = r.Entries.ListByRoom(ctx, roomID)
		return err
	})
	if err != nil {
		return nil, err
	}

	balances := make([]NetBalance, 0, len(entries))
	for _, entry := range entries {
		net := entry.NetBalance()
		if net.IsZero() {
			continue
		}
		balances = append(balances, NetBalance{UserID: entry.UserID, Net: net})
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Net.GreaterThan(balances[j].Net)
	})
	return balances, nil
}

// ValidateConsistency reports every pairwise symmetry violation in the room.
// It only describes problems; it never repairs them.
func (s *QueryService) ValidateConsistency(ctx context.Context, roomID uuid.UUID) ([]string, error) {
	var entries []*ledger.Entry
	err := s.uow.Execute(ctx, func(ctx context.Context, r Repos) error {
		var err error
		entries, err = r.Entries.ListByRoom(ctx, roomID)
		return err
	})
	if err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID]*ledger.Entry, len(entries))
	for _, entry := range entries {
		byUser[entry.UserID] = entry
	}

	var violations []string
	for _, entry := range entries {
		for otherID, amount := range entry.Owes {
			other, ok := byUser[otherID]
			if !ok {
				violations = append(violations, fmt.Sprintf(
					"user %s owes %s to %s but %s has no ledger entry",
					entry.UserID, amount, otherID, otherID))
				continue
			}
			mirror := other.DebtFrom(entry.UserID)
			if !mirror.Equal(amount) {
				violations = append(violations, fmt.Sprintf(
					"user %s owes %s to %s but %s records a debt of %s",
					entry.UserID, amount, otherID, otherID, mirror))
			}
		}
		for otherID, amount := range entry.Debts {
			other, ok := byUser[otherID]
			if !ok {
				violations = append(violations, fmt.Sprintf(
					"user %s records a debt of %s from %s but %s has no ledger entry",
					entry.UserID, amount, otherID, otherID))
				continue
			}
			mirror := other.OwedTo(entry.UserID)
			if !mirror.Equal(amount) {
				violations = append(violations, fmt.Sprintf(
					"user %s records a debt of %s from %s but %s owes %s",
					entry.UserID, amount, otherID, otherID, mirror))
			}
		}
	}
	sort.Strings(violations)
	return violations, nil
}

// Cleanup empties every ledger entry in the room. Safe to repeat.
func (s *QueryService) Cleanup(ctx context.Context, roomID uuid.UUID) error {
	return s.uow.Execute(ctx, func(ctx context.Context, r Repos) error {
		return r.Engine().Cleanup(ctx, roomID)
	})
}

// GetRoomActivity returns the merged bill and payment feed for a room,
// newest first. Bills sort by scheduled date, payments by creation time.
func (s *QueryService) GetRoomActivity(ctx context.Context, roomID uuid.UUID) ([]ActivityItem, error) {
	var (
		bills    []*ledger.Bill
		payments []*ledger.Payment
	)
	err := s.uow.Execute(ctx, func(ctx context.Context, r Repos) error {
		var err error
		if bills, err = r.Bills.ListByRoom(ctx, roomID); err != nil {
			return err
		}
		payments, err = r.Payments.ListByRoom(ctx, roomID)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]ActivityItem, 0, len(bills)+len(payments))
	for _, bill := range bills {
		items = append(items, ActivityItem{
			Type:        "bill",
			ID:          bill.ID,
			Title:       bill.Title,
			Category:    bill.Category,
			Amount:      bill.Amount,
			PayerUserID: bill.PayerUserID,
			Status:      string(bill.Status),
			Date:        bill.ScheduledDate,
		})
	}
	for _, payment := range payments {
		payee := payment.PayeeUserID
		items = append(items, ActivityItem{
			Type:        "payment",
			ID:          payment.ID,
			Title:       payment.Title,
			Category:    payment.Category,
			Amount:      payment.Amount,
			PayerUserID: payment.PayerUserID,
			PayeeUserID: &payee,
			Date:        payment.CreatedAt,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	return items, nil
}

// GetRoomBillsByDate returns the bills scheduled on the given calendar day
func (s *QueryService) GetRoomBillsByDate(ctx context.Context, roomID uuid.UUID, date time.Time) ([]*ledger.Bill, error) {
	var bills []*ledger.Bill
	err := s.uow.Execute(ctx, func(ctx context.Context, r Repos) error {
		var err error
		bills, err = r.Bills.ListByRoomAndDate(ctx, roomID, date)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bills, nil
}

// ClearRoomTransactions deletes every bill, payment and ledger entry in the
// room. Debug tooling only; the endpoint exposing it is gated by config.
func (s *QueryService) ClearRoomTransactions(ctx context.Context, roomID uuid.UUID) (*ClearResult, error) {
	result := &ClearResult{}
	err := s.uow.Execute(ctx, func(ctx context.Context, r Repos) error {
		var err error
		if result.BillsDeleted, err = r.Bills.DeleteByRoom(ctx, roomID); err != nil {
			return err
		}
		if result.PaymentsDeleted, err = r.Payments.DeleteByRoom(ctx, roomID); err != nil {
			return err
		}
		result.EntriesDeleted, err = r.Entries.DeleteByRoom(ctx, roomID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func summarize(entry *ledger.Entry) *DebtSummary {
	owes, debts := entry.Summary()
	return &DebtSummary{
		UserID: entry.UserID,
		Owes:   owes,
		Debts:  debts,
		Net:    entry.NetBalance(),
	}
}

func emptySummary(userID uuid.UUID) *DebtSummary {
	return &DebtSummary{
		UserID: userID,
		Owes:   ledger.NewDebtMap(),
		Debts:  ledger.NewDebtMap(),
		Net:    decimal.Zero,
	}
}
