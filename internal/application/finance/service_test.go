package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homeshare/backend/internal/domain/ledger"
	"github.com/homeshare/backend/internal/domain/room"
	"github.com/homeshare/backend/internal/domain/shared"
)

// In-memory fixtures shared by the service tests. The fake unit of work
// executes the function directly; transactional behavior is covered by the
// persistence tests.

type memUow struct {
	repos Repos
}

func newMemUow() *memUow {
	return &memUow{repos: Repos{
		Entries:  newMemEntries(),
		Bills:    newMemBills(),
		Payments: newMemPayments(),
	}}
}

func (u *memUow) Execute(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	return fn(ctx, u.repos)
}

type memEntries struct {
	byKey map[string]*ledger.Entry
}

func newMemEntries() *memEntries {
	return &memEntries{byKey: make(map[string]*ledger.Entry)}
}

func entryKey(roomID, userID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", roomID, userID)
}

func (r *memEntries) Get(_ context.Context, roomID, userID uuid.UUID) (*ledger.Entry, error) {
	if entry, ok := r.byKey[entryKey(roomID, userID)]; ok {
		return entry, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memEntries) GetForUpdate(ctx context.Context, roomID, userID uuid.UUID) (*ledger.Entry, error) {
	return r.Get(ctx, roomID, userID)
}

func (r *memEntries) GetOrCreateForUpdate(_ context.Context, roomID, userID uuid.UUID) (*ledger.Entry, error) {
	key := entryKey(roomID, userID)
	if entry, ok := r.byKey[key]; ok {
		return entry, nil
	}
	entry := ledger.NewEntry(roomID, userID)
	r.byKey[key] = entry
	return entry, nil
}

func (r *memEntries) Save(_ context.Context, entry *ledger.Entry) error {
	r.byKey[entryKey(entry.RoomID, entry.UserID)] = entry
	return nil
}

func (r *memEntries) ListByRoom(_ context.Context, roomID uuid.UUID) ([]*ledger.Entry, error) {
	var result []*ledger.Entry
	for _, entry := range r.byKey {
		if entry.RoomID == roomID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *memEntries) DeleteByRoom(_ context.Context, roomID uuid.UUID) (int64, error) {
	var deleted int64
	for key, entry := range r.byKey {
		if entry.RoomID == roomID {
			delete(r.byKey, key)
			deleted++
		}
	}
	return deleted, nil
}

type memBills struct {
	byID map[uuid.UUID]*ledger.Bill
}

func newMemBills() *memBills {
	return &memBills{byID: make(map[uuid.UUID]*ledger.Bill)}
}

func (r *memBills) Create(_ context.Context, bill *ledger.Bill) error {
	r.byID[bill.ID] = bill
	return nil
}

func (r *memBills) FindByID(_ context.Context, id uuid.UUID) (*ledger.Bill, error) {
	if bill, ok := r.byID[id]; ok {
		return bill, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memBills) ListByRoom(_ context.Context, roomID uuid.UUID) ([]*ledger.Bill, error) {
	var result []*ledger.Bill
	for _, bill := range r.byID {
		if bill.RoomID == roomID {
			result = append(result, bill)
		}
	}
	return result, nil
}

func (r *memBills) ListByRoomAndDate(_ context.Context, roomID uuid.UUID, date time.Time) ([]*ledger.Bill, error) {
	var result []*ledger.Bill
	for _, bill := range r.byID {
		if bill.RoomID == roomID && sameDay(bill.ScheduledDate, date) {
			result = append(result, bill)
		}
	}
	return result, nil
}

func (r *memBills) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *memBills) DeleteByRoom(_ context.Context, roomID uuid.UUID) (int64, error) {
	var deleted int64
	for id, bill := range r.byID {
		if bill.RoomID == roomID {
			delete(r.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

type memPayments struct {
	byID map[uuid.UUID]*ledger.Payment
}

func newMemPayments() *memPayments {
	return &memPayments{byID: make(map[uuid.UUID]*ledger.Payment)}
}

func (r *memPayments) Create(_ context.Context, payment *ledger.Payment) error {
	r.byID[payment.ID] = payment
	return nil
}

func (r *memPayments) FindByID(_ context.Context, id uuid.UUID) (*ledger.Payment, error) {
	if payment, ok := r.byID[id]; ok {
		return payment, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memPayments) ListByRoom(_ context.Context, roomID uuid.UUID) ([]*ledger.Payment, error) {
	var result []*ledger.Payment
	for _, payment := range r.byID {
		if payment.RoomID == roomID {
			result = append(result, payment)
		}
	}
	return result, nil
}

func (r *memPayments) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *memPayments) DeleteByRoom(_ context.Context, roomID uuid.UUID) (int64, error) {
	var deleted int64
	for id, payment := range r.byID {
		if payment.RoomID == roomID {
			delete(r.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeRooms implements room.Repository over a static member set per room
type fakeRooms struct {
	members map[uuid.UUID][]*room.User
}

func newFakeRooms() *fakeRooms {
	return &fakeRooms{members: make(map[uuid.UUID][]*room.User)}
}

func (f *fakeRooms) addMember(roomID uuid.UUID, user *room.User) {
	f.members[roomID] = append(f.members[roomID], user)
}

func (f *fakeRooms) IsMember(_ context.Context, userID, roomID uuid.UUID) (bool, error) {
	for _, member := range f.members[roomID] {
		if member.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRooms) AreMembers(ctx context.Context, userIDs []uuid.UUID, roomID uuid.UUID) (bool, error) {
	for _, userID := range userIDs {
		ok, err := f.IsMember(ctx, userID, roomID)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (f *fakeRooms) FindByID(_ context.Context, roomID uuid.UUID) (*room.Room, error) {
	if _, ok := f.members[roomID]; ok {
		return &room.Room{BaseEntity: shared.BaseEntity{ID: roomID}, Name: "test room"}, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeRooms) ListMembers(_ context.Context, roomID uuid.UUID) ([]*room.User, error) {
	return f.members[roomID], nil
}

func newUser(name string) *room.User {
	user := &room.User{Username: name}
	user.BaseEntity = shared.NewBaseEntity()
	return user
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func amt(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}
