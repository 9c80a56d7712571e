package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/homeshare/backend/internal/domain/ledger"
)

// LedgerEntryModel is the GORM model for ledger entries. The owes/debts maps
// live in jsonb columns; the (room_id, user_id) pair is unique so concurrent
// get-or-create races surface as constraint violations instead of duplicates.
type LedgerEntryModel struct {
	BaseModel
	RoomID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_room_user"`
	UserID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_room_user"`
	Owes   ledger.DebtMap `gorm:"type:jsonb;default:'{}'"`
	Debts  ledger.DebtMap `gorm:"type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the model to a domain entry
func (m *LedgerEntryModel) ToDomain() *ledger.Entry {
	entry := &ledger.Entry{
		BaseEntity: m.BaseModel.ToDomain(),
		RoomID:     m.RoomID,
		UserID:     m.UserID,
		Owes:       m.Owes,
		Debts:      m.Debts,
	}
	if entry.Owes == nil {
		entry.Owes = ledger.NewDebtMap()
	}
	if entry.Debts == nil {
		entry.Debts = ledger.NewDebtMap()
	}
	return entry
}

// LedgerEntryModelFromDomain converts a domain entry to the model
func LedgerEntryModelFromDomain(entry *ledger.Entry) *LedgerEntryModel {
	model := &LedgerEntryModel{
		RoomID: entry.RoomID,
		UserID: entry.UserID,
		Owes:   entry.Owes,
		Debts:  entry.Debts,
	}
	model.FromDomainBaseEntity(entry.BaseEntity)
	return model
}

// BillModel is the GORM model for bills
type BillModel struct {
	BaseModel
	RoomID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	Title         string              `gorm:"type:varchar(255);not null"`
	Category      string              `gorm:"type:varchar(100);not null"`
	Amount        decimal.Decimal     `gorm:"type:decimal(15,2);not null"`
	PayerUserID   uuid.UUID           `gorm:"type:uuid;not null"`
	Participants  ledger.Participants `gorm:"type:jsonb;default:'[]'"`
	Frequency     string              `gorm:"type:varchar(10)"`
	Repeat        int                 `gorm:"not null;default:0"`
	Status        string              `gorm:"type:varchar(20);not null;default:'created'"`
	ScheduledDate datatypes.Date      `gorm:"type:date;not null;index"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the model to a domain bill
func (m *BillModel) ToDomain() *ledger.Bill {
	return &ledger.Bill{
		BaseEntity:    m.BaseModel.ToDomain(),
		RoomID:        m.RoomID,
		Title:         m.Title,
		Category:      m.Category,
		Amount:        m.Amount,
		PayerUserID:   m.PayerUserID,
		Participants:  m.Participants,
		Frequency:     m.Frequency,
		Repeat:        m.Repeat,
		Status:        ledger.BillStatus(m.Status),
		ScheduledDate: time.Time(m.ScheduledDate),
	}
}

// BillModelFromDomain converts a domain bill to the model
func BillModelFromDomain(bill *ledger.Bill) *BillModel {
	model := &BillModel{
		RoomID:        bill.RoomID,
		Title:         bill.Title,
		Category:      bill.Category,
		Amount:        bill.Amount,
		PayerUserID:   bill.PayerUserID,
		Participants:  bill.Participants,
		Frequency:     bill.Frequency,
		Repeat:        bill.Repeat,
		Status:        string(bill.Status),
		ScheduledDate: datatypes.Date(bill.ScheduledDate),
	}
	model.FromDomainBaseEntity(bill.BaseEntity)
	return model
}

// PaymentModel is the GORM model for payments
type PaymentModel struct {
	BaseModel
	RoomID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title       string          `gorm:"type:varchar(255);not null"`
	Category    string          `gorm:"type:varchar(100);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	PayerUserID uuid.UUID       `gorm:"type:uuid;not null"`
	PayeeUserID uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a domain payment
func (m *PaymentModel) ToDomain() *ledger.Payment {
	return &ledger.Payment{
		BaseEntity:  m.BaseModel.ToDomain(),
		RoomID:      m.RoomID,
		Title:       m.Title,
		Category:    m.Category,
		Amount:      m.Amount,
		PayerUserID: m.PayerUserID,
		PayeeUserID: m.PayeeUserID,
	}
}

// PaymentModelFromDomain converts a domain payment to the model
func PaymentModelFromDomain(payment *ledger.Payment) *PaymentModel {
	model := &PaymentModel{
		RoomID:      payment.RoomID,
		Title:       payment.Title,
		Category:    payment.Category,
		Amount:      payment.Amount,
		PayerUserID: payment.PayerUserID,
		PayeeUserID: payment.PayeeUserID,
	}
	model.FromDomainBaseEntity(payment.BaseEntity)
	return model
}
