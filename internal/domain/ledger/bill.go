package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homeshare/backend/internal/domain/shared"
)

// BillStatus tracks whether a scheduled occurrence has been materialized
type BillStatus string

const (
	BillStatusWaiting BillStatus = "waiting"
	BillStatusCreated BillStatus = "created"
)

// SumTolerance is the maximum absolute difference allowed between a bill's
// amount and the sum of its participant shares.
var SumTolerance = decimal.NewFromFloat(0.01)

// Participant is one user's share of a bill
type Participant struct {
	UserID    uuid.UUID       `json:"user_id"`
	AmountDue decimal.Decimal `json:"amount_due"`
}

// Participants is stored on the bill row as a JSONB column so deletion can
// reverse the exact shares that were charged.
type Participants []Participant

// Total returns the sum of all participant shares
func (p Participants) Total() decimal.Decimal {
	total := decimal.Zero
	for _, participant := range p {
		total = total.Add(participant.AmountDue)
	}
	return total
}

// Validate checks structural validity of the participant list
func (p Participants) Validate() error {
	if len(p) == 0 {
		return shared.NewValidationError("at least one participant is required")
	}
	for _, participant := range p {
		if participant.UserID == uuid.Nil {
			return shared.NewValidationError("each participant must include a user_id")
		}
		if participant.AmountDue.IsNegative() {
			return shared.NewValidationError("amount due for user %s cannot be negative", participant.UserID)
		}
	}
	return nil
}

// Value implements driver.Valuer for JSONB storage
func (p Participants) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval
func (p *Participants) Scan(value interface{}) error {
	if value == nil {
		*p = Participants{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Participants: unsupported type")
	}

	if len(bytes) == 0 {
		*p = Participants{}
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// Bill is one scheduled occurrence of a shared expense. A recurring create
// request produces several Bill rows sharing the same participant metadata.
type Bill struct {
	shared.BaseEntity
	RoomID        uuid.UUID       `json:"room_id"`
	Title         string          `json:"title"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	PayerUserID   uuid.UUID       `json:"payer_user_id"`
	Participants  Participants    `json:"participants"`
	Frequency     string          `json:"frequency,omitempty"`
	Repeat        int             `json:"repeat"`
	Status        BillStatus      `json:"status"`
	ScheduledDate time.Time       `json:"scheduled_date"`
}

// ValidateSplit checks that the bill amount matches the participant shares
// within SumTolerance. Amounts are decimals, so the tolerance only absorbs
// client-side rounding of uneven splits, not float drift.
func ValidateSplit(amount decimal.Decimal, participants Participants) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("amount must be positive")
	}
	if err := participants.Validate(); err != nil {
		return err
	}
	total := participants.Total()
	if amount.Sub(total).Abs().GreaterThan(SumTolerance) {
		return shared.NewValidationError(
			"total amount (%s) must equal sum of participant amounts (%s)", amount, total)
	}
	return nil
}

// FrequencyUnit is the recurrence step unit
type FrequencyUnit string

const (
	FrequencyDays   FrequencyUnit = "d"
	FrequencyWeeks  FrequencyUnit = "w"
	FrequencyMonths FrequencyUnit = "m"
)

// Frequency is a parsed recurrence interval like "2w"
type Frequency struct {
	Value int
	Unit  FrequencyUnit
}

var frequencyPattern = regexp.MustCompile(`^([0-9]+)([dwm])$`)

// ParseFrequency parses an interval spec of the form {integer}{d|w|m}
func ParseFrequency(raw string) (*Frequency, error) {
	matches := frequencyPattern.FindStringSubmatch(raw)
	if matches == nil {
		return nil, shared.NewValidationError(
			"frequency must be in the format like '1d', '2w', or '3m'")
	}
	value, err := strconv.Atoi(matches[1])
	if err != nil || value <= 0 {
		return nil, shared.NewValidationError("invalid frequency value %q", matches[1])
	}
	return &Frequency{Value: value, Unit: FrequencyUnit(matches[2])}, nil
}

// Step returns t advanced by n frequency intervals
func (f *Frequency) Step(t time.Time, n int) time.Time {
	switch f.Unit {
	case FrequencyWeeks:
		return t.AddDate(0, 0, 7*f.Value*n)
	case FrequencyMonths:
		return t.AddDate(0, f.Value*n, 0)
	default:
		return t.AddDate(0, 0, f.Value*n)
	}
}

// ScheduledDates computes the repeat+1 occurrence dates for a bill starting
// at now: one immediate occurrence plus repeat future ones stepped by the
// frequency interval.
func ScheduledDates(now time.Time, freq *Frequency, repeat int) []time.Time {
	dates := []time.Time{now}
	if freq == nil || repeat <= 0 {
		return dates
	}
	for i := 1; i <= repeat; i++ {
		dates = append(dates, freq.Step(now, i))
	}
	return dates
}
