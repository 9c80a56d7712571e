package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		raw     string
		value   int
		unit    FrequencyUnit
		wantErr bool
	}{
		{raw: "1d", value: 1, unit: FrequencyDays},
		{raw: "2w", value: 2, unit: FrequencyWeeks},
		{raw: "3m", value: 3, unit: FrequencyMonths},
		{raw: "10d", value: 10, unit: FrequencyDays},
		{raw: "d", wantErr: true},
		{raw: "2y", wantErr: true},
		{raw: "w2", wantErr: true},
		{raw: "0d", wantErr: true},
		{raw: "-1d", wantErr: true},
		{raw: "1.5w", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			freq, err := ParseFrequency(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, freq.Value)
			assert.Equal(t, tt.unit, freq.Unit)
		})
	}
}

func TestScheduledDates(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	t.Run("no frequency yields single immediate date", func(t *testing.T) {
		dates := ScheduledDates(now, nil, 0)
		require.Len(t, dates, 1)
		assert.Equal(t, now, dates[0])
	})

	t.Run("repeat produces repeat plus one occurrences", func(t *testing.T) {
		freq := &Frequency{Value: 1, Unit: FrequencyWeeks}
		dates := ScheduledDates(now, freq, 3)
		require.Len(t, dates, 4)
		assert.Equal(t, now, dates[0])
		assert.Equal(t, now.AddDate(0, 0, 7), dates[1])
		assert.Equal(t, now.AddDate(0, 0, 14), dates[2])
		assert.Equal(t, now.AddDate(0, 0, 21), dates[3])
	})

	t.Run("monthly steps use calendar months", func(t *testing.T) {
		freq := &Frequency{Value: 2, Unit: FrequencyMonths}
		dates := ScheduledDates(now, freq, 2)
		require.Len(t, dates, 3)
		assert.Equal(t, now.AddDate(0, 2, 0), dates[1])
		assert.Equal(t, now.AddDate(0, 4, 0), dates[2])
	})

	t.Run("zero repeat ignores frequency", func(t *testing.T) {
		freq := &Frequency{Value: 1, Unit: FrequencyDays}
		dates := ScheduledDates(now, freq, 0)
		require.Len(t, dates, 1)
	})
}

func TestValidateSplit(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()

	t.Run("accepts matching sum", func(t *testing.T) {
		participants := Participants{
			{UserID: userA, AmountDue: decimal.NewFromInt(30)},
			{UserID: userB, AmountDue: decimal.NewFromInt(60)},
		}
		assert.NoError(t, ValidateSplit(decimal.NewFromInt(90), participants))
	})

	t.Run("accepts sum within tolerance", func(t *testing.T) {
		participants := Participants{
			{UserID: userA, AmountDue: decimal.RequireFromString("33.33")},
			{UserID: userB, AmountDue: decimal.RequireFromString("66.66")},
		}
		assert.NoError(t, ValidateSplit(decimal.NewFromInt(100), participants))
	})

	t.Run("rejects sum mismatch beyond tolerance", func(t *testing.T) {
		participants := Participants{
			{UserID: userA, AmountDue: decimal.NewFromInt(30)},
			{UserID: userB, AmountDue: decimal.NewFromInt(30)},
		}
		assert.Error(t, ValidateSplit(decimal.NewFromInt(90), participants))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		participants := Participants{{UserID: userA, AmountDue: decimal.Zero}}
		assert.Error(t, ValidateSplit(decimal.Zero, participants))
	})

	t.Run("rejects empty participants", func(t *testing.T) {
		assert.Error(t, ValidateSplit(decimal.NewFromInt(10), Participants{}))
	})

	t.Run("rejects negative share", func(t *testing.T) {
		participants := Participants{
			{UserID: userA, AmountDue: decimal.NewFromInt(-5)},
			{UserID: userB, AmountDue: decimal.NewFromInt(15)},
		}
		assert.Error(t, ValidateSplit(decimal.NewFromInt(10), participants))
	})
}

func TestParticipants_ScanValue(t *testing.T) {
	participants := Participants{
		{UserID: uuid.New(), AmountDue: decimal.RequireFromString("12.34")},
		{UserID: uuid.New(), AmountDue: decimal.NewFromInt(5)},
	}

	value, err := participants.Value()
	require.NoError(t, err)

	var restored Participants
	require.NoError(t, restored.Scan(value))
	require.Len(t, restored, 2)
	assert.Equal(t, participants[0].UserID, restored[0].UserID)
	assert.True(t, restored[0].AmountDue.Equal(participants[0].AmountDue))
}
