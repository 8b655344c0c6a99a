package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRecurringInvoice_NextAfter(t *testing.T) {
	tests := []struct {
		name   string
		repeat string
		start  time.Time
		want   []time.Time
	}{
		{
			name:   "month end clamps and returns to the 31st",
			repeat: RepeatMonth,
			start:  day(2025, 1, 31),
			want:   []time.Time{day(2025, 2, 28), day(2025, 3, 31), day(2025, 4, 30), day(2025, 5, 31)},
		},
		{
			name:   "leap february",
			repeat: RepeatMonth,
			start:  day(2024, 1, 30),
			want:   []time.Time{day(2024, 2, 29), day(2024, 3, 30)},
		},
		{
			name:   "yearly from leap day",
			repeat: RepeatYear,
			start:  day(2024, 2, 29),
			want:   []time.Time{day(2025, 2, 28), day(2026, 2, 28), day(2027, 2, 28), day(2028, 2, 29)},
		},
		{
			name:   "weekly",
			repeat: RepeatWeek,
			start:  day(2025, 1, 1),
			want:   []time.Time{day(2025, 1, 8), day(2025, 1, 15)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &RecurringInvoice{RepeatEvery: tt.repeat, StartDate: tt.start}
			run := tt.start
			for _, want := range tt.want {
				run = p.NextAfter(run)
				assert.Equal(t, want, run)
			}
		})
	}
}

func TestRecurringInvoice_NextAfterMidPeriod(t *testing.T) {
	p := &RecurringInvoice{RepeatEvery: RepeatMonth, StartDate: day(2025, 1, 31)}
	assert.Equal(t, day(2025, 1, 31), p.NextAfter(day(2024, 12, 1)))
	assert.Equal(t, day(2025, 2, 28), p.NextAfter(day(2025, 2, 10)))
	assert.Equal(t, day(2025, 3, 31), p.NextAfter(day(2025, 2, 28)))
}
