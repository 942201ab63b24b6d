package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
)

func defaultHours() WorkingHours {
	return WorkingHours{
		DayStartHour:        8,
		DayEndHour:          18,
		LunchStartHour:      12,
		LunchEndHour:        13,
		SlotDurationMinutes: 30,
		UTCOffsetMinutes:    -180,
	}
}

func clinicDate(hours WorkingHours, y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, hours.Location())
}

func TestGenerateSlots_FullDay(t *testing.T) {
	hours := defaultHours()
	date := clinicDate(hours, 2026, time.January, 12, 0, 0)
	now := clinicDate(hours, 2026, time.January, 2, 9, 0)

	slots := GenerateSlots(date, 30, hours, now)

	// 08:00-11:30 morning starts plus 13:00-17:30 afternoon starts.
	require.Len(t, slots, 18)
	assert.Equal(t, "08:00", slots[0].Time)
	assert.Equal(t, "11:30", slots[7].Time)
	assert.Equal(t, "13:00", slots[8].Time)
	assert.Equal(t, "17:30", slots[17].Time)

	for _, s := range slots[:8] {
		assert.Equal(t, model.SlotPeriodMorning, s.Period, "slot %s", s.Time)
	}
	for _, s := range slots[8:] {
		assert.Equal(t, model.SlotPeriodAfternoon, s.Period, "slot %s", s.Time)
	}
}

func TestGenerateSlots_NoLunchSlots(t *testing.T) {
	hours := defaultHours()
	date := clinicDate(hours, 2026, time.January, 12, 0, 0)
	now := clinicDate(hours, 2026, time.January, 2, 9, 0)

	slots := GenerateSlots(date, 30, hours, now)

	for _, s := range slots {
		local := s.DateTime.In(hours.Location())
		assert.NotEqual(t, 12, local.Hour(), "slot %s starts inside lunch", s.Time)
	}
}

func TestGenerateSlots_LongDurationSkipsLunchStraddle(t *testing.T) {
	hours := defaultHours()
	date := clinicDate(hours, 2026, time.January, 12, 0, 0)
	now := clinicDate(hours, 2026, time.January, 2, 9, 0)

	slots := GenerateSlots(date, 60, hours, now)

	times := make(map[string]bool)
	for _, s := range slots {
		times[s.Time] = true
	}
	// A 60-minute visit starting 11:30 would run into lunch.
	assert.False(t, times["11:30"])
	// Ending exactly at lunch start is fine.
	assert.True(t, times["11:00"])
	// Ending exactly at closing time is fine, crossing it is not.
	assert.True(t, times["17:00"])
	assert.False(t, times["17:30"])
}

func TestGenerateSlots_DropsPastStarts(t *testing.T) {
	hours := defaultHours()
	date := clinicDate(hours, 2026, time.January, 12, 0, 0)
	now := clinicDate(hours, 2026, time.January, 12, 10, 0)

	slots := GenerateSlots(date, 30, hours, now)

	require.NotEmpty(t, slots)
	assert.Equal(t, "10:30", slots[0].Time)
	for _, s := range slots {
		assert.True(t, s.DateTime.After(now.UTC()), "slot %s is not in the future", s.Time)
	}
}

func TestGenerateSlots_PastDayIsEmpty(t *testing.T) {
	hours := defaultHours()
	date := clinicDate(hours, 2026, time.January, 12, 0, 0)
	now := clinicDate(hours, 2026, time.January, 13, 9, 0)

	slots := GenerateSlots(date, 30, hours, now)
	assert.Empty(t, slots)
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	hours := defaultHours()
	date := clinicDate(hours, 2026, time.January, 12, 0, 0)
	now := clinicDate(hours, 2026, time.January, 2, 9, 0)

	first := GenerateSlots(date, 30, hours, now)
	second := GenerateSlots(date, 30, hours, now)
	assert.Equal(t, first, second)
}

func TestGenerateSlots_ZeroDurationUsesDefault(t *testing.T) {
	hours := defaultHours()
	date := clinicDate(hours, 2026, time.January, 12, 0, 0)
	now := clinicDate(hours, 2026, time.January, 2, 9, 0)

	slots := GenerateSlots(date, 0, hours, now)
	require.NotEmpty(t, slots)
	assert.Equal(t, 30, slots[0].DurationMinutes)
	assert.Len(t, slots, 18)
}
