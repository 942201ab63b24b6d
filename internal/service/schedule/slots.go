package schedule

import (
	"time"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
)

// WorkingHours is the clinic-wide scheduling window. The UTC offset is a
// fixed constant per clinic; DST is not modeled.
type WorkingHours struct {
	DayStartHour        int
	DayEndHour          int
	LunchStartHour      int
	LunchEndHour        int
	SlotDurationMinutes int
	UTCOffsetMinutes    int
}

func (w WorkingHours) Location() *time.Location {
	return time.FixedZone("clinic", w.UTCOffsetMinutes*60)
}

// GenerateSlots produces the theoretical grid of bookable starts for a date:
// every grid step inside working hours, minus the lunch window, minus starts
// already in the past, minus slots whose end would cross lunch or closing
// time. Pure function of its inputs; output is ordered by time.
func GenerateSlots(date time.Time, durationMinutes int, hours WorkingHours, now time.Time) []model.Slot {
	if durationMinutes <= 0 {
		durationMinutes = hours.SlotDurationMinutes
	}
	duration := time.Duration(durationMinutes) * time.Minute

	loc := hours.Location()
	y, m, d := date.Date()
	lunchStart := time.Date(y, m, d, hours.LunchStartHour, 0, 0, 0, loc)
	lunchEnd := time.Date(y, m, d, hours.LunchEndHour, 0, 0, 0, loc)
	dayEnd := time.Date(y, m, d, hours.DayEndHour, 0, 0, 0, loc)

	slots := make([]model.Slot, 0)
	for hour := hours.DayStartHour; hour < hours.DayEndHour; hour++ {
		if hour >= hours.LunchStartHour && hour < hours.LunchEndHour {
			continue
		}
		for minute := 0; minute < 60; minute += hours.SlotDurationMinutes {
			start := time.Date(y, m, d, hour, minute, 0, 0, loc)
			end := start.Add(duration)

			if !start.After(now) {
				continue
			}
			if end.After(dayEnd) {
				continue
			}
			// A slot must not straddle the lunch break.
			if start.Before(lunchEnd) && end.After(lunchStart) {
				continue
			}

			period := model.SlotPeriodMorning
			if hour >= 12 {
				period = model.SlotPeriodAfternoon
			}

			slots = append(slots, model.Slot{
				Time:            start.Format("15:04"),
				DateTime:        start.UTC(),
				Period:          period,
				DurationMinutes: durationMinutes,
			})
		}
	}
	return slots
}
