package model

import "time"

type SlotPeriod string

const (
	SlotPeriodMorning   SlotPeriod = "morning"
	SlotPeriodAfternoon SlotPeriod = "afternoon"
)

// Slot is a candidate appointment start. Slots are computed per request and
// never persisted.
type Slot struct {
	Time            string     `json:"time"`
	DateTime        time.Time  `json:"dateTime"`
	Period          SlotPeriod `json:"period"`
	DurationMinutes int        `json:"-"`
}

func (s Slot) End() time.Time {
	return s.DateTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// AvailabilityResult is the wire shape of an availability query.
type AvailabilityResult struct {
	Date              string `json:"date"`
	DayOfWeek         string `json:"dayOfWeek"`
	Available         bool   `json:"available"`
	TotalSlots        int    `json:"totalSlots"`
	AvailableCount    int    `json:"availableCount"`
	AvailableSlots    []Slot `json:"availableSlots"`
	Message           string `json:"message"`
	SuggestedMessage  string `json:"suggestedMessage"`
	NextAvailableDate string `json:"nextAvailableDate,omitempty"`
}
