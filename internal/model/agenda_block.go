package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BlockType string

const (
	BlockTypeWeekdays     BlockType = "weekdays"
	BlockTypeSpecificDate BlockType = "specific_date"
	BlockTypeDateRange    BlockType = "date_range"
)

// AgendaBlock is an exclusion rule that removes calendar dates from
// bookability. DoctorID nil means the block applies clinic-wide.
type AgendaBlock struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	OwnerID      uuid.UUID     `db:"owner_id" json:"owner_id"`
	DoctorID     *uuid.UUID    `db:"doctor_id" json:"doctor_id,omitempty"`
	BlockType    BlockType     `db:"block_type" json:"block_type"`
	Weekdays     pq.Int64Array `db:"weekdays" json:"weekdays,omitempty"`
	SpecificDate *time.Time    `db:"specific_date" json:"specific_date,omitempty"`
	StartDate    *time.Time    `db:"start_date" json:"start_date,omitempty"`
	EndDate      *time.Time    `db:"end_date" json:"end_date,omitempty"`
	Label        string        `db:"label" json:"label,omitempty"`
	Active       bool          `db:"active" json:"active"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// AppliesTo reports whether the block covers the given doctor. Clinic-wide
// blocks (nil DoctorID) cover everyone.
func (b *AgendaBlock) AppliesTo(doctorID *uuid.UUID) bool {
	if b.DoctorID == nil {
		return true
	}
	return doctorID != nil && *b.DoctorID == *doctorID
}

// Matches reports whether the block closes the given calendar date. The date
// is compared by year/month/day only.
func (b *AgendaBlock) Matches(date time.Time) bool {
	switch b.BlockType {
	case BlockTypeWeekdays:
		wd := int64(date.Weekday())
		for _, d := range b.Weekdays {
			if d == wd {
				return true
			}
		}
		return false
	case BlockTypeSpecificDate:
		return b.SpecificDate != nil && sameDate(*b.SpecificDate, date)
	case BlockTypeDateRange:
		if b.StartDate == nil || b.EndDate == nil {
			return false
		}
		d := dateOrdinal(date)
		return d >= dateOrdinal(*b.StartDate) && d <= dateOrdinal(*b.EndDate)
	}
	return false
}

// Validate enforces that exactly the variant fields matching BlockType are
// populated.
func (b *AgendaBlock) Validate() error {
	switch b.BlockType {
	case BlockTypeWeekdays:
		if len(b.Weekdays) == 0 {
			return fmt.Errorf("weekdays block requires at least one weekday")
		}
		for _, d := range b.Weekdays {
			if d < 0 || d > 6 {
				return fmt.Errorf("weekday %d out of range 0-6", d)
			}
		}
		if b.SpecificDate != nil || b.StartDate != nil || b.EndDate != nil {
			return fmt.Errorf("weekdays block must not carry date fields")
		}
	case BlockTypeSpecificDate:
		if b.SpecificDate == nil {
			return fmt.Errorf("specific_date block requires a date")
		}
		if len(b.Weekdays) > 0 || b.StartDate != nil || b.EndDate != nil {
			return fmt.Errorf("specific_date block must not carry other variant fields")
		}
	case BlockTypeDateRange:
		if b.StartDate == nil || b.EndDate == nil {
			return fmt.Errorf("date_range block requires start and end dates")
		}
		if dateOrdinal(*b.EndDate) < dateOrdinal(*b.StartDate) {
			return fmt.Errorf("date_range end before start")
		}
		if len(b.Weekdays) > 0 || b.SpecificDate != nil {
			return fmt.Errorf("date_range block must not carry other variant fields")
		}
	default:
		return fmt.Errorf("unknown block type %q", b.BlockType)
	}
	return nil
}

type CreateAgendaBlockRequest struct {
	OwnerID      string     `json:"owner_id" binding:"required,uuid"`
	DoctorID     string     `json:"doctor_id" binding:"omitempty,uuid"`
	BlockType    BlockType  `json:"block_type" binding:"required,oneof=weekdays specific_date date_range"`
	Weekdays     []int64    `json:"weekdays" binding:"omitempty,dive,gte=0,lte=6"`
	SpecificDate *time.Time `json:"specific_date"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Label        string     `json:"label" binding:"max=200"`
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// dateOrdinal collapses a timestamp to a comparable calendar-date number,
// ignoring the time component and location.
func dateOrdinal(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
