package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/repository"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/agenda"
	apperrors "github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/errors"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/logger"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/metrics"
)

// EventRecorder receives booking lifecycle events. Recording failures are
// logged, never fatal to the booking.
type EventRecorder interface {
	AppointmentBooked(ctx context.Context, apt *model.Appointment) error
}

// Service resolves availability and commits bookings. No lock is held across
// the query-then-commit gap: blocks and conflicts are re-validated at commit
// time against the store, which must provide read-after-write consistency.
type Service struct {
	appointments repository.AppointmentRepository
	agenda       *agenda.Service
	events       EventRecorder
	hours        WorkingHours

	// rejectOnStoreError flips the fail-open default: with it set, a failed
	// block or appointment fetch rejects the operation instead of widening
	// availability.
	rejectOnStoreError bool

	metrics *metrics.Metrics
	logger  *logger.Logger
	now     func() time.Time
}

func NewService(
	appointments repository.AppointmentRepository,
	agendaSvc *agenda.Service,
	events EventRecorder,
	hours WorkingHours,
	rejectOnStoreError bool,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		appointments:       appointments,
		agenda:             agendaSvc,
		events:             events,
		hours:              hours,
		rejectOnStoreError: rejectOnStoreError,
		metrics:            m,
		logger:             log,
		now:                time.Now,
	}
}

// ResolveAvailability computes the offerable slots for a calendar date.
func (s *Service) ResolveAvailability(ctx context.Context, date time.Time, durationMinutes int, ownerID uuid.UUID, doctorID *uuid.UUID) (*model.AvailabilityResult, error) {
	if durationMinutes <= 0 {
		durationMinutes = s.hours.SlotDurationMinutes
	}

	blocks, err := s.fetchBlocks(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := &model.AvailabilityResult{
		Date:           date.Format("2006-01-02"),
		DayOfWeek:      agenda.WeekdayName(date.Weekday()),
		AvailableSlots: []model.Slot{},
	}

	status := s.agenda.CheckDate(blocks, date, doctorID)
	if status.Blocked {
		result.Message = status.Reason
		result.SuggestedMessage = "Não temos horários disponíveis nesta data. Poderia escolher outro dia?"
		result.NextAvailableDate = s.NextAvailableDate(date).Format("2006-01-02")
		s.countQuery("blocked")
		return result, nil
	}

	slots := GenerateSlots(date, durationMinutes, s.hours, s.now())
	result.TotalSlots = len(slots)

	dayStart, dayEnd := s.dayBounds(date)
	existing, err := s.appointments.ListForDay(ctx, ownerID, doctorID, dayStart, dayEnd)
	if err != nil {
		if s.rejectOnStoreError {
			return nil, apperrors.Persistence(err)
		}
		// Fail open: a broken read widens availability rather than
		// blocking the booking flow.
		s.logger.Error(err, "appointment fetch failed, resolving availability without conflicts")
		existing = nil
	}

	for _, slot := range slots {
		if s.conflicts(slot.DateTime, slot.End(), existing, nil) {
			continue
		}
		result.AvailableSlots = append(result.AvailableSlots, slot)
	}

	result.AvailableCount = len(result.AvailableSlots)
	result.Available = result.AvailableCount > 0
	result.SuggestedMessage = suggestSlots(result.AvailableSlots)
	if result.Available {
		result.Message = fmt.Sprintf("Encontramos %d horários disponíveis em %s", result.AvailableCount, date.Format("02/01/2006"))
		s.countQuery("available")
	} else {
		result.Message = "Não há horários disponíveis nesta data"
		s.countQuery("full")
	}
	return result, nil
}

// CommitAppointment validates and persists a booking. excludeID is set when
// editing an existing appointment so it does not conflict with itself. The
// block and conflict checks run again here even when the caller just queried
// availability, because another booking may have landed in between.
func (s *Service) CommitAppointment(ctx context.Context, apt *model.Appointment, excludeID *uuid.UUID) (*model.Appointment, error) {
	if !apt.EndTime.After(apt.StartTime) {
		return nil, apperrors.Validation("horário final deve ser após o inicial", nil)
	}

	localDate := apt.StartTime.In(s.hours.Location())

	blocks, err := s.fetchBlocks(ctx, apt.OwnerID)
	if err != nil {
		return nil, err
	}

	status := s.agenda.CheckDate(blocks, localDate, apt.DoctorID)
	if status.Blocked {
		if s.metrics != nil {
			s.metrics.BlockedDateRejections.Inc()
		}
		return nil, apperrors.BlockedDate(status.Reason)
	}

	dayStart, dayEnd := s.dayBounds(localDate)
	existing, err := s.appointments.ListForDay(ctx, apt.OwnerID, apt.DoctorID, dayStart, dayEnd)
	if err != nil {
		if s.rejectOnStoreError {
			return nil, apperrors.Persistence(err)
		}
		s.logger.Error(err, "conflict check fetch failed, admitting booking")
		existing = nil
	}

	if s.conflicts(apt.StartTime, apt.EndTime, existing, excludeID) {
		if s.metrics != nil {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, apperrors.Conflict("já existe um agendamento neste horário")
	}

	if excludeID != nil {
		apt.ID = *excludeID
		err = s.appointments.Update(ctx, apt)
	} else {
		err = s.appointments.Create(ctx, apt)
	}
	if err != nil {
		return nil, apperrors.Persistence(err)
	}

	if s.events != nil {
		if err := s.events.AppointmentBooked(ctx, apt); err != nil {
			s.logger.Error(err, "failed to record booking event")
		}
	}
	if s.metrics != nil {
		s.metrics.BookingsCommitted.Inc()
	}
	return apt, nil
}

// Hours exposes the configured working hours, mainly so handlers can parse
// request times into the clinic's zone.
func (s *Service) Hours() WorkingHours {
	return s.hours
}

// NextAvailableDate returns the day after date, skipping Sunday while the
// Sunday-closed fallback is in effect.
func (s *Service) NextAvailableDate(date time.Time) time.Time {
	next := date.AddDate(0, 0, 1)
	if !s.agenda.AllowsSunday() && next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// SuggestNextSlot proposes an alternative start after a conflict.
func (s *Service) SuggestNextSlot(start time.Time) time.Time {
	return start.Add(30 * time.Minute)
}

func (s *Service) conflicts(start, end time.Time, existing []*model.Appointment, excludeID *uuid.UUID) bool {
	for _, apt := range existing {
		if apt.Status == model.AppointmentStatusCancelled {
			continue
		}
		if excludeID != nil && apt.ID == *excludeID {
			continue
		}
		if Overlaps(start, end, apt.StartTime, apt.EndTime) {
			return true
		}
	}
	return false
}

func (s *Service) fetchBlocks(ctx context.Context, ownerID uuid.UUID) ([]*model.AgendaBlock, error) {
	blocks, err := s.agenda.ActiveBlocks(ctx, ownerID)
	if err != nil {
		if s.rejectOnStoreError {
			return nil, apperrors.Persistence(err)
		}
		s.logger.Error(err, "block fetch failed, treating as no blocks")
		return nil, nil
	}
	return blocks, nil
}

// dayBounds converts a calendar date to UTC instants spanning the clinic's
// local day.
func (s *Service) dayBounds(date time.Time) (time.Time, time.Time) {
	loc := s.hours.Location()
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start.UTC(), start.Add(24 * time.Hour).UTC()
}

func (s *Service) countQuery(outcome string) {
	if s.metrics != nil {
		s.metrics.AvailabilityQueries.WithLabelValues(outcome).Inc()
	}
}

// suggestSlots builds the natural-language suggestion: up to the first three
// start times, noting that more exist when they do.
func suggestSlots(slots []model.Slot) string {
	if len(slots) == 0 {
		return "Não temos horários disponíveis nesta data. Poderia escolher outro dia?"
	}

	n := len(slots)
	if n > 3 {
		n = 3
	}
	times := ""
	for i := 0; i < n; i++ {
		switch {
		case i == 0:
			times = slots[i].Time
		case i == n-1:
			times += " e " + slots[i].Time
		default:
			times += ", " + slots[i].Time
		}
	}

	if len(slots) > 3 {
		return fmt.Sprintf("Temos horários disponíveis às %s, entre outros. Qual prefere?", times)
	}
	return fmt.Sprintf("Temos horários disponíveis às %s. Qual prefere?", times)
}
