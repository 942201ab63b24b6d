package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/repository"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/event"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/schedule"
	apperrors "github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/errors"
)

// Service is the admin-facing appointment API: CRUD for the calendar UI and
// the status state machine. All time-changing writes go through the
// scheduling service so block and conflict invariants hold for manual
// bookings too.
type Service struct {
	repo      repository.AppointmentRepository
	patients  repository.PatientRepository
	scheduler *schedule.Service
	events    *event.Service
}

func NewService(repo repository.AppointmentRepository, patients repository.PatientRepository, scheduler *schedule.Service, events *event.Service) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		scheduler: scheduler,
		events:    events,
	}
}

func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id: %w", err)
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("invalid patient id: %w", err)
	}

	var doctorID *uuid.UUID
	if req.DoctorID != "" {
		id, err := uuid.Parse(req.DoctorID)
		if err != nil {
			return nil, fmt.Errorf("invalid doctor id: %w", err)
		}
		doctorID = &id
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	apt := &model.Appointment{
		OwnerID:       ownerID,
		PatientID:     patient.ID,
		PatientName:   patient.Name,
		DoctorID:      doctorID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Status:        model.AppointmentStatusPending,
		Source:        model.AppointmentSourceManual,
		ProcedureType: req.ProcedureType,
		Notes:         req.Notes,
	}
	return s.scheduler.CommitAppointment(ctx, apt, nil)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	timeChanged := false
	if req.StartTime != nil {
		apt.StartTime = *req.StartTime
		timeChanged = true
	}
	if req.EndTime != nil {
		apt.EndTime = *req.EndTime
		timeChanged = true
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	if timeChanged {
		// Reschedules re-run the full validation, excluding the
		// appointment's own stored interval from the conflict scan.
		return s.scheduler.CommitAppointment(ctx, apt, &apt.ID)
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return apt, nil
}

// UpdateStatus applies a status transition. The scheduling core does not gate
// transitions beyond the state machine itself.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *model.UpdateStatusRequest) (*model.Appointment, error) {
	apt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if !apt.Status.CanTransitionTo(req.Status) {
		return nil, apperrors.Validation(fmt.Sprintf("transição de status inválida: %s -> %s", apt.Status, req.Status), nil)
	}

	apt.Status = req.Status
	if req.Status == model.AppointmentStatusCancelled && req.CancelReason != "" {
		reason := req.CancelReason
		apt.CancelReason = &reason
	}
	apt.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}

	if req.Status == model.AppointmentStatusCancelled && s.events != nil {
		// Best effort; the cancellation already stuck.
		_ = s.events.AppointmentCancelled(ctx, apt)
	}
	return apt, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	apt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return err
	}

	if apt.Status != model.AppointmentStatusCancelled {
		return apperrors.Validation("somente agendamentos cancelados podem ser removidos", nil)
	}

	return s.repo.Delete(ctx, id)
}
