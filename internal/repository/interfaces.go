package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, appointment *model.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	// ListForDay returns non-cancelled appointments for the owner whose
	// interval intersects [dayStart, dayEnd), optionally narrowed to one
	// doctor. Reads must be read-after-write consistent with prior commits
	// or concurrent bookings can slip past the conflict check.
	ListForDay(ctx context.Context, ownerID uuid.UUID, doctorID *uuid.UUID, dayStart, dayEnd time.Time) ([]*model.Appointment, error)
}

type AgendaBlockRepository interface {
	Create(ctx context.Context, block *model.AgendaBlock) error
	Get(ctx context.Context, id uuid.UUID) (*model.AgendaBlock, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*model.AgendaBlock, error)
	ListActive(ctx context.Context, ownerID uuid.UUID) ([]*model.AgendaBlock, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	GetByPhone(ctx context.Context, ownerID uuid.UUID, phone string) (*model.Patient, error)
}

type DoctorRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	GetByName(ctx context.Context, ownerID uuid.UUID, name string) (*model.Doctor, error)
	GetDefault(ctx context.Context, ownerID uuid.UUID) (*model.Doctor, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string) error
}
