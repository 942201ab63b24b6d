package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending    AppointmentStatus = "pending"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
)

// CanTransitionTo reports whether the status machine allows moving to next.
// Completed and cancelled are terminal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case AppointmentStatusPending:
		return next == AppointmentStatusConfirmed || next == AppointmentStatusCancelled
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusInProgress || next == AppointmentStatusCancelled
	case AppointmentStatusInProgress:
		return next == AppointmentStatusCompleted
	default:
		return false
	}
}

type AppointmentSource string

const (
	AppointmentSourceChatbot AppointmentSource = "chatbot"
	AppointmentSourceManual  AppointmentSource = "manual"
)

type Appointment struct {
	ID            uuid.UUID         `db:"id" json:"id"`
	OwnerID       uuid.UUID         `db:"owner_id" json:"owner_id"`
	PatientID     uuid.UUID         `db:"patient_id" json:"patient_id"`
	PatientName   string            `db:"patient_name" json:"patient_name"`
	DoctorID      *uuid.UUID        `db:"doctor_id" json:"doctor_id,omitempty"`
	StartTime     time.Time         `db:"start_time" json:"start_time"`
	EndTime       time.Time         `db:"end_time" json:"end_time"`
	Status        AppointmentStatus `db:"status" json:"status"`
	Source        AppointmentSource `db:"source" json:"source"`
	ProcedureType string            `db:"procedure_type" json:"procedure_type,omitempty"`
	Notes         string            `db:"notes" json:"notes,omitempty"`
	CancelReason  *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

type CreateAppointmentRequest struct {
	OwnerID       string    `json:"owner_id" binding:"required,uuid"`
	PatientID     string    `json:"patient_id" binding:"required,uuid"`
	DoctorID      string    `json:"doctor_id" binding:"omitempty,uuid"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	EndTime       time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
	ProcedureType string    `json:"procedure_type" binding:"max=100"`
	Notes         string    `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Notes     *string    `json:"notes"`
}

type UpdateStatusRequest struct {
	Status       AppointmentStatus `json:"status" binding:"required"`
	CancelReason string            `json:"cancel_reason"`
}

type AppointmentFilters struct {
	OwnerID   uuid.UUID
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
}
