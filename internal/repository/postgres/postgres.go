package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

type agendaBlockRepository struct {
	db *sqlx.DB
}

type patientRepository struct {
	db *sqlx.DB
}

type doctorRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewAgendaBlockRepository(db *sqlx.DB) repository.AgendaBlockRepository {
	return &agendaBlockRepository{db: db}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}
