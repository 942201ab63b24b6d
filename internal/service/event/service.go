package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/repository"
)

const (
	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentCancelled = "appointment.cancelled"
)

// Service records booking lifecycle events in the outbox table. A worker
// relays them to the message broker for external consumers (notifiers,
// summarizers).
type Service struct {
	outbox repository.OutboxRepository
}

func NewService(outbox repository.OutboxRepository) *Service {
	return &Service{outbox: outbox}
}

func (s *Service) AppointmentBooked(ctx context.Context, apt *model.Appointment) error {
	return s.record(ctx, EventAppointmentBooked, apt)
}

func (s *Service) AppointmentCancelled(ctx context.Context, apt *model.Appointment) error {
	return s.record(ctx, EventAppointmentCancelled, apt)
}

func (s *Service) record(ctx context.Context, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   data,
	})
}
