package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/repository"
	apperrors "github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/errors"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/validator"
)

type Service struct {
	repo      repository.PatientRepository
	validator *validator.Validator
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{
		repo:      repo,
		validator: validator.New(),
	}
}

// FindOrCreate resolves a chatbot caller to a patient record by phone,
// creating one when the phone is unknown to the clinic. Phone matching is
// exact after trimming; normalization happens upstream in the bot.
func (s *Service) FindOrCreate(ctx context.Context, ownerID uuid.UUID, name, phone string) (*model.Patient, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if err := s.validator.Var(name, "required,min=2,max=200"); err != nil {
		return nil, apperrors.Validation("nome do paciente inválido", err)
	}
	if err := s.validator.Var(phone, "required,min=8,max=20"); err != nil {
		return nil, apperrors.Validation("telefone do paciente inválido", err)
	}

	patient, err := s.repo.GetByPhone(ctx, ownerID, phone)
	if err == nil {
		return patient, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}

	patient = &model.Patient{
		OwnerID: ownerID,
		Name:    name,
		Phone:   phone,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}
