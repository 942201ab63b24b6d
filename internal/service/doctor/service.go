package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/repository"
	apperrors "github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/errors"
)

type Service struct {
	repo repository.DoctorRepository
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{repo: repo}
}

// Resolve picks the doctor a booking is for: by id when given, else by name,
// else the clinic default. A nil result with nil error means the booking is
// clinic-wide (no doctor attached).
func (s *Service) Resolve(ctx context.Context, ownerID uuid.UUID, doctorID *uuid.UUID, name string) (*model.Doctor, error) {
	if doctorID != nil {
		doctor, err := s.repo.Get(ctx, *doctorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.Validation("profissional não encontrado", err)
			}
			return nil, fmt.Errorf("failed to resolve doctor by id: %w", err)
		}
		return doctor, nil
	}

	if name != "" {
		doctor, err := s.repo.GetByName(ctx, ownerID, name)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.Validation(fmt.Sprintf("profissional %q não encontrado", name), err)
			}
			return nil, fmt.Errorf("failed to resolve doctor by name: %w", err)
		}
		return doctor, nil
	}

	doctor, err := s.repo.GetDefault(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// No default doctor configured: book clinic-wide.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve default doctor: %w", err)
	}
	return doctor, nil
}
