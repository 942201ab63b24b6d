package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/repository"
)

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, owner_id, name, specialty, is_default, active, created_at, updated_at
		FROM doctors
		WHERE id = $1 AND active = true
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByName(ctx context.Context, ownerID uuid.UUID, name string) (*model.Doctor, error) {
	query := `
		SELECT id, owner_id, name, specialty, is_default, active, created_at, updated_at
		FROM doctors
		WHERE owner_id = $1 AND active = true AND LOWER(name) = LOWER($2)
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, ownerID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get doctor by name: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetDefault(ctx context.Context, ownerID uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, owner_id, name, specialty, is_default, active, created_at, updated_at
		FROM doctors
		WHERE owner_id = $1 AND active = true AND is_default = true
		LIMIT 1
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get default doctor: %w", err)
	}
	return &doctor, nil
}
