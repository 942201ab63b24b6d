package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/repository"
)

func (r *agendaBlockRepository) Create(ctx context.Context, block *model.AgendaBlock) error {
	query := `
		INSERT INTO agenda_blocks (
			id, owner_id, doctor_id, block_type, weekdays,
			specific_date, start_date, end_date, label, active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	block.ID = uuid.New()
	block.Active = true
	block.CreatedAt = time.Now()
	block.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		block.ID,
		block.OwnerID,
		block.DoctorID,
		block.BlockType,
		block.Weekdays,
		block.SpecificDate,
		block.StartDate,
		block.EndDate,
		block.Label,
		block.Active,
		block.CreatedAt,
		block.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create agenda block: %w", err)
	}
	return nil
}

func (r *agendaBlockRepository) Get(ctx context.Context, id uuid.UUID) (*model.AgendaBlock, error) {
	query := `
		SELECT id, owner_id, doctor_id, block_type, weekdays,
			   specific_date, start_date, end_date, label, active,
			   created_at, updated_at
		FROM agenda_blocks
		WHERE id = $1
	`
	var block model.AgendaBlock
	err := r.db.GetContext(ctx, &block, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get agenda block: %w", err)
	}
	return &block, nil
}

func (r *agendaBlockRepository) List(ctx context.Context, ownerID uuid.UUID) ([]*model.AgendaBlock, error) {
	query := `
		SELECT id, owner_id, doctor_id, block_type, weekdays,
			   specific_date, start_date, end_date, label, active,
			   created_at, updated_at
		FROM agenda_blocks
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`
	var blocks []*model.AgendaBlock
	err := r.db.SelectContext(ctx, &blocks, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list agenda blocks: %w", err)
	}
	return blocks, nil
}

func (r *agendaBlockRepository) ListActive(ctx context.Context, ownerID uuid.UUID) ([]*model.AgendaBlock, error) {
	query := `
		SELECT id, owner_id, doctor_id, block_type, weekdays,
			   specific_date, start_date, end_date, label, active,
			   created_at, updated_at
		FROM agenda_blocks
		WHERE owner_id = $1
		AND active = true
		ORDER BY created_at ASC
	`
	var blocks []*model.AgendaBlock
	err := r.db.SelectContext(ctx, &blocks, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active agenda blocks: %w", err)
	}
	return blocks, nil
}

func (r *agendaBlockRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `
		UPDATE agenda_blocks
		SET active = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to toggle agenda block: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *agendaBlockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM agenda_blocks
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete agenda block: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}
