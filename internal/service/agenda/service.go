package agenda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/repository"
	apperrors "github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/errors"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/logger"
)

const (
	blockCacheTTL     = 30 * time.Second
	blockCacheCleanup = 1 * time.Minute
)

var weekdayNames = [...]string{
	"domingo",
	"segunda-feira",
	"terça-feira",
	"quarta-feira",
	"quinta-feira",
	"sexta-feira",
	"sábado",
}

// WeekdayName returns the pt-BR name for a weekday.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[int(d)]
}

// DateStatus is the outcome of evaluating a calendar date against the agenda
// rules.
type DateStatus struct {
	Blocked bool
	Reason  string
}

// Service evaluates agenda blocks and manages their lifecycle. Block reads
// fail open: a storage error yields an empty block list so an outage in the
// blocks feature never takes down booking.
type Service struct {
	repo        repository.AgendaBlockRepository
	cache       *gocache.Cache
	allowSunday bool
	logger      *logger.Logger
}

func NewService(repo repository.AgendaBlockRepository, allowSunday bool, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		cache:       gocache.New(blockCacheTTL, blockCacheCleanup),
		allowSunday: allowSunday,
		logger:      log,
	}
}

// AllowsSunday reports whether the legacy Sunday-closed fallback is disabled.
func (s *Service) AllowsSunday() bool {
	return s.allowSunday
}

// ActiveBlocks returns the owner's active blocks, served from a short-TTL
// cache. The error is returned so the caller can apply its store-error
// policy; callers that fail open treat it as an empty list.
func (s *Service) ActiveBlocks(ctx context.Context, ownerID uuid.UUID) ([]*model.AgendaBlock, error) {
	key := ownerID.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.AgendaBlock), nil
	}

	blocks, err := s.repo.ListActive(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active blocks: %w", err)
	}

	s.cache.Set(key, blocks, gocache.DefaultExpiration)
	return blocks, nil
}

// CheckDate evaluates whether the date is closed for the given doctor. The
// configurable blocks are checked first, first match wins; the hardcoded
// Sunday closure applies afterwards unless the clinic opted into Sunday
// booking.
func (s *Service) CheckDate(blocks []*model.AgendaBlock, date time.Time, doctorID *uuid.UUID) DateStatus {
	for _, block := range blocks {
		if !block.Active || !block.AppliesTo(doctorID) {
			continue
		}
		if block.Matches(date) {
			return DateStatus{Blocked: true, Reason: blockReason(block, date)}
		}
	}

	if !s.allowSunday && date.Weekday() == time.Sunday {
		return DateStatus{Blocked: true, Reason: "A clínica não atende aos domingos"}
	}

	return DateStatus{}
}

// ExpandClosedDates walks every day in [from, to] and unions the days any
// block closes, along with a human-readable summary. Weekday blocks are
// described once; specific dates and ranges only within the window.
func (s *Service) ExpandClosedDates(blocks []*model.AgendaBlock, from, to time.Time) ([]string, string) {
	var closed []string
	var descriptions []string

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		for _, block := range blocks {
			if !block.Active {
				continue
			}
			if block.Matches(d) {
				closed = append(closed, d.Format("2006-01-02"))
				break
			}
		}
	}

	for _, block := range blocks {
		if !block.Active {
			continue
		}
		if desc := describeBlock(block, from, to); desc != "" {
			descriptions = append(descriptions, desc)
		}
	}

	summary := ""
	for i, desc := range descriptions {
		if i > 0 {
			summary += "; "
		}
		summary += desc
	}
	return closed, summary
}

// InvalidateOwner evicts an owner's cached block list. Called on every block
// write so availability reflects changes immediately.
func (s *Service) InvalidateOwner(ownerID uuid.UUID) {
	s.cache.Delete(ownerID.String())
}

func (s *Service) CreateBlock(ctx context.Context, block *model.AgendaBlock) error {
	if err := block.Validate(); err != nil {
		return apperrors.Validation(err.Error(), err)
	}
	if err := s.repo.Create(ctx, block); err != nil {
		return fmt.Errorf("failed to create agenda block: %w", err)
	}
	s.InvalidateOwner(block.OwnerID)
	return nil
}

func (s *Service) ListBlocks(ctx context.Context, ownerID uuid.UUID) ([]*model.AgendaBlock, error) {
	blocks, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list agenda blocks: %w", err)
	}
	return blocks, nil
}

func (s *Service) ToggleBlock(ctx context.Context, id uuid.UUID) (*model.AgendaBlock, error) {
	block, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("agenda block", err)
		}
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, !block.Active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("agenda block", err)
		}
		return nil, err
	}
	block.Active = !block.Active
	s.InvalidateOwner(block.OwnerID)
	return block, nil
}

func (s *Service) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	block, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("agenda block", err)
		}
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("agenda block", err)
		}
		return err
	}
	s.InvalidateOwner(block.OwnerID)
	return nil
}

// blockReason builds the caller-facing reason for a matched block. A label
// set by the clinic wins over the synthesized default.
func blockReason(block *model.AgendaBlock, date time.Time) string {
	if block.Label != "" {
		return block.Label
	}

	subject := "A clínica não atende"
	if block.DoctorID != nil {
		subject = "Este profissional não atende"
	}

	switch block.BlockType {
	case model.BlockTypeWeekdays:
		return fmt.Sprintf("%s neste dia da semana (%s)", subject, WeekdayName(date.Weekday()))
	case model.BlockTypeSpecificDate:
		return fmt.Sprintf("%s nesta data (%s)", subject, date.Format("02/01/2006"))
	case model.BlockTypeDateRange:
		return fmt.Sprintf("%s no período de %s a %s",
			subject,
			block.StartDate.Format("02/01/2006"),
			block.EndDate.Format("02/01/2006"))
	}
	return subject + " nesta data"
}

// describeBlock renders one summary entry, or "" when the block closes
// nothing inside the window.
func describeBlock(block *model.AgendaBlock, from, to time.Time) string {
	label := block.Label
	if label == "" {
		label = "fechado"
	}

	switch block.BlockType {
	case model.BlockTypeWeekdays:
		names := ""
		for i, wd := range block.Weekdays {
			if i > 0 {
				names += ", "
			}
			names += weekdayNames[int(wd)]
		}
		return fmt.Sprintf("%s: %s", names, label)
	case model.BlockTypeSpecificDate:
		if block.SpecificDate == nil || !withinWindow(*block.SpecificDate, from, to) {
			return ""
		}
		return fmt.Sprintf("%s: %s", block.SpecificDate.Format("02/01/2006"), label)
	case model.BlockTypeDateRange:
		if block.StartDate == nil || block.EndDate == nil {
			return ""
		}
		if block.EndDate.Before(from) || block.StartDate.After(to) {
			return ""
		}
		return fmt.Sprintf("de %s a %s: %s",
			block.StartDate.Format("02/01/2006"),
			block.EndDate.Format("02/01/2006"),
			label)
	}
	return ""
}

func withinWindow(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}
