package service

import (
	"context"
	"strings"
	"time"

	"github.com/stateboard/stateboard-backend/internal/annotations/domain"
	"github.com/stateboard/stateboard-backend/internal/annotations/repository"
)

// NoteService validates and stores notes. New notes start as drafts
// unless the caller says otherwise.
type NoteService struct {
	repo *repository.NoteRepository
}

func NewNoteService(repo *repository.NoteRepository) *NoteService {
	return &NoteService{repo: repo}
}

func (s *NoteService) Create(ctx context.Context, n domain.Note) (*domain.Note, error) {
	if err := validate(&n); err != nil {
		return nil, err
	}
	if n.Status == "" {
		n.Status = domain.StatusDraft
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	return s.repo.Create(ctx, &n)
}

func (s *NoteService) ByTarget(ctx context.Context, targetType, targetKey string) ([]domain.Note, error) {
	if !domain.ValidTargetType(targetType) {
		return nil, &domain.ValidationError{Field: "targetType", Message: "must be state or transition"}
	}
	return s.repo.ByTarget(ctx, targetType, targetKey)
}

func (s *NoteService) Get(ctx context.Context, id string) (*domain.Note, error) {
	return s.repo.Get(ctx, id)
}

// Update rewrites the editable fields. The target binding and creation
// time never change after insert.
func (s *NoteService) Update(ctx context.Context, id string, n domain.Note) (*domain.Note, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Title = n.Title
	existing.Content = n.Content
	existing.Category = n.Category
	existing.Ticket = n.Ticket
	if n.Status != "" {
		existing.Status = n.Status
	}
	if strings.TrimSpace(existing.Content) == "" {
		return nil, &domain.ValidationError{Field: "content", Message: "required"}
	}
	existing.UpdatedAt = time.Now().UTC()

	return s.repo.Update(ctx, existing)
}

func (s *NoteService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// CountFor satisfies the detail panel's notes-count dependency.
func (s *NoteService) CountFor(ctx context.Context, targetType, targetKey string) (int, error) {
	return s.repo.CountByTarget(ctx, targetType, targetKey)
}

func validate(n *domain.Note) error {
	if !domain.ValidTargetType(n.TargetType) {
		return &domain.ValidationError{Field: "targetType", Message: "must be state or transition"}
	}
	if strings.TrimSpace(n.TargetKey) == "" {
		return &domain.ValidationError{Field: "targetKey", Message: "required"}
	}
	if strings.TrimSpace(n.Content) == "" {
		return &domain.ValidationError{Field: "content", Message: "required"}
	}
	return nil
}
