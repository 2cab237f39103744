package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"familycal/internal/domain"
)

type announcementService struct {
	repo           domain.AnnouncementRepository
	contextTimeout time.Duration
	now            func() time.Time
}

func NewAnnouncementService(repo domain.AnnouncementRepository, timeout time.Duration) domain.AnnouncementService {
	return &announcementService{
		repo:           repo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *announcementService) ListAnnouncements(ctx context.Context) ([]*domain.Announcement, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return list, nil
}

// CreateAnnouncement stores a note; a nil color means palette index 0.
func (s *announcementService) CreateAnnouncement(ctx context.Context, text string, color *int) (*domain.Announcement, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: missing text", domain.ErrValidation)
	}
	c := 0
	if color != nil {
		c = *color
	}
	if c < 0 || c >= domain.AnnouncementPaletteSize {
		return nil, fmt.Errorf("%w: color must be between 0 and %d", domain.ErrValidation, domain.AnnouncementPaletteSize-1)
	}
	a := &domain.Announcement{
		ID:        uuid.NewString(),
		Text:      text,
		Color:     c,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}
	return a, nil
}

func (s *announcementService) DeleteAnnouncement(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return nil
}
