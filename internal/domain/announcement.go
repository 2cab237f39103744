package domain

import (
	"context"
	"time"
)

// AnnouncementPaletteSize is the number of colors a client palette offers.
// Color is an index into that palette, not a color value.
const AnnouncementPaletteSize = 6

// Announcement is a short note pinned to the calendar board.
type Announcement struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Color     int       `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

type AnnouncementRepository interface {
	// List returns announcements newest first.
	List(ctx context.Context) ([]*Announcement, error)
	Create(ctx context.Context, a *Announcement) error
	Delete(ctx context.Context, id string) error
}

type AnnouncementService interface {
	ListAnnouncements(ctx context.Context) ([]*Announcement, error)
	CreateAnnouncement(ctx context.Context, text string, color *int) (*Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error
}
