package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"familycal/internal/domain"
)

const eventColumns = `id, title, person, category, start_time, end_time, recurring, reminder_minutes, notes, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// List returns events whose start_time lies within the filter bounds, ordered by start.
func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	var (
		conds []string
		args  []any
	)
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("start_time >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("start_time <= $%d", len(args)))
	}
	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY start_time ASC`
	return r.query(ctx, query, args...)
}

// ListWithReminders returns events with a reminder that start at or after since.
func (r *eventRepository) ListWithReminders(ctx context.Context, since time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE reminder_minutes IS NOT NULL AND start_time >= $1
		ORDER BY start_time ASC
	`
	return r.query(ctx, query, since)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (id, title, person, category, start_time, end_time, recurring, reminder_minutes, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Title, e.Person, e.Category, e.StartTime, e.EndTime, e.Recurring,
		nullInt(e.ReminderMinutes), nullString(e.Notes), e.CreatedAt, e.UpdatedAt,
	)
	return err
}

// Update replaces every mutable column of the event.
func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, person = $3, category = $4, start_time = $5, end_time = $6,
		    recurring = $7, reminder_minutes = $8, notes = $9, updated_at = $10
		WHERE id = $1
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.ID, e.Title, e.Person, e.Category, e.StartTime, e.EndTime, e.Recurring,
		nullInt(e.ReminderMinutes), nullString(e.Notes), e.UpdatedAt,
	).Scan(&e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var reminderNull sql.NullInt64
	var notesNull sql.NullString
	err := row.Scan(
		&e.ID, &e.Title, &e.Person, &e.Category, &e.StartTime, &e.EndTime, &e.Recurring,
		&reminderNull, &notesNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reminderNull.Valid {
		m := int(reminderNull.Int64)
		e.ReminderMinutes = &m
	}
	if notesNull.Valid {
		e.Notes = &notesNull.String
	}
	return e, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
