package postgres

import (
	"context"
	"database/sql"
	"time"

	"familycal/internal/domain"
)

type outboxRepository struct {
	DB *sql.DB
}

func NewOutboxRepository(db *sql.DB) domain.OutboxRepository {
	return &outboxRepository{
		DB: db,
	}
}

func (r *outboxRepository) Enqueue(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notification_outbox (id, kind, payload, exclude_chat_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	var exclude sql.NullInt64
	if n.ExcludeChatID != nil {
		exclude = sql.NullInt64{Int64: *n.ExcludeChatID, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, n.ID, string(n.Kind), []byte(n.Payload), exclude, n.CreatedAt)
	return err
}

func (r *outboxRepository) Pending(ctx context.Context, limit int) ([]*domain.Notification, error) {
	query := `
		SELECT id, kind, payload, exclude_chat_id, attempts, last_error, created_at
		FROM notification_outbox
		WHERE dispatched_at IS NULL AND attempts < $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, domain.MaxNotificationAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{}
		var (
			kind      string
			payload   []byte
			exclude   sql.NullInt64
			lastError sql.NullString
		)
		if err := rows.Scan(&n.ID, &kind, &payload, &exclude, &n.Attempts, &lastError, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Kind = domain.NotificationKind(kind)
		n.Payload = payload
		if exclude.Valid {
			id := exclude.Int64
			n.ExcludeChatID = &id
		}
		if lastError.Valid {
			n.LastError = &lastError.String
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (r *outboxRepository) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE notification_outbox
		SET dispatched_at = $2, attempts = attempts + 1, last_error = NULL
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, at)
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, errText string) error {
	query := `
		UPDATE notification_outbox
		SET attempts = attempts + 1, last_error = $2
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, errText)
}

func (r *outboxRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
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
