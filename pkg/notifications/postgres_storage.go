package notifications

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresStorage stores records in the notifications table created by
// Migrations.
type PostgresStorage struct {
	db *sqlx.DB
}

func NewPostgresStorage(db *sqlx.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

const notificationColumns = `id, kind, title, body, recipient, priority, channels, status,
	scheduled_for, expires_at, created_at, read_at, archived_at, action_url, action_text, data`

type notificationRow struct {
	ID           string                     `db:"id"`
	Kind         string                     `db:"kind"`
	Title        string                     `db:"title"`
	Body         string                     `db:"body"`
	Recipient    string                     `db:"recipient"`
	Priority     string                     `db:"priority"`
	Channels     jsonColumn[Channels]       `db:"channels"`
	Status       string                     `db:"status"`
	ScheduledFor time.Time                  `db:"scheduled_for"`
	ExpiresAt    sql.NullTime               `db:"expires_at"`
	CreatedAt    time.Time                  `db:"created_at"`
	ReadAt       sql.NullTime               `db:"read_at"`
	ArchivedAt   sql.NullTime               `db:"archived_at"`
	ActionURL    string                     `db:"action_url"`
	ActionText   string                     `db:"action_text"`
	Data         jsonColumn[map[string]any] `db:"data"`
}

func (r notificationRow) notification() Notification {
	return Notification{
		ID:           r.ID,
		Kind:         Kind(r.Kind),
		Title:        r.Title,
		Body:         r.Body,
		Recipient:    r.Recipient,
		Priority:     Priority(r.Priority),
		Channels:     r.Channels.V,
		Status:       Status(r.Status),
		ScheduledFor: r.ScheduledFor,
		ExpiresAt:    nullTimePtr(r.ExpiresAt),
		CreatedAt:    r.CreatedAt,
		ReadAt:       nullTimePtr(r.ReadAt),
		ArchivedAt:   nullTimePtr(r.ArchivedAt),
		ActionURL:    r.ActionURL,
		ActionText:   r.ActionText,
		Data:         r.Data.V,
	}
}

func (s *PostgresStorage) Create(ctx context.Context, n Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := s.db.ExecContext(ctx, query,
		n.ID, string(n.Kind), n.Title, n.Body, n.Recipient, string(n.Priority),
		jsonColumn[Channels]{V: n.Channels}, string(n.Status),
		n.ScheduledFor, n.ExpiresAt, n.CreatedAt, n.ReadAt, n.ArchivedAt,
		n.ActionURL, n.ActionText, jsonColumn[map[string]any]{V: n.Data},
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Get(ctx context.Context, id string) (*Notification, error) {
	var row notificationRow
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	n := row.notification()
	return &n, nil
}

// UpdateStatus relies on COALESCE so concurrent writers cannot move a
// timestamp once it is set, and on the CASE so archived is terminal.
func (s *PostgresStorage) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*Notification, error) {
	var row notificationRow
	query := `
		UPDATE notifications SET
			status = CASE WHEN status = 'archived' THEN status ELSE $2 END,
			read_at = COALESCE(read_at, $3),
			archived_at = COALESCE(archived_at, $4)
		WHERE id = $1
		RETURNING ` + notificationColumns

	err := s.db.GetContext(ctx, &row, query, id, string(upd.Status), upd.ReadAt, upd.ArchivedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("update notification status: %w", err)
	}
	n := row.notification()
	return &n, nil
}

func (s *PostgresStorage) List(ctx context.Context, recipient string, opts ListOptions) ([]Notification, int, error) {
	where, args := listFilter(recipient, opts)

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications WHERE `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	if total == 0 {
		return []Notification{}, 0, nil
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE ` + where + ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	out := make([]Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.notification())
	}
	return out, total, nil
}

func (s *PostgresStorage) CountUnread(ctx context.Context, recipient string, now time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE recipient = $1 AND status = 'sent' AND (expires_at IS NULL OR expires_at > $2)`
	if err := s.db.GetContext(ctx, &count, query, recipient, now); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *PostgresStorage) MarkAllRead(ctx context.Context, recipient string, at time.Time) (int, error) {
	query := `
		UPDATE notifications SET status = 'read', read_at = COALESCE(read_at, $2)
		WHERE recipient = $1 AND status = 'sent'`
	res, err := s.db.ExecContext(ctx, query, recipient, at)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return int(affected), nil
}

func listFilter(recipient string, opts ListOptions) (string, []any) {
	conds := []string{"recipient = $1"}
	args := []any{recipient}

	if opts.UnreadOnly {
		conds = append(conds, "status = 'sent'")
	}
	if !opts.IncludeArchived {
		conds = append(conds, "status <> 'archived'")
	}
	if !opts.IncludeExpired {
		args = append(args, opts.now())
		conds = append(conds, fmt.Sprintf("(expires_at IS NULL OR expires_at > $%d)", len(args)))
	}
	if len(opts.Kinds) > 0 {
		placeholders := make([]string, 0, len(opts.Kinds))
		for _, k := range opts.Kinds {
			args = append(args, string(k))
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		conds = append(conds, "kind IN ("+strings.Join(placeholders, ", ")+")")
	}
	return strings.Join(conds, " AND "), args
}

// jsonColumn maps a Go value onto a JSONB column.
type jsonColumn[T any] struct {
	V T
}

func (j jsonColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return string(b), nil
}

func (j *jsonColumn[T]) Scan(src any) error {
	var zero T
	switch v := src.(type) {
	case nil:
		j.V = zero
		return nil
	case []byte:
		return json.Unmarshal(v, &j.V)
	case string:
		return json.Unmarshal([]byte(v), &j.V)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
