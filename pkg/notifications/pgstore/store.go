package pgstore

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/storefront/pkg/notifications"
	"github.com/dmitrymomot/storefront/pkg/pg"
)

// Migrations holds the goose migrations for the notifications table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that goose reads.
const MigrationsDir = "migrations"

const selectColumns = `id, user_id, title, message, type, priority, read, read_at, data, created_at`

// DB is the subset of pgxpool.Pool used by Store. pgx.Tx satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// Store is a Postgres implementation of notifications.Storage.
type Store struct {
	db DB
}

var _ notifications.Storage = (*Store)(nil)

// New creates a Store on top of a pool or transaction.
func New(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, notif notifications.Notification) error {
	if notif.ID == "" {
		return notifications.ErrMissingID
	}
	if notif.UserID == "" {
		return notifications.ErrMissingUserID
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	data, err := encodeData(notif.Data)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO notifications (`+selectColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		notif.ID, notif.UserID, notif.Title, notif.Message, notif.Type, string(notif.Priority),
		notif.Read, notif.ReadAt, data, notif.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, userID, notifID string) (*notifications.Notification, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM notifications WHERE user_id = $1 AND id = $2`,
		userID, notifID,
	)
	notif, err := scanNotification(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, notifications.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &notif, nil
}

func (s *Store) List(ctx context.Context, userID string, opts notifications.ListOptions) ([]notifications.Notification, int, error) {
	opts = opts.Normalize()
	where, args := buildFilter(userID, opts)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	args = append(args, opts.Limit, opts.Offset())
	query := `SELECT ` + selectColumns + ` FROM notifications WHERE ` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) +
		` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	list := make([]notifications.Notification, 0, opts.Limit)
	for rows.Next() {
		notif, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		list = append(list, notif)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return list, total, nil
}

func (s *Store) MarkRead(ctx context.Context, userID, notifID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE, read_at = COALESCE(read_at, now())
		 WHERE user_id = $1 AND id = $2`,
		userID, notifID,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notifications.ErrNotificationNotFound
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context, userID, notifType string) (int, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE, read_at = now()
		 WHERE user_id = $1 AND NOT read AND ($2 = '' OR type = $2)`,
		userID, notifType,
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) Delete(ctx context.Context, userID, notifID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1 AND id = $2`, userID, notifID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notifications.ErrNotificationNotFound
	}
	return nil
}

func (s *Store) CountUnread(ctx context.Context, userID, notifType string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT read AND ($2 = '' OR type = $2)`,
		userID, notifType,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// buildFilter renders the WHERE clause for List. Placeholders are numbered in
// the order of the returned args.
func buildFilter(userID string, opts notifications.ListOptions) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{userID}

	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, clause+" = $"+strconv.Itoa(len(args)))
	}
	if opts.Type != "" {
		add("type", opts.Type)
	}
	if opts.Priority != "" {
		add("priority", string(opts.Priority))
	}
	if opts.Read != nil {
		add("read", *opts.Read)
	}
	return strings.Join(clauses, " AND "), args
}

func scanNotification(row pgx.Row) (notifications.Notification, error) {
	var (
		n        notifications.Notification
		priority string
		data     []byte
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &priority,
		&n.Read, &n.ReadAt, &data, &n.CreatedAt); err != nil {
		return notifications.Notification{}, err
	}
	n.Priority = notifications.Priority(priority)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return notifications.Notification{}, errors.Join(ErrCorruptData, err)
		}
	}
	return n, nil
}

func encodeData(data map[string]any) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode notification data: %w", err)
	}
	return b, nil
}
