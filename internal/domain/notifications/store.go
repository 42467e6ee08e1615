package notifications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, n Notification) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO notifications (user_id, ntype, title, body)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, n.UserID, n.Type, n.Title, n.Body).Scan(&id)
	return id, err
}

func (s *Store) ListForUser(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, ntype, title, body, read, created_at
    FROM notifications
    WHERE user_id = $1
    ORDER BY created_at DESC
    LIMIT $2
  `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) MarkRead(ctx context.Context, userID, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2
  `, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context, userID string) (int, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read = true WHERE user_id = $1 AND NOT read
  `, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Recipient resolves the name and mail address for a user.
func (s *Store) Recipient(ctx context.Context, userID string) (name, email string, err error) {
	err = s.DB.QueryRow(ctx, `
    SELECT name, COALESCE(email, '') FROM users WHERE id = $1
  `, userID).Scan(&name, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrUserNotFound
	}
	return name, email, err
}
