package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const roleSelect = `
    SELECT r.id, r.name, r.menu, r.created_at,
      COALESCE((SELECT array_agg(parent_id::text) FROM role_parents WHERE role_id = r.id), '{}'),
      COALESCE((SELECT array_agg(user_id::text) FROM role_members WHERE role_id = r.id), '{}')
    FROM roles r
`

func (s *Store) GetRole(ctx context.Context, id string) (Role, error) {
	row := s.DB.QueryRow(ctx, roleSelect+" WHERE r.id = $1", id)
	role, err := scanRole(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, ErrRoleNotFound
	}
	return role, err
}

func (s *Store) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.DB.Query(ctx, roleSelect+" ORDER BY r.created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (s *Store) FindRolesWithParent(ctx context.Context, parentID string) ([]Role, error) {
	rows, err := s.DB.Query(ctx, roleSelect+`
    WHERE r.id IN (SELECT role_id FROM role_parents WHERE parent_id = $1) AND r.id <> $1
  `, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (s *Store) CreateRole(ctx context.Context, name string, menu json.RawMessage, parents []string) (string, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	if menu == nil {
		menu = json.RawMessage("[]")
	}
	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO roles (name, menu) VALUES ($1, $2) RETURNING id
  `, name, menu).Scan(&id); err != nil {
		return "", fmt.Errorf("insert role: %w", err)
	}

	for _, parent := range parents {
		if _, err := tx.Exec(ctx, `
      INSERT INTO role_parents (role_id, parent_id) VALUES ($1, $2)
      ON CONFLICT DO NOTHING
    `, id, parent); err != nil {
			return "", err
		}
	}

	if err := bumpGraphVersion(ctx, tx); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) AddMember(ctx context.Context, roleID, userID string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)", roleID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrRoleNotFound
	}

	tag, err := tx.Exec(ctx, `
    INSERT INTO role_members (role_id, user_id) VALUES ($1, $2)
    ON CONFLICT DO NOTHING
  `, roleID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		if err := bumpGraphVersion(ctx, tx); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) RemoveMemberEverywhereExcept(ctx context.Context, userID, keepRoleID string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, "DELETE FROM role_members WHERE user_id = $1 AND role_id <> $2", userID, keepRoleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		if err := bumpGraphVersion(ctx, tx); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) GraphVersion(ctx context.Context) (int64, error) {
	var version int64
	err := s.DB.QueryRow(ctx, "SELECT version FROM access_graph WHERE id = 1").Scan(&version)
	return version, err
}

func (s *Store) UserRoleID(ctx context.Context, userID string) (string, error) {
	var roleID *string
	err := s.DB.QueryRow(ctx, "SELECT role_id FROM users WHERE id = $1", userID).Scan(&roleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	if roleID == nil {
		return "", ErrRoleNotFound
	}
	return *roleID, nil
}

func (s *Store) AllUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id FROM users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

func (s *Store) UserIDsByRole(ctx context.Context, roleIDs []string) ([]string, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	rows, err := s.DB.Query(ctx, "SELECT id FROM users WHERE role_id = ANY($1)", roleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.Menu, &role.CreatedAt, &role.Parents, &role.Members)
	return role, err
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func bumpGraphVersion(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, "UPDATE access_graph SET version = version + 1 WHERE id = 1")
	return err
}
