package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// empIDCounter is the counters row backing badge number generation.
const empIDCounter = "emp_id"

// empIDBase keeps generated badge numbers in the historical OAID range.
const empIDBase = 11010

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const userSelect = `
  SELECT u.id, COALESCE(u.emp_id, ''), u.name, COALESCE(u.email, ''), COALESCE(u.mobile_no, ''),
         u.password_hash, COALESCE(u.role_id::text, ''), COALESCE(r.name, ''),
         u.position, u.designation, u.department, u.status, u.doj, u.kms_charge,
         COALESCE(u.created_by::text, ''), u.created_at
  FROM users u
  LEFT JOIN roles r ON r.id = u.role_id
`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.EmpID, &u.Name, &u.Email, &u.MobileNo,
		&u.PasswordHash, &u.RoleID, &u.RoleName,
		&u.Position, &u.Designation, &u.Department, &u.Status, &u.DOJ, &u.KmsCharge,
		&u.CreatedBy, &u.CreatedAt)
	return u, err
}

func (s *Store) Get(ctx context.Context, id string) (User, error) {
	return s.one(ctx, userSelect+` WHERE u.id = $1`, id)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.one(ctx, userSelect+` WHERE u.email = $1`, email)
}

func (s *Store) GetByMobile(ctx context.Context, mobile string) (User, error) {
	return s.one(ctx, userSelect+` WHERE u.mobile_no = $1`, mobile)
}

func (s *Store) GetByEmpID(ctx context.Context, empID string) (User, error) {
	return s.one(ctx, userSelect+` WHERE u.emp_id = $1`, empID)
}

func (s *Store) one(ctx context.Context, q string, args ...any) (User, error) {
	u, err := scanUser(s.DB.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (s *Store) MobileExists(ctx context.Context, mobile string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE mobile_no = $1)`, mobile).Scan(&exists)
	return exists, err
}

// Create inserts the user and mints the next badge number in one
// transaction, so concurrent creations can never share an emp_id.
func (s *Store) Create(ctx context.Context, u User) (User, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return User{}, err
	}
	defer tx.Rollback(ctx)

	var seq int64
	if err := tx.QueryRow(ctx, `
    INSERT INTO counters (name, seq) VALUES ($1, 1)
    ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
    RETURNING seq
  `, empIDCounter).Scan(&seq); err != nil {
		return User{}, fmt.Errorf("next badge number: %w", err)
	}
	empID := fmt.Sprintf("OAID%05d", seq+empIDBase)

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO users (emp_id, name, email, mobile_no, password_hash, role_id,
                       position, designation, department, doj, kms_charge, created_by)
    VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, '')::uuid,
            $7, $8, $9, $10, $11, NULLIF($12, '')::uuid)
    RETURNING id
  `, empID, u.Name, u.Email, u.MobileNo, u.PasswordHash, u.RoleID,
		u.Position, u.Designation, u.Department, u.DOJ, u.KmsCharge, u.CreatedBy).Scan(&id); err != nil {
		return User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) List(ctx context.Context, userIDs []string) ([]User, error) {
	q := userSelect + ` ORDER BY u.created_at DESC`
	var args []any
	if userIDs != nil {
		q = userSelect + ` WHERE u.id = ANY($1) ORDER BY u.created_at DESC`
		args = append(args, userIDs)
	}
	rows, err := s.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountByStatus returns the directory headcount split by account status.
func (s *Store) CountByStatus(ctx context.Context) (total, active int, err error) {
	err = s.DB.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status) FROM users`,
	).Scan(&total, &active)
	return total, active, err
}

// ListActive returns every enabled account, for the absent sweep and
// report jobs.
func (s *Store) ListActive(ctx context.Context) ([]User, error) {
	rows, err := s.DB.Query(ctx, userSelect+` WHERE u.status ORDER BY u.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdatePassword(ctx context.Context, userID, hash string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
  `, hash, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) SetRole(ctx context.Context, userID, roleID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET role_id = $1, updated_at = now() WHERE id = $2
  `, roleID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, userID string, active bool) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET status = $1, updated_at = now() WHERE id = $2
  `, active, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, u User) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET name = $1, position = $2, designation = $3, department = $4,
        kms_charge = $5, updated_at = now()
    WHERE id = $6
  `, u.Name, u.Position, u.Designation, u.Department, u.KmsCharge, u.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
