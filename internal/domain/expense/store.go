package expense

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const creditSelect = `
  SELECT c.id, c.user_id, COALESCE(u.name, ''), COALESCE(u.emp_id, ''),
         c.travel_date, c.from_place, c.to_place, c.purpose, c.mode,
         c.kms, c.amount, c.approved, c.approved_by, c.remarks, c.created_at
  FROM petrol_credits c
  LEFT JOIN users u ON u.id = c.user_id
`

func scanCredit(row pgx.Row) (Credit, error) {
	var c Credit
	err := row.Scan(&c.ID, &c.UserID, &c.UserName, &c.EmpID,
		&c.TravelDate, &c.FromPlace, &c.ToPlace, &c.Purpose, &c.Mode,
		&c.Kms, &c.Amount, &c.Approved, &c.ApprovedBy, &c.Remarks, &c.CreatedAt)
	return c, err
}

func (s *Store) Get(ctx context.Context, id string) (Credit, error) {
	c, err := scanCredit(s.DB.QueryRow(ctx, creditSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Credit{}, ErrCreditNotFound
	}
	return c, err
}

func (s *Store) Create(ctx context.Context, c Credit) (Credit, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO petrol_credits (user_id, travel_date, from_place, to_place, purpose, mode, kms, amount)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING id
  `, c.UserID, c.TravelDate, c.FromPlace, c.ToPlace, c.Purpose, c.Mode, c.Kms, c.Amount).Scan(&id); err != nil {
		return Credit{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM petrol_credits WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCreditNotFound
	}
	return nil
}

func (s *Store) SetApproval(ctx context.Context, id string, approved bool, approvedBy, remarks string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE petrol_credits
    SET approved = $1, approved_by = $2, remarks = $3, updated_at = now()
    WHERE id = $4
  `, approved, approvedBy, remarks, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCreditNotFound
	}
	return nil
}

// ApproveAllPending approves every undecided claim of one user. Returns
// the number of claims touched.
func (s *Store) ApproveAllPending(ctx context.Context, userID, approvedBy, remarks string) (int, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE petrol_credits
    SET approved = true, approved_by = $1, remarks = $2, updated_at = now()
    WHERE user_id = $3 AND approved IS NULL
  `, approvedBy, remarks, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]Credit, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.UserIDs != nil {
		where = append(where, "c.user_id = ANY("+arg(f.UserIDs)+")")
	}
	if f.Pending {
		where = append(where, "c.approved IS NULL")
	}
	if !f.From.IsZero() {
		where = append(where, "c.travel_date >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "c.travel_date <= "+arg(f.To))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, "(c.from_place ILIKE "+p+" OR c.to_place ILIKE "+p+" OR c.purpose ILIKE "+p+" OR c.mode ILIKE "+p+")")
	}

	q := creditSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY c.travel_date DESC, c.created_at DESC"

	rows, err := s.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credits []Credit
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		credits = append(credits, c)
	}
	return credits, rows.Err()
}

// ApprovedTotal sums a user's approved claims inside a date window.
func (s *Store) ApprovedTotal(ctx context.Context, userID string, from, to time.Time) (MonthTotal, error) {
	total := MonthTotal{UserID: userID}
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(amount), 0), COUNT(*)
    FROM petrol_credits
    WHERE user_id = $1 AND approved = true AND travel_date BETWEEN $2 AND $3
  `, userID, from, to).Scan(&total.Amount, &total.Count)
	return total, err
}

// UserKmsCharge reads the claimant's per-km reimbursement rate.
func (s *Store) UserKmsCharge(ctx context.Context, userID string) (float64, error) {
	var charge float64
	err := s.DB.QueryRow(ctx, `SELECT kms_charge FROM users WHERE id = $1`, userID).Scan(&charge)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return charge, err
}
