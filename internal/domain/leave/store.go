package leave

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetLedger(ctx context.Context, userID string, label Label) (*Ledger, error) {
	var ledger Ledger
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_id, label, accrual_type, amount, value, doj, version
    FROM leave_ledgers
    WHERE user_id = $1 AND label = $2
  `, userID, string(label)).Scan(&ledger.ID, &ledger.UserID, &ledger.Label, &ledger.Accrual, &ledger.Amount, &ledger.Value, &ledger.DOJ, &ledger.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeaveTypeNotConfigured
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadBuckets(ctx, &ledger); err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (s *Store) ListLedgers(ctx context.Context, userID string) ([]*Ledger, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, label, accrual_type, amount, value, doj, version
    FROM leave_ledgers
    WHERE user_id = $1
    ORDER BY label
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ledgers []*Ledger
	for rows.Next() {
		var ledger Ledger
		if err := rows.Scan(&ledger.ID, &ledger.UserID, &ledger.Label, &ledger.Accrual, &ledger.Amount, &ledger.Value, &ledger.DOJ, &ledger.Version); err != nil {
			return nil, err
		}
		ledgers = append(ledgers, &ledger)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, ledger := range ledgers {
		if err := s.loadBuckets(ctx, ledger); err != nil {
			return nil, err
		}
	}
	return ledgers, nil
}

func (s *Store) loadBuckets(ctx context.Context, ledger *Ledger) error {
	rows, err := s.DB.Query(ctx, `
    SELECT year, months, annual_value
    FROM leave_buckets
    WHERE ledger_id = $1
    ORDER BY year
  `, ledger.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	ledger.Buckets = map[int]*Bucket{}
	for rows.Next() {
		var bucket Bucket
		var months []int
		if err := rows.Scan(&bucket.Year, &months, &bucket.AnnualValue); err != nil {
			return err
		}
		copy(bucket.Months[:], months)
		ledger.Buckets[bucket.Year] = &bucket
	}
	return rows.Err()
}

func (s *Store) CreateLedgers(ctx context.Context, ledgers []Ledger) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := range ledgers {
		ledger := &ledgers[i]
		if err := tx.QueryRow(ctx, `
      INSERT INTO leave_ledgers (user_id, label, accrual_type, amount, value, doj)
      VALUES ($1, $2, $3, $4, $5, $6)
      RETURNING id
    `, ledger.UserID, string(ledger.Label), string(ledger.Accrual), ledger.Amount, ledger.Value, ledger.DOJ).Scan(&ledger.ID); err != nil {
			return err
		}
		for _, bucket := range ledger.Buckets {
			if _, err := tx.Exec(ctx, `
        INSERT INTO leave_buckets (ledger_id, year, months, annual_value)
        VALUES ($1, $2, $3, $4)
      `, ledger.ID, bucket.Year, bucket.Months[:], bucket.AnnualValue); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) SaveLedger(ctx context.Context, ledger *Ledger) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE leave_ledgers
    SET value = $1, version = version + 1, updated_at = now()
    WHERE id = $2 AND version = $3
  `, ledger.Value, ledger.ID, ledger.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	for _, bucket := range ledger.Buckets {
		if _, err := tx.Exec(ctx, `
      INSERT INTO leave_buckets (ledger_id, year, months, annual_value)
      VALUES ($1, $2, $3, $4)
      ON CONFLICT (ledger_id, year)
      DO UPDATE SET months = EXCLUDED.months, annual_value = EXCLUDED.annual_value
    `, ledger.ID, bucket.Year, bucket.Months[:], bucket.AnnualValue); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	ledger.Version++
	return nil
}

func (s *Store) ListActivePolicies(ctx context.Context, roleName string) ([]Policy, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, role_name, label, amount, accrual_type, active
    FROM leave_policies
    WHERE active = true AND (role_name = $1 OR role_name = '')
  `, roleName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []Policy
	for rows.Next() {
		var p Policy
		if err := rows.Scan(&p.ID, &p.RoleName, &p.Label, &p.Amount, &p.Accrual, &p.Active); err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func (s *Store) InsertPolicies(ctx context.Context, policies []Policy) error {
	for _, p := range policies {
		if _, err := s.DB.Exec(ctx, `
      INSERT INTO leave_policies (role_name, label, amount, accrual_type, active)
      VALUES ($1, $2, $3, $4, $5)
      ON CONFLICT (role_name, label) DO NOTHING
    `, p.RoleName, p.Label, p.Amount, string(p.Accrual), p.Active); err != nil {
			return err
		}
	}
	return nil
}
