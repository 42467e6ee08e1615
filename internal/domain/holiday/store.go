package holiday

import (
	"context"
	"errors"
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

const ruleSelect = `
  SELECT id, name, COALESCE(exact_date, ''), COALESCE(kind, ''),
         COALESCE(weekdays, '{}'), COALESCE(months, '{}'), COALESCE(nths, '{}'),
         COALESCE(start_mmdd, ''), color, is_government, is_enabled, created_at
  FROM holiday_rules
`

func scanRule(row pgx.Row) (Rule, error) {
	var (
		rule   Rule
		months []int
	)
	if err := row.Scan(&rule.ID, &rule.Name, &rule.ExactDate, &rule.Kind,
		&rule.Weekdays, &months, &rule.Nths,
		&rule.StartMMDD, &rule.Color, &rule.IsGovernment, &rule.IsEnabled,
		&rule.CreatedAt); err != nil {
		return Rule{}, err
	}
	for _, m := range months {
		rule.Months = append(rule.Months, time.Month(m))
	}
	return rule, nil
}

func (s *Store) Get(ctx context.Context, id string) (Rule, error) {
	rule, err := scanRule(s.DB.QueryRow(ctx, ruleSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Rule{}, ErrRuleNotFound
	}
	return rule, err
}

func (s *Store) List(ctx context.Context) ([]Rule, error) {
	return s.list(ctx, ruleSelect+` ORDER BY created_at`)
}

func (s *Store) ListEnabled(ctx context.Context) ([]Rule, error) {
	return s.list(ctx, ruleSelect+` WHERE is_enabled ORDER BY created_at`)
}

func (s *Store) list(ctx context.Context, q string) ([]Rule, error) {
	rows, err := s.DB.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (s *Store) Create(ctx context.Context, rule Rule) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO holiday_rules (name, exact_date, kind, weekdays, months, nths, start_mmdd, color, is_government, is_enabled)
    VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), $8, $9, $10)
    RETURNING id
  `, rule.Name, rule.ExactDate, rule.Kind, rule.Weekdays, monthInts(rule.Months), rule.Nths,
		rule.StartMMDD, rule.Color, rule.IsGovernment, rule.IsEnabled).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM holiday_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (s *Store) SetEnabled(ctx context.Context, id string, enabled bool) error {
	tag, err := s.DB.Exec(ctx, `UPDATE holiday_rules SET is_enabled = $1 WHERE id = $2`, enabled, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func monthInts(months []time.Month) []int {
	out := make([]int, len(months))
	for i, m := range months {
		out[i] = int(m)
	}
	return out
}
