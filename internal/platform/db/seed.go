package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/core"
	"hrms/internal/domain/leave"
	"hrms/internal/platform/config"
)

// Menus installed with the standing roles. The admin menu is the template
// duplicated for every designation-created admin.
const (
	adminMenu    = `["dashboard","users","attendance","leave","petrol-credits","holidays","reports"]`
	employeeMenu = `["dashboard","attendance","leave","petrol-credits"]`
	rootMenu     = `["dashboard","users","roles","attendance","leave","petrol-credits","holidays","reports","settings"]`
)

// Seed installs the role graph skeleton, the badge-number counter, the
// default leave policies and the bootstrap admin account. Every step is
// idempotent so the seed can run on each start.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	rootID, err := ensureRootRole(ctx, pool)
	if err != nil {
		return err
	}

	roleMenus := map[string]string{
		core.RoleAdmin:    adminMenu,
		core.RoleEmployee: employeeMenu,
		core.RoleIntern:   employeeMenu,
	}
	for name, menu := range roleMenus {
		if _, err := ensureRole(ctx, pool, name, menu, rootID); err != nil {
			return err
		}
	}

	if _, err := pool.Exec(ctx, `
    INSERT INTO counters (name, seq) VALUES ('emp_id', 0)
    ON CONFLICT (name) DO NOTHING
  `); err != nil {
		return err
	}

	if err := ensureDefaultPolicies(ctx, pool); err != nil {
		return err
	}

	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		if err := ensureAdminUser(ctx, pool, rootID, cfg); err != nil {
			return err
		}
	}
	return nil
}

// ensureRootRole creates the self-parented hierarchy root.
func ensureRootRole(ctx context.Context, pool *pgxpool.Pool) (string, error) {
	var id string
	err := pool.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, core.RoleSuperAdmin).Scan(&id)
	if err == nil {
		return id, nil
	}

	if err := pool.QueryRow(ctx, `
    INSERT INTO roles (name, menu) VALUES ($1, $2) RETURNING id
  `, core.RoleSuperAdmin, rootMenu).Scan(&id); err != nil {
		return "", fmt.Errorf("seed root role: %w", err)
	}
	if _, err := pool.Exec(ctx, `
    INSERT INTO role_parents (role_id, parent_id) VALUES ($1, $1)
    ON CONFLICT DO NOTHING
  `, id); err != nil {
		return "", err
	}
	return id, bumpGraph(ctx, pool)
}

func ensureRole(ctx context.Context, pool *pgxpool.Pool, name, menu, parentID string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}

	if err := pool.QueryRow(ctx, `
    INSERT INTO roles (name, menu) VALUES ($1, $2) RETURNING id
  `, name, menu).Scan(&id); err != nil {
		return "", fmt.Errorf("seed role %s: %w", name, err)
	}
	if _, err := pool.Exec(ctx, `
    INSERT INTO role_parents (role_id, parent_id) VALUES ($1, $2)
    ON CONFLICT DO NOTHING
  `, id, parentID); err != nil {
		return "", err
	}
	return id, bumpGraph(ctx, pool)
}

func ensureDefaultPolicies(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM leave_policies`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, p := range leave.DefaultPolicies() {
		if _, err := pool.Exec(ctx, `
      INSERT INTO leave_policies (role_name, label, amount, accrual_type, active)
      VALUES ($1, $2, $3, $4, $5)
    `, p.RoleName, p.Label, p.Amount, string(p.Accrual), p.Active); err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, rootRoleID string, cfg config.Config) error {
	var id string
	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.SeedAdminEmail).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	if err := pool.QueryRow(ctx, `
    INSERT INTO users (name, email, password_hash, role_id, position, doj)
    VALUES ($1, $2, $3, $4, 'Super Admin', now())
    RETURNING id
  `, cfg.SeedAdminName, cfg.SeedAdminEmail, hash, rootRoleID).Scan(&id); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	if _, err := pool.Exec(ctx, `
    INSERT INTO role_members (role_id, user_id) VALUES ($1, $2)
    ON CONFLICT DO NOTHING
  `, rootRoleID, id); err != nil {
		return err
	}
	return bumpGraph(ctx, pool)
}

func bumpGraph(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `UPDATE access_graph SET version = version + 1`)
	return err
}
