package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/locvowork/employee_directory/internal/logger"
)

type migration struct {
	name string
	sql  string
}

// migrations are idempotent and applied in order.
var migrations = []migration{
	{"create employees", `
		CREATE TABLE IF NOT EXISTS employees (
			id          uuid PRIMARY KEY,
			user_id     text,
			name        text NOT NULL,
			email       text NOT NULL,
			age         integer NOT NULL DEFAULT 0 CHECK (age >= 0),
			class       text NOT NULL DEFAULT '',
			subjects    text[] NOT NULL DEFAULT '{}',
			attendance  integer NOT NULL DEFAULT 0,
			position    text NOT NULL DEFAULT '',
			salary      numeric(12,2) NOT NULL DEFAULT 0 CHECK (salary >= 0),
			phone       text,
			address     text,
			hire_date   date NOT NULL DEFAULT CURRENT_DATE,
			is_active   boolean NOT NULL DEFAULT true,
			flagged     boolean NOT NULL DEFAULT false,
			created_at  timestamptz NOT NULL DEFAULT now(),
			updated_at  timestamptz NOT NULL DEFAULT now()
		)`},
	{"create user_roles", `
		CREATE TABLE IF NOT EXISTS user_roles (
			user_id text PRIMARY KEY,
			role    text NOT NULL DEFAULT 'employee'
		)`},
	{"index employees class", `CREATE INDEX IF NOT EXISTS employees_class_idx ON employees (class)`},
	{"index employees created_at", `CREATE INDEX IF NOT EXISTS employees_created_at_idx ON employees (created_at DESC, id)`},
	{"index employees name", `CREATE INDEX IF NOT EXISTS employees_name_lower_idx ON employees (lower(name))`},
	{"index employees email", `CREATE INDEX IF NOT EXISTS employees_email_lower_idx ON employees (lower(email))`},
}

// Migrate creates the schema when it is missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	logger.InfoLog(ctx, "Running database migrations...")
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %q: %w", m.name, err)
		}
		logger.DebugLog(ctx, "migration %q applied", m.name)
	}
	logger.InfoLog(ctx, "Database migrations completed successfully")
	return nil
}
