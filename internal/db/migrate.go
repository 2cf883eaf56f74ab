package db

import (
	"fmt"

	"gorm.io/gorm"
)

// budgetTables lists every table carrying an updated_at column.
var budgetTables = []string{"identities", "profiles", "budgets", "tabs", "expenses", "support_requests"}

// migrationStep is a named DDL statement.
type migrationStep struct {
	name string
	sql  string
}

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite:
		return migrateSQLite(conn)
	case DialectPostgres, "":
		return migratePostgres(conn)
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}
}

// runSteps executes steps in order inside one transaction.
func runSteps(conn *gorm.DB, steps []migrationStep) error {
	return conn.Transaction(func(tx *gorm.DB) error {
		for _, step := range steps {
			if errExec := tx.Exec(step.sql).Error; errExec != nil {
				return fmt.Errorf("db: %s: %w", step.name, errExec)
			}
		}
		return nil
	})
}

// migratePostgres creates the PostgreSQL schema, constraints and triggers.
func migratePostgres(conn *gorm.DB) error {
	steps := []migrationStep{
		{name: "create identities", sql: `
			CREATE TABLE IF NOT EXISTS identities (
				id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				email text NOT NULL,
				password_hash text,
				metadata jsonb NOT NULL DEFAULT '{}'::jsonb,
				created_at timestamptz NOT NULL DEFAULT now(),
				updated_at timestamptz NOT NULL DEFAULT now()
			)`},
		{name: "create identities email index", sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_identities_email ON identities (email)`},
		{name: "create profiles", sql: `
			CREATE TABLE IF NOT EXISTS profiles (
				id uuid PRIMARY KEY REFERENCES identities (id) ON DELETE CASCADE,
				email text NOT NULL,
				full_name text,
				display_name text,
				avatar_url text,
				currency_code varchar(3) NOT NULL DEFAULT 'USD' CHECK (currency_code ~ '^[A-Z]{3}$'),
				timezone text NOT NULL DEFAULT 'UTC',
				active_budget_id uuid,
				created_at timestamptz NOT NULL DEFAULT now(),
				updated_at timestamptz NOT NULL DEFAULT now()
			)`},
		{name: "create profiles email index", sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_email ON profiles (email)`},
		{name: "create budgets", sql: `
			CREATE TABLE IF NOT EXISTS budgets (
				id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				user_id uuid NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
				name text NOT NULL,
				description text,
				currency_code varchar(3) NOT NULL CHECK (currency_code ~ '^[A-Z]{3}$'),
				created_at timestamptz NOT NULL DEFAULT now(),
				updated_at timestamptz NOT NULL DEFAULT now()
			)`},
		{name: "create budgets owner index", sql: `CREATE INDEX IF NOT EXISTS idx_budgets_user_created ON budgets (user_id, created_at DESC)`},
		{name: "link profiles active budget", sql: `
			DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint WHERE conname = 'profiles_active_budget_id_fkey'
				) THEN
					ALTER TABLE profiles
						ADD CONSTRAINT profiles_active_budget_id_fkey
						FOREIGN KEY (active_budget_id) REFERENCES budgets (id) ON DELETE SET NULL;
				END IF;
			END $$;`},
		{name: "create tabs", sql: `
			CREATE TABLE IF NOT EXISTS tabs (
				id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				budget_id uuid NOT NULL REFERENCES budgets (id) ON DELETE CASCADE,
				name text NOT NULL,
				description text,
				color text,
				icon text,
				amount_allocated numeric(12,2) NOT NULL DEFAULT 0 CHECK (amount_allocated >= 0),
				position integer NOT NULL DEFAULT 0,
				created_at timestamptz NOT NULL DEFAULT now(),
				updated_at timestamptz NOT NULL DEFAULT now(),
				CONSTRAINT tabs_budget_name_key UNIQUE (budget_id, name)
			)`},
		{name: "create tabs position index", sql: `CREATE INDEX IF NOT EXISTS idx_tabs_budget_position ON tabs (budget_id, position)`},
		{name: "create expenses", sql: `
			CREATE TABLE IF NOT EXISTS expenses (
				id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				budget_id uuid NOT NULL REFERENCES budgets (id) ON DELETE CASCADE,
				tab_id uuid NOT NULL REFERENCES tabs (id) ON DELETE CASCADE,
				user_id uuid NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
				amount numeric(12,2) NOT NULL CHECK (amount > 0),
				description text,
				expense_date date NOT NULL DEFAULT CURRENT_DATE,
				created_at timestamptz NOT NULL DEFAULT now(),
				updated_at timestamptz NOT NULL DEFAULT now()
			)`},
		{name: "create expenses date index", sql: `CREATE INDEX IF NOT EXISTS idx_expenses_budget_date ON expenses (budget_id, expense_date DESC, created_at DESC)`},
		{name: "create expenses tab index", sql: `CREATE INDEX IF NOT EXISTS idx_expenses_tab ON expenses (tab_id)`},
		{name: "create support_requests", sql: `
			CREATE TABLE IF NOT EXISTS support_requests (
				id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				user_id uuid REFERENCES profiles (id) ON DELETE SET NULL,
				email text NOT NULL,
				subject text NOT NULL,
				message text NOT NULL,
				status text NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'in_progress', 'resolved', 'closed')),
				created_at timestamptz NOT NULL DEFAULT now(),
				updated_at timestamptz NOT NULL DEFAULT now()
			)`},
		{name: "create support_requests user index", sql: `CREATE INDEX IF NOT EXISTS idx_support_requests_user ON support_requests (user_id)`},
		{name: "create set_updated_at", sql: `
			CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
			BEGIN
				NEW.updated_at = now();
				RETURN NEW;
			END;
			$$ LANGUAGE plpgsql`},
	}
	for _, table := range budgetTables {
		steps = append(steps,
			migrationStep{
				name: "drop " + table + " updated_at trigger",
				sql:  fmt.Sprintf(`DROP TRIGGER IF EXISTS trg_%s_updated_at ON %s`, table, table),
			},
			migrationStep{
				name: "create " + table + " updated_at trigger",
				sql: fmt.Sprintf(`CREATE TRIGGER trg_%s_updated_at BEFORE UPDATE ON %s
					FOR EACH ROW EXECUTE FUNCTION set_updated_at()`, table, table),
			},
		)
	}
	return runSteps(conn, steps)
}

// sqliteNow renders the current UTC time the way the driver stores time values.
const sqliteNow = `(strftime('%Y-%m-%d %H:%M:%f+00:00', 'now'))`

// sqliteCurrency is the SQLite rendition of the three uppercase letters check.
const sqliteCurrency = `length(currency_code) = 3 AND currency_code GLOB '[A-Z][A-Z][A-Z]'`

// migrateSQLite creates the SQLite schema, constraints and triggers.
func migrateSQLite(conn *gorm.DB) error {
	steps := []migrationStep{
		{name: "create identities", sql: `
			CREATE TABLE IF NOT EXISTS identities (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL,
				password_hash TEXT,
				metadata TEXT NOT NULL DEFAULT '{}',
				created_at datetime NOT NULL DEFAULT ` + sqliteNow + `,
				updated_at datetime NOT NULL DEFAULT ` + sqliteNow + `
			)`},
		{name: "create identities email index", sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_identities_email ON identities (email)`},
		{name: "create profiles", sql: `
			CREATE TABLE IF NOT EXISTS profiles (
				id TEXT PRIMARY KEY REFERENCES identities (id) ON DELETE CASCADE,
				email TEXT NOT NULL,
				full_name TEXT,
				display_name TEXT,
				avatar_url TEXT,
				currency_code TEXT NOT NULL DEFAULT 'USD' CHECK (` + sqliteCurrency + `),
				timezone TEXT NOT NULL DEFAULT 'UTC',
				active_budget_id TEXT REFERENCES budgets (id) ON DELETE SET NULL,
				created_at datetime NOT NULL DEFAULT ` + sqliteNow + `,
				updated_at datetime NOT NULL DEFAULT ` + sqliteNow + `
			)`},
		{name: "create profiles email index", sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_email ON profiles (email)`},
		{name: "create budgets", sql: `
			CREATE TABLE IF NOT EXISTS budgets (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
				name TEXT NOT NULL,
				description TEXT,
				currency_code TEXT NOT NULL CHECK (` + sqliteCurrency + `),
				created_at datetime NOT NULL DEFAULT ` + sqliteNow + `,
				updated_at datetime NOT NULL DEFAULT ` + sqliteNow + `
			)`},
		{name: "create budgets owner index", sql: `CREATE INDEX IF NOT EXISTS idx_budgets_user_created ON budgets (user_id, created_at DESC)`},
		{name: "create tabs", sql: `
			CREATE TABLE IF NOT EXISTS tabs (
				id TEXT PRIMARY KEY,
				budget_id TEXT NOT NULL REFERENCES budgets (id) ON DELETE CASCADE,
				name TEXT NOT NULL,
				description TEXT,
				color TEXT,
				icon TEXT,
				amount_allocated numeric(12,2) NOT NULL DEFAULT 0 CHECK (amount_allocated >= 0),
				position INTEGER NOT NULL DEFAULT 0,
				created_at datetime NOT NULL DEFAULT ` + sqliteNow + `,
				updated_at datetime NOT NULL DEFAULT ` + sqliteNow + `,
				UNIQUE (budget_id, name)
			)`},
		{name: "create tabs position index", sql: `CREATE INDEX IF NOT EXISTS idx_tabs_budget_position ON tabs (budget_id, position)`},
		{name: "create expenses", sql: `
			CREATE TABLE IF NOT EXISTS expenses (
				id TEXT PRIMARY KEY,
				budget_id TEXT NOT NULL REFERENCES budgets (id) ON DELETE CASCADE,
				tab_id TEXT NOT NULL REFERENCES tabs (id) ON DELETE CASCADE,
				user_id TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
				amount numeric(12,2) NOT NULL CHECK (amount > 0),
				description TEXT,
				expense_date date NOT NULL DEFAULT (date('now')),
				created_at datetime NOT NULL DEFAULT ` + sqliteNow + `,
				updated_at datetime NOT NULL DEFAULT ` + sqliteNow + `
			)`},
		{name: "create expenses date index", sql: `CREATE INDEX IF NOT EXISTS idx_expenses_budget_date ON expenses (budget_id, expense_date DESC, created_at DESC)`},
		{name: "create expenses tab index", sql: `CREATE INDEX IF NOT EXISTS idx_expenses_tab ON expenses (tab_id)`},
		{name: "create support_requests", sql: `
			CREATE TABLE IF NOT EXISTS support_requests (
				id TEXT PRIMARY KEY,
				user_id TEXT REFERENCES profiles (id) ON DELETE SET NULL,
				email TEXT NOT NULL,
				subject TEXT NOT NULL,
				message TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'in_progress', 'resolved', 'closed')),
				created_at datetime NOT NULL DEFAULT ` + sqliteNow + `,
				updated_at datetime NOT NULL DEFAULT ` + sqliteNow + `
			)`},
		{name: "create support_requests user index", sql: `CREATE INDEX IF NOT EXISTS idx_support_requests_user ON support_requests (user_id)`},
	}
	for _, table := range budgetTables {
		steps = append(steps, migrationStep{
			name: "create " + table + " updated_at trigger",
			sql: fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS trg_%s_updated_at AFTER UPDATE ON %s
				FOR EACH ROW WHEN NEW.updated_at = OLD.updated_at
				BEGIN
					UPDATE %s SET updated_at = %s WHERE id = NEW.id;
				END`, table, table, table, sqliteNow),
		})
	}
	return runSteps(conn, steps)
}
