package db

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	t.Cleanup(func() {
		if sqlDB, errDB := conn.DB(); errDB == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func seedOwner(t *testing.T, conn *gorm.DB, email string) string {
	t.Helper()
	id := uuid.NewString()
	if err := conn.Exec(`INSERT INTO identities (id, email) VALUES (?, ?)`, id, email).Error; err != nil {
		t.Fatalf("insert identity: %v", err)
	}
	if err := conn.Exec(`INSERT INTO profiles (id, email) VALUES (?, ?)`, id, email).Error; err != nil {
		t.Fatalf("insert profile: %v", err)
	}
	return id
}

func countRows(t *testing.T, conn *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := conn.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestMigrateIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	if err := Migrate(conn); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestNormalizeSQLiteDSN(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "budget.db", want: "file:budget.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"},
		{in: "file:budget.db?cache=shared", want: "file:budget.db?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"},
		{in: "file::memory:", want: "file::memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{in: "file:x.db?_pragma=foreign_keys(0)", want: "file:x.db?_pragma=foreign_keys(0)"},
	}
	for _, tc := range cases {
		if got := NormalizeSQLiteDSN(tc.in); got != tc.want {
			t.Fatalf("NormalizeSQLiteDSN(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsPostgresDSN(t *testing.T) {
	if !IsPostgresDSN("postgres://u:p@localhost:5432/budget") {
		t.Fatalf("expected url dsn to be postgres")
	}
	if !IsPostgresDSN("host=localhost user=u dbname=budget sslmode=disable") {
		t.Fatalf("expected keyword dsn to be postgres")
	}
	if IsPostgresDSN("file:budget.db") {
		t.Fatalf("expected sqlite dsn not to be postgres")
	}
}

func TestDeletingIdentityCascadesToOwnedRows(t *testing.T) {
	conn := openTestDB(t)
	owner := seedOwner(t, conn, "a@example.com")

	budgetID := uuid.NewString()
	tabID := uuid.NewString()
	if err := conn.Exec(`INSERT INTO budgets (id, user_id, name, currency_code) VALUES (?, ?, 'Trip', 'USD')`, budgetID, owner).Error; err != nil {
		t.Fatalf("insert budget: %v", err)
	}
	if err := conn.Exec(`UPDATE profiles SET active_budget_id = ? WHERE id = ?`, budgetID, owner).Error; err != nil {
		t.Fatalf("set active budget: %v", err)
	}
	if err := conn.Exec(`INSERT INTO tabs (id, budget_id, name, amount_allocated) VALUES (?, ?, 'Hotel', 500)`, tabID, budgetID).Error; err != nil {
		t.Fatalf("insert tab: %v", err)
	}
	if err := conn.Exec(`INSERT INTO expenses (id, budget_id, tab_id, user_id, amount) VALUES (?, ?, ?, ?, 120)`, uuid.NewString(), budgetID, tabID, owner).Error; err != nil {
		t.Fatalf("insert expense: %v", err)
	}
	if err := conn.Exec(`INSERT INTO support_requests (id, user_id, email, subject, message) VALUES (?, ?, 'a@example.com', 's', 'm')`, uuid.NewString(), owner).Error; err != nil {
		t.Fatalf("insert support request: %v", err)
	}

	if err := conn.Exec(`DELETE FROM identities WHERE id = ?`, owner).Error; err != nil {
		t.Fatalf("delete identity: %v", err)
	}

	for _, table := range []string{"profiles", "budgets", "tabs", "expenses"} {
		if n := countRows(t, conn, table); n != 0 {
			t.Fatalf("expected %s to be empty, got %d rows", table, n)
		}
	}
	var nullOwners int64
	if err := conn.Table("support_requests").Where("user_id IS NULL").Count(&nullOwners).Error; err != nil {
		t.Fatalf("count support requests: %v", err)
	}
	if nullOwners != 1 {
		t.Fatalf("expected support request to survive with null owner, got %d", nullOwners)
	}
}

func TestDeletingBudgetClearsActiveBudget(t *testing.T) {
	conn := openTestDB(t)
	owner := seedOwner(t, conn, "b@example.com")
	budgetID := uuid.NewString()
	if err := conn.Exec(`INSERT INTO budgets (id, user_id, name, currency_code) VALUES (?, ?, 'Home', 'EUR')`, budgetID, owner).Error; err != nil {
		t.Fatalf("insert budget: %v", err)
	}
	if err := conn.Exec(`UPDATE profiles SET active_budget_id = ? WHERE id = ?`, budgetID, owner).Error; err != nil {
		t.Fatalf("set active budget: %v", err)
	}
	if err := conn.Exec(`DELETE FROM budgets WHERE id = ?`, budgetID).Error; err != nil {
		t.Fatalf("delete budget: %v", err)
	}
	var active *string
	if err := conn.Raw(`SELECT active_budget_id FROM profiles WHERE id = ?`, owner).Scan(&active).Error; err != nil {
		t.Fatalf("read profile: %v", err)
	}
	if active != nil {
		t.Fatalf("expected active budget to be cleared, got %q", *active)
	}
}

func TestConstraintsRejectInvalidRows(t *testing.T) {
	conn := openTestDB(t)
	owner := seedOwner(t, conn, "c@example.com")
	budgetID := uuid.NewString()
	if err := conn.Exec(`INSERT INTO budgets (id, user_id, name, currency_code) VALUES (?, ?, 'Home', 'USD')`, budgetID, owner).Error; err != nil {
		t.Fatalf("insert budget: %v", err)
	}
	tabID := uuid.NewString()
	if err := conn.Exec(`INSERT INTO tabs (id, budget_id, name, amount_allocated) VALUES (?, ?, 'Food', 10)`, tabID, budgetID).Error; err != nil {
		t.Fatalf("insert tab: %v", err)
	}

	cases := []struct {
		name string
		sql  string
		args []any
	}{
		{name: "lowercase currency", sql: `INSERT INTO budgets (id, user_id, name, currency_code) VALUES (?, ?, 'X', 'usd')`, args: []any{uuid.NewString(), owner}},
		{name: "long currency", sql: `INSERT INTO budgets (id, user_id, name, currency_code) VALUES (?, ?, 'X', 'USDX')`, args: []any{uuid.NewString(), owner}},
		{name: "duplicate tab name", sql: `INSERT INTO tabs (id, budget_id, name) VALUES (?, ?, 'Food')`, args: []any{uuid.NewString(), budgetID}},
		{name: "negative allocation", sql: `INSERT INTO tabs (id, budget_id, name, amount_allocated) VALUES (?, ?, 'Rent', -1)`, args: []any{uuid.NewString(), budgetID}},
		{name: "zero expense", sql: `INSERT INTO expenses (id, budget_id, tab_id, user_id, amount) VALUES (?, ?, ?, ?, 0)`, args: []any{uuid.NewString(), budgetID, tabID, owner}},
		{name: "unknown status", sql: `INSERT INTO support_requests (id, email, subject, message, status) VALUES (?, 'x@example.com', 's', 'm', 'pending')`, args: []any{uuid.NewString()}},
		{name: "orphan budget", sql: `INSERT INTO budgets (id, user_id, name, currency_code) VALUES (?, ?, 'X', 'USD')`, args: []any{uuid.NewString(), uuid.NewString()}},
		{name: "duplicate identity email", sql: `INSERT INTO identities (id, email) VALUES (?, 'c@example.com')`, args: []any{uuid.NewString()}},
	}
	for _, tc := range cases {
		if err := conn.Exec(tc.sql, tc.args...).Error; err == nil {
			t.Fatalf("%s: expected constraint violation", tc.name)
		}
	}

	otherBudget := uuid.NewString()
	if err := conn.Exec(`INSERT INTO budgets (id, user_id, name, currency_code) VALUES (?, ?, 'Trip', 'USD')`, otherBudget, owner).Error; err != nil {
		t.Fatalf("insert second budget: %v", err)
	}
	if err := conn.Exec(`INSERT INTO tabs (id, budget_id, name) VALUES (?, ?, 'Food')`, uuid.NewString(), otherBudget).Error; err != nil {
		t.Fatalf("same tab name in another budget: %v", err)
	}
}

func TestUpdatedAtTriggerAdvancesTimestamp(t *testing.T) {
	conn := openTestDB(t)
	owner := seedOwner(t, conn, "d@example.com")
	if err := conn.Exec(`UPDATE profiles SET updated_at = '2000-01-01 00:00:00+00:00' WHERE id = ?`, owner).Error; err != nil {
		t.Fatalf("backdate profile: %v", err)
	}
	if err := conn.Exec(`UPDATE profiles SET timezone = 'Europe/Paris' WHERE id = ?`, owner).Error; err != nil {
		t.Fatalf("update profile: %v", err)
	}
	var updated string
	if err := conn.Raw(`SELECT CAST(updated_at AS TEXT) FROM profiles WHERE id = ?`, owner).Scan(&updated).Error; err != nil {
		t.Fatalf("read profile: %v", err)
	}
	if updated <= "2000-01-01 00:00:00+00:00" {
		t.Fatalf("expected updated_at to advance, got %q", updated)
	}
}
