package policy

import (
	"path/filepath"
	"testing"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/db"
	"github.com/budgettabs/budgettabs/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "policy.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func seedProfile(t *testing.T, conn *gorm.DB, email string) uuid.UUID {
	t.Helper()
	identity := models.Identity{Email: email}
	if err := conn.Create(&identity).Error; err != nil {
		t.Fatalf("create identity: %v", err)
	}
	profile := models.Profile{ID: identity.ID, Email: email, CurrencyCode: "USD", Timezone: "UTC"}
	if err := conn.Create(&profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return identity.ID
}

type fixture struct {
	budget  models.Budget
	tab     models.Tab
	expense models.Expense
}

func seedBudget(t *testing.T, conn *gorm.DB, owner uuid.UUID) fixture {
	t.Helper()
	f := fixture{budget: models.Budget{UserID: owner, Name: "Home", CurrencyCode: "USD"}}
	if err := conn.Create(&f.budget).Error; err != nil {
		t.Fatalf("create budget: %v", err)
	}
	f.tab = models.Tab{BudgetID: f.budget.ID, Name: "Food", AmountAllocated: decimal.NewFromInt(100)}
	if err := conn.Create(&f.tab).Error; err != nil {
		t.Fatalf("create tab: %v", err)
	}
	f.expense = models.Expense{
		BudgetID:    f.budget.ID,
		TabID:       f.tab.ID,
		UserID:      owner,
		Amount:      decimal.NewFromInt(5),
		ExpenseDate: datatypes.Date(f.budget.CreatedAt),
	}
	if err := conn.Create(&f.expense).Error; err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return f
}

func TestRequireRejectsAnonymous(t *testing.T) {
	if err := Require(uuid.Nil); !apperr.IsUnauthenticated(err) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if err := Require(uuid.New()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestScopesIsolateOwners(t *testing.T) {
	conn := openTestDB(t)
	alice := seedProfile(t, conn, "alice@example.com")
	bob := seedProfile(t, conn, "bob@example.com")
	seedBudget(t, conn, alice)
	bobs := seedBudget(t, conn, bob)

	var budgets []models.Budget
	if err := conn.Scopes(OwnedBudgets(alice)).Find(&budgets).Error; err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	if len(budgets) != 1 || budgets[0].UserID != alice {
		t.Fatalf("expected alice's single budget, got %+v", budgets)
	}

	var tabCount int64
	if err := conn.Model(&models.Tab{}).Scopes(OwnedTabs(alice)).Where("tabs.id = ?", bobs.tab.ID).Count(&tabCount).Error; err != nil {
		t.Fatalf("count tabs: %v", err)
	}
	if tabCount != 0 {
		t.Fatalf("expected bob's tab to be hidden from alice")
	}

	var expenses []models.Expense
	if err := conn.Scopes(OwnedExpenses(bob)).Find(&expenses).Error; err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 1 || expenses[0].ID != bobs.expense.ID {
		t.Fatalf("expected bob's single expense, got %+v", expenses)
	}

	var profiles []models.Profile
	if err := conn.Scopes(OwnProfile(bob)).Find(&profiles).Error; err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if len(profiles) != 1 || profiles[0].ID != bob {
		t.Fatalf("expected only bob's profile, got %+v", profiles)
	}
}

func TestVisibleSupportRequests(t *testing.T) {
	conn := openTestDB(t)
	alice := seedProfile(t, conn, "alice@example.com")
	bob := seedProfile(t, conn, "bob@example.com")
	requests := []models.SupportRequest{
		{Email: "anon@example.com", Subject: "anon", Message: "m"},
		{UserID: &alice, Email: "alice@example.com", Subject: "alice", Message: "m"},
		{UserID: &bob, Email: "bob@example.com", Subject: "bob", Message: "m"},
	}
	if err := conn.Create(&requests).Error; err != nil {
		t.Fatalf("create support requests: %v", err)
	}

	cases := []struct {
		name   string
		caller uuid.UUID
		want   int
	}{
		{name: "anonymous", caller: uuid.Nil, want: 1},
		{name: "alice", caller: alice, want: 2},
		{name: "bob", caller: bob, want: 2},
	}
	for _, tc := range cases {
		var visible []models.SupportRequest
		if err := conn.Scopes(VisibleSupportRequests(tc.caller)).Find(&visible).Error; err != nil {
			t.Fatalf("%s: list: %v", tc.name, err)
		}
		if len(visible) != tc.want {
			t.Fatalf("%s: expected %d visible requests, got %d", tc.name, tc.want, len(visible))
		}
		for i := range visible {
			if !CanReadSupportRequest(tc.caller, &visible[i]) {
				t.Fatalf("%s: scope and guard disagree on %s", tc.name, visible[i].Subject)
			}
		}
	}
}

func TestGuards(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	budget := &models.Budget{ID: uuid.New(), UserID: owner}
	tab := &models.Tab{ID: uuid.New(), BudgetID: budget.ID}
	expense := &models.Expense{ID: uuid.New(), BudgetID: budget.ID, TabID: tab.ID, UserID: owner}

	if !CanAccessBudget(owner, budget) || CanAccessBudget(other, budget) || CanAccessBudget(uuid.Nil, budget) {
		t.Fatalf("unexpected budget guard result")
	}
	if !CanAccessTab(owner, budget, tab) || CanAccessTab(other, budget, tab) {
		t.Fatalf("unexpected tab guard result")
	}
	foreignTab := &models.Tab{ID: uuid.New(), BudgetID: uuid.New()}
	if CanAccessTab(owner, budget, foreignTab) {
		t.Fatalf("expected tab from another budget to be rejected")
	}
	if !CanAccessExpense(owner, budget, expense) || CanAccessExpense(other, budget, expense) {
		t.Fatalf("unexpected expense guard result")
	}
	if !CanAccessProfile(owner, &models.Profile{ID: owner}) || CanAccessProfile(other, &models.Profile{ID: owner}) {
		t.Fatalf("unexpected profile guard result")
	}
}
