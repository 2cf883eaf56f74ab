package profile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/db"
	"github.com/budgettabs/budgettabs/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "profile.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func seedIdentity(t *testing.T, conn *gorm.DB, email string) uuid.UUID {
	t.Helper()
	identity := models.Identity{Email: email}
	if err := conn.Create(&identity).Error; err != nil {
		t.Fatalf("create identity: %v", err)
	}
	return identity.ID
}

func strPtr(s string) *string { return &s }

func TestCreateForIdentityDefaults(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn)
	id := seedIdentity(t, conn, "jane.doe@example.com")

	p, err := svc.CreateForIdentity(context.Background(), NewIdentity{ID: id, Email: "Jane.Doe@example.com"})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if p.DisplayName == nil || *p.DisplayName != "jane.doe" {
		t.Fatalf("expected display name from email local part, got %v", p.DisplayName)
	}
	if p.CurrencyCode != "USD" || p.Timezone != "UTC" || p.ActiveBudgetID != nil {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.Email != "jane.doe@example.com" {
		t.Fatalf("expected lower-cased email, got %q", p.Email)
	}

	again, err := svc.CreateForIdentity(context.Background(), NewIdentity{ID: id, Email: "jane.doe@example.com", FullName: "Other"})
	if err != nil {
		t.Fatalf("repeat create: %v", err)
	}
	if again.FullName != nil {
		t.Fatalf("expected existing profile to be kept, got full name %q", *again.FullName)
	}
}

func TestCreateForIdentityUsesFullName(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn)
	id := seedIdentity(t, conn, "jd@example.com")

	p, err := svc.CreateForIdentity(context.Background(), NewIdentity{ID: id, Email: "jd@example.com", FullName: " Jane Doe "})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if p.FullName == nil || *p.FullName != "Jane Doe" || p.DisplayName == nil || *p.DisplayName != "Jane Doe" {
		t.Fatalf("expected full name to seed display name, got %+v", p)
	}
}

func TestEnsureCreatesMissingProfile(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn)
	id := seedIdentity(t, conn, "late@example.com")

	if _, err := svc.Get(context.Background(), id); !apperr.IsNotFound(err) {
		t.Fatalf("expected missing profile, got %v", err)
	}
	p, err := svc.Ensure(context.Background(), NewIdentity{ID: id, Email: "late@example.com"})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if p.ID != id {
		t.Fatalf("expected profile for %s, got %s", id, p.ID)
	}
}

func TestUpdateProfile(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn)
	ctx := context.Background()
	id := seedIdentity(t, conn, "me@example.com")
	if _, err := svc.CreateForIdentity(ctx, NewIdentity{ID: id, Email: "me@example.com"}); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	if _, err := svc.Update(ctx, id, UpdateInput{}); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for empty update, got %v", err)
	}
	if _, err := svc.Update(ctx, id, UpdateInput{Timezone: strPtr("Mars/Olympus")}); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for unknown timezone, got %v", err)
	}
	if _, err := svc.Update(ctx, id, UpdateInput{CurrencyCode: strPtr("eur")}); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for lowercase currency, got %v", err)
	}

	p, err := svc.Update(ctx, id, UpdateInput{
		DisplayName:  strPtr("Me"),
		CurrencyCode: strPtr("EUR"),
		Timezone:     strPtr("Europe/Berlin"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if *p.DisplayName != "Me" || p.CurrencyCode != "EUR" || p.Timezone != "Europe/Berlin" {
		t.Fatalf("unexpected profile after update: %+v", p)
	}
}

func TestUpdateActiveBudgetRequiresOwnership(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn)
	ctx := context.Background()
	me := seedIdentity(t, conn, "me@example.com")
	other := seedIdentity(t, conn, "other@example.com")
	for _, ident := range []NewIdentity{{ID: me, Email: "me@example.com"}, {ID: other, Email: "other@example.com"}} {
		if _, err := svc.CreateForIdentity(ctx, ident); err != nil {
			t.Fatalf("create profile: %v", err)
		}
	}
	mine := models.Budget{UserID: me, Name: "Mine", CurrencyCode: "USD"}
	theirs := models.Budget{UserID: other, Name: "Theirs", CurrencyCode: "USD"}
	if err := conn.Create(&mine).Error; err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if err := conn.Create(&theirs).Error; err != nil {
		t.Fatalf("create budget: %v", err)
	}

	_, err := svc.Update(ctx, me, UpdateInput{ActiveBudgetID: &theirs.ID})
	if !apperr.IsValidation(err) || apperr.As(err).Field != "active_budget_id" {
		t.Fatalf("expected validation error on active_budget_id, got %v", err)
	}
	p, err := svc.Update(ctx, me, UpdateInput{ActiveBudgetID: &mine.ID})
	if err != nil {
		t.Fatalf("set active budget: %v", err)
	}
	if p.ActiveBudgetID == nil || *p.ActiveBudgetID != mine.ID {
		t.Fatalf("expected active budget %s, got %v", mine.ID, p.ActiveBudgetID)
	}
	p, err = svc.Update(ctx, me, UpdateInput{ClearActiveBudget: true})
	if err != nil {
		t.Fatalf("clear active budget: %v", err)
	}
	if p.ActiveBudgetID != nil {
		t.Fatalf("expected active budget to be cleared")
	}
}

func TestGetIsOwnProfileOnly(t *testing.T) {
	svc := NewService(openTestDB(t))
	if _, err := svc.Get(context.Background(), uuid.Nil); !apperr.IsUnauthenticated(err) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, err := svc.Get(context.Background(), uuid.New()); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
