package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("name", "is required"), http.StatusBadRequest},
		{Unauthenticated(""), http.StatusUnauthorized},
		{NotFound("budget"), http.StatusNotFound},
		{Conflict("name", "taken"), http.StatusConflict},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.err.Status(); got != tc.want {
			t.Fatalf("%s: expected status %d, got %d", tc.err.Kind, tc.want, got)
		}
	}
}

func TestAs_WrapsUnknownErrorsAsInternal(t *testing.T) {
	cause := errors.New("connection reset")
	got := As(fmt.Errorf("query: %w", cause))
	if got.Kind != KindInternal {
		t.Fatalf("expected internal, got %s", got.Kind)
	}
	if got.Message != "internal error" {
		t.Fatalf("expected opaque message, got %q", got.Message)
	}
	if !errors.Is(got, cause) {
		t.Fatalf("expected cause to be preserved")
	}
}

func TestAs_FindsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NotFound("tab"))
	if !IsNotFound(wrapped) {
		t.Fatalf("expected wrapped not found to be detected")
	}
}

func TestFromDB(t *testing.T) {
	if !IsNotFound(FromDB(gorm.ErrRecordNotFound, "budget")) {
		t.Fatalf("expected record not found to map to not found")
	}
	if !IsConflict(FromDB(gorm.ErrDuplicatedKey, "tab")) {
		t.Fatalf("expected duplicated key to map to conflict")
	}
	if !IsValidation(FromDB(gorm.ErrCheckConstraintViolated, "expense")) {
		t.Fatalf("expected check violation to map to validation")
	}
	if !IsConflict(FromDB(&pgconn.PgError{Code: "23505"}, "profile")) {
		t.Fatalf("expected SQLSTATE 23505 to map to conflict")
	}
	if KindOf(FromDB(errors.New("disk full"), "budget")) != KindInternal {
		t.Fatalf("expected unknown error to map to internal")
	}
	if FromDB(nil, "budget") != nil {
		t.Fatalf("expected nil for nil error")
	}
}
