package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	pg := errors.New(`ERROR: duplicate key value violates unique constraint "users_username_key" (SQLSTATE 23505)`)
	if !IsUniqueViolation(pg, "") {
		t.Fatal("expected postgres duplicate key message to match")
	}
	if !IsUniqueViolation(pg, "users_username_key") {
		t.Fatal("expected named constraint to match")
	}
	if IsUniqueViolation(pg, "detainees_cedula_key") {
		t.Fatal("unrelated constraint name should not match")
	}

	lite := errors.New("UNIQUE constraint failed: detainees.cedula")
	if !IsUniqueViolation(lite, "") {
		t.Fatal("expected sqlite unique message to match")
	}

	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error should never match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error should not match")
	}
}
