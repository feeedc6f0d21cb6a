package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestDuplicateKey(t *testing.T) {
	err := fmt.Errorf("insert: %w", &mysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry 'BUS-20250616-123456' for key 'bookings.uq_bookings_ticket'",
	})
	key, ok := DuplicateKey(err)
	if !ok {
		t.Fatalf("expected duplicate key error")
	}
	if key != "uq_bookings_ticket" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestDuplicateKeyOldMessageFormat(t *testing.T) {
	key, ok := DuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'uq_users_email'"})
	if !ok || key != "uq_users_email" {
		t.Fatalf("got key=%q ok=%v", key, ok)
	}
}

func TestDuplicateKeyIgnoresOtherErrors(t *testing.T) {
	if _, ok := DuplicateKey(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}); ok {
		t.Fatalf("deadlock must not be reported as duplicate")
	}
	if _, ok := DuplicateKey(errors.New("boom")); ok {
		t.Fatalf("plain error must not be reported as duplicate")
	}
}

func TestNullHelpers(t *testing.T) {
	if NullIfEmpty("") != nil || NullIfEmpty("x") != "x" {
		t.Fatalf("NullIfEmpty misbehaves")
	}
	if NullIfZero(0) != nil || NullIfZero(3) != 3 {
		t.Fatalf("NullIfZero misbehaves")
	}
}
