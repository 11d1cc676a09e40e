// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"testing"
)

func TestMapDBError_DuplicateStrings(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"mysql duplicate entry", errors.New("Error 1062: Duplicate entry 'x' for key 'PRIMARY'")},
		{"postgres unique violation", errors.New("ERROR: duplicate key value violates unique constraint \"UserDefaults_pkey\" (SQLSTATE 23505)")},
		{"sqlite unique constraint", errors.New("constraint failed: UNIQUE constraint failed: UserDefaults.key (1555)")},
		{"generic duplicate word", errors.New("duplicate row")},
		{"unique word present", errors.New("column has unique constraint")},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mapped := MapDBError(c.err)
			if !errors.Is(mapped, ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate for case %s, got: %v", c.name, mapped)
			}
			if !errors.Is(mapped, c.err) {
				t.Fatalf("expected driver error to stay in the chain, got: %v", mapped)
			}
		})
	}
}

func TestMapDBError_NonDuplicatePassthrough(t *testing.T) {
	e := errors.New("some network error")
	mapped := MapDBError(e)
	if mapped == nil {
		t.Fatalf("expected non-nil error for non-duplicate input")
	}
	if errors.Is(mapped, ErrDuplicate) {
		t.Fatalf("did not expect ErrDuplicate for non-duplicate error")
	}
	if mapped != e {
		t.Fatalf("expected original error to be returned unchanged, got: %v", mapped)
	}
	if MapDBError(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
}

func TestMapDBError_Idempotent(t *testing.T) {
	once := MapDBError(errors.New("UNIQUE constraint failed"))
	twice := MapDBError(once)
	if twice != once {
		t.Fatalf("expected already mapped error to pass through, got: %v", twice)
	}
}
