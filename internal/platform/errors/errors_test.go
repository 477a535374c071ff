package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeNotFound, "package missing")
	if !errors.Is(err, New(CodeNotFound, "different message")) {
		t.Fatal("errors with the same code should match")
	}
	if errors.Is(err, New(CodeRequestInvalid, "package missing")) {
		t.Fatal("errors with different codes should not match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("sql: no rows")
	err := Wrap(CodeNotFound, "package missing", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause not reachable via errors.Is")
	}
}

func TestCodeOf(t *testing.T) {
	err := New(CodeAdminGrantExpired, "grant expired")
	wrapped := fmt.Errorf("verify grant: %w", err)
	if got := CodeOf(wrapped); got != CodeAdminGrantExpired {
		t.Fatalf("CodeOf = %q, want %q", got, CodeAdminGrantExpired)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf plain error = %q, want %q", got, CodeUnknown)
	}
	if got := CodeOf(nil); got != CodeUnknown {
		t.Fatalf("CodeOf nil = %q, want %q", got, CodeUnknown)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodePackageNameEmpty, http.StatusBadRequest},
		{CodeRequestInvalid, http.StatusBadRequest},
		{CodeAdminGrantMissing, http.StatusUnauthorized},
		{CodeAdminGrantInvalid, http.StatusUnauthorized},
		{CodeAdminGrantExpired, http.StatusUnauthorized},
		{CodeAdminGrantScopeMissing, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodePackageSignatureMissing, http.StatusNotFound},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("HTTPStatus(%q) = %d, want %d", tc.code, got, tc.want)
		}
	}
}
