package domain

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		password  string
		wantError bool
	}{
		{name: "valid", password: "secret1", wantError: false},
		{name: "exactly minimum", password: "abcdef", wantError: false},
		{name: "empty", password: "", wantError: true},
		{name: "blank", password: "       ", wantError: true},
		{name: "too short", password: "abc12", wantError: true},
		{name: "too long for bcrypt", password: strings.Repeat("a", 73), wantError: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePassword(tc.password)
			if tc.wantError && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantError && err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	if role, err := ParseRole(" brand_manager "); err != nil || role != RoleBrandManager {
		t.Fatalf("expected BRAND_MANAGER, got %q %v", role, err)
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatalf("expected unknown role to be rejected")
	}
}
