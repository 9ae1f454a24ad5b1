package policy

import (
	"errors"
	"testing"

	"jobboard/pkg/domain"
)

func TestAllow(t *testing.T) {
	tests := []struct {
		name   string
		role   domain.UserRole
		owner  string
		caller string
		want   bool
	}{
		{"admin on foreign record", domain.RoleAdmin, "u1", "admin", true},
		{"owner", domain.RoleEmployer, "u1", "u1", true},
		{"non-owner employer", domain.RoleEmployer, "u1", "u2", false},
		{"empty caller never owns", domain.RoleUser, "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Allow(tc.role, tc.owner, tc.caller); got != tc.want {
				t.Fatalf("Allow = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	employer := Subject{ID: "e1", Role: domain.RoleEmployer}
	if err := RequireRole(employer, domain.RoleEmployer, domain.RoleAdmin); err != nil {
		t.Fatalf("employer should pass: %v", err)
	}
	if err := RequireRole(Subject{ID: "u1", Role: domain.RoleUser}, domain.RoleEmployer, domain.RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("user should be forbidden, got %v", err)
	}
	if err := RequireRole(Subject{Role: domain.RoleAdmin}, domain.RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("anonymous subject should be forbidden, got %v", err)
	}
}

func TestRequireOwner(t *testing.T) {
	if err := RequireOwner(Subject{ID: "e2", Role: domain.RoleEmployer}, "e1", "e2"); err != nil {
		t.Fatalf("listed owner should pass: %v", err)
	}
	if err := RequireOwner(Subject{ID: "e3", Role: domain.RoleEmployer}, "e1", "e2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unlisted caller should be forbidden, got %v", err)
	}
	if err := RequireOwner(Subject{ID: "a1", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("admin should pass with no owners: %v", err)
	}
}
