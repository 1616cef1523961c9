package auth

import "testing"

func TestIsAdministrative(t *testing.T) {
	testCases := []struct {
		role string
		want bool
	}{
		{RoleAdmin, true},
		{RoleSupervisor, true},
		{RoleUser, false},
		{"", false},
		{"root", false},
	}

	for _, tc := range testCases {
		if got := IsAdministrative(tc.role); got != tc.want {
			t.Errorf("IsAdministrative(%q) = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestPolicy_CanAssignRole(t *testing.T) {
	p := Policy{RootUsername: "admin"}

	testCases := []struct {
		actor string
		role  string
		want  bool
	}{
		{"admin", RoleAdmin, true},
		{"admin", RoleSupervisor, true},
		{"admin", RoleUser, true},
		{"otheradmin", RoleAdmin, false},
		{"otheradmin", RoleSupervisor, false},
		{"otheradmin", RoleUser, true},
		{"somebody", RoleUser, true},
	}

	for _, tc := range testCases {
		if got := p.CanAssignRole(tc.actor, tc.role); got != tc.want {
			t.Errorf("CanAssignRole(%q, %q) = %v, want %v", tc.actor, tc.role, got, tc.want)
		}
	}
}

func TestPolicy_CanAccessRecord(t *testing.T) {
	p := Policy{RootUsername: "admin"}

	if !p.CanAccessRecord(RoleUser, 7, 7) {
		t.Error("owner denied access to own record")
	}
	if p.CanAccessRecord(RoleUser, 7, 8) {
		t.Error("non-owner user granted access to foreign record")
	}
	if !p.CanAccessRecord(RoleSupervisor, 7, 8) {
		t.Error("supervisor denied cross-user access")
	}
	if !p.CanAccessRecord(RoleAdmin, 7, 8) {
		t.Error("admin denied cross-user access")
	}
}
