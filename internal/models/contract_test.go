package models

import "testing"

func TestValidContractStatus(t *testing.T) {
	valid := []ContractStatus{
		ContractStatusDraft,
		ContractStatusActive,
		ContractStatusExpired,
		ContractStatusCancelled,
	}
	for _, s := range valid {
		if !ValidContractStatus(s) {
			t.Errorf("ValidContractStatus(%q) = false, want true", s)
		}
	}

	invalid := []ContractStatus{"", "signed", "DRAFT", "pending"}
	for _, s := range invalid {
		if ValidContractStatus(s) {
			t.Errorf("ValidContractStatus(%q) = true, want false", s)
		}
	}
}

func TestUserIsAdmin(t *testing.T) {
	u := &User{Role: RoleAdmin}
	if !u.IsAdmin() {
		t.Error("admin role should report IsAdmin")
	}

	for _, r := range []Role{RoleUser, RolePremium} {
		u := &User{Role: r}
		if u.IsAdmin() {
			t.Errorf("role %q should not report IsAdmin", r)
		}
	}
}
