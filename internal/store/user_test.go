package store

import (
	"testing"

	"github.com/google/uuid"

	"contractd/internal/models"
)

func TestUserStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "create-" + uuid.NewString()[:8] + "@contractd.test"
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE email = $1", email) })

	u, err := s.Create(email, "hunter2hunter2", "Creator", models.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.PasswordHash == "hunter2hunter2" {
		t.Error("password stored in plaintext")
	}
	if u.Role != models.RoleUser {
		t.Errorf("role: got %q", u.Role)
	}

	byEmail, err := s.FindByEmail(email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail == nil || byEmail.ID != u.ID {
		t.Error("FindByEmail mismatch")
	}

	byID, _ := s.FindByID(u.ID)
	if byID == nil || byID.Email != email {
		t.Error("FindByID mismatch")
	}

	if missing, _ := s.FindByEmail("nobody@contractd.test"); missing != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestUserStorePasswords(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	u := testUser(t, db, models.RoleUser)

	if !s.CheckPassword(u, "password123") {
		t.Error("correct password rejected")
	}
	if s.CheckPassword(u, "wrong") {
		t.Error("wrong password accepted")
	}

	if err := s.UpdatePassword(u.ID, "newpassword456"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	fresh, _ := s.FindByID(u.ID)
	if !s.CheckPassword(fresh, "newpassword456") {
		t.Error("new password rejected")
	}
	if s.CheckPassword(fresh, "password123") {
		t.Error("old password still accepted")
	}
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	u := testUser(t, db, models.RoleUser)

	if _, err := s.Create(u.Email, "password123", "Dup", models.RoleUser); err == nil {
		t.Error("expected unique violation for duplicate email")
	}
}

func TestUserStoreTOTPLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	u := testUser(t, db, models.RoleUser)

	if err := s.SetTOTPSecret(u.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}
	if err := s.EnableTOTP(u.ID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}

	fresh, _ := s.FindByID(u.ID)
	if !fresh.TOTPEnabled {
		t.Error("totp not enabled")
	}
	if fresh.TOTPSecret == nil || *fresh.TOTPSecret != "JBSWY3DPEHPK3PXP" {
		t.Error("totp secret not stored")
	}
}
