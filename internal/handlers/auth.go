package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"contractd/internal/middleware"
	"contractd/internal/models"
	"contractd/internal/session"
	"contractd/internal/store"
)

// Auth groups the authentication and account HTTP handlers.
type Auth struct {
	sessions *session.Store
	users    *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, users *store.UserStore) *Auth {
	return &Auth{sessions: sessions, users: users}
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type tokenResponse struct {
	Token         string       `json:"token"`
	TwoFARequired bool         `json:"two_fa_required"`
	User          *models.User `json:"user"`
}

// Register creates a new account with the default user role and returns
// a ready-to-use bearer token.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusUnprocessableEntity, "A valid email is required.")
		return
	}
	if msg := validatePassword(req.Password); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Email
	}

	existing, err := a.users.FindByEmail(req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusUnprocessableEntity, "Email is already registered.")
		return
	}

	user, err := a.users.Create(req.Email, req.Password, req.DisplayName, models.RoleUser)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := a.sessions.Create(r.Context(), &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   true, // no TOTP configured yet
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token, User: user})
}

// Login verifies credentials and issues a bearer token. When the account
// has TOTP enabled the token starts in the pending state and must pass
// 2FA verification before it is accepted by protected routes.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.users.FindByEmail(strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	token, err := a.sessions.Create(r.Context(), &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   !user.TOTPEnabled,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:         token,
		TwoFARequired: user.TOTPEnabled,
		User:          user,
	})
}

// Logout invalidates the bearer token.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), r); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the authenticated user's current record.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "account no longer exists")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type profileRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// UpdateProfile changes the user's email and display name, and refreshes
// the session copy of both.
func (a *Auth) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req profileRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusUnprocessableEntity, "A valid email is required.")
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		writeError(w, http.StatusUnprocessableEntity, "Display name is required.")
		return
	}

	if err := a.users.UpdateProfile(sess.UserID, req.Email, req.DisplayName); err != nil {
		writeServiceError(w, err)
		return
	}

	sess.Email = req.Email
	sess.DisplayName = req.DisplayName
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Warn("session refresh after profile update failed", "error", err)
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword verifies the current password before setting a new one.
func (a *Auth) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req changePasswordRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validatePassword(req.NewPassword); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.CurrentPassword) {
		writeError(w, http.StatusUnauthorized, "Current password is incorrect.")
		return
	}

	if err := a.users.UpdatePassword(sess.UserID, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}

	slog.Info("password changed", "user_id", sess.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// TwoFASetup generates a TOTP secret for the account and returns it with
// a QR code for authenticator apps. The secret becomes active only after
// a successful verify.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "contractd",
		AccountName: sess.Email,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := a.users.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		writeServiceError(w, err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret":  key.Secret(),
		"url":     key.URL(),
		"qr_code": base64.StdEncoding.EncodeToString(qrPNG),
	})
}

type twoFAVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFAVerify validates a TOTP code. On first success it enables 2FA on
// the account; it always marks the current token as fully authenticated.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req twoFAVerifyRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil || user.TOTPSecret == nil {
		writeError(w, http.StatusBadRequest, "two-factor authentication is not set up")
		return
	}

	if !totp.Validate(req.Code, *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "invalid verification code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(user.ID); err != nil {
			writeServiceError(w, err)
			return
		}
		slog.Info("two-factor authentication enabled", "user_id", user.ID)
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "verified"})
}
