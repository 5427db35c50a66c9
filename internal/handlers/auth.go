package handlers

import (
	"bytes"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"receitapress/internal/middleware"
	"receitapress/internal/session"
	"receitapress/internal/store"
)

// totpIssuer is the issuer label shown in authenticator apps.
const totpIssuer = "ReceitaPress"

// Auth handles login, logout, and the TOTP two-factor flow for the
// admin panel. Every account must enroll in 2FA on first login; the
// session carries a TwoFADone flag that gates the admin API.
type Auth struct {
	users    *store.UserStore
	sessions *session.Store
	log      *slog.Logger
}

// NewAuth creates the auth handler group.
func NewAuth(users *store.UserStore, sessions *session.Store, log *slog.Logger) *Auth {
	if log == nil {
		log = slog.Default()
	}
	return &Auth{users: users, sessions: sessions, log: log}
}

// Login verifies credentials and opens a session with the 2FA challenge
// still pending. The response tells the panel whether the user needs to
// enroll a new authenticator or just verify a code.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := checkInput(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := a.users.FindByEmail(req.Email)
	if err != nil {
		a.log.Error("login lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	// Same message for unknown email and wrong password.
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	data := &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   false,
	}
	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		a.log.Error("session create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	a.log.Info("user logged in", "email", user.Email)

	respondJSON(w, http.StatusOK, map[string]any{
		"displayName":   user.DisplayName,
		"role":          user.Role,
		"needs2FASetup": user.Needs2FASetup(),
	})
}

// Logout destroys the session and clears the cookie. Always succeeds.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		a.log.Warn("session destroy failed", "error", err)
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me returns the current session identity, including whether the 2FA
// challenge has been completed. The panel calls this on load.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"email":       sess.Email,
		"displayName": sess.DisplayName,
		"role":        sess.Role,
		"twoFADone":   sess.TwoFADone,
	})
}

// TwoFASetup generates a fresh TOTP secret for the logged-in user and
// returns it with a QR code the authenticator app can scan. The secret
// only becomes active after the first successful verification.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		a.log.Error("2fa setup user lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "2FA setup failed")
		return
	}
	if user.TOTPEnabled {
		respondError(w, http.StatusConflict, "2FA is already enabled")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		a.log.Error("totp generate failed", "error", err)
		respondError(w, http.StatusInternalServerError, "2FA setup failed")
		return
	}

	if err := a.users.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		a.log.Error("save totp secret failed", "error", err)
		respondError(w, http.StatusInternalServerError, "2FA setup failed")
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		a.log.Error("qr encode failed", "error", err)
		respondError(w, http.StatusInternalServerError, "2FA setup failed")
		return
	}

	var buf bytes.Buffer
	buf.WriteString("data:image/png;base64,")
	buf.WriteString(base64.StdEncoding.EncodeToString(png))

	respondJSON(w, http.StatusOK, map[string]string{
		"secret": key.Secret(),
		"qrCode": buf.String(),
	})
}

// TwoFAVerify checks a 6-digit code against the user's TOTP secret. On
// the first successful verification 2FA is marked enabled; on every
// success the session is upgraded to TwoFADone.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	var req twoFAVerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := checkInput(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		a.log.Error("2fa verify user lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "2FA verification failed")
		return
	}
	if user.TOTPSecret == nil {
		respondError(w, http.StatusBadRequest, "2FA has not been set up")
		return
	}

	if !totp.Validate(req.Code, *user.TOTPSecret) {
		respondError(w, http.StatusUnauthorized, "invalid verification code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(user.ID); err != nil {
			a.log.Error("enable totp failed", "error", err)
			respondError(w, http.StatusInternalServerError, "2FA verification failed")
			return
		}
		a.log.Info("2fa enrolled", "email", user.Email)
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		a.log.Error("session upgrade failed", "error", err)
		respondError(w, http.StatusInternalServerError, "2FA verification failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"displayName": user.DisplayName,
		"role":        user.Role,
		"twoFADone":   true,
	})
}
