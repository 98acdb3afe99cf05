package server

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vrakshhq/vraksh/internal/auth"
	"github.com/vrakshhq/vraksh/pkg/jwt"
)

// AuthHandler exposes the authentication routes. Services return users;
// the handler is the single place that mints tokens.
type AuthHandler struct {
	register  *auth.RegisterService
	passwords *auth.PasswordService
	magic     *auth.MagicLinkService
	oauth     *auth.OAuthService
	users     auth.UserStore
	issuer    *jwt.Issuer
	clientURL string
	logger    *slog.Logger
}

// NewAuthHandler creates the auth route handler.
func NewAuthHandler(
	register *auth.RegisterService,
	passwords *auth.PasswordService,
	magic *auth.MagicLinkService,
	oauth *auth.OAuthService,
	users auth.UserStore,
	issuer *jwt.Issuer,
	clientURL string,
	log *slog.Logger,
) *AuthHandler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AuthHandler{
		register:  register,
		passwords: passwords,
		magic:     magic,
		oauth:     oauth,
		users:     users,
		issuer:    issuer,
		clientURL: clientURL,
		logger:    log,
	}
}

// userView is the client-facing user shape. Credential fields never leave
// the server.
type userView struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username,omitempty"`
	AuthProvider  string `json:"authProvider"`
	ReferralCode  string `json:"referralCode"`
	ReferralCount int    `json:"referralCount"`
}

func toUserView(u *auth.User) userView {
	return userView{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		AuthProvider:  u.AuthProvider,
		ReferralCode:  u.ReferralCode,
		ReferralCount: u.ReferralCount,
	}
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email        string `json:"email"`
		Username     string `json:"username"`
		Password     string `json:"password,omitempty"`
		ReferralCode string `json:"referralCode,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, err := h.register.Register(r.Context(), auth.RegisterParams{
		Email:        req.Email,
		Username:     req.Username,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondData(w, http.StatusCreated, toUserView(user))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, err := h.passwords.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respondToken(w, r, user)
}

func (h *AuthHandler) handleCheckUsername(w http.ResponseWriter, r *http.Request) {
	exists, err := h.register.CheckUsername(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondRaw(w, http.StatusOK, map[string]bool{"exists": exists})
}

// handleSendMagicLink always answers 200 so responses do not reveal
// whether the address was already registered.
func (h *AuthHandler) handleSendMagicLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.magic.Request(r.Context(), req.Email); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondRaw(w, http.StatusOK, map[string]string{"message": "magic link sent"})
}

func (h *AuthHandler) handleVerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	user, err := h.magic.Verify(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respondToken(w, r, user)
}

func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.passwords.ForgotPassword(r.Context(), req.Email); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondRaw(w, http.StatusOK, map[string]string{"message": "reset email sent"})
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, err := h.passwords.ResetPassword(r.Context(), chi.URLParam(r, "resetToken"), req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respondToken(w, r, user)
}

func (h *AuthHandler) handleOAuthBegin(w http.ResponseWriter, r *http.Request) {
	url, err := h.oauth.BeginFlow(r.Context(), chi.URLParam(r, "provider"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// handleOAuthCallback completes the provider flow, sets the token as an
// httpOnly cookie, and sends the browser back to the client app.
func (h *AuthHandler) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	user, err := h.oauth.CompleteFlow(r.Context(),
		chi.URLParam(r, "provider"),
		r.URL.Query().Get("state"),
		r.URL.Query().Get("code"),
	)
	if err != nil {
		http.Redirect(w, r, h.clientURL+"/login?error="+mapError(err).Code, http.StatusTemporaryRedirect)
		return
	}

	token, err := h.issuer.Mint(user.ID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.setTokenCookie(w, token)
	http.Redirect(w, r, h.clientURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := jwt.UserID(r.Context())
	if !ok {
		respondError(w, r, h.logger, errUnauthorized)
		return
	}
	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, toUserView(user))
}

// respondToken mints exactly one token for the authenticated user and
// returns it both in the body and as the httpOnly cookie.
func (h *AuthHandler) respondToken(w http.ResponseWriter, r *http.Request, user *auth.User) {
	token, err := h.issuer.Mint(user.ID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.setTokenCookie(w, token)
	respondRaw(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toUserView(user),
	})
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     jwt.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.issuer.TTL()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
