package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/transport"
	"github.com/adiwijaya/course-management/internal/user"
	"github.com/adiwijaya/course-management/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (*user.User, error)
	IssueToken(u *user.User) (TokenResult, error)
	AuthenticateToken(tokenString string) (*user.User, error)
	RevokeToken(tokenString string)
	GetUserByID(id int64) (*user.User, error)
	VerifyGoogleIdentity(u *user.User, googleID, googleEmail string) error
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Sessions *SessionManager
	Google   *GoogleVerifier
}

func NewHandler(svc ServiceAPI, sessions *SessionManager, google *GoogleVerifier) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Sessions:    sessions,
		Google:      google,
	}
}

type loginResponse struct {
	Token     string          `json:"token,omitempty"`
	TokenType string          `json:"token_type,omitempty"`
	Abilities []string        `json:"abilities,omitempty"`
	User      user.PublicUser `json:"user"`
}

// Login establishes a session cookie and, for API clients that ask for one,
// a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Warn("login failed", "email", dto.Email)
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Sessions.Login(w, r, u.ID); err != nil {
		h.Logger.Error("failed to establish session", "error", err, "user_id", u.ID)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := loginResponse{User: u.ToPublic()}

	if dto.Token {
		result, err := h.Service.IssueToken(u)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		resp.Token = result.Token
		resp.TokenType = result.TokenType
		resp.Abilities = result.Abilities
	}

	h.Logger.Info("login successful", "user_id", u.ID, "role", u.Role)
	h.WriteJSON(w, http.StatusOK, resp)
}

// Logout revokes the presented bearer token (if any) and destroys the
// session. Calling it twice is fine; it always answers 200.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := h.ExtractTokenFromHeader(r); token != "" {
		h.Service.RevokeToken(token)
	}

	if err := h.Sessions.Destroy(w, r); err != nil {
		h.Logger.Warn("failed to destroy session", "error", err)
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// CurrentUser handles GET /user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok || u == nil {
		h.WriteJSON(w, http.StatusUnauthorized, internal.ErrUnauthenticated)
		return
	}
	h.WriteJSON(w, http.StatusOK, u.ToPublic())
}

// GoogleRedirect starts the identity-verification round-trip for the logged
// in account.
func (h *Handler) GoogleRedirect(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok || u == nil {
		h.WriteJSON(w, http.StatusUnauthorized, internal.ErrUnauthenticated)
		return
	}

	state, err := h.Sessions.BeginVerification(w, r, u.ID)
	if err != nil {
		h.Logger.Error("failed to store verification state", "error", err, "user_id", u.ID)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.Redirect(w, r, h.Google.AuthURL(state), http.StatusFound)
}

// GoogleCallback finishes the round-trip: the provider email must match the
// local account email or the account is left untouched.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	userID, ok := h.Sessions.FinishVerification(w, r, state)
	if !ok {
		h.WriteError(w, http.StatusUnprocessableEntity, "Verification session expired. Please login and try again.")
		return
	}

	u, err := h.Service.GetUserByID(userID)
	if err != nil {
		h.HandleServiceError(w, internal.ErrUserNotFound)
		return
	}

	gu, err := h.Google.Exchange(r.Context(), code)
	if err != nil {
		h.Logger.Error("google exchange failed", "error", err, "user_id", userID)
		h.WriteError(w, http.StatusBadGateway, "Failed to verify with Google. Please try again.")
		return
	}

	if err := h.Service.VerifyGoogleIdentity(u, gu.ID, gu.Email); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	// Re-establish the session: verification may have just activated the
	// account.
	if err := h.Sessions.Login(w, r, u.ID); err != nil {
		h.Logger.Error("failed to refresh session after verification", "error", err, "user_id", u.ID)
	}

	verified, err := h.Service.GetUserByID(u.ID)
	if err != nil {
		verified = u
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Google verification successful.",
		"user":    verified.ToPublic(),
	})
}

// Authenticate resolves the request identity from the bearer token or the
// session cookie and stores it in the context. It never rejects by itself:
// the account-status gate owns the 401 so the gates stay independently
// composable.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := h.ExtractTokenFromHeader(r); token != "" {
			if u, err := h.Service.AuthenticateToken(token); err == nil {
				next.ServeHTTP(w, r.WithContext(user.NewContext(r.Context(), u)))
				return
			}
			// A presented-but-invalid token is rejected outright rather
			// than silently downgraded to the session.
			h.WriteJSON(w, http.StatusUnauthorized, internal.ErrInvalidToken)
			return
		}

		if id, ok := h.Sessions.UserID(r); ok {
			if u, err := h.Service.GetUserByID(id); err == nil {
				next.ServeHTTP(w, r.WithContext(user.NewContext(r.Context(), u)))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
