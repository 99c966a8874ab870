package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/adiwijaya/course-management/internal"
)

const (
	sessionUserKey    = "user_id"
	sessionNonceKey   = "nonce"
	sessionPendingKey = "google_verify_user_id"
	sessionStateKey   = "google_oauth_state"
)

// SessionManager wraps the cookie store used by the SPA login flow. The
// cookie payload is signed+encrypted by gorilla/sessions; the nonce value is
// rotated on every login so a pre-login cookie never stays valid afterwards.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
}

func NewSessionManager(cfg internal.SessionConfig) *SessionManager {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: parseSameSite(cfg.SameSite),
	}
	return &SessionManager{
		store: store,
		name:  cfg.Name,
	}
}

func parseSameSite(mode string) http.SameSite {
	switch mode {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Login binds the session to userID and rotates the session nonce.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[sessionUserKey] = userID
	sess.Values[sessionNonceKey] = uuid.NewString()
	delete(sess.Values, sessionPendingKey)
	return sess.Save(r, w)
}

// UserID returns the authenticated user id bound to the session, if any.
func (m *SessionManager) UserID(r *http.Request) (int64, bool) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Values[sessionUserKey].(int64)
	return id, ok && id != 0
}

// Destroy expires the session cookie. Safe to call on an anonymous request.
func (m *SessionManager) Destroy(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// BeginVerification stores the pending user id and a fresh state value for
// the Google verification round-trip.
func (m *SessionManager) BeginVerification(w http.ResponseWriter, r *http.Request, userID int64) (state string, err error) {
	sess, _ := m.store.Get(r, m.name)
	state = uuid.NewString()
	sess.Values[sessionPendingKey] = userID
	sess.Values[sessionStateKey] = state
	return state, sess.Save(r, w)
}

// FinishVerification pops the pending user id, checking the state value.
// A second callback with the same state finds nothing and fails.
func (m *SessionManager) FinishVerification(w http.ResponseWriter, r *http.Request, state string) (int64, bool) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		return 0, false
	}
	storedState, _ := sess.Values[sessionStateKey].(string)
	userID, ok := sess.Values[sessionPendingKey].(int64)
	delete(sess.Values, sessionPendingKey)
	delete(sess.Values, sessionStateKey)
	_ = sess.Save(r, w)

	if !ok || userID == 0 || storedState == "" || storedState != state {
		return 0, false
	}
	return userID, true
}
