package auth

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

const sessionCookieName = "deskrelay_session"

// Service is the HTTP-facing authentication boundary: PIN login, logout
// and the session check used before websocket upgrades.
type Service struct {
	Guard      *Guard
	Sessions   *Sessions
	store      *sessions.CookieStore
	trustProxy bool
}

func NewService(guard *Guard, sess *Sessions, secret []byte, trustProxy bool) *Service {
	store := sessions.NewCookieStore(secret)
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteStrictMode
	return &Service{
		Guard:      guard,
		Sessions:   sess,
		store:      store,
		trustProxy: trustProxy,
	}
}

type loginResponse struct {
	Token             string `json:"token,omitempty"`
	Message           string `json:"message,omitempty"`
	RemainingAttempts int    `json:"remainingAttempts,omitempty"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
}

// Authenticate handles POST /auth/login with a "pin" form value.
func (s *Service) Authenticate(w http.ResponseWriter, r *http.Request) {
	addr := RemoteIP(r, s.trustProxy).String()
	result := s.Guard.VerifyPin(r.FormValue("pin"), addr)

	w.Header().Set("Content-Type", "application/json")
	switch {
	case result.Locked:
		w.WriteHeader(http.StatusLocked)
		_ = json.NewEncoder(w).Encode(loginResponse{
			Message:           "address locked",
			RetryAfterSeconds: int(result.RetryAfter.Seconds()),
		})
	case !result.OK:
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(loginResponse{
			Message:           "invalid pin",
			RemainingAttempts: result.RemainingAttempts,
		})
	default:
		token := s.Sessions.Create(addr)
		session, _ := s.store.Get(r, sessionCookieName)
		session.Values["token"] = token
		if err := session.Save(r, w); err != nil {
			log.Debug().Err(err).Msg("could not save session cookie")
		}
		_ = json.NewEncoder(w).Encode(loginResponse{Token: token})
	}
}

// Logout handles POST /auth/logout. Idempotent.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	if token := s.TokenFromRequest(r); token != "" {
		s.Sessions.Remove(token)
	}
	session, _ := s.store.Get(r, sessionCookieName)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
	w.WriteHeader(http.StatusOK)
}

// TokenFromRequest extracts the bearer token from the "token" query
// parameter, falling back to the session cookie.
func (s *Service) TokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	session, err := s.store.Get(r, sessionCookieName)
	if err != nil {
		return ""
	}
	token, _ := session.Values["token"].(string)
	return token
}

// Authorized reports whether r may open a control connection. Loopback
// callers are exempt; remote callers must present a valid session token.
func (s *Service) Authorized(r *http.Request) bool {
	if IsLocal(RemoteIP(r, s.trustProxy)) {
		return true
	}
	return s.Sessions.Validate(s.TokenFromRequest(r))
}
