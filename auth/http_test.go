package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(t *testing.T) (*Service, string) {
	t.Helper()
	guard := NewGuard(5, time.Minute)
	pin, err := guard.GeneratePin()
	require.NoError(t, err)
	return NewService(guard, NewSessions(24*time.Hour), []byte("test-secret-test-secret-test-sec"), false), pin
}

func loginRequest(pin string) *http.Request {
	form := url.Values{"pin": {pin}}
	r := httptest.NewRequest("POST", "/auth/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.RemoteAddr = "192.168.1.20:53412"
	return r
}

func TestAuthenticateSuccess(t *testing.T) {
	service, pin := testService(t)

	w := httptest.NewRecorder()
	service.Authenticate(w, loginRequest(pin))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")
	assert.NotEmpty(t, w.Result().Cookies())
}

func TestAuthenticateInvalidPin(t *testing.T) {
	service, pin := testService(t)

	w := httptest.NewRecorder()
	service.Authenticate(w, loginRequest(wrongPin(pin)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "remainingAttempts")
}

func TestAuthenticateLocked(t *testing.T) {
	service, pin := testService(t)

	for i := 0; i < 5; i++ {
		service.Authenticate(httptest.NewRecorder(), loginRequest(wrongPin(pin)))
	}
	w := httptest.NewRecorder()
	service.Authenticate(w, loginRequest(pin))

	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Contains(t, w.Body.String(), "retryAfterSeconds")
}

func TestAuthorizedWithQueryToken(t *testing.T) {
	service, _ := testService(t)
	token := service.Sessions.Create("192.168.1.20")

	r := httptest.NewRequest("GET", "/stream?token="+token, nil)
	r.RemoteAddr = "192.168.1.20:53412"
	assert.True(t, service.Authorized(r))
}

func TestAuthorizedRejectsRemoteWithoutToken(t *testing.T) {
	service, _ := testService(t)

	r := httptest.NewRequest("GET", "/stream", nil)
	r.RemoteAddr = "192.168.1.20:53412"
	assert.False(t, service.Authorized(r))

	r = httptest.NewRequest("GET", "/stream?token=bogus", nil)
	r.RemoteAddr = "192.168.1.20:53412"
	assert.False(t, service.Authorized(r))
}

func TestAuthorizedLoopbackExempt(t *testing.T) {
	service, _ := testService(t)

	r := httptest.NewRequest("GET", "/stream", nil)
	r.RemoteAddr = "127.0.0.1:53412"
	assert.True(t, service.Authorized(r))
}

func TestLogoutInvalidatesToken(t *testing.T) {
	service, _ := testService(t)
	token := service.Sessions.Create("192.168.1.20")

	r := httptest.NewRequest("POST", "/auth/logout?token="+token, nil)
	r.RemoteAddr = "192.168.1.20:53412"
	service.Logout(httptest.NewRecorder(), r)

	assert.False(t, service.Sessions.Validate(token))
}

func TestRemoteIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:9999"
	assert.Equal(t, "10.1.2.3", RemoteIP(r, false).String())

	r.Header.Set("X-Real-IP", "42.42.42.42")
	assert.Equal(t, "10.1.2.3", RemoteIP(r, false).String())
	assert.Equal(t, "42.42.42.42", RemoteIP(r, true).String())
}

func TestIsLocal(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "[::1]:9999"
	assert.True(t, IsLocal(RemoteIP(r, false)))

	r.RemoteAddr = "192.168.1.20:9999"
	assert.False(t, IsLocal(RemoteIP(r, false)))
}
