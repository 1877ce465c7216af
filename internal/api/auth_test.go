package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/linguasigna/signaling-server/internal/registry"
	"github.com/linguasigna/signaling-server/internal/stats"
	"github.com/linguasigna/signaling-server/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestJwtRoundTrip(t *testing.T) {
	app := newTestApp(t, registry.NewUserRegistry(), registry.NewRoomRegistry(),
		registry.NewSessionRegistry(), &stats.MockStatsUpdater{})

	user := types.User{Id: "user-123"}
	token, err := app.createJwtForSession(user, time.Hour)
	assert.NoError(t, err, "expected no error creating token")
	assert.NotEmpty(t, token, "expected a signed token")

	userId, err := app.extractUserIdFromToken(token)
	assert.NoError(t, err, "expected no error extracting user id")
	assert.Equal(t, user.Id, userId, "expected user id claim to round trip")
}

func TestExtractUserIdFromToken(t *testing.T) {
	app := newTestApp(t, registry.NewUserRegistry(), registry.NewRoomRegistry(),
		registry.NewSessionRegistry(), &stats.MockStatsUpdater{})

	t.Run("fails with malformed token", func(t *testing.T) {
		_, err := app.extractUserIdFromToken("not-a-token")
		assert.Error(t, err, "expected error for malformed token")
	})

	t.Run("fails with expired token", func(t *testing.T) {
		token, err := app.createJwtForSession(types.User{Id: "user-123"}, -time.Hour)
		assert.NoError(t, err)

		_, err = app.extractUserIdFromToken(token)
		assert.Error(t, err, "expected error for expired token")
	})
}

func Test_hashPassword_verifyPassword(t *testing.T) {
	hash, err := hashPassword("password")
	assert.NoError(t, err, "expected no error hashing password")
	assert.NotEqual(t, "password", hash, "expected hash to differ from the password")

	assert.True(t, verifyPassword(hash, "password"), "expected matching password to verify")
	assert.False(t, verifyPassword(hash, "wrong"), "expected mismatched password to fail")
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("rejects request without cookie", func(t *testing.T) {
		app := newTestApp(t, registry.NewUserRegistry(), registry.NewRoomRegistry(),
			registry.NewSessionRegistry(), &stats.MockStatsUpdater{})

		var called bool
		handler := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "expected status code to be 401")
		assert.False(t, called, "expected next handler not to be called")
	})

	t.Run("rejects request with invalid token", func(t *testing.T) {
		app := newTestApp(t, registry.NewUserRegistry(), registry.NewRoomRegistry(),
			registry.NewSessionRegistry(), &stats.MockStatsUpdater{})

		handler := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			t.Error("expected next handler not to be called")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieKey, Value: "garbage"})

		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "expected status code to be 401")
	})

	t.Run("passes user id to the next handler", func(t *testing.T) {
		app := newTestApp(t, registry.NewUserRegistry(), registry.NewRoomRegistry(),
			registry.NewSessionRegistry(), &stats.MockStatsUpdater{})

		token, err := app.createJwtForSession(types.User{Id: "user-123"}, time.Hour)
		assert.NoError(t, err)

		handler := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			userId, ok := UserId(r.Context())
			assert.True(t, ok, "expected user id in request context")
			assert.Equal(t, "user-123", userId, "expected user id to match token claim")
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieKey, Value: token})

		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "expected status code to be 200")
	})
}

func TestSessionHandler(t *testing.T) {
	t.Run("returns the authenticated user", func(t *testing.T) {
		users := registry.NewUserRegistry()
		user, err := users.CreateUser("alice@example.com", "hash")
		assert.NoError(t, err)

		app := newTestApp(t, users, registry.NewRoomRegistry(),
			registry.NewSessionRegistry(), &stats.MockStatsUpdater{})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req = req.WithContext(WithUserId(req.Context(), user.Id))

		rr := httptest.NewRecorder()
		app.session(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "expected status code to be 200")
	})

	t.Run("unknown user id", func(t *testing.T) {
		app := newTestApp(t, registry.NewUserRegistry(), registry.NewRoomRegistry(),
			registry.NewSessionRegistry(), &stats.MockStatsUpdater{})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req = req.WithContext(WithUserId(req.Context(), "unknown"))

		rr := httptest.NewRecorder()
		app.session(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code, "expected status code to be 404")
	})
}

func TestLogoutHandler(t *testing.T) {
	app := newTestApp(t, registry.NewUserRegistry(), registry.NewRoomRegistry(),
		registry.NewSessionRegistry(), &stats.MockStatsUpdater{})

	rr := httptest.NewRecorder()
	app.logout(rr, httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code, "expected status code to be 204")

	cookie := findCookie(rr, tokenCookieKey)
	assert.NotNil(t, cookie, "expected the cookie to be overwritten")
	assert.Empty(t, cookie.Value, "expected the cookie value to be cleared")
}
