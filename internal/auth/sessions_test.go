package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/lending/internal/config"
	"github.com/mrlokans/lending/internal/entities"
)

func setupSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	sqlDB, err := setupTestDB(t).DB()
	require.NoError(t, err)

	sm, err := NewSessionManager(sqlDB, config.Auth{SessionLifetime: time.Hour})
	require.NoError(t, err)
	return sm
}

func sessionRouter(sm *SessionManager, user *entities.User) *gin.Engine {
	router := gin.New()
	router.Use(sm.LoadAndSave())
	router.POST("/login", func(c *gin.Context) {
		if err := sm.CreateSession(c.Request, user); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": sm.GetUserID(c.Request)})
	})
	router.POST("/logout", func(c *gin.Context) {
		_ = sm.DestroySession(c.Request)
		c.Status(http.StatusNoContent)
	})
	return router
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "library_session" {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestNewSessionManager_Defaults(t *testing.T) {
	sqlDB, err := setupTestDB(t).DB()
	require.NoError(t, err)

	sm, err := NewSessionManager(sqlDB, config.Auth{SecureCookies: true})
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, sm.Lifetime)
	assert.Equal(t, "library_session", sm.Cookie.Name)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.True(t, sm.Cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, sm.Cookie.SameSite)
}

func TestSession_LoginRoundTrip(t *testing.T) {
	sm := setupSessionManager(t)
	router := sessionRouter(sm, &entities.User{ID: 42, Role: entities.UserRoleAdmin})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	cookie := sessionCookie(t, rr)
	assert.NotEmpty(t, cookie.Value)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.JSONEq(t, `{"user_id":42}`, rr.Body.String())
}

func TestSession_AnonymousHasNoUser(t *testing.T) {
	sm := setupSessionManager(t)
	router := sessionRouter(sm, &entities.User{ID: 1})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.JSONEq(t, `{"user_id":0}`, rr.Body.String())
	assert.Empty(t, rr.Result().Cookies())
}

func TestSession_LogoutInvalidatesToken(t *testing.T) {
	sm := setupSessionManager(t)
	router := sessionRouter(sm, &entities.User{ID: 7})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookie := sessionCookie(t, rr)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, sessionCookie(t, rr).Value)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.JSONEq(t, `{"user_id":0}`, rr.Body.String())
}
