package server

import (
	"net/http"
	"testing"

	"dogpark/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	ts := newTestServer(t)

	resp := rpc(t, ts.app, http.MethodPost, "auth.register", map[string]string{
		"email": "rex@example.com", "password": "good-password", "username": "rex",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ok successResponse
	decode(t, resp, &ok)
	assert.True(t, ok.Success)

	resp = rpc(t, ts.app, http.MethodPost, "auth.login", map[string]string{
		"email": "rex@example.com", "password": "good-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	var login loginResponse
	decode(t, resp, &login)
	assert.True(t, login.Success)
	assert.NotZero(t, login.UserID)

	resp = rpc(t, ts.app, http.MethodGet, "auth.me", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me map[string]any
	decode(t, resp, &me)
	assert.Equal(t, "rex", me["username"])
	assert.Equal(t, "email_rex@example.com", me["openId"])
	assert.NotContains(t, me, "passwordHash")
}

func TestMeAnonymous(t *testing.T) {
	ts := newTestServer(t)
	resp := rpc(t, ts.app, http.MethodGet, "auth.me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me *models.User
	decode(t, resp, &me)
	assert.Nil(t, me)
}

func TestRegisterConflicts(t *testing.T) {
	ts := newTestServer(t)
	ts.signUp(t, "bella")

	resp := rpc(t, ts.app, http.MethodPost, "auth.register", map[string]string{
		"email": "bella@example.com", "password": "good-password", "username": "other",
	})
	assertError(t, resp, http.StatusConflict, models.CodeConflict, "Email already registered")

	resp = rpc(t, ts.app, http.MethodPost, "auth.register", map[string]string{
		"email": "new@example.com", "password": "good-password", "username": "bella",
	})
	assertError(t, resp, http.StatusConflict, models.CodeConflict, "Username already taken")
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)
	resp := rpc(t, ts.app, http.MethodPost, "auth.register", map[string]string{
		"email": "not-an-email", "password": "good-password", "username": "max",
	})
	assertError(t, resp, http.StatusBadRequest, models.CodeValidation, "email must be a valid email address")

	resp = rpc(t, ts.app, http.MethodPost, "auth.register", map[string]string{
		"email": "max@example.com", "password": "short", "username": "max",
	})
	assertError(t, resp, http.StatusBadRequest, models.CodeValidation, "")
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.signUp(t, "luna")

	for _, creds := range []map[string]string{
		{"email": "luna@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": "good-password"},
	} {
		resp := rpc(t, ts.app, http.MethodPost, "auth.login", creds)
		assertError(t, resp, http.StatusUnauthorized, models.CodeUnauthorized, "Invalid credentials")
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	ts := newTestServer(t)
	_, cookie := ts.signUp(t, "milo")

	resp := rpc(t, ts.app, http.MethodPost, "auth.logout", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cleared := sessionCookie(t, resp)
	assert.Empty(t, cleared.Value)

	resp = rpc(t, ts.app, http.MethodPost, "posts.create", map[string]string{"title": "After logout"}, cookie)
	assertError(t, resp, http.StatusUnauthorized, models.CodeUnauthorized, "Token has been revoked")
}

func TestLogoutAnonymous(t *testing.T) {
	ts := newTestServer(t)
	resp := rpc(t, ts.app, http.MethodPost, "auth.logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
