package controllers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"

	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/controllers"
	"github.com/vnkhanh/form-server/middleware"
	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/testutil"
	"github.com/vnkhanh/form-server/utils"
)

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestSignupCreatesUnverifiedUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)

	w := testutil.DoRequest(r, "POST", "/api/auth/signup", map[string]interface{}{
		"email":            "an@example.com",
		"password":         "secret1",
		"confirm_password": "secret1",
		"name":             "An",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var u models.User
	require.NoError(t, db.Where("email = ?", "an@example.com").First(&u).Error)
	assert.False(t, u.EmailVerified)
	assert.NotEmpty(t, u.VerifyTokenHash)
	require.NotNil(t, u.VerifyExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *u.VerifyExpiresAt, time.Minute)

	// email trùng
	w = testutil.DoRequest(r, "POST", "/api/auth/signup", map[string]interface{}{
		"email":            "an@example.com",
		"password":         "secret2",
		"confirm_password": "secret2",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignupRejectsMismatchedPasswords(t *testing.T) {
	testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)

	w := testutil.DoRequest(r, "POST", "/api/auth/signup", map[string]interface{}{
		"email":            "an@example.com",
		"password":         "secret1",
		"confirm_password": "secret2",
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSignupRejectsPasswordOverBcryptLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)

	// 80 ký tự ASCII bị tag max chặn; 30 ký tự "ữ" là 90 byte nên bị chặn theo byte
	for _, pw := range []string{strings.Repeat("a", 80), strings.Repeat("ữ", 30)} {
		w := testutil.DoRequest(r, "POST", "/api/auth/signup", map[string]interface{}{
			"email":            "an@example.com",
			"password":         pw,
			"confirm_password": pw,
		}, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	}

	var n int64
	db.Model(&models.User{}).Count(&n)
	assert.Zero(t, n)
}

func TestSigninRequiresVerifiedEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)

	u := testutil.SeedUser(t, db, "binh@example.com", "secret1")
	require.NoError(t, db.Model(u).Update("email_verified", false).Error)

	w := testutil.DoRequest(r, "POST", "/api/auth/signin", map[string]interface{}{
		"email": "binh@example.com", "password": "wrong-pass",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.DoRequest(r, "POST", "/api/auth/signin", map[string]interface{}{
		"email": "binh@example.com", "password": "secret1",
	}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, db.Model(u).Update("email_verified", true).Error)
	w = testutil.DoRequest(r, "POST", "/api/auth/signin", map[string]interface{}{
		"email": "BINH@example.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.NotEmpty(t, testutil.ParseResponse(w)["token"])
}

func TestAuthCallbackVerifiesAndStartsSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)

	u := testutil.SeedUser(t, db, "chi@example.com", "secret1")
	token, secret, err := utils.GenerateVerifyToken(u.ID)
	require.NoError(t, err)
	hash, err := utils.HashVerifySecret(secret)
	require.NoError(t, err)
	expires := time.Now().Add(time.Hour)
	require.NoError(t, db.Model(u).Updates(map[string]interface{}{
		"email_verified":    false,
		"verify_token_hash": hash,
		"verify_expires_at": expires,
	}).Error)

	w := testutil.DoRequest(r, "GET", "/auth/callback?token="+token+"&next=/forms/new", nil, "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/forms/new", w.Header().Get("Location"))
	require.NotNil(t, sessionCookie(w))

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", u.ID).Error)
	assert.True(t, fresh.EmailVerified)
	assert.Empty(t, fresh.VerifyTokenHash)

	// token chỉ dùng được một lần
	w = testutil.DoRequest(r, "GET", "/auth/callback?token="+token, nil, "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?error=verification_failed", w.Header().Get("Location"))
}

func TestAuthCallbackRejectsOffsiteRedirect(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)

	u := testutil.SeedUser(t, db, "dung@example.com", "secret1")
	token, secret, _ := utils.GenerateVerifyToken(u.ID)
	hash, _ := utils.HashVerifySecret(secret)
	require.NoError(t, db.Model(u).Updates(map[string]interface{}{
		"verify_token_hash": hash,
		"verify_expires_at": time.Now().Add(time.Hour),
	}).Error)

	w := testutil.DoRequest(r, "GET", "/auth/callback?token="+token+"&next=//evil.example", nil, "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestAuthCallbackExpiredToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)

	u := testutil.SeedUser(t, db, "em@example.com", "secret1")
	token, secret, _ := utils.GenerateVerifyToken(u.ID)
	hash, _ := utils.HashVerifySecret(secret)
	require.NoError(t, db.Model(u).Updates(map[string]interface{}{
		"verify_token_hash": hash,
		"verify_expires_at": time.Now().Add(-time.Minute),
	}).Error)

	w := testutil.DoRequest(r, "GET", "/auth/callback?token="+token, nil, "")
	assert.Equal(t, "/login?error=verification_failed", w.Header().Get("Location"))
}

func TestSignoutRevokesSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)

	u := testutil.SeedUser(t, db, "giang@example.com", "secret1")
	token := testutil.TokenFor(t, u.ID)

	w := testutil.DoRequest(r, "GET", "/api/auth/session", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoRequest(r, "POST", "/api/auth/signout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	if c := sessionCookie(w); assert.NotNil(t, c) {
		assert.Empty(t, c.Value)
	}

	w = testutil.DoRequest(r, "GET", "/api/auth/session", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionRequiresToken(t *testing.T) {
	testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)

	w := testutil.DoRequest(r, "GET", "/api/auth/session", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.DoRequest(r, "GET", "/api/auth/session", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGoogleSignin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)

	orig := controllers.ValidateGoogleIDToken
	t.Cleanup(func() { controllers.ValidateGoogleIDToken = orig })
	controllers.ValidateGoogleIDToken = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		if token != "good-token" || audience != "client-123" {
			return nil, errors.New("invalid")
		}
		return &idtoken.Payload{
			Subject: "google-sub-1",
			Claims:  map[string]interface{}{"email": "hoa@example.com", "name": "Hoa"},
		}, nil
	}

	w := testutil.DoRequest(r, "POST", "/api/auth/google", map[string]interface{}{"id_token": "good-token"}, "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	config.Cfg.Auth.GoogleClientID = "client-123"

	w = testutil.DoRequest(r, "POST", "/api/auth/google", map[string]interface{}{"id_token": "bad"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// user có sẵn theo email được liên kết với tài khoản Google
	existing := testutil.SeedUser(t, db, "hoa@example.com", "secret1")
	w = testutil.DoRequest(r, "POST", "/api/auth/google", map[string]interface{}{"id_token": "good-token"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := testutil.ParseResponse(w)["user"].(map[string]interface{})
	assert.Equal(t, existing.ID, user["id"])

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// lần sau tìm theo google sub
	w = testutil.DoRequest(r, "POST", "/api/auth/google", map[string]interface{}{"id_token": "good-token"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, sessionCookie(w))
}
