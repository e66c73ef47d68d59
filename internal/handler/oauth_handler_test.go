package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

type fakeOAuthService struct {
	configured  bool
	completeErr error
	gotCode     string
}

func (f *fakeOAuthService) AuthCodeURL(provider string) (string, string, error) {
	if !f.configured {
		return "", "", appErrors.Clone(appErrors.ErrNotImplemented, provider+" login is not configured")
	}
	return "https://idp.example/consent?state=st-1", "st-1", nil
}

func (f *fakeOAuthService) Complete(ctx context.Context, provider, state, code string, meta models.RequestMeta) (*models.LoginResponse, error) {
	f.gotCode = code
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &models.LoginResponse{AccessToken: "tok", User: &models.User{ID: "u1"}}, nil
}

func (f *fakeOAuthService) RedirectURL(resp *models.LoginResponse) (string, error) {
	return "http://frontend/Login?token=" + resp.AccessToken, nil
}

func TestOAuthHandlerStart(t *testing.T) {
	h := NewOAuthHandler(&fakeOAuthService{configured: true}, 10*time.Minute, false, nil)

	c, rec := newContext(http.MethodGet, "/auth/google", nil)
	h.Start("google")(c)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://idp.example/consent?state=st-1", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, oauthStateCookie, cookies[0].Name)
	assert.Equal(t, "st-1", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestOAuthHandlerStartNotConfigured(t *testing.T) {
	h := NewOAuthHandler(&fakeOAuthService{}, time.Minute, false, nil)

	c, rec := newContext(http.MethodGet, "/auth/microsoft", nil)
	h.Start("microsoft")(c)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestOAuthHandlerCallback(t *testing.T) {
	svc := &fakeOAuthService{configured: true}
	h := NewOAuthHandler(svc, time.Minute, false, nil)

	c, rec := newContext(http.MethodGet, "/auth/google/callback?state=st-1&code=abc", nil)
	c.Request.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "st-1"})
	h.Callback("google")(c)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://frontend/Login?token=tok", rec.Header().Get("Location"))
	assert.Equal(t, "abc", svc.gotCode)
}

func TestOAuthHandlerCallbackFailures(t *testing.T) {
	t.Run("state cookie missing", func(t *testing.T) {
		h := NewOAuthHandler(&fakeOAuthService{configured: true}, time.Minute, false, nil)
		c, rec := newContext(http.MethodGet, "/auth/google/callback?state=st-1&code=abc", nil)
		h.Callback("google")(c)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("state mismatch", func(t *testing.T) {
		h := NewOAuthHandler(&fakeOAuthService{configured: true}, time.Minute, false, nil)
		c, rec := newContext(http.MethodGet, "/auth/google/callback?state=other&code=abc", nil)
		c.Request.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "st-1"})
		h.Callback("google")(c)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("provider error", func(t *testing.T) {
		h := NewOAuthHandler(&fakeOAuthService{configured: true}, time.Minute, false, nil)
		c, rec := newContext(http.MethodGet, "/auth/google/callback?state=st-1&error=access_denied", nil)
		c.Request.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "st-1"})
		h.Callback("google")(c)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("exchange failure", func(t *testing.T) {
		svc := &fakeOAuthService{configured: true, completeErr: appErrors.Clone(appErrors.ErrUnauthorized, "exchange failed")}
		h := NewOAuthHandler(svc, time.Minute, false, nil)
		c, rec := newContext(http.MethodGet, "/auth/google/callback?state=st-1&code=bad", nil)
		c.Request.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "st-1"})
		h.Callback("google")(c)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOAuthHandlerFailure(t *testing.T) {
	h := NewOAuthHandler(&fakeOAuthService{}, time.Minute, false, nil)
	c, rec := newContext(http.MethodGet, "/auth/failure", nil)
	h.Failure(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
