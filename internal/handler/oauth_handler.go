package handler

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
	"github.com/noah-isme/complaint-desk-api/pkg/response"
)

const oauthStateCookie = "oauth_state"

type oauthService interface {
	AuthCodeURL(provider string) (string, string, error)
	Complete(ctx context.Context, provider, state, code string, meta models.RequestMeta) (*models.LoginResponse, error)
	RedirectURL(resp *models.LoginResponse) (string, error)
}

// OAuthHandler serves the federated login redirects.
type OAuthHandler struct {
	service      oauthService
	stateTTL     time.Duration
	secureCookie bool
	logger       *zap.Logger
}

// NewOAuthHandler creates a new handler. The state cookie lives for stateTTL.
func NewOAuthHandler(svc oauthService, stateTTL time.Duration, secureCookie bool, logger *zap.Logger) *OAuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OAuthHandler{service: svc, stateTTL: stateTTL, secureCookie: secureCookie, logger: logger}
}

// Start returns the handler redirecting to the consent page of provider.
// @Summary Begin federated login
// @Tags Authentication
// @Success 302
// @Failure 501 {object} response.Envelope
// @Router /auth/google [get]
// @Router /auth/microsoft [get]
func (h *OAuthHandler) Start(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, state, err := h.service.AuthCodeURL(provider)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(oauthStateCookie, state, int(h.stateTTL.Seconds()), "/auth", "", h.secureCookie, true)
		c.Redirect(http.StatusFound, target)
	}
}

// Callback returns the handler completing the login of provider and redirecting to the frontend.
// @Summary Complete federated login
// @Tags Authentication
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Success 302
// @Failure 401 {object} response.Envelope
// @Failure 501 {object} response.Envelope
// @Router /auth/google/callback [get]
// @Router /auth/microsoft/callback [get]
func (h *OAuthHandler) Callback(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := c.Query("state")
		cookie, err := c.Cookie(oauthStateCookie)
		c.SetCookie(oauthStateCookie, "", -1, "/auth", "", h.secureCookie, true)
		if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(state)) != 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "oauth state mismatch"))
			return
		}
		if reason := c.Query("error"); reason != "" {
			h.logger.Info("federated login declined", zap.String("provider", provider), zap.String("reason", reason))
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "login was not authorised by the provider"))
			return
		}

		res, err := h.service.Complete(c.Request.Context(), provider, state, c.Query("code"), requestMeta(c))
		if err != nil {
			h.logger.Warn("federated login failed", zap.String("provider", provider), zap.Error(err))
			response.Error(c, err)
			return
		}

		target, err := h.service.RedirectURL(res)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Redirect(http.StatusFound, target)
	}
}

// Failure godoc
// @Summary Federated login failure
// @Tags Authentication
// @Failure 401 {object} response.Envelope
// @Router /auth/failure [get]
func (h *OAuthHandler) Failure(c *gin.Context) {
	response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication failed"))
}
