package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"

	"github.com/noah-isme/complaint-desk-api/internal/models"
	"github.com/noah-isme/complaint-desk-api/pkg/config"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
	"github.com/noah-isme/complaint-desk-api/pkg/signer"
)

// Supported federated login providers.
const (
	ProviderGoogle    = "google"
	ProviderMicrosoft = "microsoft"
)

type oauthUserRepository interface {
	FindByProvider(ctx context.Context, provider, subject, email string) (*models.User, error)
	LinkProvider(ctx context.Context, id, provider, subject string) error
	Create(ctx context.Context, user *models.User) error
}

// OAuthProvider couples an oauth2 client configuration with its profile endpoint.
type OAuthProvider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
	parse       func(map[string]any) models.ExternalIdentity
}

// OAuthService runs the authorization code flow for the configured providers and maps the
// returned profile onto a local account.
type OAuthService struct {
	providers   map[string]*OAuthProvider
	repo        oauthUserRepository
	auth        *AuthService
	audit       *AuditService
	states      *signer.StateSigner
	frontendURL string
	logger      *zap.Logger
}

// NewOAuthService registers every provider whose client credentials are present in cfg.
func NewOAuthService(cfg config.OAuthConfig, frontendURL string, repo oauthUserRepository, auth *AuthService, audit *AuditService, states *signer.StateSigner, logger *zap.Logger) *OAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OAuthService{
		providers:   map[string]*OAuthProvider{},
		repo:        repo,
		auth:        auth,
		audit:       audit,
		states:      states,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}

	if cfg.Google.Enabled() {
		s.providers[ProviderGoogle] = &OAuthProvider{
			Name: ProviderGoogle,
			Config: &oauth2.Config{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				RedirectURL:  cfg.Google.CallbackURL,
				Scopes:       []string{"openid", "profile", "email"},
				Endpoint:     google.Endpoint,
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v3/userinfo",
			parse:       parseGoogleProfile,
		}
	}
	if cfg.Microsoft.Enabled() {
		tenant := cfg.Microsoft.Tenant
		if tenant == "" {
			tenant = "common"
		}
		s.providers[ProviderMicrosoft] = &OAuthProvider{
			Name: ProviderMicrosoft,
			Config: &oauth2.Config{
				ClientID:     cfg.Microsoft.ClientID,
				ClientSecret: cfg.Microsoft.ClientSecret,
				RedirectURL:  cfg.Microsoft.CallbackURL,
				Scopes:       []string{"openid", "profile", "email", "User.Read"},
				Endpoint:     microsoft.AzureADEndpoint(tenant),
			},
			UserInfoURL: "https://graph.microsoft.com/v1.0/me",
			parse:       parseMicrosoftProfile,
		}
	}
	return s
}

// Enabled reports whether provider has client credentials configured.
func (s *OAuthService) Enabled(provider string) bool {
	_, ok := s.providers[provider]
	return ok
}

// AuthCodeURL returns the provider consent URL and the signed state to round-trip.
func (s *OAuthService) AuthCodeURL(provider string) (string, string, error) {
	p, err := s.provider(provider)
	if err != nil {
		return "", "", err
	}
	state, err := s.states.Generate(provider)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create oauth state")
	}
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOnline), state, nil
}

// Complete verifies state, exchanges code, resolves the local account and issues an access token.
func (s *OAuthService) Complete(ctx context.Context, provider, state, code string, meta models.RequestMeta) (*models.LoginResponse, error) {
	p, err := s.provider(provider)
	if err != nil {
		return nil, err
	}
	if err := s.states.Verify(state, provider); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid oauth state")
	}
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authorization code missing")
	}

	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "failed to exchange authorization code")
	}

	identity, err := s.fetchIdentity(ctx, p, token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "failed to load provider profile")
	}

	user, err := s.findOrCreate(ctx, identity)
	if err != nil {
		return nil, err
	}

	resp, err := s.auth.IssueToken(user)
	if err != nil {
		return nil, err
	}

	meta.ActorID = user.ID
	s.audit.Record(ctx, meta, models.AuditActionLogin, "auth", user.ID, map[string]string{"method": provider})
	return resp, nil
}

// RedirectURL builds the frontend login URL carrying the base64-encoded user JSON and the access token.
func (s *OAuthService) RedirectURL(resp *models.LoginResponse) (string, error) {
	payload, err := json.Marshal(resp.User)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode user")
	}
	query := url.Values{}
	query.Set("user", base64.StdEncoding.EncodeToString(payload))
	query.Set("token", resp.AccessToken)
	return s.frontendURL + "/Login?" + query.Encode(), nil
}

func (s *OAuthService) provider(name string) (*OAuthProvider, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotImplemented, fmt.Sprintf("%s login is not configured", name))
	}
	return p, nil
}

func (s *OAuthService) fetchIdentity(ctx context.Context, p *OAuthProvider, token *oauth2.Token) (*models.ExternalIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, string(body))
	}

	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	identity := p.parse(info)
	identity.Provider = p.Name
	if identity.Subject == "" {
		return nil, fmt.Errorf("provider did not return a user id")
	}
	if identity.Email == "" {
		return nil, fmt.Errorf("provider did not return an email")
	}
	return &identity, nil
}

func (s *OAuthService) findOrCreate(ctx context.Context, identity *models.ExternalIdentity) (*models.User, error) {
	user, err := s.repo.FindByProvider(ctx, identity.Provider, identity.Subject, identity.Email)
	if err == nil {
		if linkedSubject(user, identity.Provider) != identity.Subject {
			if !identity.EmailVerified {
				return nil, appErrors.Clone(appErrors.ErrUnauthorized, "provider email is not verified")
			}
			if err := s.repo.LinkProvider(ctx, user.ID, identity.Provider, identity.Subject); err != nil {
				s.logger.Warn("failed to link provider", zap.String("provider", identity.Provider), zap.String("user_id", user.ID), zap.Error(err))
			} else {
				setLinkedSubject(user, identity.Provider, identity.Subject)
			}
		}
		return user, nil
	}
	if !errors.Is(err, appErrors.ErrRecordNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up user")
	}

	user = &models.User{
		Name:     identity.Name,
		Email:    identity.Email,
		UserType: models.UserTypeOrdinary,
		Avatar:   identity.Avatar,
	}
	setLinkedSubject(user, identity.Provider, identity.Subject)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	return user, nil
}

func linkedSubject(user *models.User, provider string) string {
	if provider == ProviderMicrosoft {
		return user.MicrosoftID
	}
	return user.GoogleID
}

func setLinkedSubject(user *models.User, provider, subject string) {
	if provider == ProviderMicrosoft {
		user.MicrosoftID = subject
		return
	}
	user.GoogleID = subject
}

func parseGoogleProfile(info map[string]any) models.ExternalIdentity {
	return models.ExternalIdentity{
		Subject:       stringField(info, "sub", "id"),
		Email:         stringField(info, "email"),
		EmailVerified: boolField(info, "email_verified", "verified_email"),
		Name:          stringField(info, "name"),
		Avatar:        stringField(info, "picture"),
	}
}

// Graph profile addresses are assigned by the directory, so they count as verified.
func parseMicrosoftProfile(info map[string]any) models.ExternalIdentity {
	email := stringField(info, "mail", "userPrincipalName")
	return models.ExternalIdentity{
		Subject:       stringField(info, "id"),
		Email:         email,
		EmailVerified: email != "",
		Name:          stringField(info, "displayName"),
	}
}

func stringField(info map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := info[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func boolField(info map[string]any, keys ...string) bool {
	for _, key := range keys {
		switch v := info[key].(type) {
		case bool:
			return v
		case string:
			return strings.EqualFold(v, "true")
		}
	}
	return false
}
