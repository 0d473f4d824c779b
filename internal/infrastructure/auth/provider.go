package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/shared/config"
	apperrors "github.com/orris-inc/harborline/internal/shared/errors"
)

const (
	// httpClientTimeout is the timeout for HTTP requests to the identity provider
	httpClientTimeout = 30 * time.Second

	authorizePath = "/oauth/authorize"
	tokenPath     = "/oauth/token"
	userInfoPath  = "/oauth/userinfo"
)

// Provider talks to the identity provider named by a backend descriptor: the
// descriptor's api key is the OAuth client id and its auth domain the
// provider base URL.
type Provider struct {
	config       *oauth2.Config
	issuer       string
	userInfoURL  string
	clientSecret string
	httpClient   *http.Client
}

// idTokenClaims are the claims of an HS256 ID token signed with the client secret
type idTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type userInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

func NewProvider(cfg backend.Config, authCfg config.AuthConfig) *Provider {
	base := strings.TrimRight(cfg.AuthDomain, "/")
	scopes := authCfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "email"}
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.APIKey,
			ClientSecret: authCfg.ClientSecret,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + authorizePath,
				TokenURL:  base + tokenPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		issuer:       base,
		userInfoURL:  base + userInfoPath,
		clientSecret: authCfg.ClientSecret,
		httpClient:   &http.Client{Timeout: httpClientTimeout},
	}
}

func (p *Provider) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// AuthURL builds the consent URL for redirectURL and returns it with the PKCE
// verifier the code exchange needs.
func (p *Provider) AuthURL(state, redirectURL string) (authURL, verifier string) {
	verifier = oauth2.GenerateVerifier()

	cfg := *p.config
	cfg.RedirectURL = redirectURL

	authURL = cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
	return authURL, verifier
}

func (p *Provider) Exchange(ctx context.Context, code, codeVerifier, redirectURL string) (*oauth2.Token, error) {
	cfg := *p.config
	cfg.RedirectURL = redirectURL

	token, err := cfg.Exchange(p.withClient(ctx), code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, apperrors.NewOAuthError("exchange", err.Error())
	}
	return token, nil
}

// Refresh returns a valid token for tok, refreshing it if it has expired.
func (p *Provider) Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	fresh, err := p.config.TokenSource(p.withClient(ctx), tok).Token()
	if err != nil {
		return nil, apperrors.NewTokenExpiredError("session token")
	}
	return fresh, nil
}

// Identify resolves the principal behind tok, from its ID token when one is
// present and verifiable, otherwise from the userinfo endpoint.
func (p *Provider) Identify(ctx context.Context, tok *oauth2.Token) (*backend.Identity, error) {
	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" && p.clientSecret != "" {
		return p.verifyIDToken(raw)
	}
	return p.fetchUserInfo(ctx, tok)
}

func (p *Provider) verifyIDToken(raw string) (*backend.Identity, error) {
	claims := &idTokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(p.clientSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(p.config.ClientID),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, apperrors.NewTokenInvalidError("ID token", err.Error())
	}
	if claims.Subject == "" {
		return nil, apperrors.NewTokenInvalidError("ID token", "missing subject")
	}

	return &backend.Identity{ID: claims.Subject, Email: claims.Email}, nil
}

func (p *Provider) fetchUserInfo(ctx context.Context, tok *oauth2.Token) (*backend.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	tok.SetAuthHeader(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewOAuthError("userinfo", err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperrors.NewTokenInvalidError("access token")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewOAuthError("userinfo", fmt.Sprintf("status %d, body: %s", resp.StatusCode, string(body)))
	}

	var info userInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user info: %w", err)
	}
	if info.Sub == "" {
		return nil, apperrors.NewOAuthError("userinfo", "missing subject")
	}

	return &backend.Identity{ID: info.Sub, Email: info.Email}, nil
}
