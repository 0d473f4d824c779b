package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/infrastructure/auth/authtest"
	"github.com/orris-inc/harborline/internal/shared/config"
	apperrors "github.com/orris-inc/harborline/internal/shared/errors"
)

func newTestProvider(t *testing.T, secret string) (*Provider, *authtest.Provider) {
	fake := authtest.New(t, "harborline-cli", "user-42", "ops@example.com")
	p := NewProvider(backend.Config{
		APIKey:     "harborline-cli",
		AuthDomain: fake.URL(),
		ProjectID:  "harborline",
		OrgKey:     "acme",
	}, config.AuthConfig{ClientSecret: secret})
	return p, fake
}

func TestProvider_AuthURL(t *testing.T) {
	p, fake := newTestProvider(t, "")

	raw, verifier := p.AuthURL("st", "http://127.0.0.1:1234/callback")
	assert.Len(t, verifier, 43)
	_, other := p.AuthURL("st", "http://127.0.0.1:1234/callback")
	assert.NotEqual(t, verifier, other)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, fake.URL()+"/oauth/authorize", u.Scheme+"://"+u.Host+u.Path)
	q := u.Query()
	assert.Equal(t, "st", q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	sum := sha256.Sum256([]byte(verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), q.Get("code_challenge"))
	assert.Equal(t, "harborline-cli", q.Get("client_id"))
	assert.Equal(t, "http://127.0.0.1:1234/callback", q.Get("redirect_uri"))
}

func TestProvider_SignInLoopback_UserInfo(t *testing.T) {
	p, _ := newTestProvider(t, "")
	ctx := context.Background()

	tok, err := p.SignInLoopback(ctx, 0, 5*time.Second, authtest.FollowRedirects)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)
	assert.NotEmpty(t, tok.RefreshToken)

	who, err := p.Identify(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, &backend.Identity{ID: "user-42", Email: "ops@example.com"}, who)
}

func TestProvider_SignInLoopback_IDToken(t *testing.T) {
	p, fake := newTestProvider(t, authtest.ClientSecret)
	fake.IssueIDTokens()
	ctx := context.Background()

	tok, err := p.SignInLoopback(ctx, 0, 5*time.Second, authtest.FollowRedirects)
	require.NoError(t, err)

	// Revoking access tokens proves the identity comes from the ID token.
	fake.RevokeAll()
	who, err := p.Identify(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-42", who.ID)
}

func TestProvider_IDTokenWithWrongSecretIsRejected(t *testing.T) {
	p, fake := newTestProvider(t, "not-the-secret")
	fake.IssueIDTokens()
	ctx := context.Background()

	tok, err := p.SignInLoopback(ctx, 0, 5*time.Second, authtest.FollowRedirects)
	require.NoError(t, err)

	_, err = p.Identify(ctx, tok)
	require.Error(t, err)
	authErr := apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeTokenInvalid, authErr.Type)
}

func TestProvider_SignInLoopback_Denied(t *testing.T) {
	p, fake := newTestProvider(t, "")
	fake.Deny("access_denied")

	_, err := p.SignInLoopback(context.Background(), 0, 5*time.Second, authtest.FollowRedirects)
	authErr := apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeSignInAborted, authErr.Type)
}

func TestProvider_SignInLoopback_Timeout(t *testing.T) {
	p, _ := newTestProvider(t, "")

	_, err := p.SignInLoopback(context.Background(), 0, 50*time.Millisecond, func(string) error { return nil })
	authErr := apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeSignInAborted, authErr.Type)
}

func TestProvider_SignInLoopback_StateMismatch(t *testing.T) {
	p, _ := newTestProvider(t, "")

	opener := func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		callback := u.Query().Get("redirect_uri") + "?state=forged&code=abc"
		resp, err := http.Get(callback)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}

	_, err := p.SignInLoopback(context.Background(), 0, 5*time.Second, opener)
	authErr := apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeOAuthError, authErr.Type)
}

func TestProvider_Refresh(t *testing.T) {
	p, fake := newTestProvider(t, "")
	fake.SetTokenTTL(time.Second)
	ctx := context.Background()

	tok, err := p.SignInLoopback(ctx, 0, 5*time.Second, authtest.FollowRedirects)
	require.NoError(t, err)

	// A one-second token is inside the refresh window, so Refresh rotates it.
	fresh, err := p.Refresh(ctx, tok)
	require.NoError(t, err)
	assert.NotEqual(t, tok.AccessToken, fresh.AccessToken)

	fake.RevokeAll()
	_, err = p.Refresh(ctx, fresh)
	assert.Error(t, err)
}
