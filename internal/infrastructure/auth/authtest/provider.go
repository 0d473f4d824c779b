// Package authtest runs an in-process OAuth 2.0 provider for tests.
package authtest

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const ClientSecret = "test-client-secret"

type pendingCode struct {
	challenge string
	redirect  string
}

// Provider is a fake identity provider implementing authorize, token and
// userinfo with PKCE enforcement.
type Provider struct {
	Server   *httptest.Server
	ClientID string

	mu       sync.Mutex
	subject  string
	email    string
	deny     string
	issueIDs bool
	tokenTTL time.Duration
	codes    map[string]pendingCode
	tokens   map[string]string
	refresh  map[string]string
	seq      int
}

// New starts a provider that signs in subject on every authorize request.
func New(t *testing.T, clientID, subject, email string) *Provider {
	t.Helper()
	p := &Provider{
		ClientID: clientID,
		subject:  subject,
		email:    email,
		tokenTTL: time.Hour,
		codes:    make(map[string]pendingCode),
		tokens:   make(map[string]string),
		refresh:  make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/authorize", p.authorize)
	mux.HandleFunc("/oauth/token", p.token)
	mux.HandleFunc("/oauth/userinfo", p.userinfo)
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)
	return p
}

// URL is the auth domain to put in a backend descriptor.
func (p *Provider) URL() string {
	return p.Server.URL
}

// Deny makes authorize redirect back with an error.
func (p *Provider) Deny(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deny = reason
}

// IssueIDTokens adds an HS256 ID token signed with ClientSecret to token responses.
func (p *Provider) IssueIDTokens() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issueIDs = true
}

// SetTokenTTL sets the lifetime of issued access tokens.
func (p *Provider) SetTokenTTL(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenTTL = d
}

// RevokeAll invalidates every access and refresh token issued so far.
func (p *Provider) RevokeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = make(map[string]string)
	p.refresh = make(map[string]string)
}

func (p *Provider) nextLocked(prefix string) string {
	p.seq++
	return fmt.Sprintf("%s-%d", prefix, p.seq)
}

func (p *Provider) authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	redirect, err := url.Parse(q.Get("redirect_uri"))
	if err != nil || q.Get("client_id") != p.ClientID || q.Get("code_challenge_method") != "S256" {
		http.Error(w, "bad authorize request", http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	back := redirect.Query()
	back.Set("state", q.Get("state"))
	if p.deny != "" {
		back.Set("error", p.deny)
	} else {
		code := p.nextLocked("code")
		p.codes[code] = pendingCode{challenge: q.Get("code_challenge"), redirect: redirect.String()}
		back.Set("code", code)
	}
	p.mu.Unlock()

	redirect.RawQuery = back.Encode()
	http.Redirect(w, r, redirect.String(), http.StatusFound)
}

func (p *Provider) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		pending, ok := p.codes[r.PostForm.Get("code")]
		delete(p.codes, r.PostForm.Get("code"))
		sum := sha256.Sum256([]byte(r.PostForm.Get("code_verifier")))
		if !ok || base64.RawURLEncoding.EncodeToString(sum[:]) != pending.challenge ||
			r.PostForm.Get("redirect_uri") != pending.redirect {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
			return
		}
	case "refresh_token":
		if _, ok := p.refresh[r.PostForm.Get("refresh_token")]; !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
			return
		}
		delete(p.refresh, r.PostForm.Get("refresh_token"))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}

	access := p.nextLocked("at")
	refresh := p.nextLocked("rt")
	p.tokens[access] = p.subject
	p.refresh[refresh] = p.subject

	resp := map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "Bearer",
		"expires_in":    int(p.tokenTTL.Seconds()),
	}
	if p.issueIDs {
		now := time.Now()
		idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iss":   p.Server.URL,
			"aud":   p.ClientID,
			"sub":   p.subject,
			"email": p.email,
			"iat":   now.Unix(),
			"exp":   now.Add(time.Hour).Unix(),
		}).SignedString([]byte(ClientSecret))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp["id_token"] = idToken
	}
	writeJSON(w, http.StatusOK, resp)
}

func (p *Provider) userinfo(w http.ResponseWriter, r *http.Request) {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	p.mu.Lock()
	sub, ok := p.tokens[auth[len(prefix):]]
	email := p.email
	p.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"sub": sub, "email": email})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// FollowRedirects is an auth.Opener that completes the consent step without a
// browser by following the provider redirect to the loopback callback.
func FollowRedirects(authURL string) error {
	resp, err := http.Get(authURL)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}
