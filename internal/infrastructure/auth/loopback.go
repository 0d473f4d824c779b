package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/orris-inc/harborline/internal/shared/errors"
)

const callbackPath = "/callback"

// Opener presents the consent URL to the operator, typically by printing it
// or launching a browser.
type Opener func(authURL string) error

type callbackResult struct {
	code string
	err  error
}

// SignInLoopback runs the interactive authorization code flow with a one-shot
// HTTP listener on 127.0.0.1 as the redirect target. Port 0 picks a free port.
func (p *Provider) SignInLoopback(ctx context.Context, port int, timeout time.Duration, open Opener) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for the sign-in callback: %w", err)
	}
	redirectURL := "http://" + ln.Addr().String() + callbackPath

	state, err := generateState()
	if err != nil {
		_ = ln.Close()
		return nil, err
	}
	authURL, codeVerifier := p.AuthURL(state, redirectURL)

	results := make(chan callbackResult, 1)
	deliver := func(r callbackResult) {
		select {
		case results <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			deliver(callbackResult{err: apperrors.NewOAuthError("callback", "state mismatch")})
		case q.Get("error") != "":
			http.Error(w, "sign-in was not completed", http.StatusUnauthorized)
			deliver(callbackResult{err: apperrors.NewSignInAbortedError(q.Get("error"))})
		case q.Get("code") == "":
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			deliver(callbackResult{err: apperrors.NewOAuthError("callback", "missing authorization code")})
		default:
			_, _ = fmt.Fprintln(w, "Signed in to Harborline. You can close this window.")
			deliver(callbackResult{code: q.Get("code")})
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	served := make(chan struct{})
	go func() {
		defer close(served)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			deliver(callbackResult{err: fmt.Errorf("sign-in callback listener failed: %w", err)})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-served
	}()

	if err := open(authURL); err != nil {
		return nil, fmt.Errorf("failed to open sign-in page: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var res callbackResult
	select {
	case res = <-results:
	case <-waitCtx.Done():
		return nil, apperrors.NewSignInAbortedError("timed out waiting for the provider callback")
	}
	if res.err != nil {
		return nil, res.err
	}

	return p.Exchange(ctx, res.code, codeVerifier, redirectURL)
}

// generateState returns an unguessable value binding the callback to the
// request that started the flow.
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
