// Package session tracks the signed-in identity for a connected backend and
// persists the provider token across restarts.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/infrastructure/auth"
	"github.com/orris-inc/harborline/internal/shared/errors"
	"github.com/orris-inc/harborline/internal/shared/goroutine"
	"github.com/orris-inc/harborline/internal/shared/logger"
	"github.com/orris-inc/harborline/internal/shared/utils"
)

// SessionKey is the storage slot of the persisted provider token.
const SessionKey = "harborline.session"

var _ assets.SessionMonitor = (*Monitor)(nil)

type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Options configure the interactive sign-in.
type Options struct {
	RedirectPort    int
	CallbackTimeout time.Duration
	Opener          auth.Opener
}

// Monitor reports identity changes for one backend. The restore performed by
// Start never overrides an explicit SignIn or SignOut that finished first.
type Monitor struct {
	provider *auth.Provider
	kv       KV
	opts     Options
	logger   logger.Interface

	mu      sync.Mutex
	report  func(*backend.Identity)
	current *backend.Identity
	epoch   uint64

	cancel context.CancelFunc
	done   chan struct{}
}

func NewMonitor(provider *auth.Provider, kv KV, opts Options, log logger.Interface) *Monitor {
	if opts.CallbackTimeout <= 0 {
		opts.CallbackTimeout = 2 * time.Minute
	}
	return &Monitor{
		provider: provider,
		kv:       kv,
		opts:     opts,
		logger:   log,
	}
}

// Start restores the persisted session in the background and reports the
// result, then reports every later change.
func (m *Monitor) Start(ctx context.Context, report func(*backend.Identity)) {
	m.mu.Lock()
	if m.done != nil {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.report = report
	m.cancel = cancel
	m.done = make(chan struct{})
	epoch := m.epoch
	done := m.done
	m.mu.Unlock()

	goroutine.SafeGo(m.logger, "session.restore", func() {
		defer close(done)

		who := m.restore(ctx)
		if ctx.Err() != nil {
			return
		}
		m.publishIfUnchanged(epoch, who)
	})
}

// Stop ends the background restore and silences further reports.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.report = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Current returns the last reported identity.
func (m *Monitor) Current() *backend.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// publishIfUnchanged reports who unless another change was reported after
// epoch was read.
func (m *Monitor) publishIfUnchanged(epoch uint64, who *backend.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		return
	}
	m.publishLocked(who)
}

func (m *Monitor) publish(who *backend.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishLocked(who)
}

func (m *Monitor) publishLocked(who *backend.Identity) {
	m.epoch++
	m.current = who
	if m.report != nil {
		m.report(who)
	}
}

func (m *Monitor) restore(ctx context.Context) *backend.Identity {
	raw, ok, err := m.kv.Get(ctx, SessionKey)
	if err != nil {
		m.logger.Warnw("failed to read persisted session", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		m.logger.Warnw("persisted session is malformed, discarding", "error", err)
		m.forget(ctx)
		return nil
	}

	fresh, err := m.provider.Refresh(ctx, &tok)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Infow("persisted session expired", "error", err)
			m.forget(ctx)
		}
		return nil
	}

	who, err := m.provider.Identify(ctx, fresh)
	if err != nil {
		if ctx.Err() == nil {
			if errors.ShouldLogAuthError(err) {
				m.logger.Warnw("persisted session could not be verified", "error", err)
			}
			m.forget(ctx)
		}
		return nil
	}

	if fresh.AccessToken != tok.AccessToken {
		if err := m.persist(ctx, fresh); err != nil {
			m.logger.Warnw("failed to persist refreshed session", "error", err)
		}
	}

	m.logger.Infow("session restored", "user_id", who.ID, "email", utils.MaskEmail(who.Email))
	return who
}

// SignIn runs the interactive provider sign-in and reports the new identity.
func (m *Monitor) SignIn(ctx context.Context) error {
	if m.opts.Opener == nil {
		return errors.NewSignInAbortedError("no way to present the sign-in page")
	}

	tok, err := m.provider.SignInLoopback(ctx, m.opts.RedirectPort, m.opts.CallbackTimeout, m.opts.Opener)
	if err != nil {
		return err
	}

	who, err := m.provider.Identify(ctx, tok)
	if err != nil {
		return err
	}

	if err := m.persist(ctx, tok); err != nil {
		m.logger.Warnw("signed in but the session will not survive a restart", "error", err)
	}

	m.publish(who)

	m.logger.Infow("signed in", "user_id", who.ID, "email", utils.MaskEmail(who.Email))
	return nil
}

// SignOut forgets the session. It always succeeds.
func (m *Monitor) SignOut(ctx context.Context) error {
	m.forget(ctx)

	m.publish(nil)

	m.logger.Infow("signed out")
	return nil
}

func (m *Monitor) persist(ctx context.Context, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return m.kv.Set(ctx, SessionKey, string(data))
}

func (m *Monitor) forget(ctx context.Context) {
	if err := m.kv.Delete(ctx, SessionKey); err != nil {
		m.logger.Warnw("failed to erase persisted session", "error", err)
	}
}
