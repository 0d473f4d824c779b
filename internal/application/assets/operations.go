package assets

import (
	"context"
	"time"

	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/shared/errors"
)

// Snapshot returns the latest published View. It never blocks.
func (c *Controller) Snapshot() View {
	return *c.current.Load()
}

// Watch streams Views as they are published, starting with the current one.
// A slow reader only sees the latest View. The channel is closed by cancel or
// when Run returns.
func (c *Controller) Watch() (<-chan View, func()) {
	ch := make(chan View, 1)

	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		ch <- c.Snapshot()
		close(ch)
		return ch, func() {}
	default:
	}
	key := c.nextWatcher
	c.nextWatcher++
	c.watchers[key] = ch
	ch <- *c.current.Load()
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if w, ok := c.watchers[key]; ok {
			delete(c.watchers, key)
			close(w)
		}
	}
	return ch, cancel
}

// AwaitSettled blocks until the phase is Idle or Live and returns that View.
func (c *Controller) AwaitSettled(ctx context.Context) (View, error) {
	for {
		c.mu.Lock()
		v := *c.current.Load()
		changed := c.changed
		c.mu.Unlock()

		if v.Phase.Settled() {
			return v, nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return v, ctx.Err()
		case <-c.done:
			return c.Snapshot(), errStopped
		}
	}
}

// Flush returns once every event queued before the call has been applied.
func (c *Controller) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if err := c.post(ctx, barrier{done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return errStopped
	}
}

// SaveBackend validates and stores a descriptor, then switches to it.
func (c *Controller) SaveBackend(ctx context.Context, cfg backend.Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.NewValidationError("invalid backend configuration", err.Error())
	}
	if err := c.config.Save(ctx, cfg); err != nil {
		return toAppError(err, "failed to save backend configuration")
	}
	return c.post(ctx, configChanged{cfg: &cfg})
}

// ClearBackend removes the stored descriptor and returns to the local regime.
func (c *Controller) ClearBackend(ctx context.Context) error {
	if err := c.config.Clear(ctx); err != nil {
		return toAppError(err, "failed to clear backend configuration")
	}
	return c.post(ctx, configChanged{})
}

// SignIn runs the provider sign-in of the connected backend. The regime
// follows when the session monitor reports the new identity.
func (c *Controller) SignIn(ctx context.Context) error {
	h, err := c.backendHandle(ctx)
	if err != nil {
		return err
	}
	if h.sessions == nil {
		return errors.NewUnavailableError("no backend connected", "configure a backend before signing in")
	}
	return h.sessions.SignIn(ctx)
}

// SignOut always succeeds when no backend is connected.
func (c *Controller) SignOut(ctx context.Context) error {
	h, err := c.backendHandle(ctx)
	if err != nil {
		return err
	}
	if h.sessions == nil {
		return nil
	}
	return h.sessions.SignOut(ctx)
}

// SelfTest round-trips a probe document in the current namespace.
func (c *Controller) SelfTest(ctx context.Context) (time.Duration, error) {
	h, err := c.backendHandle(ctx)
	if err != nil {
		return 0, err
	}
	if h.records == nil {
		return 0, errors.NewUnavailableError("no backend connected")
	}
	if h.who == nil {
		return 0, errors.NewUnauthorizedError("sign in required")
	}
	latency, err := h.records.SelfTest(ctx, h.ns, *h.who)
	if err != nil {
		return 0, toAppError(err, "self-test failed")
	}
	return latency, nil
}

func (c *Controller) backendHandle(ctx context.Context) (backendHandle, error) {
	reply := make(chan backendHandle, 1)
	if err := c.post(ctx, backendRequested{reply: reply}); err != nil {
		return backendHandle{}, err
	}
	select {
	case h := <-reply:
		return h, nil
	case <-ctx.Done():
		return backendHandle{}, ctx.Err()
	case <-c.done:
		return backendHandle{}, errStopped
	}
}

// handleFor runs on the controller goroutine.
func (c *Controller) handleFor() backendHandle {
	s := &c.state
	if s.backend == nil {
		return backendHandle{}
	}
	h := backendHandle{
		sessions: s.backend.Sessions,
		records:  s.backend.Records,
		ns:       s.config.Namespace(),
	}
	if s.identity != nil {
		who := *s.identity
		h.who = &who
	}
	return h
}

// submit hands cmd to the active write strategy and waits for its result.
func (c *Controller) submit(ctx context.Context, cmd *command) (string, error) {
	cmd.ctx = ctx
	cmd.reply = make(chan commandResult, 1)

	if err := c.post(ctx, commandIssued{cmd: cmd}); err != nil {
		return "", err
	}
	select {
	case res := <-cmd.reply:
		return res.id, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", errStopped
	}
}

// toAppError keeps AppErrors and reports anything else as an unavailable
// backend.
func toAppError(err error, message string) error {
	if err == nil || errors.IsAppError(err) {
		return err
	}
	return errors.NewUnavailableError(message, err.Error())
}
