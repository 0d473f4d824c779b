// Package assets is the dual-regime record layer: it decides whether reads and
// writes go to the device or to the shared backend, and keeps one consistent
// view of facilities and vessels for the presentation layer.
package assets

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/shared/biztime"
	"github.com/orris-inc/harborline/internal/shared/errors"
	"github.com/orris-inc/harborline/internal/shared/goroutine"
	"github.com/orris-inc/harborline/internal/shared/logger"
)

const defaultInboxSize = 64

var errStopped = errors.NewUnavailableError("record controller is not running")

// Options wire a Controller. Local and Config are required.
type Options struct {
	Local     LocalStore
	Config    ConfigStore
	Connector BackendConnector
	Metrics   Metrics
	Logger    logger.Interface
	Clock     func() time.Time
	InboxSize int
}

// state is owned by the Run goroutine. Nothing else reads or writes it.
type state struct {
	runCtx context.Context

	regime   Regime
	phase    Phase
	strategy writeStrategy

	config   *backend.Config
	attempt  uint64
	backend  *Backend
	sessStop context.CancelFunc
	identity *backend.Identity
	// degraded holds the local regime after a subscription failure until the
	// identity or the descriptor changes.
	degraded bool

	generation uint64
	subStop    context.CancelFunc
	subs       map[asset.Kind]Subscription
	synced     map[asset.Kind]bool

	view      asset.RecordSet
	lastError string
}

// Controller serializes every regime transition, snapshot and write through
// one goroutine (Run) and publishes immutable Views.
type Controller struct {
	local     LocalStore
	config    ConfigStore
	connector BackendConnector
	metrics   Metrics
	logger    logger.Interface
	clock     func() time.Time

	inbox   chan event
	state   state
	wg      sync.WaitGroup
	started atomic.Bool
	done    chan struct{}

	current     atomic.Pointer[View]
	mu          sync.Mutex
	changed     chan struct{}
	watchers    map[int]chan View
	nextWatcher int
}

// NewController loads the local working copy so the first View is available
// before Run starts.
func NewController(ctx context.Context, opts Options) *Controller {
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewDiscardLogger()
	}
	if opts.Clock == nil {
		opts.Clock = biztime.NowUTC
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = defaultInboxSize
	}

	c := &Controller{
		local:     opts.Local,
		config:    opts.Config,
		connector: opts.Connector,
		metrics:   opts.Metrics,
		logger:    opts.Logger.With("component", "assets.controller"),
		clock:     opts.Clock,
		inbox:     make(chan event, opts.InboxSize),
		done:      make(chan struct{}),
		changed:   make(chan struct{}),
		watchers:  make(map[int]chan View),
	}

	s := &c.state
	s.regime = RegimeLocal
	s.phase = PhaseIdle
	s.strategy = localWrites{}
	s.view = c.local.Load(ctx)
	s.config = c.config.Load(ctx)
	if c.canConnect() {
		s.phase = PhaseConnecting
	}
	c.publish()

	return c
}

func (c *Controller) now() time.Time {
	return c.clock().UTC()
}

func (c *Controller) canConnect() bool {
	return c.connector != nil && c.state.config != nil && c.state.config.Valid()
}

// Run applies events until ctx is cancelled, then tears down the backend and
// waits for every goroutine it started.
func (c *Controller) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.NewConflictError("record controller is already running")
	}

	s := &c.state
	s.runCtx = ctx

	if s.config != nil && !s.config.Valid() {
		c.logger.Warnw("backend configuration is invalid, staying local", "error", s.config.Validate())
	}
	if c.canConnect() {
		c.connect()
	}

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return nil
		case ev := <-c.inbox:
			c.handle(ev)
		}
	}
}

func (c *Controller) shutdown() {
	c.disconnect()
	c.wg.Wait()
	close(c.done)

	c.mu.Lock()
	for id, ch := range c.watchers {
		close(ch)
		delete(c.watchers, id)
	}
	c.mu.Unlock()
}

// spawn runs fn on a tracked goroutine so Run can wait for it on exit.
func (c *Controller) spawn(name string, fn func()) {
	c.wg.Add(1)
	goroutine.SafeGo(c.logger, name, func() {
		defer c.wg.Done()
		fn()
	})
}

// post queues ev unless ctx ends or the controller has stopped first.
func (c *Controller) post(ctx context.Context, ev event) error {
	select {
	case c.inbox <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return errStopped
	}
}

func (c *Controller) handle(ev event) {
	switch e := ev.(type) {
	case configChanged:
		c.onConfigChanged(e)
	case backendConnected:
		c.onBackendConnected(e)
	case backendFailed:
		c.onBackendFailed(e)
	case identityChanged:
		c.onIdentityChanged(e)
	case facilitiesSnapshot:
		c.onFacilitiesSnapshot(e)
	case vesselsSnapshot:
		c.onVesselsSnapshot(e)
	case subscriptionOpened:
		c.onSubscriptionOpened(e)
	case subscriptionFailed:
		c.onSubscriptionFailed(e)
	case commandIssued:
		c.state.strategy.apply(c, e.cmd)
	case backendRequested:
		e.reply <- c.handleFor()
	case barrier:
		close(e.done)
	default:
		c.logger.Errorw("unknown controller event", "event", ev)
	}
}

func (c *Controller) onConfigChanged(e configChanged) {
	s := &c.state
	s.lastError = ""

	if e.cfg == nil || !e.cfg.Valid() {
		if e.cfg != nil {
			c.logger.Warnw("backend configuration is invalid, staying local", "error", e.cfg.Validate())
		}
		c.disconnect()
		s.config = e.cfg
		s.phase = PhaseIdle
		c.publish()
		return
	}

	// Same endpoint, new tenant: keep the connection and session.
	if s.backend != nil && s.config != nil && s.config.SameEndpoint(*e.cfg) {
		previous := s.config.Namespace()
		s.config = e.cfg

		switch {
		case s.regime == RegimeShared && previous != e.cfg.Namespace():
			c.logger.Infow("namespace changed, resubscribing", "from", previous, "to", e.cfg.Namespace())
			c.resubscribe()
		case s.regime == RegimeLocal && s.identity != nil:
			s.degraded = false
			c.enterShared()
		default:
			c.publish()
		}
		return
	}

	c.disconnect()
	s.config = e.cfg
	c.connect()
}

func (c *Controller) connect() {
	s := &c.state
	if !c.canConnect() {
		s.phase = PhaseIdle
		c.publish()
		return
	}

	s.attempt++
	attempt := s.attempt
	cfg := *s.config
	runCtx := s.runCtx

	s.phase = PhaseConnecting
	c.publish()
	c.logger.Infow("connecting backend", "project_id", cfg.ProjectID, "namespace", cfg.Namespace())

	c.spawn("assets.connect", func() {
		b, err := c.connector.Connect(runCtx, cfg)
		if err != nil {
			_ = c.post(runCtx, backendFailed{attempt: attempt, err: err})
			return
		}
		if err := c.post(runCtx, backendConnected{attempt: attempt, backend: b}); err != nil {
			c.closeBackend(b)
		}
	})
}

// disconnect leaves the shared regime and releases the backend. Pending
// connects and session reports for the old backend become stale.
func (c *Controller) disconnect() {
	s := &c.state
	s.attempt++

	if s.regime == RegimeShared {
		c.enterLocal("backend disconnected")
	}
	if s.sessStop != nil {
		s.sessStop()
		s.sessStop = nil
	}
	if s.backend != nil {
		s.backend.Sessions.Stop()
		c.closeBackend(s.backend)
		s.backend = nil
	}
	s.identity = nil
	s.degraded = false
}

func (c *Controller) closeBackend(b *Backend) {
	if b == nil || b.Close == nil {
		return
	}
	if err := b.Close(); err != nil {
		c.logger.Warnw("failed to close backend", "error", err)
	}
}

func (c *Controller) onBackendConnected(e backendConnected) {
	s := &c.state
	if e.attempt != s.attempt {
		c.closeBackend(e.backend)
		return
	}

	s.backend = e.backend
	s.phase = PhaseAuthenticating
	c.publish()
	c.logger.Infow("backend connected", "namespace", s.config.Namespace())

	sessCtx, stop := context.WithCancel(s.runCtx)
	s.sessStop = stop
	attempt := e.attempt
	e.backend.Sessions.Start(sessCtx, func(who *backend.Identity) {
		_ = c.post(sessCtx, identityChanged{attempt: attempt, identity: who})
	})
}

func (c *Controller) onBackendFailed(e backendFailed) {
	s := &c.state
	if e.attempt != s.attempt {
		return
	}

	c.logger.Warnw("backend unavailable, staying local", "error", e.err)
	s.lastError = e.err.Error()
	s.phase = PhaseIdle
	c.publish()
}

func (c *Controller) onIdentityChanged(e identityChanged) {
	s := &c.state
	if e.attempt != s.attempt || s.backend == nil {
		return
	}

	previous := s.identity
	s.identity = e.identity

	switch {
	case e.identity == nil:
		s.degraded = false
		if s.regime == RegimeShared {
			c.enterLocal("signed out")
			return
		}
		s.phase = PhaseIdle
		c.publish()

	case s.regime == RegimeShared:
		if !previous.Equal(e.identity) {
			c.resubscribe()
			return
		}
		c.publish()

	case s.degraded && previous.Equal(e.identity):
		s.phase = PhaseIdle
		c.publish()

	default:
		s.degraded = false
		c.enterShared()
	}
}

func (c *Controller) sharedStrategy() sharedWrites {
	s := &c.state
	return sharedWrites{
		records: s.backend.Records,
		ns:      s.config.Namespace(),
		who:     *s.identity,
	}
}

func (c *Controller) enterShared() {
	s := &c.state
	from := s.regime

	s.regime = RegimeShared
	s.strategy = c.sharedStrategy()
	s.view = asset.RecordSet{Facilities: []asset.StorageFacility{}, Vessels: []asset.Vessel{}}
	s.lastError = ""
	c.subscribe()

	c.metrics.RegimeChanged(from, RegimeShared)
	c.logger.Infow("entered shared regime", "namespace", s.config.Namespace(), "user_id", s.identity.ID)
	c.publish()
}

func (c *Controller) enterLocal(reason string) {
	s := &c.state
	from := s.regime

	c.teardownSubscriptions()
	s.regime = RegimeLocal
	s.strategy = localWrites{}
	// Also runs during shutdown, after runCtx is done.
	s.view = c.local.Load(context.WithoutCancel(s.runCtx))
	s.phase = PhaseIdle

	if from != RegimeLocal {
		c.metrics.RegimeChanged(from, RegimeLocal)
		c.logger.Infow("entered local regime", "reason", reason)
	}
	c.publish()
}

// resubscribe replaces the subscriptions while staying shared, for a new
// namespace or principal.
func (c *Controller) resubscribe() {
	s := &c.state
	c.teardownSubscriptions()
	s.strategy = c.sharedStrategy()
	s.view = asset.RecordSet{Facilities: []asset.StorageFacility{}, Vessels: []asset.Vessel{}}
	c.subscribe()
	c.publish()
}

// subscribe opens both collection feeds under a new generation. Feeds open off
// the controller goroutine; everything they deliver is tagged with the
// generation so deliveries from an older one are dropped.
func (c *Controller) subscribe() {
	s := &c.state
	s.generation++
	gen := s.generation

	subCtx, stop := context.WithCancel(s.runCtx)
	s.subStop = stop
	s.subs = make(map[asset.Kind]Subscription, 2)
	s.synced = make(map[asset.Kind]bool, 2)
	s.phase = PhaseSyncing

	records := s.backend.Records
	ns := s.config.Namespace()
	who := *s.identity

	c.spawn("assets.subscribe", func() {
		for _, kind := range []asset.Kind{asset.KindFacility, asset.KindVessel} {
			sub, err := c.openFeed(subCtx, gen, kind, records, ns, who)
			if err != nil {
				if subCtx.Err() == nil {
					_ = c.post(subCtx, subscriptionFailed{generation: gen, kind: kind, err: err})
				}
				return
			}
			if err := c.post(subCtx, subscriptionOpened{generation: gen, kind: kind, sub: sub}); err != nil {
				_ = sub.Close()
				return
			}
		}
	})
}

func (c *Controller) openFeed(ctx context.Context, gen uint64, kind asset.Kind, records RemoteStore, ns backend.Namespace, who backend.Identity) (Subscription, error) {
	onError := func(err error) {
		_ = c.post(ctx, subscriptionFailed{generation: gen, kind: kind, err: err})
	}

	if kind == asset.KindFacility {
		return records.WatchFacilities(ctx, ns, who, func(items []asset.StorageFacility) {
			_ = c.post(ctx, facilitiesSnapshot{generation: gen, items: items})
		}, onError)
	}
	return records.WatchVessels(ctx, ns, who, func(items []asset.Vessel) {
		_ = c.post(ctx, vesselsSnapshot{generation: gen, items: items})
	}, onError)
}

// teardownSubscriptions invalidates the current generation and closes its
// feeds before returning.
func (c *Controller) teardownSubscriptions() {
	s := &c.state
	s.generation++

	if s.subStop != nil {
		s.subStop()
		s.subStop = nil
	}
	for kind, sub := range s.subs {
		if err := sub.Close(); err != nil {
			c.logger.Warnw("failed to close subscription", "kind", kind, "error", err)
		}
	}
	s.subs = nil
	s.synced = nil
}

func (c *Controller) acceptSnapshot(gen uint64, kind asset.Kind) bool {
	s := &c.state
	if gen != s.generation || s.regime != RegimeShared {
		c.metrics.SnapshotDiscarded(kind)
		c.logger.Debugw("discarded stale snapshot", "kind", kind, "generation", gen, "current", s.generation)
		return false
	}
	c.metrics.SnapshotApplied(kind)
	return true
}

func (c *Controller) markSynced(kind asset.Kind) {
	s := &c.state
	s.synced[kind] = true
	if s.synced[asset.KindFacility] && s.synced[asset.KindVessel] {
		s.phase = PhaseLive
	}
	c.publish()
}

func (c *Controller) onFacilitiesSnapshot(e facilitiesSnapshot) {
	if !c.acceptSnapshot(e.generation, asset.KindFacility) {
		return
	}
	items := make([]asset.StorageFacility, len(e.items))
	copy(items, e.items)
	c.state.view.Facilities = items
	c.markSynced(asset.KindFacility)
}

func (c *Controller) onVesselsSnapshot(e vesselsSnapshot) {
	if !c.acceptSnapshot(e.generation, asset.KindVessel) {
		return
	}
	items := make([]asset.Vessel, len(e.items))
	copy(items, e.items)
	c.state.view.Vessels = items
	c.markSynced(asset.KindVessel)
}

func (c *Controller) onSubscriptionOpened(e subscriptionOpened) {
	s := &c.state
	if e.generation != s.generation || s.regime != RegimeShared {
		_ = e.sub.Close()
		return
	}
	s.subs[e.kind] = e.sub
}

func (c *Controller) onSubscriptionFailed(e subscriptionFailed) {
	s := &c.state
	if e.generation != s.generation || s.regime != RegimeShared {
		return
	}

	c.logger.Warnw("subscription failed, falling back to local", "kind", e.kind, "error", e.err)
	s.degraded = true
	s.lastError = e.err.Error()
	c.enterLocal("subscription failed")
}

// publish stores a fresh View and wakes waiters and watchers.
func (c *Controller) publish() {
	s := &c.state
	v := &View{
		Regime:         s.regime,
		Phase:          s.phase,
		Records:        s.view.Clone(),
		Configured:     s.config != nil && s.config.Valid(),
		ConfigReadOnly: c.config.ReadOnly(),
		LastError:      s.lastError,
	}
	if s.config != nil {
		v.Namespace = s.config.Namespace()
	}
	if s.identity != nil {
		who := *s.identity
		v.Identity = &who
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.current.Store(v)
	close(c.changed)
	c.changed = make(chan struct{})
	for _, ch := range c.watchers {
		sendLatest(ch, *v)
	}
}

// sendLatest replaces any unread View in ch with v.
func sendLatest(ch chan View, v View) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
