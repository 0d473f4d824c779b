package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/shared/errors"
)

// memLocal round-trips through JSON like the SQLite-backed store.
type memLocal struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	saveErr error
}

// Load and Save honour ctx the way the kvstore-backed store does: a done
// context reads as the sample set and fails the save.
func (m *memLocal) Load(ctx context.Context) asset.RecordSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil || ctx.Err() != nil {
		return asset.SampleRecordSet()
	}
	var rs asset.RecordSet
	if err := json.Unmarshal(m.data, &rs); err != nil {
		return asset.SampleRecordSet()
	}
	return rs
}

func (m *memLocal) Save(ctx context.Context, rs asset.RecordSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := json.Marshal(rs)
	if err != nil {
		return err
	}
	m.data = data
	m.saves++
	return nil
}

func (m *memLocal) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

type memConfig struct {
	mu       sync.Mutex
	cfg      *backend.Config
	readOnly bool
}

func (m *memConfig) Load(context.Context) *backend.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return nil
	}
	cfg := *m.cfg
	return &cfg
}

func (m *memConfig) Save(_ context.Context, cfg backend.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readOnly {
		return errors.NewForbiddenError("backend configuration is managed by the deployment")
	}
	m.cfg = &cfg
	return nil
}

func (m *memConfig) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readOnly {
		return errors.NewForbiddenError("backend configuration is managed by the deployment")
	}
	m.cfg = nil
	return nil
}

func (m *memConfig) ReadOnly() bool {
	return m.readOnly
}

type fakeWatch struct {
	mu           sync.Mutex
	ns           backend.Namespace
	kind         asset.Kind
	onFacilities func([]asset.StorageFacility)
	onVessels    func([]asset.Vessel)
	onError      func(error)
	closed       bool
}

func (w *fakeWatch) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWatch) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *fakeWatch) deliver(fs []asset.StorageFacility, vs []asset.Vessel) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.kind == asset.KindFacility {
		w.onFacilities(fs)
		return
	}
	w.onVessels(vs)
}

func (w *fakeWatch) fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.onError(err)
}

// fakeRemote keeps one document set per namespace.
type fakeRemote struct {
	mu         sync.Mutex
	facilities map[backend.Namespace][]asset.StorageFacility
	vessels    map[backend.Namespace][]asset.Vessel
	watches    []*fakeWatch
	hold       map[backend.Namespace]bool
	autoPush   bool
	watchErr   error
	writeErr   error
	nextID     int
	writers    []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		facilities: make(map[backend.Namespace][]asset.StorageFacility),
		vessels:    make(map[backend.Namespace][]asset.Vessel),
		hold:       make(map[backend.Namespace]bool),
		autoPush:   true,
	}
}

func (r *fakeRemote) seed(ns backend.Namespace, fs []asset.StorageFacility, vs []asset.Vessel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.facilities[ns] = fs
	r.vessels[ns] = vs
}

func (r *fakeRemote) snapshot(ns backend.Namespace) ([]asset.StorageFacility, []asset.Vessel) {
	fs := append([]asset.StorageFacility{}, r.facilities[ns]...)
	vs := append([]asset.Vessel{}, r.vessels[ns]...)
	asset.SortFacilities(fs)
	asset.SortVessels(vs)
	return fs, vs
}

func (r *fakeRemote) watch(ns backend.Namespace, kind asset.Kind, w *fakeWatch) (Subscription, error) {
	r.mu.Lock()
	if r.watchErr != nil {
		r.mu.Unlock()
		return nil, r.watchErr
	}
	w.ns = ns
	w.kind = kind
	r.watches = append(r.watches, w)
	hold := r.hold[ns]
	fs, vs := r.snapshot(ns)
	r.mu.Unlock()

	if !hold {
		w.deliver(fs, vs)
	}
	return w, nil
}

func (r *fakeRemote) WatchFacilities(_ context.Context, ns backend.Namespace, _ backend.Identity,
	onSnapshot func([]asset.StorageFacility), onError func(error)) (Subscription, error) {
	return r.watch(ns, asset.KindFacility, &fakeWatch{onFacilities: onSnapshot, onError: onError})
}

func (r *fakeRemote) WatchVessels(_ context.Context, ns backend.Namespace, _ backend.Identity,
	onSnapshot func([]asset.Vessel), onError func(error)) (Subscription, error) {
	return r.watch(ns, asset.KindVessel, &fakeWatch{onVessels: onSnapshot, onError: onError})
}

func (r *fakeRemote) openWatches(ns backend.Namespace) []*fakeWatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	var open []*fakeWatch
	for _, w := range r.watches {
		if w.ns == ns && !w.isClosed() {
			open = append(open, w)
		}
	}
	return open
}

// push delivers the current snapshot of ns to its open watches.
func (r *fakeRemote) push(ns backend.Namespace) {
	r.mu.Lock()
	fs, vs := r.snapshot(ns)
	r.mu.Unlock()
	for _, w := range r.openWatches(ns) {
		w.deliver(fs, vs)
	}
}

func (r *fakeRemote) failWatches(ns backend.Namespace, err error) {
	for _, w := range r.openWatches(ns) {
		w.fail(err)
	}
}

func (r *fakeRemote) afterWrite(ns backend.Namespace) {
	r.mu.Lock()
	push := r.autoPush
	r.mu.Unlock()
	if push {
		r.push(ns)
	}
}

func (r *fakeRemote) begin(who backend.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writers = append(r.writers, who.ID)
	return r.writeErr
}

func (r *fakeRemote) CreateFacility(_ context.Context, ns backend.Namespace, who backend.Identity, f asset.StorageFacility) (string, error) {
	if err := r.begin(who); err != nil {
		return "", err
	}
	r.mu.Lock()
	r.nextID++
	f.ID = fmt.Sprintf("doc%03d", r.nextID)
	r.facilities[ns] = append(r.facilities[ns], f)
	r.mu.Unlock()
	r.afterWrite(ns)
	return f.ID, nil
}

func (r *fakeRemote) UpdateFacility(_ context.Context, ns backend.Namespace, who backend.Identity, f asset.StorageFacility) error {
	if err := r.begin(who); err != nil {
		return err
	}
	r.mu.Lock()
	found := false
	for i := range r.facilities[ns] {
		if r.facilities[ns][i].ID == f.ID {
			r.facilities[ns][i] = f
			found = true
		}
	}
	r.mu.Unlock()
	if !found {
		return errors.NewNotFoundError("document not found", f.ID)
	}
	r.afterWrite(ns)
	return nil
}

func (r *fakeRemote) DeleteFacility(_ context.Context, ns backend.Namespace, who backend.Identity, id string) error {
	if err := r.begin(who); err != nil {
		return err
	}
	r.mu.Lock()
	kept := r.facilities[ns][:0]
	for _, f := range r.facilities[ns] {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	r.facilities[ns] = kept
	r.mu.Unlock()
	r.afterWrite(ns)
	return nil
}

func (r *fakeRemote) CreateVessel(_ context.Context, ns backend.Namespace, who backend.Identity, v asset.Vessel) (string, error) {
	if err := r.begin(who); err != nil {
		return "", err
	}
	r.mu.Lock()
	r.nextID++
	v.ID = fmt.Sprintf("doc%03d", r.nextID)
	r.vessels[ns] = append(r.vessels[ns], v)
	r.mu.Unlock()
	r.afterWrite(ns)
	return v.ID, nil
}

func (r *fakeRemote) UpdateVessel(_ context.Context, ns backend.Namespace, who backend.Identity, v asset.Vessel) error {
	if err := r.begin(who); err != nil {
		return err
	}
	r.mu.Lock()
	found := false
	for i := range r.vessels[ns] {
		if r.vessels[ns][i].ID == v.ID {
			r.vessels[ns][i] = v
			found = true
		}
	}
	r.mu.Unlock()
	if !found {
		return errors.NewNotFoundError("document not found", v.ID)
	}
	r.afterWrite(ns)
	return nil
}

func (r *fakeRemote) DeleteVessel(_ context.Context, ns backend.Namespace, who backend.Identity, id string) error {
	if err := r.begin(who); err != nil {
		return err
	}
	r.mu.Lock()
	kept := r.vessels[ns][:0]
	for _, v := range r.vessels[ns] {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	r.vessels[ns] = kept
	r.mu.Unlock()
	r.afterWrite(ns)
	return nil
}

func (r *fakeRemote) SelfTest(context.Context, backend.Namespace, backend.Identity) (time.Duration, error) {
	return 3 * time.Millisecond, nil
}

func (r *fakeRemote) facilitiesIn(ns backend.Namespace) []asset.StorageFacility {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]asset.StorageFacility{}, r.facilities[ns]...)
}

func (r *fakeRemote) writerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.writers...)
}

// fakeSessions mimics the session monitor: Start restores asynchronously,
// SignIn and SignOut report on the caller's goroutine.
type fakeSessions struct {
	mu        sync.Mutex
	persisted *backend.Identity
	next      backend.Identity
	report    func(*backend.Identity)
	starts    int
	signInErr error
	wg        sync.WaitGroup
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{next: backend.Identity{ID: "user-1", Email: "ops@harbor.test"}}
}

func (s *fakeSessions) Start(_ context.Context, report func(*backend.Identity)) {
	s.mu.Lock()
	s.report = report
	s.starts++
	start := s.starts
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.report == nil || s.starts != start {
			return
		}
		s.report(copyIdentity(s.persisted))
	}()
}

func (s *fakeSessions) SignIn(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.signInErr != nil {
		return s.signInErr
	}
	who := s.next
	s.persisted = &who
	if s.report != nil {
		s.report(copyIdentity(s.persisted))
	}
	return nil
}

func (s *fakeSessions) SignOut(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persisted = nil
	if s.report != nil {
		s.report(nil)
	}
	return nil
}

func (s *fakeSessions) Stop() {
	s.mu.Lock()
	s.report = nil
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *fakeSessions) startCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

func copyIdentity(who *backend.Identity) *backend.Identity {
	if who == nil {
		return nil
	}
	cp := *who
	return &cp
}

type fakeConnector struct {
	mu       sync.Mutex
	remote   *fakeRemote
	sessions *fakeSessions
	err      error
	connects []backend.Config
	closes   int
}

func (f *fakeConnector) Connect(_ context.Context, cfg backend.Config) (*Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, cfg)
	if f.err != nil {
		return nil, f.err
	}
	return &Backend{
		Records:  f.remote,
		Sessions: f.sessions,
		Close: func() error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.closes++
			return nil
		},
	}, nil
}

func (f *fakeConnector) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.connects)
}

func (f *fakeConnector) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

type countingMetrics struct {
	mu          sync.Mutex
	transitions []string
	applied     map[asset.Kind]int
	discarded   map[asset.Kind]int
	writes      map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		applied:   make(map[asset.Kind]int),
		discarded: make(map[asset.Kind]int),
		writes:    make(map[string]int),
	}
}

func (m *countingMetrics) RegimeChanged(from, to Regime) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, from.String()+"->"+to.String())
}

func (m *countingMetrics) SnapshotApplied(kind asset.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied[kind]++
}

func (m *countingMetrics) SnapshotDiscarded(kind asset.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discarded[kind]++
}

func (m *countingMetrics) RemoteWrite(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.writes[op+"/"+result]++
}

func (m *countingMetrics) discardedCount(kind asset.Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.discarded[kind]
}

func (m *countingMetrics) transitionLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.transitions...)
}

// stepClock advances one second per reading.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}
