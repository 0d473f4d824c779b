package assets

import (
	"context"
	"time"

	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/domain/backend"
)

// LocalStore holds the single-device working copy. Load never fails: a
// missing or unreadable snapshot yields the sample dataset.
type LocalStore interface {
	Load(ctx context.Context) asset.RecordSet
	Save(ctx context.Context, records asset.RecordSet) error
}

// ConfigStore persists the backend descriptor on the device. Load returns nil
// when nothing usable is stored.
type ConfigStore interface {
	Load(ctx context.Context) *backend.Config
	Save(ctx context.Context, cfg backend.Config) error
	Clear(ctx context.Context) error
	// ReadOnly reports an injected descriptor that shadows the stored one.
	ReadOnly() bool
}

// Subscription is a live remote snapshot feed. Close stops delivery and
// returns once no further callback will run.
type Subscription interface {
	Close() error
}

// RemoteStore is the tenant-scoped shared document store. Watch callbacks
// receive the full ordered collection on every change.
type RemoteStore interface {
	WatchFacilities(ctx context.Context, ns backend.Namespace, who backend.Identity,
		onSnapshot func([]asset.StorageFacility), onError func(error)) (Subscription, error)
	WatchVessels(ctx context.Context, ns backend.Namespace, who backend.Identity,
		onSnapshot func([]asset.Vessel), onError func(error)) (Subscription, error)

	CreateFacility(ctx context.Context, ns backend.Namespace, who backend.Identity, f asset.StorageFacility) (string, error)
	UpdateFacility(ctx context.Context, ns backend.Namespace, who backend.Identity, f asset.StorageFacility) error
	DeleteFacility(ctx context.Context, ns backend.Namespace, who backend.Identity, id string) error

	CreateVessel(ctx context.Context, ns backend.Namespace, who backend.Identity, v asset.Vessel) (string, error)
	UpdateVessel(ctx context.Context, ns backend.Namespace, who backend.Identity, v asset.Vessel) error
	DeleteVessel(ctx context.Context, ns backend.Namespace, who backend.Identity, id string) error

	SelfTest(ctx context.Context, ns backend.Namespace, who backend.Identity) (time.Duration, error)
}

// SessionMonitor observes the identity provider. report is called with the
// restored identity (or nil) after Start and on every later change.
type SessionMonitor interface {
	Start(ctx context.Context, report func(*backend.Identity))
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	Stop()
}

// Backend is a connected remote endpoint.
type Backend struct {
	Records  RemoteStore
	Sessions SessionMonitor
	Close    func() error
}

// BackendConnector turns a descriptor into a connected backend.
type BackendConnector interface {
	Connect(ctx context.Context, cfg backend.Config) (*Backend, error)
}

// Metrics receives controller observations. A nil Metrics is replaced by a
// no-op recorder.
type Metrics interface {
	RegimeChanged(from, to Regime)
	SnapshotApplied(kind asset.Kind)
	SnapshotDiscarded(kind asset.Kind)
	RemoteWrite(op string, err error)
}

type noopMetrics struct{}

func (noopMetrics) RegimeChanged(Regime, Regime) {}
func (noopMetrics) SnapshotApplied(asset.Kind)   {}
func (noopMetrics) SnapshotDiscarded(asset.Kind) {}
func (noopMetrics) RemoteWrite(string, error)    {}
