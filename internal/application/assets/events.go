package assets

import (
	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/domain/backend"
)

// event is anything applied by the controller goroutine. Callbacks from
// stores, the session monitor and callers are all converted to one of these.
type event interface {
	isEvent()
}

// configChanged carries a new descriptor, or nil when it was cleared.
type configChanged struct {
	cfg *backend.Config
}

// backendConnected and backendFailed answer the connect attempt they name.
type backendConnected struct {
	attempt uint64
	backend *Backend
}

type backendFailed struct {
	attempt uint64
	err     error
}

// identityChanged is a session report for the backend of attempt.
type identityChanged struct {
	attempt  uint64
	identity *backend.Identity
}

// facilitiesSnapshot and vesselsSnapshot are full collections delivered by
// the subscription opened under generation.
type facilitiesSnapshot struct {
	generation uint64
	items      []asset.StorageFacility
}

type vesselsSnapshot struct {
	generation uint64
	items      []asset.Vessel
}

type subscriptionOpened struct {
	generation uint64
	kind       asset.Kind
	sub        Subscription
}

type subscriptionFailed struct {
	generation uint64
	kind       asset.Kind
	err        error
}

// commandIssued is a gateway write waiting for its result.
type commandIssued struct {
	cmd *command
}

// backendRequested asks for the handles of the current backend, if any.
type backendRequested struct {
	reply chan backendHandle
}

type backendHandle struct {
	sessions SessionMonitor
	records  RemoteStore
	ns       backend.Namespace
	who      *backend.Identity
}

// barrier is answered once every event posted before it has been applied.
type barrier struct {
	done chan struct{}
}

func (configChanged) isEvent()      {}
func (backendConnected) isEvent()   {}
func (backendFailed) isEvent()      {}
func (identityChanged) isEvent()    {}
func (facilitiesSnapshot) isEvent() {}
func (vesselsSnapshot) isEvent()    {}
func (subscriptionOpened) isEvent() {}
func (subscriptionFailed) isEvent() {}
func (commandIssued) isEvent()      {}
func (backendRequested) isEvent()   {}
func (barrier) isEvent()            {}
