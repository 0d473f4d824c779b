package assets

import (
	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/domain/backend"
)

// Regime selects the authoritative store.
type Regime int

const (
	RegimeLocal Regime = iota
	RegimeShared
)

func (r Regime) String() string {
	if r == RegimeShared {
		return "shared"
	}
	return "local"
}

// Phase is the controller's progress within a regime.
type Phase int

const (
	// PhaseIdle: nothing pending. Local with or without a connected backend.
	PhaseIdle Phase = iota
	// PhaseConnecting: a backend descriptor is being connected.
	PhaseConnecting
	// PhaseAuthenticating: connected, waiting for the first session report.
	PhaseAuthenticating
	// PhaseSyncing: shared, waiting for the first snapshot of each collection.
	PhaseSyncing
	// PhaseLive: shared with both collections current.
	PhaseLive
)

var phaseNames = map[Phase]string{
	PhaseIdle:           "idle",
	PhaseConnecting:     "connecting",
	PhaseAuthenticating: "authenticating",
	PhaseSyncing:        "syncing",
	PhaseLive:           "live",
}

func (p Phase) String() string {
	return phaseNames[p]
}

// Settled reports a phase in which no transition is in flight.
func (p Phase) Settled() bool {
	return p == PhaseIdle || p == PhaseLive
}

// View is an immutable snapshot of what the presentation layer renders.
type View struct {
	Regime    Regime
	Phase     Phase
	Namespace backend.Namespace
	Identity  *backend.Identity
	Records   asset.RecordSet
	// Configured is true when a usable backend descriptor is present.
	Configured bool
	// ConfigReadOnly is true when the descriptor is injected by the deployment.
	ConfigReadOnly bool
	// LastError describes why the controller last fell back to local.
	LastError string
}
