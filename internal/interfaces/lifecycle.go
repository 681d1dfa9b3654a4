package interfaces

import (
	"context"

	"github.com/KevinKickass/OpenDACCore/internal/config"
	"github.com/KevinKickass/OpenDACCore/internal/dispatch"
	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/KevinKickass/OpenDACCore/internal/types"
)

// SystemStatus represents the current system state
type SystemStatus struct {
	State           string   `json:"state"`
	Accepting       bool     `json:"accepting"`
	Actors          []string `json:"actors"`
	TopicBackend    string   `json:"topic_backend"`
	DispatchBackend string   `json:"dispatch_backend"`
}

// ResultApplier hands actor results over to the dispatch layer.
type ResultApplier interface {
	Apply(ctx context.Context, actor string, res *types.Result) error
}

// ActorInspector exposes the parameters the host currently holds for an actor.
type ActorInspector interface {
	Snapshot(name string) (dispatch.ActorSnapshot, bool)
}

type LifecycleManager interface {
	Config() *config.Config
	Topics() host.TopicStore
	Actor(name string) (dispatch.Caller, bool)
	Runner() ResultApplier
	// Inspector is nil when actor state lives outside this process.
	Inspector() ActorInspector
	GetCurrentStatus() SystemStatus
	Shutdown(ctx context.Context) error
}
