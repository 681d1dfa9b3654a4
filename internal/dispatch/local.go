package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/KevinKickass/OpenDACCore/internal/types"
	"go.uber.org/zap"
)

var (
	ErrUnknownActor   = errors.New("unknown actor")
	ErrFunctionFailed = errors.New("actor function failed")
)

// TxState tracks whether an actor's transmitter is enabled.
type TxState string

const (
	TxIdle  TxState = "idle"
	TxArmed TxState = "armed"
)

const maxFollowupDepth = 8

// Caller runs one named function of an actor against a JSON envelope.
type Caller interface {
	Call(ctx context.Context, function string, input []byte) []byte
}

// Observer is told about every parameter set the dispatcher applies.
type Observer interface {
	ParametersApplied(actor string, params types.ParameterMap, txState string)
}

// ActorSnapshot is the current view of a registered actor.
type ActorSnapshot struct {
	Actor      string             `json:"actor"`
	Parameters types.ParameterMap `json:"parameters"`
	TxState    TxState            `json:"tx_state"`
}

type actorEntry struct {
	caller Caller
	params types.ParameterMap
	state  TxState
	mu     sync.Mutex
}

// LocalDispatcher keeps actor parameters in memory and runs follow-ups in
// process.
type LocalDispatcher struct {
	actors   map[string]*actorEntry
	journal  host.TopicStore
	observer Observer
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewLocalDispatcher creates a dispatcher. A nil journal disables journaling.
func NewLocalDispatcher(journal host.TopicStore, logger *zap.Logger) *LocalDispatcher {
	return &LocalDispatcher{
		actors:  make(map[string]*actorEntry),
		journal: journal,
		logger:  logger,
	}
}

func (d *LocalDispatcher) SetObserver(observer Observer) {
	d.observer = observer
}

// Register adds an actor. Registering a name twice replaces the caller and
// keeps the parameters.
func (d *LocalDispatcher) Register(name string, caller Caller) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if entry, ok := d.actors[name]; ok {
		entry.caller = caller
		return
	}
	d.actors[name] = &actorEntry{
		caller: caller,
		params: types.NewParameterMap(),
		state:  TxIdle,
	}

	d.logger.Info("Actor registered", zap.String("actor", name))
}

func (d *LocalDispatcher) lookup(name string) (*actorEntry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry, ok := d.actors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActor, name)
	}
	return entry, nil
}

// Snapshot returns the current parameters and tx state of an actor.
func (d *LocalDispatcher) Snapshot(name string) (ActorSnapshot, bool) {
	entry, err := d.lookup(name)
	if err != nil {
		return ActorSnapshot{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return ActorSnapshot{
		Actor:      name,
		Parameters: entry.params.Clone(),
		TxState:    entry.state,
	}, true
}

func (d *LocalDispatcher) UpdateParameters(ctx context.Context, actorName string, params types.ParameterMap) error {
	entry, err := d.lookup(actorName)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	entry.params = params.Clone()
	entry.state = txStateOf(params)
	applied, state := entry.params.Clone(), entry.state
	entry.mu.Unlock()

	d.logger.Debug("Parameters updated",
		zap.String("actor", actorName),
		zap.String("tx_state", string(state)),
		zap.Int("parameters", applied.Len()))

	d.writeJournal(ctx, actorName, applied, state)
	if d.observer != nil {
		d.observer.ParametersApplied(actorName, applied, string(state))
	}
	return nil
}

func (d *LocalDispatcher) FunctionExecute(ctx context.Context, req types.FunctionRequest) error {
	return d.execute(ctx, req, 0)
}

func (d *LocalDispatcher) execute(ctx context.Context, req types.FunctionRequest, depth int) error {
	if depth >= maxFollowupDepth {
		return fmt.Errorf("follow-up chain deeper than %d at %s.%s", maxFollowupDepth, req.ActorName, req.Function)
	}

	entry, err := d.lookup(req.ActorName)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	params := entry.params.Clone()
	caller := entry.caller
	entry.mu.Unlock()
	params.Merge(req.Parameters)

	input, err := (&types.Request{
		ActorName:  req.ActorName,
		Arguments:  types.NewParameterMap(),
		Parameters: params,
	}).ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	res, err := types.ParseResult(caller.Call(ctx, req.Function, input))
	if err != nil {
		return fmt.Errorf("failed to decode result of %s.%s: %w", req.ActorName, req.Function, err)
	}
	if res.IsMessage() {
		return fmt.Errorf("%w: %s.%s: %s", ErrFunctionFailed, req.ActorName, req.Function, res.Message)
	}

	if err := d.UpdateParameters(ctx, req.ActorName, *res.Parameters); err != nil {
		return err
	}

	for _, followup := range res.Followups {
		if followup.ActorName == "" {
			followup.ActorName = req.ActorName
		}
		if err := d.execute(ctx, followup, depth+1); err != nil {
			return err
		}
	}
	return nil
}

type journalEntry struct {
	Time       time.Time          `json:"time"`
	RequestID  string             `json:"request_id,omitempty"`
	Parameters types.ParameterMap `json:"parameters"`
	TxState    TxState            `json:"tx_state"`
}

// JournalTopic is the topic an actor's applied parameters are appended to.
func JournalTopic(actorName string) string {
	return actorName + ".journal"
}

func (d *LocalDispatcher) writeJournal(ctx context.Context, actorName string, params types.ParameterMap, state TxState) {
	if d.journal == nil {
		return
	}

	line, err := json.Marshal(journalEntry{
		Time:       time.Now().UTC(),
		RequestID:  RequestID(ctx),
		Parameters: params,
		TxState:    state,
	})
	if err != nil {
		d.logger.Warn("Failed to encode journal entry", zap.String("actor", actorName), zap.Error(err))
		return
	}

	if err := d.journal.WriteAppendTopic(ctx, JournalTopic(actorName), string(line)+"\n"); err != nil {
		d.logger.Warn("Failed to write journal entry", zap.String("actor", actorName), zap.Error(err))
	}
}

func txStateOf(params types.ParameterMap) TxState {
	if p, ok := params.Get("tx_enable"); ok {
		if enabled, err := p.Bool(); err == nil && enabled {
			return TxArmed
		}
	}
	return TxIdle
}
