package system

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	grpcapi "github.com/KevinKickass/OpenDACCore/internal/api/grpc"
	"github.com/KevinKickass/OpenDACCore/internal/api/rest"
	"github.com/KevinKickass/OpenDACCore/internal/api/websocket"
	"github.com/KevinKickass/OpenDACCore/internal/config"
	"github.com/KevinKickass/OpenDACCore/internal/dac"
	"github.com/KevinKickass/OpenDACCore/internal/dispatch"
	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/KevinKickass/OpenDACCore/internal/interfaces"
	"github.com/KevinKickass/OpenDACCore/internal/notify"
	"github.com/KevinKickass/OpenDACCore/internal/storage"
	"github.com/KevinKickass/OpenDACCore/internal/topic"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type LifecycleManager struct {
	config *config.Config
	logger *zap.Logger

	topics      host.TopicStore
	closeTopics func() error
	hub         *websocket.Hub
	actor       *dac.Actor
	local       *dispatch.LocalDispatcher
	broker      *dispatch.Connection
	runner      *dispatch.Runner

	restServer *rest.Server
	grpcServer *grpc.Server
	stopHub    context.CancelFunc

	stateMu      sync.RWMutex
	currentState SystemState

	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

// OpenTopicStore opens the configured topic backend. The returned func
// releases it.
func OpenTopicStore(ctx context.Context, cfg *config.Config) (host.TopicStore, func() error, error) {
	switch cfg.Topics.Backend {
	case config.TopicBackendFile:
		store, err := topic.NewFileStore(cfg.Topics.SearchPaths)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil

	case config.TopicBackendSQLite:
		store, err := storage.OpenSQLiteStore(cfg.Topics.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.TopicBackendPostgres:
		client, err := storage.NewPostgresClient(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return client, func() error { client.Close(); return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown topics backend: %q", cfg.Topics.Backend)
	}
}

func NewLifecycleManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*LifecycleManager, error) {
	topics, closeTopics, err := OpenTopicStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open topic store: %w", err)
	}

	lm := &LifecycleManager{
		config:       cfg,
		logger:       logger,
		topics:       topics,
		closeTopics:  closeTopics,
		hub:          websocket.NewHub(logger.Named("ws")),
		currentState: StateInitializing,
		shutdownChan: make(chan struct{}),
	}

	notifier := notify.Fanout{notify.NewLogNotifier(logger), lm.hub}

	lm.actor, err = dac.NewActor(topics, notifier, logger.Named(cfg.Actor.Name))
	if err != nil {
		closeTopics()
		return nil, fmt.Errorf("failed to create actor: %w", err)
	}

	var dispatcher host.Dispatcher
	switch cfg.Dispatch.Backend {
	case config.DispatchBackendAMQP:
		lm.broker, err = dispatch.Dial(cfg.Dispatch.AMQPURL, cfg.Dispatch.Exchange)
		if err != nil {
			closeTopics()
			return nil, err
		}
		dispatcher = dispatch.NewAMQPDispatcher(lm.broker.Channel, cfg.Dispatch.Exchange, logger.Named("amqp"))

	default:
		var journal host.TopicStore
		if cfg.Dispatch.Journal {
			journal = topics
		}
		lm.local = dispatch.NewLocalDispatcher(journal, logger.Named("dispatch"))
		lm.local.SetObserver(lm.hub)
		lm.local.Register(cfg.Actor.Name, lm.actor)
		dispatcher = lm.local
	}

	lm.runner = dispatch.NewRunner(dispatcher, notifier, logger.Named("runner"))

	return lm, nil
}

// Start starts the entire system
func (lm *LifecycleManager) Start() error {
	lm.logger.Info("Starting OpenDACCore",
		zap.String("actor", lm.config.Actor.Name),
		zap.String("topics", lm.config.Topics.Backend),
		zap.String("dispatch", lm.config.Dispatch.Backend))

	hubCtx, cancel := context.WithCancel(context.Background())
	lm.stopHub = cancel
	go lm.hub.Run(hubCtx)

	if err := lm.startGRPCServer(); err != nil {
		lm.setError(fmt.Errorf("failed to start gRPC: %w", err))
		return err
	}

	if err := lm.startRESTServer(); err != nil {
		lm.setError(fmt.Errorf("failed to start REST API: %w", err))
		return err
	}

	lm.setState(StateRunning)

	lm.logger.Info("System started successfully",
		zap.Int("grpc_port", lm.config.Server.GRPCPort),
		zap.Int("http_port", lm.config.Server.HTTPPort))

	return nil
}

// Shutdown gracefully shuts down the system
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var shutdownErr error

	lm.shutdownOnce.Do(func() {
		lm.logger.Info("Shutting down system")

		lm.setState(StateStopping)
		shutdownErr = lm.gracefulShutdown(ctx)
		lm.setState(StateStopped)

		close(lm.shutdownChan)
	})

	return shutdownErr
}

// Done is closed once Shutdown has finished.
func (lm *LifecycleManager) Done() <-chan struct{} {
	return lm.shutdownChan
}

func (lm *LifecycleManager) gracefulShutdown(ctx context.Context) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var result *multierror.Error

	fail := func(err error) {
		mu.Lock()
		result = multierror.Append(result, err)
		mu.Unlock()
	}

	// 1. REST API Server graceful shutdown
	if lm.restServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := lm.restServer.Shutdown(shutdownCtx); err != nil {
				fail(fmt.Errorf("rest api shutdown failed: %w", err))
			}
		}()
	}

	// 2. gRPC Server graceful stop
	if lm.grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lm.logger.Info("Stopping gRPC server")
			lm.grpcServer.GracefulStop()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		lm.logger.Warn("Shutdown timeout, forcing stop")
		if lm.grpcServer != nil {
			lm.grpcServer.Stop()
		}
		fail(fmt.Errorf("shutdown timeout exceeded"))
	}

	// 3. Hub, broker and topic store once no request can reach them
	if lm.stopHub != nil {
		lm.stopHub()
	}
	if lm.broker != nil {
		if err := lm.broker.Close(); err != nil {
			fail(fmt.Errorf("broker close failed: %w", err))
		}
	}
	if err := lm.closeTopics(); err != nil {
		fail(fmt.Errorf("topic store close failed: %w", err))
	}

	if result.ErrorOrNil() == nil {
		lm.logger.Info("Graceful shutdown completed")
	}
	return result.ErrorOrNil()
}

func (lm *LifecycleManager) startGRPCServer() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", lm.config.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	svc := grpcapi.NewActorService(lm, lm.config.Actor.Name, lm.logger.Named("grpc"))
	lm.grpcServer = grpcapi.NewServer(svc, lm.logger.Named("grpc"))

	go func() {
		lm.logger.Info("gRPC server listening",
			zap.Int("port", lm.config.Server.GRPCPort),
			zap.String("services", grpcapi.ServiceName))
		if err := lm.grpcServer.Serve(lis); err != nil {
			lm.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()

	return nil
}

func (lm *LifecycleManager) startRESTServer() error {
	lm.restServer = rest.NewServer(lm, lm.logger.Named("http"), lm.hub)
	return lm.restServer.Start()
}

func (lm *LifecycleManager) setState(state SystemState) {
	lm.stateMu.Lock()
	defer lm.stateMu.Unlock()

	if err := ValidateTransition(lm.currentState, state); err != nil {
		lm.logger.Warn("Unexpected state transition", zap.Error(err))
	}
	lm.currentState = state
}

func (lm *LifecycleManager) setError(err error) {
	lm.logger.Error("System error", zap.Error(err))
	lm.setState(StateError)
}

// State returns the current lifecycle state.
func (lm *LifecycleManager) State() SystemState {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()
	return lm.currentState
}

// GetCurrentStatus returns current system status (Interface implementation)
func (lm *LifecycleManager) GetCurrentStatus() interfaces.SystemStatus {
	state := lm.State()
	return interfaces.SystemStatus{
		State:           state.String(),
		Accepting:       state.Accepting(),
		Actors:          []string{lm.config.Actor.Name},
		TopicBackend:    lm.config.Topics.Backend,
		DispatchBackend: lm.config.Dispatch.Backend,
	}
}

// Config returns the configuration
func (lm *LifecycleManager) Config() *config.Config {
	return lm.config
}

func (lm *LifecycleManager) Topics() host.TopicStore {
	return lm.topics
}

// Actor returns the actor served under name.
func (lm *LifecycleManager) Actor(name string) (dispatch.Caller, bool) {
	if name != lm.config.Actor.Name {
		return nil, false
	}
	return lm.actor, true
}

func (lm *LifecycleManager) Runner() interfaces.ResultApplier {
	return lm.runner
}

func (lm *LifecycleManager) Inspector() interfaces.ActorInspector {
	if lm.local == nil {
		return nil
	}
	return lm.local
}
