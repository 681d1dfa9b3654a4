package grpc

import (
	"context"
	"time"

	"github.com/KevinKickass/OpenDACCore/internal/dispatch"
	"github.com/KevinKickass/OpenDACCore/internal/types"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ActorLookup resolves an actor by name.
type ActorLookup interface {
	Actor(name string) (dispatch.Caller, bool)
}

// ActorService runs the actor entry points for a remote host. It does not
// dispatch results; the caller owns that.
type ActorService struct {
	actors       ActorLookup
	defaultActor string
	logger       *zap.Logger
}

// NewActorService serves the actors known to lookup. Envelopes without an
// actor_name go to defaultActor.
func NewActorService(actors ActorLookup, defaultActor string, logger *zap.Logger) *ActorService {
	return &ActorService{
		actors:       actors,
		defaultActor: defaultActor,
		logger:       logger,
	}
}

func (s *ActorService) Update(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return s.call(ctx, "update", in)
}

func (s *ActorService) TxDisable(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return s.call(ctx, "tx_disable", in)
}

func (s *ActorService) call(ctx context.Context, function string, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	input := []byte(in.GetValue())

	name := s.defaultActor
	if req, _ := types.ParseRequest(input); req.ActorName != "" {
		name = req.ActorName
	}

	caller, ok := s.actors.Actor(name)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "unknown actor %q", name)
	}

	return wrapperspb.String(string(caller.Call(ctx, function, input))), nil
}

// LoggingInterceptor logs every unary call with its outcome.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		logger.Info("gRPC request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)))
		return resp, err
	}
}

// NewServer builds a gRPC server with the actor service registered.
func NewServer(svc *ActorService, logger *zap.Logger) *grpc.Server {
	server := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(logger)))
	RegisterActorServiceServer(server, svc)
	return server
}
