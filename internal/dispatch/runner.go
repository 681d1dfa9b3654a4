package dispatch

import (
	"context"
	"fmt"

	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/KevinKickass/OpenDACCore/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type requestIDKey struct{}

// WithRequestID tags ctx with a correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id of ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Runner hands an actor result over to the host: message results go to the
// user, command results update the actor and then trigger each follow-up in
// order.
type Runner struct {
	dispatcher host.Dispatcher
	notifier   host.UserNotifier
	logger     *zap.Logger
}

func NewRunner(dispatcher host.Dispatcher, notifier host.UserNotifier, logger *zap.Logger) *Runner {
	return &Runner{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

func (r *Runner) Apply(ctx context.Context, actor string, res *types.Result) error {
	if RequestID(ctx) == "" {
		ctx = WithRequestID(ctx, uuid.NewString())
	}
	logger := r.logger.With(
		zap.String("actor", actor),
		zap.String("request_id", RequestID(ctx)))

	if res.IsMessage() {
		logger.Info("Forwarding message to user", zap.String("message", res.Message))
		if err := r.notifier.SendMessageToUser(ctx, res.Message); err != nil {
			return fmt.Errorf("failed to send message to user: %w", err)
		}
		return nil
	}

	if err := r.dispatcher.UpdateParameters(ctx, actor, *res.Parameters); err != nil {
		return fmt.Errorf("failed to update parameters of %s: %w", actor, err)
	}

	for _, followup := range res.Followups {
		if followup.ActorName == "" {
			followup.ActorName = actor
		}
		logger.Debug("Executing follow-up",
			zap.String("target", followup.ActorName),
			zap.String("function", followup.Function))

		if err := r.dispatcher.FunctionExecute(ctx, followup); err != nil {
			return fmt.Errorf("follow-up %s.%s failed: %w", followup.ActorName, followup.Function, err)
		}
	}

	logger.Info("Result applied", zap.Int("followups", len(res.Followups)))
	return nil
}
