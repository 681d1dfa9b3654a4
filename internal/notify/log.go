package notify

import (
	"context"

	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// LogNotifier writes user messages to the log. The CLI uses it where no
// operator is connected.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("user")}
}

func (n *LogNotifier) SendMessageToUser(_ context.Context, message string) error {
	n.logger.Warn("Message to user", zap.String("message", message))
	return nil
}

// Fanout delivers a message to every notifier and keeps going past failures.
type Fanout []host.UserNotifier

func (f Fanout) SendMessageToUser(ctx context.Context, message string) error {
	var result *multierror.Error
	for _, n := range f {
		if err := n.SendMessageToUser(ctx, message); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
