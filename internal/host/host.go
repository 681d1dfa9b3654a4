// Package host declares the services an actor function consumes from the
// runtime that invokes it.
package host

import (
	"context"
	"errors"

	"github.com/KevinKickass/OpenDACCore/internal/types"
)

// ErrTopicNotFound is returned by topic stores when a topic has never been written.
var ErrTopicNotFound = errors.New("topic not found")

type TopicReader interface {
	ReadTopic(ctx context.Context, name string) (string, error)
}

// TopicStore is the persistent key/value storage of named topics.
type TopicStore interface {
	TopicReader
	WriteTopic(ctx context.Context, name, text string) error
	WriteAppendTopic(ctx context.Context, name, text string) error
}

type UserNotifier interface {
	SendMessageToUser(ctx context.Context, message string) error
}

// Dispatcher hands composed commands over to the actor layer.
type Dispatcher interface {
	UpdateParameters(ctx context.Context, actorName string, params types.ParameterMap) error
	FunctionExecute(ctx context.Context, req types.FunctionRequest) error
}

// NotifierFunc adapts a function to UserNotifier.
type NotifierFunc func(ctx context.Context, message string) error

func (f NotifierFunc) SendMessageToUser(ctx context.Context, message string) error {
	return f(ctx, message)
}
