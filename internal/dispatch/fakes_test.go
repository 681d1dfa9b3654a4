package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/KevinKickass/OpenDACCore/internal/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

type memStore struct {
	mu     sync.Mutex
	topics map[string]string
}

func newMemStore() *memStore {
	return &memStore{topics: make(map[string]string)}
}

func (s *memStore) ReadTopic(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.topics[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", host.ErrTopicNotFound, name)
	}
	return content, nil
}

func (s *memStore) WriteTopic(_ context.Context, name, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[name] = text
	return nil
}

func (s *memStore) WriteAppendTopic(_ context.Context, name, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[name] += text
	return nil
}

func (s *memStore) lines(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Split(strings.TrimSuffix(s.topics[name], "\n"), "\n")
}

// recordingDispatcher logs every call in order.
type recordingDispatcher struct {
	calls []string
	err   error
}

func (d *recordingDispatcher) UpdateParameters(_ context.Context, actor string, params types.ParameterMap) error {
	d.calls = append(d.calls, fmt.Sprintf("update %s %d", actor, params.Len()))
	return d.err
}

func (d *recordingDispatcher) FunctionExecute(_ context.Context, req types.FunctionRequest) error {
	d.calls = append(d.calls, fmt.Sprintf("execute %s.%s", req.ActorName, req.Function))
	return d.err
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) SendMessageToUser(_ context.Context, msg string) error {
	n.messages = append(n.messages, msg)
	return nil
}

type recordingObserver struct {
	states []string
}

func (o *recordingObserver) ParametersApplied(_ string, _ types.ParameterMap, txState string) {
	o.states = append(o.states, txState)
}

// callerFunc adapts a function to Caller.
type callerFunc func(ctx context.Context, function string, input []byte) []byte

func (f callerFunc) Call(ctx context.Context, function string, input []byte) []byte {
	return f(ctx, function, input)
}

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	published []published
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}
