package dac

import (
	"context"
	"errors"

	"github.com/KevinKickass/OpenDACCore/internal/types"
)

type fakeStore struct {
	topics map[string]string
	err    error
	reads  []string
}

func (s *fakeStore) ReadTopic(_ context.Context, name string) (string, error) {
	s.reads = append(s.reads, name)
	if s.err != nil {
		return "", s.err
	}
	content, ok := s.topics[name]
	if !ok {
		return "", errors.New("no such topic")
	}
	return content, nil
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (n *fakeNotifier) SendMessageToUser(_ context.Context, message string) error {
	n.messages = append(n.messages, message)
	return n.err
}

type nilSource struct{}

func (nilSource) Load(context.Context, string) (*types.ChannelCalibration, error) {
	return nil, nil
}

func updateRequest(actor string, args map[string]types.ParameterValue) *types.Request {
	req := &types.Request{
		ActorName:  actor,
		Arguments:  types.NewParameterMap(),
		Parameters: types.NewParameterMap(),
	}
	for k, v := range args {
		req.Arguments.Set(k, v)
	}
	return req
}
