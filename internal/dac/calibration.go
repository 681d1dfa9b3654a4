package dac

import (
	"context"
	"fmt"

	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/KevinKickass/OpenDACCore/internal/types"
	"github.com/ansel1/merry"
	"go.uber.org/zap"
)

// CalibrationLoader reads a channel's calibration topic on every call. Records
// are never cached, so edits to a topic apply to the next command.
type CalibrationLoader struct {
	store     host.TopicReader
	notifier  host.UserNotifier
	validator *Validator
	logger    *zap.Logger
}

func NewCalibrationLoader(store host.TopicReader, notifier host.UserNotifier, logger *zap.Logger) (*CalibrationLoader, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	return &CalibrationLoader{
		store:     store,
		notifier:  notifier,
		validator: validator,
		logger:    logger,
	}, nil
}

// TopicName returns the topic holding the calibration of channel.
func TopicName(channel string) string {
	return channel + ".json"
}

func (l *CalibrationLoader) Load(ctx context.Context, channel string) (*types.ChannelCalibration, error) {
	topic := TopicName(channel)

	content, err := l.store.ReadTopic(ctx, topic)
	if err != nil {
		return nil, merry.Appendf(merry.Here(ErrStorageRead), "topic %s: %v", topic, err)
	}

	cal, err := l.validator.ParseCalibration([]byte(content))
	if err != nil {
		l.notifyRaw(ctx, topic, content)
		parseErr := merry.Appendf(merry.Here(ErrCalibrationParse), "topic %s: %v", topic, err)
		return nil, merry.WithUserMessage(parseErr,
			fmt.Sprintf("Error : Failed to load channel specs.\n%s\n%v", content, err))
	}

	return cal, nil
}

// notifyRaw forwards unparsable content to the user. Delivery is best effort.
func (l *CalibrationLoader) notifyRaw(ctx context.Context, topic, content string) {
	if l.notifier == nil {
		return
	}
	if err := l.notifier.SendMessageToUser(ctx, content); err != nil {
		l.logger.Warn("Failed to notify user about calibration content",
			zap.String("topic", topic),
			zap.Error(err))
	}
}
