package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/KevinKickass/OpenDACCore/internal/dac"
	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/KevinKickass/OpenDACCore/internal/types"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Board describes the channels of one DAC board.
type Board struct {
	Name     string    `yaml:"board"`
	Channels []Channel `yaml:"channels"`
}

type Channel struct {
	Label         string  `yaml:"label"`
	PhysicalIndex string  `yaml:"physical_index"`
	MinVoltage    float64 `yaml:"min_voltage"`
	MaxVoltage    float64 `yaml:"max_voltage"`
}

func (c Channel) Calibration() types.ChannelCalibration {
	return types.ChannelCalibration{
		MaxVoltage:    c.MaxVoltage,
		MinVoltage:    c.MinVoltage,
		PhysicalIndex: c.PhysicalIndex,
	}
}

func Parse(data []byte) (*Board, error) {
	var b Board
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse board description: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

func Load(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board description %s: %w", path, err)
	}
	return Parse(data)
}

// Validate reports every broken channel at once.
func (b *Board) Validate() error {
	var result *multierror.Error

	if len(b.Channels) == 0 {
		result = multierror.Append(result, errors.New("board has no channels"))
	}

	seen := make(map[string]bool, len(b.Channels))
	for i, ch := range b.Channels {
		if ch.Label == "" {
			result = multierror.Append(result, fmt.Errorf("channel %d: empty label", i))
		} else if seen[ch.Label] {
			result = multierror.Append(result, fmt.Errorf("channel %d: duplicate label %q", i, ch.Label))
		}
		seen[ch.Label] = true

		if ch.MaxVoltage <= ch.MinVoltage {
			result = multierror.Append(result, fmt.Errorf("channel %q: max_voltage %v must exceed min_voltage %v",
				ch.Label, ch.MaxVoltage, ch.MinVoltage))
		}
		if _, err := dac.ResolveChannelIndex(ch.PhysicalIndex); err != nil {
			result = multierror.Append(result, fmt.Errorf("channel %q: physical_index %q is not A-H", ch.Label, ch.PhysicalIndex))
		}
	}

	return result.ErrorOrNil()
}

// Seed writes one calibration topic per channel. Every document is checked
// against the calibration schema before it is written.
func Seed(ctx context.Context, b *Board, store host.TopicStore, logger *zap.Logger) error {
	validator, err := dac.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to create validator: %w", err)
	}

	for _, ch := range b.Channels {
		data, err := json.MarshalIndent(ch.Calibration(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode calibration of %s: %w", ch.Label, err)
		}
		if err := validator.ValidateCalibration(data); err != nil {
			return fmt.Errorf("calibration of %s rejected: %w", ch.Label, err)
		}

		topic := dac.TopicName(ch.Label)
		if err := store.WriteTopic(ctx, topic, string(data)); err != nil {
			return fmt.Errorf("failed to write %s: %w", topic, err)
		}

		logger.Info("Calibration seeded",
			zap.String("board", b.Name),
			zap.String("topic", topic),
			zap.String("physical_index", ch.PhysicalIndex))
	}

	return nil
}
