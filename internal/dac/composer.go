package dac

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/KevinKickass/OpenDACCore/internal/types"
	"github.com/ansel1/merry"
	"go.uber.org/zap"
)

// Actor function names
const (
	FunctionUpdate    = "update"
	FunctionTxDisable = "tx_disable"
)

// Request arguments
const (
	ArgChannelSelected = "actor_channel_selected"
	ArgRawValue        = "raw_value"
	ArgVoltageValue    = "voltage_value"
)

// Command parameters
const (
	ParamValue          = "value"
	ParamDACChannelCode = "dac_channel_code"
	ParamCommand        = "command"
	ParamTxEnable       = "tx_enable"
)

// CommandWriteValue is the board command code for "write value".
const CommandWriteValue uint32 = 3

// CalibrationSource yields the calibration of a channel.
type CalibrationSource interface {
	Load(ctx context.Context, channel string) (*types.ChannelCalibration, error)
}

// Actor turns "set DAC output" requests into board commands. It keeps no
// state between calls.
type Actor struct {
	calibrations CalibrationSource
	logger       *zap.Logger
}

// NewActor creates an actor reading calibrations from store.
func NewActor(store host.TopicReader, notifier host.UserNotifier, logger *zap.Logger) (*Actor, error) {
	loader, err := NewCalibrationLoader(store, notifier, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create calibration loader: %w", err)
	}

	return NewActorWithSource(loader, logger), nil
}

// NewActorWithSource creates an actor on top of an existing calibration source.
func NewActorWithSource(calibrations CalibrationSource, logger *zap.Logger) *Actor {
	return &Actor{
		calibrations: calibrations,
		logger:       logger,
	}
}

// Update is the JSON entry point of the update function. It always returns a
// well-formed result document.
func (a *Actor) Update(ctx context.Context, input []byte) []byte {
	req, err := types.ParseRequest(input)
	if err != nil {
		a.logger.Warn("Undecodable update request", zap.Error(err))
	}
	return a.encode(a.Compose(ctx, req))
}

// TxDisable is the JSON entry point of the tx_disable function. Parameters
// that do not decode are passed through as they came.
func (a *Actor) TxDisable(_ context.Context, input []byte) []byte {
	req, err := types.ParseRequest(input)
	if err != nil {
		a.logger.Warn("Undecodable tx_disable request", zap.Error(err))
	}
	return a.encode(types.NewCommandResult(TxDisable(req.Parameters)))
}

// Call runs the named function. Unknown names yield a message result.
func (a *Actor) Call(ctx context.Context, function string, input []byte) []byte {
	switch function {
	case FunctionUpdate:
		return a.Update(ctx, input)
	case FunctionTxDisable:
		return a.TxDisable(ctx, input)
	default:
		return a.encode(types.NewMessageResult(fmt.Sprintf("Error - Unknown function %q.", function)))
	}
}

// Compose builds the write-value command for req. Every failure is folded
// into a message result.
func (a *Actor) Compose(ctx context.Context, req *types.Request) *types.Result {
	params, err := a.compose(ctx, req)
	if err != nil {
		if merry.Is(err, ErrInternalHandoff) {
			a.logger.Error("Command composition failed",
				zap.String("actor", req.ActorName),
				zap.Error(err))
		} else {
			a.logger.Warn("Command rejected",
				zap.String("actor", req.ActorName),
				zap.Error(err))
		}
		return types.NewMessageResult(userMessage(err))
	}

	return types.NewCommandResult(params, types.FunctionRequest{
		ActorName:  req.ActorName,
		Function:   FunctionTxDisable,
		Parameters: types.NewParameterMap(),
	})
}

func (a *Actor) compose(ctx context.Context, req *types.Request) (types.ParameterMap, error) {
	channel, err := selectedChannel(req.Arguments)
	if err != nil {
		return types.ParameterMap{}, err
	}

	if err := req.Parameters.Err(); err != nil {
		return types.ParameterMap{}, merry.WithUserMessage(
			merry.Appendf(merry.Here(ErrParameterDecode), "%v", err),
			fmt.Sprintf("%s\n%v", merry.UserMessage(ErrParameterDecode), err))
	}

	cal, err := a.calibrations.Load(ctx, channel)
	if err != nil {
		return types.ParameterMap{}, err
	}
	if cal == nil {
		return types.ParameterMap{}, merry.WithUserMessage(
			merry.Appendf(merry.Here(ErrInternalHandoff), "channel %s", channel),
			fmt.Sprintf("Error : Failed to load channel specs.\nno calibration returned for channel %s", channel))
	}

	value, err := ScaleValue(req.Arguments, *cal)
	if err != nil {
		return types.ParameterMap{}, err
	}

	channelCode, err := ResolveChannelIndex(cal.PhysicalIndex)
	if err != nil {
		return types.ParameterMap{}, err
	}

	params := req.Parameters.Clone()
	params.Set(ParamValue, types.U32(value))
	params.Set(ParamDACChannelCode, types.U32(channelCode))
	params.Set(ParamCommand, types.U32(CommandWriteValue))
	params.Set(ParamTxEnable, types.Bool(true))

	a.logger.Info("Command composed",
		zap.String("actor", req.ActorName),
		zap.String("channel", channel),
		zap.String("physical_index", cal.PhysicalIndex),
		zap.Uint32("value", value),
		zap.Uint32("dac_channel_code", channelCode))

	return params, nil
}

func selectedChannel(args types.ParameterMap) (string, error) {
	p, ok := args.Get(ArgChannelSelected)
	if !ok {
		return "", merry.Here(ErrMissingArgument)
	}
	channel, err := p.Text()
	if err != nil {
		return "", merry.Appendf(merry.Here(ErrMissingArgument), "%v", err)
	}
	return channel, nil
}

// TxDisable returns a copy of params with tx_enable forced to false.
func TxDisable(params types.ParameterMap) types.ParameterMap {
	out := params.Clone()
	out.Set(ParamTxEnable, types.Bool(false))
	return out
}

func (a *Actor) encode(res *types.Result) []byte {
	data, err := res.ToJSON()
	if err != nil {
		a.logger.Error("Failed to encode result", zap.Error(err))
		data, _ = json.Marshal(types.NewMessageResult("Error : Failed to encode result.\n" + err.Error()))
	}
	return data
}
