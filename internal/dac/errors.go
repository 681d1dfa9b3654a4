package dac

import "github.com/ansel1/merry"

// User-facing failures of the command pipeline. Each carries the message that
// is returned to the caller in place of a command.
var (
	ErrMissingArgument        = merry.New("missing argument actor_channel_selected").WithUserMessage("Error - There is problem in your 'actor_channel_selected', you probably forgot it.")
	ErrStorageRead            = merry.New("failed to read channel topic").WithUserMessage("Error - Failed to read the file.")
	ErrCalibrationParse       = merry.New("failed to parse channel calibration").WithUserMessage("Error : Failed to load channel specs.")
	ErrInvalidValueParameters = merry.New("invalid value parameters").WithUserMessage("Error - There is problem in your value linked function parameters.")
	ErrInvalidChannelIndex    = merry.New("invalid board channel index").WithUserMessage("Error - Invalid board channel index. Valid is [A-H].")
	ErrParameterDecode        = merry.New("undecodable pass-through parameters").WithUserMessage("Error - There is problem in your function parameters, they could not be decoded.")

	// ErrInternalHandoff means the calibration loader produced neither a
	// record nor an error.
	ErrInternalHandoff = merry.New("calibration handoff failed").WithUserMessage("Error : Failed to load channel specs.")
)

// userMessage returns the caller-facing text of err.
func userMessage(err error) string {
	if msg := merry.UserMessage(err); msg != "" {
		return msg
	}
	return "Error : " + err.Error()
}
