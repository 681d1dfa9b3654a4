package dac

import "github.com/ansel1/merry"

var channelCodes = map[string]uint32{
	"A": 0,
	"B": 1,
	"C": 2,
	"D": 3,
	"E": 4,
	"F": 5,
	"G": 6,
	"H": 7,
}

// ResolveChannelIndex maps a board position letter A-H to its channel code.
func ResolveChannelIndex(physicalIndex string) (uint32, error) {
	code, ok := channelCodes[physicalIndex]
	if !ok {
		return 0, merry.Appendf(merry.Here(ErrInvalidChannelIndex), "physical index %q", physicalIndex)
	}
	return code, nil
}
