package dac

import (
	"math"

	"github.com/KevinKickass/OpenDACCore/internal/types"
	"github.com/ansel1/merry"
)

// codeSpan is the width of the 16-bit output code range.
const codeSpan = float64(math.MaxUint16)

// ScaleValue turns the value arguments of a request into an output code.
//
// A u64 raw_value is used as is, truncated to 32 bits. Otherwise voltage_value
// (u64 or f64) is mapped linearly from [min_voltage, max_voltage] onto
// [0, 65535] and rounded half away from zero. Voltages outside the calibrated
// range are not clamped.
func ScaleValue(args types.ParameterMap, cal types.ChannelCalibration) (uint32, error) {
	if p, ok := args.Get(ArgRawValue); ok {
		if raw, err := p.U64(); err == nil {
			return uint32(raw), nil
		}
	}

	p, ok := args.Get(ArgVoltageValue)
	if !ok {
		return 0, merry.Appendf(merry.Here(ErrInvalidValueParameters), "neither %s nor %s given", ArgRawValue, ArgVoltageValue)
	}

	var voltage float64
	switch p.Kind() {
	case types.KindU64:
		v, _ := p.U64()
		voltage = float64(v)
	case types.KindF64:
		voltage, _ = p.F64()
	default:
		return 0, merry.Appendf(merry.Here(ErrInvalidValueParameters), "%s has variant %s", ArgVoltageValue, p.Kind())
	}

	return VoltageToCode(voltage, cal), nil
}

// VoltageToCode applies round((v - min) * 65535 / (max - min)).
func VoltageToCode(voltage float64, cal types.ChannelCalibration) uint32 {
	scaled := (voltage - cal.MinVoltage) * codeSpan / cal.Span()
	return saturateU32(math.Round(scaled))
}

// saturateU32 converts like a saturating cast: NaN and negatives give 0,
// values above the u32 range give MaxUint32.
func saturateU32(v float64) uint32 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}
