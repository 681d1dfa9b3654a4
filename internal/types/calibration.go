package types

// ChannelCalibration is the stored operating range and wiring position of one
// analog output channel.
type ChannelCalibration struct {
	MaxVoltage    float64 `json:"max_voltage"`
	MinVoltage    float64 `json:"min_voltage"`
	PhysicalIndex string  `json:"physical_index"`
}

// Span returns max_voltage - min_voltage.
func (c ChannelCalibration) Span() float64 {
	return c.MaxVoltage - c.MinVoltage
}
