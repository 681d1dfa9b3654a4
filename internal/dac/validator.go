package dac

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/KevinKickass/OpenDACCore/internal/types"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/channel-calibration-v1.json
var calibrationSchemaJSON string

type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource("channel-calibration-v1.json",
		strings.NewReader(calibrationSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("channel-calibration-v1.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

func (v *Validator) ValidateCalibration(data []byte) error {
	var record interface{}
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := v.schema.Validate(record); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}

// ParseCalibration validates data against the calibration schema and decodes it.
func (v *Validator) ParseCalibration(data []byte) (*types.ChannelCalibration, error) {
	if err := v.ValidateCalibration(data); err != nil {
		return nil, err
	}

	var cal types.ChannelCalibration
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calibration: %w", err)
	}

	return &cal, nil
}
