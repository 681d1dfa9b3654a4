package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterValue_Accessors(t *testing.T) {
	v := U32(3)
	got, err := v.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), got)

	_, err = v.U64()
	assert.True(t, errors.Is(err, ErrWrongVariant))
	_, err = v.F64()
	assert.True(t, errors.Is(err, ErrWrongVariant))
	_, err = Text("A").Bool()
	assert.True(t, errors.Is(err, ErrWrongVariant))
	_, err = Bool(true).Text()
	assert.True(t, errors.Is(err, ErrWrongVariant))
}

func TestParameterValue_Decode(t *testing.T) {
	tests := []struct {
		in   string
		want ParameterValue
	}{
		{`{"String": "ch1"}`, Text("ch1")},
		{`{"u64": 18446744073709551615}`, U64(18446744073709551615)},
		{`{"u32": 4294967295}`, U32(4294967295)},
		{`{"f64": 2.5}`, F64(2.5)},
		{`{"f64": 3}`, F64(3)},
		{`{"bool": false}`, Bool(false)},
	}

	for _, tt := range tests {
		var got ParameterValue
		require.NoError(t, json.Unmarshal([]byte(tt.in), &got), tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParameterValue_DecodeRejects(t *testing.T) {
	for _, in := range []string{
		`2.5`,
		`{}`,
		`{"u64": 1, "f64": 1}`,
		`{"i64": 1}`,
		`{"u64": -1}`,
		`{"u64": 1.5}`,
		`{"u32": 4294967296}`,
		`{"String": 5}`,
		`{"bool": "true"}`,
	} {
		var got ParameterValue
		assert.Error(t, json.Unmarshal([]byte(in), &got), in)
	}
}

func TestParameterMap_EncodesSorted(t *testing.T) {
	m := NewParameterMap()
	m.Set("value", U32(32768))
	m.Set("tx_enable", Bool(true))
	m.Set("command", U32(3))
	m.Set("label", Text("A"))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"command":{"u32":3},"label":{"String":"A"},"tx_enable":{"bool":true},"value":{"u32":32768}}`, string(data))
	assert.Equal(t, []string{"command", "label", "tx_enable", "value"}, m.Keys())
}

func TestParameterMap_SetOverwrites(t *testing.T) {
	var m ParameterMap
	m.Set("tx_enable", Bool(true))
	m.Set("tx_enable", Bool(false))

	assert.Equal(t, 1, m.Len())
	v, ok := m.Get("tx_enable")
	require.True(t, ok)
	b, err := v.Bool()
	require.NoError(t, err)
	assert.False(t, b)
}

func TestParameterMap_CloneIsIndependent(t *testing.T) {
	m := NewParameterMap()
	m.Set("a", U64(1))

	c := m.Clone()
	c.Set("a", U64(2))
	c.Set("b", U64(3))

	v, _ := m.Get("a")
	n, _ := v.U64()
	assert.Equal(t, uint64(1), n)
	assert.Equal(t, 1, m.Len())
}

func TestParameterMap_Merge(t *testing.T) {
	base := NewParameterMap()
	base.Set("a", U64(1))
	base.Set("b", U64(2))

	over := NewParameterMap()
	over.Set("b", Text("x"))

	base.Merge(over)
	v, _ := base.Get("b")
	assert.Equal(t, Text("x"), v)
	assert.Equal(t, 2, base.Len())
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{
		"actor_name": "slow_dac",
		"arguments": {"actor_channel_selected": {"String": "ch1"}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "slow_dac", req.ActorName)
	assert.Equal(t, 1, req.Arguments.Len())
	assert.Equal(t, 0, req.Parameters.Len())

	req, err = ParseRequest([]byte(`{"arguments": {"x": 1}}`))
	require.NoError(t, err)
	assert.Equal(t, 0, req.Arguments.Len())
	assert.Error(t, req.Arguments.Err())

	req, err = ParseRequest([]byte(`not json`))
	assert.Error(t, err)
	require.NotNil(t, req)
	assert.Equal(t, 0, req.Parameters.Len())
}

func TestParseRequest_FieldsDecodeIndependently(t *testing.T) {
	req, err := ParseRequest([]byte(`{
		"actor_name": "slow_dac",
		"arguments": [],
		"parameters": {"value": {"u32": 7}}
	}`))
	require.Error(t, err)
	assert.Equal(t, "slow_dac", req.ActorName)
	assert.Error(t, req.Arguments.Err())
	require.NoError(t, req.Parameters.Err())
	v, ok := req.Parameters.Get("value")
	require.True(t, ok)
	assert.Equal(t, U32(7), v)

	req, err = ParseRequest([]byte(`{"actor_name": 5, "parameters": {"value": {"u32": 7}}}`))
	require.Error(t, err)
	assert.Empty(t, req.ActorName)
	assert.Equal(t, 1, req.Parameters.Len())
}

func TestParameterMap_KeepsUndecodedEntries(t *testing.T) {
	var m ParameterMap
	require.NoError(t, json.Unmarshal([]byte(`{"value": {"u32": 7}, "x": null, "y": {"i32": 1}}`), &m))

	assert.Equal(t, []string{"value"}, m.Keys())
	assert.Equal(t, []string{"x", "y"}, m.Undecoded())
	_, ok := m.Get("y")
	assert.False(t, ok)

	err := m.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter x")
	assert.Contains(t, err.Error(), "parameter y")

	data, err := json.Marshal(m.Clone())
	require.NoError(t, err)
	assert.Equal(t, `{"value":{"u32":7},"x":null,"y":{"i32":1}}`, string(data))

	m.Set("y", Bool(true))
	assert.Equal(t, []string{"x"}, m.Undecoded())

	assert.Error(t, json.Unmarshal([]byte(`[1]`), &m))
}

func TestResult_JSON(t *testing.T) {
	params := NewParameterMap()
	params.Set("tx_enable", Bool(true))
	res := NewCommandResult(params, FunctionRequest{ActorName: "slow_dac", Function: "tx_disable"})

	data, err := res.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"parameters": {"tx_enable": {"bool": true}},
		"followups": [{"actor_name": "slow_dac", "function": "tx_disable", "parameters": {}}]
	}`, string(data))

	data, err = NewMessageResult("Error - Failed to read the file.").ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"message": "Error - Failed to read the file."}`, string(data))

	parsed, err := ParseResult(data)
	require.NoError(t, err)
	assert.True(t, parsed.IsMessage())
}
