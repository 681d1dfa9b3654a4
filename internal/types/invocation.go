package types

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Request is the envelope handed to an actor function by the host runtime.
type Request struct {
	ActorName  string       `json:"actor_name,omitempty"`
	Arguments  ParameterMap `json:"arguments"`
	Parameters ParameterMap `json:"parameters"`
}

// ParseRequest decodes an envelope. Absent maps decode as empty maps.
//
// The fields are decoded independently: the returned request is never nil and
// holds every field that could be decoded. A field that fails leaves its zero
// value behind, and a failed map also reports the failure through its Err.
func ParseRequest(data []byte) (*Request, error) {
	req := &Request{
		Arguments:  NewParameterMap(),
		Parameters: NewParameterMap(),
	}

	var envelope struct {
		ActorName  json.RawMessage `json:"actor_name"`
		Arguments  json.RawMessage `json:"arguments"`
		Parameters json.RawMessage `json:"parameters"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return req, fmt.Errorf("failed to decode request: %w", err)
	}

	var result *multierror.Error
	if len(envelope.ActorName) > 0 {
		if err := json.Unmarshal(envelope.ActorName, &req.ActorName); err != nil {
			result = multierror.Append(result, fmt.Errorf("actor_name: %w", err))
		}
	}

	var err error
	if req.Arguments, err = decodeSection("arguments", envelope.Arguments); err != nil {
		result = multierror.Append(result, err)
	}
	if req.Parameters, err = decodeSection("parameters", envelope.Parameters); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return req, fmt.Errorf("failed to decode request: %w", err)
	}
	return req, nil
}

func decodeSection(name string, raw json.RawMessage) (ParameterMap, error) {
	m := NewParameterMap()
	if len(raw) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		m = NewParameterMap()
		m.err = fmt.Errorf("%s: %w", name, err)
		return m, m.err
	}
	return m, nil
}

func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FunctionRequest asks the dispatch layer to run a named function of an actor.
type FunctionRequest struct {
	ActorName  string       `json:"actor_name"`
	Function   string       `json:"function"`
	Parameters ParameterMap `json:"parameters"`
}

// Result is what an actor function returns: either a command (Parameters plus
// ordered Followups) or a human-readable Message.
type Result struct {
	Parameters *ParameterMap     `json:"parameters,omitempty"`
	Followups  []FunctionRequest `json:"followups,omitempty"`
	Message    string            `json:"message,omitempty"`
}

func NewCommandResult(params ParameterMap, followups ...FunctionRequest) *Result {
	return &Result{
		Parameters: &params,
		Followups:  followups,
	}
}

func NewMessageResult(message string) *Result {
	return &Result{Message: message}
}

// IsMessage reports whether the result carries a message instead of a command.
func (r *Result) IsMessage() bool {
	return r.Parameters == nil
}

func ParseResult(data []byte) (*Result, error) {
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &res, nil
}

func (r *Result) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}
