package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/hashicorp/go-multierror"
)

// ErrWrongVariant is returned when a ParameterValue is read as a kind it does not hold.
var ErrWrongVariant = errors.New("parameter holds a different variant")

type Kind int

const (
	KindText Kind = iota
	KindU64
	KindU32
	KindF64
	KindBool
)

// Wire tags of the parameter encoding
const (
	tagText = "String"
	tagU64  = "u64"
	tagU32  = "u32"
	tagF64  = "f64"
	tagBool = "bool"
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return tagText
	case KindU64:
		return tagU64
	case KindU32:
		return tagU32
	case KindF64:
		return tagF64
	case KindBool:
		return tagBool
	default:
		return "unknown"
	}
}

// ParameterValue is a closed tagged value. The zero value is an empty text.
type ParameterValue struct {
	kind Kind
	text string
	u64  uint64
	f64  float64
	b    bool
}

func Text(v string) ParameterValue { return ParameterValue{kind: KindText, text: v} }
func U64(v uint64) ParameterValue { return ParameterValue{kind: KindU64, u64: v} }
func U32(v uint32) ParameterValue { return ParameterValue{kind: KindU32, u64: uint64(v)} }
func F64(v float64) ParameterValue { return ParameterValue{kind: KindF64, f64: v} }
func Bool(v bool) ParameterValue { return ParameterValue{kind: KindBool, b: v} }

func (p ParameterValue) Kind() Kind { return p.kind }

func (p ParameterValue) wrongVariant(want Kind) error {
	return fmt.Errorf("%w: want %s, have %s", ErrWrongVariant, want, p.kind)
}

func (p ParameterValue) Text() (string, error) {
	if p.kind != KindText {
		return "", p.wrongVariant(KindText)
	}
	return p.text, nil
}

func (p ParameterValue) U64() (uint64, error) {
	if p.kind != KindU64 {
		return 0, p.wrongVariant(KindU64)
	}
	return p.u64, nil
}

func (p ParameterValue) U32() (uint32, error) {
	if p.kind != KindU32 {
		return 0, p.wrongVariant(KindU32)
	}
	return uint32(p.u64), nil
}

func (p ParameterValue) F64() (float64, error) {
	if p.kind != KindF64 {
		return 0, p.wrongVariant(KindF64)
	}
	return p.f64, nil
}

func (p ParameterValue) Bool() (bool, error) {
	if p.kind != KindBool {
		return false, p.wrongVariant(KindBool)
	}
	return p.b, nil
}

func (p ParameterValue) String() string {
	switch p.kind {
	case KindText:
		return fmt.Sprintf("%s(%q)", tagText, p.text)
	case KindU64, KindU32:
		return fmt.Sprintf("%s(%d)", p.kind, p.u64)
	case KindF64:
		return fmt.Sprintf("%s(%g)", tagF64, p.f64)
	case KindBool:
		return fmt.Sprintf("%s(%t)", tagBool, p.b)
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the value as a single-key object named after its variant,
// e.g. {"u32": 3}.
func (p ParameterValue) MarshalJSON() ([]byte, error) {
	var payload any
	switch p.kind {
	case KindText:
		payload = p.text
	case KindU64, KindU32:
		payload = p.u64
	case KindF64:
		if math.IsNaN(p.f64) || math.IsInf(p.f64, 0) {
			return nil, fmt.Errorf("f64 parameter is not finite: %v", p.f64)
		}
		payload = p.f64
	case KindBool:
		payload = p.b
	default:
		return nil, fmt.Errorf("unknown parameter kind: %d", p.kind)
	}
	return json.Marshal(map[string]any{p.kind.String(): payload})
}

func (p *ParameterValue) UnmarshalJSON(b []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(b, &tagged); err != nil {
		return fmt.Errorf("parameter must be a tagged object: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("parameter must have exactly one variant tag, got %d", len(tagged))
	}

	for tag, raw := range tagged {
		switch tag {
		case tagText:
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("invalid %s payload: %w", tag, err)
			}
			*p = Text(v)
		case tagU64:
			v, err := decodeUnsigned(raw, 64)
			if err != nil {
				return fmt.Errorf("invalid %s payload: %w", tag, err)
			}
			*p = U64(v)
		case tagU32:
			v, err := decodeUnsigned(raw, 32)
			if err != nil {
				return fmt.Errorf("invalid %s payload: %w", tag, err)
			}
			*p = U32(uint32(v))
		case tagF64:
			var v float64
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("invalid %s payload: %w", tag, err)
			}
			*p = F64(v)
		case tagBool:
			var v bool
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("invalid %s payload: %w", tag, err)
			}
			*p = Bool(v)
		default:
			return fmt.Errorf("unknown parameter variant: %q", tag)
		}
	}
	return nil
}

// decodeUnsigned keeps integer precision by decoding through json.Number.
func decodeUnsigned(raw json.RawMessage, bits int) (uint64, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return 0, err
	}

	v, err := strconv.ParseUint(n.String(), 10, bits)
	if err != nil {
		return 0, fmt.Errorf("not a u%d integer: %s", bits, n)
	}
	return v, nil
}

// ParameterMap maps parameter names to values. Iteration through Keys is sorted.
//
// Entries that fail to decode are kept as raw JSON. They are invisible to Get
// and Keys, reported by Err, and encoded back unchanged.
type ParameterMap struct {
	values    map[string]ParameterValue
	undecoded map[string]undecodedEntry
	err       error
}

type undecodedEntry struct {
	raw json.RawMessage
	err error
}

func NewParameterMap() ParameterMap {
	return ParameterMap{values: make(map[string]ParameterValue)}
}

func (m ParameterMap) Get(name string) (ParameterValue, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Set inserts or overwrites a parameter.
func (m *ParameterMap) Set(name string, value ParameterValue) {
	if m.values == nil {
		m.values = make(map[string]ParameterValue)
	}
	delete(m.undecoded, name)
	m.values[name] = value
}

func (m ParameterMap) Len() int {
	return len(m.values)
}

func (m ParameterMap) Keys() []string {
	return sortedKeys(m.values)
}

// Undecoded lists the names of entries that could not be decoded.
func (m ParameterMap) Undecoded() []string {
	return sortedKeys(m.undecoded)
}

// Err reports every entry that could not be decoded, or the failure of the
// map as a whole.
func (m ParameterMap) Err() error {
	var result *multierror.Error
	if m.err != nil {
		result = multierror.Append(result, m.err)
	}
	for _, k := range m.Undecoded() {
		result = multierror.Append(result, fmt.Errorf("parameter %s: %w", k, m.undecoded[k].err))
	}
	return result.ErrorOrNil()
}

func (m ParameterMap) Clone() ParameterMap {
	clone := NewParameterMap()
	for k, v := range m.values {
		clone.values[k] = v
	}
	for k, e := range m.undecoded {
		clone.setUndecoded(k, e)
	}
	clone.err = m.err
	return clone
}

// Merge overwrites entries of m with every entry of other.
func (m *ParameterMap) Merge(other ParameterMap) {
	for k, v := range other.values {
		m.Set(k, v)
	}
	for k, e := range other.undecoded {
		delete(m.values, k)
		m.setUndecoded(k, e)
	}
}

func (m *ParameterMap) setUndecoded(name string, e undecodedEntry) {
	if m.undecoded == nil {
		m.undecoded = make(map[string]undecodedEntry)
	}
	m.undecoded[name] = e
}

func (m ParameterMap) MarshalJSON() ([]byte, error) {
	keys := append(m.Keys(), m.Undecoded()...)
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		var val []byte
		if e, ok := m.undecoded[k]; ok {
			val = e.raw
		} else if val, err = json.Marshal(m.values[k]); err != nil {
			return nil, fmt.Errorf("parameter %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON fails only when b is not an object. Bad entries are kept, see Err.
func (m *ParameterMap) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*m = NewParameterMap()
	for k, r := range raw {
		var v ParameterValue
		if err := v.UnmarshalJSON(r); err != nil {
			m.setUndecoded(k, undecodedEntry{raw: r, err: err})
			continue
		}
		m.values[k] = v
	}
	return nil
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
