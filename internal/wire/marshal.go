// Package wire converts between the JSON-based representation exchanged with
// automation clients and the native encodings of reflected fields. Conversion
// is tag-dispatched over the closed Tag set; failures are structured
// INVALID_VALUE errors that embed the declared type and the expected shape.
package wire

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/scenewire/scenewire/internal/fault"
)

// Marshaller converts wire values to native field values and back. The
// zero value works for everything except object references, which need a
// Loader.
type Marshaller struct {
	Loader Loader
}

// FromWire converts a wire value into the native value for t. Clients that
// stringify nested JSON instead of sending it as an object are tolerated:
// a string payload that parses as JSON is unwrapped first.
func (m *Marshaller) FromWire(value any, t Type) (any, *fault.Error) {
	switch t.Tag {
	case TagString:
		return coerceString(value), nil
	case TagNumber:
		f, ok := coerceFloat(value)
		if !ok {
			return nil, m.invalid(value, t)
		}
		return f, nil
	case TagBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			if strings.EqualFold(v, "true") {
				return true, nil
			}
			if strings.EqualFold(v, "false") {
				return false, nil
			}
		}
		return nil, m.invalid(value, t)
	case TagEnum:
		name, ok := value.(string)
		if !ok {
			return nil, m.invalid(value, t)
		}
		if len(t.Enum) == 0 {
			return name, nil
		}
		for _, allowed := range t.Enum {
			if strings.EqualFold(name, allowed) {
				return allowed, nil
			}
		}
		return nil, m.invalid(value, t)
	case TagVector3:
		return m.fromWireVector3(value, t)
	case TagRotator:
		return m.fromWireRotator(value, t)
	case TagColor:
		return m.fromWireColor(value, t)
	case TagObjectRef:
		return m.fromWireObjectRef(value, t)
	case TagArray:
		return m.fromWireArray(value, t)
	default:
		return nil, m.invalid(value, t)
	}
}

func (m *Marshaller) fromWireVector3(value any, t Type) (any, *fault.Error) {
	value = unwrapJSONString(value)
	if xyz, ok := tripleFromWire(value, "x", "y", "z"); ok {
		return Vector3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
	}
	return nil, m.invalid(value, t)
}

func (m *Marshaller) fromWireRotator(value any, t Type) (any, *fault.Error) {
	value = unwrapJSONString(value)
	if pyr, ok := tripleFromWire(value, "pitch", "yaw", "roll"); ok {
		return Rotator{Pitch: pyr[0], Yaw: pyr[1], Roll: pyr[2]}, nil
	}
	return nil, m.invalid(value, t)
}

// tripleFromWire accepts the two wire shapes shared by vector3 and rotator:
// a three-element array, or an object keyed by the given names in any case.
func tripleFromWire(value any, keys ...string) ([3]float64, bool) {
	var out [3]float64
	switch v := value.(type) {
	case []any:
		if len(v) != 3 {
			return out, false
		}
		for i, elem := range v {
			f, ok := coerceFloat(elem)
			if !ok {
				return out, false
			}
			out[i] = f
		}
		return out, true
	case map[string]any:
		for i, key := range keys {
			raw, ok := lookupFold(v, key)
			if !ok {
				return out, false
			}
			f, ok := coerceFloat(raw)
			if !ok {
				return out, false
			}
			out[i] = f
		}
		return out, true
	}
	return out, false
}

func (m *Marshaller) fromWireColor(value any, t Type) (any, *fault.Error) {
	value = unwrapJSONString(value)
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, m.invalid(value, t)
	}
	c := Color{A: 255}
	for _, ch := range []struct {
		key string
		dst *uint8
	}{{"r", &c.R}, {"g", &c.G}, {"b", &c.B}, {"a", &c.A}} {
		raw, found := lookupFold(obj, ch.key)
		if !found {
			continue
		}
		f, ok := coerceFloat(raw)
		if !ok {
			return nil, m.invalid(value, t)
		}
		*ch.dst = clampChannel(f)
	}
	return c, nil
}

func clampChannel(f float64) uint8 {
	i := int(math.Round(f))
	if i < 0 {
		i = 0
	}
	if i > 255 {
		i = 255
	}
	return uint8(i)
}

func (m *Marshaller) fromWireObjectRef(value any, t Type) (any, *fault.Error) {
	path, ok := value.(string)
	if !ok {
		return nil, m.invalid(value, t)
	}
	path = strings.TrimSpace(path)
	if path == "" || strings.EqualFold(path, "None") {
		return ObjectRef{}, nil
	}
	var obj any
	if m.Loader != nil {
		obj = m.Loader.LoadObject(path)
	}
	if obj == nil {
		return nil, fault.New(fault.ReferenceNotFound, "no object found at %q", path).
			With("path", path)
	}
	return ObjectRef{Path: path, Object: obj}, nil
}

// fromWireArray marshals a whole array value element-wise. Element writes at
// an index go through FromWire with the element type directly; this shape is
// used when an entire array arrives on the wire (scene documents, reads).
func (m *Marshaller) fromWireArray(value any, t Type) (any, *fault.Error) {
	value = unwrapJSONString(value)
	elems, ok := value.([]any)
	if !ok || t.Elem == nil {
		return nil, m.invalid(value, t)
	}
	out := make([]any, len(elems))
	for i, elem := range elems {
		native, err := m.FromWire(elem, *t.Elem)
		if err != nil {
			return nil, err.With("index", i)
		}
		out[i] = native
	}
	return out, nil
}

// ToWire converts a native field value to its wire representation. Scalars
// round-trip unchanged; tuple types serialize to their native text form so
// read-backs show exactly what the graph stores.
func (m *Marshaller) ToWire(native any, t Type) any {
	switch t.Tag {
	case TagString, TagNumber, TagBool, TagEnum:
		return native
	case TagVector3:
		if v, ok := native.(Vector3); ok {
			return v.String()
		}
	case TagRotator:
		if v, ok := native.(Rotator); ok {
			return v.String()
		}
	case TagColor:
		if v, ok := native.(Color); ok {
			return v.String()
		}
	case TagObjectRef:
		if v, ok := native.(ObjectRef); ok {
			return v.String()
		}
	case TagArray:
		if t.Elem == nil {
			break
		}
		return m.sliceToWire(native, *t.Elem)
	}
	return stringify(native)
}

func (m *Marshaller) sliceToWire(native any, elem Type) any {
	switch v := native.(type) {
	case []float64:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = m.ToWire(e, elem)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = m.ToWire(e, elem)
		}
		return out
	case []bool:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = m.ToWire(e, elem)
		}
		return out
	case []Vector3:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = m.ToWire(e, elem)
		}
		return out
	case []Rotator:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = m.ToWire(e, elem)
		}
		return out
	case []Color:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = m.ToWire(e, elem)
		}
		return out
	case []ObjectRef:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = m.ToWire(e, elem)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = m.ToWire(e, elem)
		}
		return out
	}
	return stringify(native)
}

func (m *Marshaller) invalid(value any, t Type) *fault.Error {
	return fault.New(fault.InvalidValue, "cannot convert %v to %s: use %s", value, t, t.Shape()).
		With("type", t.String()).
		With("expected_shape", t.Shape())
}

// unwrapJSONString parses an over-escaped payload: a string whose content is
// itself a JSON object or array. Anything else passes through untouched.
func unwrapJSONString(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return value
	}
	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return value
	}
	return parsed
}

func lookupFold(obj map[string]any, key string) (any, bool) {
	if v, ok := obj[key]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func coerceFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func coerceString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return stringify(value)
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return ftoa(v)
	case int:
		return strconv.Itoa(v)
	case nil:
		return ""
	}
	b, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(b)
}
