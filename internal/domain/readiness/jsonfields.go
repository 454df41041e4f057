package readiness

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// object is a decoded JSON object. Known keys are taken out one by one;
// whatever remains is kept verbatim as passthrough data.
type object map[string]json.RawMessage

// decodeObject never fails: anything that is not a JSON object yields an
// empty object.
func decodeObject(raw []byte) object {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return object{}
	}

	var out object
	if err := json.Unmarshal(trimmed, &out); err != nil || out == nil {
		return object{}
	}
	return out
}

// value returns the raw value for key, treating JSON null as absent.
func (o object) value(key string) (json.RawMessage, bool) {
	raw, ok := o[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

// number takes key when it holds a JSON number or a numeric string.
// Unusable values stay in the object.
func (o object) number(key string) *float64 {
	raw, ok := o.value(key)
	if !ok {
		return nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		delete(o, key)
		return &n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			delete(o, key)
			return &parsed
		}
	}
	return nil
}

// truthy takes key and reports it with loose truthiness: true, non-zero
// numbers and non-empty strings count as set. The strings "false" and "0"
// read as false on purpose, so a form or shell that stringifies booleans
// cannot approve a review by accident.
func (o object) truthy(key string) *bool {
	raw, ok := o[key]
	if !ok {
		return nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	delete(o, key)

	var out bool
	switch v := value.(type) {
	case bool:
		out = v
	case float64:
		out = v != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		out = s != "" && s != "false" && s != "0"
	default:
		out = false
	}
	return &out
}

// boolean takes key only when it is a JSON bool.
func (o object) boolean(key string) *bool {
	raw, ok := o.value(key)
	if !ok {
		return nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil
	}
	delete(o, key)
	return &b
}

// stringList takes key when it is an array of strings.
func (o object) stringList(key string) []string {
	raw, ok := o.value(key)
	if !ok {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	delete(o, key)
	return list
}

func (o object) extra() map[string]json.RawMessage {
	if len(o) == 0 {
		return nil
	}
	return map[string]json.RawMessage(o)
}

// encoder collects known keys on top of passthrough extras. Known keys win.
type encoder map[string]any

func newEncoder(extra map[string]json.RawMessage) encoder {
	out := make(encoder, len(extra)+8)
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (e encoder) setNumber(key string, v *float64) {
	if v != nil {
		e[key] = *v
	}
}

func (e encoder) setBool(key string, v *bool) {
	if v != nil {
		e[key] = *v
	}
}

func (e encoder) marshal() ([]byte, error) {
	return json.Marshal(map[string]any(e))
}

func cloneRaw(in map[string]json.RawMessage) map[string]json.RawMessage {
	if in == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
