package backend

import (
	"bytes"
	"encoding/json"
	"errors"
)

// envelope is the backend's loose {success, message, data|orders|...}
// response wrapper. The payload key differs between endpoints, so lookups
// walk a fallback chain instead of trusting one shape.
type envelope struct {
	success *bool
	message string
	fields  map[string]json.RawMessage
}

func parseEnvelope(data []byte) (*envelope, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &envelope{fields: map[string]json.RawMessage{}}, nil
	}

	// Some list endpoints answer with a bare array.
	if data[0] == '[' {
		return &envelope{fields: map[string]json.RawMessage{"data": json.RawMessage(data)}}, nil
	}
	if data[0] != '{' {
		return nil, errors.New("response is not a JSON object")
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	env := &envelope{fields: fields}
	if raw, ok := fields["success"]; ok {
		var b bool
		if json.Unmarshal(raw, &b) == nil {
			env.success = &b
		}
	}
	for _, key := range []string{"message", "error", "msg"} {
		var s string
		if raw, ok := fields[key]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
			env.message = s
			break
		}
	}
	return env, nil
}

func (e *envelope) messageOr(fallback string) string {
	if e.message != "" {
		return e.message
	}
	return fallback
}

// list resolves key, then data as an array, then data.key. Absent lists
// come back nil.
func (e *envelope) list(key string) json.RawMessage {
	if raw := e.fields[key]; isArray(raw) {
		return raw
	}
	data := e.fields["data"]
	if isArray(data) {
		return data
	}
	if nested := field(data, key); isArray(nested) {
		return nested
	}
	return nil
}

// object resolves key, then data.key, then data itself.
func (e *envelope) object(key string) json.RawMessage {
	if raw := e.fields[key]; isObject(raw) {
		return raw
	}
	data := e.fields["data"]
	if nested := field(data, key); isObject(nested) {
		return nested
	}
	if isObject(data) {
		return data
	}
	return nil
}

// str resolves a string at key or data.key.
func (e *envelope) str(key string) string {
	for _, raw := range []json.RawMessage{e.fields[key], field(e.fields["data"], key)} {
		var s string
		if raw != nil && json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

func field(obj json.RawMessage, key string) json.RawMessage {
	if !isObject(obj) {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(obj, &m); err != nil {
		return nil
	}
	return m[key]
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
