package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Args is the flat argument set a tool receives after normalization.
//
// The agent platform sends tool arguments in one of two shapes: directly at
// the top level of the body, or nested under an "args" key. Both resolve to
// the same Args; a non-empty top-level value wins over the wrapped one.
type Args map[string]any

// ParseArgs normalizes a raw request body into Args. An empty body is a
// valid empty argument set (some tools take no arguments).
func ParseArgs(body []byte) (Args, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Args{}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return NormalizeArgs(raw), nil
}

// NormalizeArgs flattens a decoded body, merging any "args" object into the
// top level. Top-level values take precedence unless absent or empty.
func NormalizeArgs(raw map[string]any) Args {
	out := make(Args, len(raw))

	if wrapped, ok := raw["args"].(map[string]any); ok {
		for k, v := range wrapped {
			out[k] = v
		}
	}

	for k, v := range raw {
		if k == "args" {
			continue
		}
		if isEmpty(v) {
			continue
		}
		out[k] = v
	}

	return out
}

// DecodeCall splits a dispatch payload into the target function name and
// its normalized arguments. The function name key itself never leaks into
// the argument set.
func DecodeCall(body []byte) (string, Args, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", nil, err
	}

	name, _ := raw["function"].(string)
	delete(raw, "function")
	return name, NormalizeArgs(raw), nil
}

// String returns the argument rendered as a string. Non-string scalars
// (numbers, booleans) are formatted; absent or null yields "".
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Require returns a MissingArgument error for the first required key that
// is absent, null or empty.
func (a Args) Require(keys ...string) *CallError {
	for _, key := range keys {
		if isEmpty(a[key]) {
			return &CallError{
				Code:    http.StatusBadRequest,
				Message: fmt.Sprintf("missing required argument: %s", key),
			}
		}
	}
	return nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}
