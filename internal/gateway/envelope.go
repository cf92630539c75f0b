package gateway

import (
	"encoding/json"
	"net/http"
)

// CallError is a domain-level failure rendered into the response envelope.
// It never surfaces as a non-200 HTTP status: the calling agent branches on
// the envelope, not the transport.
type CallError struct {
	Code    int
	Message string
}

func (e *CallError) Error() string {
	return e.Message
}

type envelope struct {
	OK    bool           `json:"ok"`
	Data  map[string]any `json:"data,omitempty"`
	Error *envelopeError `json:"error,omitempty"`
}

type envelopeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// EncodeResult renders a tool outcome as envelope JSON. Used by the HTTP
// binding and the NATS call channel so both speak the same wire shape.
func EncodeResult(data map[string]any, callErr *CallError) []byte {
	env := envelope{OK: true, Data: data}
	if callErr != nil {
		env = envelope{
			OK:    false,
			Error: &envelopeError{Code: callErr.Code, Message: callErr.Message},
		}
	}

	out, err := json.Marshal(env)
	if err != nil {
		return []byte(`{"ok":false,"error":{"code":500,"message":"cannot encode response"}}`)
	}
	return out
}

// WriteEnvelope writes a tool outcome as a 200 response. Domain failures
// (not found, missing argument, unknown function) stay inside the body.
func WriteEnvelope(w http.ResponseWriter, data map[string]any, callErr *CallError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(EncodeResult(data, callErr))
}
