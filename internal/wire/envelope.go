package wire

import (
	"encoding/json"
	"errors"
)

// ErrMissingType marks a frame without the "type" discriminator.
var ErrMissingType = errors.New("envelope has no type")

// Envelope is a parsed inbound frame: the routing tag plus the raw
// payload, left undecoded until a subscriber claims it.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ParseEnvelope decodes one inbound frame. It fails on non-JSON input
// and on frames without a type; both are dropped by the router.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}
	return &env, nil
}

// Outbound builds an outbound envelope: the type tag with the extra
// fields flattened beside it. A nil fields map sends a bare tag.
func Outbound(msgType string, fields map[string]any) map[string]any {
	env := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		env[k] = v
	}
	env["type"] = msgType
	return env
}
