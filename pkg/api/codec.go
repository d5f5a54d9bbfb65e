// Package api defines the wire messages of the outings Connect services and
// the handler and client constructors for them.
//
// Messages are plain Go structs encoded as JSON, so any Connect client
// speaking the JSON codec (including curl and browsers) can call the
// services.
package api

import (
	"encoding/json"
	"fmt"
)

// JSONCodec is a Connect codec using encoding/json. It registers under the
// name "json", replacing Connect's protobuf JSON codec.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON message: %w", err)
	}
	return nil
}
