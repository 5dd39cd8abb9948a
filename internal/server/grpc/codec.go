package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Codec carries messages as JSON. Clients must force it with
// grpc.ForceCodec(Codec{}) or call with content-subtype "json".
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (Codec) Name() string { return "json" }

func init() {
	encoding.RegisterCodec(Codec{})
}
