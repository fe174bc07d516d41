package api

import "encoding/json"

// jsonCodec lets the FeedsApi service exchange plain Go structs over grpc
// without generated protobuf stubs: the transport, deadlines and streaming
// semantics are grpc's, the wire encoding is JSON (spec §6 field names and
// semantics are normative; this module does not fix the byte format).
// Installed server-wide via grpc.CustomCodec so every call uses it
// regardless of the client's advertised content-subtype.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (jsonCodec) String() string                             { return "json" }
