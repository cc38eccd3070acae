package model

import "encoding/json"

// DecodeStatus classifies a raw-attributes decode attempt so counters
// can distinguish "no data" from "corrupt data".
type DecodeStatus int

const (
	DecodeOK DecodeStatus = iota
	DecodeEmpty
	DecodeCorrupt
)

func (s DecodeStatus) String() string {
	switch s {
	case DecodeOK:
		return "ok"
	case DecodeEmpty:
		return "empty"
	case DecodeCorrupt:
		return "corrupt"
	}
	return "unknown"
}

// DecodeResult is the outcome of decoding a stored raw-attributes
// payload. Attrs is never nil; corrupt payloads decode to an empty map
// with Status set so repair can count them without aborting.
type DecodeResult struct {
	Attrs  map[string]any
	Status DecodeStatus
}

// DecodeAttributes decodes a stored JSON payload. A missing or blank
// payload is DecodeEmpty; malformed JSON or a non-object document is
// DecodeCorrupt. Both recover to an empty map.
func DecodeAttributes(raw []byte) DecodeResult {
	if len(raw) == 0 {
		return DecodeResult{Attrs: map[string]any{}, Status: DecodeEmpty}
	}

	var attrs map[string]any
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return DecodeResult{Attrs: map[string]any{}, Status: DecodeCorrupt}
	}
	if attrs == nil {
		return DecodeResult{Attrs: map[string]any{}, Status: DecodeEmpty}
	}
	return DecodeResult{Attrs: attrs, Status: DecodeOK}
}
