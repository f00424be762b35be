package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MaxPayloadBytes caps how much of a reader Decode will consume. Icons travel
// as data URLs, so exports can be large.
const MaxPayloadBytes = 32 << 20

// Decode parses a raw export document of either shape and normalizes it.
func Decode(data []byte) (ImportPayload, error) {
	var envelope struct {
		Type ExportType      `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ImportPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if envelope.Type == "" {
		return ImportPayload{}, invalidPayload("type is missing")
	}
	if len(envelope.Data) == 0 || bytes.Equal(bytes.TrimSpace(envelope.Data), []byte("null")) {
		return ImportPayload{}, invalidPayload("data is missing")
	}

	var payload ImportPayload
	switch canonicalType(envelope.Type) {
	case TypeSingleSpace:
		var single SpaceExportData
		if err := json.Unmarshal(data, &single); err != nil {
			return ImportPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		payload = SinglePayload(&single)
	case TypeMultiSpace:
		var multi MultiSpaceExportData
		if err := json.Unmarshal(data, &multi); err != nil {
			return ImportPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		payload = MultiPayload(&multi)
	default:
		return ImportPayload{}, invalidPayload("unknown type %q", envelope.Type)
	}

	return Normalize(payload)
}

// DecodeReader reads at most MaxPayloadBytes from r and decodes them.
func DecodeReader(r io.Reader) (ImportPayload, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPayloadBytes+1))
	if err != nil {
		return ImportPayload{}, fmt.Errorf("read payload: %w", err)
	}
	if len(data) > MaxPayloadBytes {
		return ImportPayload{}, invalidPayload("payload exceeds %d bytes", MaxPayloadBytes)
	}
	return Decode(data)
}

// Encode writes v as indented JSON. HTML characters are left as-is so URLs
// survive a round trip byte for byte.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// EncodePayload writes whichever envelope p holds.
func EncodePayload(w io.Writer, p ImportPayload) error {
	switch p.Kind {
	case KindSingle:
		return Encode(w, p.Single)
	case KindMulti:
		return Encode(w, p.Multi)
	default:
		return invalidPayload("unknown payload kind %q", p.Kind)
	}
}
