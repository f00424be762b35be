// Package previewcache holds decoded import payloads between the preview
// step and the confirmed import, keyed by an opaque token.
package previewcache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/johnswift/eclipse/internal/transfer"
)

// ErrNotFound is returned for unknown or expired tokens.
var ErrNotFound = errors.New("preview token not found or expired")

// DefaultTTL bounds how long a preview stays importable.
const DefaultTTL = 15 * time.Minute

// PendingImport is a previewed payload awaiting confirmation.
type PendingImport struct {
	Payload transfer.ImportPayload
	// Selection holds zero-based indices into Payload.Spaces(); nil means all.
	Selection []int
	CreatedAt time.Time
}

// Store keeps pending imports until they are committed or expire.
type Store interface {
	Put(ctx context.Context, p PendingImport) (string, error)
	Get(ctx context.Context, token string) (PendingImport, error)
	Delete(ctx context.Context, token string) error
}

type pendingRecord struct {
	Document  json.RawMessage `json:"document"`
	Selection []int           `json:"selection,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// marshalPending stores the payload in its wire form so a cached preview
// goes back through the same decoder as an uploaded file.
func marshalPending(p PendingImport) ([]byte, error) {
	var doc bytes.Buffer
	if err := transfer.EncodePayload(&doc, p.Payload); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	data, err := json.Marshal(pendingRecord{
		Document:  doc.Bytes(),
		Selection: p.Selection,
		CreatedAt: p.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal pending import: %w", err)
	}
	return data, nil
}

func unmarshalPending(data []byte) (PendingImport, error) {
	var rec pendingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return PendingImport{}, fmt.Errorf("unmarshal pending import: %w", err)
	}

	payload, err := transfer.Decode(rec.Document)
	if err != nil {
		return PendingImport{}, fmt.Errorf("decode cached payload: %w", err)
	}

	return PendingImport{
		Payload:   payload,
		Selection: rec.Selection,
		CreatedAt: rec.CreatedAt,
	}, nil
}
