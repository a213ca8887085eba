package codec

import (
	"encoding/json"
	"fmt"

	"gotally/domain/core"
	"gotally/domain/dataset"
	"gotally/domain/selection"

	"github.com/golang/snappy"
)

// Schema versions written by this package
const (
	TableVersion     = 1
	SelectionVersion = selection.CurrentVersion
)

// TableEnvelope is the persisted form of a dataset. Checksum covers the
// encoded columns; envelopes without one are accepted unverified.
type TableEnvelope struct {
	Version  int             `json:"version"`
	Source   dataset.Source  `json:"source"`
	Checksum core.Hash       `json:"checksum,omitempty"`
	Columns  json.RawMessage `json:"columns"`
}

// SelectionEnvelope is the persisted form of a field selection set
type SelectionEnvelope struct {
	Version       int      `json:"version"`
	SumFields     []string `json:"sum_fields"`
	CountFields   []string `json:"count_fields"`
	AverageFields []string `json:"average_fields"`
}

// snappyMarker prefixes compressed blobs; JSON never starts with a zero byte
const snappyMarker byte = 0x00

// Codec turns tables and selection sets into blobs and back.
// Compressed blobs are the marker byte followed by snappy block encoded JSON.
type Codec struct {
	Compress bool
}

// New creates a codec
func New(compress bool) *Codec {
	return &Codec{Compress: compress}
}

// EncodeTable serializes a table
func (c *Codec) EncodeTable(t *dataset.Table) ([]byte, error) {
	columns := make([]dataset.Column, 0, len(t.Columns()))
	for _, name := range t.Columns() {
		col, _ := t.Column(name)
		columns = append(columns, col)
	}
	raw, err := json.Marshal(columns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal columns: %w", err)
	}
	return c.encode(TableEnvelope{
		Version:  TableVersion,
		Source:   t.Source,
		Checksum: core.NewHash(raw),
		Columns:  raw,
	})
}

// DecodeTable parses a blob written by EncodeTable
func (c *Codec) DecodeTable(data []byte) (*dataset.Table, error) {
	var env TableEnvelope
	if err := decode(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	if env.Version != TableVersion {
		return nil, fmt.Errorf("%w: dataset version %d", core.ErrUnsupportedVersion, env.Version)
	}
	if !env.Checksum.IsEmpty() && !core.NewHash(env.Columns).Equals(env.Checksum) {
		return nil, fmt.Errorf("%w: dataset", core.ErrChecksumMismatch)
	}

	var columns []dataset.Column
	if len(env.Columns) > 0 {
		if err := json.Unmarshal(env.Columns, &columns); err != nil {
			return nil, fmt.Errorf("failed to decode dataset columns: %w", err)
		}
	}
	t, err := dataset.NewTable(columns)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild dataset: %w", err)
	}
	t.Source = env.Source
	return t, nil
}

// EncodeSelection serializes a selection set, stamping the current version
func (c *Codec) EncodeSelection(s selection.Set) ([]byte, error) {
	return c.encode(SelectionEnvelope{
		Version:       SelectionVersion,
		SumFields:     nonNil(s.SumFields),
		CountFields:   nonNil(s.CountFields),
		AverageFields: nonNil(s.AverageFields),
	})
}

// DecodeSelection parses a blob written by EncodeSelection.
// A missing version field is read as version 1.
func (c *Codec) DecodeSelection(data []byte) (selection.Set, error) {
	var env SelectionEnvelope
	if err := decode(data, &env); err != nil {
		return selection.Set{}, fmt.Errorf("failed to decode selection: %w", err)
	}
	if env.Version == 0 {
		env.Version = SelectionVersion
	}
	if env.Version != SelectionVersion {
		return selection.Set{}, fmt.Errorf("%w: selection version %d", core.ErrUnsupportedVersion, env.Version)
	}

	return selection.Set{
		Version:       env.Version,
		SumFields:     nonNil(env.SumFields),
		CountFields:   nonNil(env.CountFields),
		AverageFields: nonNil(env.AverageFields),
	}, nil
}

func (c *Codec) encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal: %w", err)
	}
	if !c.Compress {
		return raw, nil
	}
	return append([]byte{snappyMarker}, snappy.Encode(nil, raw)...), nil
}

// decode accepts both plain and compressed blobs so the compression
// setting can change between runs
func decode(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("empty blob")
	}
	raw := data
	if data[0] == snappyMarker {
		var err error
		if raw, err = snappy.Decode(nil, data[1:]); err != nil {
			return fmt.Errorf("failed to decompress: %w", err)
		}
	}
	return json.Unmarshal(raw, v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
