package codec

import (
	"context"
	"errors"
	"fmt"

	"gotally/domain/core"
	"gotally/domain/dataset"
	"gotally/domain/selection"
	"gotally/ports"
)

// Blob Store keys
const (
	KeyDataset   = "archivo"
	KeySelection = "config_dashboard"
)

// DatasetRepository stores the working dataset in a blob store
type DatasetRepository struct {
	store ports.BlobStore
	codec *Codec
}

// NewDatasetRepository creates a blob-backed dataset repository
func NewDatasetRepository(store ports.BlobStore, codec *Codec) *DatasetRepository {
	return &DatasetRepository{store: store, codec: codec}
}

// SaveCurrent overwrites the persisted dataset
func (r *DatasetRepository) SaveCurrent(ctx context.Context, t *dataset.Table) error {
	data, err := r.codec.EncodeTable(t)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, KeyDataset, data); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	return nil
}

// LoadCurrent returns the persisted dataset or core.ErrNoDataset
func (r *DatasetRepository) LoadCurrent(ctx context.Context) (*dataset.Table, error) {
	data, err := r.store.Get(ctx, KeyDataset)
	if err != nil {
		if errors.Is(err, core.ErrBlobNotFound) {
			return nil, core.ErrNoDataset
		}
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return r.codec.DecodeTable(data)
}

// SelectionRepository stores the dashboard field selection in a blob store
type SelectionRepository struct {
	store ports.BlobStore
	codec *Codec
}

// NewSelectionRepository creates a blob-backed selection repository
func NewSelectionRepository(store ports.BlobStore, codec *Codec) *SelectionRepository {
	return &SelectionRepository{store: store, codec: codec}
}

// Save overwrites the persisted selection
func (r *SelectionRepository) Save(ctx context.Context, s selection.Set) error {
	data, err := r.codec.EncodeSelection(s)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, KeySelection, data); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

// Load returns the persisted selection or core.ErrNoConfiguration
func (r *SelectionRepository) Load(ctx context.Context) (selection.Set, error) {
	data, err := r.store.Get(ctx, KeySelection)
	if err != nil {
		if errors.Is(err, core.ErrBlobNotFound) {
			return selection.Set{}, core.ErrNoConfiguration
		}
		return selection.Set{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return r.codec.DecodeSelection(data)
}

// Exists reports whether a selection was saved
func (r *SelectionRepository) Exists(ctx context.Context) (bool, error) {
	return r.store.Exists(ctx, KeySelection)
}

// Delete removes the persisted selection
func (r *SelectionRepository) Delete(ctx context.Context) error {
	if err := r.store.Delete(ctx, KeySelection); err != nil {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}
	return nil
}

var (
	_ ports.DatasetRepository   = (*DatasetRepository)(nil)
	_ ports.SelectionRepository = (*SelectionRepository)(nil)
)
