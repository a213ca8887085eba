package ports

import (
	"context"

	"gotally/domain/dataset"
	"gotally/domain/selection"
)

// DatasetRepository retains the last successfully loaded table across sessions
type DatasetRepository interface {
	SaveCurrent(ctx context.Context, table *dataset.Table) error
	// LoadCurrent returns core.ErrNoDataset when nothing was saved yet
	LoadCurrent(ctx context.Context) (*dataset.Table, error)
}

// SelectionRepository persists the dashboard field selection
type SelectionRepository interface {
	Save(ctx context.Context, set selection.Set) error
	// Load returns core.ErrNoConfiguration when nothing was saved yet
	Load(ctx context.Context) (selection.Set, error)
	Exists(ctx context.Context) (bool, error)
	// Delete removes the saved selection; deleting nothing is not an error
	Delete(ctx context.Context) error
}
