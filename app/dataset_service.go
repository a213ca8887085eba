package app

import (
	"context"
	"errors"
	"fmt"

	"gotally/domain/core"
	"gotally/domain/dataset"
	"gotally/internal"
	apperrors "gotally/internal/errors"
	"gotally/internal/session"
	"gotally/ports"
)

// DefaultPreviewRows is the number of rows shown after a load
const DefaultPreviewRows = 5

// LoadResult describes a freshly loaded dataset
type LoadResult struct {
	Filename string            `json:"filename"`
	Sheet    string            `json:"sheet"`
	Columns  []string          `json:"columns"`
	RowCount int               `json:"row_count"`
	Preview  [][]dataset.Value `json:"preview"`
}

// DatasetService loads spreadsheets into the session and keeps the last
// successful load in the blob store
type DatasetService struct {
	loader      ports.SpreadsheetLoader
	repo        ports.DatasetRepository
	previewRows int
	logger      *internal.Logger
}

// NewDatasetService creates a dataset service
func NewDatasetService(loader ports.SpreadsheetLoader, repo ports.DatasetRepository, previewRows int, logger *internal.Logger) *DatasetService {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DatasetService{loader: loader, repo: repo, previewRows: previewRows, logger: logger}
}

// ListSheets returns the sheet names of an upload
func (s *DatasetService) ListSheets(ctx context.Context, upload ports.Upload) ([]string, error) {
	return s.loader.SheetNames(ctx, upload)
}

// Load parses an upload, persists it and makes it the session's working
// dataset. On any failure the session keeps its previous dataset.
func (s *DatasetService) Load(ctx context.Context, sess *session.Session, upload ports.Upload, opts ports.LoadOptions) (*LoadResult, error) {
	table, err := s.loader.Load(ctx, upload, opts)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveCurrent(ctx, table); err != nil {
		return nil, apperrors.StorageError("failed to persist dataset", err)
	}

	sess.SetDataset(table)
	s.logger.Info("[Dataset] loaded %s (%d rows, %d columns)", upload.Filename, table.RowCount(), table.ColumnCount())
	return s.describe(table), nil
}

// Restore makes the last persisted dataset the session's working dataset.
// It reports false when nothing was persisted.
func (s *DatasetService) Restore(ctx context.Context, sess *session.Session) (bool, error) {
	table, err := s.repo.LoadCurrent(ctx)
	if err != nil {
		if errors.Is(err, core.ErrNoDataset) {
			return false, nil
		}
		return false, apperrors.StorageError("failed to restore dataset", err)
	}
	sess.SetDataset(table)
	s.logger.Debug("[Dataset] restored %s", table.Source.Filename)
	return true, nil
}

// Current describes the session's working dataset
func (s *DatasetService) Current(sess *session.Session) (*LoadResult, error) {
	table, ok := sess.Dataset()
	if !ok {
		return nil, core.ErrNoDataset
	}
	return s.describe(table), nil
}

func (s *DatasetService) describe(t *dataset.Table) *LoadResult {
	return &LoadResult{
		Filename: t.Source.Filename,
		Sheet:    t.Source.SheetName,
		Columns:  t.Columns(),
		RowCount: t.RowCount(),
		Preview:  t.Head(s.previewRows).Rows(),
	}
}

// String implements fmt.Stringer for log lines
func (r *LoadResult) String() string {
	return fmt.Sprintf("%s[%s] %d rows x %d columns", r.Filename, r.Sheet, r.RowCount, len(r.Columns))
}
