package app

import (
	"context"
	"errors"

	"gotally/domain/core"
	"gotally/domain/dataset"
	dfilter "gotally/domain/filter"
	apperrors "gotally/internal/errors"
	"gotally/internal/filter"
	"gotally/internal/profiling"
	"gotally/internal/session"
)

// QueryRequest selects rows where Field equals Value. Without a field or
// value the whole table is returned.
type QueryRequest struct {
	Field string         `json:"field"`
	Value *dataset.Value `json:"value"`
}

// QueryResult is the query page content
type QueryResult struct {
	Columns     []string          `json:"columns"`
	Rows        [][]dataset.Value `json:"rows"`
	Filtered    bool              `json:"filtered"`
	RecordCount int               `json:"record_count"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// QueryService browses the working dataset
type QueryService struct {
	profiler *profiling.DataProfiler
}

// NewQueryService creates a query service
func NewQueryService() *QueryService {
	return &QueryService{profiler: profiling.NewDataProfiler()}
}

// Query applies a single equality filter. An empty match is a valid
// result with a record count of zero.
func (s *QueryService) Query(ctx context.Context, sess *session.Session, req QueryRequest) (*QueryResult, error) {
	table, ok := sess.Dataset()
	if !ok {
		return &QueryResult{Columns: []string{}, Rows: [][]dataset.Value{}, Warnings: []string{WarningNoDataset}}, nil
	}

	result := table
	filtered := req.Field != "" && req.Value != nil
	if filtered {
		out, err := filter.Apply(table, []dfilter.Spec{{Field: req.Field, Values: []dataset.Value{*req.Value}}})
		if err != nil && !errors.Is(err, core.ErrNoDataAfterFilters) {
			return nil, apperrors.InvalidInput("invalid query field", err)
		}
		result = out
	}

	return &QueryResult{
		Columns:     result.Columns(),
		Rows:        result.Rows(),
		Filtered:    filtered,
		RecordCount: result.RowCount(),
	}, nil
}

// Describe summarizes every numeric column of the working dataset
func (s *QueryService) Describe(ctx context.Context, sess *session.Session) ([]profiling.ColumnSummary, error) {
	table, ok := sess.Dataset()
	if !ok {
		return nil, core.ErrNoDataset
	}
	return s.profiler.ProfileTable(table), nil
}
