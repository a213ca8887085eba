package app

import (
	"context"
	"errors"
	"fmt"

	"gotally/domain/aggregate"
	"gotally/domain/core"
	"gotally/domain/dataset"
	dfilter "gotally/domain/filter"
	"gotally/internal"
	aggengine "gotally/internal/aggregate"
	apperrors "gotally/internal/errors"
	"gotally/internal/filter"
	"gotally/internal/report"
	"gotally/internal/session"
)

// AnalysisRequest drives the detailed analysis section
type AnalysisRequest struct {
	CategoricalField string                `json:"categorical_field"`
	Values           []dataset.Value       `json:"values"`
	NumericField     string                `json:"numeric_field"`
	Operations       []aggregate.Operation `json:"operations"`
	Filter           dfilter.Spec          `json:"filter"`
}

// Ready reports whether enough was chosen to compute anything
func (r AnalysisRequest) Ready() bool {
	return r.CategoricalField != "" && len(r.Values) > 0 && r.NumericField != "" && len(r.Operations) > 0
}

// AnalysisOptions lists the fields each analysis input may pick from
type AnalysisOptions struct {
	CategoricalFields []string `json:"categorical_fields"`
	NumericFields     []string `json:"numeric_fields"`
	FilterFields      []string `json:"filter_fields"`
}

// AnalysisView is the detailed analysis result
type AnalysisView struct {
	Idle     bool                  `json:"idle"`
	RowCount int                   `json:"row_count"`
	Cards    []aggregate.Card      `json:"cards"`
	Groups   *aggregate.GroupTable `json:"groups,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// AnalysisService computes per-category metrics over the whole dataset.
// It ignores the dashboard filters.
type AnalysisService struct {
	logger *internal.Logger
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{logger: logger}
}

// Options returns the candidate fields. The additional filter never offers
// the categorical field itself.
func (s *AnalysisService) Options(sess *session.Session, categoricalField string) (*AnalysisOptions, error) {
	table, ok := sess.Dataset()
	if !ok {
		return nil, core.ErrNoDataset
	}
	return &AnalysisOptions{
		CategoricalFields: nonNilStrings(table.CategoricalColumns()),
		NumericFields:     nonNilStrings(table.NumericColumns()),
		FilterFields:      filter.AdditionalFields(table, categoricalField),
	}, nil
}

// Analyze narrows the dataset to the chosen categories and optional
// additional filter, then emits one card per chosen operation and the
// grouped table. An incomplete request yields an idle view.
func (s *AnalysisService) Analyze(ctx context.Context, sess *session.Session, req AnalysisRequest) (*AnalysisView, error) {
	table, ok := sess.Dataset()
	if !ok {
		return &AnalysisView{Idle: true, Warnings: []string{WarningNoDataset}}, nil
	}
	if !req.Ready() {
		return &AnalysisView{Idle: true}, nil
	}
	ops, err := s.validate(table, req)
	if err != nil {
		return nil, err
	}
	req.Operations = ops

	specs := []dfilter.Spec{{Field: req.CategoricalField, Values: req.Values}}
	if req.Filter.Active() {
		specs = append(specs, req.Filter)
	}
	filtered, err := filter.Apply(table, specs)
	if errors.Is(err, core.ErrNoDataAfterFilters) {
		return &AnalysisView{Error: ErrorNoDataFiltered}, nil
	}
	if err != nil {
		return nil, apperrors.InvalidInput("invalid filter", err)
	}

	view := &AnalysisView{RowCount: filtered.RowCount()}
	for _, op := range aggregate.AllOperations {
		if !containsOp(req.Operations, op) {
			continue
		}
		label := fmt.Sprintf("%s of %s", op.Label(), req.NumericField)
		view.Cards = append(view.Cards, aggengine.ScalarCard(filtered, label, req.NumericField, op))
	}

	groups, err := aggengine.ComputeGrouped(filtered, req.CategoricalField, req.NumericField, req.Operations)
	if err != nil {
		view.Error = fmt.Sprintf("error computing detailed results: %v", err)
		return view, nil
	}
	view.Groups = groups

	s.logger.Debug("[Analysis] %s by %s: %d rows, %d groups",
		req.NumericField, req.CategoricalField, view.RowCount, len(groups.Rows))
	return view, nil
}

// validate checks field kinds and returns the operations in canonical form
func (s *AnalysisService) validate(table *dataset.Table, req AnalysisRequest) ([]aggregate.Operation, error) {
	kind, ok := table.ColumnKind(req.CategoricalField)
	if !ok {
		return nil, apperrors.InvalidInput("unknown categorical field", fmt.Errorf("%w: %q", core.ErrFieldNotFound, req.CategoricalField))
	}
	if kind != dataset.KindText {
		return nil, apperrors.ValidationError(fmt.Sprintf("%s is not a categorical field", req.CategoricalField), nil)
	}

	kind, ok = table.ColumnKind(req.NumericField)
	if !ok {
		return nil, apperrors.InvalidInput("unknown numeric field", fmt.Errorf("%w: %q", core.ErrFieldNotFound, req.NumericField))
	}
	if kind == dataset.KindText {
		return nil, apperrors.ValidationError(fmt.Sprintf("%s is not a numeric field", req.NumericField), core.ErrNonNumeric)
	}

	if req.Filter.Field == req.CategoricalField && req.Filter.Active() {
		return nil, apperrors.InvalidInput("the additional filter cannot use the categorical field", nil)
	}
	ops := make([]aggregate.Operation, 0, len(req.Operations))
	for _, op := range req.Operations {
		parsed, err := aggregate.ParseOperation(string(op))
		if err != nil {
			return nil, apperrors.InvalidInput("invalid operation", err)
		}
		ops = append(ops, parsed)
	}
	return ops, nil
}

func containsOp(ops []aggregate.Operation, op aggregate.Operation) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// AppendTo adds the analysis cards and grouped table to a report
func (v *AnalysisView) AppendTo(r *report.Report) {
	if v.Idle {
		return
	}
	r.Sections = append(r.Sections, report.Section{Title: "Detailed analysis", Cards: v.Cards})
	r.Groups = v.Groups
	if v.Error != "" && r.Error == "" {
		r.Error = v.Error
	}
}
